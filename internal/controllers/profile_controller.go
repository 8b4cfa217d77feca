package controllers

import (
	"net/http"
	"strconv"

	"dating-core/internal/dto"
	"dating-core/internal/services"
	"dating-core/pkg/api"
	apperrors "dating-core/pkg/errors"
	"dating-core/pkg/middleware"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type ProfileController struct {
	profiles services.ProfileServiceInterface
	logger   *zap.Logger
}

func NewProfileController(profiles services.ProfileServiceInterface, logger *zap.Logger) *ProfileController {
	return &ProfileController{profiles: profiles, logger: logger}
}

func (c *ProfileController) Get(ctx echo.Context) error {
	userID, err := pathUserID(ctx)
	if err != nil {
		return api.Error(ctx, err)
	}

	profile, err := c.profiles.Get(ctx.Request().Context(), userID)
	if err != nil {
		return api.Error(ctx, err)
	}
	return api.Ok(ctx, http.StatusOK, profile)
}

func (c *ProfileController) Exists(ctx echo.Context) error {
	userID, err := strconv.ParseInt(ctx.QueryParam("user_id"), 10, 64)
	if err != nil {
		return api.Error(ctx, apperrors.ErrValidation)
	}

	exists, err := c.profiles.Exists(ctx.Request().Context(), userID)
	if err != nil {
		return api.Error(ctx, err)
	}
	return api.Ok(ctx, http.StatusOK, dto.ProfileExistsDTO{Exists: exists})
}

func (c *ProfileController) Create(ctx echo.Context) error {
	callerID, err := authenticatedUserID(ctx)
	if err != nil {
		return api.Error(ctx, err)
	}

	var body dto.CreateProfileDTO
	if err := ctx.Bind(&body); err != nil {
		return api.Error(ctx, apperrors.ErrValidation)
	}
	body.UserID = callerID
	if err := ctx.Validate(&body); err != nil {
		return api.Error(ctx, err)
	}

	profile, err := c.profiles.Create(ctx.Request().Context(), &body)
	if err != nil {
		return api.Error(ctx, err)
	}
	return api.Ok(ctx, http.StatusCreated, profile)
}

func (c *ProfileController) Update(ctx echo.Context) error {
	callerID, err := authenticatedUserID(ctx)
	if err != nil {
		return api.Error(ctx, err)
	}
	targetID, err := pathUserID(ctx)
	if err != nil {
		return api.Error(ctx, err)
	}
	if callerID != targetID {
		return api.Error(ctx, apperrors.ErrForbidden)
	}

	var body dto.UpdateProfileDTO
	if err := ctx.Bind(&body); err != nil {
		return api.Error(ctx, apperrors.ErrValidation)
	}
	if err := ctx.Validate(&body); err != nil {
		return api.Error(ctx, err)
	}

	profile, err := c.profiles.Update(ctx.Request().Context(), targetID, &body)
	if err != nil {
		return api.Error(ctx, err)
	}
	return api.Ok(ctx, http.StatusOK, profile)
}

func (c *ProfileController) AddPhoto(ctx echo.Context) error {
	callerID, err := authenticatedUserID(ctx)
	if err != nil {
		return api.Error(ctx, err)
	}

	var body dto.CreatePhotoDTO
	if err := ctx.Bind(&body); err != nil {
		return api.Error(ctx, apperrors.ErrValidation)
	}
	if err := ctx.Validate(&body); err != nil {
		return api.Error(ctx, err)
	}

	photo, err := c.profiles.AddPhoto(ctx.Request().Context(), callerID, &body)
	if err != nil {
		return api.Error(ctx, err)
	}
	return api.Ok(ctx, http.StatusCreated, photo)
}

func (c *ProfileController) DeletePhoto(ctx echo.Context) error {
	callerID, err := authenticatedUserID(ctx)
	if err != nil {
		return api.Error(ctx, err)
	}

	photoID, err := strconv.ParseInt(ctx.Param("photo_id"), 10, 64)
	if err != nil {
		return api.Error(ctx, apperrors.ErrValidation)
	}

	if err := c.profiles.DeletePhoto(ctx.Request().Context(), callerID, photoID); err != nil {
		return api.Error(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (c *ProfileController) ReorderPhotos(ctx echo.Context) error {
	callerID, err := authenticatedUserID(ctx)
	if err != nil {
		return api.Error(ctx, err)
	}

	var body dto.ReorderPhotosDTO
	if err := ctx.Bind(&body); err != nil {
		return api.Error(ctx, apperrors.ErrValidation)
	}
	if err := ctx.Validate(&body); err != nil {
		return api.Error(ctx, err)
	}

	if err := c.profiles.ReorderPhotos(ctx.Request().Context(), callerID, body.PhotoIDs); err != nil {
		return api.Error(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// pathUserID parses the {user_id} path param of GET and PATCH /profiles/:user_id.
func pathUserID(ctx echo.Context) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param("user_id"), 10, 64)
	if err != nil {
		return 0, apperrors.ErrValidation
	}
	return id, nil
}

// authenticatedUserID reads the caller's id injected by pkg/middleware.Auth.
func authenticatedUserID(ctx echo.Context) (int64, error) {
	userID, ok := middleware.UserID(ctx.Request().Context())
	if !ok {
		return 0, apperrors.ErrMissingAuth
	}
	return userID, nil
}
