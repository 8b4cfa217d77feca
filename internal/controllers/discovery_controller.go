package controllers

import (
	"net/http"
	"strconv"

	"dating-core/internal/dto"
	"dating-core/internal/services"
	"dating-core/pkg/api"
	apperrors "dating-core/pkg/errors"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type DiscoveryController struct {
	discovery services.DiscoveryServiceInterface
	logger    *zap.Logger
}

func NewDiscoveryController(discovery services.DiscoveryServiceInterface, logger *zap.Logger) *DiscoveryController {
	return &DiscoveryController{discovery: discovery, logger: logger}
}

func (c *DiscoveryController) Candidates(ctx echo.Context) error {
	callerID, err := authenticatedUserID(ctx)
	if err != nil {
		return api.Error(ctx, err)
	}

	var q dto.CandidateQuery
	if err := ctx.Bind(&q); err != nil {
		return api.Error(ctx, apperrors.ErrValidation)
	}
	q.UserID = callerID

	candidates, err := c.discovery.Candidates(ctx.Request().Context(), callerID, &q)
	if err != nil {
		return api.Error(ctx, err)
	}
	return api.Ok(ctx, http.StatusOK, candidates)
}

func (c *DiscoveryController) Like(ctx echo.Context) error {
	callerID, err := authenticatedUserID(ctx)
	if err != nil {
		return api.Error(ctx, err)
	}

	var body dto.LikeRequest
	if err := ctx.Bind(&body); err != nil {
		return api.Error(ctx, apperrors.ErrValidation)
	}
	if err := ctx.Validate(&body); err != nil {
		return api.Error(ctx, err)
	}

	result, err := c.discovery.Like(ctx.Request().Context(), callerID, &body)
	if err != nil {
		return api.Error(ctx, err)
	}
	return api.Ok(ctx, http.StatusOK, result)
}

func (c *DiscoveryController) Pass(ctx echo.Context) error {
	callerID, err := authenticatedUserID(ctx)
	if err != nil {
		return api.Error(ctx, err)
	}

	var body dto.PassRequest
	if err := ctx.Bind(&body); err != nil {
		return api.Error(ctx, apperrors.ErrValidation)
	}
	if err := ctx.Validate(&body); err != nil {
		return api.Error(ctx, err)
	}

	result, err := c.discovery.Pass(ctx.Request().Context(), callerID, &body)
	if err != nil {
		return api.Error(ctx, err)
	}
	return api.Ok(ctx, http.StatusOK, result)
}

func (c *DiscoveryController) Matches(ctx echo.Context) error {
	callerID, err := authenticatedUserID(ctx)
	if err != nil {
		return api.Error(ctx, err)
	}

	limit, _ := strconv.Atoi(ctx.QueryParam("limit"))
	matches, err := c.discovery.Matches(ctx.Request().Context(), callerID, ctx.QueryParam("cursor"), limit)
	if err != nil {
		return api.Error(ctx, err)
	}
	return api.Ok(ctx, http.StatusOK, matches)
}

func (c *DiscoveryController) AddFavorite(ctx echo.Context) error {
	callerID, err := authenticatedUserID(ctx)
	if err != nil {
		return api.Error(ctx, err)
	}

	var body dto.FavoriteRequest
	if err := ctx.Bind(&body); err != nil {
		return api.Error(ctx, apperrors.ErrValidation)
	}
	if err := ctx.Validate(&body); err != nil {
		return api.Error(ctx, err)
	}

	if err := c.discovery.AddFavorite(ctx.Request().Context(), callerID, body.TargetID); err != nil {
		return api.Error(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (c *DiscoveryController) RemoveFavorite(ctx echo.Context) error {
	callerID, err := authenticatedUserID(ctx)
	if err != nil {
		return api.Error(ctx, err)
	}

	targetID, err := strconv.ParseInt(ctx.Param("target_id"), 10, 64)
	if err != nil {
		return api.Error(ctx, apperrors.ErrValidation)
	}

	if err := c.discovery.RemoveFavorite(ctx.Request().Context(), callerID, targetID); err != nil {
		return api.Error(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (c *DiscoveryController) ListFavorites(ctx echo.Context) error {
	callerID, err := authenticatedUserID(ctx)
	if err != nil {
		return api.Error(ctx, err)
	}

	favorites, err := c.discovery.ListFavorites(ctx.Request().Context(), callerID)
	if err != nil {
		return api.Error(ctx, err)
	}
	return api.Ok(ctx, http.StatusOK, favorites)
}
