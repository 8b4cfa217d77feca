package controllers

import (
	"net/http"
	"strings"

	"dating-core/internal/dto"
	"dating-core/internal/services"
	"dating-core/pkg/api"
	apperrors "dating-core/pkg/errors"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AuthController struct {
	auth   services.AuthServiceInterface
	logger *zap.Logger
}

func NewAuthController(auth services.AuthServiceInterface, logger *zap.Logger) *AuthController {
	return &AuthController{auth: auth, logger: logger}
}

func (c *AuthController) Validate(ctx echo.Context) error {
	var body dto.ValidateInitDataRequest
	if err := ctx.Bind(&body); err != nil {
		return api.Error(ctx, apperrors.ErrValidation)
	}
	if err := ctx.Validate(&body); err != nil {
		return api.Error(ctx, err)
	}

	token, userID, username, err := c.auth.ValidateInitData(ctx.Request().Context(), body.InitData, body.BotToken)
	if err != nil {
		c.logger.Warn("auth/validate failed", zap.Error(err))
		return api.Error(ctx, err)
	}

	return api.Ok(ctx, http.StatusOK, dto.ValidateInitDataResponse{Token: token, UserID: userID, Username: username})
}

func (c *AuthController) Verify(ctx echo.Context) error {
	token, err := bearerFromRequest(ctx)
	if err != nil {
		return api.Error(ctx, err)
	}

	userID, err := c.auth.Verify(ctx.Request().Context(), token)
	if err != nil {
		return api.Error(ctx, err)
	}
	return api.Ok(ctx, http.StatusOK, dto.VerifyTokenResponse{Valid: true, UserID: userID})
}

func (c *AuthController) Refresh(ctx echo.Context) error {
	token, err := bearerFromRequest(ctx)
	if err != nil {
		return api.Error(ctx, err)
	}

	newToken, err := c.auth.Refresh(ctx.Request().Context(), token)
	if err != nil {
		return api.Error(ctx, err)
	}
	return api.Ok(ctx, http.StatusOK, dto.RefreshTokenResponse{Token: newToken})
}

func bearerFromRequest(ctx echo.Context) (string, error) {
	header := ctx.Request().Header.Get("Authorization")
	if header == "" {
		return "", apperrors.ErrMissingAuth
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", apperrors.ErrMissingAuth
	}
	return parts[1], nil
}
