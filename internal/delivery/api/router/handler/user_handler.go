package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"community/internal/delivery/api/middleware"
	"community/internal/delivery/api/response"
	"community/internal/errors"
	"community/internal/usecase"
)

// UserHandlerParams holds dependencies for UserHandler, injected by Fx.
type UserHandlerParams struct {
	fx.In

	UserUC      usecase.UserUsecase
	AuthHandler *AuthHandler
	Logger      *slog.Logger
}

// UserHandler serves account management.
type UserHandler struct {
	userUC usecase.UserUsecase
	auth   *AuthHandler
	logger *slog.Logger
}

func NewUserHandler(params UserHandlerParams) *UserHandler {
	return &UserHandler{
		userUC: params.UserUC,
		auth:   params.AuthHandler,
		logger: params.Logger,
	}
}

type emailCheckRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type passwordCheckRequest struct {
	Password string `json:"password" validate:"required"`
}

type nicknameRequest struct {
	Nickname string `json:"nickname" validate:"required,min=2,max=15,nickname"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=30"`
}

type profileImageRequest struct {
	ImageKey string `json:"imageKey" validate:"required,imagekey"`
}

type availabilityResponse struct {
	Available bool `json:"available"`
}

// CheckEmail reports whether an email can still be registered.
func (h *UserHandler) CheckEmail(c echo.Context) error {
	var req emailCheckRequest
	if err := bindAndValidate(c, &req); err != nil {
		return errors.WithStack(err)
	}

	available, err := h.userUC.CheckEmailAvailable(c.Request().Context(), req.Email)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, availabilityResponse{Available: available})
}

// CheckPassword reports whether a password satisfies the password policy.
func (h *UserHandler) CheckPassword(c echo.Context) error {
	var req passwordCheckRequest
	if err := bindAndValidate(c, &req); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, availabilityResponse{Available: h.userUC.CheckPasswordValid(req.Password)})
}

func (h *UserHandler) GetMe(c echo.Context) error {
	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	info, err := h.userUC.GetMe(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, info)
}

func (h *UserHandler) ChangeNickname(c echo.Context) error {
	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	var req nicknameRequest
	if err := bindAndValidate(c, &req); err != nil {
		return errors.WithStack(err)
	}

	if err := h.userUC.ChangeNickname(c.Request().Context(), userID, req.Nickname); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, userIDResponse{UserID: userID})
}

func (h *UserHandler) ChangePassword(c echo.Context) error {
	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return errors.WithStack(err)
	}

	err = h.userUC.ChangePassword(c.Request().Context(), userID, usecase.ChangePasswordInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, userIDResponse{UserID: userID})
}

func (h *UserHandler) UpdateProfileImage(c echo.Context) error {
	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	var req profileImageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return errors.WithStack(err)
	}

	if err := h.userUC.UpdateProfileImage(c.Request().Context(), userID, req.ImageKey); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, userIDResponse{UserID: userID})
}

func (h *UserHandler) DeleteProfileImage(c echo.Context) error {
	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	if err := h.userUC.DeleteProfileImage(c.Request().Context(), userID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, userIDResponse{UserID: userID})
}

// Withdraw deletes the account and signs the client out of the current login.
func (h *UserHandler) Withdraw(c echo.Context) error {
	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	if err := h.userUC.Withdraw(c.Request().Context(), userID); err != nil {
		return errors.WithStack(err)
	}

	if cookie, err := c.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.auth.sessionUC.Logout(c.Request().Context(), cookie.Value); err != nil {
			h.logger.Warn("Failed to remove session of withdrawn user", slog.Int64("user_id", userID), slog.Any("error", err))
		}
		c.SetCookie(h.auth.cookie(middleware.SessionCookieName, "", -1))
	}
	if _, err := c.Cookie(RefreshTokenCookieName); err == nil {
		c.SetCookie(h.auth.cookie(RefreshTokenCookieName, "", -1))
	}

	return response.Success(c, http.StatusOK, userIDResponse{UserID: userID})
}
