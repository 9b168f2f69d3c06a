package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"community/config"
	"community/internal/delivery/api/middleware"
	"community/internal/delivery/api/response"
	domainerrors "community/internal/domain/errors"
	"community/internal/errors"
	"community/internal/usecase"
)

// RefreshTokenCookieName is the cookie carrying the refresh token in token mode.
const RefreshTokenCookieName = "refresh_token"

// AuthHandlerParams holds dependencies for AuthHandler, injected by Fx.
type AuthHandlerParams struct {
	fx.In

	AuthUC    usecase.AuthUsecase
	SessionUC usecase.SessionAuthUsecase
	UserUC    usecase.UserUsecase
	Config    *config.Config
	Logger    *slog.Logger
}

// AuthHandler serves signup, login, logout and token reissue for both auth modes.
type AuthHandler struct {
	authUC       usecase.AuthUsecase
	sessionUC    usecase.SessionAuthUsecase
	userUC       usecase.UserUsecase
	secureCookie bool
	logger       *slog.Logger
}

func NewAuthHandler(params AuthHandlerParams) *AuthHandler {
	return &AuthHandler{
		authUC:       params.AuthUC,
		sessionUC:    params.SessionUC,
		userUC:       params.UserUC,
		secureCookie: params.Config.Auth.SecureCookie,
		logger:       params.Logger,
	}
}

// SignUpRequest is the body of POST /auth.
type SignUpRequest struct {
	Email           string  `json:"email" validate:"required,email,min=10,max=50"`
	Password        string  `json:"password" validate:"required,min=8,max=30"`
	PasswordConfirm string  `json:"passwordConfirm" validate:"required,eqfield=Password"`
	Nickname        string  `json:"nickname" validate:"required,min=2,max=15,nickname"`
	ProfileImage    *string `json:"profileImage" validate:"omitempty,imagekey"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userIDResponse struct {
	UserID int64 `json:"userId"`
}

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
	UserID      int64  `json:"userId,omitempty"`
}

type sessionResponse struct {
	UserID   int64  `json:"userId"`
	Nickname string `json:"nickname"`
}

// SignUp creates an account.
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req SignUpRequest
	if err := bindAndValidate(c, &req); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.userUC.SignUp(c.Request().Context(), usecase.SignUpInput{
		Email:           req.Email,
		Password:        req.Password,
		Nickname:        req.Nickname,
		ProfileImageKey: req.ProfileImage,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, userIDResponse{UserID: user.ID})
}

// Login returns the access token in the body and sets the refresh token cookie.
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.authUC.Login(c.Request().Context(), usecase.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		return errors.WithStack(err)
	}

	c.SetCookie(h.cookie(RefreshTokenCookieName, output.RefreshToken, int(output.RefreshMaxAge)))

	return response.Success(c, http.StatusOK, tokenResponse{
		AccessToken: output.AccessToken,
		UserID:      output.User.ID,
	})
}

// Logout revokes the refresh tokens of the cookie's principal and clears the cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	var refreshToken string
	if cookie, err := c.Cookie(RefreshTokenCookieName); err == nil {
		refreshToken = cookie.Value
	}

	if err := h.authUC.Logout(c.Request().Context(), refreshToken); err != nil {
		return errors.WithStack(err)
	}

	c.SetCookie(h.cookie(RefreshTokenCookieName, "", -1))

	return response.Success(c, http.StatusOK, "Logout successful")
}

// Reissue rotates the refresh token cookie and returns a new access token.
func (h *AuthHandler) Reissue(c echo.Context) error {
	cookie, err := c.Cookie(RefreshTokenCookieName)
	if err != nil || cookie.Value == "" {
		return errors.Wrap(domainerrors.ErrInvalidRefreshToken, "refresh token cookie is missing")
	}

	output, err := h.authUC.Reissue(c.Request().Context(), cookie.Value)
	if err != nil {
		return errors.WithStack(err)
	}

	c.SetCookie(h.cookie(RefreshTokenCookieName, output.RefreshToken, int(output.RefreshMaxAge)))

	return response.Success(c, http.StatusOK, tokenResponse{AccessToken: output.AccessToken})
}

// SessionLogin creates a session and sets the SID cookie.
func (h *AuthHandler) SessionLogin(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.sessionUC.Login(c.Request().Context(), usecase.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		return errors.WithStack(err)
	}

	c.SetCookie(h.cookie(middleware.SessionCookieName, output.SessionID, int(output.MaxAge)))

	return response.Success(c, http.StatusOK, sessionResponse{
		UserID:   output.User.ID,
		Nickname: output.User.Nickname,
	})
}

// SessionLogout removes the session named by the SID cookie and clears the cookie.
func (h *AuthHandler) SessionLogout(c echo.Context) error {
	if cookie, err := c.Cookie(middleware.SessionCookieName); err == nil {
		if err := h.sessionUC.Logout(c.Request().Context(), cookie.Value); err != nil {
			return errors.WithStack(err)
		}
	}

	c.SetCookie(h.cookie(middleware.SessionCookieName, "", -1))

	return response.Success(c, http.StatusOK, "Logout successful")
}

// cookie builds an HttpOnly cookie on path "/". A negative maxAge deletes it,
// which net/http serializes as Max-Age=0.
func (h *AuthHandler) cookie(name, value string, maxAge int) *http.Cookie {
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
	if maxAge < 0 {
		cookie.Expires = time.Unix(0, 0)
	}

	return cookie
}
