package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"community/config"
	"community/internal/delivery/api/response"
	deliverycontext "community/internal/delivery/context"
	"community/internal/domain/entity"
	domainerrors "community/internal/domain/errors"
	"community/internal/errors"
	"community/internal/usecase"
)

// SessionCookieName is the cookie carrying the session id in session mode.
const SessionCookieName = "SID"

// ErrNoCredentials is returned by a strategy when the request carries no credentials at all.
var ErrNoCredentials = errors.New("no credentials presented")

// AuthenticationStrategy resolves the principal of a request.
// Exactly one strategy is active per process, chosen from auth.mode.
// Rejected credentials match ErrAuthenticationFailed or ErrSessionExpiredOrMissing;
// any other error is an infrastructure failure.
type AuthenticationStrategy interface {
	Authenticate(c echo.Context) (*entity.Principal, error)
}

// StrategyParams holds the use cases a strategy may resolve principals with.
type StrategyParams struct {
	fx.In

	Config    *config.Config
	AuthUC    usecase.AuthUsecase
	SessionUC usecase.SessionAuthUsecase
}

// NewAuthenticationStrategy selects the strategy named by auth.mode.
func NewAuthenticationStrategy(params StrategyParams) (AuthenticationStrategy, error) {
	switch params.Config.Auth.Mode {
	case config.AuthModeJWT:
		return NewJWTStrategy(params.AuthUC), nil
	case config.AuthModeSession:
		return NewSessionStrategy(params.SessionUC), nil
	default:
		return nil, errors.Errorf("unknown auth mode: %q", params.Config.Auth.Mode)
	}
}

type jwtStrategy struct {
	auth usecase.AuthUsecase
}

// NewJWTStrategy validates `Authorization: Bearer <access token>`.
func NewJWTStrategy(auth usecase.AuthUsecase) AuthenticationStrategy {
	return &jwtStrategy{auth: auth}
}

func (s *jwtStrategy) Authenticate(c echo.Context) (*entity.Principal, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return nil, ErrNoCredentials
	}

	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || strings.TrimSpace(token) == "" {
		return nil, errors.Wrap(domainerrors.ErrAuthenticationFailed, "invalid token format, must be Bearer token")
	}

	principal, err := s.auth.Authenticate(c.Request().Context(), strings.TrimSpace(token))
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return principal, nil
}

type sessionStrategy struct {
	sessions usecase.SessionAuthUsecase
}

// NewSessionStrategy resolves the SID cookie against the session ledger.
func NewSessionStrategy(sessions usecase.SessionAuthUsecase) AuthenticationStrategy {
	return &sessionStrategy{sessions: sessions}
}

func (s *sessionStrategy) Authenticate(c echo.Context) (*entity.Principal, error) {
	cookie, err := c.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrNoCredentials
	}

	principal, err := s.sessions.Resolve(c.Request().Context(), cookie.Value)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return principal, nil
}

// AuthMiddleware guards routes with the configured AuthenticationStrategy.
type AuthMiddleware struct {
	strategy AuthenticationStrategy
	logger   *slog.Logger
}

func NewAuthMiddleware(strategy AuthenticationStrategy, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		strategy: strategy,
		logger:   logger,
	}
}

// Authenticate rejects requests without a valid principal with 401.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		principal, err := m.strategy.Authenticate(c)
		if err != nil {
			if errors.Is(err, ErrNoCredentials) {
				return response.Unauthorized(c, "Authentication credentials are missing")
			}
			if !isRejection(err) {
				return errors.WithStack(err)
			}

			deliverycontext.GetLoggerOrDefault(c.Request().Context(), m.logger).
				Debug("Rejected credentials", slog.Any("error", err))

			return response.Unauthorized(c, "Invalid or expired credentials")
		}

		deliverycontext.SetPrincipal(c, principal)

		return next(c)
	}
}

// Optional attaches the principal when valid credentials are presented and lets
// anonymous requests through otherwise. It serves public reads that personalize
// their response for signed-in viewers.
func (m *AuthMiddleware) Optional(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		principal, err := m.strategy.Authenticate(c)
		switch {
		case err == nil:
			deliverycontext.SetPrincipal(c, principal)
		case !errors.Is(err, ErrNoCredentials) && !isRejection(err):
			return errors.WithStack(err)
		}

		return next(c)
	}
}

func isRejection(err error) bool {
	return errors.IsAny(err, domainerrors.ErrAuthenticationFailed, domainerrors.ErrSessionExpiredOrMissing)
}

// GetUserID returns the id of the authenticated principal.
func GetUserID(c echo.Context) (int64, bool) {
	principal, ok := deliverycontext.GetPrincipal(c)
	if !ok {
		return 0, false
	}

	return principal.UserID, true
}

// ViewerID returns the principal id, or 0 for an anonymous request.
func ViewerID(c echo.Context) int64 {
	userID, _ := GetUserID(c)

	return userID
}

// RequireUserID is used by handlers behind Authenticate.
func RequireUserID(c echo.Context) (int64, error) {
	userID, ok := GetUserID(c)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "principal missing from context")
	}

	return userID, nil
}
