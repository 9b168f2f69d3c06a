package impl

import (
	"context"
	"log/slog"
	"time"

	"community/config"
	deliverycontext "community/internal/delivery/context"
	"community/internal/domain/entity"
	"community/internal/domain/repository"
	"community/internal/errors"
	"community/internal/usecase"

	"go.uber.org/fx"
)

// sessionAuthService implements the SessionAuthUsecase interface.
type sessionAuthService struct {
	credentials usecase.CredentialUsecase
	sessions    repository.SessionRepository
	ttl         time.Duration
	logger      *slog.Logger
}

// SessionAuthServiceParams holds dependencies for SessionAuthService, injected by Fx.
type SessionAuthServiceParams struct {
	fx.In

	Credentials usecase.CredentialUsecase
	Sessions    repository.SessionRepository
	Config      *config.Config
	Logger      *slog.Logger
}

// NewSessionAuthService is the constructor for sessionAuthService.
func NewSessionAuthService(params SessionAuthServiceParams) usecase.SessionAuthUsecase {
	ttl := time.Hour
	if params.Config != nil && params.Config.Auth != nil && params.Config.Auth.SessionTTL > 0 {
		ttl = params.Config.Auth.SessionTTL
	}

	return &sessionAuthService{
		credentials: params.Credentials,
		sessions:    params.Sessions,
		ttl:         ttl,
		logger:      params.Logger,
	}
}

func (srv *sessionAuthService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *sessionAuthService) Login(ctx context.Context, input usecase.LoginInput) (*usecase.SessionLoginOutput, error) {
	user, err := srv.credentials.Verify(ctx, input.Email, input.Password)
	if err != nil {
		return nil, err
	}

	session, err := srv.sessions.Create(ctx, user.ID, user.Nickname)
	if err != nil {
		srv.log(ctx).Error("Failed to create session", slog.Int64("user_id", user.ID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to create session")
	}

	maxAge := session.TTL
	if maxAge <= 0 {
		maxAge = srv.ttl
	}

	srv.log(ctx).Info("User logged in with session", slog.Int64("user_id", user.ID))

	return &usecase.SessionLoginOutput{
		SessionID: session.ID,
		MaxAge:    int64(maxAge / time.Second),
		User:      user,
	}, nil
}

// Logout removes the session. Unknown session ids are ignored.
func (srv *sessionAuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	removed, err := srv.sessions.Remove(ctx, sessionID)
	if err != nil {
		return errors.Wrap(err, "failed to remove session")
	}

	srv.log(ctx).Debug("Session logout", slog.Bool("removed", removed))

	return nil
}

func (srv *sessionAuthService) Resolve(ctx context.Context, sessionID string) (*entity.Principal, error) {
	if sessionID == "" {
		return nil, translate(repository.ErrSessionNotFound, "session cookie is missing")
	}

	session, err := srv.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, translate(err, "failed to resolve session")
	}

	return &entity.Principal{UserID: session.UserID, Nickname: session.Nickname}, nil
}
