package impl

import (
	"context"
	"log/slog"

	deliverycontext "community/internal/delivery/context"
	"community/internal/domain/entity"
	domainerrors "community/internal/domain/errors"
	"community/internal/domain/repository"
	"community/internal/domain/service"
	"community/internal/errors"
	"community/internal/usecase"

	"go.uber.org/fx"
)

// credentialService implements the CredentialUsecase interface.
type credentialService struct {
	userRepo repository.UserRepository
	hasher   service.PasswordHasher
	logger   *slog.Logger
}

// CredentialServiceParams holds dependencies for CredentialService, injected by Fx.
type CredentialServiceParams struct {
	fx.In

	UserRepo repository.UserRepository
	Hasher   service.PasswordHasher
	Logger   *slog.Logger
}

// NewCredentialService is the constructor for credentialService.
func NewCredentialService(params CredentialServiceParams) usecase.CredentialUsecase {
	return &credentialService{
		userRepo: params.UserRepo,
		hasher:   params.Hasher,
		logger:   params.Logger,
	}
}

func (srv *credentialService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Verify checks the password against the stored hash. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (srv *credentialService) Verify(ctx context.Context, email, password string) (*entity.User, error) {
	user, err := srv.userRepo.FindByEmailFromPrimary(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		srv.log(ctx).Info("Login attempt for unknown email", slog.String("email", email))

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "user not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load user for credential check")
	}

	if !srv.hasher.Check(password, user.PasswordHash) {
		srv.log(ctx).Info("Login attempt with wrong password", slog.Int64("user_id", user.ID))

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "password mismatch")
	}

	return user, nil
}
