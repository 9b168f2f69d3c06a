package impl

import (
	"context"
	"log/slog"

	deliverycontext "community/internal/delivery/context"
	"community/internal/domain/entity"
	domainerrors "community/internal/domain/errors"
	"community/internal/domain/service"
	"community/internal/errors"
	"community/internal/usecase"

	"go.uber.org/fx"
)

// authService implements the AuthUsecase interface.
type authService struct {
	credentials  usecase.CredentialUsecase
	ledger       usecase.RefreshTokenUsecase
	tokenService service.TokenService
	logger       *slog.Logger
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	Credentials  usecase.CredentialUsecase
	Ledger       usecase.RefreshTokenUsecase
	TokenService service.TokenService
	Logger       *slog.Logger
}

// NewAuthService is the constructor for authService.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		credentials:  params.Credentials,
		ledger:       params.Ledger,
		tokenService: params.TokenService,
		logger:       params.Logger,
	}
}

func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Login verifies the credentials, revokes every previous refresh token of the
// user and stores the newly minted one.
func (srv *authService) Login(ctx context.Context, input usecase.LoginInput) (*usecase.LoginOutput, error) {
	user, err := srv.credentials.Verify(ctx, input.Email, input.Password)
	if err != nil {
		return nil, err
	}

	if err := srv.ledger.RevokeAll(ctx, user.ID); err != nil {
		return nil, err
	}

	accessToken, err := srv.tokenService.IssueAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue access token")
	}

	refreshToken, expiresAt, err := issueRefreshToken(srv.tokenService, user.ID)
	if err != nil {
		return nil, err
	}

	if err := srv.ledger.Save(ctx, refreshToken, user.ID, user.Email, expiresAt); err != nil {
		srv.log(ctx).Error("Failed to store refresh token on login", slog.Int64("user_id", user.ID), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Info("User logged in", slog.Int64("user_id", user.ID))

	return &usecase.LoginOutput{
		AccessToken:   accessToken,
		RefreshToken:  refreshToken,
		RefreshMaxAge: srv.ledger.RemainingSeconds(refreshToken),
		User:          user,
	}, nil
}

func (srv *authService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	claims, err := srv.tokenService.DecodeRefreshToken(refreshToken)
	if err != nil {
		srv.log(ctx).Debug("Logout with unreadable refresh token", slog.Any("error", err))

		return nil
	}

	userID, err := srv.tokenService.ExtractSubject(claims)
	if err != nil {
		return nil
	}

	if err := srv.ledger.RevokeAll(ctx, userID); err != nil {
		return err
	}

	srv.log(ctx).Info("User logged out", slog.Int64("user_id", userID))

	return nil
}

func (srv *authService) Reissue(ctx context.Context, refreshToken string) (*usecase.ReissueOutput, error) {
	if refreshToken == "" {
		return nil, errors.Wrap(domainerrors.ErrInvalidRefreshToken, "refresh token cookie is missing")
	}

	return srv.ledger.Reissue(ctx, refreshToken)
}

func (srv *authService) Authenticate(_ context.Context, accessToken string) (*entity.Principal, error) {
	claims, err := srv.tokenService.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrAuthenticationFailed, err.Error())
	}

	userID, err := srv.tokenService.ExtractSubject(claims)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrAuthenticationFailed, err.Error())
	}

	email, _ := srv.tokenService.ExtractEmail(claims)

	return &entity.Principal{UserID: userID, Email: email}, nil
}
