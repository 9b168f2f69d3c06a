package impl

import (
	"context"
	"log/slog"
	"math"
	"time"

	deliverycontext "community/internal/delivery/context"
	"community/internal/domain/entity"
	domainerrors "community/internal/domain/errors"
	"community/internal/domain/repository"
	"community/internal/domain/service"
	"community/internal/errors"
	"community/internal/usecase"

	"go.uber.org/fx"
)

// refreshTokenService implements the RefreshTokenUsecase interface.
type refreshTokenService struct {
	repo         repository.RefreshTokenRepository
	tokenService service.TokenService
	now          func() time.Time
	logger       *slog.Logger
}

// RefreshTokenServiceParams holds dependencies for RefreshTokenService, injected by Fx.
type RefreshTokenServiceParams struct {
	fx.In

	Repo         repository.RefreshTokenRepository
	TokenService service.TokenService
	Logger       *slog.Logger
}

// NewRefreshTokenService is the constructor for refreshTokenService.
func NewRefreshTokenService(params RefreshTokenServiceParams) usecase.RefreshTokenUsecase {
	return &refreshTokenService{
		repo:         params.Repo,
		tokenService: params.TokenService,
		now:          time.Now,
		logger:       params.Logger,
	}
}

func (srv *refreshTokenService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *refreshTokenService) Save(ctx context.Context, token string, userID int64, email string, expiresAt time.Time) error {
	record := &entity.RefreshToken{
		Token:     token,
		UserID:    userID,
		Email:     email,
		ExpiresAt: expiresAt,
	}
	if err := srv.repo.Save(ctx, record); err != nil {
		return translate(err, "failed to save refresh token")
	}

	return nil
}

func (srv *refreshTokenService) Exists(ctx context.Context, token string) (bool, error) {
	_, record, err := srv.lookup(ctx, token)
	if err != nil {
		return false, err
	}

	return record != nil, nil
}

// lookup validates the token and returns its owner with the matching live record.
// A nil record means the token is not the owner's live token.
func (srv *refreshTokenService) lookup(ctx context.Context, token string) (int64, *entity.RefreshToken, error) {
	claims, err := srv.tokenService.ValidateRefreshToken(token)
	if err != nil {
		srv.log(ctx).Debug("Refresh token rejected", slog.Any("error", err))

		return 0, nil, nil
	}

	userID, err := srv.tokenService.ExtractSubject(claims)
	if err != nil {
		return 0, nil, nil
	}

	records, err := srv.repo.FindByUserID(ctx, userID)
	if err != nil {
		return 0, nil, errors.Wrap(err, "failed to load refresh tokens")
	}

	now := srv.now()
	for _, record := range records {
		if record.Token == token && !record.IsExpired(now) {
			return userID, record, nil
		}
	}

	return userID, nil, nil
}

// Reissue mints a new pair and atomically swaps the stored token.
// Losing a concurrent rotation of the same token yields ErrInvalidRefreshToken.
func (srv *refreshTokenService) Reissue(ctx context.Context, oldToken string) (*usecase.ReissueOutput, error) {
	userID, record, err := srv.lookup(ctx, oldToken)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, errors.Wrap(domainerrors.ErrInvalidRefreshToken, "refresh token is not live")
	}

	accessToken, err := srv.tokenService.IssueAccessToken(userID, record.Email)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue access token")
	}

	refreshToken, expiresAt, err := issueRefreshToken(srv.tokenService, userID)
	if err != nil {
		return nil, err
	}

	next := &entity.RefreshToken{
		Token:     refreshToken,
		UserID:    userID,
		Email:     record.Email,
		ExpiresAt: expiresAt,
	}
	if err := srv.repo.Rotate(ctx, oldToken, next); err != nil {
		srv.log(ctx).Warn("Refresh token rotation failed", slog.Int64("user_id", userID), slog.Any("error", err))

		return nil, translate(err, "failed to rotate refresh token")
	}

	srv.log(ctx).Debug("Refresh token rotated", slog.Int64("user_id", userID))

	return &usecase.ReissueOutput{
		AccessToken:   accessToken,
		RefreshToken:  refreshToken,
		RefreshMaxAge: srv.RemainingSeconds(refreshToken),
	}, nil
}

func (srv *refreshTokenService) RevokeAll(ctx context.Context, userID int64) error {
	if err := srv.repo.DeleteByUserID(ctx, userID); err != nil {
		return errors.Wrap(err, "failed to revoke refresh tokens")
	}

	return nil
}

func (srv *refreshTokenService) RemainingSeconds(token string) int64 {
	claims, err := srv.tokenService.DecodeRefreshToken(token)
	if err != nil {
		return 0
	}

	expiresAt, ok := srv.tokenService.ExtractExpiry(claims)
	if !ok {
		return 0
	}

	return int64(math.Floor(expiresAt.Sub(srv.now()).Seconds()))
}

func (srv *refreshTokenService) SweepExpired(ctx context.Context) (int64, error) {
	removed, err := srv.repo.DeleteExpired(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to sweep expired refresh tokens")
	}

	return removed, nil
}

// issueRefreshToken mints a refresh token and reads back its exp claim.
func issueRefreshToken(tokens service.TokenService, userID int64) (string, time.Time, error) {
	token, err := tokens.IssueRefreshToken(userID)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "failed to issue refresh token")
	}

	claims, err := tokens.DecodeRefreshToken(token)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "failed to decode issued refresh token")
	}

	expiresAt, ok := tokens.ExtractExpiry(claims)
	if !ok {
		return "", time.Time{}, errors.New("issued refresh token carries no expiry")
	}

	return token, expiresAt, nil
}
