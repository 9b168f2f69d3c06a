package redis

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"community/internal/domain/entity"
	"community/internal/domain/repository"
	"community/internal/errors"
)

const refreshTokenKeyPrefix = "refresh_token:"

type refreshTokenRecord struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"userId"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// refreshTokenStore keeps one key per principal, so a principal never holds two live tokens.
// Expiry is delegated to the key TTL.
type refreshTokenStore struct {
	client *goredis.Client
	now    func() time.Time
}

// NewRefreshTokenStore is the constructor for refreshTokenStore.
func NewRefreshTokenStore(client *goredis.Client) repository.RefreshTokenRepository {
	return &refreshTokenStore{
		client: client,
		now:    time.Now,
	}
}

func refreshTokenKey(userID int64) string {
	return refreshTokenKeyPrefix + strconv.FormatInt(userID, 10)
}

// Save overwrites whatever token the principal held before.
func (s *refreshTokenStore) Save(ctx context.Context, token *entity.RefreshToken) error {
	if token.CreatedAt.IsZero() {
		token.CreatedAt = s.now()
	}

	ttl := token.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return s.DeleteByUserID(ctx, token.UserID)
	}

	payload, err := encodeRefreshToken(token)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, refreshTokenKey(token.UserID), payload, ttl).Err(); err != nil {
		return errors.Wrap(err, "failed to store refresh token")
	}

	return nil
}

func (s *refreshTokenStore) FindByUserID(ctx context.Context, userID int64) ([]*entity.RefreshToken, error) {
	token, err := s.load(ctx, s.client, userID)
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return []*entity.RefreshToken{}, nil
		}

		return nil, err
	}

	return []*entity.RefreshToken{token}, nil
}

// Rotate watches the principal's key; a concurrent write aborts the transaction and the caller loses.
func (s *refreshTokenStore) Rotate(ctx context.Context, oldToken string, next *entity.RefreshToken) error {
	if next.CreatedAt.IsZero() {
		next.CreatedAt = s.now()
	}

	ttl := next.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return errors.New("replacement refresh token is already expired")
	}
	payload, err := encodeRefreshToken(next)
	if err != nil {
		return err
	}

	key := refreshTokenKey(next.UserID)
	err = s.client.Watch(ctx, func(tx *goredis.Tx) error {
		current, err := s.load(ctx, tx, next.UserID)
		if err != nil {
			return err
		}
		if current.Token != oldToken {
			return repository.ErrRefreshTokenNotFound
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, key, payload, ttl)
			return nil
		})

		return err
	}, key)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, goredis.TxFailedErr):
		return errors.Wrap(repository.ErrRefreshTokenNotFound, "refresh token rotated concurrently")
	case errors.Is(err, repository.ErrRefreshTokenNotFound):
		return err
	default:
		return errors.Wrap(err, "failed to rotate refresh token")
	}
}

func (s *refreshTokenStore) DeleteByUserID(ctx context.Context, userID int64) error {
	if err := s.client.Del(ctx, refreshTokenKey(userID)).Err(); err != nil {
		return errors.Wrap(err, "failed to delete refresh token")
	}

	return nil
}

// DeleteExpired is a no-op: Redis evicts expired keys itself.
func (s *refreshTokenStore) DeleteExpired(_ context.Context) (int64, error) {
	return 0, nil
}

func (s *refreshTokenStore) load(ctx context.Context, cmd goredis.Cmdable, userID int64) (*entity.RefreshToken, error) {
	raw, err := cmd.Get(ctx, refreshTokenKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, repository.ErrRefreshTokenNotFound
		}

		return nil, errors.Wrap(err, "failed to load refresh token")
	}

	var record refreshTokenRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, errors.Wrap(err, "failed to decode refresh token")
	}

	token := &entity.RefreshToken{
		Token:     record.Token,
		UserID:    record.UserID,
		Email:     record.Email,
		ExpiresAt: record.ExpiresAt,
		CreatedAt: record.CreatedAt,
	}
	if token.IsExpired(s.now()) {
		return nil, repository.ErrRefreshTokenNotFound
	}

	return token, nil
}

func encodeRefreshToken(token *entity.RefreshToken) ([]byte, error) {
	payload, err := json.Marshal(refreshTokenRecord{
		Token:     token.Token,
		UserID:    token.UserID,
		Email:     token.Email,
		ExpiresAt: token.ExpiresAt,
		CreatedAt: token.CreatedAt,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode refresh token")
	}

	return payload, nil
}
