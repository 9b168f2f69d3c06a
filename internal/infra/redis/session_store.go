package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"community/config"
	"community/internal/domain/entity"
	domainerrors "community/internal/domain/errors"
	"community/internal/domain/repository"
	"community/internal/errors"
)

const sessionKeyPrefix = "session:"

// sessionStore keeps sessions as JSON values with a fixed TTL.
// Every lookup goes to Redis so a removed session is rejected immediately.
type sessionStore struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewSessionStore is the constructor for sessionStore.
func NewSessionStore(client *goredis.Client, cfg *config.Config) repository.SessionRepository {
	ttl := time.Hour
	if cfg != nil && cfg.Auth != nil && cfg.Auth.SessionTTL > 0 {
		ttl = cfg.Auth.SessionTTL
	}

	return &sessionStore{
		client: client,
		ttl:    ttl,
	}
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

func (s *sessionStore) Create(ctx context.Context, userID int64, nickname string) (*entity.Session, error) {
	session := &entity.Session{
		ID:       uuid.NewString(),
		UserID:   userID,
		Nickname: nickname,
		TTL:      s.ttl,
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrSessionPersistence, err.Error())
	}
	if err := s.client.Set(ctx, sessionKey(session.ID), payload, s.ttl).Err(); err != nil {
		return nil, errors.Wrap(domainerrors.ErrSessionPersistence, err.Error())
	}

	return session, nil
}

func (s *sessionStore) Get(ctx context.Context, sessionID string) (*entity.Session, error) {
	if sessionID == "" {
		return nil, repository.ErrSessionNotFound
	}

	raw, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, repository.ErrSessionNotFound
		}

		return nil, errors.Wrap(err, "failed to load session")
	}

	session := &entity.Session{}
	if err := json.Unmarshal(raw, session); err != nil {
		return nil, errors.Wrap(err, "failed to decode session")
	}
	session.ID = sessionID
	session.TTL = s.ttl

	return session, nil
}

func (s *sessionStore) Remove(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}

	removed, err := s.client.Del(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return false, errors.Wrap(err, "failed to remove session")
	}

	return removed > 0, nil
}
