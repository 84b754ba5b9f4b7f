package memory

import (
	"context"
	"time"

	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/auth"
)

type tokenRepositoryImpl struct {
	s *Store
}

func NewTokenRepository(s *Store) auth.TokenRepository {
	return &tokenRepositoryImpl{s: s}
}

func (r *tokenRepositoryImpl) CreateRefreshToken(ctx context.Context, userID string, tokenHash string, expiresAt time.Time) error {
	defer r.s.lock(ctx)()
	r.s.st.tokens[tokenHash] = refreshToken{UserID: userID, ExpiresAt: expiresAt}
	return nil
}

func (r *tokenRepositoryImpl) IsRefreshTokenActive(ctx context.Context, tokenHash string, now time.Time) (bool, error) {
	defer r.s.lock(ctx)()
	t, ok := r.s.st.tokens[tokenHash]
	if !ok {
		return false, nil
	}
	return t.RevokedAt == nil && now.Before(t.ExpiresAt), nil
}

func (r *tokenRepositoryImpl) RevokeRefreshToken(ctx context.Context, tokenHash string, now time.Time) error {
	defer r.s.lock(ctx)()
	t, ok := r.s.st.tokens[tokenHash]
	if !ok || t.RevokedAt != nil {
		return nil
	}
	revoked := now
	t.RevokedAt = &revoked
	r.s.st.tokens[tokenHash] = t
	return nil
}
