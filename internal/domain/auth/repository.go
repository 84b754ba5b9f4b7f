package auth

import (
	"context"
	"time"
)

// TokenRepository persists refresh tokens by hash.
type TokenRepository interface {
	CreateRefreshToken(ctx context.Context, userID string, tokenHash string, expiresAt time.Time) error
	// IsRefreshTokenActive reports whether the token exists, is unrevoked and
	// unexpired at now.
	IsRefreshTokenActive(ctx context.Context, tokenHash string, now time.Time) (bool, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string, now time.Time) error
}
