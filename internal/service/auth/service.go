package auth

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceImpl struct {
	tx database.Transactor
	user.UserRepository
	jwt.Service
	auth.TokenRepository
	clock clock.Clock
}

func NewAuthService(tx database.Transactor, userRepository user.UserRepository, jwtService jwt.Service, tokenRepository auth.TokenRepository, clk clock.Clock) auth.AuthService {
	if clk == nil {
		clk = clock.System()
	}
	return &AuthServiceImpl{
		tx:              tx,
		UserRepository:  userRepository,
		Service:         jwtService,
		TokenRepository: tokenRepository,
		clock:           clk,
	}
}

// hashToken hashes the token using SHA256 and encodes the result in base64.
// Only the hash is stored.
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return base64.StdEncoding.EncodeToString(hash[:])
}

// issue creates an access/refresh pair and stores the refresh hash. Callers
// run it inside a transaction.
func (a *AuthServiceImpl) issue(ctx context.Context, u user.User) (auth.TokenResponse, error) {
	var (
		tokenResponse auth.TokenResponse
		err           error
	)

	tokenResponse.AccessToken, tokenResponse.AccessTokenExpiresIn, err = a.Service.GenerateAccessToken(u.ID, u.Username, u.Role)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}
	tokenResponse.RefreshToken, tokenResponse.RefreshTokenExpiresIn, err = a.Service.GenerateRefreshToken(u.ID)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create refresh token: %w", err)
	}

	expiresAt := time.Unix(tokenResponse.RefreshTokenExpiresIn, 0)
	if err := a.TokenRepository.CreateRefreshToken(ctx, u.ID, hashToken(tokenResponse.RefreshToken), expiresAt); err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to save refresh token: %w", err)
	}

	tokenResponse.UserID = u.ID
	tokenResponse.Role = string(u.Role)
	return tokenResponse, nil
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	userData, err := a.UserRepository.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by username: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(userData.PasswordHash), []byte(req.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if !userData.IsActive {
		return auth.TokenResponse{}, auth.ErrAccountInactive
	}

	var tokenResponse auth.TokenResponse
	err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		tokenResponse, err = a.issue(ctx, userData)
		return err
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}
	return tokenResponse, nil
}

// RefreshToken implements auth.AuthService. The presented token is revoked
// and a new pair is issued in the same transaction.
func (a *AuthServiceImpl) RefreshToken(ctx context.Context, req auth.RefreshTokenRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	// 1. Verify signature, expiry and token type
	userID, err := a.Service.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidToken
	}

	tokenHash := hashToken(req.RefreshToken)
	var tokenResponse auth.TokenResponse
	err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		// 2. Check storage for revocation/expiry
		now := a.clock.Now()
		active, err := a.TokenRepository.IsRefreshTokenActive(ctx, tokenHash, now)
		if err != nil {
			return fmt.Errorf("failed to check refresh token: %w", err)
		}
		if !active {
			return auth.ErrRefreshTokenRevoked
		}

		// 3. The account must still be usable
		userData, err := a.UserRepository.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				return auth.ErrInvalidToken
			}
			return err
		}
		if !userData.IsActive {
			return auth.ErrAccountInactive
		}

		// 4. Rotate
		if err := a.TokenRepository.RevokeRefreshToken(ctx, tokenHash, now); err != nil {
			return fmt.Errorf("failed to revoke refresh token: %w", err)
		}
		tokenResponse, err = a.issue(ctx, userData)
		return err
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}
	return tokenResponse, nil
}

// Logout implements auth.AuthService. Revoking an unknown or already revoked
// token is not an error.
func (a *AuthServiceImpl) Logout(ctx context.Context, req auth.RefreshTokenRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if err := a.TokenRepository.RevokeRefreshToken(ctx, hashToken(req.RefreshToken), a.clock.Now()); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}
