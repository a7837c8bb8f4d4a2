package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vitalstudio/auth-service/internal/auth/domain"
	"github.com/vitalstudio/auth-service/internal/auth/store"
	"github.com/vitalstudio/auth-service/pkg/jwtx"
)

// SessionService issues, validates, and revokes signed session tokens. It is
// the only component that touches the signing secret or the revocation
// registry.
type SessionService struct {
	Signer *jwtx.Signer
	Banned store.BannedTokens
}

// Generate mints a fresh session token for email.
func (s *SessionService) Generate(_ context.Context, email domain.Email) (string, error) {
	token, _, err := s.Signer.Generate(string(email))
	if err != nil {
		return "", fmt.Errorf("%w: generate token: %w", domain.ErrUnexpected, err)
	}
	return token, nil
}

// Validate checks a token end to end: structure, revocation, then signature
// and claims. Revocation is consulted before any cryptographic work so a
// banned token is rejected even if the signing secret has since rotated.
func (s *SessionService) Validate(ctx context.Context, token string) (jwtx.SessionClaims, error) {
	if err := jwtx.CheckFormat(token); err != nil {
		return jwtx.SessionClaims{}, domain.ErrMalformedToken
	}

	banned, err := s.Banned.Check(ctx, token)
	if err != nil {
		return jwtx.SessionClaims{}, fmt.Errorf("%w: check revocation: %w", domain.ErrUnexpected, err)
	}
	if banned {
		return jwtx.SessionClaims{}, domain.ErrInvalidToken
	}

	claims, err := s.Signer.Validate(token)
	if err != nil {
		if errors.Is(err, jwtx.ErrMalformed) {
			return jwtx.SessionClaims{}, domain.ErrMalformedToken
		}
		return jwtx.SessionClaims{}, domain.ErrInvalidToken
	}
	return claims, nil
}

// Revoke validates the token and registers it in the revocation registry for
// its remaining lifetime. An already-invalid token cannot be revoked.
func (s *SessionService) Revoke(ctx context.Context, token string) error {
	claims, err := s.Validate(ctx, token)
	if err != nil {
		return err
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	err = s.Banned.Register(ctx, []store.BannedToken{{Token: token, TTL: ttl}})
	if err != nil {
		return fmt.Errorf("%w: register revocation: %w", domain.ErrUnexpected, err)
	}
	return nil
}
