// Package jwt firma y verifica los tokens del dashboard (HS256).
// Implementa auth.TokenIssuer y auth.AuthVerifier.
package jwt

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"animal-rescue/internal/ports/auth"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "animal-rescue"

var (
	ErrTokenEmpty   = errors.New("token is empty")
	ErrInvalidToken = errors.New("invalid token")
	ErrRevokedToken = fmt.Errorf("%w: revoked", ErrInvalidToken)
)

type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	// revoked: jti -> vencimiento. Vive en el proceso, no se comparte entre réplicas.
	mu      sync.Mutex
	revoked map[string]time.Time
}

type adminClaims struct {
	Role string `json:"role"`
	gojwt.RegisteredClaims
}

func NewSigner(secret string, ttl time.Duration) (*Signer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt secret is required")
	}
	if ttl <= 0 {
		return nil, errors.New("jwt ttl must be positive")
	}
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now, revoked: map[string]time.Time{}}, nil
}

// NewEphemeralSigner genera un secreto al azar: los tokens no sobreviven un reinicio.
func NewEphemeralSigner(ttl time.Duration) (*Signer, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return NewSigner(string(b), ttl)
}

func (s *Signer) Issue(_ context.Context, c auth.Claims) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.ttl)

	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, adminClaims{
		Role: c.Role,
		RegisteredClaims: gojwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   c.Subject,
			ID:        uuid.NewString(),
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(exp),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (s *Signer) Verify(_ context.Context, raw string) (auth.Claims, error) {
	claims, err := s.parse(raw)
	if err != nil {
		return auth.Claims{}, err
	}
	if s.isRevoked(claims.ID) {
		return auth.Claims{}, ErrRevokedToken
	}

	return auth.Claims{
		Subject:   claims.Subject,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}, nil
}

// Revoke deja el token inválido hasta su vencimiento. Un token vencido o
// ajeno no se guarda.
func (s *Signer) Revoke(_ context.Context, raw string) error {
	claims, err := s.parse(raw)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.revoked == nil {
		s.revoked = map[string]time.Time{}
	}
	now := s.now()
	for id, exp := range s.revoked {
		if !now.Before(exp) {
			delete(s.revoked, id)
		}
	}
	s.revoked[claims.ID] = claims.ExpiresAt.Time
	return nil
}

func (s *Signer) isRevoked(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[id]
	return ok
}

func (s *Signer) parse(raw string) (*adminClaims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrTokenEmpty
	}

	parsed, err := gojwt.ParseWithClaims(raw, &adminClaims{}, func(t *gojwt.Token) (any, error) {
		return s.secret, nil
	},
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithIssuer(issuer),
		gojwt.WithTimeFunc(s.now),
		gojwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*adminClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
