package auth

import (
	"context"
	"time"
)

// AuthVerifier verifica un token y devuelve claims o error.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

// TokenIssuer firma claims y devuelve el token junto con su vencimiento.
type TokenIssuer interface {
	Issue(ctx context.Context, c Claims) (token string, expiresAt time.Time, err error)
}

// TokenRevoker invalida un token antes de que venza (logout).
type TokenRevoker interface {
	Revoke(ctx context.Context, token string) error
}
