package jwt

import (
	"context"
	"testing"
	"time"

	"animal-rescue/internal/ports/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSigner_RoundTrip(t *testing.T) {
	s, err := NewSigner("test-secret", time.Hour)
	require.NoError(t, err)

	token, exp, err := s.Issue(context.Background(), auth.Claims{Subject: "admin", Role: auth.RoleAdmin})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	c, err := s.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "admin", c.Subject)
	assert.True(t, c.IsAdmin())
}

func TestSigner_RejectsForeignAndExpired(t *testing.T) {
	a, _ := NewSigner("secret-a", time.Hour)
	b, _ := NewSigner("secret-b", time.Hour)

	token, _, err := a.Issue(context.Background(), auth.Claims{Subject: "admin", Role: auth.RoleAdmin})
	require.NoError(t, err)

	_, err = b.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// reloj adelantado más allá del ttl
	a.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = a.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = a.Verify(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrTokenEmpty)
}

func TestNewSigner_Validation(t *testing.T) {
	_, err := NewSigner("", time.Hour)
	assert.Error(t, err)
	_, err = NewSigner("x", 0)
	assert.Error(t, err)

	s, err := NewEphemeralSigner(time.Minute)
	require.NoError(t, err)
	assert.Len(t, s.secret, 32)
}

func TestSigner_Revoke(t *testing.T) {
	ctx := context.Background()
	s, err := NewSigner("test-secret", time.Hour)
	require.NoError(t, err)

	revoked, _, err := s.Issue(ctx, auth.Claims{Subject: "admin", Role: auth.RoleAdmin})
	require.NoError(t, err)
	other, _, err := s.Issue(ctx, auth.Claims{Subject: "admin", Role: auth.RoleAdmin})
	require.NoError(t, err)

	require.NoError(t, s.Revoke(ctx, revoked))
	_, err = s.Verify(ctx, revoked)
	assert.ErrorIs(t, err, ErrRevokedToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// cada login tiene su jti: revocar uno no afecta al otro
	_, err = s.Verify(ctx, other)
	assert.NoError(t, err)

	assert.ErrorIs(t, s.Revoke(ctx, "garbage"), ErrInvalidToken)

	// vencido el token, la entrada se limpia en el próximo Revoke
	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	fresh, _, err := s.Issue(ctx, auth.Claims{Subject: "admin", Role: auth.RoleAdmin})
	require.NoError(t, err)
	require.NoError(t, s.Revoke(ctx, fresh))
	assert.Len(t, s.revoked, 1)
}
