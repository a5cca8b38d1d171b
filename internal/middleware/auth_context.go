package middleware

import (
	"context"
	"net/http"
	"strings"

	"animal-rescue/internal/ports/auth"

	"github.com/gorilla/sessions"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// Cookie de sesión del dashboard. El login guarda el token firmado en
// SessionTokenKey; AuthContext lo lee de ahí si no viene Bearer.
const (
	SessionName     = "rescue_admin"
	SessionTokenKey = "token"
)

// AuthContext:
// - Bearer token en Authorization, si no el token guardado en la sesión.
// - Si Verify() falla el request sigue sin claims; RequireAdmin decide el 401.
func AuthContext(verifier auth.AuthVerifier, store sessions.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil {
				next.ServeHTTP(w, r)
				return
			}

			token := RequestToken(r, store)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verifier.Verify(r.Context(), token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin corta con 401 si no hay claims de admin en el contexto.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := GetClaims(r.Context())
		if !ok || !c.IsAdmin() {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func GetClaims(ctx context.Context) (auth.Claims, bool) {
	v := ctx.Value(claimsKey)
	if v == nil {
		return auth.Claims{}, false
	}
	c, ok := v.(auth.Claims)
	return c, ok
}

// RequestToken: el Bearer del header o, si no hay, el de la cookie de sesión.
func RequestToken(r *http.Request, store sessions.Store) string {
	if token := bearerToken(r.Header.Get("Authorization")); token != "" {
		return token
	}
	if store == nil {
		return ""
	}
	return sessionToken(store, r)
}

func sessionToken(store sessions.Store, r *http.Request) string {
	// Get devuelve una sesión nueva (y error) si la cookie no decodifica
	sess, err := store.Get(r, SessionName)
	if err != nil || sess == nil {
		return ""
	}
	token, _ := sess.Values[SessionTokenKey].(string)
	return strings.TrimSpace(token)
}

func bearerToken(authHeader string) string {
	if strings.TrimSpace(authHeader) == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
