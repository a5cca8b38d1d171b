package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"animal-rescue/internal/platform/logger"
	"animal-rescue/internal/ports/auth"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

type stubVerifier struct {
	valid string
}

func (v stubVerifier) Verify(_ context.Context, token string) (auth.Claims, error) {
	if token != v.valid {
		return auth.Claims{}, errors.New("bad token")
	}
	return auth.Claims{Subject: "admin", Role: auth.RoleAdmin}, nil
}

func protected() http.Handler {
	h := RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, _ := GetClaims(r.Context())
		_, _ = w.Write([]byte(c.Subject))
	}))
	return h
}

func TestAuthContext_Bearer(t *testing.T) {
	h := AuthContext(stubVerifier{valid: "good"}, nil)(protected())

	req := httptest.NewRequest(http.MethodGet, "/admin/overview", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/admin/overview", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthContext_NoCredentials(t *testing.T) {
	h := AuthContext(stubVerifier{valid: "good"}, sessions.NewCookieStore([]byte("k")))(protected())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/reports", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthContext_SessionCookie(t *testing.T) {
	store := sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))

	// emitir la cookie como lo hace el login
	setReq := httptest.NewRequest(http.MethodPost, "/admin/login", nil)
	setRec := httptest.NewRecorder()
	sess, err := store.Get(setReq, SessionName)
	require.NoError(t, err)
	sess.Values[SessionTokenKey] = "good"
	require.NoError(t, sess.Save(setReq, setRec))
	cookies := setRec.Result().Cookies()
	require.NotEmpty(t, cookies)

	h := AuthContext(stubVerifier{valid: "good"}, store)(protected())
	req := httptest.NewRequest(http.MethodGet, "/admin/reports", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer  abc "))
	assert.Equal(t, "", bearerToken("Basic abc"))
	assert.Equal(t, "", bearerToken("Bearer"))
}

func TestRecover_LogsAndReturns500(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Format: logger.FormatJSON, Output: zapcore.AddSync(&buf)})

	h := Recover(log)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), "panic recovered")
	assert.Contains(t, buf.String(), "boom")
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Format: logger.FormatJSON, Output: zapcore.AddSync(&buf)})

	h := RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/contact", nil))

	out := buf.String()
	assert.Contains(t, out, `"path":"/contact"`)
	assert.Contains(t, out, `"status":418`)
	assert.Contains(t, out, `"method":"POST"`)
}

func TestClientIP(t *testing.T) {
	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.RemoteAddr))
	})
	serve := func(h http.Handler, remote string, headers map[string]string) string {
		req := httptest.NewRequest(http.MethodPost, "/admin/login", nil)
		req.RemoteAddr = remote
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Body.String()
	}

	// sin proxies confiables los headers del cliente no cuentan
	open := ClientIP(nil)(echo)
	assert.Equal(t, "203.0.113.9:5555", serve(open, "203.0.113.9:5555", map[string]string{
		"X-Forwarded-For": "1.1.1.1",
		"X-Real-IP":       "2.2.2.2",
	}))

	trusted := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}
	h := ClientIP(trusted)(echo)

	// detrás del proxy: el salto más a la derecha que no es propio
	assert.Equal(t, "198.51.100.4", serve(h, "10.0.0.2:443", map[string]string{
		"X-Forwarded-For": "6.6.6.6, 198.51.100.4, 10.0.0.3",
	}))
	assert.Equal(t, "198.51.100.5", serve(h, "10.0.0.2:443", map[string]string{
		"X-Real-IP": "198.51.100.5",
	}))

	// un cliente directo fuera del rango no puede elegir su IP
	assert.Equal(t, "203.0.113.9:5555", serve(h, "203.0.113.9:5555", map[string]string{
		"X-Forwarded-For": "10.0.0.7",
	}))
}
