package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"animal-rescue/internal/domain/adoptions"
	"animal-rescue/internal/domain/donations"
	"animal-rescue/internal/domain/hospitals"
	"animal-rescue/internal/domain/reports"
	"animal-rescue/internal/ports/auth"
	"animal-rescue/internal/ports/lockout"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listFunc[T any] func(ctx context.Context) ([]T, error)

func (f listFunc[T]) List(ctx context.Context) ([]T, error) { return f(ctx) }

func fixed[T any](items ...T) listFunc[T] {
	return func(context.Context) ([]T, error) { return items, nil }
}

type testIssuer struct{}

func (testIssuer) Issue(_ context.Context, c auth.Claims) (string, time.Time, error) {
	return "tok-" + c.Role, time.Now().Add(time.Hour), nil
}

// testLockout: misma regla que el store en memoria, sin ventana.
type testLockout struct {
	failed map[string]int
	until  map[string]time.Time
}

func newTestLockout() *testLockout {
	return &testLockout{failed: map[string]int{}, until: map[string]time.Time{}}
}

func (l *testLockout) Get(_ context.Context, key string) (lockout.State, error) {
	st := lockout.State{FailedCount: l.failed[key]}
	if u, ok := l.until[key]; ok {
		st.LockedUntil = &u
	}
	return st, nil
}

func (l *testLockout) RecordFailure(_ context.Context, key string, now time.Time, threshold int, window time.Duration) (lockout.State, error) {
	l.failed[key]++
	if l.failed[key] >= threshold {
		l.until[key] = now.Add(window)
	}
	return l.Get(context.Background(), key)
}

func (l *testLockout) Clear(_ context.Context, key string) error {
	delete(l.failed, key)
	delete(l.until, key)
	return nil
}

func checkDhinesh(plain string) error {
	if plain != "DHINESH" {
		return errors.New("mismatch")
	}
	return nil
}

func newTestService(src Sources, lock lockout.Store) *Service {
	return NewService(src, checkDhinesh, testIssuer{}, lock, LockoutPolicy{Threshold: 3, Window: time.Minute}, nil)
}

func emptySources() Sources {
	return Sources{
		Reports:   fixed[reports.Report](),
		Adoptions: fixed[adoptions.Request](),
		Donations: fixed[donations.Request](),
		Hospitals: fixed[hospitals.Registration](),
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	lock := newTestLockout()
	svc := newTestService(emptySources(), lock)

	sess, err := svc.Login(ctx, "10.0.0.1", "DHINESH")
	require.NoError(t, err)
	assert.Equal(t, "tok-admin", sess.Token)

	_, err = svc.Login(ctx, "10.0.0.1", "dhinesh")
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.Login(ctx, "10.0.0.1", "")
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestLogin_LocksAfterThreshold(t *testing.T) {
	ctx := context.Background()
	lock := newTestLockout()
	svc := newTestService(emptySources(), lock)

	for i := 0; i < 2; i++ {
		_, err := svc.Login(ctx, "1.2.3.4", "wrong")
		require.ErrorIs(t, err, ErrAccessDenied)
	}
	_, err := svc.Login(ctx, "1.2.3.4", "wrong")
	assert.ErrorIs(t, err, ErrLocked)

	// bloqueada: ni la contraseña correcta entra
	_, err = svc.Login(ctx, "1.2.3.4", "DHINESH")
	assert.ErrorIs(t, err, ErrLocked)

	// otra IP no se ve afectada
	_, err = svc.Login(ctx, "5.6.7.8", "DHINESH")
	assert.NoError(t, err)
}

func TestLogin_GlobalLimitAcrossClients(t *testing.T) {
	ctx := context.Background()
	lock := newTestLockout()
	svc := NewService(emptySources(), checkDhinesh, testIssuer{}, lock,
		LockoutPolicy{Threshold: 3, GlobalThreshold: 4, Window: time.Minute}, nil)

	// una IP distinta por intento: el contador por cliente nunca llega a 3
	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		_, err := svc.Login(ctx, ip, "wrong")
		require.ErrorIs(t, err, ErrAccessDenied)
	}
	_, err := svc.Login(ctx, "10.0.0.4", "wrong")
	assert.ErrorIs(t, err, ErrLocked)

	_, err = svc.Login(ctx, "10.0.0.5", "DHINESH")
	assert.ErrorIs(t, err, ErrLocked)
	assert.Equal(t, 4, lock.failed[globalKey])
}

func TestLogin_SuccessClearsFailures(t *testing.T) {
	ctx := context.Background()
	lock := newTestLockout()
	svc := newTestService(emptySources(), lock)

	_, _ = svc.Login(ctx, "ip", "x")
	_, _ = svc.Login(ctx, "ip", "x")
	_, err := svc.Login(ctx, "ip", "DHINESH")
	require.NoError(t, err)
	assert.Zero(t, lock.failed["ip"])
}

func TestOverview_StatsAndTransitions(t *testing.T) {
	src := Sources{
		Reports: fixed(
			reports.Report{ID: "r1", Status: reports.StatusPending},
			reports.Report{ID: "r2", Status: reports.StatusResolved},
			reports.Report{ID: "r3", Status: reports.StatusInProgress},
			reports.Report{ID: "r4", Status: reports.StatusPending},
		),
		Adoptions: fixed(adoptions.Request{ID: "a1", Status: adoptions.StatusPending}),
		Donations: fixed[donations.Request](),
		Hospitals: fixed(
			hospitals.Registration{ID: "h1", Status: hospitals.StatusApproved},
			hospitals.Registration{ID: "h2", Status: hospitals.StatusPending},
		),
	}
	svc := newTestService(src, newTestLockout())

	ov, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 4, Resolved: 1, Hospitals: 1, Pending: 2}, ov.Stats)
	assert.Len(t, ov.Adoptions, 1)
}

func TestOverview_AnyFailureIsLoadFailed(t *testing.T) {
	src := emptySources()
	src.Donations = listFunc[donations.Request](func(context.Context) ([]donations.Request, error) {
		return nil, errors.New("db down")
	})
	svc := newTestService(src, newTestLockout())

	_, err := svc.Overview(context.Background())
	assert.ErrorIs(t, err, ErrLoadFailed)
}

func TestHandlers_LoginOverviewLogout(t *testing.T) {
	src := Sources{
		Reports:   fixed(reports.Report{ID: "r1", Status: reports.StatusPending}),
		Adoptions: fixed[adoptions.Request](),
		Donations: fixed[donations.Request](),
		Hospitals: fixed[hospitals.Registration](),
	}
	svc := newTestService(src, newTestLockout())
	store := sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))

	// admin de prueba: exige el header X-Test-Admin
	admin := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("X-Test-Admin") == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}

	r := chi.NewRouter()
	RegisterRoutes(r, svc, store, admin)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(`{"password":"nope"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "access denied\n", rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(`{"password":"DHINESH"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	var lr loginResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&lr))
	assert.Equal(t, "tok-admin", lr.Token)
	assert.NotEmpty(t, rec.Result().Cookies())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/overview", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/admin/overview", nil)
	req.Header.Set("X-Test-Admin", "1")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var ov struct {
		Stats   Stats `json:"stats"`
		Reports []struct {
			ID                 string   `json:"id"`
			AllowedTransitions []string `json:"allowed_transitions"`
		} `json:"reports"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&ov))
	assert.Equal(t, 1, ov.Stats.Pending)
	require.Len(t, ov.Reports, 1)
	assert.ElementsMatch(t, []string{"in_progress", "rejected"}, ov.Reports[0].AllowedTransitions)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/logout", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestWriteError_LockedSetsRetryAfter(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, &LockedError{Until: time.Now().Add(30 * time.Second)})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}
