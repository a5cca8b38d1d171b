// Package dashboard es el panel de administración: login con contraseña
// compartida y la vista general de las cuatro colas de solicitudes.
package dashboard

import (
	"context"
	"errors"
	"strings"
	"time"

	"animal-rescue/internal/domain/adoptions"
	"animal-rescue/internal/domain/donations"
	"animal-rescue/internal/domain/hospitals"
	"animal-rescue/internal/domain/reports"
	"animal-rescue/internal/platform/logger"
	"animal-rescue/internal/ports/auth"
	"animal-rescue/internal/ports/lockout"

	"golang.org/x/sync/errgroup"
)

var (
	ErrAccessDenied = errors.New("access denied")
	ErrLocked       = errors.New("too many failed attempts")
	ErrLoadFailed   = errors.New("failed to load dashboard data")
)

type ReportLister interface {
	List(ctx context.Context) ([]reports.Report, error)
}

type AdoptionLister interface {
	List(ctx context.Context) ([]adoptions.Request, error)
}

type DonationLister interface {
	List(ctx context.Context) ([]donations.Request, error)
}

type HospitalLister interface {
	List(ctx context.Context) ([]hospitals.Registration, error)
}

// Sources agrupa los services de dominio que alimentan el overview.
type Sources struct {
	Reports   ReportLister
	Adoptions AdoptionLister
	Donations DonationLister
	Hospitals HospitalLister
}

// PasswordChecker devuelve nil si la contraseña es la del dashboard.
type PasswordChecker func(plain string) error

// LockoutPolicy: Threshold cuenta por cliente; GlobalThreshold cuenta todos
// los fallos juntos, así rotar de IP no alcanza para seguir probando.
type LockoutPolicy struct {
	Threshold       int
	GlobalThreshold int
	Window          time.Duration
}

// globalKey no puede chocar con una IP.
const globalKey = "*"

type Service struct {
	src     Sources
	check   PasswordChecker
	issuer  auth.TokenIssuer
	revoker auth.TokenRevoker
	lock    lockout.Store
	policy  LockoutPolicy
	log     logger.Logger
	now     func() time.Time
}

func NewService(src Sources, check PasswordChecker, issuer auth.TokenIssuer, lock lockout.Store, policy LockoutPolicy, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	if policy.Threshold <= 0 {
		policy.Threshold = 5
	}
	if policy.GlobalThreshold <= 0 {
		policy.GlobalThreshold = 50
	}
	if policy.Window <= 0 {
		policy.Window = 15 * time.Minute
	}
	// el firmador JWT también revoca; otros issuers dejan el logout solo en la cookie
	revoker, _ := issuer.(auth.TokenRevoker)
	return &Service{
		src:     src,
		check:   check,
		issuer:  issuer,
		revoker: revoker,
		lock:    lock,
		policy:  policy,
		log:     log.With(map[string]any{"module": "dashboard"}),
		now:     time.Now,
	}
}

type Session struct {
	Token     string
	ExpiresAt time.Time
}

// Logout invalida el token del request (Bearer o cookie) hasta que venza.
// Un token vacío o ya inválido no es error: el logout igual borra la cookie.
func (s *Service) Logout(ctx context.Context, token string) {
	token = strings.TrimSpace(token)
	if token == "" || s.revoker == nil {
		return
	}
	if err := s.revoker.Revoke(ctx, token); err != nil {
		s.log.Info("logout with invalid token", map[string]any{"err": err})
	}
}

// recordFailure suma el fallo al cliente y al contador global. Devuelve
// LockedError si cualquiera de los dos quedó bloqueado.
func (s *Service) recordFailure(ctx context.Context, key string, now time.Time) error {
	st, err := s.lock.RecordFailure(ctx, key, now, s.policy.Threshold, s.policy.Window)
	if err != nil {
		s.log.Warn("lockout record failed", map[string]any{"err": err})
	}
	global, err := s.lock.RecordFailure(ctx, globalKey, now, s.policy.GlobalThreshold, s.policy.Window)
	if err != nil {
		s.log.Warn("lockout record failed", map[string]any{"err": err, "scope": "global"})
	}
	s.log.Info("admin login denied", map[string]any{"client": key, "failed_count": st.FailedCount, "global_failed_count": global.FailedCount})

	var until *time.Time
	for _, c := range []lockout.State{st, global} {
		if c.Locked(now) && (until == nil || c.LockedUntil.After(*until)) {
			until = c.LockedUntil
		}
	}
	if until != nil {
		if global.Locked(now) {
			s.log.Warn("admin login locked globally", map[string]any{"until": *global.LockedUntil})
		}
		return &LockedError{Until: *until}
	}
	return ErrAccessDenied
}

// LockedError lleva hasta cuándo dura el bloqueo (para Retry-After).
type LockedError struct {
	Until time.Time
}

func (e *LockedError) Error() string { return ErrLocked.Error() }
func (e *LockedError) Unwrap() error { return ErrLocked }

// Login valida la contraseña. key identifica al cliente (IP) para el
// conteo de intentos fallidos.
func (s *Service) Login(ctx context.Context, key, plain string) (Session, error) {
	key = strings.TrimSpace(key)
	if key == "" || key == globalKey {
		key = "unknown"
	}
	now := s.now()

	for _, k := range []string{globalKey, key} {
		st, err := s.lock.Get(ctx, k)
		if err != nil {
			return Session{}, err
		}
		if st.Locked(now) {
			return Session{}, &LockedError{Until: *st.LockedUntil}
		}
	}

	if plain == "" || s.check(plain) != nil {
		return Session{}, s.recordFailure(ctx, key, now)
	}

	if err := s.lock.Clear(ctx, key); err != nil {
		s.log.Warn("lockout clear failed", map[string]any{"err": err})
	}

	token, exp, err := s.issuer.Issue(ctx, auth.Claims{Subject: "admin", Role: auth.RoleAdmin})
	if err != nil {
		return Session{}, err
	}
	s.log.Info("admin login", map[string]any{"client": key})
	return Session{Token: token, ExpiresAt: exp}, nil
}

type Stats struct {
	Total     int `json:"total"`
	Resolved  int `json:"resolved"`
	Hospitals int `json:"hospitals"`
	Pending   int `json:"pending"`
}

type Overview struct {
	Reports   []reports.Report
	Adoptions []adoptions.Request
	Donations []donations.Request
	Hospitals []hospitals.Registration
	Stats     Stats
}

// Overview trae las cuatro listas en paralelo. Si alguna falla se
// cancelan las demás y se devuelve ErrLoadFailed.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	var out Overview
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		out.Reports, err = s.src.Reports.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.Adoptions, err = s.src.Adoptions.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.Donations, err = s.src.Donations.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.Hospitals, err = s.src.Hospitals.List(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		s.log.Error("dashboard fetch failed", map[string]any{"err": err})
		return Overview{}, ErrLoadFailed
	}

	out.Stats = ComputeStats(out.Reports, out.Hospitals)
	return out, nil
}

// ComputeStats: total/resolved/pending sobre reportes, hospitals = aprobados.
func ComputeStats(rs []reports.Report, hs []hospitals.Registration) Stats {
	st := Stats{Total: len(rs)}
	for _, r := range rs {
		switch r.Status {
		case reports.StatusResolved:
			st.Resolved++
		case reports.StatusPending:
			st.Pending++
		}
	}
	for _, h := range hs {
		if h.Status == hospitals.StatusApproved {
			st.Hospitals++
		}
	}
	return st
}
