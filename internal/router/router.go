package router

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"net/http"
	"net/netip"
	"time"

	"animal-rescue/internal/adapters/auth/jwt"
	"animal-rescue/internal/adapters/auth/password"
	noopevents "animal-rescue/internal/adapters/events/noop"
	memlockout "animal-rescue/internal/adapters/lockout/memory"
	mem "animal-rescue/internal/adapters/storage/memory"
	"animal-rescue/internal/config"
	_ "animal-rescue/internal/docs"
	"animal-rescue/internal/domain/adoptions"
	"animal-rescue/internal/domain/contact"
	"animal-rescue/internal/domain/dashboard"
	"animal-rescue/internal/domain/donations"
	"animal-rescue/internal/domain/hospitals"
	"animal-rescue/internal/domain/reports"
	"animal-rescue/internal/domain/tracking"
	"animal-rescue/internal/middleware"
	"animal-rescue/internal/platform/logger"
	"animal-rescue/internal/ports/auth"
	"animal-rescue/internal/ports/events"
	"animal-rescue/internal/ports/lockout"
	"animal-rescue/internal/ports/objectstore"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Options: todo es opcional. Lo que venga nil se reemplaza por la variante
// en memoria / de desarrollo, así los tests levantan el router sin infra.
type Options struct {
	Logger logger.Logger

	// TrustedProxies: solo desde estas redes se leen X-Forwarded-For/X-Real-IP.
	TrustedProxies []netip.Prefix

	Reports   reports.Repository
	Adoptions adoptions.Repository
	Donations donations.Repository
	Hospitals hospitals.Repository

	// Photos nil = el alta con foto responde 502.
	Photos objectstore.Store
	// PhotoHandler sirve /photos/* cuando las fotos son locales.
	PhotoHandler http.Handler

	Events events.Publisher

	Tokens interface {
		auth.TokenIssuer
		auth.AuthVerifier
	}
	Sessions      sessions.Store
	CheckPassword dashboard.PasswordChecker
	Lockout       lockout.Store
	LockoutPolicy dashboard.LockoutPolicy

	TrackingInterval time.Duration
}

func NewRouter(opts Options) (http.Handler, error) {
	if err := opts.withDefaults(); err != nil {
		return nil, err
	}
	log := opts.Logger

	r := chi.NewRouter()

	r.Use(middleware.ClientIP(opts.TrustedProxies))
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recover(log))

	r.Use(middleware.AuthContext(opts.Tokens, opts.Sessions))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/", indexHandler)
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	if opts.PhotoHandler != nil {
		r.Handle("/photos/*", http.StripPrefix("/photos", opts.PhotoHandler))
	}

	// Services por módulo
	reportsSvc := reports.NewService(opts.Reports, opts.Photos, opts.Events, log)
	adoptionsSvc := adoptions.NewService(opts.Adoptions, opts.Events, log)
	donationsSvc := donations.NewService(opts.Donations, opts.Events, log)
	hospitalsSvc := hospitals.NewService(opts.Hospitals, opts.Events, log)
	contactSvc := contact.NewService(opts.Events, log)
	dashboardSvc := dashboard.NewService(dashboard.Sources{
		Reports:   reportsSvc,
		Adoptions: adoptionsSvc,
		Donations: donationsSvc,
		Hospitals: hospitalsSvc,
	}, opts.CheckPassword, opts.Tokens, opts.Lockout, opts.LockoutPolicy, log)

	admin := middleware.RequireAdmin

	// Rutas por módulo
	reports.RegisterRoutes(r, reportsSvc, admin)
	adoptions.RegisterRoutes(r, adoptionsSvc, admin)
	donations.RegisterRoutes(r, donationsSvc, admin)
	hospitals.RegisterRoutes(r, hospitalsSvc, admin)
	contact.RegisterRoutes(r, contactSvc)
	tracking.RegisterRoutes(r, tracking.NewHandler(opts.TrackingInterval, log))
	dashboard.RegisterRoutes(r, dashboardSvc, opts.Sessions, admin)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	return r, nil
}

func (o *Options) withDefaults() error {
	if o.Logger == nil {
		o.Logger = logger.NewNop()
	}
	if o.Reports == nil {
		o.Reports = mem.NewReportRepo()
	}
	if o.Adoptions == nil {
		o.Adoptions = mem.NewAdoptionRepo()
	}
	if o.Donations == nil {
		o.Donations = mem.NewDonationRepo()
	}
	if o.Hospitals == nil {
		o.Hospitals = mem.NewHospitalRepo()
	}
	if o.Events == nil {
		o.Events = noopevents.NewPublisher(o.Logger)
	}
	if o.Lockout == nil {
		o.Lockout = memlockout.NewStore()
	}

	defaults := config.Defaults()
	if o.TrackingInterval <= 0 {
		o.TrackingInterval = defaults.TrackingInterval
	}
	if o.Tokens == nil {
		signer, err := jwt.NewEphemeralSigner(defaults.AdminTokenTTL)
		if err != nil {
			return fmt.Errorf("admin token signer: %w", err)
		}
		o.Tokens = signer
	}
	if o.Sessions == nil {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return fmt.Errorf("session key: %w", err)
		}
		o.Sessions = sessions.NewCookieStore(key)
	}
	if o.CheckPassword == nil {
		// modo dev: contraseña por defecto de config
		hash, err := password.Hash(defaults.AdminPassword)
		if err != nil {
			return fmt.Errorf("hash default admin password: %w", err)
		}
		o.CheckPassword = PasswordChecker(hash)
	}
	return nil
}

// PasswordChecker compara contra un hash bcrypt.
func PasswordChecker(hash string) dashboard.PasswordChecker {
	return func(plain string) error {
		return password.Check(hash, plain)
	}
}

type resource struct {
	Path        string `json:"path"`
	Description string `json:"description"`
}

var resources = []resource{
	{"/reports", "report an animal in need; list reported animals"},
	{"/reports/adoptable", "animals ready for adoption"},
	{"/adoptions", "request an adoption"},
	{"/donations", "pledge a donation"},
	{"/hospitals", "register a veterinary hospital; approved directory"},
	{"/tracking", "GPS positions of tracked animals (stream at /tracking/stream)"},
	{"/contact", "send a message to the team"},
	{"/admin/login", "dashboard access"},
	{"/swagger/index.html", "API docs"},
}

func indexHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"service":   "animal-rescue",
		"resources": resources,
	})
}
