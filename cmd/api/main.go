package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"animal-rescue/internal/adapters/auth/jwt"
	"animal-rescue/internal/adapters/auth/password"
	kafkaevents "animal-rescue/internal/adapters/events/kafka"
	redislockout "animal-rescue/internal/adapters/lockout/redis"
	"animal-rescue/internal/adapters/objectstore/local"
	"animal-rescue/internal/adapters/objectstore/remote"
	"animal-rescue/internal/adapters/storage/sqlstore"
	"animal-rescue/internal/config"
	"animal-rescue/internal/domain/dashboard"
	"animal-rescue/internal/platform/logger"
	"animal-rescue/internal/router"

	"github.com/gorilla/sessions"
)

// @title Animal Rescue API
// @version 1.0
// @description Reportes de animales, adopciones, donaciones, hospitales y tracking GPS.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})

	if err := run(cfg, log); err != nil {
		log.Error("server error", map[string]any{"err": err})
		_ = log.Sync()
		os.Exit(1)
	}
	_ = log.Sync()
}

func run(cfg config.Config, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].Close()
		}
	}()

	opts := router.Options{
		Logger:           log,
		TrustedProxies:   cfg.TrustedProxyPrefixes(),
		TrackingInterval: cfg.TrackingInterval,
		LockoutPolicy: dashboard.LockoutPolicy{
			Threshold:       cfg.LockoutThreshold,
			GlobalThreshold: cfg.LockoutGlobalThreshold,
			Window:          cfg.LockoutWindow,
		},
	}

	// Storage: memory (default) o SQL
	if cfg.DBDriver != config.DriverMemory {
		db, err := sqlstore.Open(ctx, sqlstore.Dialect(cfg.DBDriver), cfg.DBDSN)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		closers = append(closers, db)
		if err := db.Migrate(); err != nil {
			return err
		}
		opts.Reports = sqlstore.NewReportsRepo(db)
		opts.Adoptions = sqlstore.NewAdoptionsRepo(db)
		opts.Donations = sqlstore.NewDonationsRepo(db)
		opts.Hospitals = sqlstore.NewHospitalsRepo(db)
		log.Info("storage ready", map[string]any{"driver": cfg.DBDriver})
	}

	// Fotos
	switch cfg.PhotoBackend {
	case config.PhotoBackendRemote:
		store, err := remote.NewStore(remote.Options{
			BaseURL:       cfg.ObjectStoreURL,
			APIKey:        cfg.ObjectStoreKey,
			Bucket:        cfg.PhotoBucket,
			PublicBaseURL: cfg.PhotoPublicBaseURL,
		})
		if err != nil {
			return fmt.Errorf("object store: %w", err)
		}
		checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := store.CheckBucket(checkCtx); err != nil {
			// las altas con foto van a dar 502 hasta que el bucket responda
			log.Warn("photo bucket check failed", map[string]any{"err": err})
		}
		cancel()
		opts.Photos = store
	default:
		store, err := local.NewStore(cfg.PhotoLocalPath, cfg.PhotoPublicBaseURL, log)
		if err != nil {
			return err
		}
		opts.Photos = store
		opts.PhotoHandler = store.Handler()
	}

	// Eventos: sin brokers queda el noop del router
	if len(cfg.KafkaBrokers) > 0 {
		pub, err := kafkaevents.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopicPrefix)
		if err != nil {
			return err
		}
		closers = append(closers, pub)
		opts.Events = pub
	}

	// Lockout compartido entre réplicas
	if cfg.RedisURL != "" {
		client, err := redislockout.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		closers = append(closers, client)
		opts.Lockout = redislockout.NewStore(client)
	}

	// Admin gate
	hash := cfg.AdminPasswordHash
	if hash == "" {
		log.Warn("ADMIN_PASSWORD_HASH not set, hashing ADMIN_PASSWORD at startup", nil)
		h, err := password.Hash(cfg.AdminPassword)
		if err != nil {
			return fmt.Errorf("hash admin password: %w", err)
		}
		hash = h
	}
	opts.CheckPassword = router.PasswordChecker(hash)

	if cfg.JWTSecret != "" {
		signer, err := jwt.NewSigner(cfg.JWTSecret, cfg.AdminTokenTTL)
		if err != nil {
			return err
		}
		opts.Tokens = signer
	} else {
		log.Warn("JWT_SECRET not set, admin tokens will not survive a restart", nil)
		signer, err := jwt.NewEphemeralSigner(cfg.AdminTokenTTL)
		if err != nil {
			return err
		}
		opts.Tokens = signer
	}
	if cfg.SessionSecret != "" {
		opts.Sessions = sessions.NewCookieStore([]byte(cfg.SessionSecret))
	}

	handler, err := router.NewRouter(opts)
	if err != nil {
		return err
	}

	// streams SSE: se cortan al arrancar el shutdown en vez de agotar el timeout
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		// sin WriteTimeout: /tracking/stream es de larga duración
		IdleTimeout: 60 * time.Second,
	}

	srv.RegisterOnShutdown(cancelBase)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": cfg.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
