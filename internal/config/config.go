package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	PhotoBackendLocal  = "local"
	PhotoBackendRemote = "remote"
)

type Config struct {
	AppName string
	Addr    string
	// TrustedProxies: IPs o CIDRs cuyos X-Forwarded-For/X-Real-IP se creen.
	TrustedProxies []string

	DBDriver string
	DBDSN    string

	PhotoBackend       string
	PhotoLocalPath     string
	PhotoBucket        string
	PhotoPublicBaseURL string
	ObjectStoreURL     string
	ObjectStoreKey     string

	// Admin gate. Si AdminPasswordHash está vacío se hashea AdminPassword al arrancar (dev).
	AdminPasswordHash string
	AdminPassword     string
	SessionSecret     string
	JWTSecret         string
	AdminTokenTTL     time.Duration

	RedisURL               string
	LockoutThreshold       int
	LockoutGlobalThreshold int
	LockoutWindow          time.Duration

	KafkaBrokers     []string
	KafkaTopicPrefix string

	TrackingInterval time.Duration

	LogLevel  string
	LogFormat string
}

type configFile struct {
	Service struct {
		Name           string   `yaml:"name"`
		Addr           string   `yaml:"addr"`
		TrustedProxies []string `yaml:"trusted_proxies"`
	} `yaml:"service"`
	Database struct {
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"database"`
	Photos struct {
		Backend       string `yaml:"backend"`
		LocalPath     string `yaml:"local_path"`
		Bucket        string `yaml:"bucket"`
		PublicBaseURL string `yaml:"public_base_url"`
		StoreURL      string `yaml:"store_url"`
		StoreKey      string `yaml:"store_key"`
	} `yaml:"photos"`
	Admin struct {
		PasswordHash           string `yaml:"password_hash"`
		SessionSecret          string `yaml:"session_secret"`
		JWTSecret              string `yaml:"jwt_secret"`
		TokenTTL               string `yaml:"token_ttl"`
		LockoutThreshold       int    `yaml:"lockout_threshold"`
		LockoutGlobalThreshold int    `yaml:"lockout_global_threshold"`
		LockoutWindow          string `yaml:"lockout_window"`
	} `yaml:"admin"`
	Dependencies struct {
		RedisURL         string   `yaml:"redis_url"`
		KafkaBrokers     []string `yaml:"kafka_brokers"`
		KafkaTopicPrefix string   `yaml:"kafka_topic_prefix"`
	} `yaml:"dependencies"`
	Tracking struct {
		Interval string `yaml:"interval"`
	} `yaml:"tracking"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Defaults devuelve la config de desarrollo: todo en memoria, fotos locales.
func Defaults() Config {
	return Config{
		AppName:                "animal-rescue",
		Addr:                   ":8080",
		DBDriver:               DriverMemory,
		PhotoBackend:           PhotoBackendLocal,
		PhotoLocalPath:         "./data/photos",
		PhotoBucket:            "animal-photos",
		AdminPassword:          "DHINESH",
		AdminTokenTTL:          8 * time.Hour,
		LockoutThreshold:       5,
		LockoutGlobalThreshold: 50,
		LockoutWindow:          15 * time.Minute,
		KafkaTopicPrefix:       "rescue",
		TrackingInterval:       5 * time.Second,
		LogLevel:               "info",
		LogFormat:              "text",
	}
}

// Load aplica defaults -> archivo YAML (opcional) -> variables de entorno.
// Si path está vacío o el archivo no existe, se sigue solo con env.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := applyFile(&cfg, raw); err != nil {
				return Config{}, err
			}
		case errors.Is(err, os.ErrNotExist):
			// sin archivo: ok
		default:
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, raw []byte) error {
	var f configFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	setString(&cfg.AppName, f.Service.Name)
	setString(&cfg.Addr, f.Service.Addr)
	setString(&cfg.DBDriver, f.Database.Driver)
	setString(&cfg.DBDSN, f.Database.DSN)
	setString(&cfg.PhotoBackend, f.Photos.Backend)
	setString(&cfg.PhotoLocalPath, f.Photos.LocalPath)
	setString(&cfg.PhotoBucket, f.Photos.Bucket)
	setString(&cfg.PhotoPublicBaseURL, f.Photos.PublicBaseURL)
	setString(&cfg.ObjectStoreURL, f.Photos.StoreURL)
	setString(&cfg.ObjectStoreKey, f.Photos.StoreKey)
	setString(&cfg.AdminPasswordHash, f.Admin.PasswordHash)
	setString(&cfg.SessionSecret, f.Admin.SessionSecret)
	setString(&cfg.JWTSecret, f.Admin.JWTSecret)
	setString(&cfg.RedisURL, f.Dependencies.RedisURL)
	setString(&cfg.KafkaTopicPrefix, f.Dependencies.KafkaTopicPrefix)
	setString(&cfg.LogLevel, f.Log.Level)
	setString(&cfg.LogFormat, f.Log.Format)

	if f.Admin.LockoutThreshold > 0 {
		cfg.LockoutThreshold = f.Admin.LockoutThreshold
	}
	if f.Admin.LockoutGlobalThreshold > 0 {
		cfg.LockoutGlobalThreshold = f.Admin.LockoutGlobalThreshold
	}
	if len(f.Service.TrustedProxies) > 0 {
		cfg.TrustedProxies = trimNonEmpty(f.Service.TrustedProxies)
	}
	if len(f.Dependencies.KafkaBrokers) > 0 {
		cfg.KafkaBrokers = trimNonEmpty(f.Dependencies.KafkaBrokers)
	}

	for _, d := range []struct {
		raw string
		dst *time.Duration
		key string
	}{
		{f.Admin.TokenTTL, &cfg.AdminTokenTTL, "admin.token_ttl"},
		{f.Admin.LockoutWindow, &cfg.LockoutWindow, "admin.lockout_window"},
		{f.Tracking.Interval, &cfg.TrackingInterval, "tracking.interval"},
	} {
		if strings.TrimSpace(d.raw) == "" {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil {
			return fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = v
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.AppName = envOrDefault("APP_NAME", cfg.AppName)
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Addr = ":" + port
	}
	cfg.TrustedProxies = envCSV("TRUSTED_PROXIES", cfg.TrustedProxies)
	cfg.DBDriver = envOrDefault("DB_DRIVER", cfg.DBDriver)
	cfg.DBDSN = envOrDefault("DB_DSN", cfg.DBDSN)
	cfg.PhotoBackend = envOrDefault("PHOTO_BACKEND", cfg.PhotoBackend)
	cfg.PhotoLocalPath = envOrDefault("PHOTO_LOCAL_PATH", cfg.PhotoLocalPath)
	cfg.PhotoBucket = envOrDefault("PHOTO_BUCKET", cfg.PhotoBucket)
	cfg.PhotoPublicBaseURL = envOrDefault("PHOTO_PUBLIC_BASE_URL", cfg.PhotoPublicBaseURL)
	cfg.ObjectStoreURL = envOrDefault("OBJECT_STORE_URL", cfg.ObjectStoreURL)
	cfg.ObjectStoreKey = envOrDefault("OBJECT_STORE_KEY", cfg.ObjectStoreKey)
	cfg.AdminPasswordHash = envOrDefault("ADMIN_PASSWORD_HASH", cfg.AdminPasswordHash)
	cfg.AdminPassword = envOrDefault("ADMIN_PASSWORD", cfg.AdminPassword)
	cfg.SessionSecret = envOrDefault("SESSION_SECRET", cfg.SessionSecret)
	cfg.JWTSecret = envOrDefault("JWT_SECRET", cfg.JWTSecret)
	cfg.AdminTokenTTL = envDuration("ADMIN_TOKEN_TTL", cfg.AdminTokenTTL)
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.LockoutThreshold = envInt("LOCKOUT_THRESHOLD", cfg.LockoutThreshold)
	cfg.LockoutGlobalThreshold = envInt("LOCKOUT_GLOBAL_THRESHOLD", cfg.LockoutGlobalThreshold)
	cfg.LockoutWindow = envDuration("LOCKOUT_WINDOW", cfg.LockoutWindow)
	cfg.KafkaBrokers = envCSV("KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.KafkaTopicPrefix = envOrDefault("KAFKA_TOPIC_PREFIX", cfg.KafkaTopicPrefix)
	cfg.TrackingInterval = envDuration("TRACKING_INTERVAL", cfg.TrackingInterval)
	cfg.LogLevel = envOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = envOrDefault("LOG_FORMAT", cfg.LogFormat)
}

func (c Config) Validate() error {
	switch c.DBDriver {
	case DriverMemory:
	case DriverPostgres, DriverSQLite:
		if strings.TrimSpace(c.DBDSN) == "" {
			return fmt.Errorf("missing DB_DSN for driver %q", c.DBDriver)
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}

	switch c.PhotoBackend {
	case PhotoBackendLocal:
		if strings.TrimSpace(c.PhotoLocalPath) == "" {
			return errors.New("missing PHOTO_LOCAL_PATH")
		}
	case PhotoBackendRemote:
		if strings.TrimSpace(c.ObjectStoreURL) == "" {
			return errors.New("missing OBJECT_STORE_URL for remote photo backend")
		}
	default:
		return fmt.Errorf("unknown PHOTO_BACKEND %q", c.PhotoBackend)
	}

	if strings.TrimSpace(c.PhotoBucket) == "" {
		return errors.New("missing PHOTO_BUCKET")
	}
	if strings.TrimSpace(c.AdminPasswordHash) == "" && strings.TrimSpace(c.AdminPassword) == "" {
		return errors.New("missing ADMIN_PASSWORD_HASH or ADMIN_PASSWORD")
	}
	if c.AdminTokenTTL <= 0 {
		return errors.New("ADMIN_TOKEN_TTL must be positive")
	}
	if c.LockoutThreshold <= 0 || c.LockoutWindow <= 0 {
		return errors.New("lockout threshold and window must be positive")
	}
	if c.LockoutGlobalThreshold < c.LockoutThreshold {
		return errors.New("LOCKOUT_GLOBAL_THRESHOLD must be >= LOCKOUT_THRESHOLD")
	}
	for _, p := range c.TrustedProxies {
		if _, err := ParseProxy(p); err != nil {
			return fmt.Errorf("invalid TRUSTED_PROXIES entry %q: %w", p, err)
		}
	}
	if c.TrackingInterval <= 0 {
		return errors.New("TRACKING_INTERVAL must be positive")
	}
	return nil
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func envOrDefault(name, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(name)); value != "" {
		return value
	}
	return fallback
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envCSV(name string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	return trimNonEmpty(strings.Split(raw, ","))
}

func trimNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// ParseProxy acepta una IP suelta o un CIDR.
func ParseProxy(raw string) (netip.Prefix, error) {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, "/") {
		p, err := netip.ParsePrefix(raw)
		if err != nil {
			return netip.Prefix{}, err
		}
		return p.Masked(), nil
	}
	a, err := netip.ParseAddr(raw)
	if err != nil {
		return netip.Prefix{}, err
	}
	a = a.Unmap()
	return netip.PrefixFrom(a, a.BitLen()), nil
}

// TrustedProxyPrefixes asume que Validate ya pasó.
func (c Config) TrustedProxyPrefixes() []netip.Prefix {
	out := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, raw := range c.TrustedProxies {
		if p, err := ParseProxy(raw); err == nil {
			out = append(out, p)
		}
	}
	return out
}
