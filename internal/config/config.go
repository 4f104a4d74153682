package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// devJWTSecret is only accepted outside production.
const devJWTSecret = "folio-development-secret-change-me"

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Storage  StorageConfig
	Auth     AuthConfig
	Cache    CacheConfig
	Contact  ContactConfig
	Email    EmailConfig
	Sweeper  SweeperConfig
	Admin    AdminConfig
}

type ServerConfig struct {
	Port               string
	Environment        string
	Debug              bool
	LogLevel           string
	PublicBaseURL      string
	CORSAllowedOrigins []string
	// TrustedProxies lists the proxy addresses or CIDRs whose forwarding
	// headers are believed. Empty trusts none.
	TrustedProxies []string
}

type DatabaseConfig struct {
	URL string
}

type StorageConfig struct {
	UploadDir string
}

type AuthConfig struct {
	JWTSecret string
	JWTTTL    time.Duration
}

type CacheConfig struct {
	RedisURL string
	TTL      time.Duration
}

type ContactConfig struct {
	RatePerMinute int
	RateBurst     int
}

type EmailConfig struct {
	ResendAPIKey string
	From         string
	To           string
}

type SweeperConfig struct {
	Schedule string
	Grace    time.Duration
}

type AdminConfig struct {
	Username string
	Password string
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not read .env file", "error", err)
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv builds a Config from the environment without validating it.
func FromEnv() *Config {
	env := strings.ToLower(getEnv("ENVIRONMENT", "development"))
	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			Environment:        env,
			Debug:              getEnvAsBool("DEBUG", false),
			LogLevel:           getEnv("LOG_LEVEL", "info"),
			PublicBaseURL:      strings.TrimRight(getEnv("PUBLIC_BASE_URL", ""), "/"),
			CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
			TrustedProxies:     splitList(getEnv("TRUSTED_PROXIES", "")),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Storage: StorageConfig{
			UploadDir: getEnv("UPLOAD_DIR", "./uploads"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			JWTTTL:    getEnvAsDuration("JWT_TTL", time.Hour),
		},
		Cache: CacheConfig{
			RedisURL: getEnv("REDIS_URL", ""),
			TTL:      getEnvAsDuration("CACHE_TTL", time.Minute),
		},
		Contact: ContactConfig{
			RatePerMinute: getEnvAsInt("CONTACT_RATE_PER_MINUTE", 5),
			RateBurst:     getEnvAsInt("CONTACT_RATE_BURST", 3),
		},
		Email: EmailConfig{
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			From:         getEnv("NOTIFY_EMAIL_FROM", "Folio <onboarding@resend.dev>"),
			To:           getEnv("NOTIFY_EMAIL_TO", ""),
		},
		Sweeper: SweeperConfig{
			Schedule: lookupEnv("SWEEP_SCHEDULE", "@every 1h"),
			Grace:    getEnvAsDuration("SWEEP_GRACE", time.Hour),
		},
		Admin: AdminConfig{
			Username: getEnv("ADMIN_USERNAME", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
	}

	if cfg.Auth.JWTSecret == "" && !cfg.IsProduction() {
		slog.Warn("JWT_SECRET not set, using the development secret")
		cfg.Auth.JWTSecret = devJWTSecret
	}
	return cfg
}

func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	if c.Auth.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	if c.Contact.RatePerMinute <= 0 || c.Contact.RateBurst <= 0 {
		return fmt.Errorf("CONTACT_RATE_PER_MINUTE and CONTACT_RATE_BURST must be positive")
	}
	if (c.Admin.Username == "") != (c.Admin.Password == "") {
		return fmt.Errorf("ADMIN_USERNAME and ADMIN_PASSWORD must be set together")
	}
	for _, p := range c.Server.TrustedProxies {
		if !validProxy(p) {
			return fmt.Errorf("TRUSTED_PROXIES: %q is not an IP address or CIDR", p)
		}
	}
	if c.IsProduction() && c.Server.PublicBaseURL == "" && len(c.Server.TrustedProxies) == 0 {
		slog.Warn("PUBLIC_BASE_URL and TRUSTED_PROXIES unset; image URLs use the request's own scheme and host")
	}
	return nil
}

func validProxy(s string) bool {
	if _, err := netip.ParsePrefix(s); err == nil {
		return true
	}
	_, err := netip.ParseAddr(s)
	return err == nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// EmailEnabled reports whether contact notifications can be sent.
func (c *Config) EmailEnabled() bool {
	return c.Email.ResendAPIKey != "" && c.Email.To != ""
}

func (c *Config) GinMode() string {
	if c.IsProduction() {
		return gin.ReleaseMode
	}
	return gin.DebugMode
}

// SlogLevel maps LOG_LEVEL onto slog; unknown values fall back to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Server.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// lookupEnv is getEnv, except an explicitly empty value is kept.
func lookupEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		slog.Warn("invalid integer, using default", "key", key, "default", defaultValue)
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go durations ("90s") or bare integer seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	slog.Warn("invalid duration, using default", "key", key, "default", defaultValue)
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		slog.Warn("invalid boolean, using default", "key", key, "default", defaultValue)
		return defaultValue
	}
	return value
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
