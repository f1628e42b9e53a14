package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StoreMemory = "memory"
	StoreMySQL  = "mysql"
)

type DBOptions struct {
	DSN      string `env:"DB_DSN"`
	Host     string `env:"DB_HOST" envDefault:"127.0.0.1:3306"`
	User     string `env:"DB_USER" envDefault:"root"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME" envDefault:"budget_workflow"`
}

// ConnectionString returns DB_DSN when set, otherwise builds a MySQL DSN from
// the individual parts.
func (d DBOptions) ConnectionString() string {
	if strings.TrimSpace(d.DSN) != "" {
		return d.DSN
	}
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s",
		d.User, d.Password, d.Host, d.Name)
}

type Env struct {
	AppAddr  string `env:"APP_ADDR" envDefault:":8080"`
	GinMode  string `env:"GIN_MODE"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"memory"`
	DB          DBOptions

	JWTSecret string        `env:"JWT_SECRET" envDefault:"change-me-in-production"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	AdminRecipientID string `env:"ADMIN_RECIPIENT_ID" envDefault:"U001"`
	SeedFile         string `env:"SEED_FILE"`
	SeedRequests     bool   `env:"SEED_REQUESTS" envDefault:"true"`
	AnomalyTimezone  string `env:"ANOMALY_TIMEZONE" envDefault:"UTC"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	MetricsPath        string   `env:"METRICS_PATH" envDefault:"/metrics"`
}

// Validate checks values that env parsing alone cannot.
func (e Env) Validate() error {
	switch e.StoreDriver {
	case StoreMemory, StoreMySQL:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreMemory, StoreMySQL, e.StoreDriver)
	}
	if strings.TrimSpace(e.AdminRecipientID) == "" {
		return errors.New("ADMIN_RECIPIENT_ID is required")
	}
	if _, err := time.LoadLocation(e.AnomalyTimezone); err != nil {
		return fmt.Errorf("ANOMALY_TIMEZONE: %w", err)
	}
	if !strings.HasPrefix(e.MetricsPath, "/") {
		return fmt.Errorf("METRICS_PATH must start with '/', got %q", e.MetricsPath)
	}
	return nil
}

// Location resolves AnomalyTimezone, falling back to UTC.
func (e Env) Location() *time.Location {
	loc, err := time.LoadLocation(e.AnomalyTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LoadEnv reads .env files that exist and parses the environment.
func LoadEnv(envFiles ...string) (Env, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env", ".env.local"}
	}
	existing := make([]string, 0, len(envFiles))
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) > 0 {
		if err := godotenv.Load(existing...); err != nil {
			return Env{}, fmt.Errorf("load env files: %w", err)
		}
	}

	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	e.StoreDriver = strings.ToLower(strings.TrimSpace(e.StoreDriver))
	if err := e.Validate(); err != nil {
		return Env{}, err
	}
	return e, nil
}
