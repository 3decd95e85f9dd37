package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Port         int    `env:"PORT" env-default:"3318"`
	DatabaseURL  string `env:"DATABASE_URL"`
	DatabaseType string `env:"DATABASE_TYPE" env-default:"sqlite"`
	VisitorSalt  string `env:"VISITOR_SALT"`

	SessionTTL     time.Duration `env:"SESSION_TTL" env-default:"720h"`
	CookieSecure   bool          `env:"COOKIE_SECURE" env-default:"false"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS" env-separator:"," env-default:"*"`

	LogLevel  string `env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `env:"LOG_FORMAT" env-default:"text"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"5s"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" env-default:"30s"`
}

// ParseFlags loads .env and the environment, then lets CLI flags override them
func ParseFlags(args []string) (Config, error) {
	var (
		port         int
		databaseURL  string
		databaseType string
		visitorSalt  string
		envFile      string
	)

	fs := flag.NewFlagSet("featureboard", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&port, "p", 0, "Server port")
	fs.StringVar(&databaseURL, "d", "", "Database URL")
	fs.StringVar(&databaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&visitorSalt, "visitor-salt", "", "Visitor identity salt (prefer env)")

	fs.StringVar(&envFile, "env", ".env", "Optional dotenv file")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := loadDotenv(envFile); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}

	// CLI overrides env
	if port != 0 {
		cfg.Port = port
	}
	if databaseURL != "" {
		cfg.DatabaseURL = databaseURL
	}
	if databaseType != "" {
		cfg.DatabaseType = databaseType
	}
	if visitorSalt != "" {
		cfg.VisitorSalt = visitorSalt
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, errors.New("invalid port")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	cfg.DatabaseType = strings.ToLower(cfg.DatabaseType)
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	// Secrets - MUST be provided
	if cfg.VisitorSalt == "" {
		return Config{}, errors.New("VISITOR_SALT required")
	}

	return cfg, nil
}

// A missing dotenv file is fine; a malformed one is not.
func loadDotenv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
