package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	// this will automatically load your .env file:
	_ "github.com/joho/godotenv/autoload"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL   = "https://api.chess.com/pub"
	DefaultUserAgent = "chess-history/0.3 (+https://github.com/example/chess-history)"
	DefaultTimeout   = 15 * time.Second
)

// DefaultIdentities is swept when neither IDENTITIES_FILE nor IDENTITIES is set.
var DefaultIdentities = []string{
	"DanielNaroditsky",
	"Hikaru",
	"GothamChess",
	"nihalsarin",
	"Polish_fighter3000",
}

type Config struct {
	Logs     LogConfig
	DB       PostgresConfig
	ChessCom ChessComConfig
	Sweep    SweepConfig
	Auth     AuthConfig
	HTTPAddr string
	QueueURL string
}

type LogConfig struct {
	Style string
	Level string
}
type PostgresConfig struct {
	Username string
	Password string
	URL      string
	Port     string
	Database string
	SSLMode  string
}

// DSN returns the lib/pq connection string, or "" when no host is configured.
func (p PostgresConfig) DSN() string {
	if p.URL == "" {
		return ""
	}
	sslMode := p.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		p.Username, p.Password, p.URL, p.Port, p.Database, sslMode,
	)
}

type ChessComConfig struct {
	BaseURL   string
	UserAgent string // chess.com rejects anonymous clients
	Timeout   time.Duration
}

type SweepConfig struct {
	Identities []string
	Workers    int
}

// AuthConfig configures Auth0 token checks on the HTTP API.
type AuthConfig struct {
	Issuer   string
	Audience string
	JWKSURL  string
	// Disabled only takes effect outside Lambda, or when ENV=local.
	Disabled bool
}

type identitiesFile struct {
	Identities []string `yaml:"identities"`
}

func LoadConfig() (*Config, error) {
	timeoutSecs, err := envInt("CHESSCOM_TIMEOUT_SECONDS", int(DefaultTimeout/time.Second))
	if err != nil {
		return nil, err
	}

	workers, err := envInt("SWEEP_WORKERS", 1)
	if err != nil {
		return nil, err
	}

	identities, err := loadIdentities(os.Getenv("IDENTITIES_FILE"), os.Getenv("IDENTITIES"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr: envOr("HTTP_ADDR", "0.0.0.0:8080"),
		QueueURL: os.Getenv("QUEUE_URL"),
		Logs: LogConfig{
			Style: envOr("LOG_STYLE", "console"),
			Level: envOr("LOG_LEVEL", "info"),
		},
		DB: PostgresConfig{
			Username: os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PWD"),
			URL:      os.Getenv("POSTGRES_URL"),
			Port:     envOr("POSTGRES_PORT", "5432"),
			Database: envOr("POSTGRES_DB", "chess"),
			SSLMode:  os.Getenv("POSTGRES_SSLMODE"),
		},
		ChessCom: ChessComConfig{
			BaseURL:   strings.TrimRight(envOr("CHESSCOM_BASE_URL", DefaultBaseURL), "/"),
			UserAgent: envOr("CHESSCOM_USER_AGENT", DefaultUserAgent),
			Timeout:   time.Duration(timeoutSecs) * time.Second,
		},
		Sweep: SweepConfig{
			Identities: identities,
			Workers:    workers,
		},
		Auth: AuthConfig{
			Issuer:   strings.TrimSpace(os.Getenv("AUTH0_ISSUER")),
			Audience: strings.TrimSpace(os.Getenv("AUTH0_AUDIENCE")),
			JWKSURL:  os.Getenv("AUTH0_JWKS_URL"),
			Disabled: authDisabled(),
		},
	}

	return cfg, nil
}

// loadIdentities prefers the YAML file, then the comma list, then the defaults.
func loadIdentities(path, list string) ([]string, error) {
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read identities file %s: %w", path, err)
		}
		var f identitiesFile
		if err := yaml.Unmarshal(b, &f); err != nil {
			return nil, fmt.Errorf("parse identities file %s: %w", path, err)
		}
		return compact(f.Identities), nil
	}
	if list != "" {
		return compact(strings.Split(list, ",")), nil
	}
	return append([]string(nil), DefaultIdentities...), nil
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func authDisabled() bool {
	if !strings.EqualFold(os.Getenv("AUTH_DISABLED"), "true") {
		return false
	}
	return strings.EqualFold(os.Getenv("ENV"), "local") || os.Getenv("AWS_LAMBDA_FUNCTION_NAME") == ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("converting %s to int: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, n)
	}
	return n, nil
}
