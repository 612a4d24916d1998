package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

// Config holds all configuration for the service
type Config struct {
	Port      string
	Origin    string
	LogLevel  string
	TurnLimit int
	// SessionTTL is how long an idle session is kept
	SessionTTL time.Duration

	OpenAI   OpenAIConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	SendGrid SendGridConfig
	Twilio   TwilioConfig

	// CareRulesPath replaces the built-in care rule table when set
	CareRulesPath string
}

// OpenAIConfig holds model access details
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// PostgresConfig holds database connection details.  An empty URL keeps
// sessions in memory.
type PostgresConfig struct {
	URL           string
	NotifyChannel string
}

// RedisConfig holds the research cache connection details
type RedisConfig struct {
	URL      string
	CacheTTL time.Duration
}

// SendGridConfig holds email credentials
type SendGridConfig struct {
	APIKey string
	From   string
}

// Enabled reports whether email can be sent.
func (c SendGridConfig) Enabled() bool { return c.APIKey != "" && c.From != "" }

// TwilioConfig holds SMS credentials
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	From       string
}

// Enabled reports whether SMS can be sent.
func (c TwilioConfig) Enabled() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.From != ""
}

// LoadConfig loads configuration from a .env file, when present, and the
// environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	turnLimit, err := strconv.Atoi(getEnv("TURN_LIMIT", "10"))
	if err != nil || turnLimit <= 0 {
		return nil, eris.Errorf("invalid TURN_LIMIT %q", os.Getenv("TURN_LIMIT"))
	}

	sessionTTL, err := time.ParseDuration(getEnv("SESSION_TTL", "2h"))
	if err != nil {
		return nil, eris.Wrap(err, "invalid SESSION_TTL")
	}

	cacheTTL, err := time.ParseDuration(getEnv("RESEARCH_CACHE_TTL", "6h"))
	if err != nil {
		return nil, eris.Wrap(err, "invalid RESEARCH_CACHE_TTL")
	}

	cfg := &Config{
		Port:       getEnv("PORT", "8080"),
		Origin:     getEnv("ORIGIN", "*"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		TurnLimit:  turnLimit,
		SessionTTL: sessionTTL,
		OpenAI: OpenAIConfig{
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			Model:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			BaseURL: os.Getenv("OPENAI_BASE_URL"),
		},
		Postgres: PostgresConfig{
			URL:           os.Getenv("DATABASE_URL"),
			NotifyChannel: getEnv("POSTGRES_NOTIFY_CHANNEL", "intake_finalized"),
		},
		Redis: RedisConfig{
			URL:      os.Getenv("REDIS_URL"),
			CacheTTL: cacheTTL,
		},
		SendGrid: SendGridConfig{
			APIKey: os.Getenv("SENDGRID_API_KEY"),
			From:   os.Getenv("EMAIL_FROM"),
		},
		Twilio: TwilioConfig{
			AccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
			AuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
			From:       os.Getenv("TWILIO_FROM"),
		},
		CareRulesPath: os.Getenv("CARE_RULES_PATH"),
	}

	if cfg.OpenAI.APIKey == "" {
		return nil, eris.New("OPENAI_API_KEY is required")
	}
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return nil, eris.Wrap(err, "invalid LOG_LEVEL")
	}
	return cfg, nil
}

// NewLogger builds the process logger.  Unknown levels fall back to info.
func NewLogger(level string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
