package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMissingSecret = errors.New("SESSION_SECRET environment variable is required")
	ErrShortSecret   = errors.New("SESSION_SECRET must be at least 32 characters long")
)

// Config holds the settings of the storefront API and the notifier worker.
type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration

	LogLevel  string
	LogFormat string

	SessionSecret string
	SessionTTL    time.Duration
	SweepInterval time.Duration

	PaymentDelay       time.Duration
	PaymentSuccessRate float64
	SubmitRateLimit    float64
	SubmitRateBurst    int

	// Optional backends. Empty values select the in-memory implementation.
	DatabaseURL  string
	RedisAddr    string
	KafkaBrokers []string
	KafkaTopic   string

	SMTPHost string
	SMTPPort string
	SMTPFrom string
}

// Load reads the configuration of the API from environment variables.
func Load() (*Config, error) {
	cfg := load()
	if cfg.SessionSecret == "" {
		return nil, ErrMissingSecret
	}
	if len(cfg.SessionSecret) < 32 {
		return nil, ErrShortSecret
	}
	return cfg, nil
}

// LoadNotifier reads the configuration of the notifier worker, which never
// issues session tokens.
func LoadNotifier() *Config {
	return load()
}

func load() *Config {
	cfg := &Config{
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 5*time.Second),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		SessionSecret: os.Getenv("SESSION_SECRET"),
		SessionTTL:    getDuration("SESSION_TTL", 2*time.Hour),
		SweepInterval: getDuration("SESSION_SWEEP_INTERVAL", time.Minute),

		PaymentDelay:       getDuration("PAYMENT_DELAY", 2*time.Second),
		PaymentSuccessRate: getFloat("PAYMENT_SUCCESS_RATE", 0.9),
		SubmitRateLimit:    getFloat("PAYMENT_SUBMIT_RPS", 5),
		SubmitRateBurst:    getInt("PAYMENT_SUBMIT_BURST", 10),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		KafkaTopic:  getEnv("KAFKA_TOPIC", "storefront-events"),

		SMTPHost: getEnv("SMTP_HOST", "localhost"),
		SMTPPort: getEnv("SMTP_PORT", "1025"),
		SMTPFrom: getEnv("SMTP_FROM", "pedidos@agroconnect.ec"),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
