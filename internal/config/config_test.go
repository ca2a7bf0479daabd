package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-testing-purposes"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", testSecret)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 2*time.Second, cfg.PaymentDelay)
	assert.InDelta(t, 0.9, cfg.PaymentSuccessRate, 1e-9)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, "storefront-events", cfg.KafkaTopic)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SESSION_SECRET", testSecret)
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("PAYMENT_DELAY", "150ms")
	t.Setenv("PAYMENT_SUCCESS_RATE", "1")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("PAYMENT_SUBMIT_BURST", "3")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 150*time.Millisecond, cfg.PaymentDelay)
	assert.InDelta(t, 1.0, cfg.PaymentSuccessRate, 1e-9)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 3, cfg.SubmitRateBurst)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("SESSION_SECRET", testSecret)
	t.Setenv("PAYMENT_DELAY", "soon")
	t.Setenv("PAYMENT_SUBMIT_BURST", "many")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.PaymentDelay)
	assert.Equal(t, 10, cfg.SubmitRateBurst)
}

func TestLoad_SecretValidation(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		err    error
	}{
		{"missing", "", ErrMissingSecret},
		{"too short", "short", ErrShortSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SESSION_SECRET", tt.secret)
			_, err := Load()
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestLoadNotifier_NoSecretRequired(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("KAFKA_BROKERS", "k1:9092")
	t.Setenv("SMTP_HOST", "mail.local")

	cfg := LoadNotifier()

	assert.Equal(t, []string{"k1:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "mail.local", cfg.SMTPHost)
	assert.Equal(t, "1025", cfg.SMTPPort)
}
