package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, BackendRedis, c.StoreBackend)
	assert.Equal(t, "sparkleCleanBookings", c.BookingsKey)
	assert.Equal(t, TransportLog, c.InvoiceTransport)
	assert.Equal(t, []string{"kafka:9092"}, c.KafkaBrokers)
	assert.Equal(t, 1500*time.Millisecond, c.PaymentDelay)
	assert.InDelta(t, 0.9, c.PaymentSuccessRate, 1e-9)
	assert.Equal(t, 2*time.Second, c.SyncDelay)
	assert.Equal(t, 4, c.LedgerWorkers)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", " Postgres ")
	t.Setenv("INVOICE_TRANSPORT", "KAFKA")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092 ,")
	t.Setenv("PAYMENT_DELAY", "10ms")
	t.Setenv("PAYMENT_SUCCESS_RATE", "1")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendPostgres, c.StoreBackend)
	assert.Equal(t, TransportKafka, c.InvoiceTransport)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.KafkaBrokers)
	assert.Equal(t, 10*time.Millisecond, c.PaymentDelay)
	assert.Equal(t, 1.0, c.PaymentSuccessRate)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"backend", "STORE_BACKEND", "sqlite"},
		{"transport", "INVOICE_TRANSPORT", "smtp"},
		{"rate", "PAYMENT_SUCCESS_RATE", "1.5"},
		{"duration", "SYNC_DELAY", "soon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
