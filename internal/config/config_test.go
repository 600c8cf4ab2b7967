package config

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "wT0phFUusHZIrDhL9bUKPUhwaxKhpi/SaI6PtgB+MgU="

func TestNewConfig(t *testing.T) {
	cfg, err := NewConfig("localhost:8000", "host=localhost", testSecret, []string{"http://localhost:3000"})
	require.NoError(t, err)

	assert.Equal(t, "localhost:8000", cfg.ServerAddr)
	assert.Equal(t, "host=localhost", cfg.DatabaseDSN)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)

	wantKey, err := base64.StdEncoding.DecodeString(testSecret)
	require.NoError(t, err)
	assert.Equal(t, wantKey, cfg.SigningKey)

	assert.Equal(t, "chatterbox.events", cfg.AmqpExchange)
	assert.Equal(t, "avatars", cfg.MinioBucket)
}

func TestNewConfigValidation(t *testing.T) {
	tt := []struct {
		name   string
		addr   string
		dsn    string
		secret string
	}{
		{"empty address", "", "dsn", testSecret},
		{"empty dsn", "addr", "", testSecret},
		{"empty secret", "addr", "dsn", ""},
		{"secret not base64", "addr", "dsn", "%%%not-base64%%%"},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewConfig(tc.addr, tc.dsn, tc.secret, nil)
			assert.Error(t, err)
		})
	}
}
