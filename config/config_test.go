package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8082", cfg.ServerPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "slots", cfg.SlotExchange)
	assert.Equal(t, 2*time.Minute, cfg.DeleteConfirmTTL)
	assert.False(t, cfg.DevAuth())
	assert.Equal(t, "host=localhost port=5432 user=postgres password=postgres dbname=slot_db sslmode=disable", cfg.DSN())
}

func TestLoad_JWTSecretRequired(t *testing.T) {
	t.Setenv("AUTH_MODE", "jwt")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_DevModeWithoutSecret(t *testing.T) {
	t.Setenv("AUTH_MODE", "dev")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_DRIVER", "sqlite")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.DevAuth())
	assert.Equal(t, "sqlite", cfg.DBDriver)
}

func TestLoad_InvalidDriver(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_DRIVER", "mysql")

	_, err := Load()
	assert.Error(t, err)
}
