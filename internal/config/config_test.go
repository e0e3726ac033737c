package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "./lore.db", cfg.DatabasePath)
	assert.False(t, cfg.Production)
	require.Len(t, cfg.AccountSeeds, 3)
	assert.Equal(t, "flams1", cfg.AccountSeeds[0].ID)
	assert.Equal(t, "flams", cfg.AccountSeeds[0].Username)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTH_ACCOUNT_ARCHIVIST_PASSWORD", "s3cret")
	t.Setenv("AUTH_ACCOUNT_ARCHIVIST_SALT", "deadbeef")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.ServerPort)
	assert.True(t, cfg.Production)
	assert.Equal(t, "s3cret", cfg.AccountSeeds[0].Password)
	assert.Equal(t, "deadbeef", cfg.AccountSeeds[0].Salt)

	// The roster itself is fixed; overrides never add or rename accounts.
	assert.Equal(t, "flams", cfg.AccountSeeds[0].Username)
	require.Len(t, cfg.AccountSeeds, 3)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("PORT", "not-a-port")

	_, err := Load()
	assert.Error(t, err)
}
