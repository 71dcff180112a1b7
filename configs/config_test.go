package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setSecrets(t *testing.T) {
	t.Setenv("STAFF_JWT_SECRET", "staff-secret")
	t.Setenv("SESSION_SECRET", "session-secret")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	setSecrets(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "uploads", cfg.HTTP.UploadDir)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 12*time.Hour, cfg.Auth.StaffTokenTTL)
	assert.Equal(t, "restaurant.events", cfg.RabbitMQ.Exchange)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFileThenEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlBody := `
http:
  addr: ":9000"
database:
  host: db.internal
  name: restaurant
auth:
  staff_token_ttl: 30m
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("POSTGRES_DB", "restaurant_override")
	setSecrets(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.HTTP.Addr)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "restaurant_override", cfg.Database.Name)
	assert.Equal(t, 30*time.Minute, cfg.Auth.StaffTokenTTL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Contains(t, cfg.Database.DSN(), "dbname=restaurant_override")
}

func TestLoadRejectsBadTTL(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("STAFF_TOKEN_TTL", "soon")
	setSecrets(t)

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	t.Run("Staff token secret", func(t *testing.T) {
		t.Setenv("STAFF_JWT_SECRET", "")
		t.Setenv("SESSION_SECRET", "session-secret")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "STAFF_JWT_SECRET")
	})

	t.Run("Session secret", func(t *testing.T) {
		t.Setenv("STAFF_JWT_SECRET", "staff-secret")
		t.Setenv("SESSION_SECRET", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SESSION_SECRET")
	})

	t.Run("Secrets from the config file count", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		yamlBody := `
http:
  session_secret: from-file
auth:
  staff_jwt_secret: from-file
`
		require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0o600))
		t.Setenv("CONFIG_FILE", path)
		t.Setenv("STAFF_JWT_SECRET", "")
		t.Setenv("SESSION_SECRET", "")
		require.NoError(t, os.Unsetenv("STAFF_JWT_SECRET"))
		require.NoError(t, os.Unsetenv("SESSION_SECRET"))

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "from-file", cfg.Auth.StaffJWTSecret)
		assert.Equal(t, "from-file", cfg.HTTP.SessionSecret)
	})
}
