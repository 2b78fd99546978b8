package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[server]
port = 8080
mode = "release"

[postgres]
host = "db.example.com"
port = "5433"
user = "chat"
password = "secret"
dbname = "chatdb"

[jwt]
secret = "supersecret"
expire_hours = 12

[logging]
level = "warn"
format = "text"
output = "stdout"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, "db.example.com", cfg.Postgres.Host)
	assert.Equal(t, "5433", cfg.Postgres.Port)
	assert.Equal(t, "chatdb", cfg.Postgres.DBName)
	assert.Equal(t, "supersecret", cfg.JWT.Secret)
	assert.Equal(t, 12, cfg.JWT.ExpireHours)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, `
[jwt]
secret = "supersecret"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, "localhost", cfg.Postgres.Host)
	assert.Equal(t, 24, cfg.JWT.ExpireHours)
	assert.Equal(t, 5, cfg.RateLimit.RegisterPerMinute)
	assert.Equal(t, 10, cfg.RateLimit.LoginPerMinute)
	assert.Equal(t, 60, cfg.RateLimit.MessagePerMinute)
	assert.Equal(t, 120, cfg.RateLimit.APIPerMinute)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
