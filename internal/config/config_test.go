package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "redis", cfg.Cache.Driver)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "IN", cfg.Weather.Country)
	assert.Equal(t, "sha256", cfg.Auth.PasswordHasher)
	assert.Equal(t, "UserManagementAPI", cfg.JWT.Issuer)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
server:
  port: 9090
cache:
  driver: memory
  ttl: 2m
weather:
  warm_schedule: ""
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Cache.Driver)
	assert.Equal(t, 2*time.Minute, cfg.Cache.TTL)
	assert.Empty(t, cfg.Weather.WarmSchedule)
	// untouched keys keep their defaults
	assert.Equal(t, "localhost", cfg.Database.Host)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "server:\n  port: 9090\n")
	t.Setenv("UMA_SERVER__PORT", "7070")
	t.Setenv("UMA_JWT__KEY", "a-much-longer-signing-key")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "a-much-longer-signing-key", cfg.JWT.Key)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown cache driver", "cache:\n  driver: memcached\n"},
		{"short jwt key", "jwt:\n  key: short\n"},
		{"provider without key", "weather:\n  provider: openweathermap\n"},
		{"bad hasher", "auth:\n  password_hasher: md5\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tc.body))
			require.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", Database: "d", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=d sslmode=disable", c.DSN())
}
