package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", "")
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Gateway.Driver)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 8, cfg.Gateway.RefreshParallelism)
	assert.Equal(t, 100, cfg.Gateway.LatestEventsLimit)
	assert.Equal(t, "bookings", cfg.Gateway.BookingsCollection)
}

func TestLoadMissingFileIsIgnored(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.Gateway.Driver)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	path := writeFile(t, "config.yaml", `
server:
  port: "9090"
  read_timeout: 5s
gateway:
  driver: postgres
  refresh_parallelism: 4
auth:
  token_secret: from-yaml
  session_ttl: 12h
`)
	t.Setenv("AUTH_TOKEN_SECRET", "from-env")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, DriverPostgres, cfg.Gateway.Driver)
	assert.Equal(t, 4, cfg.Gateway.RefreshParallelism)
	assert.Equal(t, "from-env", cfg.Auth.TokenSecret)
	assert.Equal(t, 12*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
}

func TestLoadEnvFile(t *testing.T) {
	envFile := writeFile(t, ".env", "LOG_LEVEL=debug\nDB_MAX_CONNS=7\n")
	t.Cleanup(func() {
		os.Unsetenv("LOG_LEVEL")
		os.Unsetenv("DB_MAX_CONNS")
	})

	cfg, err := Load("", envFile)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, int32(7), cfg.Database.MaxConns)
}

func TestLoadBadEnvValue(t *testing.T) {
	t.Setenv("REFRESH_PARALLELISM", "many")
	_, err := Load("", "")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.Gateway.Driver = "sqlite" }, wantErr: true},
		{name: "postgres without secret", mutate: func(c *Config) { c.Gateway.Driver = DriverPostgres }, wantErr: true},
		{name: "mongo with secret", mutate: func(c *Config) {
			c.Gateway.Driver = DriverMongo
			c.Auth.TokenSecret = "s"
		}},
		{name: "zero parallelism", mutate: func(c *Config) { c.Gateway.RefreshParallelism = 0 }, wantErr: true},
		{name: "zero ttl", mutate: func(c *Config) { c.Auth.SessionTTL = 0 }, wantErr: true},
		{name: "zero burst", mutate: func(c *Config) { c.Server.RateLimit.Burst = 0 }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := Default()
	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=postgres dbname=campusevents sslmode=disable",
		cfg.PostgresDSN(),
	)
}
