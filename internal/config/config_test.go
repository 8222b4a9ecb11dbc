package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test from an empty directory with no inherited
// overrides.
func isolate(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	for _, name := range []string{"PORT", "DATABASE_URL", "RABBITMQ_URL", "INVENTORY_SERVER_PORT", "INVENTORY_STORAGE_DRIVER", "INVENTORY_LOGGING_LEVEL"} {
		t.Setenv(name, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func flagsFor(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	Flags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, 15*time.Minute, cfg.Reservations.MaxDuration)
	assert.Equal(t, 30*time.Second, cfg.Reservations.SweepInterval)
	assert.Equal(t, "ticket.purchased", cfg.RabbitMQ.RoutingKey)
	assert.False(t, cfg.RabbitMQ.Enabled)
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoad_FileEnvAndFlags(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
server:
  port: 9000
storage:
  driver: badger
  badger_path: /tmp/inventory
reservations:
  sweep_interval: 5s
logging:
  level: debug
`)

	cfg, err := Load(flagsFor(t, "--config", path))
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "badger", cfg.Storage.Driver)
	assert.Equal(t, 5*time.Second, cfg.Reservations.SweepInterval)
	assert.Equal(t, "debug", cfg.Logging.Level)

	t.Setenv("INVENTORY_LOGGING_LEVEL", "warn")
	t.Setenv("PORT", "9100")
	cfg, err = Load(flagsFor(t, "--config", path))
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 9100, cfg.Server.Port)

	t.Setenv("INVENTORY_SERVER_PORT", "9200")
	cfg, err = Load(flagsFor(t, "--config", path))
	require.NoError(t, err)
	assert.Equal(t, 9200, cfg.Server.Port, "prefixed variable wins over PORT")

	cfg, err = Load(flagsFor(t, "--config", path, "--port", "9300", "--storage", "memory"))
	require.NoError(t, err)
	assert.Equal(t, 9300, cfg.Server.Port, "flag wins over environment")
	assert.Equal(t, "memory", cfg.Storage.Driver)
}

func TestLoad_DatabaseURLFromEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/inventory")

	cfg, err := Load(flagsFor(t, "--storage", "postgres"))
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, "postgres://localhost/inventory", cfg.Storage.DatabaseURL)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)

	_, err := Load(flagsFor(t, "--config", filepath.Join(t.TempDir(), "nope.yaml")))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:       ServerConfig{Port: 8080},
			Storage:      StorageConfig{Driver: "memory"},
			Reservations: ReservationsConfig{MaxDuration: time.Minute},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{name: "valid", mutate: func(*Config) {}, ok: true},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }},
		{name: "unknown driver", mutate: func(c *Config) { c.Storage.Driver = "mongo" }},
		{name: "postgres without url", mutate: func(c *Config) { c.Storage.Driver = "postgres" }},
		{name: "badger without path", mutate: func(c *Config) { c.Storage.Driver = "badger" }},
		{name: "zero max duration", mutate: func(c *Config) { c.Reservations.MaxDuration = 0 }},
		{name: "negative sweep", mutate: func(c *Config) { c.Reservations.SweepInterval = -time.Second }},
		{name: "rabbitmq without url", mutate: func(c *Config) { c.RabbitMQ.Enabled = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
