package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	require.Equal(t, "data", cfg.DataDir)
	require.Equal(t, BackendFile, cfg.Backend)
	require.Equal(t, filepath.Join("data", "ledger.db"), cfg.DBPath)
	require.Equal(t, "@monthly", cfg.InterestSchedule)
	require.Equal(t, 12, cfg.BcryptCost)
	require.False(t, cfg.SeedOnStart)
}

func TestLoadLayering(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	yamlPath := filepath.Join(dir, "tellerledger.yaml")
	writeFile(t, yamlPath, "dataDir: /srv/bank\nbackend: sqlite\nlogLevel: debug\nbcryptCost: 10\n")
	writeFile(t, filepath.Join(dir, ".env"), "TELLER_LOG_FORMAT=json\nTELLER_SEED_ON_START=true\n")
	t.Setenv("TELLER_BACKEND", "file")
	// godotenv sets process variables; register them for cleanup first.
	for _, key := range []string{"TELLER_LOG_FORMAT", "TELLER_SEED_ON_START"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Load(yamlPath)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	require.Equal(t, "/srv/bank", cfg.DataDir)
	require.Equal(t, BackendFile, cfg.Backend)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "json", cfg.LogFormat)
	require.Equal(t, 10, cfg.BcryptCost)
	require.True(t, cfg.SeedOnStart)
	require.Equal(t, filepath.Join("/srv/bank", "ledger.db"), cfg.DBPath)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	writeFile(t, bad, "dataDir: [unterminated\n")
	_, err = Load(bad)
	require.Error(t, err)

	t.Setenv("TELLER_BCRYPT_COST", "lots")
	_, err = Load("")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"sqlite", func(c *Config) { c.Backend = BackendSQLite }, true},
		{"cron expression", func(c *Config) { c.InterestSchedule = "0 0 1 * *" }, true},
		{"empty data dir", func(c *Config) { c.DataDir = "" }, false},
		{"unknown backend", func(c *Config) { c.Backend = "postgres" }, false},
		{"unknown level", func(c *Config) { c.LogLevel = "loud" }, false},
		{"unknown format", func(c *Config) { c.LogFormat = "xml" }, false},
		{"bad schedule", func(c *Config) { c.InterestSchedule = "every tuesday" }, false},
		{"cost too low", func(c *Config) { c.BcryptCost = 1 }, false},
		{"cost too high", func(c *Config) { c.BcryptCost = 40 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	cfg := Default()
	cfg.LogFormat = "json"
	cfg.LogLevel = "warn"
	var buf bytes.Buffer
	logger := NewLogger(cfg, &buf)

	logger.Info("hidden")
	logger.Warn("shown", "account", "ACC001")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "shown", entry["msg"])
	require.Equal(t, "tellerledger", entry["app"])
	require.Equal(t, "ACC001", entry["account"])
}
