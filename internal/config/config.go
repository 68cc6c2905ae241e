// Package config loads tellerledger settings from defaults, an optional YAML
// file, an optional .env file and TELLER_* environment variables, in that
// order.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/simonvc/tellerledger/internal/password"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"

	envPrefix = "TELLER_"
)

type Config struct {
	DataDir          string `yaml:"dataDir"`
	Backend          string `yaml:"backend"`
	DBPath           string `yaml:"dbPath"`
	LogLevel         string `yaml:"logLevel"`
	LogFormat        string `yaml:"logFormat"`
	InterestSchedule string `yaml:"interestSchedule"`
	BcryptCost       int    `yaml:"bcryptCost"`
	SeedOnStart      bool   `yaml:"seedOnStart"`
}

func Default() *Config {
	return &Config{
		DataDir:          "data",
		Backend:          BackendFile,
		LogLevel:         "info",
		LogFormat:        "text",
		InterestSchedule: "@monthly",
		BcryptCost:       password.DefaultCost,
	}
}

// Load builds a Config. An empty path skips the YAML file; a named file that
// does not exist is an error. A missing .env in the working directory is not.
// The result is not validated so callers can apply flag overrides first.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"DATA_DIR":          &c.DataDir,
		"BACKEND":           &c.Backend,
		"DB_PATH":           &c.DBPath,
		"LOG_LEVEL":         &c.LogLevel,
		"LOG_FORMAT":        &c.LogFormat,
		"INTEREST_SCHEDULE": &c.InterestSchedule,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	if v, ok := lookup("BCRYPT_COST"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sBCRYPT_COST: %w", envPrefix, err)
		}
		c.BcryptCost = n
	}
	if v, ok := lookup("SEED_ON_START"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sSEED_ON_START: %w", envPrefix, err)
		}
		c.SeedOnStart = b
	}
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// Validate checks every setting and fills DBPath from DataDir when unset.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("data dir is not set")
	}
	switch c.Backend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendFile, BackendSQLite)
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.DataDir, "ledger.db")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q (want text or json)", c.LogFormat)
	}
	if _, err := cron.ParseStandard(c.InterestSchedule); err != nil {
		return fmt.Errorf("interest schedule %q: %w", c.InterestSchedule, err)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt cost %d out of range [%d, %d]", c.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}

// NewLogger builds the process logger described by c, writing to w.
func NewLogger(c *Config, w io.Writer) *slog.Logger {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if c.LogFormat == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h).With("app", "tellerledger")
}
