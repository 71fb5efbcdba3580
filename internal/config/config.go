package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// Default property keys tried, in order, when mapping boundary property bags.
var (
	DefaultStateKeys         = []string{"ST_NAME", "st_name", "STATE", "state"}
	DefaultAssemblyNameKeys  = []string{"AC_NAME", "ac_name", "NAME", "name"}
	DefaultParliamentaryKeys = []string{"PC_NAME", "pc_name", "NAME", "name"}
)

const (
	DefaultPort                = "5050"
	DefaultOverrideMaxFieldLen = 100
	DefaultReprocessRate       = 5.0
	DefaultReprocessBatchLimit = 500
)

var ErrMissingDatabaseURL = errors.New("DATABASE_URL environment variable is required")

// PropertyKeys lists the candidate property names for a boundary collection.
type PropertyKeys struct {
	State []string `yaml:"state"`
	Name  []string `yaml:"name"`
}

type BoundaryConfig struct {
	AssemblyPath      string       `yaml:"assembly_path"`
	ParliamentaryPath string       `yaml:"parliamentary_path"`
	AssemblyKeys      PropertyKeys `yaml:"assembly_keys"`
	ParliamentaryKeys PropertyKeys `yaml:"parliamentary_keys"`
}

type ReprocessConfig struct {
	RatePerSecond float64 `yaml:"rate_per_second"`
	BatchLimit    int     `yaml:"batch_limit"`
}

type Config struct {
	DatabaseURL         string          `yaml:"database_url"`
	Port                string          `yaml:"port"`
	LogLevel            string          `yaml:"log_level"`
	LogDev              bool            `yaml:"log_dev"`
	AllowedOrigins      []string        `yaml:"allowed_origins"`
	OverrideMaxFieldLen int             `yaml:"override_max_field_len"`
	Boundaries          BoundaryConfig  `yaml:"boundaries"`
	Reprocess           ReprocessConfig `yaml:"reprocess"`
}

// Load reads .env.local, then the optional YAML file named by
// CONSTITUENCY_CONFIG, then applies environment overrides and defaults.
//
// Environment variables:
//   - DATABASE_URL, PORT, LOG_LEVEL, LOG_DEV
//   - ALLOWED_ORIGINS: comma separated CORS allow-list
//   - ASSEMBLY_BOUNDARIES_PATH, PARLIAMENTARY_BOUNDARIES_PATH: GeoJSON files
//   - ASSEMBLY_STATE_KEYS, ASSEMBLY_NAME_KEYS, PARLIAMENTARY_STATE_KEYS,
//     PARLIAMENTARY_NAME_KEYS: comma separated property key candidates
//   - OVERRIDE_MAX_FIELD_LEN, REPROCESS_BATCH_LIMIT
//   - REPROCESS_RATE_PER_SEC: reports per second; unset or 0 takes the
//     default, any negative value turns throttling off
func Load() (Config, error) {
	_ = godotenv.Load(".env.local")

	var cfg Config
	if path := strings.TrimSpace(os.Getenv("CONSTITUENCY_CONFIG")); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	applyDefaults(&cfg)
	return cfg, nil
}

// Validate checks settings the HTTP server cannot run without.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	if c.OverrideMaxFieldLen <= 0 {
		return fmt.Errorf("override_max_field_len must be positive, got %d", c.OverrideMaxFieldLen)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.Port, "PORT")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.Boundaries.AssemblyPath, "ASSEMBLY_BOUNDARIES_PATH")
	setString(&cfg.Boundaries.ParliamentaryPath, "PARLIAMENTARY_BOUNDARIES_PATH")

	setList(&cfg.AllowedOrigins, "ALLOWED_ORIGINS")
	setList(&cfg.Boundaries.AssemblyKeys.State, "ASSEMBLY_STATE_KEYS")
	setList(&cfg.Boundaries.AssemblyKeys.Name, "ASSEMBLY_NAME_KEYS")
	setList(&cfg.Boundaries.ParliamentaryKeys.State, "PARLIAMENTARY_STATE_KEYS")
	setList(&cfg.Boundaries.ParliamentaryKeys.Name, "PARLIAMENTARY_NAME_KEYS")

	if v := strings.TrimSpace(os.Getenv("LOG_DEV")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("LOG_DEV: %w", err)
		}
		cfg.LogDev = b
	}
	if v := strings.TrimSpace(os.Getenv("OVERRIDE_MAX_FIELD_LEN")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("OVERRIDE_MAX_FIELD_LEN: %w", err)
		}
		cfg.OverrideMaxFieldLen = n
	}
	if v := strings.TrimSpace(os.Getenv("REPROCESS_RATE_PER_SEC")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("REPROCESS_RATE_PER_SEC: %w", err)
		}
		cfg.Reprocess.RatePerSecond = f
	}
	if v := strings.TrimSpace(os.Getenv("REPROCESS_BATCH_LIMIT")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REPROCESS_BATCH_LIMIT: %w", err)
		}
		cfg.Reprocess.BatchLimit = n
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Port == "" {
		cfg.Port = DefaultPort
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.OverrideMaxFieldLen == 0 {
		cfg.OverrideMaxFieldLen = DefaultOverrideMaxFieldLen
	}
	if cfg.Reprocess.RatePerSecond == 0 {
		cfg.Reprocess.RatePerSecond = DefaultReprocessRate
	}
	if cfg.Reprocess.BatchLimit <= 0 {
		cfg.Reprocess.BatchLimit = DefaultReprocessBatchLimit
	}
	if len(cfg.Boundaries.AssemblyKeys.State) == 0 {
		cfg.Boundaries.AssemblyKeys.State = DefaultStateKeys
	}
	if len(cfg.Boundaries.AssemblyKeys.Name) == 0 {
		cfg.Boundaries.AssemblyKeys.Name = DefaultAssemblyNameKeys
	}
	if len(cfg.Boundaries.ParliamentaryKeys.State) == 0 {
		cfg.Boundaries.ParliamentaryKeys.State = DefaultStateKeys
	}
	if len(cfg.Boundaries.ParliamentaryKeys.Name) == 0 {
		cfg.Boundaries.ParliamentaryKeys.Name = DefaultParliamentaryKeys
	}
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setList(dst *[]string, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) > 0 {
		*dst = out
	}
}
