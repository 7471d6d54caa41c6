// Package config handles configuration loading and defaults.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Default values.
const (
	DefaultBackend = BackendFile
	DefaultDataDir = "~/.tasklist"
	DefaultSlot    = "todos-v1"
	DefaultTheme   = "classic"
	DefaultDBFile  = "tasklist.db"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config holds the full configuration for tasklist.
type Config struct {
	Backend string `toml:"backend"`  // file, sqlite or memory
	DataDir string `toml:"data_dir"` // where file/sqlite keep data
	Slot    string `toml:"slot"`     // key of the persisted task list
	Theme   string `toml:"theme"`    // classic, neon or mono
	Group   bool   `toml:"group"`    // ls groups by active/completed

	Log LogConfig `toml:"log"`

	// ConfigFile is the TOML file that was read, if any (computed).
	ConfigFile string `toml:"-"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

// DBPath is the SQLite file used by the sqlite backend.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, DefaultDBFile)
}

// flagValues mirrors the root flags so only flags that were set override.
type flagValues struct {
	config    string
	backend   string
	dataDir   string
	slot      string
	theme     string
	group     bool
	logLevel  string
	logFormat string
	logFile   string
}

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. Config file (TOML)
// 3. .env file and environment variables
// 4. CLI flags
// It returns the arguments left after the root flags.
func Load(fs *flag.FlagSet, args []string) (*Config, []string, error) {
	cfg := &Config{}
	setDefaults(cfg)

	if fs == nil {
		fs = flag.NewFlagSet("tasklist", flag.ContinueOnError)
	}
	fv := defineFlags(fs, cfg)
	if err := fs.Parse(args); err != nil {
		return nil, nil, fmt.Errorf("parsing flags: %w", err)
	}

	configFile := fv.config
	if configFile == "" {
		configFile = findConfigFile()
	}
	if configFile != "" {
		if err := loadConfigFile(cfg, configFile); err != nil {
			return nil, nil, fmt.Errorf("loading config file %s: %w", configFile, err)
		}
		cfg.ConfigFile = configFile
	}

	// .env is optional; existing environment variables win over it.
	_ = godotenv.Load()
	loadFromEnv(cfg)

	applyFlags(cfg, fs, fv)

	if err := finalizeConfig(cfg); err != nil {
		return nil, nil, fmt.Errorf("finalizing config: %w", err)
	}
	return cfg, fs.Args(), nil
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.Backend = DefaultBackend
	cfg.DataDir = DefaultDataDir
	cfg.Slot = DefaultSlot
	cfg.Theme = DefaultTheme
	cfg.Group = false
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.Log.File = ""
}

// findConfigFile looks for a config file in the current directory.
func findConfigFile() string {
	names := []string{"tasklist.toml", ".tasklist.toml"}
	for _, name := range names {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// loadConfigFile loads TOML config from the given file.
func loadConfigFile(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// loadFromEnv overrides config from environment variables.
func loadFromEnv(cfg *Config) {
	if v := os.Getenv("TASKLIST_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("TASKLIST_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("TASKLIST_SLOT"); v != "" {
		cfg.Slot = v
	}
	if v := os.Getenv("TASKLIST_THEME"); v != "" {
		cfg.Theme = v
	}
	if v := os.Getenv("TASKLIST_GROUP"); v != "" {
		cfg.Group = boolFromString(v)
	}
	if v := os.Getenv("TASKLIST_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("TASKLIST_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("TASKLIST_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}

// boolFromString parses a boolean from a string.
func boolFromString(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}

// defineFlags registers the root flags. Defaults shown in -h are the
// built-in defaults; the real values are applied after file and env.
func defineFlags(fs *flag.FlagSet, cfg *Config) *flagValues {
	fv := &flagValues{}
	fs.StringVar(&fv.config, "config", "", "TOML config file (default ./tasklist.toml or ./.tasklist.toml)")
	fs.StringVar(&fv.backend, "backend", cfg.Backend, "Storage backend (file|sqlite|memory)")
	fs.StringVar(&fv.dataDir, "data-dir", cfg.DataDir, "Data directory for file/sqlite backends")
	fs.StringVar(&fv.slot, "slot", cfg.Slot, "Slot name the task list is stored under")
	fs.StringVar(&fv.theme, "theme", cfg.Theme, "Color theme (classic|neon|mono)")
	fs.BoolVar(&fv.group, "group", cfg.Group, "Group ls output by active/completed")
	fs.StringVar(&fv.logLevel, "log-level", cfg.Log.Level, "Log level (debug|info|warn|error)")
	fs.StringVar(&fv.logFormat, "log-format", cfg.Log.Format, "Log format (text|json|logfmt)")
	fs.StringVar(&fv.logFile, "log-file", cfg.Log.File, "Log file (default stderr; discarded in the TUI)")
	return fv
}

// applyFlags copies only the flags that were given on the command line.
func applyFlags(cfg *Config, fs *flag.FlagSet, fv *flagValues) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "backend":
			cfg.Backend = fv.backend
		case "data-dir":
			cfg.DataDir = fv.dataDir
		case "slot":
			cfg.Slot = fv.slot
		case "theme":
			cfg.Theme = fv.theme
		case "group":
			cfg.Group = fv.group
		case "log-level":
			cfg.Log.Level = fv.logLevel
		case "log-format":
			cfg.Log.Format = fv.logFormat
		case "log-file":
			cfg.Log.File = fv.logFile
		}
	})
}

// finalizeConfig validates values and expands paths.
func finalizeConfig(cfg *Config) error {
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	switch cfg.Backend {
	case BackendFile, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("unknown backend %q (want file, sqlite or memory)", cfg.Backend)
	}

	cfg.Slot = strings.TrimSpace(cfg.Slot)
	if cfg.Slot == "" {
		return errors.New("slot name is empty")
	}

	cfg.DataDir = expandPath(cfg.DataDir)
	cfg.Log.File = expandPath(cfg.Log.File)
	if cfg.Backend != BackendMemory && strings.TrimSpace(cfg.DataDir) == "" {
		return errors.New("data dir is empty")
	}
	return nil
}

// expandPath expands a leading ~ to the user's home directory.
func expandPath(p string) string {
	if strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, p[2:])
	}
	if p == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return home
	}
	return p
}
