package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DataConfig controls where the local database lives.
type DataConfig struct {
	// Path is the SQLite database file holding the technology collection
	// and the settings blob.
	Path string `mapstructure:"path" yaml:"path"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`

	// File receives JSON log lines. Empty means stderr.
	File string `mapstructure:"file" yaml:"file"`
}

// ReminderConfig controls the deadline reminder poller.
type ReminderConfig struct {
	IntervalSec int `mapstructure:"interval_sec" yaml:"interval_sec"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Data     DataConfig     `mapstructure:"data" yaml:"data"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Reminder ReminderConfig `mapstructure:"reminder" yaml:"reminder"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/techtracker/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "techtracker", "config.yaml")
}

func defaultDataPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "techtracker.db"
	}
	return filepath.Join(home, ".local", "share", "techtracker", "techtracker.db")
}

func defaultLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "techtracker", "techtracker.log")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Data: DataConfig{Path: defaultDataPath()},
		Log: LogConfig{
			Level: "info",
			File:  defaultLogPath(),
		},
		Reminder: ReminderConfig{IntervalSec: 300},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
// TECHTRACKER_* environment variables override file values
// (e.g. TECHTRACKER_DATA_PATH).
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("techtracker")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := defaultAppConfig()
	v.SetDefault("data.path", def.Data.Path)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.file", def.Log.File)
	v.SetDefault("reminder.interval_sec", def.Reminder.IntervalSec)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); !ok {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Reminder.IntervalSec <= 0 {
		cfg.Reminder.IntervalSec = def.Reminder.IntervalSec
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("data", cfg.Data)
	v.Set("log", cfg.Log)
	v.Set("reminder", cfg.Reminder)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
