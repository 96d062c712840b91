// Package appconfig manages per-user settings and the paths of hop's files.
package appconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/alpemreelmas/hop-cli/internal/util"
)

// ServersFileEnv overrides the servers file location.
const ServersFileEnv = "HOP_SERVERS_FILE"

// SSHConfig controls how interactive sessions are launched.
type SSHConfig struct {
	Program string `yaml:"program"`
	// ExtraArgs is a shell-quoted string, e.g. `-o ServerAliveInterval=30`.
	ExtraArgs string `yaml:"extra_args"`
}

// SCPConfig controls copy commands.
type SCPConfig struct {
	Program string `yaml:"program"`
}

// UIConfig contains TUI display settings.
type UIConfig struct {
	ShowHelp bool `yaml:"show_help"`
}

// Config holds application-level settings.
type Config struct {
	LogLevel      string    `yaml:"log_level"`
	ServersFile   string    `yaml:"servers_file"`
	ConfirmRemove bool      `yaml:"confirm_remove"`
	SSH           SSHConfig `yaml:"ssh"`
	SCP           SCPConfig `yaml:"scp"`
	UI            UIConfig  `yaml:"ui"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		LogLevel:      "warn",
		ConfirmRemove: true,
		SSH:           SSHConfig{Program: "ssh"},
		SCP:           SCPConfig{Program: "scp"},
		UI:            UIConfig{ShowHelp: true},
	}
}

// ConfigDir returns the application config directory path.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/hop.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, util.AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home: %w", err)
	}
	return filepath.Join(home, ".config", util.AppName), nil
}

func fileInConfigDir(name string) (string, error) {
	d, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, name), nil
}

// SettingsPath returns the path of config.yaml.
func SettingsPath() (string, error) { return fileInConfigDir(util.SettingsFileName) }

// HistoryPath returns the path of the last-used history file.
func HistoryPath() (string, error) { return fileInConfigDir(util.HistoryFileName) }

// ActivityPath returns the path of the activity journal.
func ActivityPath() (string, error) { return fileInConfigDir(util.ActivityFileName) }

// ServersFile resolves the servers file: flag, then $HOP_SERVERS_FILE,
// then the servers_file setting, then servers.json in the config dir.
func ServersFile(flag string, cfg Config) (string, error) {
	for _, candidate := range []string{flag, os.Getenv(ServersFileEnv), cfg.ServersFile} {
		if candidate = strings.TrimSpace(candidate); candidate != "" {
			return expandHome(candidate)
		}
	}
	return fileInConfigDir(util.ServersFileName)
}

// Load reads config.yaml from the config directory. A missing file yields
// the defaults; nothing is written.
func Load() (Config, error) {
	path, err := SettingsPath()
	if err != nil {
		return Config{}, err
	}
	return LoadFile(path)
}

// LoadFile reads settings from path on top of Default.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return normalize(cfg), nil
}

func normalize(cfg Config) Config {
	def := Default()
	switch strings.ToLower(strings.TrimSpace(cfg.LogLevel)) {
	case "debug", "info", "warn", "error":
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	default:
		cfg.LogLevel = def.LogLevel
	}
	if strings.TrimSpace(cfg.SSH.Program) == "" {
		cfg.SSH.Program = def.SSH.Program
	}
	if strings.TrimSpace(cfg.SCP.Program) == "" {
		cfg.SCP.Program = def.SCP.Program
	}
	return cfg
}

// Save writes config to config.yaml.
func Save(cfg Config) error {
	path, err := SettingsPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
