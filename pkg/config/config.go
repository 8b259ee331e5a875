// Package config decodes the runtime's YAML configuration file. It is
// adapted from the teacher's pkg/config/config.go: the same exported
// top-level Config struct, yaml tags, and LoadFile/Validate shape, with
// the blockchain-protocol/application sections replaced by this
// runtime's AppsDir/LogsDir/Logger/Metrics/Debug sections (SPEC_FULL.md
// §A.2).
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultAppsDir is where .apb files are looked up when AppsDir is
	// left unset.
	DefaultAppsDir = "./apps"
	// DefaultLogsDir is where per-app log files are written when
	// LogsDir is left unset.
	DefaultLogsDir = "./logs"
	// DefaultApp is the app loaded at startup when the config file sets
	// no DefaultApp (spec.md §6.4).
	DefaultApp = "APICA_MENU"
)

// Config is the top-level runtime configuration.
type Config struct {
	AppsDir    string  `yaml:"AppsDir"`
	LogsDir    string  `yaml:"LogsDir"`
	DefaultApp string  `yaml:"DefaultApp"`
	Logger     Logger  `yaml:"Logger"`
	Metrics    Metrics `yaml:"Metrics"`
	Debug      Debug   `yaml:"Debug"`
}

// Metrics configures pkg/metrics' HTTP listener.
type Metrics struct {
	Enabled bool   `yaml:"Enabled"`
	Address string `yaml:"Address"`
}

// Validate requires an Address whenever Enabled is true.
func (m Metrics) Validate() error {
	if m.Enabled && m.Address == "" {
		return fmt.Errorf("Metrics.Address must be set when Metrics.Enabled is true")
	}
	return nil
}

// Debug configures internal/debugcli and the wsdebug window transport.
type Debug struct {
	Enabled  bool   `yaml:"Enabled"`
	ListenWS string `yaml:"ListenWS"`
}

// Validate requires a ListenWS address whenever Enabled is true.
func (d Debug) Validate() error {
	if d.Enabled && d.ListenWS == "" {
		return fmt.Errorf("Debug.ListenWS must be set when Debug.Enabled is true")
	}
	return nil
}

// Default returns the Config used when no file is loaded (spec.md
// §6.4: "no CLI flags or env vars are required to run").
func Default() Config {
	return Config{
		AppsDir:    DefaultAppsDir,
		LogsDir:    DefaultLogsDir,
		DefaultApp: DefaultApp,
		Logger:     Logger{Encoding: "console", Level: "info"},
	}
}

// Validate checks every nested section.
func (c Config) Validate() error {
	if c.AppsDir == "" {
		return fmt.Errorf("AppsDir must not be empty")
	}
	if c.LogsDir == "" {
		return fmt.Errorf("LogsDir must not be empty")
	}
	if err := c.Logger.Validate(); err != nil {
		return err
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	if err := c.Debug.Validate(); err != nil {
		return err
	}
	return nil
}

// LoadFile reads and decodes a YAML config file, starting from
// Default() so any field the file omits keeps its default, then
// validates the result. Unlike the teacher's LoadFile, a missing file
// is not an error here — the caller passes an explicit path only when
// overriding defaults, so a not-found path simply falls back to
// Default().
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("unable to read config: %w", err)
	}

	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
