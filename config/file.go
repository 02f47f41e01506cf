package config

// file.go - configuration loading from a YAML file.
//
// Precedence order (highest wins):
//   1. CLI flags
//   2. Environment variables
//   3. Config file  (this file)
//   4. Defaults

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	cperr "cptel/internal/errors"
)

// fileConfig mirrors the subset of Config that may be set from a file.
// Pointer fields distinguish "absent" from the zero value.
type fileConfig struct {
	Host    *string `yaml:"host"`
	Port    *int    `yaml:"port"`
	Timeout *int    `yaml:"timeout"` // seconds
	NoDNS   *bool   `yaml:"no_dns"`

	CP437High      *bool `yaml:"cp437_high"`
	LegacyEscapes  *bool `yaml:"legacy_escapes"`
	HomeAfterClear *bool `yaml:"home_after_clear"`

	BellMacro *string `yaml:"bell_macro"`

	Tunnel        *string `yaml:"tunnel"`
	SSHKey        *string `yaml:"ssh_key"`
	SSHAgent      *bool   `yaml:"ssh_agent"`
	StrictHostKey *bool   `yaml:"strict_hostkey"`
	KnownHosts    *string `yaml:"known_hosts"`

	Log      *string `yaml:"log"`
	LogPlain *bool   `yaml:"log_plain"`
	NoClear  *bool   `yaml:"no_clear"`
	NoRaw    *bool   `yaml:"no_raw"`
	Verbose  *int    `yaml:"verbose"`
}

// LoadFile overlays the YAML file at path onto cfg.  Unknown keys are
// rejected so a typo does not silently fall back to a default.  An
// empty file is not an error.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &cperr.ConfigError{Field: "config", Value: path, Message: err.Error()}
	}

	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !cperr.Is(err, io.EOF) {
		return &cperr.ConfigError{Field: "config", Value: path, Message: err.Error()}
	}

	fc.apply(cfg)
	return nil
}

func (fc *fileConfig) apply(cfg *Config) {
	setString(&cfg.Host, fc.Host)
	setInt(&cfg.Port, fc.Port)
	if fc.Timeout != nil {
		cfg.Timeout = time.Duration(*fc.Timeout) * time.Second
	}
	setBool(&cfg.NoDNS, fc.NoDNS)

	setBool(&cfg.HighRange, fc.CP437High)
	setBool(&cfg.LegacyEscapes, fc.LegacyEscapes)
	setBool(&cfg.HomeAfterClear, fc.HomeAfterClear)

	setString(&cfg.BellMacro, fc.BellMacro)

	setString(&cfg.TunnelSpec, fc.Tunnel)
	setString(&cfg.SSHKeyPath, fc.SSHKey)
	setBool(&cfg.UseSSHAgent, fc.SSHAgent)
	setBool(&cfg.StrictHostKey, fc.StrictHostKey)
	setString(&cfg.KnownHostsPath, fc.KnownHosts)

	setString(&cfg.LogFile, fc.Log)
	setBool(&cfg.LogPlain, fc.LogPlain)
	setBool(&cfg.NoClear, fc.NoClear)
	setBool(&cfg.NoRaw, fc.NoRaw)
	setInt(&cfg.Verbose, fc.Verbose)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/cptel/config.yaml (or the
// ~/.config equivalent).  The file is optional.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "cptel", "config.yaml")
}
