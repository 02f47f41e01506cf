package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	cperr "cptel/internal/errors"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile_Overlay(t *testing.T) {
	path := writeFile(t, `
host: bbs.example.org
port: 2323
timeout: 4
cp437_high: true
home_after_clear: true
bell_macro: jjl
tunnel: sysop@gateway:2222
log: /tmp/calls.log
log_plain: true
verbose: 2
`)
	cfg := New()
	if err := LoadFile(cfg, path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if cfg.Host != "bbs.example.org" || cfg.Port != 2323 {
		t.Errorf("target = %s:%d", cfg.Host, cfg.Port)
	}
	if cfg.Timeout != 4*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
	if !cfg.HighRange || !cfg.HomeAfterClear || !cfg.LogPlain {
		t.Errorf("booleans not applied: %+v", cfg)
	}
	if cfg.BellMacro != "jjl" {
		t.Errorf("BellMacro = %q", cfg.BellMacro)
	}
	if cfg.TunnelSpec != "sysop@gateway:2222" {
		t.Errorf("TunnelSpec = %q", cfg.TunnelSpec)
	}
	if cfg.LogFile != "/tmp/calls.log" || cfg.Verbose != 2 {
		t.Errorf("output settings = %q, %d", cfg.LogFile, cfg.Verbose)
	}
	// untouched keys keep their defaults
	if cfg.PollInterval != DefaultPollInterval || cfg.LegacyEscapes {
		t.Errorf("defaults overwritten: %+v", cfg)
	}
}

func TestLoadFile_ExplicitFalse(t *testing.T) {
	path := writeFile(t, "no_dns: false\n")
	cfg := New()
	cfg.NoDNS = true
	if err := LoadFile(cfg, path); err != nil {
		t.Fatal(err)
	}
	if cfg.NoDNS {
		t.Error("explicit false should override")
	}
}

func TestLoadFile_Empty(t *testing.T) {
	cfg := New()
	if err := LoadFile(cfg, writeFile(t, "")); err != nil {
		t.Fatalf("empty file: %v", err)
	}
	if cfg.Port != DefaultPort {
		t.Errorf("Port = %d", cfg.Port)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	tests := map[string]string{
		"unknown key": "hots: typo.example\n",
		"bad type":    "port: twenty-three\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			err := LoadFile(New(), writeFile(t, body))
			var ce *cperr.ConfigError
			if !errors.As(err, &ce) || ce.Field != "config" {
				t.Fatalf("err = %v, want config ConfigError", err)
			}
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	err := LoadFile(New(), filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected error")
	}
}
