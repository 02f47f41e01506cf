package config

// loader.go - configuration loading from environment variables.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. Environment variables  (this file)
//   3. Defaults   (defaults.go)

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ── Environment variable mapping ─────────────────────────────────────
//
// Every supported env var uses the CPTEL_ prefix.  Boolean values
// accept "1", "true", "yes" (case-insensitive).

// LoadFromEnv overlays environment variables onto cfg.  Only non-empty
// env vars override the existing value.  This should be called BEFORE
// CLI flag parsing so that flags take precedence.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("CPTEL_HOST"); v != "" {
		cfg.Host = v
	}
	if v := envInt("CPTEL_PORT"); v > 0 {
		cfg.Port = v
	}
	if v := envInt("CPTEL_TIMEOUT"); v > 0 {
		cfg.Timeout = secondsDuration(v)
	}
	if envBool("CPTEL_NO_DNS") {
		cfg.NoDNS = true
	}

	// Decoding
	if envBool("CPTEL_CP437_HIGH") {
		cfg.HighRange = true
	}
	if envBool("CPTEL_LEGACY_ESCAPES") {
		cfg.LegacyEscapes = true
	}
	if envBool("CPTEL_HOME_AFTER_CLEAR") {
		cfg.HomeAfterClear = true
	}
	if v := os.Getenv("CPTEL_BELL_MACRO"); v != "" {
		cfg.BellMacro = v
	}

	// SSH jump host
	if v := os.Getenv("CPTEL_TUNNEL"); v != "" {
		cfg.TunnelSpec = v
	}
	if v := os.Getenv("CPTEL_SSH_KEY"); v != "" {
		cfg.SSHKeyPath = v
	}
	if envBool("CPTEL_SSH_PASSWORD") {
		cfg.SSHPassword = true
	}
	if envBool("CPTEL_SSH_AGENT") {
		cfg.UseSSHAgent = true
	}
	if envBool("CPTEL_STRICT_HOSTKEY") {
		cfg.StrictHostKey = true
	}
	if v := os.Getenv("CPTEL_KNOWN_HOSTS"); v != "" {
		cfg.KnownHostsPath = v
	}

	// Output
	if v := os.Getenv("CPTEL_LOG"); v != "" {
		cfg.LogFile = v
	}
	if envBool("CPTEL_LOG_PLAIN") {
		cfg.LogPlain = true
	}
	if envBool("CPTEL_NO_CLEAR") {
		cfg.NoClear = true
	}
	if envBool("CPTEL_NO_RAW") {
		cfg.NoRaw = true
	}
	if v := envInt("CPTEL_VERBOSE"); v > 0 {
		cfg.Verbose = v
	}
}

// ── helpers ──────────────────────────────────────────────────────────

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes"
}

func secondsDuration(sec int) time.Duration {
	return time.Duration(sec) * time.Second
}
