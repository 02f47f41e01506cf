// Package cmd wires up the CLI flags and dispatches to the session core.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"cptel/config"
	"cptel/internal/core"
	"cptel/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X cptel/cmd.version=1.1.0"
var version = "1.0.0" //nolint:gochecknoglobals

// Execute parses args and runs a session.  Usage and validation errors
// are returned before any connection is attempted.
func Execute(ctx context.Context, args []string) error {
	cfg := config.New()
	if path := configPath(args); path != "" {
		if err := config.LoadFile(cfg, path); err != nil {
			return err
		}
	}
	config.LoadFromEnv(cfg)

	fs := flag.NewFlagSet("cptel", flag.ContinueOnError)

	// ── connection ───────────────────────────────────────────────
	fs.BoolVarP(&cfg.NoDNS, "no-dns", "n", cfg.NoDNS, "Numeric-only, no DNS resolution")

	timeoutSec := int(cfg.Timeout / time.Second)
	fs.IntVarP(&timeoutSec, "timeout", "w", timeoutSec, "Connect timeout per address, in seconds")

	// ── decoding ─────────────────────────────────────────────────
	fs.BoolVar(&cfg.HighRange, "cp437-high", cfg.HighRange, "Render bytes 0x80-0xFF with the full CP437 table")
	fs.BoolVar(&cfg.LegacyEscapes, "legacy-escapes", cfg.LegacyEscapes, "Do not carry escape sequences across reads")
	fs.BoolVar(&cfg.HomeAfterClear, "home-after-clear", cfg.HomeAfterClear, "Home the cursor after a clear-screen that lacks it")
	fs.StringVar(&cfg.BellMacro, "bell", cfg.BellMacro, "Keys to send after Ctrl+G (h/j/k/l are arrow keys)")

	// ── SSH jump host ────────────────────────────────────────────
	fs.StringVarP(&cfg.TunnelSpec, "tunnel", "T", cfg.TunnelSpec, "Reach the host through SSH [user@]gateway[:port]")
	fs.StringVar(&cfg.SSHKeyPath, "ssh-key", cfg.SSHKeyPath, "SSH private key file")
	fs.BoolVar(&cfg.SSHPassword, "ssh-password", cfg.SSHPassword, "Prompt for SSH password")
	fs.BoolVar(&cfg.UseSSHAgent, "ssh-agent", cfg.UseSSHAgent, "Use SSH agent")
	fs.BoolVar(&cfg.StrictHostKey, "strict-hostkey", cfg.StrictHostKey, "Verify SSH host keys")
	fs.StringVar(&cfg.KnownHostsPath, "known-hosts", cfg.KnownHostsPath, "Custom known_hosts path")

	// ── output ───────────────────────────────────────────────────
	fs.StringVarP(&cfg.LogFile, "log", "o", cfg.LogFile, "Append decoded output to a transcript file")
	fs.BoolVar(&cfg.LogPlain, "log-plain", cfg.LogPlain, "Strip escape sequences from the transcript")
	fs.BoolVar(&cfg.NoClear, "no-clear", cfg.NoClear, "Do not clear the screen when the session starts")
	fs.BoolVar(&cfg.NoRaw, "no-raw", cfg.NoRaw, "Leave the terminal in line mode")
	envVerbose := cfg.Verbose
	fs.CountVarP(&cfg.Verbose, "verbose", "v", "Increase verbosity (repeatable)")

	var showVersion, showHelp, dryRun bool
	var configFile string
	fs.StringVar(&configFile, "config", "", "YAML config file (default $XDG_CONFIG_HOME/cptel/config.yaml)")
	fs.BoolVar(&dryRun, "dry-run", false, "Validate the configuration and exit")
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")

	fs.Usage = func() { printUsage(fs) }

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return err
	}

	if showHelp {
		printUsage(fs)
		return nil
	}
	if showVersion {
		fmt.Printf("cptel %s\n", version)
		return nil
	}

	cfg.Timeout = time.Duration(timeoutSec) * time.Second
	if cfg.Verbose == 0 {
		cfg.Verbose = envVerbose
	}

	// ── positional arguments ─────────────────────────────────────
	if err := parsePositional(cfg, fs.Args()); err != nil {
		return err
	}

	// ── tunnel spec ──────────────────────────────────────────────
	if cfg.TunnelSpec != "" {
		user, host, port, err := config.ParseTunnelSpec(cfg.TunnelSpec)
		if err != nil {
			return fmt.Errorf("tunnel: %w", err)
		}
		if user == "" {
			user = os.Getenv("USER")
		}
		cfg.TunnelEnabled = true
		cfg.TunnelUser = user
		cfg.TunnelHost = host
		cfg.TunnelPort = port
	}

	// ── validate ─────────────────────────────────────────────────
	if err := cfg.Validate(); err != nil {
		return err
	}

	if dryRun {
		printPlan(cfg)
		return nil
	}

	// ── build and run ────────────────────────────────────────────
	logger := util.NewLogger(cfg.Verbose)

	mode, err := core.Build(cfg, logger)
	if err != nil {
		return err
	}
	return mode.Run(ctx)
}

// ── helpers ──────────────────────────────────────────────────────────

// configPath picks the config file: --config, then CPTEL_CONFIG, then
// the default location if a file exists there.  It runs before the
// real flag parse so that flags can override the file.
func configPath(args []string) string {
	pre := flag.NewFlagSet("cptel", flag.ContinueOnError)
	pre.ParseErrorsWhitelist.UnknownFlags = true
	pre.SetOutput(io.Discard)
	pre.Usage = func() {}

	var path string
	pre.StringVar(&path, "config", "", "")
	pre.Parse(args) //nolint:errcheck // the real parse reports errors

	if path != "" {
		return path
	}
	if v := os.Getenv("CPTEL_CONFIG"); v != "" {
		return v
	}
	if d := config.DefaultConfigPath(); d != "" {
		if _, err := os.Stat(d); err == nil {
			return d
		}
	}
	return ""
}

// parsePositional accepts <host> [port].  A host from CPTEL_HOST may
// stand in for the first argument.
func parsePositional(cfg *config.Config, remaining []string) error {
	switch len(remaining) {
	case 0:
		if cfg.Host == "" {
			return fmt.Errorf("hostname required (use --help for usage)")
		}
	case 1:
		cfg.Host = remaining[0]
	case 2:
		cfg.Host = remaining[0]
		port, err := config.ParsePort(remaining[1])
		if err != nil {
			return fmt.Errorf("port: %w", err)
		}
		cfg.Port = port
	default:
		return fmt.Errorf("too many arguments: expected <host> [port], got %d", len(remaining))
	}
	return nil
}

func printPlan(cfg *config.Config) {
	fmt.Printf("target:     %s\n", util.FormatAddr(cfg.Host, cfg.Port))
	fmt.Printf("timeout:    %s\n", cfg.Timeout)
	if cfg.TunnelEnabled {
		fmt.Printf("jump host:  %s@%s\n", cfg.TunnelUser, util.FormatAddr(cfg.TunnelHost, cfg.TunnelPort))
	}
	table := "graphical"
	if cfg.HighRange {
		table = "graphical + CP437 high range"
	}
	fmt.Printf("glyphs:     %s\n", table)
	fmt.Printf("escapes:    carried across reads: %v\n", !cfg.LegacyEscapes)
	if cfg.BellMacro != "" {
		fmt.Printf("bell macro: %q\n", cfg.BellMacro)
	}
	if cfg.LogFile != "" {
		fmt.Printf("transcript: %s\n", cfg.LogFile)
	}
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, `cptel – CP437 telnet relay v%s

Connects to a BBS or MUD and renders its CP437 control glyphs as
Unicode while passing ANSI escape sequences through untouched.

Usage:
  cptel [options] <host> [port]               Connect (port defaults to 23)
  cptel -T user@gateway <host> [port]         Connect through an SSH jump host

Press Ctrl+] to disconnect.

Options:
`, version)
	fs.PrintDefaults()
	fmt.Fprintf(os.Stderr, `
Examples:
  cptel bbs.example.org                       Plain telnet
  cptel --cp437-high bbs.example.org 2323     Full CP437 box drawing
  cptel -o call.log mud.example.net 4000      Keep a transcript
  cptel --config ~/bbs.yaml                   Settings from a file
  cptel -T sysop@gateway 10.0.0.5             Via SSH
`)
}
