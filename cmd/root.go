// Package cmd wires up the CLI flags and dispatches to the serve loop.
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"pollsrv/config"
	"pollsrv/internal/core"
	srverr "pollsrv/internal/errors"
	"pollsrv/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X pollsrv/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

// flags holds raw flag values; they are applied on top of the loaded
// configuration only when explicitly set.
type flags struct {
	host        string
	port        int
	ipv4        bool
	ipv6        bool
	pollTimeout int // milliseconds
	verbose     int
	quiet       bool
	noColor     bool
	configFile  string
	dryRun      bool
	showVersion bool
	showHelp    bool
}

// newFlagSet registers every flag onto f.
func newFlagSet(f *flags) *flag.FlagSet {
	fs := flag.NewFlagSet("pollsrv", flag.ContinueOnError)

	// ── bind address ─────────────────────────────────────────────
	fs.StringVarP(&f.host, "host", "H", config.DefaultHost, "Interface to bind")
	fs.IntVarP(&f.port, "port", "p", config.DefaultPort, "TCP port to listen on (0 = any free port)")
	fs.BoolVarP(&f.ipv4, "ipv4", "4", false, "Bind an IPv4 address (default)")
	fs.BoolVarP(&f.ipv6, "ipv6", "6", false, "Bind an IPv6 address")

	// ── control loop ─────────────────────────────────────────────
	fs.IntVarP(&f.pollTimeout, "poll-timeout", "t",
		int(config.DefaultPollTimeout/time.Millisecond), "Poll timeout in milliseconds")

	// ── configuration ────────────────────────────────────────────
	fs.StringVarP(&f.configFile, "config", "c", "", "Load settings from an ini file")
	fs.BoolVar(&f.dryRun, "dry-run", false, "Print the effective configuration and exit")

	// ── output ───────────────────────────────────────────────────
	fs.CountVarP(&f.verbose, "verbose", "v", "Increase verbosity (repeatable)")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "Only print errors")
	fs.BoolVar(&f.noColor, "no-color", false, "Disable coloured log tags")

	fs.BoolVar(&f.showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&f.showHelp, "help", "h", false, "Show this help")

	fs.Usage = func() { printUsage(fs) }
	return fs
}

// Execute parses args and runs pollsrv.
func Execute(ctx context.Context, args []string) error {
	var f flags
	fs := newFlagSet(&f)

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return err
	}

	if f.showHelp {
		printUsage(fs)
		return nil
	}
	if f.showVersion {
		fmt.Printf("pollsrv %s\n", version)
		return nil
	}

	// ── layered configuration ────────────────────────────────────
	path := f.configFile
	if path == "" {
		path = os.Getenv(config.EnvConfigFile)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := applyFlags(cfg, fs, &f); err != nil {
		return err
	}
	if err := parsePositional(cfg, fs.Args()); err != nil {
		return err
	}

	// ── validate ─────────────────────────────────────────────────
	if err := cfg.Validate(); err != nil {
		return err
	}

	if f.dryRun {
		fmt.Println(cfg.String())
		return nil
	}

	// ── build and run ────────────────────────────────────────────
	logger := util.NewLogger(cfg.Verbose)
	logger.SetColor(!cfg.NoColor)

	mode, err := core.Build(cfg, logger)
	if err != nil {
		return err
	}
	return mode.Run(ctx)
}

// ── helpers ──────────────────────────────────────────────────────────

// applyFlags copies every explicitly set flag onto cfg.
func applyFlags(cfg *config.Config, fs *flag.FlagSet, f *flags) error {
	if f.ipv4 && f.ipv6 {
		return &srverr.ConfigError{
			Field:   "ipv6",
			Message: "-4 and -6 are mutually exclusive",
		}
	}
	if f.quiet && f.verbose > 0 {
		return &srverr.ConfigError{
			Field:   "quiet",
			Message: "-q and -v are mutually exclusive",
		}
	}

	if fs.Changed("host") {
		cfg.Host = f.host
	}
	if fs.Changed("port") {
		cfg.Port = f.port
	}
	switch {
	case f.ipv4:
		cfg.Network = "tcp4"
	case f.ipv6:
		cfg.Network = "tcp6"
	}
	if fs.Changed("poll-timeout") {
		cfg.PollTimeout = time.Duration(f.pollTimeout) * time.Millisecond
	}
	if f.verbose > 0 {
		cfg.Verbose += f.verbose
	}
	if f.quiet {
		cfg.Verbose = int(util.LogQuiet)
	}
	if f.noColor {
		cfg.NoColor = true
	}
	return nil
}

// parsePositional accepts "[host [port]]".
func parsePositional(cfg *config.Config, remaining []string) error {
	switch len(remaining) {
	case 0:
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
		return fmt.Errorf("too many arguments (use --help for usage)")
	}
	return nil
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, `pollsrv – single-connection TCP listener v%s

Accepts one client at a time, reads up to 16 bytes per read and logs
what arrives.  A client that sends the single byte "q" is disconnected.

Usage:
  pollsrv [options] [host [port]]

Options:
`, version)
	fs.PrintDefaults()
	fmt.Fprintf(os.Stderr, `
Examples:
  pollsrv                                     Listen on localhost:30222
  pollsrv -v 127.0.0.1 9000                   Listen on 127.0.0.1:9000, verbose
  pollsrv -6 -H ::1                           Listen on [::1]:30222
  pollsrv -c /etc/pollsrv.ini --dry-run       Show the effective settings
`)
}
