package cmd

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pollsrv/config"
	srverr "pollsrv/internal/errors"
)

// TestExecute_Version verifies --version prints a version string.
func TestExecute_Version(t *testing.T) {
	if err := Execute(context.Background(), []string{"--version"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// TestExecute_Help verifies --help returns without error.
func TestExecute_Help(t *testing.T) {
	for _, args := range [][]string{{"--help"}, {"-h"}} {
		t.Run(args[0], func(t *testing.T) {
			if err := Execute(context.Background(), args); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

// TestExecute_DryRun verifies --dry-run validates and exits cleanly.
func TestExecute_DryRun(t *testing.T) {
	err := Execute(context.Background(), []string{
		"-p", "8080", "--dry-run",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// TestExecute_DryRunInvalid verifies --dry-run still catches bad configs.
func TestExecute_DryRunInvalid(t *testing.T) {
	err := Execute(context.Background(), []string{
		"-p", "70000", "--dry-run",
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	var ce *srverr.ConfigError
	if !srverr.As(err, &ce) || ce.Field != "port" {
		t.Errorf("expected port ConfigError, got %v", err)
	}
}

// TestExecute_InvalidFlags verifies unknown flags produce an error.
func TestExecute_InvalidFlags(t *testing.T) {
	if err := Execute(context.Background(), []string{"--nonexistent-flag"}); err == nil {
		t.Fatal("expected error for unknown flag")
	}
}

// TestExecute_ConflictingFlags verifies mutually exclusive flags are
// rejected.
func TestExecute_ConflictingFlags(t *testing.T) {
	for _, args := range [][]string{
		{"-4", "-6", "--dry-run"},
		{"-q", "-v", "--dry-run"},
	} {
		t.Run(strings.Join(args[:2], " "), func(t *testing.T) {
			err := Execute(context.Background(), args)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), "mutually exclusive") {
				t.Errorf("error should mention mutually exclusive: %v", err)
			}
		})
	}
}

// TestExecute_TooManyArgs verifies extra positionals are rejected.
func TestExecute_TooManyArgs(t *testing.T) {
	if err := Execute(context.Background(), []string{"a", "1", "b", "--dry-run"}); err == nil {
		t.Fatal("expected error for too many arguments")
	}
}

// TestExecute_MissingConfigFile verifies an unreadable --config fails.
func TestExecute_MissingConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.ini")
	if err := Execute(context.Background(), []string{"-c", path, "--dry-run"}); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

// TestExecute_StartupFailure verifies a busy port surfaces as a fatal
// startup error.
func TestExecute_StartupFailure(t *testing.T) {
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	_, port, _ := net.SplitHostPort(ln.Addr().String())

	err = Execute(context.Background(), []string{"-q", "127.0.0.1", port})
	if err == nil {
		t.Fatal("expected startup error")
	}
	if !srverr.IsFatal(err) {
		t.Errorf("expected fatal error, got %v", err)
	}
}

// TestExecute_RunsUntilCancelled verifies the loop serves until the
// context ends and then returns cleanly.
func TestExecute_RunsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	err := Execute(ctx, []string{"-q", "-t", "50", "-H", "127.0.0.1", "-p", "0"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestApplyFlags_Precedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pollsrv.ini")
	if err := os.WriteFile(path, []byte("[server]\nhost = 10.0.0.1\nport = 4000\npoll_timeout = 100\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}

	var f flags
	fs := newFlagSet(&f)
	if err := fs.Parse([]string{"-p", "5000", "-6", "-vv"}); err != nil {
		t.Fatal(err)
	}
	if err := applyFlags(cfg, fs, &f); err != nil {
		t.Fatal(err)
	}

	if cfg.Host != "10.0.0.1" {
		t.Errorf("Host = %q, unset flag should keep the file value", cfg.Host)
	}
	if cfg.Port != 5000 {
		t.Errorf("Port = %d, flag should win", cfg.Port)
	}
	if cfg.Network != "tcp6" {
		t.Errorf("Network = %q, want tcp6", cfg.Network)
	}
	if cfg.PollTimeout != 100*time.Millisecond {
		t.Errorf("PollTimeout = %v, want file value", cfg.PollTimeout)
	}
	if cfg.Verbose != config.DefaultVerbosity+2 {
		t.Errorf("Verbose = %d, want %d", cfg.Verbose, config.DefaultVerbosity+2)
	}
}

func TestParsePositional(t *testing.T) {
	tests := []struct {
		args     []string
		wantHost string
		wantPort int
		wantErr  bool
	}{
		{nil, config.DefaultHost, config.DefaultPort, false},
		{[]string{"0.0.0.0"}, "0.0.0.0", config.DefaultPort, false},
		{[]string{"127.0.0.1", "9000"}, "127.0.0.1", 9000, false},
		{[]string{"127.0.0.1", "http"}, "", 0, true},
		{[]string{"a", "1", "b"}, "", 0, true},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			cfg := config.Default()
			err := parsePositional(cfg, tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if cfg.Host != tt.wantHost || cfg.Port != tt.wantPort {
				t.Errorf("got %s, want %s:%d", cfg.Address(), tt.wantHost, tt.wantPort)
			}
		})
	}
}
