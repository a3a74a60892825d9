package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromEnv_Host(t *testing.T) {
	t.Setenv("POLLSRV_HOST", "127.0.0.1")
	cfg := Default()
	LoadFromEnv(cfg)
	if cfg.Host != "127.0.0.1" {
		t.Errorf("Host = %q, want %q", cfg.Host, "127.0.0.1")
	}
}

func TestLoadFromEnv_Port(t *testing.T) {
	t.Setenv("POLLSRV_PORT", "8080")
	cfg := Default()
	LoadFromEnv(cfg)
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
}

func TestLoadFromEnv_NetworkAndTimeout(t *testing.T) {
	t.Setenv("POLLSRV_NETWORK", "TCP6")
	t.Setenv("POLLSRV_POLL_TIMEOUT", "250")
	cfg := Default()
	LoadFromEnv(cfg)
	if cfg.Network != "tcp6" {
		t.Errorf("Network = %q, want tcp6", cfg.Network)
	}
	if cfg.PollTimeout != 250*time.Millisecond {
		t.Errorf("PollTimeout = %v, want 250ms", cfg.PollTimeout)
	}
}

func TestLoadFromEnv_NoColor(t *testing.T) {
	for _, v := range []string{"1", "true", "yes", "TRUE", "Yes"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("POLLSRV_NO_COLOR", v)
			cfg := Default()
			LoadFromEnv(cfg)
			if !cfg.NoColor {
				t.Error("NoColor should be true")
			}
		})
	}
}

// TestLoadFromEnv_InvalidIgnored verifies garbage numbers keep the
// existing value.
func TestLoadFromEnv_InvalidIgnored(t *testing.T) {
	t.Setenv("POLLSRV_PORT", "not-a-number")
	t.Setenv("POLLSRV_VERBOSE", "-3")
	cfg := Default()
	LoadFromEnv(cfg)
	if cfg.Port != DefaultPort {
		t.Errorf("Port = %d, want %d", cfg.Port, DefaultPort)
	}
	if cfg.Verbose != DefaultVerbosity {
		t.Errorf("Verbose = %d, want %d", cfg.Verbose, DefaultVerbosity)
	}
}

// TestLoadFromEnv_Zero verifies zero is honoured for port and
// verbosity rather than treated as unset.
func TestLoadFromEnv_Zero(t *testing.T) {
	t.Setenv("POLLSRV_PORT", "0")
	t.Setenv("POLLSRV_VERBOSE", "0")
	cfg := Default()
	LoadFromEnv(cfg)
	if cfg.Port != 0 {
		t.Errorf("Port = %d, want 0", cfg.Port)
	}
	if cfg.Verbose != 0 {
		t.Errorf("Verbose = %d, want 0", cfg.Verbose)
	}
}

// TestLoadFromEnv_ZeroTimeoutIgnored verifies a zero poll timeout keeps
// the existing value.
func TestLoadFromEnv_ZeroTimeoutIgnored(t *testing.T) {
	t.Setenv("POLLSRV_POLL_TIMEOUT", "0")
	cfg := Default()
	LoadFromEnv(cfg)
	if cfg.PollTimeout != DefaultPollTimeout {
		t.Errorf("PollTimeout = %v, want %v", cfg.PollTimeout, DefaultPollTimeout)
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pollsrv.ini")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
[server]
host = 0.0.0.0
port = 4000
poll_timeout = 100

[log]
verbose = 3
color = false
`)
	cfg := Default()
	if err := LoadFile(cfg, path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Address() != "0.0.0.0:4000" {
		t.Errorf("Address = %q", cfg.Address())
	}
	if cfg.Network != DefaultNetwork {
		t.Errorf("absent key should keep default, got Network = %q", cfg.Network)
	}
	if cfg.PollTimeout != 100*time.Millisecond {
		t.Errorf("PollTimeout = %v", cfg.PollTimeout)
	}
	if cfg.Verbose != 3 || !cfg.NoColor {
		t.Errorf("log section not applied: verbose=%d noColor=%v", cfg.Verbose, cfg.NoColor)
	}
	if cfg.ConfigFile != path {
		t.Errorf("ConfigFile = %q, want %q", cfg.ConfigFile, path)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	cfg := Default()
	if err := LoadFile(cfg, filepath.Join(t.TempDir(), "nope.ini")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

// TestLoad_Precedence verifies env overrides the file, which overrides
// defaults.
func TestLoad_Precedence(t *testing.T) {
	path := writeFile(t, "[server]\nhost = 10.0.0.1\nport = 4000\n")
	t.Setenv("POLLSRV_PORT", "5000")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Host != "10.0.0.1" {
		t.Errorf("Host = %q, want file value", cfg.Host)
	}
	if cfg.Port != 5000 {
		t.Errorf("Port = %d, want env value 5000", cfg.Port)
	}
	if cfg.PollTimeout != DefaultPollTimeout {
		t.Errorf("PollTimeout = %v, want default", cfg.PollTimeout)
	}
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ConfigFile != "" {
		t.Errorf("ConfigFile = %q, want empty", cfg.ConfigFile)
	}
}
