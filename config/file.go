package config

import (
	"fmt"

	"gopkg.in/ini.v1"
)

// fileConfig mirrors the ini layout:
//
//	[server]
//	host         = localhost
//	port         = 30222
//	network      = tcp4
//	poll_timeout = 500
//
//	[log]
//	verbose = 1
//	color   = true
type fileConfig struct {
	Server serverSection `ini:"server"`
	Log    logSection    `ini:"log"`
}

type serverSection struct {
	Host        string `ini:"host"`
	Port        int    `ini:"port"`
	Network     string `ini:"network"`
	PollTimeout int    `ini:"poll_timeout"` // milliseconds
}

type logSection struct {
	Verbose int  `ini:"verbose"`
	Color   bool `ini:"color"`
}

// LoadFile overlays the ini file at path onto cfg.  Keys absent from
// the file keep their current value.
func LoadFile(cfg *Config, path string) error {
	f, err := ini.Load(path)
	if err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}

	// Seed with the current values so MapTo only replaces keys that
	// are present in the file.
	fc := fileConfig{
		Server: serverSection{
			Host:        cfg.Host,
			Port:        cfg.Port,
			Network:     cfg.Network,
			PollTimeout: int(cfg.PollTimeout.Milliseconds()),
		},
		Log: logSection{
			Verbose: cfg.Verbose,
			Color:   !cfg.NoColor,
		},
	}
	if err := f.MapTo(&fc); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}

	cfg.Host = fc.Server.Host
	cfg.Port = fc.Server.Port
	cfg.Network = fc.Server.Network
	cfg.PollTimeout = millisDuration(fc.Server.PollTimeout)
	cfg.Verbose = fc.Log.Verbose
	cfg.NoColor = !fc.Log.Color
	cfg.ConfigFile = path
	return nil
}
