package core

import (
	"pollsrv/config"
	"pollsrv/internal/capability"
	"pollsrv/internal/metrics"
	"pollsrv/util"
)

// Build validates cfg and constructs the Mode it describes.
func Build(cfg *config.Config, logger *util.Logger) (Mode, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return buildServe(cfg, logger), nil
}

// ── mode builders ────────────────────────────────────────────────────

func buildServe(cfg *config.Config, logger *util.Logger) *ServeMode {
	return &ServeMode{
		Network:     cfg.Network,
		Host:        cfg.Host,
		Port:        cfg.Port,
		PollTimeout: cfg.PollTimeout,
		Capability:  buildCapability(),
		Logger:      logger,
		Metrics:     metrics.New(),
	}
}

// buildCapability selects the per-chunk behaviour.
func buildCapability() capability.Capability {
	return capability.Quit{}
}
