package core

import (
	"cptel/config"
	"cptel/internal/cp437"
	"cptel/internal/metrics"
	"cptel/internal/relay"
	"cptel/internal/transport"
	"cptel/tunnel"
	"cptel/util"
)

// Build constructs the session Mode for cfg.  cfg is expected to have
// passed Validate.
func Build(cfg *config.Config, logger *util.Logger) (Mode, error) {
	return buildConnect(cfg, logger), nil
}

func buildConnect(cfg *config.Config, logger *util.Logger) *ConnectMode {
	return &ConnectMode{
		Establisher: &transport.Establisher{
			Dialer:    buildDialer(cfg, logger),
			Timeout:   cfg.Timeout,
			NoDNS:     cfg.NoDNS,
			Tunnelled: cfg.TunnelEnabled,
			Logger:    logger,
		},
		Host:            cfg.Host,
		Port:            cfg.Port,
		Decoder:         cp437.NewDecoder(cfg.Table(), !cfg.LegacyEscapes),
		PollInterval:    cfg.PollInterval,
		ChunkSize:       cfg.ChunkSize,
		InputChunkSize:  cfg.InputChunkSize,
		DecodeCapacity:  cfg.DecodeCapacity,
		QuitByte:        cfg.QuitByte,
		HomeAfterClear:  cfg.HomeAfterClear,
		NoClear:         cfg.NoClear,
		NoRaw:           cfg.NoRaw,
		BellMacro:       relay.ExpandMacro(cfg.BellMacro),
		TranscriptPath:  cfg.LogFile,
		TranscriptPlain: cfg.LogPlain,
		Logger:          logger,
		Metrics:         metrics.New(),
	}
}

// buildDialer creates the right transport.Dialer for the given config.
func buildDialer(cfg *config.Config, logger *util.Logger) transport.Dialer {
	if cfg.TunnelEnabled {
		return transport.NewSSHDialer(&tunnel.SSHConfig{
			User:          cfg.TunnelUser,
			Host:          cfg.TunnelHost,
			Port:          cfg.TunnelPort,
			KeyPath:       cfg.SSHKeyPath,
			PromptPass:    cfg.SSHPassword,
			UseAgent:      cfg.UseSSHAgent,
			StrictHostKey: cfg.StrictHostKey,
			KnownHosts:    cfg.KnownHostsPath,
			ConnTimeout:   cfg.Timeout,
		}, logger)
	}
	return &transport.TCPDialer{Timeout: cfg.Timeout}
}
