package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jamescl604/MSFSVoiceAttackPlugin/agent"
	"github.com/jamescl604/MSFSVoiceAttackPlugin/config"
	"github.com/jamescl604/MSFSVoiceAttackPlugin/connection"
	"github.com/jamescl604/MSFSVoiceAttackPlugin/metrics"
	"github.com/jamescl604/MSFSVoiceAttackPlugin/protocol"
)

// newDialer builds the host dialer for a resolved config.
var newDialer = func(cfg *config.Config, token string, logger zerolog.Logger) connection.Dialer {
	return connection.NewBridgeDialer(connection.BridgeOptions{
		URL:          cfg.BridgeURL,
		Token:        token,
		InboxSize:    cfg.InboxSize,
		WriteTimeout: cfg.ConnectTimeout,
		Logger:       logger,
	}, nil)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &config.Flags{}

	root := &cobra.Command{
		Use:          "msfs-agent",
		Short:        "Drive Microsoft Flight Simulator through a SimConnect bridge",
		SilenceUsage: true,
	}

	f := root.PersistentFlags()
	f.StringVar(&flags.ConfigFile, "config", "", "YAML config file (env: MSFS_AGENT_CONFIG)")
	f.StringVar(&flags.BridgeURL, "bridge-url", "", "WebSocket URL of the SimConnect bridge (env: MSFS_AGENT_BRIDGE_URL)")
	f.StringVar(&flags.TokenFile, "token-file", "", "Path to bridge token file (env: MSFS_AGENT_TOKEN_FILE)")
	f.StringVar(&flags.Token, "token", "", "Bridge token (env: MSFS_AGENT_TOKEN)")
	f.StringVar(&flags.ClientName, "client-name", "", "Client name announced to the sim (env: MSFS_AGENT_CLIENT_NAME)")
	f.StringVar(&flags.ConnectTimeout, "connect-timeout", "", "Connect timeout (env: MSFS_AGENT_CONNECT_TIMEOUT)")
	f.StringVar(&flags.PollInterval, "poll-interval", "", "Message polling interval (env: MSFS_AGENT_POLL_INTERVAL)")
	f.StringVar(&flags.WaitInterval, "wait-interval", "", "Pending request check interval (env: MSFS_AGENT_WAIT_INTERVAL)")
	f.StringVar(&flags.RequestTimeout, "request-timeout", "", "How long to wait for requested data (env: MSFS_AGENT_REQUEST_TIMEOUT)")
	f.StringVar(&flags.EventRate, "event-rate", "", "Max events per second, 0 = unlimited (env: MSFS_AGENT_EVENT_RATE)")
	f.StringVar(&flags.EventBurst, "event-burst", "", "Event rate burst (env: MSFS_AGENT_EVENT_BURST)")
	f.StringVar(&flags.InboxSize, "inbox-size", "", "Inbound message buffer size (env: MSFS_AGENT_INBOX_SIZE)")
	f.StringVar(&flags.MetricsAddr, "metrics-addr", "", "Address for /metrics and /health, empty = disabled (env: MSFS_AGENT_METRICS_ADDR)")
	f.StringVar(&flags.LogLevel, "log-level", "", "Log level: DEBUG, INFO, WARN, ERROR (env: MSFS_AGENT_LOG_LEVEL)")
	f.StringVar(&flags.LogFormat, "log-format", "", "Log format: json, console (env: MSFS_AGENT_LOG_FORMAT)")

	root.AddCommand(
		newRunCmd(flags),
		newTriggerCmd(flags),
		newStateCmd(flags),
		newEventsCmd(),
	)
	return root
}

// app is everything a command needs once configuration is resolved.
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	registry *prometheus.Registry
	agent    *agent.Agent
}

func setup(flags *config.Flags, hooks agent.Hooks) (*app, error) {
	cfg, err := config.Load(*flags)
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	logger := protocol.InitLogger(cfg.LogLevel, cfg.LogFormat)

	token, err := cfg.LoadToken()
	if err != nil {
		logger.Error().Err(err).Str("tokenFile", cfg.TokenFile).Msg("Failed to load token")
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(cfg.ClientName, reg)

	a := agent.New(newDialer(cfg, token, logger), agent.Options{
		ClientName:     cfg.ClientName,
		ConnectTimeout: cfg.ConnectTimeout,
		PollInterval:   cfg.PollInterval,
		WaitInterval:   cfg.WaitInterval,
		EventRate:      cfg.EventRate,
		EventBurst:     cfg.EventBurst,
		Logger:         logger,
		Metrics:        m,
		Hooks:          hooks,
	})

	logger.Debug().
		Str("bridgeURL", cfg.BridgeURL).
		Str("clientName", cfg.ClientName).
		Str("configFile", cfg.ConfigFile).
		Msg("Configuration loaded")

	return &app{cfg: cfg, logger: logger, registry: reg, agent: a}, nil
}

// serveMetrics exposes /metrics and /health until ctx is done. It returns
// the bound address.
func serveMetrics(ctx context.Context, rt *app) (string, error) {
	ln, err := net.Listen("tcp", rt.cfg.MetricsAddr)
	if err != nil {
		return "", fmt.Errorf("listen %s: %w", rt.cfg.MetricsAddr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.MetricsHandler(rt.registry))
	mux.HandleFunc("/health", metrics.HealthHandler(rt.agent))

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rt.logger.Error().Err(err).Msg("Metrics server failed")
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			rt.logger.Warn().Err(err).Msg("Metrics server shutdown failed")
		}
	}()

	addr := ln.Addr().String()
	rt.logger.Info().Str("addr", addr).Msg("Metrics server listening")
	return addr, nil
}
