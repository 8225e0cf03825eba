package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jamescl604/MSFSVoiceAttackPlugin/agent"
	"github.com/jamescl604/MSFSVoiceAttackPlugin/config"
	"github.com/jamescl604/MSFSVoiceAttackPlugin/datadef"
	"github.com/jamescl604/MSFSVoiceAttackPlugin/events"
	"github.com/jamescl604/MSFSVoiceAttackPlugin/protocol"
)

func newRunCmd(flags *config.Flags) *cobra.Command {
	var interval string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Connect, trigger the demo events and stream PlaneState until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rt, err := setup(flags, agent.Hooks{})
			if err != nil {
				return err
			}
			if rt.cfg.MetricsAddr != "" {
				if _, err := serveMetrics(ctx, rt); err != nil {
					return err
				}
			}
			return runAgent(ctx, rt, protocol.ParseDuration(interval, time.Second))
		},
	}
	cmd.Flags().StringVar(&interval, "interval", "1s", "PlaneState request interval")
	return cmd
}

// runAgent keeps the agent connected and requests PlaneState every
// interval. A lost sim connection is retried on the next tick. It returns
// after a graceful disconnect once ctx is done.
func runAgent(ctx context.Context, rt *app, interval time.Duration) error {
	a := rt.agent
	logger := rt.logger

	logger.Info().Str("bridgeURL", rt.cfg.BridgeURL).Dur("interval", interval).Msg("Agent starting")

	bringUp := func() {
		if err := a.Connect(ctx); err != nil {
			logger.Warn().Err(err).Msg("Sim not reachable, will retry")
			return
		}
		if err := a.AddDataDefinitions(); err != nil {
			logger.Error().Err(err).Msg("Failed to register data definitions")
			_ = a.Disconnect()
			return
		}
		a.EnableMessagePolling()

		for _, ev := range []struct {
			id   events.ID
			data string
		}{
			{events.NAV1RadioSet, "174.1"},
			{events.StrobesToggle, ""},
		} {
			if err := a.TriggerEvent(ev.id, ev.data); err != nil {
				logger.Warn().Err(err).Stringer("event", ev.id).Msg("Failed to trigger event")
			}
		}
	}

	bringUp()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Received signal, initiating graceful shutdown")
			if err := a.Disconnect(); err != nil {
				logger.Warn().Err(err).Msg("Disconnect reported errors")
			}
			logger.Info().Msg("Graceful shutdown complete")
			return nil

		case <-ticker.C:
			if !a.Connected() {
				bringUp()
				continue
			}
			logPlaneState(rt)
			if a.RequestPending(datadef.RequestPlaneState) {
				logger.Debug().Msg("PlaneState request still pending")
				continue
			}
			if err := a.RequestData(datadef.RequestPlaneState, datadef.DefinitionPlaneState); err != nil {
				logger.Warn().Err(err).Msg("PlaneState request failed")
			}
		}
	}
}

func logPlaneState(rt *app) {
	ps, err := rt.agent.PlaneState()
	if err != nil {
		return
	}
	rt.logger.Info().
		Str("title", ps.Title).
		Int32("airspeed", ps.AirspeedIndicated).
		Int32("altitude", ps.PlaneAltitude).
		Int32("heading", ps.HeadingIndicator).
		Float64("latitude", ps.PlaneLatitude).
		Float64("longitude", ps.PlaneLongitude).
		Bool("onGround", ps.SimOnGround).
		Msg("Plane state")
}
