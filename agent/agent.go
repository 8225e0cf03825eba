// Package agent is the public operation surface used by front ends. It
// composes the session, the receiver and the data definition registry.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jamescl604/MSFSVoiceAttackPlugin/connection"
	"github.com/jamescl604/MSFSVoiceAttackPlugin/datadef"
	"github.com/jamescl604/MSFSVoiceAttackPlugin/events"
	"github.com/jamescl604/MSFSVoiceAttackPlugin/messages"
	"github.com/jamescl604/MSFSVoiceAttackPlugin/metrics"
	"github.com/jamescl604/MSFSVoiceAttackPlugin/receiver"
	"github.com/jamescl604/MSFSVoiceAttackPlugin/session"
)

var (
	// ErrEncodingAbort means the event data could not be encoded and nothing
	// was sent.
	ErrEncodingAbort = errors.New("agent: event data could not be encoded")
	ErrUnknownEvent  = errors.New("agent: unknown event")
	ErrNoData        = errors.New("agent: no data received")
)

// DefaultWaitInterval is how often WaitForData checks the pending flag.
const DefaultWaitInterval = 10 * time.Millisecond

// Hooks are called on the receiver goroutine when the sim reports a state
// change. Nil hooks are skipped. A hook must not call Disconnect or
// DisableMessagePolling: both join the receiver goroutine and would deadlock.
type Hooks struct {
	OnSimStart func()
	OnSimStop  func()
	OnPause    func(paused bool)
}

// Options configures an Agent
type Options struct {
	ClientName     string
	ConnectTimeout time.Duration
	PollInterval   time.Duration
	WaitInterval   time.Duration
	EventRate      float64
	EventBurst     int
	Logger         zerolog.Logger
	Metrics        *metrics.Metrics
	Hooks          Hooks
}

type Agent struct {
	session  *session.Session
	store    *session.Store
	registry *datadef.Registry
	receiver *receiver.Receiver
	hooks    Hooks
	metrics  *metrics.Metrics
	logger   zerolog.Logger

	waitInterval time.Duration
	startTime    time.Time

	// serializes Connect and Disconnect
	lifecycle sync.Mutex
}

// New creates a disconnected agent that opens its host session through
// dialer.
func New(dialer connection.Dialer, opts Options) *Agent {
	if opts.WaitInterval <= 0 {
		opts.WaitInterval = DefaultWaitInterval
	}

	store := session.NewStore()
	s := session.New(dialer, store, session.Options{
		ClientName:     opts.ClientName,
		ConnectTimeout: opts.ConnectTimeout,
		EventRate:      opts.EventRate,
		EventBurst:     opts.EventBurst,
		Logger:         opts.Logger,
		Metrics:        opts.Metrics,
	})

	a := &Agent{
		session:      s,
		store:        store,
		registry:     datadef.NewRegistry(),
		hooks:        opts.Hooks,
		metrics:      opts.Metrics,
		logger:       opts.Logger.With().Str("component", "agent").Logger(),
		waitInterval: opts.WaitInterval,
		startTime:    time.Now(),
	}
	a.receiver = receiver.New(s, receiver.Config{
		Interval: opts.PollInterval,
		Metrics:  opts.Metrics,
	}, opts.Logger)

	s.SetHandlers(session.Handlers{
		OnData:        a.handleData,
		OnSystemEvent: a.handleSystemEvent,
		OnException:   a.handleException,
		OnQuit:        a.handleQuit,
	})
	return a
}

// Connect opens the host session. Failures leave the agent disconnected
// and may be retried.
func (a *Agent) Connect(ctx context.Context) error {
	a.lifecycle.Lock()
	defer a.lifecycle.Unlock()
	return a.session.Connect(ctx)
}

// Disconnect stops polling, waits for the receiver to exit and releases the
// host session. It is safe to call when already disconnected.
func (a *Agent) Disconnect() error {
	a.lifecycle.Lock()
	defer a.lifecycle.Unlock()

	a.receiver.Stop()
	return a.session.Disconnect()
}

func (a *Agent) Connected() bool {
	return a.session.State() == session.StateConnected
}

// Polling reports whether background message polling is on.
func (a *Agent) Polling() bool {
	return a.receiver.Running()
}

func (a *Agent) StartTime() time.Time {
	return a.startTime
}

// AddDataDefinitions registers the built-in PlaneState layout locally and
// with the host.
func (a *Agent) AddDataDefinitions() error {
	layout := datadef.PlaneStateLayout()
	a.registry.Register(layout)
	return a.session.RegisterDefinition(layout)
}

func (a *Agent) EnableMessagePolling() {
	if !a.Connected() {
		a.logger.Warn().Msg("Polling enabled while disconnected")
	}
	a.receiver.Start()
}

// DisableMessagePolling stops the receiver and returns once it has exited.
func (a *Agent) DisableMessagePolling() {
	a.receiver.Stop()
}

// CheckForMessage receives and dispatches at most one pending host message.
// It is the manual alternative to background polling.
func (a *Agent) CheckForMessage() error {
	return a.session.PollOnce()
}

// RequestData asks the host for one snapshot of def. RequestPending(req)
// stays true until the answer has been processed.
func (a *Agent) RequestData(req datadef.RequestID, def datadef.DefinitionID) error {
	return a.session.SubmitDataRequest(req, def)
}

// TriggerEvent encodes data according to the event's policy and transmits
// it. Blank data means "0".
func (a *Agent) TriggerEvent(id events.ID, data string) error {
	if !id.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownEvent, id)
	}
	if strings.TrimSpace(data) == "" {
		data = "0"
	}

	encoded, err := events.Encode(id, data)
	if err != nil {
		policy := events.PolicyOf(id)
		a.metrics.EncodingAborted(policy.String())
		a.logger.Warn().
			Err(err).
			Stringer("event", id).
			Str("data", data).
			Stringer("policy", policy).
			Msg("Event not sent")
		return fmt.Errorf("%w: %s %q: %w", ErrEncodingAbort, id, data, err)
	}
	return a.session.SubmitEvent(id, encoded)
}

// SetText shows text in the sim for the given number of seconds.
func (a *Agent) SetText(text string, seconds float64) error {
	return a.session.SetText(text, seconds)
}

func (a *Agent) RequestPending(req datadef.RequestID) bool {
	return a.store.Pending(req)
}

// LatestSnapshot returns the most recent snapshot for def, or nil.
func (a *Agent) LatestSnapshot(def datadef.DefinitionID) *datadef.Snapshot {
	return a.store.Snapshot(def)
}

// PlaneState returns the typed view of the latest PlaneState snapshot.
func (a *Agent) PlaneState() (datadef.PlaneState, error) {
	snap := a.store.Snapshot(datadef.DefinitionPlaneState)
	if snap == nil {
		return datadef.PlaneState{}, ErrNoData
	}
	return datadef.PlaneStateFromSnapshot(snap)
}

// WaitForData blocks until req is no longer pending or ctx is done. When
// background polling is off it polls on the caller's goroutine.
func (a *Agent) WaitForData(ctx context.Context, req datadef.RequestID) error {
	ticker := time.NewTicker(a.waitInterval)
	defer ticker.Stop()

	for {
		if !a.Connected() {
			return fmt.Errorf("wait %s: %w", req, session.ErrNotConnected)
		}
		if !a.store.Pending(req) {
			return nil
		}
		if !a.receiver.Running() {
			if err := a.session.PollOnce(); err != nil {
				return err
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (a *Agent) handleData(m messages.Data) {
	snap, err := a.registry.Decode(m.DefinitionID, m.Payload)
	if err != nil {
		a.logger.Error().
			Err(err).
			Stringer("request", m.RequestID).
			Stringer("definition", m.DefinitionID).
			Int("bytes", len(m.Payload)).
			Msg("Failed to decode data")
	}
	a.store.Resolve(m.RequestID, snap)
}

func (a *Agent) handleSystemEvent(m messages.SystemEvent) {
	switch events.ID(m.Event) {
	case events.SimStart:
		a.logger.Info().Msg("Sim running")
		if a.hooks.OnSimStart != nil {
			a.hooks.OnSimStart()
		}
	case events.SimStop:
		a.logger.Info().Msg("Sim stopped")
		if a.hooks.OnSimStop != nil {
			a.hooks.OnSimStop()
		}
	case events.Pause:
		paused := m.Value != 0
		a.logger.Info().Bool("paused", paused).Msg("Sim pause state changed")
		if a.hooks.OnPause != nil {
			a.hooks.OnPause(paused)
		}
	default:
		a.logger.Debug().Uint32("event", m.Event).Msg("Ignoring unsubscribed event")
	}
}

func (a *Agent) handleException(m messages.Exception) {
	e := a.logger.Warn().
		Str("code", messages.ExceptionName(m.Code)).
		Uint32("sendID", m.SendID)
	if m.HasIndex() {
		e = e.Uint32("index", m.Index)
	}
	e.Msg("Host exception")
}

// handleQuit runs on the receiver goroutine, which Disconnect joins.
func (a *Agent) handleQuit() {
	go func() {
		if err := a.Disconnect(); err != nil {
			a.logger.Debug().Err(err).Msg("Disconnect after sim exit reported errors")
		}
	}()
}
