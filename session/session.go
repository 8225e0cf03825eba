// Package session owns the host connection: the connect setup sequence,
// outbound submissions, and one-message-at-a-time inbound dispatch.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/jamescl604/MSFSVoiceAttackPlugin/connection"
	"github.com/jamescl604/MSFSVoiceAttackPlugin/datadef"
	"github.com/jamescl604/MSFSVoiceAttackPlugin/events"
	"github.com/jamescl604/MSFSVoiceAttackPlugin/messages"
	"github.com/jamescl604/MSFSVoiceAttackPlugin/metrics"
)

// State is the connection state of a Session.
type State int

const (
	StateDisconnected State = iota
	StateConnected
)

func (s State) String() string {
	if s == StateConnected {
		return "connected"
	}
	return "disconnected"
}

// Handlers receive inbound messages from PollOnce. Nil handlers are skipped.
// They run on the polling goroutine and must not call Disconnect directly.
type Handlers struct {
	OnOpen        func(messages.Open)
	OnData        func(messages.Data)
	OnSystemEvent func(messages.SystemEvent)
	OnException   func(messages.Exception)
	OnQuit        func()
}

// Options configures a Session.
type Options struct {
	ClientName     string
	ConnectTimeout time.Duration
	// EventRate limits TransmitClientEvent calls per second. Zero disables
	// the limit.
	EventRate  float64
	EventBurst int
	Logger     zerolog.Logger
	Metrics    *metrics.Metrics
}

// Session is safe for concurrent use. Connect and Disconnect are expected
// from the caller's goroutine and PollOnce from the receiver.
type Session struct {
	dialer  connection.Dialer
	store   *Store
	opts    Options
	logger  zerolog.Logger
	limiter *rate.Limiter

	// lifecycle serializes Connect and Disconnect; mu only guards the
	// fields below it.
	lifecycle sync.Mutex

	mu       sync.RWMutex
	conn     connection.Conn
	handlers Handlers
}

func New(dialer connection.Dialer, store *Store, opts Options) *Session {
	s := &Session{
		dialer: dialer,
		store:  store,
		opts:   opts,
		logger: opts.Logger.With().Str("component", "session").Logger(),
	}
	if opts.EventRate > 0 {
		burst := opts.EventBurst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.EventRate), burst)
	}
	return s
}

// SetHandlers replaces the inbound handlers.
func (s *Session) SetHandlers(h Handlers) {
	s.mu.Lock()
	s.handlers = h
	s.mu.Unlock()
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.conn != nil {
		return StateConnected
	}
	return StateDisconnected
}

// Connect opens the host session and runs the setup sequence. It is a no-op
// when already connected. On failure the session stays disconnected and
// the caller may retry.
func (s *Session) Connect(ctx context.Context) error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.State() == StateConnected {
		return nil
	}

	if s.opts.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.ConnectTimeout)
		defer cancel()
	}

	conn, err := s.dialer.Open(ctx, s.opts.ClientName)
	if err != nil {
		s.opts.Metrics.ConnectResult(false)
		s.logger.Error().Err(err).Str("clientName", s.opts.ClientName).Msg("Unable to connect to sim")
		return opError(ErrConnect, "open", err)
	}

	if err := s.setup(conn); err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			s.logger.Warn().Err(closeErr).Msg("Failed to close half-open connection")
		}
		s.opts.Metrics.ConnectResult(false)
		s.logger.Error().Err(err).Msg("Connection setup failed")
		return err
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	s.opts.Metrics.ConnectResult(true)
	s.logger.Info().Str("clientName", s.opts.ClientName).Msg("Connected to sim")
	return nil
}

// setup maps every catalog event into the default group, subscribes the
// system events and raises the group priority.
func (s *Session) setup(conn connection.Conn) error {
	for _, id := range events.All() {
		if err := conn.MapClientEventToSimEvent(id, events.Name(id)); err != nil {
			return opError(ErrConnect, "map "+events.Name(id), err)
		}
		if err := conn.AddClientEventToNotificationGroup(connection.GroupDefault, id, false); err != nil {
			return opError(ErrConnect, "group "+events.Name(id), err)
		}
	}

	for _, sys := range events.SystemEvents() {
		if err := conn.SubscribeToSystemEvent(sys.ID, sys.Name); err != nil {
			return opError(ErrConnect, "subscribe "+sys.Name, err)
		}
	}

	if err := conn.SetNotificationGroupPriority(connection.GroupDefault, connection.PriorityHighest); err != nil {
		return opError(ErrConnect, "set group priority", err)
	}
	return nil
}

// Disconnect unsubscribes the system events and releases the connection.
// It always ends disconnected; step failures are logged and joined into the
// returned error. The receiver must already be stopped.
func (s *Session) Disconnect() error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn == nil {
		return nil
	}

	var errs []error
	for _, sys := range events.SystemEvents() {
		if err := conn.UnsubscribeFromSystemEvent(sys.ID); err != nil {
			s.logger.Warn().Err(err).Str("event", sys.Name).Msg("Failed to unsubscribe system event")
			errs = append(errs, err)
		}
	}
	if err := conn.Close(); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to close connection")
		errs = append(errs, err)
	}

	s.store.Reset()
	s.opts.Metrics.Disconnected()
	s.logger.Info().Msg("Connection to sim closed")
	return errors.Join(errs...)
}

func (s *Session) current() (connection.Conn, Handlers) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conn, s.handlers
}

// RegisterDefinition adds every field of layout to the host definition in
// order, then binds the definition to its packed size.
func (s *Session) RegisterDefinition(layout datadef.Layout) error {
	conn, _ := s.current()
	if conn == nil {
		return opError(ErrNotConnected, "register definition", nil)
	}

	for _, f := range layout.Fields {
		if err := conn.AddToDataDefinition(layout.ID, f); err != nil {
			return opError(ErrTransmit, "add "+f.Name, err)
		}
	}
	if err := conn.RegisterDataDefineStruct(layout.ID, layout.Size()); err != nil {
		return opError(ErrTransmit, "register "+layout.ID.String(), err)
	}

	s.logger.Debug().
		Stringer("definition", layout.ID).
		Int("fields", len(layout.Fields)).
		Int("size", layout.Size()).
		Msg("Data definition registered")
	return nil
}

// SubmitEvent transmits an encoded client event to the user aircraft.
func (s *Session) SubmitEvent(id events.ID, encoded uint32) error {
	conn, _ := s.current()
	if conn == nil {
		return opError(ErrNotConnected, "transmit "+id.String(), nil)
	}
	if s.limiter != nil && !s.limiter.Allow() {
		s.logger.Warn().Stringer("event", id).Msg("Event dropped by rate limit")
		return opError(ErrRateLimited, "transmit "+id.String(), nil)
	}

	err := conn.TransmitClientEvent(connection.ObjectIDUser, id, encoded, connection.GroupDefault, connection.EventFlagGroupIDIsPriority)
	if err != nil {
		return opError(ErrTransmit, "transmit "+id.String(), err)
	}

	s.opts.Metrics.EventTransmitted(id.String())
	s.logger.Debug().Stringer("event", id).Uint32("data", encoded).Msg("Event sent")
	return nil
}

// SubmitDataRequest asks the host for one snapshot of def on the user
// aircraft. req is marked pending before the call goes out, so an answer
// that arrives before the call returns still clears it. A rejected call
// withdraws the mark.
func (s *Session) SubmitDataRequest(req datadef.RequestID, def datadef.DefinitionID) error {
	conn, _ := s.current()
	if conn == nil {
		return opError(ErrNotConnected, "request "+req.String(), nil)
	}

	s.store.MarkPending(req)
	if err := conn.RequestDataOnSimObjectType(req, def, 0, connection.SimObjectTypeUser); err != nil {
		s.store.Unmark(req)
		return opError(ErrTransmit, "request "+req.String(), err)
	}

	s.opts.Metrics.DataRequested(req.String())
	s.logger.Debug().Stringer("request", req).Stringer("definition", def).Msg("Request sent")
	return nil
}

// SetText shows a white text banner in the sim for the given seconds.
func (s *Session) SetText(text string, seconds float64) error {
	conn, _ := s.current()
	if conn == nil {
		return opError(ErrNotConnected, "text", nil)
	}
	if err := conn.Text(connection.TextTypePrintWhite, seconds, text); err != nil {
		return opError(ErrTransmit, "text", err)
	}
	return nil
}

// PollOnce receives at most one inbound message and dispatches it. It never
// blocks waiting for the host.
func (s *Session) PollOnce() error {
	conn, h := s.current()
	if conn == nil {
		return opError(ErrNotConnected, "poll", nil)
	}

	msg, err := conn.ReceiveMessage()
	if err != nil {
		return err
	}
	if msg == nil {
		return nil
	}

	s.opts.Metrics.HostMessage(msg.Kind())
	switch m := msg.(type) {
	case messages.Open:
		s.logger.Info().Str("application", m.ApplicationName).Str("version", m.Version).Msg("Sim session open")
		if h.OnOpen != nil {
			h.OnOpen(m)
		}
	case messages.Data:
		if h.OnData != nil {
			h.OnData(m)
		}
	case messages.SystemEvent:
		if h.OnSystemEvent != nil {
			h.OnSystemEvent(m)
		}
	case messages.Exception:
		s.opts.Metrics.HostException(messages.ExceptionName(m.Code))
		if h.OnException != nil {
			h.OnException(m)
		}
	case messages.Quit:
		s.logger.Info().Msg("Sim has exited")
		if h.OnQuit != nil {
			h.OnQuit()
		}
	}
	return nil
}
