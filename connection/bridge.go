package connection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/jamescl604/MSFSVoiceAttackPlugin/datadef"
	"github.com/jamescl604/MSFSVoiceAttackPlugin/events"
	"github.com/jamescl604/MSFSVoiceAttackPlugin/messages"
	"github.com/jamescl604/MSFSVoiceAttackPlugin/protocol"
)

var (
	// ErrClosed is returned by calls made after Close.
	ErrClosed = errors.New("connection: closed")
	// ErrRejected means the bridge refused the open handshake.
	ErrRejected = errors.New("connection: bridge rejected open")
)

const defaultInboxSize = 64

// BridgeOptions configures the websocket bridge transport
type BridgeOptions struct {
	URL          string
	Token        string
	InboxSize    int
	WriteTimeout time.Duration
	Logger       zerolog.Logger
}

// BridgeDialer opens host sessions through a SimConnect websocket bridge
type BridgeDialer struct {
	opts   BridgeOptions
	dialer protocol.WebSocketDialer
}

// NewBridgeDialer creates a dialer. A nil ws dialer uses gorilla/websocket.
func NewBridgeDialer(opts BridgeOptions, ws protocol.WebSocketDialer) *BridgeDialer {
	if ws == nil {
		ws = &protocol.DefaultWebSocketDialer{}
	}
	if opts.InboxSize <= 0 {
		opts.InboxSize = defaultInboxSize
	}
	return &BridgeDialer{opts: opts, dialer: ws}
}

// Open dials the bridge and performs the open handshake. ctx bounds the
// whole handshake.
func (d *BridgeDialer) Open(ctx context.Context, clientName string) (Conn, error) {
	ws, err := d.connect(ctx, clientName)
	if err != nil {
		return nil, err
	}

	// Reads have no context support; closing the socket unblocks them.
	stop := context.AfterFunc(ctx, func() { ws.Close() })
	defer stop()

	if deadline, ok := ctx.Deadline(); ok {
		ws.SetWriteDeadline(deadline)
		ws.SetReadDeadline(deadline)
	}

	sessionID := uuid.NewString()
	open := messages.Call{
		Type:       messages.CallOpen,
		SendID:     1,
		ClientName: clientName,
		SessionID:  sessionID,
	}
	if err := ws.WriteJSON(open); err != nil {
		ws.Close()
		return nil, fmt.Errorf("send open: %w", err)
	}

	var reply messages.Envelope
	if err := ws.ReadJSON(&reply); err != nil {
		ws.Close()
		if ctx.Err() != nil {
			return nil, fmt.Errorf("read open reply: %w", ctx.Err())
		}
		return nil, fmt.Errorf("read open reply: %w", err)
	}
	if reply.Error != "" {
		ws.Close()
		return nil, fmt.Errorf("%w: %s", ErrRejected, reply.Error)
	}
	if reply.Type != "open" {
		ws.Close()
		return nil, fmt.Errorf("%w: unexpected reply type %q", ErrRejected, reply.Type)
	}

	if !stop() {
		ws.Close()
		return nil, ctx.Err()
	}
	ws.SetWriteDeadline(time.Time{})
	ws.SetReadDeadline(time.Time{})

	logger := d.opts.Logger.With().
		Str("component", "bridge").
		Str("sessionID", sessionID).
		Logger()

	if gorillaWS, ok := ws.(*protocol.GorillaWebSocketConn); ok {
		gorillaWS.Conn.SetPongHandler(func(string) error {
			logger.Debug().Msg("Received pong from bridge")
			return nil
		})
	}

	c := newBridgeConn(ws, d.opts, logger)
	c.inbox <- messages.Open{ApplicationName: reply.Application, Version: reply.Version}
	go c.run()

	logger.Info().
		Str("application", reply.Application).
		Str("version", reply.Version).
		Msg("Bridge session opened")
	return c, nil
}

func (d *BridgeDialer) connect(ctx context.Context, clientName string) (protocol.WebSocketConn, error) {
	headers := http.Header{}
	if d.opts.Token != "" {
		headers.Add("Authorization", "Bearer "+d.opts.Token)
	}
	headers.Set("X-Client-Name", clientName)

	ws, resp, err := d.dialer.DialContext(ctx, d.opts.URL, headers)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			body, readErr := io.ReadAll(resp.Body)
			if readErr == nil && len(body) > 0 {
				return nil, fmt.Errorf("%w: %s %s", err, resp.Status, strings.TrimSpace(string(body)))
			}
			return nil, fmt.Errorf("%w: %s", err, resp.Status)
		}
		return nil, err
	}
	return ws, nil
}

var _ Conn = (*BridgeConn)(nil)

// BridgeConn is a Conn backed by one websocket. A single reader goroutine
// feeds the inbox; ReceiveMessage drains it without blocking.
type BridgeConn struct {
	conn         protocol.WebSocketConn
	writeLock    sync.Mutex
	writeTimeout time.Duration
	sendID       atomic.Uint32
	logger       zerolog.Logger
	metrics      *ConnectionMetrics

	inbox chan messages.Message

	closeOnce sync.Once
	closing   atomic.Bool
	closed    chan struct{}
	done      chan struct{}
}

func newBridgeConn(ws protocol.WebSocketConn, opts BridgeOptions, logger zerolog.Logger) *BridgeConn {
	inboxSize := opts.InboxSize
	if inboxSize <= 0 {
		inboxSize = defaultInboxSize
	}
	c := &BridgeConn{
		conn:         ws,
		writeTimeout: opts.WriteTimeout,
		logger:       logger,
		metrics:      NewConnectionMetrics(),
		inbox:        make(chan messages.Message, inboxSize),
		closed:       make(chan struct{}),
		done:         make(chan struct{}),
	}
	// send_id 1 was the open call.
	c.sendID.Store(1)
	return c
}

// run reads until the socket fails. A read failure is reported to the
// session as Quit.
func (c *BridgeConn) run() {
	defer close(c.done)

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if c.closing.Load() {
				return
			}
			c.logger.Error().Err(err).Msg("WebSocket read error")
			c.deliver(messages.Quit{})
			return
		}

		var msg messages.Message
		switch messageType {
		case websocket.BinaryMessage:
			frame, err := protocol.DecodeFrame(data)
			if err != nil {
				c.metrics.incrementDecodeErrors()
				c.logger.Error().Err(err).Msg("Failed to decode binary frame")
				continue
			}
			c.metrics.incrementMessageReceived(protocol.FrameTypeToString(frame.Type))
			msg = messages.Data{
				RequestID:    datadef.RequestID(frame.RequestID),
				DefinitionID: datadef.DefinitionID(frame.DefineID),
				Payload:      frame.Payload,
			}
		case websocket.TextMessage:
			var env messages.Envelope
			if err := json.Unmarshal(data, &env); err != nil {
				c.metrics.incrementDecodeErrors()
				c.logger.Error().Err(err).Msg("Failed to decode bridge message")
				continue
			}
			m, ok := env.Message()
			if !ok {
				c.metrics.incrementDecodeErrors()
				c.logger.Warn().Str("type", env.Type).Msg("Ignoring unknown bridge message")
				continue
			}
			c.metrics.incrementMessageReceived(m.Kind())
			msg = m
		default:
			continue
		}

		if !c.deliver(msg) {
			return
		}
		if _, quit := msg.(messages.Quit); quit {
			return
		}
	}
}

// deliver blocks until the inbox has room or the conn is closed.
func (c *BridgeConn) deliver(msg messages.Message) bool {
	select {
	case c.inbox <- msg:
		return true
	case <-c.closed:
		return false
	}
}

// ReceiveMessage returns the next queued message, or nil if none is waiting.
func (c *BridgeConn) ReceiveMessage() (messages.Message, error) {
	select {
	case msg := <-c.inbox:
		return msg, nil
	default:
	}
	select {
	case <-c.closed:
		return nil, ErrClosed
	default:
		return nil, nil
	}
}

func (c *BridgeConn) call(msg messages.Call) error {
	if c.closing.Load() {
		return ErrClosed
	}
	msg.SendID = c.sendID.Add(1)

	c.writeLock.Lock()
	if c.writeTimeout > 0 {
		c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	err := c.conn.WriteJSON(msg)
	c.writeLock.Unlock()

	if err != nil {
		c.metrics.incrementWriteErrors()
		return fmt.Errorf("%s: %w", msg.Type, err)
	}

	c.metrics.incrementCallSent(string(msg.Type))
	c.logger.Debug().Str("call", string(msg.Type)).Uint32("sendID", msg.SendID).Msg("Sent call")
	return nil
}

func (c *BridgeConn) MapClientEventToSimEvent(id events.ID, name string) error {
	return c.call(messages.Call{
		Type:      messages.CallMapClientEvent,
		EventID:   messages.Uint32(uint32(id)),
		EventName: name,
	})
}

func (c *BridgeConn) AddClientEventToNotificationGroup(group GroupID, id events.ID, maskable bool) error {
	return c.call(messages.Call{
		Type:     messages.CallAddToNotificationGroup,
		GroupID:  messages.Uint32(uint32(group)),
		EventID:  messages.Uint32(uint32(id)),
		Maskable: messages.Bool(maskable),
	})
}

func (c *BridgeConn) SetNotificationGroupPriority(group GroupID, priority uint32) error {
	return c.call(messages.Call{
		Type:     messages.CallSetGroupPriority,
		GroupID:  messages.Uint32(uint32(group)),
		Priority: messages.Uint32(priority),
	})
}

func (c *BridgeConn) SubscribeToSystemEvent(id events.ID, name string) error {
	return c.call(messages.Call{
		Type:      messages.CallSubscribeSystemEvent,
		EventID:   messages.Uint32(uint32(id)),
		EventName: name,
	})
}

func (c *BridgeConn) UnsubscribeFromSystemEvent(id events.ID) error {
	return c.call(messages.Call{
		Type:    messages.CallUnsubscribeSystemEvent,
		EventID: messages.Uint32(uint32(id)),
	})
}

func (c *BridgeConn) AddToDataDefinition(def datadef.DefinitionID, field datadef.FieldSpec) error {
	return c.call(messages.Call{
		Type:     messages.CallAddToDataDefinition,
		DefineID: messages.Uint32(uint32(def)),
		Datum:    field.Name,
		Unit:     field.Unit,
		DataType: field.Type.HostType().String(),
	})
}

func (c *BridgeConn) RegisterDataDefineStruct(def datadef.DefinitionID, size int) error {
	return c.call(messages.Call{
		Type:     messages.CallRegisterDataDefineStruct,
		DefineID: messages.Uint32(uint32(def)),
		Size:     messages.Uint32(uint32(size)),
	})
}

func (c *BridgeConn) RequestDataOnSimObjectType(req datadef.RequestID, def datadef.DefinitionID, radius uint32, objectType uint32) error {
	return c.call(messages.Call{
		Type:       messages.CallRequestDataOnSimObjectType,
		RequestID:  messages.Uint32(uint32(req)),
		DefineID:   messages.Uint32(uint32(def)),
		Radius:     messages.Uint32(radius),
		ObjectType: messages.Uint32(objectType),
	})
}

func (c *BridgeConn) TransmitClientEvent(objectID uint32, id events.ID, data uint32, group GroupID, flags uint32) error {
	return c.call(messages.Call{
		Type:     messages.CallTransmitClientEvent,
		ObjectID: messages.Uint32(objectID),
		EventID:  messages.Uint32(uint32(id)),
		Data:     messages.Uint32(data),
		GroupID:  messages.Uint32(uint32(group)),
		Flags:    messages.Uint32(flags),
	})
}

func (c *BridgeConn) Text(textType uint32, seconds float64, text string) error {
	return c.call(messages.Call{
		Type:     messages.CallText,
		TextType: messages.Uint32(textType),
		Seconds:  messages.Float64(seconds),
		Text:     text,
	})
}

// Close sends a close call, shuts the socket and waits for the reader to
// exit. It must not be called from the reader.
func (c *BridgeConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		if sendErr := c.call(messages.Call{Type: messages.CallClose}); sendErr != nil {
			c.logger.Debug().Err(sendErr).Msg("Failed to send close call")
		}
		c.closing.Store(true)

		c.writeLock.Lock()
		c.conn.SetWriteDeadline(time.Now().Add(time.Second))
		c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeLock.Unlock()

		close(c.closed)
		err = c.conn.Close()
		<-c.done

		stats := c.metrics.Snapshot()
		c.logger.Info().
			Interface("callsSent", stats.CallsSent).
			Interface("messagesReceived", stats.MessagesReceived).
			Int64("writeErrors", stats.WriteErrors).
			Int64("decodeErrors", stats.DecodeErrors).
			Dur("uptime", stats.Uptime).
			Msg("Bridge session closed")
	})
	return err
}

// Stats returns the per-connection counters.
func (c *BridgeConn) Stats() ConnectionStats {
	return c.metrics.Snapshot()
}
