package connection

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jamescl604/MSFSVoiceAttackPlugin/datadef"
	"github.com/jamescl604/MSFSVoiceAttackPlugin/events"
	"github.com/jamescl604/MSFSVoiceAttackPlugin/messages"
	"github.com/jamescl604/MSFSVoiceAttackPlugin/protocol"
)

// fakeBridge is a minimal SimConnect bridge served over httptest
type fakeBridge struct {
	upgrader websocket.Upgrader
	reject   string
	headers  chan http.Header
	calls    chan messages.Call
	conns    chan *websocket.Conn
	exited   chan struct{}
}

func newFakeBridge() *fakeBridge {
	return &fakeBridge{
		headers: make(chan http.Header, 1),
		calls:   make(chan messages.Call, 128),
		conns:   make(chan *websocket.Conn, 1),
		exited:  make(chan struct{}),
	}
}

func (b *fakeBridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer close(b.exited)
	b.headers <- r.Header.Clone()

	ws, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer ws.Close()

	var open messages.Call
	if err := ws.ReadJSON(&open); err != nil {
		return
	}
	b.calls <- open

	if b.reject != "" {
		ws.WriteJSON(map[string]string{"error": b.reject})
		return
	}
	ws.WriteJSON(map[string]string{"type": "open", "application": "KittyHawk", "version": "11.0"})
	b.conns <- ws

	for {
		var c messages.Call
		if err := ws.ReadJSON(&c); err != nil {
			return
		}
		b.calls <- c
	}
}

func (b *fakeBridge) nextCall(t *testing.T) messages.Call {
	t.Helper()
	select {
	case c := <-b.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for bridge call")
		return messages.Call{}
	}
}

func startBridge(t *testing.T, b *fakeBridge) string {
	t.Helper()
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func openBridge(t *testing.T, url string) *BridgeConn {
	t.Helper()
	d := NewBridgeDialer(BridgeOptions{
		URL:          url,
		Token:        "secret",
		WriteTimeout: time.Second,
		Logger:       zerolog.New(io.Discard),
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, err := d.Open(ctx, "msfs-agent")
	require.NoError(t, err)
	return conn.(*BridgeConn)
}

func nextMessage(t *testing.T, c Conn) messages.Message {
	t.Helper()
	var msg messages.Message
	require.Eventually(t, func() bool {
		m, err := c.ReceiveMessage()
		if err != nil {
			return false
		}
		msg = m
		return m != nil
	}, 2*time.Second, time.Millisecond)
	return msg
}

func TestBridgeOpenHandshake(t *testing.T) {
	b := newFakeBridge()
	url := startBridge(t, b)
	c := openBridge(t, url)
	defer c.Close()

	h := <-b.headers
	assert.Equal(t, "Bearer secret", h.Get("Authorization"))
	assert.Equal(t, "msfs-agent", h.Get("X-Client-Name"))

	open := b.nextCall(t)
	assert.Equal(t, messages.CallOpen, open.Type)
	assert.Equal(t, uint32(1), open.SendID)
	assert.Equal(t, "msfs-agent", open.ClientName)
	assert.Len(t, open.SessionID, 36)

	assert.Equal(t, messages.Open{ApplicationName: "KittyHawk", Version: "11.0"}, nextMessage(t, c))

	msg, err := c.ReceiveMessage()
	require.NoError(t, err)
	assert.Nil(t, msg, "empty inbox must not block")
}

func TestBridgeOpenRejected(t *testing.T) {
	b := newFakeBridge()
	b.reject = "simulator not running"
	url := startBridge(t, b)

	d := NewBridgeDialer(BridgeOptions{URL: url, Logger: zerolog.New(io.Discard)}, nil)
	_, err := d.Open(context.Background(), "msfs-agent")
	require.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), "simulator not running")

	h := <-b.headers
	assert.Empty(t, h.Get("Authorization"))
}

func TestBridgeOpenDialFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no upgrade here", http.StatusForbidden)
	}))
	defer srv.Close()

	d := NewBridgeDialer(BridgeOptions{URL: "ws" + strings.TrimPrefix(srv.URL, "http"), Logger: zerolog.New(io.Discard)}, nil)
	_, err := d.Open(context.Background(), "msfs-agent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestBridgeCalls(t *testing.T) {
	b := newFakeBridge()
	url := startBridge(t, b)
	c := openBridge(t, url)
	defer c.Close()
	b.nextCall(t)

	require.NoError(t, c.TransmitClientEvent(ObjectIDUser, events.NAV1RadioSet, 0x17410, GroupDefault, EventFlagGroupIDIsPriority))
	call := b.nextCall(t)
	assert.Equal(t, messages.CallTransmitClientEvent, call.Type)
	assert.Equal(t, uint32(2), call.SendID)
	require.NotNil(t, call.EventID)
	assert.Equal(t, uint32(events.NAV1RadioSet), *call.EventID)
	assert.Equal(t, uint32(0x17410), *call.Data)
	assert.Equal(t, uint32(0x10), *call.Flags)
	assert.Equal(t, uint32(0), *call.ObjectID)

	require.NoError(t, c.AddToDataDefinition(datadef.DefinitionPlaneState, datadef.FieldSpec{Name: "LIGHT STROBE", Unit: "Bool", Type: datadef.Bool}))
	call = b.nextCall(t)
	assert.Equal(t, messages.CallAddToDataDefinition, call.Type)
	assert.Equal(t, uint32(3), call.SendID)
	assert.Equal(t, "LIGHT STROBE", call.Datum)
	assert.Equal(t, "INT32", call.DataType)

	require.NoError(t, c.Text(TextTypePrintWhite, 2, "hello"))
	call = b.nextCall(t)
	assert.Equal(t, messages.CallText, call.Type)
	assert.Equal(t, uint32(0x101), *call.TextType)
	assert.Equal(t, "hello", call.Text)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.CallsSent[string(messages.CallTransmitClientEvent)])
}

func TestBridgeInbound(t *testing.T) {
	b := newFakeBridge()
	url := startBridge(t, b)
	c := openBridge(t, url)
	defer c.Close()
	assert.IsType(t, messages.Open{}, nextMessage(t, c))
	server := <-b.conns

	payload := []byte{1, 0, 0, 0}
	require.NoError(t, server.WriteMessage(websocket.BinaryMessage, protocol.EncodeFrame(protocol.FrameTypeObjectDataByType, 0, 0, payload)))
	assert.Equal(t, messages.Data{RequestID: 0, DefinitionID: 0, Payload: payload}, nextMessage(t, c))

	require.NoError(t, server.WriteMessage(websocket.BinaryMessage, []byte{0x01, 0x00}))

	event, _ := json.Marshal(map[string]any{"type": "event", "event_id": uint32(events.Pause), "data": 1})
	require.NoError(t, server.WriteMessage(websocket.TextMessage, event))
	assert.Equal(t, messages.SystemEvent{Event: uint32(events.Pause), Value: 1}, nextMessage(t, c))

	exc, _ := json.Marshal(map[string]any{"type": "exception", "exception": 7, "send_id": 4})
	require.NoError(t, server.WriteMessage(websocket.TextMessage, exc))
	got := nextMessage(t, c).(messages.Exception)
	assert.Equal(t, uint32(7), got.Code)
	assert.False(t, got.HasIndex())

	assert.Equal(t, int64(1), c.Stats().DecodeErrors)
}

func TestBridgeDroppedConnectionIsQuit(t *testing.T) {
	defer goleak.VerifyNone(t)

	b := newFakeBridge()
	srv := httptest.NewServer(b)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	c := openBridge(t, url)
	nextMessage(t, c)

	server := <-b.conns
	server.Close()

	assert.Equal(t, messages.Quit{}, nextMessage(t, c))

	require.NoError(t, c.Close())
	<-b.exited
	srv.Close()

	_, err := c.ReceiveMessage()
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, c.TransmitClientEvent(0, events.StrobesToggle, 0, GroupDefault, 0), ErrClosed)
}

func TestBridgeCloseJoinsReader(t *testing.T) {
	b := newFakeBridge()
	url := startBridge(t, b)
	c := openBridge(t, url)
	b.nextCall(t)

	require.NoError(t, c.Close())
	select {
	case <-c.done:
	default:
		t.Fatal("reader still running after Close")
	}
	assert.Equal(t, messages.CallClose, b.nextCall(t).Type)

	// second close is a no-op
	assert.NoError(t, c.Close())
}
