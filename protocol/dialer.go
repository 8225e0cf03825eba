package protocol

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketConn is the subset of a websocket connection the bridge uses
type WebSocketConn interface {
	ReadJSON(v interface{}) error
	WriteJSON(v interface{}) error
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
	SetWriteDeadline(t time.Time) error
	SetReadDeadline(t time.Time) error
}

// WebSocketDialer abstracts websocket dialing for testing
type WebSocketDialer interface {
	DialContext(ctx context.Context, url string, header http.Header) (WebSocketConn, *http.Response, error)
}

// GorillaWebSocketConn adapts *websocket.Conn to WebSocketConn
type GorillaWebSocketConn struct {
	*websocket.Conn
}

// DefaultWebSocketDialer dials with gorilla/websocket
type DefaultWebSocketDialer struct {
	HandshakeTimeout time.Duration
}

// DialContext connects to a websocket endpoint
func (d *DefaultWebSocketDialer) DialContext(ctx context.Context, url string, header http.Header) (WebSocketConn, *http.Response, error) {
	dialer := *websocket.DefaultDialer
	if d.HandshakeTimeout > 0 {
		dialer.HandshakeTimeout = d.HandshakeTimeout
	}

	conn, resp, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, resp, err
	}
	return &GorillaWebSocketConn{Conn: conn}, resp, nil
}
