package connection

import (
	"sync"
	"time"
)

// ConnectionMetrics tracks counters for one bridge connection
type ConnectionMetrics struct {
	mu               sync.RWMutex
	callsSent        map[string]int64
	messagesReceived map[string]int64
	writeErrors      int64
	decodeErrors     int64
	startTime        time.Time
}

// ConnectionStats is a point-in-time copy of ConnectionMetrics
type ConnectionStats struct {
	CallsSent        map[string]int64
	MessagesReceived map[string]int64
	WriteErrors      int64
	DecodeErrors     int64
	Uptime           time.Duration
}

// NewConnectionMetrics creates a new metrics tracker
func NewConnectionMetrics() *ConnectionMetrics {
	return &ConnectionMetrics{
		callsSent:        make(map[string]int64),
		messagesReceived: make(map[string]int64),
		startTime:        time.Now(),
	}
}

func (m *ConnectionMetrics) incrementCallSent(callType string) {
	m.mu.Lock()
	m.callsSent[callType]++
	m.mu.Unlock()
}

func (m *ConnectionMetrics) incrementMessageReceived(kind string) {
	m.mu.Lock()
	m.messagesReceived[kind]++
	m.mu.Unlock()
}

func (m *ConnectionMetrics) incrementWriteErrors() {
	m.mu.Lock()
	m.writeErrors++
	m.mu.Unlock()
}

func (m *ConnectionMetrics) incrementDecodeErrors() {
	m.mu.Lock()
	m.decodeErrors++
	m.mu.Unlock()
}

// Snapshot copies the current counters
func (m *ConnectionMetrics) Snapshot() ConnectionStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	callsSent := make(map[string]int64, len(m.callsSent))
	for k, v := range m.callsSent {
		callsSent[k] = v
	}
	received := make(map[string]int64, len(m.messagesReceived))
	for k, v := range m.messagesReceived {
		received[k] = v
	}

	return ConnectionStats{
		CallsSent:        callsSent,
		MessagesReceived: received,
		WriteErrors:      m.writeErrors,
		DecodeErrors:     m.decodeErrors,
		Uptime:           time.Since(m.startTime),
	}
}
