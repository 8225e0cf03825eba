// Package conntest provides an in-memory connection.Conn for tests.
package conntest

import (
	"context"
	"errors"
	"sync"

	"github.com/jamescl604/MSFSVoiceAttackPlugin/connection"
	"github.com/jamescl604/MSFSVoiceAttackPlugin/datadef"
	"github.com/jamescl604/MSFSVoiceAttackPlugin/events"
	"github.com/jamescl604/MSFSVoiceAttackPlugin/messages"
)

// ErrInjected is the default error returned by a failing call.
var ErrInjected = errors.New("conntest: injected failure")

var _ connection.Conn = (*FakeConn)(nil)

// FakeConn records every call as a messages.Call and serves inbound
// messages pushed by the test.
type FakeConn struct {
	mu       sync.Mutex
	calls    []messages.Call
	failures map[messages.CallType]error
	inbox    []messages.Message
	recvErr  error
	closed   bool
	closes   int
	nextID   uint32

	// OnCall, if set, runs after a call is recorded and before it returns.
	OnCall func(messages.Call)
}

func NewFakeConn() *FakeConn {
	return &FakeConn{failures: make(map[messages.CallType]error)}
}

// FailOn makes every later call of type ct return err. A nil err uses
// ErrInjected.
func (f *FakeConn) FailOn(ct messages.CallType, err error) {
	if err == nil {
		err = ErrInjected
	}
	f.mu.Lock()
	f.failures[ct] = err
	f.mu.Unlock()
}

// ClearFailures removes all injected failures.
func (f *FakeConn) ClearFailures() {
	f.mu.Lock()
	f.failures = make(map[messages.CallType]error)
	f.mu.Unlock()
}

// FailReceive makes ReceiveMessage return err until cleared with nil.
func (f *FakeConn) FailReceive(err error) {
	f.mu.Lock()
	f.recvErr = err
	f.mu.Unlock()
}

// Push queues an inbound message.
func (f *FakeConn) Push(msgs ...messages.Message) {
	f.mu.Lock()
	f.inbox = append(f.inbox, msgs...)
	f.mu.Unlock()
}

// Pending is the number of queued inbound messages.
func (f *FakeConn) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inbox)
}

// Calls returns a copy of the recorded calls.
func (f *FakeConn) Calls() []messages.Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]messages.Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallsOf returns the recorded calls of one type.
func (f *FakeConn) CallsOf(ct messages.CallType) []messages.Call {
	var out []messages.Call
	for _, c := range f.Calls() {
		if c.Type == ct {
			out = append(out, c)
		}
	}
	return out
}

// Reset forgets recorded calls.
func (f *FakeConn) Reset() {
	f.mu.Lock()
	f.calls = nil
	f.mu.Unlock()
}

// Closed reports whether Close was called, and how many times.
func (f *FakeConn) Closed() (bool, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed, f.closes
}

func (f *FakeConn) record(c messages.Call) error {
	f.mu.Lock()
	f.nextID++
	c.SendID = f.nextID
	f.calls = append(f.calls, c)
	err := f.failures[c.Type]
	if err == nil && f.closed && c.Type != messages.CallClose {
		err = connection.ErrClosed
	}
	hook := f.OnCall
	f.mu.Unlock()

	if hook != nil {
		hook(c)
	}
	return err
}

func (f *FakeConn) MapClientEventToSimEvent(id events.ID, name string) error {
	return f.record(messages.Call{
		Type:      messages.CallMapClientEvent,
		EventID:   messages.Uint32(uint32(id)),
		EventName: name,
	})
}

func (f *FakeConn) AddClientEventToNotificationGroup(group connection.GroupID, id events.ID, maskable bool) error {
	return f.record(messages.Call{
		Type:     messages.CallAddToNotificationGroup,
		GroupID:  messages.Uint32(uint32(group)),
		EventID:  messages.Uint32(uint32(id)),
		Maskable: messages.Bool(maskable),
	})
}

func (f *FakeConn) SetNotificationGroupPriority(group connection.GroupID, priority uint32) error {
	return f.record(messages.Call{
		Type:     messages.CallSetGroupPriority,
		GroupID:  messages.Uint32(uint32(group)),
		Priority: messages.Uint32(priority),
	})
}

func (f *FakeConn) SubscribeToSystemEvent(id events.ID, name string) error {
	return f.record(messages.Call{
		Type:      messages.CallSubscribeSystemEvent,
		EventID:   messages.Uint32(uint32(id)),
		EventName: name,
	})
}

func (f *FakeConn) UnsubscribeFromSystemEvent(id events.ID) error {
	return f.record(messages.Call{
		Type:    messages.CallUnsubscribeSystemEvent,
		EventID: messages.Uint32(uint32(id)),
	})
}

func (f *FakeConn) AddToDataDefinition(def datadef.DefinitionID, field datadef.FieldSpec) error {
	return f.record(messages.Call{
		Type:     messages.CallAddToDataDefinition,
		DefineID: messages.Uint32(uint32(def)),
		Datum:    field.Name,
		Unit:     field.Unit,
		DataType: field.Type.HostType().String(),
	})
}

func (f *FakeConn) RegisterDataDefineStruct(def datadef.DefinitionID, size int) error {
	return f.record(messages.Call{
		Type:     messages.CallRegisterDataDefineStruct,
		DefineID: messages.Uint32(uint32(def)),
		Size:     messages.Uint32(uint32(size)),
	})
}

func (f *FakeConn) RequestDataOnSimObjectType(req datadef.RequestID, def datadef.DefinitionID, radius uint32, objectType uint32) error {
	return f.record(messages.Call{
		Type:       messages.CallRequestDataOnSimObjectType,
		RequestID:  messages.Uint32(uint32(req)),
		DefineID:   messages.Uint32(uint32(def)),
		Radius:     messages.Uint32(radius),
		ObjectType: messages.Uint32(objectType),
	})
}

func (f *FakeConn) TransmitClientEvent(objectID uint32, id events.ID, data uint32, group connection.GroupID, flags uint32) error {
	return f.record(messages.Call{
		Type:     messages.CallTransmitClientEvent,
		ObjectID: messages.Uint32(objectID),
		EventID:  messages.Uint32(uint32(id)),
		Data:     messages.Uint32(data),
		GroupID:  messages.Uint32(uint32(group)),
		Flags:    messages.Uint32(flags),
	})
}

func (f *FakeConn) Text(textType uint32, seconds float64, text string) error {
	return f.record(messages.Call{
		Type:     messages.CallText,
		TextType: messages.Uint32(textType),
		Seconds:  messages.Float64(seconds),
		Text:     text,
	})
}

// ReceiveMessage pops the oldest pushed message, or returns nil.
func (f *FakeConn) ReceiveMessage() (messages.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recvErr != nil {
		return nil, f.recvErr
	}
	if len(f.inbox) == 0 {
		return nil, nil
	}
	msg := f.inbox[0]
	f.inbox = f.inbox[1:]
	return msg, nil
}

func (f *FakeConn) Close() error {
	err := f.record(messages.Call{Type: messages.CallClose})
	f.mu.Lock()
	f.closed = true
	f.closes++
	f.mu.Unlock()
	return err
}

// FakeDialer hands out FakeConns.
type FakeDialer struct {
	mu    sync.Mutex
	err   error
	opens int
	conns []*FakeConn

	// Prepare, if set, configures each new conn before Open returns.
	Prepare func(*FakeConn)
}

// FailOpen makes Open return err until cleared with nil.
func (d *FakeDialer) FailOpen(err error) {
	d.mu.Lock()
	d.err = err
	d.mu.Unlock()
}

// Open returns a new FakeConn with an Open message queued.
func (d *FakeDialer) Open(ctx context.Context, clientName string) (connection.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opens++
	if d.err != nil {
		return nil, d.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := NewFakeConn()
	c.Push(messages.Open{ApplicationName: "KittyHawk", Version: "11.0"})
	if d.Prepare != nil {
		d.Prepare(c)
	}
	d.conns = append(d.conns, c)
	return c, nil
}

// Opens is the number of Open calls, including failed ones.
func (d *FakeDialer) Opens() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opens
}

// Last returns the most recently opened conn, or nil.
func (d *FakeDialer) Last() *FakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.conns) == 0 {
		return nil
	}
	return d.conns[len(d.conns)-1]
}
