// Package connection defines the host session handle and its websocket
// bridge implementation.
package connection

import (
	"context"

	"github.com/jamescl604/MSFSVoiceAttackPlugin/datadef"
	"github.com/jamescl604/MSFSVoiceAttackPlugin/events"
	"github.com/jamescl604/MSFSVoiceAttackPlugin/messages"
)

// GroupID identifies a notification group on the host.
type GroupID uint32

// GroupDefault is the single group every client event is attached to.
const GroupDefault GroupID = 0

// Host constants passed through unchanged.
const (
	PriorityHighest uint32 = 1

	EventFlagGroupIDIsPriority uint32 = 0x10

	ObjectIDUser      uint32 = 0
	SimObjectTypeUser uint32 = 0

	TextTypePrintWhite uint32 = 0x101
)

// Conn is an open handle to the host. Every call except ReceiveMessage and
// Close is fire-and-forget: a nil error means the call was sent, and a later
// rejection arrives as a messages.Exception.
//
// ReceiveMessage never blocks. It returns a nil message when nothing is
// waiting.
type Conn interface {
	MapClientEventToSimEvent(id events.ID, name string) error
	AddClientEventToNotificationGroup(group GroupID, id events.ID, maskable bool) error
	SetNotificationGroupPriority(group GroupID, priority uint32) error
	SubscribeToSystemEvent(id events.ID, name string) error
	UnsubscribeFromSystemEvent(id events.ID) error

	AddToDataDefinition(def datadef.DefinitionID, field datadef.FieldSpec) error
	RegisterDataDefineStruct(def datadef.DefinitionID, size int) error
	RequestDataOnSimObjectType(req datadef.RequestID, def datadef.DefinitionID, radius uint32, objectType uint32) error

	TransmitClientEvent(objectID uint32, id events.ID, data uint32, group GroupID, flags uint32) error
	Text(textType uint32, seconds float64, text string) error

	ReceiveMessage() (messages.Message, error)
	Close() error
}

// Dialer opens a Conn. The host's Open acknowledgement is queued as the
// first inbound message.
type Dialer interface {
	Open(ctx context.Context, clientName string) (Conn, error)
}
