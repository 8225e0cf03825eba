package messages

import (
	"fmt"
	"math"

	"github.com/jamescl604/MSFSVoiceAttackPlugin/datadef"
)

// Message is one inbound notification from the host. It is one of Open,
// Data, SystemEvent, Exception or Quit.
type Message interface {
	Kind() string
}

// Open confirms the host accepted the connection.
type Open struct {
	ApplicationName string
	Version         string
}

// Data carries the raw buffer answering a data request.
type Data struct {
	RequestID    datadef.RequestID
	DefinitionID datadef.DefinitionID
	Payload      []byte
}

// SystemEvent is a subscribed host notification such as SimStart.
type SystemEvent struct {
	Event uint32
	Value uint32
}

// UnknownSendID means the host did not attribute the exception to a call.
const UnknownSendID uint32 = 0

// UnknownIndex means the exception does not point at a call parameter.
const UnknownIndex uint32 = math.MaxUint32

// Exception reports that the host rejected an earlier call. SendID refers
// back to that call's send_id.
type Exception struct {
	Code   uint32
	SendID uint32
	Index  uint32
}

// Quit reports that the host closed the session.
type Quit struct{}

func (Open) Kind() string        { return "open" }
func (Data) Kind() string        { return "data" }
func (SystemEvent) Kind() string { return "event" }
func (Exception) Kind() string   { return "exception" }
func (Quit) Kind() string        { return "quit" }

// HasIndex reports whether the host named the offending parameter.
func (e Exception) HasIndex() bool {
	return e.Index != UnknownIndex
}

func (e Exception) Error() string {
	if e.HasIndex() {
		return fmt.Sprintf("host exception %s (send_id=%d, index=%d)", ExceptionName(e.Code), e.SendID, e.Index)
	}
	return fmt.Sprintf("host exception %s (send_id=%d)", ExceptionName(e.Code), e.SendID)
}

var exceptionNames = []string{
	"NONE",
	"ERROR",
	"SIZE_MISMATCH",
	"UNRECOGNIZED_ID",
	"UNOPENED",
	"VERSION_MISMATCH",
	"TOO_MANY_GROUPS",
	"NAME_UNRECOGNIZED",
	"TOO_MANY_EVENT_NAMES",
	"EVENT_ID_DUPLICATE",
	"TOO_MANY_MAPS",
	"TOO_MANY_OBJECTS",
	"TOO_MANY_REQUESTS",
	"WEATHER_INVALID_PORT",
	"WEATHER_INVALID_METAR",
	"WEATHER_UNABLE_TO_GET_OBSERVATION",
	"WEATHER_UNABLE_TO_CREATE_STATION",
	"WEATHER_UNABLE_TO_REMOVE_STATION",
	"INVALID_DATA_TYPE",
	"INVALID_DATA_SIZE",
	"DATA_ERROR",
	"INVALID_ARRAY",
	"CREATE_OBJECT_FAILED",
	"LOAD_FLIGHTPLAN_FAILED",
	"OPERATION_INVALID_FOR_OBJECT_TYPE",
	"ILLEGAL_OPERATION",
	"ALREADY_SUBSCRIBED",
	"INVALID_ENUM",
	"DEFINITION_ERROR",
	"DUPLICATE_ID",
	"DATUM_ID",
	"OUT_OF_BOUNDS",
}

// ExceptionName maps a host exception code to its name.
func ExceptionName(code uint32) string {
	if int(code) < len(exceptionNames) {
		return exceptionNames[code]
	}
	return fmt.Sprintf("UNKNOWN(%d)", code)
}
