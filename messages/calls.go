package messages

// CallType names an outbound bridge call.
type CallType string

const (
	CallOpen                       CallType = "open"
	CallMapClientEvent             CallType = "map_client_event"
	CallAddToNotificationGroup     CallType = "add_to_notification_group"
	CallSetGroupPriority           CallType = "set_group_priority"
	CallSubscribeSystemEvent       CallType = "subscribe_system_event"
	CallUnsubscribeSystemEvent     CallType = "unsubscribe_system_event"
	CallAddToDataDefinition        CallType = "add_to_data_definition"
	CallRegisterDataDefineStruct   CallType = "register_data_define_struct"
	CallRequestDataOnSimObjectType CallType = "request_data_on_sim_object_type"
	CallTransmitClientEvent        CallType = "transmit_client_event"
	CallText                       CallType = "text"
	CallClose                      CallType = "close"
)

// Call is the JSON envelope of every outbound bridge call. Only the fields a
// call type uses are set.
type Call struct {
	Type   CallType `json:"type"`
	SendID uint32   `json:"send_id"`

	ClientName string `json:"client_name,omitempty"`
	SessionID  string `json:"session_id,omitempty"`

	EventID   *uint32 `json:"event_id,omitempty"`
	EventName string  `json:"event_name,omitempty"`
	GroupID   *uint32 `json:"group_id,omitempty"`
	Maskable  *bool   `json:"maskable,omitempty"`
	Priority  *uint32 `json:"priority,omitempty"`

	DefineID *uint32 `json:"define_id,omitempty"`
	Datum    string  `json:"datum,omitempty"`
	Unit     string  `json:"unit,omitempty"`
	DataType string  `json:"data_type,omitempty"`
	Size     *uint32 `json:"size,omitempty"`

	RequestID  *uint32 `json:"request_id,omitempty"`
	Radius     *uint32 `json:"radius,omitempty"`
	ObjectType *uint32 `json:"object_type,omitempty"`

	ObjectID *uint32 `json:"object_id,omitempty"`
	Data     *uint32 `json:"data,omitempty"`
	Flags    *uint32 `json:"flags,omitempty"`

	TextType *uint32  `json:"text_type,omitempty"`
	Seconds  *float64 `json:"seconds,omitempty"`
	Text     string   `json:"text,omitempty"`
}

// Uint32 returns a pointer to v for the optional numeric Call fields.
func Uint32(v uint32) *uint32 { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// Float64 returns a pointer to v.
func Float64(v float64) *float64 { return &v }

// Envelope is the JSON form of every inbound text message.
type Envelope struct {
	Type  string `json:"type"`
	Error string `json:"error,omitempty"`

	Application string `json:"application,omitempty"`
	Version     string `json:"version,omitempty"`

	EventID uint32 `json:"event_id,omitempty"`
	Data    uint32 `json:"data,omitempty"`

	Exception uint32  `json:"exception,omitempty"`
	SendID    uint32  `json:"send_id,omitempty"`
	Index     *uint32 `json:"index,omitempty"`
}

// Message converts an envelope into the inbound message it describes. ok is
// false for an unrecognised type.
func (e Envelope) Message() (msg Message, ok bool) {
	switch e.Type {
	case "open":
		return Open{ApplicationName: e.Application, Version: e.Version}, true
	case "event":
		return SystemEvent{Event: e.EventID, Value: e.Data}, true
	case "exception":
		index := UnknownIndex
		if e.Index != nil {
			index = *e.Index
		}
		return Exception{Code: e.Exception, SendID: e.SendID, Index: index}, true
	case "quit":
		return Quit{}, true
	default:
		return nil, false
	}
}
