package messages

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExceptionName(t *testing.T) {
	tests := []struct {
		code uint32
		want string
	}{
		{0, "NONE"},
		{1, "ERROR"},
		{3, "UNRECOGNIZED_ID"},
		{7, "NAME_UNRECOGNIZED"},
		{20, "DATA_ERROR"},
		{31, "OUT_OF_BOUNDS"},
		{32, "UNKNOWN(32)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExceptionName(tt.code))
	}
}

func TestExceptionIndex(t *testing.T) {
	e := Exception{Code: 7, SendID: 12, Index: UnknownIndex}
	assert.False(t, e.HasIndex())
	assert.Equal(t, "host exception NAME_UNRECOGNIZED (send_id=12)", e.Error())

	e.Index = 1
	assert.True(t, e.HasIndex())
	assert.Contains(t, e.Error(), "index=1")
}

func TestEnvelopeMessage(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Message
	}{
		{"open", `{"type":"open","application":"KittyHawk","version":"11.0"}`, Open{ApplicationName: "KittyHawk", Version: "11.0"}},
		{"event", `{"type":"event","event_id":2,"data":1}`, SystemEvent{Event: 2, Value: 1}},
		{"exception without index", `{"type":"exception","exception":3,"send_id":9}`, Exception{Code: 3, SendID: 9, Index: UnknownIndex}},
		{"exception with index", `{"type":"exception","exception":3,"send_id":9,"index":0}`, Exception{Code: 3, SendID: 9, Index: 0}},
		{"quit", `{"type":"quit"}`, Quit{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var env Envelope
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &env))
			msg, ok := env.Message()
			require.True(t, ok)
			assert.Equal(t, tt.want, msg)
		})
	}

	_, ok := Envelope{Type: "bogus"}.Message()
	assert.False(t, ok)
}

func TestCallOmitsUnusedFields(t *testing.T) {
	c := Call{
		Type:    CallTransmitClientEvent,
		SendID:  4,
		EventID: Uint32(24),
		Data:    Uint32(0),
		Flags:   Uint32(0x10),
	}
	raw, err := json.Marshal(c)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Len(t, fields, 5)
	assert.Equal(t, "transmit_client_event", fields["type"])
	assert.EqualValues(t, 0, fields["data"], "zero data is still sent")
}

func TestKinds(t *testing.T) {
	assert.Equal(t, "open", Open{}.Kind())
	assert.Equal(t, "data", Data{}.Kind())
	assert.Equal(t, "event", SystemEvent{}.Kind())
	assert.Equal(t, "exception", Exception{}.Kind())
	assert.Equal(t, "quit", Quit{}.Kind())
}
