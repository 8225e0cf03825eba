package datadef

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaneStateLayout(t *testing.T) {
	l := PlaneStateLayout()

	require.Len(t, l.Fields, 70)
	assert.Equal(t, DefinitionPlaneState, l.ID)
	assert.Equal(t, 51*4+15*8+4*256, l.Size())

	assert.Equal(t, FieldSpec{Name: "AIRSPEED INDICATED", Unit: "Knots", Type: Int32}, l.Fields[0])
	assert.Equal(t, FieldSpec{Name: "ATC AIRLINE", Type: String256}, l.Fields[3])
	assert.Equal(t, FieldSpec{Name: "WATER RUDDER HANDLE POSITION", Unit: "Position", Type: Int32}, l.Fields[69])

	seen := make(map[string]bool)
	for _, f := range l.Fields {
		assert.Falsef(t, seen[f.Name], "duplicate field %s", f.Name)
		seen[f.Name] = true
	}
}

func TestPlaneStateGearHandleIsInteger(t *testing.T) {
	for _, f := range PlaneStateLayout().Fields {
		if f.Name == "GEAR HANDLE POSITION" {
			assert.Equal(t, Int32, f.Type)
			assert.Equal(t, "Bool", f.Unit)
			return
		}
	}
	t.Fatal("GEAR HANDLE POSITION not in layout")
}

func TestPlaneStateRoundTrip(t *testing.T) {
	want := PlaneState{
		AirspeedIndicated:    112,
		AmbientTemperature:   -4,
		ATCAirline:           "Speedbird",
		ATCID:                "G-ABCD",
		AutopilotMaster:      true,
		AutopilotNavSelected: 1,
		COM1ActiveFrequency:  118.3,
		NAV1ActiveFrequency:  113.9,
		GearHandlePosition:   1,
		LightStrobe:          true,
		PlaneLatitude:        51.4775,
		PlaneLongitude:       -0.4614,
		Title:                "Cessna Skyhawk",
		TransponderCode:      7000,
	}

	l := PlaneStateLayout()
	buf, err := l.Encode(want.Values())
	require.NoError(t, err)

	snap, err := l.Decode(buf)
	require.NoError(t, err)

	got, err := PlaneStateFromSnapshot(snap)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPlaneStateFromSnapshotRejectsOtherLayouts(t *testing.T) {
	_, err := PlaneStateFromSnapshot(nil)
	assert.Error(t, err)

	l := Layout{ID: 5, Fields: []FieldSpec{{Name: "A", Type: Int32}}}
	snap, err := l.Decode(make([]byte, 4))
	require.NoError(t, err)

	_, err = PlaneStateFromSnapshot(snap)
	assert.ErrorIs(t, err, ErrValueMismatch)
}

func TestPlaneStateFields(t *testing.T) {
	p := PlaneState{AirspeedIndicated: 90, LightBeacon: true, Title: "TBM 930"}

	kv := p.Fields()
	require.Len(t, kv, 70)
	assert.Equal(t, "Airspeed_Indicated", kv[0].Key)
	assert.Equal(t, int32(90), kv[0].Value.Int32())
	assert.Equal(t, "Water_Rudder_Handle_Position", kv[69].Key)

	byKey := make(map[string]Value, len(kv))
	for _, e := range kv {
		byKey[e.Key] = e.Value
	}
	assert.True(t, byKey["Light_Beacon"].Bool())
	assert.Equal(t, "TBM 930", byKey["Title"].Str())
}
