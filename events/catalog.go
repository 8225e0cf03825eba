// Package events defines the closed set of client events the agent can map
// and trigger in the sim, their host-side names, and how each one encodes its
// parameter.
package events

import (
	"fmt"
	"strings"

	"github.com/jamescl604/MSFSVoiceAttackPlugin/codec"
)

// ID identifies a client event. The numeric value is the client event ID
// mapped on the host, so the declaration order is part of the wire contract.
type ID uint32

const (
	SimStart ID = iota
	SimStop
	Pause

	ADFCompleteSet
	ADF2CompleteSet
	APAltVarSetEnglish
	APNavSelectSet
	APSpdVarSet
	APVSVarSetEnglish
	BleedAirSourceControlSet
	COMRadioSet
	COMStbyRadioSet
	COMStbyRadioSwap
	COM1TransmitSelect
	COM2RadioSet
	COM2RadioSwap
	COM2StbyRadioSet
	COM2TransmitSelect
	DME1Toggle
	DME2Toggle
	HeadingBugSet
	NAV1RadioSet
	NAV1RadioSwap
	NAV1StbySet
	NAV2RadioSet
	NAV2RadioSwap
	NAV2StbySet
	PanelLightsToggle
	StrobesToggle
	ToggleBeaconLights
	ToggleCabinLights
	ToggleLogoLights
	ToggleNavLights
	ToggleRecognitionLights
	ToggleTaxiLights
	ToggleWingLights
	XPNDRSet

	numEvents
)

// Policy selects how an event's string parameter becomes the 32-bit value
// sent with it.
type Policy int

const (
	PolicyRaw Policy = iota
	PolicyBCDFrequency
	PolicyBCDInteger
)

func (p Policy) String() string {
	switch p {
	case PolicyRaw:
		return "raw"
	case PolicyBCDFrequency:
		return "bcd_frequency"
	case PolicyBCDInteger:
		return "bcd_integer"
	default:
		return "unknown"
	}
}

type entry struct {
	name   string
	policy Policy
}

var catalog = [numEvents]entry{
	SimStart: {"SIMSTART", PolicyRaw},
	SimStop:  {"SIMSTOP", PolicyRaw},
	Pause:    {"PAUSE", PolicyRaw},

	ADFCompleteSet:           {"ADF_COMPLETE_SET", PolicyBCDFrequency},
	ADF2CompleteSet:          {"ADF2_COMPLETE_SET", PolicyBCDFrequency},
	APAltVarSetEnglish:       {"AP_ALT_VAR_SET_ENGLISH", PolicyRaw},
	APNavSelectSet:           {"AP_NAV_SELECT_SET", PolicyRaw},
	APSpdVarSet:              {"AP_SPD_VAR_SET", PolicyRaw},
	APVSVarSetEnglish:        {"AP_VS_VAR_SET_ENGLISH", PolicyRaw},
	BleedAirSourceControlSet: {"BLEED_AIR_SOURCE_CONTROL_SET", PolicyRaw},
	COMRadioSet:              {"COM_RADIO_SET", PolicyBCDFrequency},
	COMStbyRadioSet:          {"COM_STBY_RADIO_SET", PolicyBCDFrequency},
	COMStbyRadioSwap:         {"COM_STBY_RADIO_SWAP", PolicyRaw},
	COM1TransmitSelect:       {"COM1_TRANSMIT_SELECT", PolicyRaw},
	COM2RadioSet:             {"COM2_RADIO_SET", PolicyBCDFrequency},
	COM2RadioSwap:            {"COM2_RADIO_SWAP", PolicyRaw},
	COM2StbyRadioSet:         {"COM2_STBY_RADIO_SET", PolicyBCDFrequency},
	COM2TransmitSelect:       {"COM2_TRANSMIT_SELECT", PolicyRaw},
	DME1Toggle:               {"DME1_TOGGLE", PolicyRaw},
	DME2Toggle:               {"DME2_TOGGLE", PolicyRaw},
	HeadingBugSet:            {"HEADING_BUG_SET", PolicyRaw},
	NAV1RadioSet:             {"NAV1_RADIO_SET", PolicyBCDFrequency},
	NAV1RadioSwap:            {"NAV1_RADIO_SWAP", PolicyRaw},
	NAV1StbySet:              {"NAV1_STBY_SET", PolicyBCDFrequency},
	NAV2RadioSet:             {"NAV2_RADIO_SET", PolicyBCDFrequency},
	NAV2RadioSwap:            {"NAV2_RADIO_SWAP", PolicyRaw},
	NAV2StbySet:              {"NAV2_STBY_SET", PolicyBCDFrequency},
	PanelLightsToggle:        {"PANEL_LIGHTS_TOGGLE", PolicyRaw},
	StrobesToggle:            {"STROBES_TOGGLE", PolicyRaw},
	ToggleBeaconLights:       {"TOGGLE_BEACON_LIGHTS", PolicyRaw},
	ToggleCabinLights:        {"TOGGLE_CABIN_LIGHTS", PolicyRaw},
	ToggleLogoLights:         {"TOGGLE_LOGO_LIGHTS", PolicyRaw},
	ToggleNavLights:          {"TOGGLE_NAV_LIGHTS", PolicyRaw},
	ToggleRecognitionLights:  {"TOGGLE_RECOGNITION_LIGHTS", PolicyRaw},
	ToggleTaxiLights:         {"TOGGLE_TAXI_LIGHTS", PolicyRaw},
	ToggleWingLights:         {"TOGGLE_WING_LIGHTS", PolicyRaw},
	XPNDRSet:                 {"XPNDR_SET", PolicyBCDInteger},
}

var byName = func() map[string]ID {
	m := make(map[string]ID, numEvents)
	for i, e := range catalog {
		m[e.name] = ID(i)
	}
	return m
}()

// Valid reports whether id belongs to the catalog.
func (id ID) Valid() bool {
	return id < numEvents
}

func (id ID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("EVENT(%d)", uint32(id))
	}
	return catalog[id].name
}

// Name returns the host-side event name id is mapped to.
func Name(id ID) string {
	return id.String()
}

// PolicyOf returns the parameter encoding policy for id. Unknown IDs use the
// raw policy.
func PolicyOf(id ID) Policy {
	if !id.Valid() {
		return PolicyRaw
	}
	return catalog[id].policy
}

// All returns every catalog ID in declaration order.
func All() []ID {
	ids := make([]ID, numEvents)
	for i := range ids {
		ids[i] = ID(i)
	}
	return ids
}

// Parse looks up an event by host name, ignoring case and surrounding space.
func Parse(name string) (ID, bool) {
	id, ok := byName[strings.ToUpper(strings.TrimSpace(name))]
	return id, ok
}

var encoders = map[Policy]func(string) (uint32, error){
	PolicyRaw:          codec.EncodeRaw,
	PolicyBCDFrequency: codec.EncodeBCDFrequency,
	PolicyBCDInteger:   codec.EncodeBCDInteger,
}

// Encode converts data into the value transmitted with id according to the
// event's policy. Errors satisfy codec.IsAbort.
func Encode(id ID, data string) (uint32, error) {
	return encoders[PolicyOf(id)](data)
}

// SystemEvent pairs a host system notification with the catalog ID it is
// subscribed under.
type SystemEvent struct {
	ID   ID
	Name string
}

// SystemEvents returns the host notifications the session subscribes to.
func SystemEvents() []SystemEvent {
	return []SystemEvent{
		{ID: SimStart, Name: "SimStart"},
		{ID: SimStop, Name: "SimStop"},
		{ID: Pause, Name: "Pause"},
	}
}
