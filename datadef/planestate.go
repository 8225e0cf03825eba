package datadef

import "fmt"

// PlaneState is the typed view of the user aircraft data definition.
type PlaneState struct {
	AirspeedIndicated         int32
	AmbientTemperature        int32
	APUGeneratorSwitch        bool
	ATCAirline                string
	ATCFlightNumber           string
	ATCID                     string
	AutopilotAirspeedHold     bool
	AutopilotAirspeedHoldVar  int32
	AutopilotAltitudeLock     bool
	AutopilotAltitudeLockVar  int32
	AutopilotApproachHold     bool
	AutopilotAttitudeHold     bool
	AutopilotAvailable        bool
	AutopilotBackcourseHold   bool
	AutopilotHeadingLock      bool
	AutopilotHeadingLockDir   int32
	AutopilotMaster           bool
	AutopilotNavSelected      float64
	AutopilotNav1Lock         bool
	AutopilotVerticalHold     bool
	AutopilotVerticalHoldVar  int32
	AutopilotYawDamper        bool
	BleedAirSourceControl     int32
	BrakeParkingIndicator     bool
	COM1ActiveFrequency       float64
	COM1StandbyFrequency      float64
	COM2ActiveFrequency       float64
	COM2StandbyFrequency      float64
	ElectricalMasterBattery   bool
	EngineType                int32
	FlapsHandleIndex          float64
	FlapsHandlePercent        float64
	GearHandlePosition        int32
	GroundVelocity            int32
	HeadingIndicator          int32
	HydraulicSwitch           bool
	IsGearRetractable         bool
	LightBeacon               bool
	LightCabin                bool
	LightLanding              bool
	LightLogo                 bool
	LightNav                  bool
	LightPanel                bool
	LightRecognition          bool
	LightStrobe               bool
	LightTaxi                 bool
	LightWing                 bool
	LocalTime                 int32
	MasterIgnitionSwitch      bool
	NAV1ActiveFrequency       float64
	NAV1StandbyFrequency      float64
	NAV2ActiveFrequency       float64
	NAV2StandbyFrequency      float64
	NumberOfEngines           float64
	PanelAntiIceSwitch        bool
	PitotHeat                 bool
	PlaneAltAboveGround       int32
	PlaneAltitude             int32
	PlaneLatitude             float64
	PlaneLongitude            float64
	PropDeiceSwitch           bool
	PushbackState             int32
	SimOnGround               bool
	SpoilerAvailable          bool
	SpoilersHandlePosition    float64
	StructuralDeiceSwitch     bool
	Title                     string
	TransponderAvailable      bool
	TransponderCode           int32
	WaterRudderHandlePosition int32
}

// KeyValue is one exported PlaneState field.
type KeyValue struct {
	Key   string
	Value Value
}

type planeField struct {
	spec FieldSpec
	key  string
	set  func(*PlaneState, Value)
	get  func(*PlaneState) Value
}

func intField(name, unit, key string, ref func(*PlaneState) *int32) planeField {
	return planeField{
		spec: FieldSpec{Name: name, Unit: unit, Type: Int32},
		key:  key,
		set:  func(p *PlaneState, v Value) { *ref(p) = v.Int32() },
		get:  func(p *PlaneState) Value { return IntValue(*ref(p)) },
	}
}

func boolField(name, key string, ref func(*PlaneState) *bool) planeField {
	return planeField{
		spec: FieldSpec{Name: name, Unit: "Bool", Type: Bool},
		key:  key,
		set:  func(p *PlaneState, v Value) { *ref(p) = v.Bool() },
		get:  func(p *PlaneState) Value { return BoolValue(*ref(p)) },
	}
}

func floatField(name, unit, key string, ref func(*PlaneState) *float64) planeField {
	return planeField{
		spec: FieldSpec{Name: name, Unit: unit, Type: Float64},
		key:  key,
		set:  func(p *PlaneState, v Value) { *ref(p) = v.Float64() },
		get:  func(p *PlaneState) Value { return FloatValue(*ref(p)) },
	}
}

func stringField(name, key string, ref func(*PlaneState) *string) planeField {
	return planeField{
		spec: FieldSpec{Name: name, Type: String256},
		key:  key,
		set:  func(p *PlaneState, v Value) { *ref(p) = v.Str() },
		get:  func(p *PlaneState) Value { return StringValue(*ref(p)) },
	}
}

// planeStateFields is the single source of truth for the PlaneState
// definition. The host fills the buffer in exactly this order.
var planeStateFields = []planeField{
	intField("AIRSPEED INDICATED", "Knots", "Airspeed_Indicated", func(p *PlaneState) *int32 { return &p.AirspeedIndicated }),
	intField("AMBIENT TEMPERATURE", "Fahrenheit", "Ambient_Temperature", func(p *PlaneState) *int32 { return &p.AmbientTemperature }),
	boolField("APU GENERATOR SWITCH", "Apu_Generator_Switch", func(p *PlaneState) *bool { return &p.APUGeneratorSwitch }),
	stringField("ATC AIRLINE", "Atc_Airline", func(p *PlaneState) *string { return &p.ATCAirline }),
	stringField("ATC FLIGHT NUMBER", "Atc_Flight_Number", func(p *PlaneState) *string { return &p.ATCFlightNumber }),
	stringField("ATC ID", "Atc_Id", func(p *PlaneState) *string { return &p.ATCID }),
	boolField("AUTOPILOT AIRSPEED HOLD", "Autopilot_Airspeed_Hold", func(p *PlaneState) *bool { return &p.AutopilotAirspeedHold }),
	intField("AUTOPILOT AIRSPEED HOLD VAR", "Knots", "Autopilot_Airspeed_Hold_Var", func(p *PlaneState) *int32 { return &p.AutopilotAirspeedHoldVar }),
	boolField("AUTOPILOT ALTITUDE LOCK", "Autopilot_Altitude_Lock", func(p *PlaneState) *bool { return &p.AutopilotAltitudeLock }),
	intField("AUTOPILOT ALTITUDE LOCK VAR", "Feet", "Autopilot_Altitude_Lock_Var", func(p *PlaneState) *int32 { return &p.AutopilotAltitudeLockVar }),
	boolField("AUTOPILOT APPROACH HOLD", "Autopilot_Approach_Hold", func(p *PlaneState) *bool { return &p.AutopilotApproachHold }),
	boolField("AUTOPILOT ATTITUDE HOLD", "Autopilot_Attitude_Hold", func(p *PlaneState) *bool { return &p.AutopilotAttitudeHold }),
	boolField("AUTOPILOT AVAILABLE", "Autopilot_Available", func(p *PlaneState) *bool { return &p.AutopilotAvailable }),
	boolField("AUTOPILOT BACKCOURSE HOLD", "Autopilot_Backcourse_Hold", func(p *PlaneState) *bool { return &p.AutopilotBackcourseHold }),
	boolField("AUTOPILOT HEADING LOCK", "Autopilot_Heading_Lock", func(p *PlaneState) *bool { return &p.AutopilotHeadingLock }),
	intField("AUTOPILOT HEADING LOCK DIR", "Degrees", "Autopilot_Heading_Lock_Dir", func(p *PlaneState) *int32 { return &p.AutopilotHeadingLockDir }),
	boolField("AUTOPILOT MASTER", "Autopilot_Master", func(p *PlaneState) *bool { return &p.AutopilotMaster }),
	floatField("AUTOPILOT NAV SELECTED", "Number", "Autopilot_Nav_Selected", func(p *PlaneState) *float64 { return &p.AutopilotNavSelected }),
	boolField("AUTOPILOT NAV1 LOCK", "Autopilot_Nav1_Lock", func(p *PlaneState) *bool { return &p.AutopilotNav1Lock }),
	boolField("AUTOPILOT VERTICAL HOLD", "Autopilot_Vertical_Hold", func(p *PlaneState) *bool { return &p.AutopilotVerticalHold }),
	intField("AUTOPILOT VERTICAL HOLD VAR", "Feet/minute", "Autopilot_Vertical_Hold_Var", func(p *PlaneState) *int32 { return &p.AutopilotVerticalHoldVar }),
	boolField("AUTOPILOT YAW DAMPER", "Autopilot_Yaw_Damper", func(p *PlaneState) *bool { return &p.AutopilotYawDamper }),
	intField("BLEED AIR SOURCE CONTROL", "Enum", "Bleed_Air_Source_Control", func(p *PlaneState) *int32 { return &p.BleedAirSourceControl }),
	boolField("BRAKE PARKING INDICATOR", "Brake_Parking_Indicator", func(p *PlaneState) *bool { return &p.BrakeParkingIndicator }),
	floatField("COM ACTIVE FREQUENCY:1", "MHz", "Com1_Active_Frequency", func(p *PlaneState) *float64 { return &p.COM1ActiveFrequency }),
	floatField("COM STANDBY FREQUENCY:1", "MHz", "Com1_Standby_Frequency", func(p *PlaneState) *float64 { return &p.COM1StandbyFrequency }),
	floatField("COM ACTIVE FREQUENCY:2", "MHz", "Com2_Active_Frequency", func(p *PlaneState) *float64 { return &p.COM2ActiveFrequency }),
	floatField("COM STANDBY FREQUENCY:2", "MHz", "Com2_Standby_Frequency", func(p *PlaneState) *float64 { return &p.COM2StandbyFrequency }),
	boolField("ELECTRICAL MASTER BATTERY", "Electrical_Master_Battery", func(p *PlaneState) *bool { return &p.ElectricalMasterBattery }),
	intField("ENGINE TYPE", "Enum", "Engine_Type", func(p *PlaneState) *int32 { return &p.EngineType }),
	floatField("FLAPS HANDLE INDEX", "Number", "Flaps_Handle_Index", func(p *PlaneState) *float64 { return &p.FlapsHandleIndex }),
	floatField("FLAPS HANDLE PERCENT", "Percent Over 100", "Flaps_Handle_Percent", func(p *PlaneState) *float64 { return &p.FlapsHandlePercent }),
	// Registered with a Bool unit but read as a plain integer.
	intField("GEAR HANDLE POSITION", "Bool", "Gear_Handle_Position", func(p *PlaneState) *int32 { return &p.GearHandlePosition }),
	intField("GROUND VELOCITY", "Knots", "Ground_Velocity", func(p *PlaneState) *int32 { return &p.GroundVelocity }),
	intField("HEADING INDICATOR", "Degrees", "Heading_Indicator", func(p *PlaneState) *int32 { return &p.HeadingIndicator }),
	boolField("HYDRAULIC SWITCH", "Hydraulic_Switch", func(p *PlaneState) *bool { return &p.HydraulicSwitch }),
	boolField("IS GEAR RETRACTABLE", "Is_Gear_Retractable", func(p *PlaneState) *bool { return &p.IsGearRetractable }),
	boolField("LIGHT BEACON", "Light_Beacon", func(p *PlaneState) *bool { return &p.LightBeacon }),
	boolField("LIGHT CABIN", "Light_Cabin", func(p *PlaneState) *bool { return &p.LightCabin }),
	boolField("LIGHT LANDING", "Light_Landing", func(p *PlaneState) *bool { return &p.LightLanding }),
	boolField("LIGHT LOGO", "Light_Logo", func(p *PlaneState) *bool { return &p.LightLogo }),
	boolField("LIGHT NAV", "Light_Nav", func(p *PlaneState) *bool { return &p.LightNav }),
	boolField("LIGHT PANEL", "Light_Panel", func(p *PlaneState) *bool { return &p.LightPanel }),
	boolField("LIGHT RECOGNITION", "Light_Recognition", func(p *PlaneState) *bool { return &p.LightRecognition }),
	boolField("LIGHT STROBE", "Light_Strobe", func(p *PlaneState) *bool { return &p.LightStrobe }),
	boolField("LIGHT TAXI", "Light_Taxi", func(p *PlaneState) *bool { return &p.LightTaxi }),
	boolField("LIGHT WING", "Light_Wing", func(p *PlaneState) *bool { return &p.LightWing }),
	intField("LOCAL TIME", "Hours", "Local_Time", func(p *PlaneState) *int32 { return &p.LocalTime }),
	boolField("MASTER IGNITION SWITCH", "Master_Ignition_Switch", func(p *PlaneState) *bool { return &p.MasterIgnitionSwitch }),
	floatField("NAV ACTIVE FREQUENCY:1", "MHz", "Nav1_Active_Frequency", func(p *PlaneState) *float64 { return &p.NAV1ActiveFrequency }),
	floatField("NAV STANDBY FREQUENCY:1", "MHz", "Nav1_Standby_Frequency", func(p *PlaneState) *float64 { return &p.NAV1StandbyFrequency }),
	floatField("NAV ACTIVE FREQUENCY:2", "MHz", "Nav2_Active_Frequency", func(p *PlaneState) *float64 { return &p.NAV2ActiveFrequency }),
	floatField("NAV STANDBY FREQUENCY:2", "MHz", "Nav2_Standby_Frequency", func(p *PlaneState) *float64 { return &p.NAV2StandbyFrequency }),
	floatField("NUMBER OF ENGINES", "Number", "Number_Of_Engines", func(p *PlaneState) *float64 { return &p.NumberOfEngines }),
	boolField("PANEL ANTI ICE SWITCH", "Panel_Anti_Ice_Switch", func(p *PlaneState) *bool { return &p.PanelAntiIceSwitch }),
	boolField("PITOT HEAT", "Pitot_Heat", func(p *PlaneState) *bool { return &p.PitotHeat }),
	intField("PLANE ALT ABOVE GROUND", "Feet", "Plane_Alt_Above_Ground", func(p *PlaneState) *int32 { return &p.PlaneAltAboveGround }),
	intField("PLANE ALTITUDE", "Feet", "Plane_Altitude", func(p *PlaneState) *int32 { return &p.PlaneAltitude }),
	floatField("PLANE LATITUDE", "Degrees", "Plane_Latitude", func(p *PlaneState) *float64 { return &p.PlaneLatitude }),
	floatField("PLANE LONGITUDE", "Degrees", "Plane_Longitude", func(p *PlaneState) *float64 { return &p.PlaneLongitude }),
	boolField("PROP DEICE SWITCH:1", "Prop_Deice_Switch", func(p *PlaneState) *bool { return &p.PropDeiceSwitch }),
	intField("PUSHBACK STATE", "Enum", "Pushback_State", func(p *PlaneState) *int32 { return &p.PushbackState }),
	boolField("SIM ON GROUND", "Sim_On_Ground", func(p *PlaneState) *bool { return &p.SimOnGround }),
	boolField("SPOILER AVAILABLE", "Spoiler_Available", func(p *PlaneState) *bool { return &p.SpoilerAvailable }),
	floatField("SPOILERS HANDLE POSITION", "Percent Over 100", "Spoilers_Handle_Position", func(p *PlaneState) *float64 { return &p.SpoilersHandlePosition }),
	boolField("STRUCTURAL DEICE SWITCH", "Structural_Deice_Switch", func(p *PlaneState) *bool { return &p.StructuralDeiceSwitch }),
	stringField("TITLE", "Title", func(p *PlaneState) *string { return &p.Title }),
	boolField("TRANSPONDER AVAILABLE", "Transponder_Available", func(p *PlaneState) *bool { return &p.TransponderAvailable }),
	intField("TRANSPONDER CODE:1", "Hz", "Transponder_Code", func(p *PlaneState) *int32 { return &p.TransponderCode }),
	intField("WATER RUDDER HANDLE POSITION", "Position", "Water_Rudder_Handle_Position", func(p *PlaneState) *int32 { return &p.WaterRudderHandlePosition }),
}

// PlaneStateLayout returns the layout registered under DefinitionPlaneState.
func PlaneStateLayout() Layout {
	fields := make([]FieldSpec, len(planeStateFields))
	for i, f := range planeStateFields {
		fields[i] = f.spec
	}
	return Layout{ID: DefinitionPlaneState, Name: "PlaneState", Fields: fields}
}

// PlaneStateFromSnapshot builds the typed view of a PlaneState snapshot.
func PlaneStateFromSnapshot(s *Snapshot) (PlaneState, error) {
	var p PlaneState
	if s == nil {
		return p, fmt.Errorf("%w: no snapshot", ErrUnknownLayout)
	}
	if s.Definition != DefinitionPlaneState || s.Len() != len(planeStateFields) {
		return p, fmt.Errorf("%w: %s with %d fields is not PlaneState", ErrValueMismatch, s.Definition, s.Len())
	}
	for i, f := range planeStateFields {
		spec, v := s.Field(i)
		if spec.Type != f.spec.Type {
			return p, fmt.Errorf("%w: field %s is %s", ErrValueMismatch, spec.Name, spec.Type)
		}
		f.set(&p, v)
	}
	return p, nil
}

// Fields returns the state as ordered key/value pairs.
func (p PlaneState) Fields() []KeyValue {
	out := make([]KeyValue, len(planeStateFields))
	for i, f := range planeStateFields {
		out[i] = KeyValue{Key: f.key, Value: f.get(&p)}
	}
	return out
}

// Values returns the state in layout order, ready for Layout.Encode.
func (p PlaneState) Values() []Value {
	out := make([]Value, len(planeStateFields))
	for i, f := range planeStateFields {
		out[i] = f.get(&p)
	}
	return out
}
