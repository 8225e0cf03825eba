package datadef

import (
	"strconv"
	"time"
)

// Value is one decoded field.
type Value struct {
	Type WireType
	i    int32
	f    float64
	s    string
	b    bool
}

func IntValue(v int32) Value     { return Value{Type: Int32, i: v} }
func FloatValue(v float64) Value { return Value{Type: Float64, f: v} }
func StringValue(v string) Value { return Value{Type: String256, s: v} }
func BoolValue(v bool) Value     { return Value{Type: Bool, b: v} }

// Int32 returns the value of an Int32 field, or 1/0 for a Bool field.
func (v Value) Int32() int32 {
	if v.Type == Bool {
		if v.b {
			return 1
		}
		return 0
	}
	return v.i
}

func (v Value) Float64() float64 { return v.f }
func (v Value) Bool() bool       { return v.b }
func (v Value) Str() string      { return v.s }

// Interface returns the value as a plain Go value for generic export.
func (v Value) Interface() any {
	switch v.Type {
	case Int32:
		return v.i
	case Float64:
		return v.f
	case String256:
		return v.s
	case Bool:
		return v.b
	default:
		return nil
	}
}

func (v Value) String() string {
	switch v.Type {
	case Int32:
		return strconv.FormatInt(int64(v.i), 10)
	case Float64:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case String256:
		return v.s
	case Bool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

// Snapshot is one decoded response. It is never modified after Decode returns.
type Snapshot struct {
	Definition DefinitionID
	Received   time.Time

	fields []FieldSpec
	values []Value
}

// Len is the number of fields.
func (s *Snapshot) Len() int {
	return len(s.values)
}

// Field returns the i-th field spec and its value.
func (s *Snapshot) Field(i int) (FieldSpec, Value) {
	return s.fields[i], s.values[i]
}

// Lookup finds a field by its host name.
func (s *Snapshot) Lookup(name string) (Value, bool) {
	for i, f := range s.fields {
		if f.Name == name {
			return s.values[i], true
		}
	}
	return Value{}, false
}

// Values returns a copy of the decoded values in layout order.
func (s *Snapshot) Values() []Value {
	out := make([]Value, len(s.values))
	copy(out, s.values)
	return out
}
