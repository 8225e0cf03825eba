// Package datadef describes the fixed binary layouts the host fills when it
// answers a data request, and decodes those buffers into snapshots.
//
// A layout is a cross-process contract: the host writes fields packed, in the
// order they were registered, with no type tags. Decoding a buffer with a
// layout whose order or types differ from the registered one does not fail;
// it produces wrong values. Layouts are therefore declared once, statically,
// and the same declaration drives both registration and decoding.
package datadef

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrSizeMismatch  = errors.New("datadef: buffer size does not match layout")
	ErrUnknownLayout = errors.New("datadef: unknown definition")
	ErrValueMismatch = errors.New("datadef: values do not match layout")
	ErrUnknownType   = errors.New("datadef: unknown wire type")
)

// DefinitionID identifies a registered layout on the host.
type DefinitionID uint32

// RequestID correlates an outbound data request with its response.
type RequestID uint32

const (
	DefinitionPlaneState DefinitionID = 0
)

const (
	RequestPlaneState RequestID = 0
)

func (id DefinitionID) String() string {
	if id == DefinitionPlaneState {
		return "PlaneState"
	}
	return fmt.Sprintf("Definition(%d)", uint32(id))
}

func (id RequestID) String() string {
	if id == RequestPlaneState {
		return "PlaneState"
	}
	return fmt.Sprintf("Request(%d)", uint32(id))
}

// WireType is the host data type of one field.
type WireType int

const (
	Int32 WireType = iota
	Float64
	String256
	// Bool travels as an INT32; any non-zero value reads as true.
	Bool
)

const stringSize = 256

// Size is the number of bytes the field occupies in a packed buffer.
func (t WireType) Size() int {
	switch t {
	case Int32, Bool:
		return 4
	case Float64:
		return 8
	case String256:
		return stringSize
	default:
		return 0
	}
}

func (t WireType) String() string {
	switch t {
	case Int32:
		return "INT32"
	case Float64:
		return "FLOAT64"
	case String256:
		return "STRING256"
	case Bool:
		return "INT32(bool)"
	default:
		return "UNKNOWN"
	}
}

// HostType is the data type named when the field is registered. Bool fields
// register as INT32.
func (t WireType) HostType() WireType {
	if t == Bool {
		return Int32
	}
	return t
}

// FieldSpec is one entry of a layout. Unit is empty for unitless fields such
// as strings.
type FieldSpec struct {
	Name string
	Unit string
	Type WireType
}

// Layout is an ordered field list registered under one definition ID.
type Layout struct {
	ID     DefinitionID
	Name   string
	Fields []FieldSpec
}

// Size is the exact length of a buffer filled for this layout.
func (l Layout) Size() int {
	n := 0
	for _, f := range l.Fields {
		n += f.Type.Size()
	}
	return n
}

// Decode reads buf field by field in layout order.
func (l Layout) Decode(buf []byte) (*Snapshot, error) {
	if want := l.Size(); len(buf) != want {
		return nil, fmt.Errorf("%w: %s expects %d bytes, got %d", ErrSizeMismatch, l.ID, want, len(buf))
	}

	values := make([]Value, len(l.Fields))
	off := 0
	for i, f := range l.Fields {
		size := f.Type.Size()
		chunk := buf[off : off+size]
		switch f.Type {
		case Int32:
			values[i] = IntValue(int32(binary.LittleEndian.Uint32(chunk)))
		case Bool:
			values[i] = BoolValue(binary.LittleEndian.Uint32(chunk) != 0)
		case Float64:
			values[i] = FloatValue(math.Float64frombits(binary.LittleEndian.Uint64(chunk)))
		case String256:
			if n := bytes.IndexByte(chunk, 0); n >= 0 {
				chunk = chunk[:n]
			}
			values[i] = StringValue(string(chunk))
		default:
			return nil, fmt.Errorf("%w: field %s", ErrUnknownType, f.Name)
		}
		off += size
	}

	fields := make([]FieldSpec, len(l.Fields))
	copy(fields, l.Fields)
	return &Snapshot{
		Definition: l.ID,
		Received:   time.Now(),
		fields:     fields,
		values:     values,
	}, nil
}

// Encode packs values in layout order, the way the host fills a response.
// Strings longer than 255 bytes are cut so the terminating NUL always fits.
func (l Layout) Encode(values []Value) ([]byte, error) {
	if len(values) != len(l.Fields) {
		return nil, fmt.Errorf("%w: %d fields, %d values", ErrValueMismatch, len(l.Fields), len(values))
	}

	buf := make([]byte, l.Size())
	off := 0
	for i, f := range l.Fields {
		v := values[i]
		if v.Type != f.Type {
			return nil, fmt.Errorf("%w: field %s is %s, value is %s", ErrValueMismatch, f.Name, f.Type, v.Type)
		}
		chunk := buf[off : off+f.Type.Size()]
		switch f.Type {
		case Int32:
			binary.LittleEndian.PutUint32(chunk, uint32(v.i))
		case Bool:
			if v.b {
				binary.LittleEndian.PutUint32(chunk, 1)
			}
		case Float64:
			binary.LittleEndian.PutUint64(chunk, math.Float64bits(v.f))
		case String256:
			s := v.s
			if len(s) > stringSize-1 {
				s = s[:stringSize-1]
			}
			copy(chunk, s)
		default:
			return nil, fmt.Errorf("%w: field %s", ErrUnknownType, f.Name)
		}
		off += f.Type.Size()
	}
	return buf, nil
}
