package protocol

import (
	"encoding/binary"
	"fmt"
)

// Frame types for binary data frames sent by the bridge
const (
	FrameTypeObjectData       byte = 0x01
	FrameTypeObjectDataByType byte = 0x02
)

// frameHeaderLen is [type:1][requestID:4][defineID:4]
const frameHeaderLen = 9

// DataFrame is a decoded binary data frame
type DataFrame struct {
	Type      byte
	RequestID uint32
	DefineID  uint32
	Payload   []byte
}

// FrameTypeToString converts a frame type byte to its string representation
func FrameTypeToString(frameType byte) string {
	switch frameType {
	case FrameTypeObjectData:
		return "object_data"
	case FrameTypeObjectDataByType:
		return "object_data_by_type"
	default:
		return "unknown"
	}
}

// EncodeFrame creates a binary frame: [type][requestID][defineID][payload]
func EncodeFrame(frameType byte, requestID, defineID uint32, payload []byte) []byte {
	frame := make([]byte, frameHeaderLen+len(payload))
	frame[0] = frameType

	binary.BigEndian.PutUint32(frame[1:5], requestID)
	binary.BigEndian.PutUint32(frame[5:9], defineID)
	copy(frame[frameHeaderLen:], payload)

	return frame
}

// DecodeFrame parses a binary frame. The payload aliases frame.
func DecodeFrame(frame []byte) (DataFrame, error) {
	if len(frame) < frameHeaderLen {
		return DataFrame{}, fmt.Errorf("frame too short: %d bytes", len(frame))
	}

	f := DataFrame{
		Type:      frame[0],
		RequestID: binary.BigEndian.Uint32(frame[1:5]),
		DefineID:  binary.BigEndian.Uint32(frame[5:9]),
		Payload:   frame[frameHeaderLen:],
	}

	switch f.Type {
	case FrameTypeObjectData, FrameTypeObjectDataByType:
		return f, nil
	default:
		return DataFrame{}, fmt.Errorf("unknown frame type 0x%02x", f.Type)
	}
}
