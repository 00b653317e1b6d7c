package protocol

import (
	"fmt"
)

// RotationEvent is a single outer-face quarter turn reported by the cube.
type RotationEvent struct {
	FaceCode          byte   // Raw face+direction code (0x00-0x0B)
	CenterOrientation byte   // Center piece orientation
	Clockwise         bool   // As seen looking at the face
	Color             string // Center colour of the turned face
	Face              byte   // U, D, F, B, R or L
}

// BatteryEvent is a battery level notification.
type BatteryEvent struct {
	Level int // 0-100 percentage
}

// Colour index to name, and the face each centre sits on in the cube's
// reference orientation: white up, green front.
var (
	colorNames = [6]string{"blue", "green", "white", "yellow", "red", "orange"}
	colorFaces = [6]byte{'B', 'F', 'U', 'D', 'R', 'L'}
)

// DecodeRotation decodes a rotation payload of [face_dir] [center] pairs.
// Even codes are clockwise, odd codes counter-clockwise.
func DecodeRotation(payload []byte) ([]RotationEvent, error) {
	if len(payload) == 0 || len(payload)%2 != 0 {
		return nil, fmt.Errorf("%w: rotation payload length %d", ErrInvalidPayload, len(payload))
	}

	events := make([]RotationEvent, 0, len(payload)/2)
	for i := 0; i < len(payload); i += 2 {
		code := payload[i]
		idx := code / 2
		if int(idx) >= len(colorNames) {
			return nil, fmt.Errorf("%w: face code 0x%02X", ErrInvalidPayload, code)
		}

		events = append(events, RotationEvent{
			FaceCode:          code,
			CenterOrientation: payload[i+1],
			Clockwise:         code%2 == 0,
			Color:             colorNames[idx],
			Face:              colorFaces[idx],
		})
	}

	return events, nil
}

// DecodeBattery decodes a battery payload.
func DecodeBattery(payload []byte) (*BatteryEvent, error) {
	if len(payload) < 1 {
		return nil, fmt.Errorf("%w: battery payload too short", ErrInvalidPayload)
	}
	return &BatteryEvent{Level: int(payload[0])}, nil
}
