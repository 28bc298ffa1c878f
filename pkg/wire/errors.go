// Package wire implements bit-exact serialization and deserialization of
// the five POWERLINK basic frame types (SoC, PReq, PRes, SoA, ASnd) per
// EPSG DS 301 §4.6.1.1.
package wire

import "errors"

var (
	// ErrBufferTooShort is returned when a byte slice is too short to hold
	// the frame's declared header and payload.
	ErrBufferTooShort = errors.New("wire: buffer too short")
	// ErrInvalidEthernetFrame is returned when the EtherType field does not
	// equal powerlink.EtherType (0x88AB).
	ErrInvalidEthernetFrame = errors.New("wire: invalid ethernet frame")
	// ErrInvalidPlFrame is returned when the POWERLINK header is internally
	// inconsistent (e.g. the reserved top bit of the message type is set).
	ErrInvalidPlFrame = errors.New("wire: invalid powerlink frame")
	// ErrInvalidMessageType is returned when the message type byte does not
	// match any of the five known frame types.
	ErrInvalidMessageType = errors.New("wire: invalid message type")
	// ErrInvalidEnumValue is returned when a flag or service-id field
	// decodes to a value outside its defined range.
	ErrInvalidEnumValue = errors.New("wire: invalid enum value")
)
