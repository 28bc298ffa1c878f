package powerlink

import (
	"errors"
	"fmt"
)

// ErrInvalidNodeId is returned by NewNodeId for any value outside the
// ranges defined by EPSG DS 301: 1..=239 for CNs, 240 for the default MN,
// 254 for asynchronous-only management, 255 for broadcast.
var ErrInvalidNodeId = errors.New("powerlink: invalid node id")

// NodeId is a validated 8-bit POWERLINK node identifier.
type NodeId uint8

const (
	NodeIdMinCn      NodeId = 1
	NodeIdMaxCn      NodeId = 239
	NodeIdDefaultMn  NodeId = 240
	NodeIdDiagnostic NodeId = 253
	NodeIdAsync      NodeId = 254
	NodeIdBroadcast  NodeId = 255
)

// NewNodeId validates raw and returns a NodeId, rejecting any value that
// does not correspond to a CN, the default MN, the asynchronous-only
// management id, or broadcast.
func NewNodeId(raw uint8) (NodeId, error) {
	switch {
	case raw >= uint8(NodeIdMinCn) && raw <= uint8(NodeIdMaxCn):
		return NodeId(raw), nil
	case raw == uint8(NodeIdDefaultMn):
		return NodeId(raw), nil
	case raw == uint8(NodeIdAsync):
		return NodeId(raw), nil
	case raw == uint8(NodeIdBroadcast):
		return NodeId(raw), nil
	default:
		return 0, fmt.Errorf("%w: x%02x", ErrInvalidNodeId, raw)
	}
}

// IsCn reports whether n identifies a controlled node (1..=239).
func (n NodeId) IsCn() bool {
	return n >= NodeIdMinCn && n <= NodeIdMaxCn
}

// IsBroadcast reports whether n is the broadcast node id (255).
func (n NodeId) IsBroadcast() bool {
	return n == NodeIdBroadcast
}

func (n NodeId) String() string {
	return fmt.Sprintf("x%02X", uint8(n))
}
