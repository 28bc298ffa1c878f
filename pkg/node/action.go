// Package node composes the wire codec, Object Dictionary, NMT state
// machines, DLL error accounting, SDO server, PDO engine, and (for the
// Managing Node) the cycle scheduler into the two host-facing façades
// spec.md §4.9 names: ControlledNode and ManagingNode. Both share the
// single-threaded, cooperative contract of §5 — every call advances state
// and returns at most one NodeAction; the host performs the actual I/O.
package node

import pl "github.com/fabiomolinar/powerlink-rs-sub001"

// ActionKind tags which variant of NodeAction is populated.
type ActionKind uint8

const (
	ActionNone ActionKind = iota
	ActionSendFrame
	ActionSendUdp
)

// NodeAction is the tagged union a façade call returns: nothing to do,
// a frame to place on the wire, or a UDP datagram (the legacy/diagnostic
// asynchronous transport, §6).
type NodeAction struct {
	Kind     ActionKind
	Bytes    []byte
	DestIp   pl.IpAddress
	DestPort uint16
}

func noAction() NodeAction { return NodeAction{Kind: ActionNone} }

func sendFrame(bytes []byte) NodeAction {
	return NodeAction{Kind: ActionSendFrame, Bytes: bytes}
}

func sendUdp(destIp pl.IpAddress, destPort uint16, bytes []byte) NodeAction {
	return NodeAction{Kind: ActionSendUdp, Bytes: bytes, DestIp: destIp, DestPort: destPort}
}
