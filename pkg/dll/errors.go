// Package dll implements the Data Link Layer cycle state machines (intra-
// cycle frame-order tracking and loss detection) and the threshold-based
// error accounting that escalates repeated DLL errors into NMT actions.
package dll

import (
	pl "github.com/fabiomolinar/powerlink-rs-sub001"
)

// ErrorKind enumerates the DLL error conditions from §7.
type ErrorKind uint8

const (
	LossOfSoc ErrorKind = iota
	LossOfSoa
	LossOfPreq
	LossOfPres // parametric: carries the CN's NodeId
	LossOfStatusRes
	Crc
	Collision
	SoCJitter
	MultipleMn
	AddressConflict
	UnexpectedEventInState
	PdoMapVersion   // parametric
	PdoPayloadShort // parametric
	LossOfLink      // cumulative statistic, no threshold, never escalates
)

func (k ErrorKind) String() string {
	switch k {
	case LossOfSoc:
		return "LossOfSoc"
	case LossOfSoa:
		return "LossOfSoa"
	case LossOfPreq:
		return "LossOfPreq"
	case LossOfPres:
		return "LossOfPres"
	case LossOfStatusRes:
		return "LossOfStatusRes"
	case Crc:
		return "Crc"
	case Collision:
		return "Collision"
	case SoCJitter:
		return "SoCJitter"
	case MultipleMn:
		return "MultipleMn"
	case AddressConflict:
		return "AddressConflict"
	case UnexpectedEventInState:
		return "UnexpectedEventInState"
	case PdoMapVersion:
		return "PdoMapVersion"
	case PdoPayloadShort:
		return "PdoPayloadShort"
	case LossOfLink:
		return "LossOfLink"
	default:
		return "ErrorKind(?)"
	}
}

// DllError is an occurrence of an error kind, optionally naming the CN it
// concerns (parametric kinds: LossOfPres, LossOfStatusRes, PdoMapVersion,
// PdoPayloadShort).
type DllError struct {
	Kind   ErrorKind
	NodeId pl.NodeId
}

// NmtActionKind is the set of corrective actions error accounting can ask
// the façade to apply.
type NmtActionKind uint8

const (
	ActionNone NmtActionKind = iota
	ActionResetCommunication
	ActionResetNode
)

// NmtAction is emitted by accounting on a threshold breach; NodeId is only
// meaningful for ActionResetNode.
type NmtAction struct {
	Kind   NmtActionKind
	NodeId pl.NodeId
}
