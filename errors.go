// Package powerlink implements the core of a POWERLINK (EPSG DS 301 v1.5)
// protocol stack: an event-driven, cycle-driven fieldbus engine providing
// both the Managing Node (cycle master) and Controlled Node (polled slave)
// roles. This root package holds the identifiers and addressing types
// shared by every sub-package (wire codec, object dictionary, PDO engine,
// NMT/DLL state machines, SDO layers, MN scheduler, node façade).
package powerlink

import "errors"

// Sentinel errors shared across the engine. Package-specific conditions
// live in their own package (od, wire, dll, sdo); these are the handful
// that are meaningful at the node-façade boundary.
var (
	ErrIllegalArgument = errors.New("illegal argument")
	ErrNotImplemented  = errors.New("not implemented")
)
