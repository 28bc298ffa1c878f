// Package pdo implements PDO packing/unpacking driven by the Object
// Dictionary's mapping tables: fixed-size cyclic payloads exchanged inside
// PReq/PRes frames.
package pdo

import "errors"

var (
	// ErrTypeMismatch mirrors od.ErrTypeMismatch; returned when a mapped
	// entry's OD type does not match its declared mapping length.
	ErrTypeMismatch = errors.New("pdo: mapped entry type/length mismatch")
	// ErrPayloadShort is reported when an incoming RPDO payload is shorter
	// than the highest mapped offset+length requires.
	ErrPayloadShort = errors.New("pdo: payload shorter than mapping requires")
)
