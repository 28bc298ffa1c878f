package nmt

import "errors"

var (
	ErrInvalidWireState  = errors.New("nmt: invalid wire state code")
	ErrUnhandledEvent    = errors.New("nmt: event has no transition in the current state")
	ErrInvalidNodeAssign = errors.New("nmt: node assignment list is malformed")
)
