package od

import "errors"

var (
	ErrObjectNotFound    = errors.New("od: object not found")
	ErrSubObjectNotFound = errors.New("od: sub-object not found")
	ErrTypeMismatch      = errors.New("od: type mismatch")
	ErrOutOfRange        = errors.New("od: value out of range")
	ErrAccessDenied      = errors.New("od: access denied")
	ErrStorageError      = errors.New("od: storage error")
	ErrPdoMapOverrun     = errors.New("od: pdo mapping exceeds configured payload limit")
	ErrUnsupportedBitMap = errors.New("od: bit-granular pdo mapping is unsupported")
	ErrValidation        = errors.New("od: validation error")
)
