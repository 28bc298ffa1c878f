// Package sdo implements the Service Data Object layers: an ordered,
// acknowledged sequence layer (connection handshake, retransmission,
// duplicate suppression) carrying a command layer (read/write by index,
// expedited and segmented transfers, abort).
package sdo

import (
	"errors"
	"fmt"

	"github.com/fabiomolinar/powerlink-rs-sub001/pkg/od"
)

// AbortCode is the 32-bit SDO abort code sent in an aborted transaction's
// final response (§4.7, §7).
type AbortCode uint32

const (
	AbortToggleBit         AbortCode = 0x05030000
	AbortTimeout           AbortCode = 0x05040000
	AbortCommandInvalid    AbortCode = 0x05040001
	AbortOutOfMemory       AbortCode = 0x05040005
	AbortUnsupportedAccess AbortCode = 0x06010000
	AbortWriteOnly         AbortCode = 0x06010001
	AbortReadOnly          AbortCode = 0x06010002
	AbortObjectNotFound    AbortCode = 0x06020000
	AbortNoMapping         AbortCode = 0x06040041
	AbortMapLengthExceeded AbortCode = 0x06040042
	AbortGeneralParam      AbortCode = 0x06040043
	AbortHardwareError     AbortCode = 0x06060000
	AbortTypeMismatch      AbortCode = 0x06070010
	AbortDataTooLong       AbortCode = 0x06070012
	AbortDataTooShort      AbortCode = 0x06070013
	AbortSubIndexNotFound  AbortCode = 0x06090011
	AbortValueOutOfRange   AbortCode = 0x06090030
	AbortValueTooHigh      AbortCode = 0x06090031
	AbortValueTooLow       AbortCode = 0x06090032
	AbortResourceNA        AbortCode = 0x060A0023
	AbortGeneralError      AbortCode = 0x08000000
	AbortStorageError      AbortCode = 0x08000022
)

var abortDescriptions = map[AbortCode]string{
	AbortToggleBit:         "toggle bit not altered",
	AbortTimeout:           "SDO protocol timed out",
	AbortCommandInvalid:    "command specifier not valid or unknown",
	AbortOutOfMemory:       "out of memory",
	AbortUnsupportedAccess: "unsupported access to an object",
	AbortWriteOnly:         "attempt to read a write only object",
	AbortReadOnly:          "attempt to write a read only object",
	AbortObjectNotFound:    "object does not exist in the object dictionary",
	AbortNoMapping:         "object cannot be mapped to the PDO",
	AbortMapLengthExceeded: "number and length of mapped objects exceeds PDO length",
	AbortGeneralParam:      "general parameter incompatibility",
	AbortHardwareError:     "access failed due to hardware error",
	AbortTypeMismatch:      "data type does not match",
	AbortDataTooLong:       "data type does not match, length too high",
	AbortDataTooShort:      "data type does not match, length too low",
	AbortSubIndexNotFound:  "sub-index does not exist",
	AbortValueOutOfRange:   "invalid value for parameter",
	AbortValueTooHigh:      "value range of parameter written too high",
	AbortValueTooLow:       "value range of parameter written too low",
	AbortResourceNA:        "resource not available: SDO connection",
	AbortGeneralError:      "general error",
	AbortStorageError:      "data cannot be transferred or stored to the application",
}

func (a AbortCode) Error() string {
	return fmt.Sprintf("x%08x: %s", uint32(a), a.Description())
}

func (a AbortCode) Description() string {
	if d, ok := abortDescriptions[a]; ok {
		return d
	}
	return abortDescriptions[AbortGeneralError]
}

// FromOdError maps an Object Dictionary error to the SDO abort code §7
// prescribes for it.
func FromOdError(err error) AbortCode {
	switch {
	case errors.Is(err, od.ErrObjectNotFound):
		return AbortObjectNotFound
	case errors.Is(err, od.ErrSubObjectNotFound):
		return AbortSubIndexNotFound
	case errors.Is(err, od.ErrTypeMismatch):
		return AbortTypeMismatch
	case errors.Is(err, od.ErrOutOfRange):
		return AbortValueOutOfRange
	case errors.Is(err, od.ErrAccessDenied):
		return AbortUnsupportedAccess
	case errors.Is(err, od.ErrStorageError):
		return AbortStorageError
	case errors.Is(err, od.ErrPdoMapOverrun):
		return AbortMapLengthExceeded
	default:
		return AbortGeneralError
	}
}

var (
	ErrSequenceGap      = errors.New("sdo: sequence gap, retransmission requested")
	ErrConnectionClosed = errors.New("sdo: no established connection")
	ErrFrameTooShort    = errors.New("sdo: frame too short")
	ErrAborted          = errors.New("sdo: transaction aborted")
)
