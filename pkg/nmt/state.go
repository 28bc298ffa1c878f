// Package nmt implements the Network Management state machines for both
// the Managing Node (MN) and Controlled Node (CN) roles: the common
// initialisation/reset cascade, and each role's operational graph.
package nmt

import "fmt"

// NmtState enumerates every NMT state from EPSG DS 301 appendix 3.6. Several
// CN/MN state pairs share the same wire byte (the device's role is known
// out-of-band, so the ambiguity never reaches the wire codec itself); see
// DecodeWireState.
type NmtState uint8

const (
	GsOff NmtState = iota
	GsInitialising
	GsResetApplication
	GsResetCommunication
	GsResetConfiguration

	CsNotActive
	CsPreOperational1
	CsPreOperational2
	CsReadyToOperate
	CsOperational
	CsStopped
	CsBasicEthernet

	MsNotActive
	MsPreOperational1
	MsPreOperational2
	MsReadyToOperate
	MsOperational
	MsBasicEthernet
)

func (s NmtState) String() string {
	switch s {
	case GsOff:
		return "Off"
	case GsInitialising:
		return "Initialising"
	case GsResetApplication:
		return "ResetApplication"
	case GsResetCommunication:
		return "ResetCommunication"
	case GsResetConfiguration:
		return "ResetConfiguration"
	case CsNotActive, MsNotActive:
		return "NotActive"
	case CsPreOperational1, MsPreOperational1:
		return "PreOperational1"
	case CsPreOperational2, MsPreOperational2:
		return "PreOperational2"
	case CsReadyToOperate, MsReadyToOperate:
		return "ReadyToOperate"
	case CsOperational, MsOperational:
		return "Operational"
	case CsStopped:
		return "Stopped"
	case CsBasicEthernet, MsBasicEthernet:
		return "BasicEthernet"
	default:
		return fmt.Sprintf("NmtState(%d)", uint8(s))
	}
}

// WireCode returns the single byte this state occupies on the wire (0x1F8C,
// SoA.NMTState, ASnd.IdentResponse/StatusResponse octet 2, ...).
func (s NmtState) WireCode() uint8 {
	switch s {
	case GsOff:
		return 0x00
	case GsInitialising:
		return 0x19
	case GsResetApplication:
		return 0x29
	case GsResetCommunication:
		return 0x39
	case GsResetConfiguration:
		return 0x79
	case CsNotActive, MsNotActive:
		return 0x1C
	case CsPreOperational1, MsPreOperational1:
		return 0x1D
	case CsPreOperational2, MsPreOperational2:
		return 0x5D
	case CsReadyToOperate, MsReadyToOperate:
		return 0x6D
	case CsOperational, MsOperational:
		return 0xFD
	case CsStopped:
		return 0x4D
	case CsBasicEthernet, MsBasicEthernet:
		return 0x1E
	default:
		return 0xFF
	}
}

// DecodeWireState resolves a wire byte into the role-qualified NmtState;
// isMn selects which of a shared code's two variants (Cs.../Ms...) applies.
func DecodeWireState(code uint8, isMn bool) (NmtState, error) {
	switch code {
	case 0x00:
		return GsOff, nil
	case 0x19:
		return GsInitialising, nil
	case 0x29:
		return GsResetApplication, nil
	case 0x39:
		return GsResetCommunication, nil
	case 0x79:
		return GsResetConfiguration, nil
	case 0x1C:
		if isMn {
			return MsNotActive, nil
		}
		return CsNotActive, nil
	case 0x1D:
		if isMn {
			return MsPreOperational1, nil
		}
		return CsPreOperational1, nil
	case 0x5D:
		if isMn {
			return MsPreOperational2, nil
		}
		return CsPreOperational2, nil
	case 0x6D:
		if isMn {
			return MsReadyToOperate, nil
		}
		return CsReadyToOperate, nil
	case 0xFD:
		if isMn {
			return MsOperational, nil
		}
		return CsOperational, nil
	case 0x4D:
		return CsStopped, nil
	case 0x1E:
		if isMn {
			return MsBasicEthernet, nil
		}
		return CsBasicEthernet, nil
	default:
		return 0, ErrInvalidWireState
	}
}

// IsCnCyclicState reports whether a CN state participates in the DLL cycle
// (the set DLL_CS considers active, per §4.5).
func IsCnCyclicState(s NmtState) bool {
	switch s {
	case CsPreOperational2, CsReadyToOperate, CsOperational, CsStopped:
		return true
	default:
		return false
	}
}
