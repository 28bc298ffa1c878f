package nmt

import (
	"github.com/fabiomolinar/powerlink-rs-sub001/pkg/od"
	"github.com/sirupsen/logrus"
)

// NmtCurrentStateIndex is 0x1F8C, the engine-written mirror of the live
// NMT state; every transition updates it before returning.
const NmtCurrentStateIndex uint16 = 0x1F8C

// StateMachine is the interface both role graphs implement.
type StateMachine interface {
	CurrentState() NmtState
	ProcessEvent(event Event, dict *od.ObjectDictionary) error
	RunInternalInitialisation(dict *od.ObjectDictionary) error
}

// updateOdState mirrors the new state's wire code into 0x1F8C; this is an
// engine-origin, access-bypassing write (the application never writes
// 0x1F8C directly).
func updateOdState(dict *od.ObjectDictionary, s NmtState, logger *logrus.Entry) {
	err := dict.WriteInternal(NmtCurrentStateIndex, 0, od.NewU8(s.WireCode()), true)
	if err != nil && logger != nil {
		logger.WithError(err).WithField("state", s.String()).Warn("failed to mirror nmt state into od")
	}
}
