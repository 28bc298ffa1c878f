package nmt

import (
	"github.com/fabiomolinar/powerlink-rs-sub001/pkg/od"
	"github.com/sirupsen/logrus"
)

// CnMachine is the Controlled Node NMT graph (EPSG fig. 74).
type CnMachine struct {
	state  NmtState
	logger *logrus.Entry
}

// NewCnMachine creates a CN machine at GsOff; call RunInternalInitialisation
// to drive it to NotActive before serving the first frame.
func NewCnMachine(logger *logrus.Logger) *CnMachine {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &CnMachine{state: GsOff, logger: logger.WithField("component", "nmt-cn")}
}

func (m *CnMachine) CurrentState() NmtState { return m.state }

func (m *CnMachine) setState(dict *od.ObjectDictionary, s NmtState) {
	m.state = s
	updateOdState(dict, s, m.logger)
}

// RunInternalInitialisation drives Initialising -> ResetApplication ->
// ResetCommunication -> ResetConfiguration -> NotActive, writing 0x1F8C at
// every step.
func (m *CnMachine) RunInternalInitialisation(dict *od.ObjectDictionary) error {
	for _, s := range []NmtState{GsInitialising, GsResetApplication, GsResetCommunication, GsResetConfiguration, CsNotActive} {
		m.setState(dict, s)
	}
	return nil
}

// enterResetCascade jumps straight to entry and then completes the cascade
// down to NotActive, per "any Reset event enters the corresponding state at
// the deepest level of the reset subtree; then the initialisation cascade
// runs to completion."
func (m *CnMachine) enterResetCascade(dict *od.ObjectDictionary, entry NmtState) error {
	sequence := []NmtState{GsResetApplication, GsResetCommunication, GsResetConfiguration, CsNotActive}
	for i, s := range sequence {
		if s == entry || i > 0 && sequence[i-1] == entry {
			sequence = sequence[i:]
			break
		}
	}
	for _, s := range sequence {
		m.setState(dict, s)
	}
	return nil
}

// ProcessEvent advances the CN graph. Reset events are handled uniformly
// regardless of current state; the remaining transitions are state-specific.
func (m *CnMachine) ProcessEvent(event Event, dict *od.ObjectDictionary) error {
	switch event {
	case EventResetNode:
		return m.enterResetCascade(dict, GsResetApplication)
	case EventResetCommunication:
		return m.enterResetCascade(dict, GsResetCommunication)
	case EventResetConfiguration:
		return m.enterResetCascade(dict, GsResetConfiguration)
	}

	if IsCnCyclicState(m.state) {
		switch event {
		case EventStopNode:
			m.setState(dict, CsStopped)
			return nil
		case EventError:
			m.setState(dict, CsPreOperational1)
			return nil
		}
	}

	switch m.state {
	case CsNotActive:
		switch event {
		case EventEnterEplMode:
			m.setState(dict, CsPreOperational1)
			return nil
		case EventTimeout:
			m.setState(dict, CsBasicEthernet)
			return nil
		}
	case CsBasicEthernet:
		if event == EventEnterEplMode {
			m.setState(dict, CsPreOperational1)
			return nil
		}
	case CsPreOperational1:
		if event == EventSocReceived {
			m.setState(dict, CsPreOperational2)
			return nil
		}
	case CsPreOperational2:
		if event == EventEnableReadyToOperate {
			m.setState(dict, CsReadyToOperate)
			return nil
		}
	case CsReadyToOperate:
		if event == EventStartNode {
			m.setState(dict, CsOperational)
			return nil
		}
	}
	return ErrUnhandledEvent
}
