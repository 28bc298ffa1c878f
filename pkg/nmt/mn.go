package nmt

import (
	"github.com/fabiomolinar/powerlink-rs-sub001/pkg/od"
	"github.com/sirupsen/logrus"
)

// MnMachine is the Managing Node NMT graph (EPSG fig. 73).
type MnMachine struct {
	state  NmtState
	logger *logrus.Entry
}

func NewMnMachine(logger *logrus.Logger) *MnMachine {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &MnMachine{state: GsOff, logger: logger.WithField("component", "nmt-mn")}
}

func (m *MnMachine) CurrentState() NmtState { return m.state }

func (m *MnMachine) setState(dict *od.ObjectDictionary, s NmtState) {
	m.state = s
	updateOdState(dict, s, m.logger)
}

func (m *MnMachine) RunInternalInitialisation(dict *od.ObjectDictionary) error {
	for _, s := range []NmtState{GsInitialising, GsResetApplication, GsResetCommunication, GsResetConfiguration, MsNotActive} {
		m.setState(dict, s)
	}
	return nil
}

func (m *MnMachine) enterResetCascade(dict *od.ObjectDictionary, entry NmtState) error {
	sequence := []NmtState{GsResetApplication, GsResetCommunication, GsResetConfiguration, MsNotActive}
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

// startupBit13Set reads 0x1F80 bit 13 (NMT_StartUp_U32, "no Basic Ethernet
// on NotActive timeout" vs "go to Basic Ethernet").
func startupBit13Set(dict *od.ObjectDictionary) bool {
	v, err := dict.ReadU32(0x1F80, 0)
	if err != nil {
		return false
	}
	return v&(1<<13) != 0
}

// ProcessEvent advances the MN graph.
func (m *MnMachine) ProcessEvent(event Event, dict *od.ObjectDictionary) error {
	switch event {
	case EventResetNode:
		return m.enterResetCascade(dict, GsResetApplication)
	case EventResetCommunication:
		return m.enterResetCascade(dict, GsResetCommunication)
	case EventResetConfiguration:
		return m.enterResetCascade(dict, GsResetConfiguration)
	case EventError:
		if m.state == MsOperational {
			m.setState(dict, MsPreOperational1)
			return nil
		}
	}

	switch m.state {
	case MsNotActive:
		if event == EventTimeout {
			if startupBit13Set(dict) {
				m.setState(dict, MsBasicEthernet)
			} else {
				m.setState(dict, MsPreOperational1)
			}
			return nil
		}
	case MsPreOperational1:
		if event == EventAllCnsIdentified {
			m.setState(dict, MsPreOperational2)
			return nil
		}
	case MsPreOperational2:
		if event == EventConfigurationCompleteCnsReady {
			m.setState(dict, MsReadyToOperate)
			return nil
		}
	case MsReadyToOperate:
		if event == EventAllMandatoryCnsOperational {
			m.setState(dict, MsOperational)
			return nil
		}
	}
	return ErrUnhandledEvent
}
