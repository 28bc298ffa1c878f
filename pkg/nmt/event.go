package nmt

// Event enumerates NMT command and internal-condition triggers (Table 107
// plus the internal conditions the state graphs in §4.4 reference).
type Event uint8

const (
	EventStartNode Event = iota
	EventStopNode
	EventEnterPreOperational2
	EventEnableReadyToOperate
	EventResetNode
	EventResetCommunication
	EventResetConfiguration
	// EventEnterEplMode fires whenever any POWERLINK frame is observed
	// while NotActive or BasicEthernet.
	EventEnterEplMode
	// EventSocReceived fires on a received SoC; it only matters to a CN
	// sitting in PreOperational1.
	EventSocReceived
	EventTimeout
	EventError
	// EventAllCnsIdentified, EventConfigurationCompleteCnsReady and
	// EventAllMandatoryCnsOperational are MN-only internal conditions
	// computed by the scheduler from its CN summary table.
	EventAllCnsIdentified
	EventConfigurationCompleteCnsReady
	EventAllMandatoryCnsOperational
)

func (e Event) String() string {
	switch e {
	case EventStartNode:
		return "StartNode"
	case EventStopNode:
		return "StopNode"
	case EventEnterPreOperational2:
		return "EnterPreOperational2"
	case EventEnableReadyToOperate:
		return "EnableReadyToOperate"
	case EventResetNode:
		return "ResetNode"
	case EventResetCommunication:
		return "ResetCommunication"
	case EventResetConfiguration:
		return "ResetConfiguration"
	case EventEnterEplMode:
		return "EnterEplMode"
	case EventSocReceived:
		return "SocReceived"
	case EventTimeout:
		return "Timeout"
	case EventError:
		return "Error"
	case EventAllCnsIdentified:
		return "AllCnsIdentified"
	case EventConfigurationCompleteCnsReady:
		return "ConfigurationCompleteCnsReady"
	case EventAllMandatoryCnsOperational:
		return "AllMandatoryCnsOperational"
	default:
		return "Event(?)"
	}
}
