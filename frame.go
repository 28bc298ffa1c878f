package powerlink

// EtherType is the Ethernet EtherType reserved for POWERLINK frames.
const EtherType uint16 = 0x88AB

// MinFrameLength is the minimum length of a complete Ethernet frame; the
// wire codec pads shorter frames with zero bytes up to this length.
const MinFrameLength = 60

// MessageType identifies one of the five POWERLINK basic frame types. It is
// carried in the low 7 bits of POWERLINK byte 0; the top bit is reserved
// and always zero.
type MessageType uint8

const (
	MessageTypeSoC  MessageType = 0x01
	MessageTypePReq MessageType = 0x03
	MessageTypePRes MessageType = 0x04
	MessageTypeSoA  MessageType = 0x05
	MessageTypeASnd MessageType = 0x06
)

func (t MessageType) String() string {
	switch t {
	case MessageTypeSoC:
		return "SoC"
	case MessageTypePReq:
		return "PReq"
	case MessageTypePRes:
		return "PRes"
	case MessageTypeSoA:
		return "SoA"
	case MessageTypeASnd:
		return "ASnd"
	default:
		return "Unknown"
	}
}

// ASndServiceId identifies the service carried by an ASnd frame.
type ASndServiceId uint8

const (
	ServiceIdNone           ASndServiceId = 0
	ServiceIdIdentResponse  ASndServiceId = 1
	ServiceIdStatusResponse ASndServiceId = 2
	ServiceIdNmtRequest     ASndServiceId = 3
	ServiceIdNmtCommand     ASndServiceId = 4
	ServiceIdSdo            ASndServiceId = 5
)

// RequestedService identifies which service the MN is inviting via SoA.
type RequestedService uint8

const (
	RequestedServiceNoService         RequestedService = 0
	RequestedServiceIdentRequest      RequestedService = 1
	RequestedServiceStatusRequest     RequestedService = 2
	RequestedServiceNmtRequestInvite  RequestedService = 3
	RequestedServiceUnspecifiedInvite RequestedService = 4
	RequestedServiceSdo               RequestedService = 5
)

// Frame is the tagged union over the five POWERLINK basic frame types.
// Implementations are SoCFrame, PReqFrame, PResFrame, SoAFrame, ASndFrame.
type Frame interface {
	Type() MessageType
	Destination() NodeId
	Source() NodeId
}

// SoCFrame announces the start of a new isochronous cycle (MN to all,
// multicast MulticastSoC).
type SoCFrame struct {
	Src          NodeId
	Multiplexed  bool // MC: multiplexed cycle completed
	Prescaled    bool // PS: prescaled slot active
	NetTime      NetTime
	RelativeTime RelativeTime
}

func (SoCFrame) Type() MessageType       { return MessageTypeSoC }
func (SoCFrame) Destination() NodeId     { return NodeIdBroadcast }
func (f SoCFrame) Source() NodeId        { return f.Src }

// PReqFrame is the MN's isochronous poll request to a specific CN.
type PReqFrame struct {
	Src            NodeId
	Dest           NodeId
	MultiplexedSlot bool
	ExceptionAck   bool
	Ready          bool
	PdoVersion     uint8
	Payload        []byte
}

func (PReqFrame) Type() MessageType   { return MessageTypePReq }
func (f PReqFrame) Destination() NodeId { return f.Dest }
func (f PReqFrame) Source() NodeId      { return f.Src }

// PResFrame is a CN's (or, in chained mode, the MN's) isochronous response.
type PResFrame struct {
	Src             NodeId
	NmtState        uint8
	ExceptionNew    bool // EN
	ExceptionClear  bool // EC
	Ready           bool // RD
	MultiplexedSlot bool // MS
	Priority        uint8 // PR, 3 bits
	RequestToSend   uint8 // RS, 3 bits
	PdoVersion      uint8
	Payload         []byte
}

func (PResFrame) Type() MessageType   { return MessageTypePRes }
func (PResFrame) Destination() NodeId { return NodeIdBroadcast }
func (f PResFrame) Source() NodeId      { return f.Src }

// SoAFrame starts the asynchronous phase and invites one node to send.
type SoAFrame struct {
	Src                NodeId
	NmtState           uint8
	ExceptionAck       bool // EA
	ExceptionReset     bool // ER
	RequestedService   RequestedService
	RequestedTarget    NodeId
	EplVersion         uint8
}

func (SoAFrame) Type() MessageType   { return MessageTypeSoA }
func (SoAFrame) Destination() NodeId { return NodeIdBroadcast }
func (f SoAFrame) Source() NodeId      { return f.Src }

// ASndFrame carries an asynchronous, service-tagged payload in either
// direction (IdentResponse, StatusResponse, NmtRequest, NmtCommand, SDO).
type ASndFrame struct {
	Src       NodeId
	Dest      NodeId
	ServiceId ASndServiceId
	Payload   []byte
}

func (ASndFrame) Type() MessageType   { return MessageTypeASnd }
func (f ASndFrame) Destination() NodeId { return f.Dest }
func (f ASndFrame) Source() NodeId      { return f.Src }
