package node

import (
	pl "github.com/fabiomolinar/powerlink-rs-sub001"
	"github.com/fabiomolinar/powerlink-rs-sub001/pkg/dll"
	"github.com/fabiomolinar/powerlink-rs-sub001/pkg/nmt"
	"github.com/fabiomolinar/powerlink-rs-sub001/pkg/od"
	"github.com/fabiomolinar/powerlink-rs-sub001/pkg/scheduler"
	"github.com/fabiomolinar/powerlink-rs-sub001/pkg/sdo"
	"github.com/fabiomolinar/powerlink-rs-sub001/pkg/wire"
	"github.com/sirupsen/logrus"
)

// ManagingNode is the MN-role façade: OD + NMT(MN) + DLL accounting + the
// cycle scheduler + SDO server (serving configuration tools and CNs that
// address the MN directly), driven one call at a time.
type ManagingNode struct {
	selfNodeId pl.NodeId
	selfMac    pl.MacAddress
	peerMacs   map[pl.NodeId]pl.MacAddress

	dict       *od.ObjectDictionary
	nmtMachine *nmt.MnMachine
	accounting *dll.Accounting
	sched      *scheduler.Scheduler
	sdoServer  *sdo.Server

	logger *logrus.Entry
}

// NewManagingNode builds an MN façade. isoList is the ordered isochronous
// node list (0x1F81/0x1F92-derived); cycleTimeUs is 0x1006.
func NewManagingNode(selfNodeId pl.NodeId, selfMac pl.MacAddress, dict *od.ObjectDictionary, isoList []scheduler.IsoNode, cycleTimeUs uint64, extended sdo.ExtendedHandler, logger *logrus.Logger) *ManagingNode {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	accounting := dll.NewAccounting(logger)
	n := &ManagingNode{
		selfNodeId: selfNodeId,
		selfMac:    selfMac,
		peerMacs:   map[pl.NodeId]pl.MacAddress{},
		dict:       dict,
		nmtMachine: nmt.NewMnMachine(logger),
		accounting: accounting,
		sched:      scheduler.NewScheduler(selfNodeId, cycleTimeUs, isoList, accounting, logger),
		sdoServer:  sdo.NewServer(dict, extended, logger),
		logger:     logger.WithField("component", "mn-node"),
	}
	_ = n.nmtMachine.RunInternalInitialisation(dict)
	return n
}

// SetPeerMac registers the Ethernet address a CN's unicast PReq/ASnd
// traffic must target; resolving NodeId -> MAC is a host/façade concern
// spec.md §6 leaves unspecified (ARP, static table, or out-of-band
// commissioning are all valid hosts for this mapping).
func (n *ManagingNode) SetPeerMac(nodeId pl.NodeId, mac pl.MacAddress) {
	n.peerMacs[nodeId] = mac
}

// NmtState reports the MN's current NMT state.
func (n *ManagingNode) NmtState() nmt.NmtState { return n.nmtMachine.CurrentState() }

func (n *ManagingNode) addr(dest pl.MacAddress) wire.Addressing {
	return wire.Addressing{DestMac: dest, SrcMac: n.selfMac}
}

// ProcessRawFrame decodes one received buffer and returns at most one
// action in response.
func (n *ManagingNode) ProcessRawFrame(buffer []byte, now uint64) NodeAction {
	f, err := wire.DeserializeFrame(buffer)
	if err != nil {
		n.logger.WithError(err).Debug("dropped undecodable frame")
		return noAction()
	}

	switch frame := f.(type) {
	case pl.SoCFrame:
		return n.onForeignSoC(frame)
	case pl.PResFrame:
		return n.onPRes(frame, now)
	case pl.ASndFrame:
		return n.onASnd(frame, now)
	default:
		return noAction()
	}
}

// onForeignSoC handles an SoC this MN did not itself emit: another device
// claiming the MN role on the same segment (§4.8: "An MN detecting
// another MN's SoC (address conflict) reports MultipleMn and NMT-errors").
func (n *ManagingNode) onForeignSoC(f pl.SoCFrame) NodeAction {
	if f.Src == n.selfNodeId {
		return noAction()
	}
	if action := n.accounting.RecordOccurrence(dll.MultipleMn, f.Src); action != nil {
		n.applyNmtAction(*action)
	} else {
		_ = n.nmtMachine.ProcessEvent(nmt.EventError, n.dict)
	}
	return noAction()
}

func (n *ManagingNode) onPRes(f pl.PResFrame, now uint64) NodeAction {
	n.sched.OnPresReceived(f.Src)
	return noAction()
}

func (n *ManagingNode) onASnd(f pl.ASndFrame, now uint64) NodeAction {
	switch f.ServiceId {
	case pl.ServiceIdIdentResponse, pl.ServiceIdStatusResponse, pl.ServiceIdNmtRequest:
		n.sched.OnAsndReceived()
		return noAction()
	case pl.ServiceIdSdo:
		n.sched.OnAsndReceived()
		resp, err := n.sdoServer.HandleFrame(f.Src, f.Payload, now)
		if resp == nil {
			if err != nil {
				n.logger.WithError(err).Debug("sdo frame produced no response")
			}
			return noAction()
		}
		return n.sendAsnd(f.Src, pl.ServiceIdSdo, resp)
	default:
		return noAction()
	}
}

// Tick advances the scheduler and SDO server by at most one step.
func (n *ManagingNode) Tick(now uint64) NodeAction {
	for _, pending := range n.sdoServer.Tick(now) {
		return n.sendAsnd(pending.Peer, pl.ServiceIdSdo, pending.Payload)
	}

	n.sched.SetNmtState(n.nmtMachine.CurrentState().WireCode())
	frame, actions := n.sched.Tick(now)
	for _, action := range actions {
		n.applyNmtAction(action)
	}
	if frame == nil {
		return noAction()
	}
	switch v := frame.(type) {
	case pl.SoCFrame:
		return n.serialize(v, n.addr(pl.MulticastSoC))
	case pl.PReqFrame:
		return n.serialize(v, n.addr(n.peerMacs[v.Dest]))
	case pl.SoAFrame:
		return n.serialize(v, n.addr(pl.MulticastSoA))
	default:
		return noAction()
	}
}

// NextActionTime is the scheduler's next deadline (see
// Scheduler.NextActionTime). The SDO server's retransmit deadlines, which
// Tick also services, are not included.
func (n *ManagingNode) NextActionTime() (uint64, bool) {
	return n.sched.NextActionTime(), true
}

func (n *ManagingNode) applyNmtAction(action dll.NmtAction) {
	switch action.Kind {
	case dll.ActionResetCommunication:
		_ = n.nmtMachine.ProcessEvent(nmt.EventResetCommunication, n.dict)
	case dll.ActionResetNode:
		n.logger.WithField("node", action.NodeId).Info("requesting CN reset after threshold breach")
	}
}

func (n *ManagingNode) serialize(f pl.Frame, addr wire.Addressing) NodeAction {
	buf := make([]byte, pl.MinFrameLength+2000)
	nbytes, err := wire.Serialize(buf, f, addr)
	if err != nil {
		n.logger.WithError(err).Warn("failed to serialize outgoing frame")
		return noAction()
	}
	return sendFrame(buf[:nbytes])
}

func (n *ManagingNode) sendAsnd(dest pl.NodeId, svc pl.ASndServiceId, payload []byte) NodeAction {
	f := pl.ASndFrame{Src: n.selfNodeId, Dest: dest, ServiceId: svc, Payload: payload}
	return n.serialize(f, n.addr(n.peerMacs[dest]))
}
