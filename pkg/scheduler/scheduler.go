// Package scheduler implements the Managing Node's cycle driver: SoC,
// round-robin isochronous polling with per-CN PRes timeouts, asynchronous
// slot arbitration from a priority queue, and PreOperational1's reduced
// (SoA/ASnd-only) cycle.
package scheduler

import (
	pl "github.com/fabiomolinar/powerlink-rs-sub001"
	"github.com/fabiomolinar/powerlink-rs-sub001/pkg/dll"
	"github.com/sirupsen/logrus"
)

// Phase is the scheduler's current position within one MN cycle (§4.8).
type Phase uint8

const (
	Idle Phase = iota
	SoCSent
	IsochronousPReq
	IsochronousDone
	AsynchronousSoA
	AwaitingMnAsyncSend
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "Idle"
	case SoCSent:
		return "SoCSent"
	case IsochronousPReq:
		return "IsochronousPReq"
	case IsochronousDone:
		return "IsochronousDone"
	case AsynchronousSoA:
		return "AsynchronousSoA"
	case AwaitingMnAsyncSend:
		return "AwaitingMnAsyncSend"
	default:
		return "Phase(?)"
	}
}

// IsoNode is one entry of the ordered isochronous node list: the set of
// configured CNs the MN polls with PReq every cycle. Active reflects
// whether the node is currently in a cyclic NMT state (Identified through
// Operational) and is set by the caller — Stopped/Missing nodes are
// marked inactive and skipped without consuming a PReq/PRes slot.
type IsoNode struct {
	NodeId        pl.NodeId
	Active        bool
	PResTimeoutUs uint32 // from 0x1F92/n
}

// PayloadProvider supplies a PReq frame's outgoing payload for a given
// target node (the node's mapped RPDO data); a nil provider sends an
// empty payload.
type PayloadProvider func(nodeId pl.NodeId) []byte

// Scheduler drives one MN's cycle. It holds no network I/O: every Tick
// call returns at most one frame to send, per the façade's cooperative
// single-call contract (spec.md §5); the host/façade performs the actual
// send and feeds received PRes/ASnd frames back via OnPresReceived/
// OnAsndReceived.
type Scheduler struct {
	mnNodeId    pl.NodeId
	cycleTimeUs uint64
	nextCycle   uint64
	reduced     bool // PreOp1: skip SoC + isochronous loop

	phase       Phase
	isoList     []IsoNode
	isoIndex    int
	awaiting    pl.NodeId
	hasAwaiting bool

	presDeadline    uint64
	hasPresDeadline bool

	asyncDeadline    uint64
	hasAsyncDeadline bool
	asyncTimeoutUs   uint64

	queue         asyncQueue
	identPointer  int
	statusPointer int

	accounting *dll.Accounting
	payload    PayloadProvider

	nmtStateCode uint8
	eplVersion   uint8

	logger *logrus.Entry
}

// NewScheduler creates a Scheduler for mnNodeId, polling isoList every
// cycleTimeUs microseconds. accounting receives LossOfPres reports;
// logger may be nil.
func NewScheduler(mnNodeId pl.NodeId, cycleTimeUs uint64, isoList []IsoNode, accounting *dll.Accounting, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Scheduler{
		mnNodeId:       mnNodeId,
		cycleTimeUs:    cycleTimeUs,
		isoList:        isoList,
		accounting:     accounting,
		asyncTimeoutUs: cycleTimeUs,
		eplVersion:     0x20,
		logger:         logger.WithField("component", "scheduler"),
	}
}

// SetIsoList replaces the ordered isochronous node list (e.g. after
// 0x1F81/0x1F92 reconfiguration).
func (s *Scheduler) SetIsoList(list []IsoNode) { s.isoList = list }

// SetReduced toggles PreOperational1's reduced cycle (SoA/ASnd only).
func (s *Scheduler) SetReduced(reduced bool) { s.reduced = reduced }

// SetNmtState sets the wire-code NMT state this MN advertises in SoA.
func (s *Scheduler) SetNmtState(code uint8) { s.nmtStateCode = code }

// SetPayloadProvider installs the callback supplying each PReq's payload.
func (s *Scheduler) SetPayloadProvider(p PayloadProvider) { s.payload = p }

// SetNextCycleStart pins the next cycle trigger time; used once at
// startup to align the first cycle (thereafter Tick derives it from
// cycleTimeUs itself).
func (s *Scheduler) SetNextCycleStart(t uint64) { s.nextCycle = t }

// Phase reports the scheduler's current cycle phase, mainly for diagnostics.
func (s *Scheduler) Phase() Phase { return s.phase }

// PushAsyncRequest enqueues a pending asynchronous-slot invitation.
func (s *Scheduler) PushAsyncRequest(req AsyncRequest) { s.queue.push(req) }

// NextActionTime reports the next time Tick should be called to make
// forward progress: the cycle trigger, or an outstanding PRes/ASnd
// deadline, whichever is sooner.
func (s *Scheduler) NextActionTime() uint64 {
	next := s.nextCycle
	if s.hasPresDeadline && s.presDeadline < next {
		next = s.presDeadline
	}
	if s.hasAsyncDeadline && s.asyncDeadline < next {
		next = s.asyncDeadline
	}
	return next
}

// OnPresReceived clears the outstanding PRes timeout for nodeId if it
// matches the node currently being polled.
func (s *Scheduler) OnPresReceived(nodeId pl.NodeId) {
	if s.hasAwaiting && s.awaiting == nodeId {
		s.hasPresDeadline = false
		s.hasAwaiting = false
	}
}

// OnAsndReceived clears the outstanding async-slot deadline, ending the
// asynchronous phase and returning the scheduler to Idle.
func (s *Scheduler) OnAsndReceived() {
	if s.phase == AwaitingMnAsyncSend {
		s.hasAsyncDeadline = false
		s.phase = Idle
	}
}

// Tick advances the scheduler by at most one step and returns the frame
// to send, if any, plus any NmtActions the step's DLL error accounting
// produced (e.g. a PRes timeout breaching the LossOfPres threshold).
func (s *Scheduler) Tick(now uint64) (pl.Frame, []dll.NmtAction) {
	switch s.phase {
	case Idle:
		return s.startCycle(now)
	case IsochronousPReq:
		return s.advanceIsochronous(now)
	case IsochronousDone:
		return s.beginAsyncPhase(now)
	case AwaitingMnAsyncSend:
		if s.hasAsyncDeadline && now >= s.asyncDeadline {
			s.hasAsyncDeadline = false
			s.phase = Idle
		}
		return nil, nil
	default:
		return nil, nil
	}
}

func (s *Scheduler) startCycle(now uint64) (pl.Frame, []dll.NmtAction) {
	if now < s.nextCycle {
		return nil, nil
	}
	s.nextCycle = now + s.cycleTimeUs
	if s.accounting != nil {
		s.accounting.TickErrorFreeCycle()
	}
	if s.reduced {
		s.phase = IsochronousDone
		return s.beginAsyncPhase(now)
	}
	s.isoIndex = 0
	s.phase = SoCSent
	frame := pl.SoCFrame{Src: s.mnNodeId}
	s.phase = IsochronousPReq
	return frame, nil
}

func (s *Scheduler) advanceIsochronous(now uint64) (pl.Frame, []dll.NmtAction) {
	var actions []dll.NmtAction
	if s.hasPresDeadline && now >= s.presDeadline {
		s.hasPresDeadline = false
		if s.accounting != nil {
			if action := s.accounting.RecordOccurrence(dll.LossOfPres, s.awaiting); action != nil {
				actions = append(actions, *action)
			}
		}
		s.hasAwaiting = false
	}
	if s.hasAwaiting {
		// Still waiting on the current node's PRes; nothing to send yet.
		return nil, actions
	}
	for s.isoIndex < len(s.isoList) {
		node := s.isoList[s.isoIndex]
		s.isoIndex++
		if !node.Active {
			continue
		}
		var payload []byte
		if s.payload != nil {
			payload = s.payload(node.NodeId)
		}
		s.awaiting = node.NodeId
		s.hasAwaiting = true
		s.presDeadline = now + uint64(node.PResTimeoutUs)
		s.hasPresDeadline = true
		return pl.PReqFrame{Src: s.mnNodeId, Dest: node.NodeId, Payload: payload}, actions
	}
	s.phase = IsochronousDone
	return nil, actions
}

func (s *Scheduler) beginAsyncPhase(now uint64) (pl.Frame, []dll.NmtAction) {
	_, service, target := s.nextAsyncInvite()
	s.phase = AsynchronousSoA
	soa := pl.SoAFrame{
		Src:              s.mnNodeId,
		NmtState:         s.nmtStateCode,
		RequestedService: service,
		RequestedTarget:  target,
		EplVersion:       s.eplVersion,
	}
	s.asyncDeadline = now + s.asyncTimeoutUs
	s.hasAsyncDeadline = true
	s.phase = AwaitingMnAsyncSend
	return soa, nil
}

// nextAsyncInvite pops the highest-priority queued request, falling back
// to an IdentRequest round-robin over unidentified CNs (PreOp1 helper) or
// a StatusRequest round-robin otherwise (§4.8 step 3).
func (s *Scheduler) nextAsyncInvite() (AsyncRequest, pl.RequestedService, pl.NodeId) {
	if req, ok := s.queue.pop(); ok {
		return req, req.Service, req.NodeId
	}
	if len(s.isoList) == 0 {
		return AsyncRequest{}, pl.RequestedServiceNoService, pl.NodeIdBroadcast
	}
	if s.reduced {
		node := s.nextRoundRobin(&s.identPointer, func(n IsoNode) bool { return !n.Active })
		return AsyncRequest{}, pl.RequestedServiceIdentRequest, node
	}
	node := s.nextRoundRobin(&s.statusPointer, func(n IsoNode) bool { return n.Active })
	return AsyncRequest{}, pl.RequestedServiceStatusRequest, node
}

func (s *Scheduler) nextRoundRobin(pointer *int, match func(IsoNode) bool) pl.NodeId {
	n := len(s.isoList)
	for i := 0; i < n; i++ {
		idx := (*pointer + i) % n
		node := s.isoList[idx]
		if match(node) {
			*pointer = idx + 1
			return node.NodeId
		}
	}
	*pointer = 0
	return pl.NodeIdBroadcast
}
