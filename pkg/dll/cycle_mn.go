package dll

// MnCycleState is the DLL_MS cycle state. Unlike the CN side, the MN
// drives the cycle itself (it decides when to send each frame), so its
// state machine is advanced by explicit calls from the scheduler rather
// than by a fixed event table.
type MnCycleState uint8

const (
	MnNonCyclic MnCycleState = iota
	MnWaitSocTrig
	MnWaitPres
	MnWaitAsnd
	MnWaitSoa
)

func (s MnCycleState) String() string {
	switch s {
	case MnNonCyclic:
		return "NonCyclic"
	case MnWaitSocTrig:
		return "WaitSocTrig"
	case MnWaitPres:
		return "WaitPres"
	case MnWaitAsnd:
		return "WaitAsnd"
	case MnWaitSoa:
		return "WaitSoa"
	default:
		return "MnCycleState(?)"
	}
}

// MnCycle drives the MN's DLL_MS state machine; the scheduler (§4.8) calls
// these transitions as it walks SoC -> PReq/PRes round-robin -> SoA -> ASnd.
type MnCycle struct {
	state MnCycleState
}

func NewMnCycle() *MnCycle { return &MnCycle{state: MnNonCyclic} }

func (c *MnCycle) State() MnCycleState { return c.state }

func (c *MnCycle) SetActive(active bool) {
	if active {
		if c.state == MnNonCyclic {
			c.state = MnWaitSocTrig
		}
		return
	}
	c.state = MnNonCyclic
}

// CycleTriggered is called once the scheduler decides it is time to start a
// new cycle (SoC about to be sent).
func (c *MnCycle) CycleTriggered() {
	if c.state == MnWaitSocTrig {
		c.state = MnWaitPres
	}
}

// PResReceivedOrTimedOut is called after the scheduler has sent a PReq to
// the current isochronous CN and either received its PRes or timed out.
// moreIsochronous indicates whether another CN is still pending this cycle.
func (c *MnCycle) PResReceivedOrTimedOut(moreIsochronous bool) {
	if c.state != MnWaitPres {
		return
	}
	if moreIsochronous {
		return // stay in WaitPres for the next CN in round-robin
	}
	c.state = MnWaitSoa
}

// SoASent is called once the scheduler has emitted the cycle's SoA.
func (c *MnCycle) SoASent(asndGranted bool) {
	if c.state != MnWaitSoa {
		return
	}
	if asndGranted {
		c.state = MnWaitAsnd
		return
	}
	c.state = MnWaitSocTrig
}

// AsndReceivedOrTimedOut closes out the async slot and returns the machine
// to waiting for the next cycle trigger.
func (c *MnCycle) AsndReceivedOrTimedOut() {
	if c.state == MnWaitAsnd {
		c.state = MnWaitSocTrig
	}
}
