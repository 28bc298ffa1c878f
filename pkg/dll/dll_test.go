package dll

import (
	"testing"

	pl "github.com/fabiomolinar/powerlink-rs-sub001"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCnCycleHappyPath(t *testing.T) {
	c := NewCnCycle()
	c.SetActive(true)
	assert.Equal(t, WaitSoc, c.State())

	errs := c.Process(EventSoc)
	assert.Empty(t, errs)
	assert.Equal(t, WaitPReq, c.State())

	errs = c.Process(EventPreq)
	assert.Empty(t, errs)
	assert.Equal(t, WaitSoA, c.State())

	errs = c.Process(EventSoa)
	assert.Empty(t, errs)
	assert.Equal(t, WaitSoc, c.State())
}

func TestCnCycleSocTimeoutFromWaitPReqReportsBothErrors(t *testing.T) {
	c := NewCnCycle()
	c.SetActive(true)
	c.Process(EventSoc) // -> WaitPReq
	require.Equal(t, WaitPReq, c.State())

	errs := c.Process(EventSocTimeout)
	assert.ElementsMatch(t, []ErrorKind{LossOfSoc, LossOfSoa}, errs)
	assert.Equal(t, WaitSoc, c.State())
}

func TestCnCyclePresCrossTrafficInWaitPReqNoStateChange(t *testing.T) {
	c := NewCnCycle()
	c.SetActive(true)
	c.Process(EventSoc) // -> WaitPReq
	errs := c.Process(EventPres)
	assert.Empty(t, errs)
	assert.Equal(t, WaitPReq, c.State())
}

func TestCnCycleIgnoresEventsWhenNonCyclic(t *testing.T) {
	c := NewCnCycle()
	errs := c.Process(EventSoc)
	assert.Nil(t, errs)
	assert.Equal(t, NonCyclic, c.State())
}

func TestAccountingBreachAt16ResetsAndEmitsAction(t *testing.T) {
	a := NewAccounting(nil)
	node := pl.NodeId(42)

	action := a.RecordOccurrence(LossOfSoc, 0)
	assert.Nil(t, action)
	assert.Equal(t, 8, a.Value(LossOfSoc, 0))

	action = a.RecordOccurrence(LossOfSoc, 0)
	require.NotNil(t, action)
	assert.Equal(t, ActionResetCommunication, action.Kind)
	assert.Equal(t, 0, a.Value(LossOfSoc, 0))

	action = a.RecordOccurrence(LossOfPres, node)
	assert.Nil(t, action)
	action = a.RecordOccurrence(LossOfPres, node)
	require.NotNil(t, action)
	assert.Equal(t, ActionResetNode, action.Kind)
	assert.Equal(t, node, action.NodeId)
}

func TestAccountingErrorFreeCycleDecrementsSaturating(t *testing.T) {
	a := NewAccounting(nil)
	a.RecordOccurrence(LossOfSoc, 0)
	assert.Equal(t, 8, a.Value(LossOfSoc, 0))
	a.TickErrorFreeCycle()
	assert.Equal(t, 7, a.Value(LossOfSoc, 0))
	for i := 0; i < 10; i++ {
		a.TickErrorFreeCycle()
	}
	assert.Equal(t, 0, a.Value(LossOfSoc, 0))
}

func TestAccountingLossOfLinkNeverEscalates(t *testing.T) {
	a := NewAccounting(nil)
	for i := 0; i < 100; i++ {
		action := a.RecordOccurrence(LossOfLink, 0)
		assert.Nil(t, action)
	}
}

func TestMnCycleIsochronousRoundRobinThenSoaThenAsnd(t *testing.T) {
	c := NewMnCycle()
	c.SetActive(true)
	assert.Equal(t, MnWaitSocTrig, c.State())

	c.CycleTriggered()
	assert.Equal(t, MnWaitPres, c.State())

	c.PResReceivedOrTimedOut(true) // another CN pending
	assert.Equal(t, MnWaitPres, c.State())

	c.PResReceivedOrTimedOut(false) // last CN done
	assert.Equal(t, MnWaitSoa, c.State())

	c.SoASent(true)
	assert.Equal(t, MnWaitAsnd, c.State())

	c.AsndReceivedOrTimedOut()
	assert.Equal(t, MnWaitSocTrig, c.State())
}

func TestMnCycleSkipsAsndWhenNotGranted(t *testing.T) {
	c := NewMnCycle()
	c.SetActive(true)
	c.CycleTriggered()
	c.PResReceivedOrTimedOut(false)
	c.SoASent(false)
	assert.Equal(t, MnWaitSocTrig, c.State())
}
