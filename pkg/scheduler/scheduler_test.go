package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pl "github.com/fabiomolinar/powerlink-rs-sub001"
	"github.com/fabiomolinar/powerlink-rs-sub001/pkg/dll"
)

func TestCycleTriggerEmitsSoCThenPReqPerNode(t *testing.T) {
	acc := dll.NewAccounting(nil)
	iso := []IsoNode{
		{NodeId: 1, Active: true, PResTimeoutUs: 200},
		{NodeId: 2, Active: true, PResTimeoutUs: 200},
	}
	s := NewScheduler(pl.NodeIdDefaultMn, 1000, iso, acc, nil)
	s.SetNextCycleStart(1000)

	frame, actions := s.Tick(2000)
	require.Nil(t, actions)
	soc, ok := frame.(pl.SoCFrame)
	require.True(t, ok)
	assert.Equal(t, pl.NodeIdDefaultMn, soc.Src)
	assert.Equal(t, IsochronousPReq, s.Phase())

	frame, _ = s.Tick(2000)
	preq, ok := frame.(pl.PReqFrame)
	require.True(t, ok)
	assert.Equal(t, pl.NodeId(1), preq.Dest)

	s.OnPresReceived(1)
	frame, _ = s.Tick(2010)
	preq, ok = frame.(pl.PReqFrame)
	require.True(t, ok)
	assert.Equal(t, pl.NodeId(2), preq.Dest)
}

func TestPResTimeoutIncrementsLossOfPresByEight(t *testing.T) {
	acc := dll.NewAccounting(nil)
	iso := []IsoNode{{NodeId: 1, Active: true, PResTimeoutUs: 100}}
	s := NewScheduler(pl.NodeIdDefaultMn, 1000, iso, acc, nil)
	s.SetNextCycleStart(1000)

	s.Tick(2000)            // SoC
	s.Tick(2000)             // PReq to node 1, deadline = 2100

	_, actions := s.Tick(2200) // past the timeout, no PRes arrived
	assert.Equal(t, 8, acc.Value(dll.LossOfPres, 1))
	assert.Nil(t, actions) // below DefaultThreshold, no escalation yet
}

func TestReducedCycleSkipsSoCAndIsochronousLoop(t *testing.T) {
	iso := []IsoNode{{NodeId: 7, Active: false}} // not yet identified
	s := NewScheduler(pl.NodeIdDefaultMn, 1000, iso, nil, nil)
	s.SetReduced(true)
	s.SetNextCycleStart(1000)

	frame, _ := s.Tick(2000)
	soa, ok := frame.(pl.SoAFrame)
	require.True(t, ok)
	assert.Equal(t, pl.RequestedServiceIdentRequest, soa.RequestedService)
	assert.Equal(t, AwaitingMnAsyncSend, s.Phase())
}

func TestAsyncQueuePreferredOverRoundRobinDefault(t *testing.T) {
	iso := []IsoNode{{NodeId: 5, Active: true, PResTimeoutUs: 100}}
	s := NewScheduler(pl.NodeIdDefaultMn, 1000, iso, nil, nil)
	s.SetNextCycleStart(1000)
	s.PushAsyncRequest(AsyncRequest{NodeId: 5, Priority: 7, Service: pl.RequestedServiceNmtRequestInvite})

	s.Tick(2000)               // SoC
	s.Tick(2000)                // PReq to node 5
	s.OnPresReceived(5)
	s.Tick(2000)                // isochronous loop exhausted -> IsochronousDone
	frame, _ := s.Tick(2000)    // async phase
	soa, ok := frame.(pl.SoAFrame)
	require.True(t, ok)
	assert.Equal(t, pl.RequestedServiceNmtRequestInvite, soa.RequestedService)
	assert.Equal(t, pl.NodeId(5), soa.RequestedTarget)
}
