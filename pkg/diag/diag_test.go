package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pl "github.com/fabiomolinar/powerlink-rs-sub001"
	"github.com/fabiomolinar/powerlink-rs-sub001/pkg/dll"
	"github.com/fabiomolinar/powerlink-rs-sub001/pkg/nmt"
	"github.com/fabiomolinar/powerlink-rs-sub001/pkg/od"
)

func TestCollectReadsCountersWhenObjectsPresent(t *testing.T) {
	dict := od.New(nil, nil)
	dict.AddEntry(od.NewRecordEntry(0x1101, "DiagCounters", od.CategoryOptional, od.AccessReadOnly, []od.SubEntrySpec{
		{SubIndex: 1, Name: "CycleCount", Access: od.AccessReadOnly, Value: od.NewU32(0)},
		{SubIndex: 2, Name: "RxCount", Access: od.AccessReadOnly, Value: od.NewU32(0)},
		{SubIndex: 3, Name: "TxCount", Access: od.AccessReadOnly, Value: od.NewU32(0)},
	}))
	require.NoError(t, dict.Init())
	require.NoError(t, dict.WriteInternal(0x1101, 1, od.NewU32(42), true))

	accounting := dll.NewAccounting(nil)
	accounting.RecordOccurrence(dll.LossOfPres, pl.NodeId(7))

	snap := Collect(nmt.MsOperational, []CnSummary{{NodeId: 7, State: nmt.CsOperational}}, accounting, dict)

	assert.Equal(t, uint32(42), snap.Counters.CycleCount)
	require.Len(t, snap.ErrCounters, 1)
	assert.Equal(t, dll.LossOfPres, snap.ErrCounters[0].Kind)
	assert.Equal(t, 8, snap.ErrCounters[0].Value)
	require.Len(t, snap.Cns, 1)
	assert.Equal(t, nmt.CsOperational, snap.Cns[0].State)
}

func TestCollectToleratesMissingObjects(t *testing.T) {
	snap := Collect(nmt.MsNotActive, nil, nil, nil)
	assert.Equal(t, uint32(0), snap.Counters.CycleCount)
	assert.Empty(t, snap.ErrCounters)
}

func TestPublisherIsNonBlockingAndNewestWins(t *testing.T) {
	p := NewPublisher()

	p.Publish(Snapshot{MnState: nmt.MsNotActive})
	p.Publish(Snapshot{MnState: nmt.MsPreOperational1}) // drops the stale slot, keeps this one

	snap, ok := p.TryRecv()
	require.True(t, ok)
	assert.Equal(t, nmt.MsPreOperational1, snap.MnState)

	_, ok = p.TryRecv()
	assert.False(t, ok, "slot is empty after the single queued snapshot is drained")
}
