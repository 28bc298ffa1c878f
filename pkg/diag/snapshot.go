// Package diag implements the two-thread split's read-only diagnostics
// side: a serializable per-cycle Snapshot of engine state, and a bounded
// 1-slot newest-wins channel (Publisher) that hands the latest Snapshot to
// a non-RT consumer without ever letting the RT producer block (§5).
package diag

import (
	pl "github.com/fabiomolinar/powerlink-rs-sub001"
	"github.com/fabiomolinar/powerlink-rs-sub001/pkg/dll"
	"github.com/fabiomolinar/powerlink-rs-sub001/pkg/nmt"
	"github.com/fabiomolinar/powerlink-rs-sub001/pkg/od"
)

// CnSummary is one CN's state as last observed by the MN (via IdentResponse/
// StatusResponse or the isochronous poll itself).
type CnSummary struct {
	NodeId pl.NodeId
	State  nmt.NmtState
}

// ErrorCounter mirrors one of Accounting's live threshold counters.
type ErrorCounter struct {
	Kind   dll.ErrorKind
	NodeId pl.NodeId
	Value  int
}

// Counters is the subset of OD 0x1101 (cumulative cycle/frame counts) and
// 0x1102 (error statistics) a snapshot carries; spec.md §5 names these two
// indices without enumerating every sub-entry, so only the counts this
// engine actually maintains are surfaced. Fields read zero if the
// corresponding OD object is absent from the dictionary.
type Counters struct {
	CycleCount uint32 // 0x1101/1
	RxCount    uint32 // 0x1101/2
	TxCount    uint32 // 0x1101/3
	ErrorCount uint32 // 0x1102/1
}

// Snapshot is the complete read-only diagnostic view produced once per
// cycle on the RT thread (§5, §6).
type Snapshot struct {
	MnState     nmt.NmtState
	Cns         []CnSummary
	ErrCounters []ErrorCounter
	Counters    Counters
}

// Collect assembles a Snapshot from the engine's live state. accounting and
// dict may be nil (an MN-less CN collecting only its own counters and OD);
// cns is the caller's current view of peer CN states (empty for a CN).
func Collect(mnState nmt.NmtState, cns []CnSummary, accounting *dll.Accounting, dict *od.ObjectDictionary) Snapshot {
	snap := Snapshot{MnState: mnState, Cns: cns}

	if accounting != nil {
		for _, c := range accounting.Counters() {
			snap.ErrCounters = append(snap.ErrCounters, ErrorCounter{Kind: c.Kind, NodeId: c.NodeId, Value: c.Value})
		}
	}

	if dict != nil {
		if v, err := dict.ReadU32(0x1101, 1); err == nil {
			snap.Counters.CycleCount = v
		}
		if v, err := dict.ReadU32(0x1101, 2); err == nil {
			snap.Counters.RxCount = v
		}
		if v, err := dict.ReadU32(0x1101, 3); err == nil {
			snap.Counters.TxCount = v
		}
		if v, err := dict.ReadU32(0x1102, 1); err == nil {
			snap.Counters.ErrorCount = v
		}
	}

	return snap
}
