package dll

import (
	pl "github.com/fabiomolinar/powerlink-rs-sub001"
	"github.com/sirupsen/logrus"
)

// DefaultThreshold is the 8:1 counter's default breach threshold (applies
// to every kind unless overridden via SetThreshold).
const DefaultThreshold = 15

// occurrenceWeight is the amount a single occurrence adds to a counter.
const occurrenceWeight = 8

type counterKey struct {
	kind   ErrorKind
	nodeId pl.NodeId
}

// Accounting implements the 8:1 threshold counters of §4.6: every
// occurrence adds 8, every error-free cycle subtracts 1 (saturating at
// zero), and a counter reaching its threshold resets to zero and emits an
// NmtAction.
type Accounting struct {
	values     map[counterKey]int
	thresholds map[ErrorKind]int
	cumulative map[counterKey]int
	logger     *logrus.Entry
}

func NewAccounting(logger *logrus.Logger) *Accounting {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Accounting{
		values:     map[counterKey]int{},
		thresholds: map[ErrorKind]int{},
		cumulative: map[counterKey]int{},
		logger:     logger.WithField("component", "dll-accounting"),
	}
}

// SetThreshold overrides the breach threshold for kind (e.g. from OD
// 0x1C0E..0x1C14); unset kinds use DefaultThreshold.
func (a *Accounting) SetThreshold(kind ErrorKind, threshold int) {
	a.thresholds[kind] = threshold
}

func (a *Accounting) thresholdFor(kind ErrorKind) int {
	if t, ok := a.thresholds[kind]; ok {
		return t
	}
	return DefaultThreshold
}

// Value returns a counter's current value, for diagnostics/testing.
func (a *Accounting) Value(kind ErrorKind, nodeId pl.NodeId) int {
	return a.values[counterKey{kind, nodeId}]
}

// RecordOccurrence applies one occurrence of kind (for nodeId, when
// parametric) and returns the NmtAction to apply if this occurrence
// breached the threshold, or nil otherwise. LossOfLink is cumulative and
// never escalates.
func (a *Accounting) RecordOccurrence(kind ErrorKind, nodeId pl.NodeId) *NmtAction {
	key := counterKey{kind, nodeId}
	if kind == LossOfLink {
		a.cumulative[key]++
		a.logger.WithField("node", nodeId).Info("loss of link")
		return nil
	}
	a.values[key] += occurrenceWeight
	threshold := a.thresholdFor(kind)
	if a.values[key] < threshold {
		return nil
	}
	a.values[key] = 0
	action := a.actionFor(kind, nodeId)
	a.logger.WithFields(logrus.Fields{
		"kind": kind.String(), "node": nodeId, "action": action.Kind,
	}).Warn("dll error threshold breached")
	return &action
}

// CounterSnapshot is one entry of Accounting's current counter state, for
// diagnostic export (pkg/diag).
type CounterSnapshot struct {
	Kind   ErrorKind
	NodeId pl.NodeId
	Value  int
}

// Counters returns a point-in-time copy of every non-zero threshold
// counter, for diagnostic snapshotting. Order is unspecified.
func (a *Accounting) Counters() []CounterSnapshot {
	out := make([]CounterSnapshot, 0, len(a.values))
	for key, v := range a.values {
		if v == 0 {
			continue
		}
		out = append(out, CounterSnapshot{Kind: key.kind, NodeId: key.nodeId, Value: v})
	}
	return out
}

// TickErrorFreeCycle decrements every counter by one (saturating at zero);
// call once per cycle in which no corresponding error occurred.
func (a *Accounting) TickErrorFreeCycle() {
	for key, v := range a.values {
		if v > 0 {
			a.values[key] = v - 1
		}
	}
}

func (a *Accounting) actionFor(kind ErrorKind, nodeId pl.NodeId) NmtAction {
	switch kind {
	case LossOfPres, LossOfStatusRes, PdoMapVersion, PdoPayloadShort:
		return NmtAction{Kind: ActionResetNode, NodeId: nodeId}
	default:
		return NmtAction{Kind: ActionResetCommunication}
	}
}
