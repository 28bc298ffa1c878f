package diag

// Publisher is a bounded 1-slot, newest-wins handoff from the RT producer
// to a non-RT diagnostics consumer: Publish never blocks, draining the
// stale slot (if the consumer hasn't read it yet) before sending the new
// one. Grounded on the teacher's buffered-channel producer/consumer shape
// (pkg/sdo.Server's rx channel, pkg/lss's rx channels) generalized from a
// queue (capacity > 1, every message delivered) to a capacity-1 "only the
// latest matters" mailbox, since spec.md §5 names this exact shape.
type Publisher struct {
	ch chan Snapshot
}

// NewPublisher creates a Publisher with its single internal slot empty.
func NewPublisher() *Publisher {
	return &Publisher{ch: make(chan Snapshot, 1)}
}

// Publish hands snap to the consumer, replacing whatever snapshot is
// currently queued (if the consumer hasn't drained it yet). Never blocks.
func (p *Publisher) Publish(snap Snapshot) {
	select {
	case p.ch <- snap:
		return
	default:
	}
	select {
	case <-p.ch:
	default:
	}
	select {
	case p.ch <- snap:
	default:
		// Another goroutine raced us into the slot; dropping is correct
		// for a newest-wins mailbox.
	}
}

// Chan exposes the receive-only channel a consumer goroutine ranges/selects
// over.
func (p *Publisher) Chan() <-chan Snapshot {
	return p.ch
}

// TryRecv is a non-blocking read for consumers that poll instead of
// select-ing on Chan().
func (p *Publisher) TryRecv() (Snapshot, bool) {
	select {
	case snap := <-p.ch:
		return snap, true
	default:
		return Snapshot{}, false
	}
}
