package scheduler

import (
	"container/heap"

	pl "github.com/fabiomolinar/powerlink-rs-sub001"
)

// AsyncRequest is one pending invitation for the asynchronous slot: a
// node wanting to send (or receive, for the MN's own outgoing traffic),
// ranked by priority. NMT requests use priority 7 (§4.8); generic
// application requests use anything lower.
type AsyncRequest struct {
	NodeId   pl.NodeId
	Priority uint8
	Service  pl.RequestedService
}

// asyncQueue is a max-heap by Priority, insertion order broken by a
// monotonically increasing sequence number so equal-priority requests are
// served FIFO rather than arbitrarily.
type asyncQueue struct {
	items []queuedRequest
	seq   uint64
}

type queuedRequest struct {
	req   AsyncRequest
	order uint64
}

func (q *asyncQueue) Len() int { return len(q.items) }

func (q *asyncQueue) Less(i, j int) bool {
	if q.items[i].req.Priority != q.items[j].req.Priority {
		return q.items[i].req.Priority > q.items[j].req.Priority
	}
	return q.items[i].order < q.items[j].order
}

func (q *asyncQueue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *asyncQueue) Push(x any) { q.items = append(q.items, x.(queuedRequest)) }

func (q *asyncQueue) Pop() any {
	old := q.items
	n := len(old)
	item := old[n-1]
	q.items = old[:n-1]
	return item
}

func (q *asyncQueue) push(req AsyncRequest) {
	q.seq++
	heap.Push(q, queuedRequest{req: req, order: q.seq})
}

func (q *asyncQueue) pop() (AsyncRequest, bool) {
	if q.Len() == 0 {
		return AsyncRequest{}, false
	}
	item := heap.Pop(q).(queuedRequest)
	return item.req, true
}
