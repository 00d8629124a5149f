package relay

import (
	"net"
	"sync"
	"sync/atomic"

	"github.com/sonari-audio/sonari/internal/metrics"
)

// QueueCapacity is the maximum number of mixed frames a client's send
// queue may hold before the drop-oldest policy kicks in (~1 s at the
// 20 ms mix cadence).
const QueueCapacity = 50

// ClientID is a monotonically-issued, process-local connection
// identity — deliberately not a globally-unique UUID, since nothing
// here needs uniqueness across processes or persistence.
type ClientID uint64

// ClientEntry is one connected peer's server-side state: its socket,
// its bounded send queue, and the one-way active flag that gates
// teardown.
//
// queueMu guards queue and queued together so the invariant
// len(queue) == queued always holds while the lock is held. notify is
// a capacity-1 channel standing in for a condition variable: a
// non-blocking send wakes the egress sender, and a blocked send is
// simply dropped because a pending wake is already enough to make the
// sender re-check its predicate.
type ClientEntry struct {
	ID   ClientID
	Conn net.Conn

	active atomic.Bool

	queueMu sync.Mutex
	queue   []Frame
	queued  int

	notify chan struct{}
	done   chan struct{}
}

func newClientEntry(id ClientID, conn net.Conn) *ClientEntry {
	c := &ClientEntry{
		ID:     id,
		Conn:   conn,
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	c.active.Store(true)
	return c
}

// Active reports whether the entry is still a live member of the mix.
func (c *ClientEntry) Active() bool {
	return c.active.Load()
}

// QueueLen returns the current number of frames queued for send.
func (c *ClientEntry) QueueLen() int {
	c.queueMu.Lock()
	defer c.queueMu.Unlock()
	return c.queued
}

// wake signals the egress sender that there is new work, or that it
// should re-check active/done. It never blocks: if a wake is already
// pending, the sender will observe the same state on its next pass.
func (c *ClientEntry) wake() {
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// enqueue pushes f onto the send queue, applying drop-oldest
// backpressure if the queue is already at capacity, then wakes the
// sender. It is a no-op on an inactive entry.
func (c *ClientEntry) enqueue(f Frame) {
	c.queueMu.Lock()
	if !c.active.Load() {
		c.queueMu.Unlock()
		return
	}
	for c.queued >= QueueCapacity {
		c.queue = c.queue[1:]
		c.queued--
		metrics.FramesDroppedTotal.Inc()
	}
	c.queue = append(c.queue, f)
	c.queued++
	depth := c.queued
	c.queueMu.Unlock()

	metrics.QueueDepth.Observe(float64(depth))
	c.wake()
}

// pop removes and returns the front of the queue. ok is false if the
// queue was empty.
func (c *ClientEntry) pop() (f Frame, ok bool) {
	c.queueMu.Lock()
	defer c.queueMu.Unlock()
	if c.queued == 0 {
		return nil, false
	}
	f = c.queue[0]
	c.queue = c.queue[1:]
	c.queued--
	return f, true
}

// clear drops every queued frame, used when draining an entry during
// teardown.
func (c *ClientEntry) clear() {
	c.queueMu.Lock()
	c.queue = nil
	c.queued = 0
	c.queueMu.Unlock()
}

// deactivate flips the active flag from true to false and reports
// whether this call performed the transition. It is the exclusive
// gate for teardown: exactly one caller, across the reader and sender
// goroutines, ever observes true from this method for a given entry.
func (c *ClientEntry) deactivate() (didTransition bool) {
	return c.active.CompareAndSwap(true, false)
}
