package relay

import (
	"net"
	"sync"
	"sync/atomic"
)

// Registry is the set of active client entries. Its lock protects
// membership only — inserting, iterating, and removing entries from
// the map — never the per-entry queue or any network I/O. Lock order
// when nesting is unavoidable is always registry then per-entry
// queue, never the reverse, and the registry lock is never held
// across a socket read or write.
type Registry struct {
	mu      sync.Mutex
	clients map[ClientID]*ClientEntry
	nextID  atomic.Uint64
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[ClientID]*ClientEntry)}
}

// Insert admits conn as a new, active client entry and links it into
// the registry.
func (r *Registry) Insert(conn net.Conn) *ClientEntry {
	id := ClientID(r.nextID.Add(1))
	c := newClientEntry(id, conn)

	r.mu.Lock()
	r.clients[id] = c
	r.mu.Unlock()

	return c
}

// Len reports the number of active entries.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// ForEachActive calls fn for a snapshot of currently-registered
// entries. fn must not perform blocking network I/O directly against
// another entry's socket while holding any lock of its own; the
// caller owns whatever synchronization fn needs beyond membership.
func (r *Registry) ForEachActive(fn func(*ClientEntry)) {
	r.mu.Lock()
	snapshot := make([]*ClientEntry, 0, len(r.clients))
	for _, c := range r.clients {
		snapshot = append(snapshot, c)
	}
	r.mu.Unlock()

	for _, c := range snapshot {
		fn(c)
	}
}

// Remove idempotently tears an entry down: it is safe to call
// concurrently from both the entry's reader and sender goroutines (or
// from the lifecycle controller during shutdown). Only the caller
// that wins the active->inactive compare-and-swap performs the
// teardown — closing the socket, draining the queue, waking the
// sender, and unlinking the entry from the registry. Every other
// concurrent caller is a no-op.
func (r *Registry) Remove(c *ClientEntry) {
	if !c.deactivate() {
		return
	}

	c.clear()
	_ = c.Conn.Close()
	close(c.done)
	c.wake()

	r.mu.Lock()
	delete(r.clients, c.ID)
	r.mu.Unlock()
}
