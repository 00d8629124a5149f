package relay

import (
	"net"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

// throttleIdleTTL is how long a source IP's limiter may sit unused
// before a sweep reclaims it. It is several multiples of any
// reasonable accept-rate window, so a legitimately reconnecting client
// never loses its limiter between attempts.
const throttleIdleTTL = 10 * time.Minute

// throttleSweepInterval is how often allow's amortized housekeeping
// scans for idle entries to evict.
const throttleSweepInterval = 1000

// ipThrottle guards the accept loop against a single source address
// opening connections faster than the mixer can usefully service. It
// never inspects identity — only source IP and rate — so it is ambient
// hardening, not client authentication.
//
// limiters grows one entry per distinct source IP; without eviction
// that is unbounded growth over the life of a process exposed to many
// transient or spoofed source addresses, so allow periodically sweeps
// out entries idle past throttleIdleTTL.
type ipThrottle struct {
	mu       sync.Mutex
	limiters map[string]*throttleEntry
	calls    uint64
	clock    clockwork.Clock
	r        rate.Limit
	burst    int
}

type throttleEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newIPThrottle(perSecond float64, burst int) *ipThrottle {
	return newIPThrottleWithClock(perSecond, burst, clockwork.NewRealClock())
}

func newIPThrottleWithClock(perSecond float64, burst int, clock clockwork.Clock) *ipThrottle {
	return &ipThrottle{
		limiters: make(map[string]*throttleEntry),
		clock:    clock,
		r:        rate.Limit(perSecond),
		burst:    burst,
	}
}

// allow reports whether a new connection from addr should be admitted.
func (t *ipThrottle) allow(addr net.Addr) bool {
	host := addrHost(addr)
	now := t.clock.Now()

	t.mu.Lock()
	entry, ok := t.limiters[host]
	if !ok {
		entry = &throttleEntry{limiter: rate.NewLimiter(t.r, t.burst)}
		t.limiters[host] = entry
	}
	entry.lastSeen = now

	t.calls++
	if t.calls%throttleSweepInterval == 0 {
		t.sweepLocked(now)
	}
	t.mu.Unlock()

	return entry.limiter.Allow()
}

// sweepLocked evicts every entry untouched for at least throttleIdleTTL.
// Callers must hold t.mu.
func (t *ipThrottle) sweepLocked(now time.Time) {
	for host, entry := range t.limiters {
		if now.Sub(entry.lastSeen) >= throttleIdleTTL {
			delete(t.limiters, host)
		}
	}
}

func addrHost(addr net.Addr) string {
	if tcpAddr, ok := addr.(*net.TCPAddr); ok {
		return tcpAddr.IP.String()
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
