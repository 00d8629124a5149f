package relay

import (
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sonari-audio/sonari/internal/metrics"
)

// MixPeriod is the fixed mixer cadence, a compile-time constant never
// environment-configurable.
const MixPeriod = 20 * time.Millisecond

// Mixer drains the shared inbox on a fixed cadence, sums whatever
// accumulated with saturating 16-bit arithmetic, and republishes the
// result to every active client's send queue.
type Mixer struct {
	registry *Registry
	inbox    *inbox
	clock    clockwork.Clock
	period   time.Duration
	logger   *slog.Logger

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewMixer builds a mixer over registry, using clock for its tick
// cadence (inject a clockwork.FakeClock in tests to drive ticks
// deterministically).
func NewMixer(registry *Registry, clock clockwork.Clock, logger *slog.Logger) *Mixer {
	return &Mixer{
		registry: registry,
		inbox:    newInbox(),
		clock:    clock,
		period:   MixPeriod,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Deposit pushes an inbound frame into the mixer's inbox. Called by
// every ingress reader; never blocks on I/O.
func (m *Mixer) Deposit(f Frame) {
	m.inbox.push(f)
}

// Run executes the mixer's tick loop until Stop is called. It is
// meant to be run in its own goroutine; exactly one Mixer runs per
// server.
func (m *Mixer) Run() {
	defer close(m.doneCh)

	ticker := m.clock.NewTicker(m.period)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.Chan():
			m.tick()
		}
	}
}

// Stop signals the mixer to exit and blocks until its goroutine has
// returned.
func (m *Mixer) Stop() {
	close(m.stopCh)
	<-m.doneCh
}

func (m *Mixer) tick() {
	start := m.clock.Now()

	contributors := m.inbox.swap()
	if len(contributors) == 0 {
		return
	}

	out := make(Frame, CanonicalFrameSize)
	for _, c := range contributors {
		mixInto(out, c)
	}

	metrics.MixTickInputFrames.Observe(float64(len(contributors)))

	m.registry.ForEachActive(func(c *ClientEntry) {
		c.enqueue(out)
	})

	metrics.MixTickDuration.Observe(m.clock.Since(start).Seconds())
}
