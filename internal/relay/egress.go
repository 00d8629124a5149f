package relay

import (
	"log/slog"

	"github.com/sonari-audio/sonari/internal/codec"
)

// runEgress is the per-client write loop: wait for work or
// deactivation, drain the queue FIFO, and write each frame to the
// socket. A write failure deactivates the entry (idempotently racing
// the reader, if it observes a failure at the same moment) and exits.
func runEgress(c *ClientEntry, registry *Registry, logger *slog.Logger) {
	for {
		select {
		case <-c.done:
			return
		case <-c.notify:
		}

		for {
			f, ok := c.pop()
			if !ok {
				break
			}
			if err := codec.WriteFrame(c.Conn, f); err != nil {
				logger.Debug("egress write failed, removing client", "client_id", c.ID, "error", err)
				registry.Remove(c)
				return
			}
		}

		if !c.Active() {
			return
		}
	}
}
