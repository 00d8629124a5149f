package relay

import (
	"log/slog"

	"github.com/sonari-audio/sonari/internal/codec"
)

// runIngress is the per-client read loop: decode inbound frames and
// deposit them into the mixer's inbox. It never broadcasts directly —
// decoupling the read path from the mixer keeps it as short as
// possible and lets several near-simultaneous frames collapse into a
// single mixing tick. On any read failure it removes the entry and
// returns; it performs no other cleanup itself, since Registry.Remove
// is idempotent and safe to race with the egress sender's own call to
// it.
func runIngress(c *ClientEntry, registry *Registry, mixer *Mixer, logger *slog.Logger) {
	for {
		payload, err := codec.ReadFrame(c.Conn)
		if err != nil {
			logger.Debug("ingress read failed, removing client", "client_id", c.ID, "error", err)
			registry.Remove(c)
			return
		}
		mixer.Deposit(Frame(payload))
	}
}
