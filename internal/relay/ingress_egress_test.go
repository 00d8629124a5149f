package relay

import (
	"net"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonari-audio/sonari/internal/codec"
)

func TestIngress_ReadFramesAreDepositedIntoMixer(t *testing.T) {
	server, peer := net.Pipe()
	defer peer.Close()

	registry := NewRegistry()
	c := registry.Insert(server)
	clock := clockwork.NewFakeClock()
	m := NewMixer(registry, clock, discardLogger())
	go m.Run()
	t.Cleanup(m.Stop)

	go runIngress(c, registry, m, discardLogger())

	payload := make([]byte, CanonicalFrameSize)
	payload[0] = 42
	require.NoError(t, codec.WriteFrame(peer, payload))

	// Give the ingress goroutine a moment to deposit before ticking.
	require.Eventually(t, func() bool {
		clock.Advance(MixPeriod)
		return c.QueueLen() >= 1
	}, time.Second, 5*time.Millisecond)
}

func TestIngress_OnReadFailureRemovesEntry(t *testing.T) {
	server, peer := net.Pipe()
	registry := NewRegistry()
	c := registry.Insert(server)
	clock := clockwork.NewFakeClock()
	m := NewMixer(registry, clock, discardLogger())

	done := make(chan struct{})
	go func() {
		runIngress(c, registry, m, discardLogger())
		close(done)
	}()

	peer.Close() // forces a read error on the server side

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runIngress did not return after peer closed")
	}

	assert.False(t, c.Active())
	assert.Equal(t, 0, registry.Len())
}

func TestEgress_DeliversQueuedFramesInOrder(t *testing.T) {
	server, peer := net.Pipe()
	defer peer.Close()

	registry := NewRegistry()
	c := registry.Insert(server)

	go runEgress(c, registry, discardLogger())

	c.enqueue(Frame{1, 2, 3})
	c.enqueue(Frame{4, 5, 6})

	got1, err := codec.ReadFrame(peer)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got1)

	got2, err := codec.ReadFrame(peer)
	require.NoError(t, err)
	assert.Equal(t, []byte{4, 5, 6}, got2)

	registry.Remove(c)
}

func TestEgress_ExitsWhenDoneClosed(t *testing.T) {
	server, peer := net.Pipe()
	defer peer.Close()

	registry := NewRegistry()
	c := registry.Insert(server)

	done := make(chan struct{})
	go func() {
		runEgress(c, registry, discardLogger())
		close(done)
	}()

	registry.Remove(c) // closes c.done and wakes the sender

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runEgress did not exit after removal")
	}
}
