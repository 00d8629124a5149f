package relay

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClientEntry(t *testing.T) *ClientEntry {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() { client.Close() })
	return newClientEntry(ClientID(1), server)
}

func TestClientEntry_EnqueueThenPopIsFIFO(t *testing.T) {
	c := newTestClientEntry(t)

	c.enqueue(Frame{1})
	c.enqueue(Frame{2})
	c.enqueue(Frame{3})

	assert.Equal(t, 3, c.QueueLen())

	f, ok := c.pop()
	require.True(t, ok)
	assert.Equal(t, Frame{1}, f)

	f, ok = c.pop()
	require.True(t, ok)
	assert.Equal(t, Frame{2}, f)
}

func TestClientEntry_PopOnEmptyQueueReturnsFalse(t *testing.T) {
	c := newTestClientEntry(t)
	_, ok := c.pop()
	assert.False(t, ok)
}

func TestClientEntry_EnqueueDropsOldestAtCapacity(t *testing.T) {
	c := newTestClientEntry(t)

	for i := 0; i < QueueCapacity+5; i++ {
		c.enqueue(Frame{byte(i)})
	}

	assert.Equal(t, QueueCapacity, c.QueueLen())

	f, ok := c.pop()
	require.True(t, ok)
	assert.Equal(t, Frame{5}, f, "the five oldest frames should have been dropped")
}

func TestClientEntry_EnqueueOnInactiveEntryIsNoop(t *testing.T) {
	c := newTestClientEntry(t)
	c.deactivate()

	c.enqueue(Frame{1})

	assert.Equal(t, 0, c.QueueLen())
}

func TestClientEntry_DeactivateIsExclusive(t *testing.T) {
	c := newTestClientEntry(t)

	assert.True(t, c.deactivate())
	assert.False(t, c.deactivate(), "second deactivate must report no transition")
	assert.False(t, c.Active())
}

func TestClientEntry_ClearDrainsQueue(t *testing.T) {
	c := newTestClientEntry(t)
	c.enqueue(Frame{1})
	c.enqueue(Frame{2})

	c.clear()

	assert.Equal(t, 0, c.QueueLen())
	_, ok := c.pop()
	assert.False(t, ok)
}

func TestClientEntry_WakeIsNonBlockingWhenAlreadyPending(t *testing.T) {
	c := newTestClientEntry(t)

	c.wake()
	c.wake() // must not block even though the channel is already full

	select {
	case <-c.notify:
	default:
		t.Fatal("expected a pending notification")
	}
}
