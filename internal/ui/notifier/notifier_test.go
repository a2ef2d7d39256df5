package notifier

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(100 * time.Millisecond):
		t.Error("listener did not receive ping")
	}
}

func TestSubscribeCancel(t *testing.T) {
	n := New()

	ch, cancel := n.Subscribe()
	require.NotNil(t, ch)

	n.mu.Lock()
	assert.Len(t, n.subs, 1)
	n.mu.Unlock()

	cancel()

	n.mu.Lock()
	assert.Empty(t, n.subs)
	n.mu.Unlock()

	// cancel closed the channel
	_, open := <-ch
	assert.False(t, open)

	// calling cancel again is a no-op
	cancel()
}

func TestBroadcast_ReachesAllListeners(t *testing.T) {
	n := New()

	ch1, cancel1 := n.Subscribe()
	ch2, cancel2 := n.Subscribe()
	defer cancel1()
	defer cancel2()

	n.Broadcast()

	receive(t, ch1)
	receive(t, ch2)
}

func TestBroadcast_CoalescesPendingPing(t *testing.T) {
	n := New()

	ch, cancel := n.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		n.Broadcast()
		n.Broadcast()
		n.Broadcast()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Broadcast blocked on an undrained listener")
	}

	// All three broadcasts collapse into the single buffered ping.
	receive(t, ch)
	select {
	case <-ch:
		t.Error("expected pings to coalesce into one")
	default:
	}
}

func TestBroadcast_AsReloadHook(t *testing.T) {
	// The catalog invokes the broadcast as a plain func() hook.
	n := New()
	ch, cancel := n.Subscribe()
	defer cancel()

	var hook func() = n.Broadcast
	hook()

	receive(t, ch)
}

func TestConcurrentSubscribeBroadcast(t *testing.T) {
	n := New()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, cancel := n.Subscribe()
			n.Broadcast()
			cancel()
		}()
	}
	wg.Wait()

	n.mu.Lock()
	assert.Empty(t, n.subs)
	n.mu.Unlock()
}
