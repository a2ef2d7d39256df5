// Package notifier provides the broadcast mechanism behind the workspace
// events endpoint. Clients subscribed over SSE receive a ping whenever the
// template catalog reloads and should re-fetch the template list.
package notifier

import "sync"

// Notifier fans out reload pings to subscribers. The zero value is not
// usable; construct with New.
type Notifier struct {
	mu   sync.Mutex
	next int
	subs map[int]chan struct{}
}

func New() *Notifier {
	return &Notifier{subs: make(map[int]chan struct{})}
}

// Subscribe registers a listener and returns its channel together with a
// cancel function. The channel carries at most one pending ping; cancel
// removes the listener and closes the channel, and is safe to call more
// than once.
func (n *Notifier) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	n.mu.Lock()
	id := n.next
	n.next++
	n.subs[id] = ch
	n.mu.Unlock()

	cancel := func() {
		n.mu.Lock()
		if _, ok := n.subs[id]; ok {
			delete(n.subs, id)
			close(ch)
		}
		n.mu.Unlock()
	}
	return ch, cancel
}

// Broadcast pings every subscriber without blocking. A subscriber that has
// not drained its previous ping keeps the single buffered one, which is
// enough to trigger its re-fetch.
func (n *Notifier) Broadcast() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
