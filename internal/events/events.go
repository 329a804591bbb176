// Package events carries the in-process notifications exchanged between
// module pollers, the trigger engine, and the daemon.
//
// Publish never blocks: subscribers receive on bounded channels and slow
// consumers drop events rather than stalling a poller.
package events

import "sync"

// Kind discriminates event payloads.
type Kind string

const (
	// KindModuleUpdated signals that a module's entry set changed shape and
	// its filesystem subtree must be rebuilt.
	KindModuleUpdated Kind = "module_updated"
	// KindTriggerFired signals that a trigger command ran successfully.
	KindTriggerFired Kind = "trigger_fired"
)

// Event is a single bus message.
type Event struct {
	Kind    Kind
	Module  string
	Trigger string
	Path    string
	Detail  string
}

const subscriberBuffer = 64

// Bus fans events out to subscribers.
type Bus struct {
	mu     sync.Mutex
	subs   map[chan Event]struct{}
	closed bool
}

// NewBus returns an empty bus ready for use.
func NewBus() *Bus {
	return &Bus{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a new receiver. The returned cancel function must be
// called to release the subscription.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber without blocking. Events are
// dropped for subscribers whose buffers are full.
func (b *Bus) Publish(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Close shuts the bus down and closes all subscriber channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
}
