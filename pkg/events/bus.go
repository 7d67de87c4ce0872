package events

import (
	"context"
	"sync"
	"sync/atomic"
)

// subscriptionBuffer is how many events a slow subscriber may lag behind
// before further events are dropped for it
const subscriptionBuffer = 64

// Bus is an in-process topic publish/subscribe hub. Delivery never blocks
// the publisher.
type Bus struct {
	subscribers map[string]map[*Subscription]struct{}
	mu          sync.RWMutex
	closed      bool
	dropped     atomic.Uint64
}

// Subscription receives the events of one topic
type Subscription struct {
	topic     string
	ch        chan Event
	bus       *Bus
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{subscribers: make(map[string]map[*Subscription]struct{})}
}

// Subscribe registers for topic until ctx is done or Unsubscribe is called
func (b *Bus) Subscribe(ctx context.Context, topic string) (*Subscription, error) {
	subCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		topic:  topic,
		ch:     make(chan Event, subscriptionBuffer),
		bus:    b,
		cancel: cancel,
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		cancel()
		return nil, ErrClosed
	}
	if b.subscribers[topic] == nil {
		b.subscribers[topic] = make(map[*Subscription]struct{})
	}
	b.subscribers[topic][sub] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-subCtx.Done()
		sub.Unsubscribe()
	}()

	return sub, nil
}

// Publish implements Publisher. Subscribers whose buffer is full miss the event.
func (b *Bus) Publish(_ context.Context, e Event) error {
	// Sends happen under the read lock so a concurrent Unsubscribe cannot
	// close a channel mid-send.
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}
	for sub := range b.subscribers[e.Topic] {
		select {
		case sub.ch <- e:
		default:
			b.dropped.Add(1)
		}
	}
	return nil
}

// Dropped returns how many deliveries were skipped because a buffer was full
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}

// SubscriberCount returns the number of subscribers for a topic
func (b *Bus) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[topic])
}

// Close ends every subscription; later publishes fail with ErrClosed
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	var subs []*Subscription
	for topic, set := range b.subscribers {
		for sub := range set {
			subs = append(subs, sub)
		}
		delete(b.subscribers, topic)
	}
	for _, sub := range subs {
		sub.closeChannel()
	}
	b.mu.Unlock()

	for _, sub := range subs {
		sub.cancel()
	}
	return nil
}

// Events returns the delivery channel; it is closed on unsubscribe
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// Unsubscribe removes the subscription and closes its channel
func (s *Subscription) Unsubscribe() {
	s.cancel()

	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	if set := s.bus.subscribers[s.topic]; set != nil {
		delete(set, s)
		if len(set) == 0 {
			delete(s.bus.subscribers, s.topic)
		}
	}
	s.closeChannel()
}

func (s *Subscription) closeChannel() {
	s.closeOnce.Do(func() {
		close(s.ch)
	})
}
