package events

import (
	"errors"
	"fmt"
	"sync"
)

const DefaultBusBuffer = 256

var (
	ErrBusClosed = errors.New("event bus closed")
	ErrDropped   = errors.New("event dropped")
)

// Bus fans events out to subscribers. A plain subscriber whose buffer is full
// misses the event. A blocking subscriber holds the publisher until it reads
// the event or leaves.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]*subscriber
	nextID int
	buffer int
	closed bool

	// leaveMu guards blockers apart from mu, which a stalled publisher holds.
	leaveMu  sync.Mutex
	blockers map[int]*subscriber
}

type subscriber struct {
	ch       chan StreamEvent
	blocking bool
	left     chan struct{}
	once     sync.Once
}

func (s *subscriber) leave() {
	s.once.Do(func() { close(s.left) })
}

func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = DefaultBusBuffer
	}
	return &Bus{
		subs:     make(map[int]*subscriber),
		blockers: make(map[int]*subscriber),
		buffer:   buffer,
	}
}

// Subscribe returns a channel of events and a function that ends the subscription.
func (b *Bus) Subscribe() (<-chan StreamEvent, func()) {
	return b.subscribe(false)
}

// SubscribeBlocking is Subscribe for a reader that must see every event.
// Publish waits for it, so it has to keep reading until it unsubscribes.
func (b *Bus) SubscribeBlocking() (<-chan StreamEvent, func()) {
	return b.subscribe(true)
}

func (b *Bus) subscribe(blocking bool) (<-chan StreamEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &subscriber{
		ch:       make(chan StreamEvent, b.buffer),
		blocking: blocking,
		left:     make(chan struct{}),
	}
	if b.closed {
		close(sub.ch)
		return sub.ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = sub
	if blocking {
		b.leaveMu.Lock()
		b.blockers[id] = sub
		b.leaveMu.Unlock()
	}

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			// Release a publisher stuck on this subscriber before taking mu.
			sub.leave()
			b.leaveMu.Lock()
			delete(b.blockers, id)
			b.leaveMu.Unlock()

			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub.ch)
			}
		})
	}
}

func (b *Bus) Publish(ev StreamEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}

	dropped := 0
	for _, sub := range b.subs {
		if sub.blocking {
			select {
			case sub.ch <- ev:
			case <-sub.left:
			}
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		return fmt.Errorf("%w for %d of %d subscribers", ErrDropped, dropped, len(b.subs))
	}
	return nil
}

// Close ends every subscription. Later publishes fail with ErrBusClosed.
func (b *Bus) Close() {
	b.leaveMu.Lock()
	for id, sub := range b.blockers {
		sub.leave()
		delete(b.blockers, id)
	}
	b.leaveMu.Unlock()

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		delete(b.subs, id)
		close(sub.ch)
	}
}
