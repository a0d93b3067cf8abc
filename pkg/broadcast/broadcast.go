package broadcast

import (
	"context"
	"sync"
	"sync/atomic"
)

// Message wraps data of type T for type-safe broadcasting.
// Topic scopes delivery: subscribers created with WithTopic only receive
// messages carrying the same topic, unscoped subscribers receive everything.
type Message[T any] struct {
	Topic string
	Data  T
}

// Subscriber receives messages from a Broadcaster.
// Implementations must be safe for concurrent use.
type Subscriber[T any] interface {
	// Receive returns a channel for receiving broadcast messages.
	// The channel is closed once the subscriber is closed.
	Receive() <-chan Message[T]

	// Dropped reports how many messages were discarded because the buffer was full.
	Dropped() uint64

	// Close unregisters the subscriber and closes its channel.
	// Close is idempotent and safe to call multiple times.
	Close() error
}

// Broadcaster sends messages to multiple subscribers.
// Implementations drop messages for slow consumers rather than blocking.
type Broadcaster[T any] interface {
	// Subscribe creates a new subscriber. The context controls the lifetime of
	// the subscription: when it is cancelled the subscriber is closed.
	Subscribe(ctx context.Context, opts ...SubscribeOption) (Subscriber[T], error)

	// Broadcast sends a message to every matching subscriber.
	Broadcast(ctx context.Context, msg Message[T]) error

	// Close shuts down the broadcaster and closes all subscribers.
	Close() error
}

// SubscribeOption configures a single subscription.
type SubscribeOption func(*subscribeConfig)

type subscribeConfig struct {
	topic      string
	bufferSize int
}

// WithTopic limits the subscription to messages published with the given topic.
func WithTopic(topic string) SubscribeOption {
	return func(c *subscribeConfig) {
		c.topic = topic
	}
}

// WithBufferSize overrides the broadcaster's default buffer size for one subscriber.
func WithBufferSize(size int) SubscribeOption {
	return func(c *subscribeConfig) {
		if size > 0 {
			c.bufferSize = size
		}
	}
}

type subscriber[T any] struct {
	topic   string
	ch      chan Message[T]
	done    chan struct{}
	dropped atomic.Uint64
	closed  bool
	mu      sync.RWMutex
	detach  func(*subscriber[T])
	once    sync.Once
}

func newSubscriber[T any](cfg subscribeConfig, detach func(*subscriber[T])) *subscriber[T] {
	return &subscriber[T]{
		topic:  cfg.topic,
		ch:     make(chan Message[T], cfg.bufferSize),
		done:   make(chan struct{}),
		detach: detach,
	}
}

func (s *subscriber[T]) Receive() <-chan Message[T] {
	return s.ch
}

func (s *subscriber[T]) Dropped() uint64 {
	return s.dropped.Load()
}

func (s *subscriber[T]) Close() error {
	s.once.Do(func() {
		if s.detach != nil {
			s.detach(s)
		}
		s.closeChannel()
	})
	return nil
}

func (s *subscriber[T]) closeChannel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		close(s.ch)
		close(s.done)
		s.closed = true
	}
}

func (s *subscriber[T]) matches(msg Message[T]) bool {
	return s.topic == "" || s.topic == msg.Topic
}

// send never blocks: a full buffer counts as a dropped message.
func (s *subscriber[T]) send(msg Message[T]) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false
	}

	select {
	case s.ch <- msg:
		return true
	default:
		s.dropped.Add(1)
		return false
	}
}
