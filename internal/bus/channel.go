package bus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/naxonsolutions/pdcheck/internal/domain"
)

// ChannelBus is an in-process event bus built on Go channels.
// Used by the Community tier where everything runs in a single process.
type ChannelBus struct {
	mu          sync.RWMutex
	subscribers map[string][]*channelSubscription
	bufferSize  int
	closed      bool
}

type channelSubscription struct {
	bus     *ChannelBus
	topic   string
	handler domain.MessageHandler
	msgCh   chan *domain.Message
	done    chan struct{}
	once    sync.Once
}

// NewChannelBus creates a new channel-based event bus.
func NewChannelBus(bufferSize int) *ChannelBus {
	if bufferSize <= 0 {
		bufferSize = 1000
	}
	return &ChannelBus{
		subscribers: make(map[string][]*channelSubscription),
		bufferSize:  bufferSize,
	}
}

// Publish sends a message to all subscribers of a topic.
// Delivery is asynchronous; a slow subscriber with a full buffer drops
// the message rather than blocking the publisher.
func (b *ChannelBus) Publish(ctx context.Context, topic string, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return fmt.Errorf("bus is closed")
	}

	msg := &domain.Message{
		ID:        uuid.New().String(),
		Topic:     topic,
		Payload:   payload,
		Metadata:  map[string]string{},
		Timestamp: time.Now().UnixNano(),
	}

	for _, sub := range b.subscribers[topic] {
		select {
		case sub.msgCh <- msg:
		default:
			// Buffer full, drop for this subscriber.
		}
	}

	return nil
}

// Subscribe registers a handler for a topic.
func (b *ChannelBus) Subscribe(ctx context.Context, topic string, handler domain.MessageHandler) (domain.Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, fmt.Errorf("bus is closed")
	}

	sub := &channelSubscription{
		bus:     b,
		topic:   topic,
		handler: handler,
		msgCh:   make(chan *domain.Message, b.bufferSize),
		done:    make(chan struct{}),
	}
	b.subscribers[topic] = append(b.subscribers[topic], sub)

	go sub.run()

	return sub, nil
}

// Request sends a message and waits for a response on a reply topic.
func (b *ChannelBus) Request(ctx context.Context, topic string, payload []byte) ([]byte, error) {
	replyTopic := topic + ".reply." + uuid.New().String()
	replyCh := make(chan []byte, 1)

	sub, err := b.Subscribe(ctx, replyTopic, func(ctx context.Context, msg *domain.Message) error {
		select {
		case replyCh <- msg.Payload:
		default:
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	defer sub.Unsubscribe()

	msg := &domain.Message{
		ID:        uuid.New().String(),
		Topic:     topic,
		Payload:   payload,
		Metadata:  map[string]string{"replyTo": replyTopic},
		Timestamp: time.Now().UnixNano(),
	}

	b.mu.RLock()
	subs := b.subscribers[topic]
	for _, s := range subs {
		select {
		case s.msgCh <- msg:
		default:
		}
	}
	b.mu.RUnlock()

	select {
	case reply := <-replyCh:
		return reply, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(5 * time.Second):
		return nil, fmt.Errorf("request timed out on topic %s", topic)
	}
}

// Ping checks bus health.
func (b *ChannelBus) Ping(ctx context.Context) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return fmt.Errorf("bus is closed")
	}
	return nil
}

// Close shuts down the bus and all subscriptions.
func (b *ChannelBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for _, subs := range b.subscribers {
		for _, sub := range subs {
			sub.stop()
		}
	}
	b.subscribers = make(map[string][]*channelSubscription)
	return nil
}

func (s *channelSubscription) run() {
	for {
		select {
		case msg := <-s.msgCh:
			if msg == nil {
				return
			}
			// Handler errors are logged by the handler itself.
			_ = s.handler(context.Background(), msg)
		case <-s.done:
			return
		}
	}
}

func (s *channelSubscription) stop() {
	s.once.Do(func() {
		close(s.done)
	})
}

// Unsubscribe stops receiving messages and removes the subscription.
func (s *channelSubscription) Unsubscribe() error {
	s.stop()

	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()

	subs := s.bus.subscribers[s.topic]
	for i, sub := range subs {
		if sub == s {
			s.bus.subscribers[s.topic] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	return nil
}

// Topic returns the subscribed topic.
func (s *channelSubscription) Topic() string {
	return s.topic
}
