package bus

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/naxonsolutions/pdcheck/internal/domain"
)

// NATSBus is a NATS-backed event bus for Pro tier deployments.
type NATSBus struct {
	conn *nats.Conn
}

// NewNATSBus connects to a NATS server.
func NewNATSBus(cfg domain.EventBusConfig) (*NATSBus, error) {
	opts := []nats.Option{
		nats.Name("pdcheck"),
		nats.MaxReconnects(cfg.NATSMaxReconnects),
		nats.ReconnectWait(time.Duration(cfg.NATSReconnectWait) * time.Second),
	}
	if cfg.NATSToken != "" {
		opts = append(opts, nats.Token(cfg.NATSToken))
	}

	conn, err := nats.Connect(cfg.NATSUrl, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connection failed: %w", err)
	}

	return &NATSBus{conn: conn}, nil
}

// Publish sends a message to a NATS subject.
func (b *NATSBus) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := b.conn.Publish(topic, payload); err != nil {
		return fmt.Errorf("nats publish failed: %w", err)
	}
	return nil
}

// Subscribe registers a handler for a NATS subject.
func (b *NATSBus) Subscribe(ctx context.Context, topic string, handler domain.MessageHandler) (domain.Subscription, error) {
	sub, err := b.conn.Subscribe(topic, func(m *nats.Msg) {
		msg := &domain.Message{
			ID:        "",
			Topic:     m.Subject,
			Payload:   m.Data,
			Metadata:  map[string]string{},
			Timestamp: time.Now().UnixNano(),
		}
		if m.Reply != "" {
			msg.Metadata["replyTo"] = m.Reply
		}
		_ = handler(context.Background(), msg)
	})
	if err != nil {
		return nil, fmt.Errorf("nats subscribe failed: %w", err)
	}

	return &natsSubscription{sub: sub, topic: topic}, nil
}

// Request sends a message and waits for a response.
func (b *NATSBus) Request(ctx context.Context, topic string, payload []byte) ([]byte, error) {
	msg, err := b.conn.RequestWithContext(ctx, topic, payload)
	if err != nil {
		return nil, fmt.Errorf("nats request failed: %w", err)
	}
	return msg.Data, nil
}

// Ping checks the NATS connection.
func (b *NATSBus) Ping(ctx context.Context) error {
	if !b.conn.IsConnected() {
		return fmt.Errorf("nats not connected")
	}
	return nil
}

// Close drains and closes the NATS connection.
func (b *NATSBus) Close() error {
	if err := b.conn.Drain(); err != nil {
		b.conn.Close()
		return err
	}
	return nil
}

type natsSubscription struct {
	sub   *nats.Subscription
	topic string
}

func (s *natsSubscription) Unsubscribe() error {
	return s.sub.Unsubscribe()
}

func (s *natsSubscription) Topic() string {
	return s.topic
}
