package bus

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/naxonsolutions/pdcheck/internal/domain"
)

func TestChannelBusPublishSubscribe(t *testing.T) {
	b := NewChannelBus(10)
	defer b.Close()

	ctx := context.Background()
	received := make(chan []byte, 1)

	sub, err := b.Subscribe(ctx, domain.TopicCheckCompleted, func(ctx context.Context, msg *domain.Message) error {
		received <- msg.Payload
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer sub.Unsubscribe()

	if err := b.Publish(ctx, domain.TopicCheckCompleted, []byte("hello")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case payload := <-received:
		if string(payload) != "hello" {
			t.Errorf("expected hello, got %s", payload)
		}
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}
}

func TestChannelBusMultipleSubscribers(t *testing.T) {
	b := NewChannelBus(10)
	defer b.Close()

	ctx := context.Background()
	var count atomic.Int32

	for i := 0; i < 3; i++ {
		_, err := b.Subscribe(ctx, "topic", func(ctx context.Context, msg *domain.Message) error {
			count.Add(1)
			return nil
		})
		if err != nil {
			t.Fatalf("Subscribe failed: %v", err)
		}
	}

	if err := b.Publish(ctx, "topic", []byte("fanout")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for count.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if count.Load() != 3 {
		t.Errorf("expected 3 deliveries, got %d", count.Load())
	}
}

func TestChannelBusUnsubscribe(t *testing.T) {
	b := NewChannelBus(10)
	defer b.Close()

	ctx := context.Background()
	received := make(chan struct{}, 10)

	sub, err := b.Subscribe(ctx, "topic", func(ctx context.Context, msg *domain.Message) error {
		received <- struct{}{}
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	if err := sub.Unsubscribe(); err != nil {
		t.Fatalf("Unsubscribe failed: %v", err)
	}

	if err := b.Publish(ctx, "topic", []byte("after")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case <-received:
		t.Error("expected no delivery after unsubscribe")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestChannelBusTopicIsolation(t *testing.T) {
	b := NewChannelBus(10)
	defer b.Close()

	ctx := context.Background()
	received := make(chan struct{}, 1)

	_, err := b.Subscribe(ctx, "topic-a", func(ctx context.Context, msg *domain.Message) error {
		received <- struct{}{}
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	if err := b.Publish(ctx, "topic-b", []byte("elsewhere")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case <-received:
		t.Error("message delivered to the wrong topic")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestChannelBusClosed(t *testing.T) {
	b := NewChannelBus(10)
	b.Close()

	ctx := context.Background()
	if err := b.Publish(ctx, "topic", []byte("late")); err == nil {
		t.Error("expected publish on a closed bus to fail")
	}
	if _, err := b.Subscribe(ctx, "topic", nil); err == nil {
		t.Error("expected subscribe on a closed bus to fail")
	}
	if err := b.Ping(ctx); err == nil {
		t.Error("expected ping on a closed bus to fail")
	}
}

func TestChannelBusRequestTimeout(t *testing.T) {
	b := NewChannelBus(10)
	defer b.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := b.Request(ctx, "nobody-listening", []byte("ping")); err == nil {
		t.Error("expected a request with no responder to fail")
	}
}

func TestNewFactory(t *testing.T) {
	b, err := New(domain.EventBusConfig{Type: "channel", ChannelBufferSize: 10})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer b.Close()

	if _, ok := b.(*ChannelBus); !ok {
		t.Errorf("expected a channel bus, got %T", b)
	}

	if _, err := New(domain.EventBusConfig{Type: "carrier-pigeon"}); err == nil {
		t.Error("expected an error for an unknown bus type")
	}
}
