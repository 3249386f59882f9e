package realtime

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"

	"github.com/orderbuddy/orderbuddy/pkg/event"
)

// fakeSubscriber implements events.Subscriber and hands the registered
// handler back to the test so it can inject messages.
type fakeSubscriber struct {
	topic   string
	handler events.HandlerFunc
}

func (s *fakeSubscriber) Subscribe(ctx context.Context, topic string, handler events.HandlerFunc) error {
	s.topic = topic
	s.handler = handler
	return nil
}

func newBridgeFixture(t *testing.T) (*EventBridge, *fakeSubscriber, *Router, *Registry) {
	t.Helper()
	registry := NewRegistry()
	router := NewRouter(registry, &stubStationRepo{}, &fakePublisher{}, apt.NewNoopLogger())
	subscriber := &fakeSubscriber{}
	bridge := NewEventBridge(subscriber, router, apt.NewNoopLogger())

	if err := bridge.Start(context.Background()); err != nil {
		t.Fatalf("cannot start bridge: %v", err)
	}
	if subscriber.topic != event.RealtimeBroadcastTopic {
		t.Fatalf("bridge subscribed to %s, want %s", subscriber.topic, event.RealtimeBroadcastTopic)
	}
	return bridge, subscriber, router, registry
}

func envelopeBytes(t *testing.T, instance, eventName, room string) []byte {
	t.Helper()
	data, err := json.Marshal(event.BroadcastEnvelope{
		Instance: instance,
		Event:    eventName,
		Room:     room,
		Payload:  json.RawMessage(`{"order_id":"abc"}`),
	})
	if err != nil {
		t.Fatalf("cannot marshal envelope: %v", err)
	}
	return data
}

func TestBridgeDeliversForeignBroadcasts(t *testing.T) {
	_, subscriber, _, registry := newBridgeFixture(t)
	conn := newFakeConn("dashboard")
	registry.Join("room-1", conn)

	err := subscriber.handler(context.Background(), envelopeBytes(t, "other-instance", "order_received", "room-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := conn.received()
	if len(got) != 1 || got[0].Event != "order_received" {
		t.Fatalf("mirrored broadcast not delivered: %v", got)
	}
}

func TestBridgeSkipsOwnEchoes(t *testing.T) {
	_, subscriber, router, registry := newBridgeFixture(t)
	conn := newFakeConn("dashboard")
	registry.Join("room-1", conn)

	err := subscriber.handler(context.Background(), envelopeBytes(t, router.Instance(), "order_received", "room-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(conn.received()) != 0 {
		t.Error("a bridge must not re-deliver its own broadcasts")
	}
}

func TestBridgeSwallowsMalformedEnvelopes(t *testing.T) {
	_, subscriber, _, _ := newBridgeFixture(t)

	// A poison message must not be redelivered forever.
	if err := subscriber.handler(context.Background(), []byte("not json")); err != nil {
		t.Fatalf("malformed envelope must be swallowed, got %v", err)
	}
}
