package realtime

import (
	"context"
	"encoding/json"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"

	"github.com/orderbuddy/orderbuddy/pkg/event"
)

// EventBridge mirrors room broadcasts between gateway instances. Every
// instance publishes its broadcasts onto the shared topic; the bridge
// delivers incoming ones to local room members, skipping its own echoes.
type EventBridge struct {
	subscriber events.Subscriber
	router     *Router
	log        apt.Logger
}

func NewEventBridge(subscriber events.Subscriber, router *Router, log apt.Logger) *EventBridge {
	return &EventBridge{
		subscriber: subscriber,
		router:     router,
		log:        log,
	}
}

func (b *EventBridge) Start(ctx context.Context) error {
	b.log.Info("starting realtime event bridge", "topic", event.RealtimeBroadcastTopic)
	return b.subscriber.Subscribe(ctx, event.RealtimeBroadcastTopic, b.handleEvent)
}

func (b *EventBridge) handleEvent(ctx context.Context, data []byte) error {
	var envelope event.BroadcastEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		b.log.Errorf("decoding broadcast envelope: %v", err)
		return nil
	}

	if envelope.Instance == b.router.Instance() {
		return nil
	}

	delivered := b.router.DeliverLocal(envelope.Event, envelope.Room, envelope.Payload)
	b.log.Debug("mirrored broadcast delivered",
		"event", envelope.Event, "room", envelope.Room, "delivered", delivered)
	return nil
}
