package ordering

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/appetiteclub/apt/events"

	"github.com/orderbuddy/orderbuddy/pkg/event"
)

// Messenger sends a customer-facing or staff-facing text message.
type Messenger interface {
	SendSMS(ctx context.Context, phoneNumber, text string) error
}

// Pusher sends a push notification to a restaurant's registered devices.
type Pusher interface {
	Push(ctx context.Context, restaurantID, title, body string) error
}

// EventSink is the realtime surface the lifecycle manager fans events into.
// The gateway implements it; tests substitute their own.
type EventSink interface {
	ServerBroadcast(eventName, roomID string, payload any)
	RouteOrderToStations(ctx context.Context, order *Order) (int, error)
	RouteItemEvent(ctx context.Context, order *Order, itemID, eventName string) error
}

// NATSMessenger publishes SMS requests for the messaging collaborator.
type NATSMessenger struct {
	publisher events.Publisher
}

func NewNATSMessenger(publisher events.Publisher) *NATSMessenger {
	return &NATSMessenger{publisher: publisher}
}

func (m *NATSMessenger) SendSMS(ctx context.Context, phoneNumber, text string) error {
	payload, err := json.Marshal(event.SMSMessage{
		PhoneNumber: phoneNumber,
		Text:        text,
	})
	if err != nil {
		return fmt.Errorf("marshaling sms payload: %w", err)
	}
	return m.publisher.Publish(ctx, event.NotificationsSMSTopic, payload)
}

// NATSPusher publishes push-notification requests for the push collaborator.
type NATSPusher struct {
	publisher events.Publisher
}

func NewNATSPusher(publisher events.Publisher) *NATSPusher {
	return &NATSPusher{publisher: publisher}
}

func (p *NATSPusher) Push(ctx context.Context, restaurantID, title, body string) error {
	payload, err := json.Marshal(event.PushNotification{
		Title:        title,
		Body:         body,
		RestaurantID: restaurantID,
	})
	if err != nil {
		return fmt.Errorf("marshaling push payload: %w", err)
	}
	return p.publisher.Publish(ctx, event.NotificationsPushTopic, payload)
}
