package event

import "time"

const (
	// RealtimeBroadcastTopic mirrors every room broadcast across gateway
	// instances so a multi-instance deployment fans events to all of them.
	RealtimeBroadcastTopic = "realtime.broadcast"

	// NotificationsSMSTopic carries outbound SMS requests consumed by the
	// messaging collaborator.
	NotificationsSMSTopic = "notifications.sms"
	// NotificationsPushTopic carries push-notification requests consumed by
	// the web-push collaborator.
	NotificationsPushTopic = "notifications.push"
)

// Realtime event names delivered to room members.
const (
	EventOrderReceived       = "order_received"
	EventOrderAccepted       = "order_accepted"
	EventOrderReadyForPickup = "order_ready_for_pickup"
	EventOrderCompleted      = "order_completed"
	EventOrderCancelled      = "order_cancelled"
	EventOrderWaitTime       = "order_wait_time_updated"
	EventOrderItemStarted    = "order_item_started"
	EventOrderItemCompleted  = "order_item_completed"
	EventNewOrder            = "new_order"
	EventStationConnected    = "station_connected"

	// Dashboard mirrors of the item events, sent to the location room.
	EventDashboardItemStarted   = "dashboard_order_item_started"
	EventDashboardItemCompleted = "dashboard_order_item_completed"
)

// LocationRoom names the broadcast group shared by every dashboard and
// station of one restaurant location.
func LocationRoom(restaurantID, locationID string) string {
	return restaurantID + "_" + locationID
}

// OrderReceivedEvent notifies a location dashboard that a new order landed.
type OrderReceivedEvent struct {
	OrderID       string `json:"order_id"`
	OrderCode     string `json:"order_code"`
	RestaurantID  string `json:"restaurant_id"`
	LocationID    string `json:"location_id"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// OrderStatusEvent announces an order-level status transition to the
// restaurant and order rooms.
type OrderStatusEvent struct {
	OrderID       string    `json:"order_id"`
	OrderCode     string    `json:"order_code,omitempty"`
	RestaurantID  string    `json:"restaurant_id"`
	Status        string    `json:"status"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// OrderWaitTimeEvent carries an updated wait estimate for an order.
type OrderWaitTimeEvent struct {
	OrderID           string `json:"order_id"`
	RestaurantID      string `json:"restaurant_id"`
	WaitTimeInMinutes int    `json:"wait_time_in_minutes"`
	CorrelationID     string `json:"correlation_id,omitempty"`
}

// SMSMessage is the payload published for the messaging collaborator.
type SMSMessage struct {
	PhoneNumber string `json:"phone_number"`
	Text        string `json:"text"`
}

// PushNotification is the payload published for the push collaborator.
type PushNotification struct {
	Title        string `json:"title"`
	Body         string `json:"body"`
	RestaurantID string `json:"restaurant_id"`
	Platform     string `json:"platform,omitempty"`
}
