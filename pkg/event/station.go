package event

import "encoding/json"

// NewOrderEvent is the station-scoped routing payload. StationTags carries
// only the tags the receiving station shares with the order.
type NewOrderEvent struct {
	OrderID       string       `json:"order_id"`
	RestaurantID  string       `json:"restaurant_id"`
	LocationID    string       `json:"location_id"`
	StationID     string       `json:"station_id"`
	StationTags   []string     `json:"station_tags"`
	CorrelationID string       `json:"correlation_id,omitempty"`
	OrderDetails  OrderDetails `json:"order_details"`
}

// OrderDetails is the denormalized slice of order state stations render
// without a follow-up fetch.
type OrderDetails struct {
	Status string           `json:"status"`
	Items  []OrderDetailRow `json:"items"`
}

type OrderDetailRow struct {
	Name string `json:"name"`
}

// OrderItemEvent is emitted to matching stations when an item is started or
// completed, and mirrored to the location room under the dashboard_* names.
type OrderItemEvent struct {
	OrderID      string   `json:"order_id"`
	ItemID       string   `json:"item_id"`
	RestaurantID string   `json:"restaurant_id"`
	LocationID   string   `json:"location_id"`
	StationID    string   `json:"station_id,omitempty"`
	StationTags  []string `json:"station_tags,omitempty"`
}

// StationConnectedEvent acknowledges a station joining its rooms.
type StationConnectedEvent struct {
	Success    bool   `json:"success"`
	StationID  string `json:"station_id"`
	LocationID string `json:"location_id"`
}

// BroadcastEnvelope wraps a room broadcast for the cross-instance mirror
// topic. Instance identifies the originating gateway so it can skip its own
// echoes.
type BroadcastEnvelope struct {
	Instance string          `json:"instance"`
	Event    string          `json:"event"`
	Room     string          `json:"room"`
	Payload  json.RawMessage `json:"payload"`
}
