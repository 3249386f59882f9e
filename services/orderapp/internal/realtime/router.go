package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"

	"github.com/orderbuddy/orderbuddy/pkg/event"
	"github.com/orderbuddy/orderbuddy/services/orderapp/internal/ordering"
)

// Router fans order and item events into realtime rooms. Local members get
// the event directly; every broadcast is also mirrored onto the broadcast
// topic so other gateway instances can deliver it to their members.
type Router struct {
	registry  *Registry
	stations  ordering.StationRepo
	publisher events.Publisher
	instance  string
	log       apt.Logger
}

func NewRouter(registry *Registry, stations ordering.StationRepo, publisher events.Publisher, log apt.Logger) *Router {
	return &Router{
		registry:  registry,
		stations:  stations,
		publisher: publisher,
		instance:  apt.GenerateNewID().String(),
		log:       log,
	}
}

// Instance identifies this gateway on the broadcast topic.
func (rt *Router) Instance() string {
	return rt.instance
}

// ServerBroadcast delivers an event to the local members of a room and
// mirrors it across instances. Mirror failures are logged; local delivery
// already happened.
func (rt *Router) ServerBroadcast(eventName, roomID string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		rt.log.Errorf("marshaling %s payload: %v", eventName, err)
		return
	}

	delivered := rt.registry.Broadcast(eventName, roomID, data)
	rt.log.Debug("broadcast", "event", eventName, "room", roomID, "delivered", delivered)

	envelope, err := json.Marshal(event.BroadcastEnvelope{
		Instance: rt.instance,
		Event:    eventName,
		Room:     roomID,
		Payload:  data,
	})
	if err != nil {
		rt.log.Errorf("marshaling broadcast envelope: %v", err)
		return
	}
	if err := rt.publisher.Publish(context.Background(), event.RealtimeBroadcastTopic, envelope); err != nil {
		rt.log.Errorf("mirroring %s to %s: %v", eventName, event.RealtimeBroadcastTopic, err)
	}
}

// DeliverLocal hands a mirrored broadcast from another instance to the local
// room members, without mirroring it again.
func (rt *Router) DeliverLocal(eventName, roomID string, payload []byte) int {
	return rt.registry.Broadcast(eventName, roomID, payload)
}

// RouteOrderToStations finds the stations whose tags intersect the order's
// items and sends each one a scoped new-order event. Zero matching stations
// is not an error; the dashboard still holds the order.
func (rt *Router) RouteOrderToStations(ctx context.Context, order *ordering.Order) (int, error) {
	tags := order.StationTagUnion()
	if len(tags) == 0 {
		rt.log.Info("order routing skipped, no station tags", "order_id", order.ID.String())
		return 0, nil
	}

	stations, err := rt.stations.FindByTags(ctx, order.RestaurantID, order.LocationID, tags)
	if err != nil {
		return 0, fmt.Errorf("finding stations for order %s: %w", order.ID, err)
	}
	if len(stations) == 0 {
		rt.log.Info("order_routing_failed", "order_id", order.ID.String(), "tags", fmt.Sprintf("%v", tags))
		return 0, nil
	}

	details := orderDetails(order)
	for _, station := range stations {
		shared := intersect(station.Tags, tags)
		rt.ServerBroadcast(event.EventNewOrder, station.ID.String(), event.NewOrderEvent{
			OrderID:       order.ID.String(),
			RestaurantID:  order.RestaurantID,
			LocationID:    order.LocationID.String(),
			StationID:     station.ID.String(),
			StationTags:   shared,
			CorrelationID: order.Meta.CorrelationID,
			OrderDetails:  details,
		})
	}

	return len(stations), nil
}

// RouteItemEvent tells the stations serving an item that it was started or
// completed, and mirrors the event to the location dashboard under the
// dashboard_* name.
func (rt *Router) RouteItemEvent(ctx context.Context, order *ordering.Order, itemID, eventName string) error {
	item, ok := order.Item(itemID)
	if !ok {
		return fmt.Errorf("order %s has no item %s", order.ID, itemID)
	}

	payload := event.OrderItemEvent{
		OrderID:      order.ID.String(),
		ItemID:       itemID,
		RestaurantID: order.RestaurantID,
		LocationID:   order.LocationID.String(),
		StationTags:  item.StationTags,
	}

	if len(item.StationTags) > 0 {
		stations, err := rt.stations.FindByTags(ctx, order.RestaurantID, order.LocationID, item.StationTags)
		if err != nil {
			return fmt.Errorf("finding stations for item %s: %w", itemID, err)
		}
		for _, station := range stations {
			scoped := payload
			scoped.StationID = station.ID.String()
			rt.ServerBroadcast(eventName, station.ID.String(), scoped)
		}
	}

	room := event.LocationRoom(order.RestaurantID, order.LocationID.String())
	rt.ServerBroadcast(dashboardEventName(eventName), room, payload)

	return nil
}

func dashboardEventName(eventName string) string {
	switch eventName {
	case event.EventOrderItemStarted:
		return event.EventDashboardItemStarted
	case event.EventOrderItemCompleted:
		return event.EventDashboardItemCompleted
	default:
		return eventName
	}
}

func orderDetails(order *ordering.Order) event.OrderDetails {
	rows := make([]event.OrderDetailRow, 0, len(order.Items))
	for _, item := range order.Items {
		rows = append(rows, event.OrderDetailRow{Name: item.Name})
	}
	return event.OrderDetails{
		Status: order.Status,
		Items:  rows,
	}
}

func intersect(a, b []string) []string {
	want := make(map[string]struct{}, len(b))
	for _, s := range b {
		want[s] = struct{}{}
	}
	var out []string
	for _, s := range a {
		if _, ok := want[s]; ok {
			out = append(out, s)
		}
	}
	return out
}
