package ordering

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"

	"github.com/orderbuddy/orderbuddy/pkg/enums/orderstatus"
	"github.com/orderbuddy/orderbuddy/pkg/event"
)

// DefaultSideEffectTimeout bounds each best-effort finalize step so a slow
// collaborator cannot stall order confirmation.
const DefaultSideEffectTimeout = 3 * time.Second

// ErrInvalidTransition is returned when a status update violates the order
// workflow.
var ErrInvalidTransition = errors.New("invalid status transition")

// StepResult records the outcome of one best-effort finalize step.
type StepResult struct {
	Step   string `json:"step"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

// FinalizeReport is the structured outcome of finalizing a preview: the
// durable order plus the result of every side-effect step. Only the order
// write itself can fail the whole operation.
type FinalizeReport struct {
	Order *Order       `json:"order"`
	Steps []StepResult `json:"steps"`
}

func (r *FinalizeReport) record(step string, err error) {
	result := StepResult{Step: step, OK: err == nil}
	if err != nil {
		result.Detail = err.Error()
	}
	r.Steps = append(r.Steps, result)
}

// LifecycleManager finalizes previews into durable orders and drives the
// order status workflow, fanning realtime events, SMS and push notifications
// out as it goes.
type LifecycleManager struct {
	orders      OrderRepo
	previews    PreviewRepo
	locations   LocationRepo
	restaurants RestaurantRepo
	sink        EventSink
	messenger   Messenger
	pusher      Pusher
	log         apt.Logger

	// statusBase is the public endpoint orders are tracked at, e.g.
	// https://order.example.com.
	statusBase  string
	stepTimeout time.Duration
}

func NewLifecycleManager(
	orders OrderRepo,
	previews PreviewRepo,
	locations LocationRepo,
	restaurants RestaurantRepo,
	sink EventSink,
	messenger Messenger,
	pusher Pusher,
	statusBase string,
	log apt.Logger,
) *LifecycleManager {
	return &LifecycleManager{
		orders:      orders,
		previews:    previews,
		locations:   locations,
		restaurants: restaurants,
		sink:        sink,
		messenger:   messenger,
		pusher:      pusher,
		statusBase:  statusBase,
		stepTimeout: DefaultSideEffectTimeout,
		log:         log,
	}
}

// Finalize turns a paid preview into a durable order. The preview is claimed
// atomically, so two finalize calls for the same preview cannot both succeed.
// Everything after the order write is best effort: each step runs under its
// own timeout, failures are logged and reported, and none of them roll the
// order back.
func (m *LifecycleManager) Finalize(ctx context.Context, previewID uuid.UUID, paymentID, correlationID string) (*FinalizeReport, error) {
	preview, err := m.previews.Consume(ctx, previewID)
	if err != nil {
		return nil, err
	}
	if preview == nil {
		return nil, fmt.Errorf("preview %s: %w", previewID, ErrNotFound)
	}

	order := NewOrderFromPreview(preview, paymentID, correlationID)
	if err := m.orders.Create(ctx, order); err != nil {
		// Hand the preview back so the caller can retry finalize.
		if relErr := m.previews.Release(ctx, previewID); relErr != nil {
			m.log.Errorf("releasing preview %s after failed order write: %v", previewID, relErr)
		}
		return nil, fmt.Errorf("persisting order: %w", err)
	}

	m.log.Infof("order %s (%s) created from preview %s", order.ID, order.OrderCode, previewID)

	report := &FinalizeReport{Order: order}

	var location *Location
	report.record("location_lookup", m.step(ctx, func(sctx context.Context) error {
		var lerr error
		location, lerr = m.lookupLocation(sctx, order.LocationID)
		return lerr
	}))

	report.record("customer_sms", m.step(ctx, func(sctx context.Context) error {
		return m.sendCustomerSMS(sctx, order)
	}))
	report.record("staff_alert_sms", m.step(ctx, func(sctx context.Context) error {
		return m.sendStaffAlerts(sctx, order, location)
	}))
	report.record("order_received_broadcast", m.step(ctx, func(sctx context.Context) error {
		m.broadcastOrderReceived(order)
		return nil
	}))

	if location != nil && location.AutoAcceptOrder {
		report.record("auto_accept", m.step(ctx, func(sctx context.Context) error {
			return m.autoAccept(sctx, order)
		}))
	}

	report.record("push_notification", m.step(ctx, func(sctx context.Context) error {
		return m.pusher.Push(sctx, order.RestaurantID,
			"New Order", fmt.Sprintf("Order #%s received!", order.OrderCode))
	}))

	return report, nil
}

// step runs one side effect under the configured timeout, logging failures.
func (m *LifecycleManager) step(ctx context.Context, fn func(context.Context) error) error {
	sctx, cancel := context.WithTimeout(ctx, m.stepTimeout)
	defer cancel()
	if err := fn(sctx); err != nil {
		m.log.Errorf("finalize side effect failed: %v", err)
		return err
	}
	return nil
}

func (m *LifecycleManager) lookupLocation(ctx context.Context, id uuid.UUID) (*Location, error) {
	location, err := m.locations.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if location == nil {
		return nil, fmt.Errorf("location %s: %w", id, ErrNotFound)
	}
	return location, nil
}

func (m *LifecycleManager) sendCustomerSMS(ctx context.Context, order *Order) error {
	if !order.GetSMS || order.Customer.Phone == "" {
		return nil
	}
	restaurantName := order.RestaurantID
	if restaurant, err := m.restaurants.Get(ctx, order.RestaurantID); err == nil && restaurant != nil {
		restaurantName = restaurant.Name
	}
	statusLink := fmt.Sprintf("%s/status/%s/%s", m.statusBase, order.RestaurantID, order.ID)
	text := fmt.Sprintf("OrderBuddy-%s: your order #%s has been accepted, track progress here %s",
		restaurantName, order.OrderCode, statusLink)
	return m.messenger.SendSMS(ctx, order.Customer.Phone, text)
}

func (m *LifecycleManager) sendStaffAlerts(ctx context.Context, order *Order, location *Location) error {
	if location == nil || len(location.AlertNumbers) == 0 {
		return nil
	}
	text := fmt.Sprintf("OrderBuddy- you have received an order #%s", order.OrderCode)
	var firstErr error
	for _, number := range location.AlertNumbers {
		if err := m.messenger.SendSMS(ctx, number.PhoneNumber, text); err != nil {
			m.log.Errorf("alert sms to %s failed: %v", number.PhoneNumber, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (m *LifecycleManager) broadcastOrderReceived(order *Order) {
	room := event.LocationRoom(order.RestaurantID, order.LocationID.String())
	m.sink.ServerBroadcast(event.EventOrderReceived, room, event.OrderReceivedEvent{
		OrderID:       order.ID.String(),
		OrderCode:     order.OrderCode,
		RestaurantID:  order.RestaurantID,
		LocationID:    order.LocationID.String(),
		CorrelationID: order.Meta.CorrelationID,
	})
}

func (m *LifecycleManager) autoAccept(ctx context.Context, order *Order) error {
	order.Accept("system", true, time.Now())
	if err := m.orders.Save(ctx, order); err != nil {
		return fmt.Errorf("saving auto-accepted order: %w", err)
	}
	m.broadcastStatus(order)
	routed, err := m.sink.RouteOrderToStations(ctx, order)
	if err != nil {
		return err
	}
	m.log.Infof("order %s auto-accepted, routed to %d stations", order.ID, routed)
	return nil
}

// UpdateStatus moves the order through its workflow. Transitions outside the
// allowed graph fail with ErrInvalidTransition; a repeated status is a no-op
// that still returns the order.
func (m *LifecycleManager) UpdateStatus(ctx context.Context, orderID uuid.UUID, status, actor string) (*Order, error) {
	if orderstatus.ByName(status) == nil {
		return nil, fmt.Errorf("%w: unknown status %s", ErrInvalidTransition, status)
	}

	order, err := m.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}

	if order.Status == status {
		return order, nil
	}
	if !orderstatus.CanTransition(order.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, status)
	}

	now := time.Now()
	switch status {
	case orderstatus.Statuses.Accepted.Name:
		order.Accept(actor, false, now)
	case orderstatus.Statuses.ReadyForPickup.Name:
		order.MarkReadyForPickup(now)
	default:
		order.Close(status, now)
	}

	if err := m.orders.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("saving order %s: %w", orderID, err)
	}

	m.log.Infof("order %s moved to %s by %s", order.ID, status, actor)
	m.broadcastStatus(order)

	if status == orderstatus.Statuses.Accepted.Name {
		if routed, err := m.sink.RouteOrderToStations(ctx, order); err != nil {
			m.log.Errorf("routing order %s to stations: %v", order.ID, err)
		} else {
			m.log.Infof("order %s routed to %d stations", order.ID, routed)
		}
	}

	return order, nil
}

// SetWaitTime updates the estimated wait and tells the customer's order room.
func (m *LifecycleManager) SetWaitTime(ctx context.Context, orderID uuid.UUID, minutes int) (*Order, error) {
	order, err := m.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}

	order.WaitTimeMinutes = minutes
	if err := m.orders.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("saving order %s: %w", orderID, err)
	}

	payload := event.OrderWaitTimeEvent{
		OrderID:           order.ID.String(),
		RestaurantID:      order.RestaurantID,
		WaitTimeInMinutes: minutes,
		CorrelationID:     order.Meta.CorrelationID,
	}
	m.sink.ServerBroadcast(event.EventOrderWaitTime, order.RestaurantID, payload)
	m.sink.ServerBroadcast(event.EventOrderWaitTime, order.ID.String(), payload)

	return order, nil
}

// Get returns the order by id.
func (m *LifecycleManager) Get(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	order, err := m.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}
	return order, nil
}

// broadcastStatus announces a status change to the restaurant dashboard room
// and to the customer's order room.
func (m *LifecycleManager) broadcastStatus(order *Order) {
	name := statusEventName(order.Status)
	if name == "" {
		return
	}
	payload := event.OrderStatusEvent{
		OrderID:       order.ID.String(),
		OrderCode:     order.OrderCode,
		RestaurantID:  order.RestaurantID,
		Status:        order.Status,
		CorrelationID: order.Meta.CorrelationID,
		OccurredAt:    time.Now(),
	}
	m.sink.ServerBroadcast(name, order.RestaurantID, payload)
	m.sink.ServerBroadcast(name, order.ID.String(), payload)
}

func statusEventName(status string) string {
	switch status {
	case orderstatus.Statuses.Accepted.Name:
		return event.EventOrderAccepted
	case orderstatus.Statuses.ReadyForPickup.Name:
		return event.EventOrderReadyForPickup
	case orderstatus.Statuses.PickedUp.Name:
		return event.EventOrderCompleted
	case orderstatus.Statuses.Cancelled.Name:
		return event.EventOrderCancelled
	default:
		return ""
	}
}
