package ordering

import (
	"context"
	"errors"
	"testing"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"

	"github.com/orderbuddy/orderbuddy/pkg/enums/itemaction"
	"github.com/orderbuddy/orderbuddy/pkg/event"
)

func newTrackerFixture() (*ItemTracker, *MockOrderRepo, *MockEventSink) {
	orders := NewMockOrderRepo()
	sink := &MockEventSink{}
	tracker := NewItemTracker(orders, sink, apt.NewNoopLogger())
	return tracker, orders, sink
}

func TestItemStartedThenCompleted(t *testing.T) {
	tracker, orders, sink := newTrackerFixture()
	order := NewOrderFromPreview(testPreview(), "", "")
	orders.Create(context.Background(), order)

	updated, err := tracker.Apply(context.Background(), order.ID, "item-1", itemaction.Actions.Started.Name)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	item, _ := updated.Item("item-1")
	if item.StartedAt == nil {
		t.Fatal("started_at not stamped")
	}
	if item.CompletedAt != nil {
		t.Fatal("starting must clear completed_at")
	}
	startedAt := *item.StartedAt

	updated, err = tracker.Apply(context.Background(), order.ID, "item-1", itemaction.Actions.Completed.Name)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	item, _ = updated.Item("item-1")
	if item.StartedAt == nil || !item.StartedAt.Equal(startedAt) {
		t.Error("completing must leave started_at unchanged")
	}
	if item.CompletedAt == nil {
		t.Error("completed_at not stamped")
	}

	if len(sink.ItemEvents) != 2 {
		t.Fatalf("expected 2 item events, got %d", len(sink.ItemEvents))
	}
	if sink.ItemEvents[0] != event.EventOrderItemStarted || sink.ItemEvents[1] != event.EventOrderItemCompleted {
		t.Errorf("unexpected events %v", sink.ItemEvents)
	}
}

func TestItemUpdateMissingOrder(t *testing.T) {
	tracker, _, _ := newTrackerFixture()

	_, err := tracker.Apply(context.Background(), uuid.New(), "item-1", itemaction.Actions.Started.Name)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestItemUpdateMissingItem(t *testing.T) {
	tracker, orders, _ := newTrackerFixture()
	order := NewOrderFromPreview(testPreview(), "", "")
	orders.Create(context.Background(), order)

	_, err := tracker.Apply(context.Background(), order.ID, "no-such-item", itemaction.Actions.Started.Name)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestItemUpdateUnknownAction(t *testing.T) {
	tracker, orders, _ := newTrackerFixture()
	order := NewOrderFromPreview(testPreview(), "", "")
	orders.Create(context.Background(), order)

	if _, err := tracker.Apply(context.Background(), order.ID, "item-1", "PAUSED"); err == nil {
		t.Fatal("expected unknown action to fail")
	}
}

func TestItemBroadcastFailureDoesNotUndoWrite(t *testing.T) {
	tracker, orders, sink := newTrackerFixture()
	order := NewOrderFromPreview(testPreview(), "", "")
	orders.Create(context.Background(), order)

	sink.RouteItemFunc = func(ctx context.Context, order *Order, itemID, eventName string) error {
		return errors.New("gateway unavailable")
	}

	updated, err := tracker.Apply(context.Background(), order.ID, "item-1", itemaction.Actions.Started.Name)
	if err != nil {
		t.Fatalf("broadcast failure must not surface: %v", err)
	}
	item, _ := updated.Item("item-1")
	if item.StartedAt == nil {
		t.Error("write must survive a failed broadcast")
	}
}
