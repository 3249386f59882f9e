package ordering

import (
	"context"
	"fmt"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"

	"github.com/orderbuddy/orderbuddy/pkg/enums/itemaction"
	"github.com/orderbuddy/orderbuddy/pkg/event"
)

// ItemTracker applies kitchen progress to individual order items and fans the
// change out to matching stations and the location dashboard.
type ItemTracker struct {
	orders OrderRepo
	sink   EventSink
	log    apt.Logger
}

func NewItemTracker(orders OrderRepo, sink EventSink, log apt.Logger) *ItemTracker {
	return &ItemTracker{
		orders: orders,
		sink:   sink,
		log:    log,
	}
}

// Apply marks one item as started or completed. The write targets the item
// inside the order document; a missing order or item fails with ErrNotFound.
// Broadcast failures never undo the write.
func (t *ItemTracker) Apply(ctx context.Context, orderID uuid.UUID, itemID, action string) (*Order, error) {
	act := itemaction.ByName(action)
	if act == nil {
		return nil, fmt.Errorf("unknown item action %s", action)
	}

	var (
		order *Order
		err   error
	)
	switch *act {
	case itemaction.Actions.Started:
		order, err = t.orders.MarkItemStarted(ctx, orderID, itemID)
	case itemaction.Actions.Completed:
		order, err = t.orders.MarkItemCompleted(ctx, orderID, itemID)
	}
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("order %s item %s: %w", orderID, itemID, ErrNotFound)
	}

	name := event.EventOrderItemStarted
	if *act == itemaction.Actions.Completed {
		name = event.EventOrderItemCompleted
	}
	if err := t.sink.RouteItemEvent(ctx, order, itemID, name); err != nil {
		t.log.Errorf("broadcasting %s for order %s item %s: %v", name, orderID, itemID, err)
	}

	return order, nil
}
