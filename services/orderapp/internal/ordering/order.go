package ordering

import (
	"strings"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"

	"github.com/orderbuddy/orderbuddy/pkg/enums/orderstatus"
)

type Customer struct {
	Name  string `json:"name" bson:"name"`
	Phone string `json:"phone,omitempty" bson:"phone,omitempty"`
}

type OriginRef struct {
	ID   string `json:"id" bson:"id"`
	Name string `json:"name,omitempty" bson:"name,omitempty"`
}

// SelectedModifier records which options the customer picked for one
// modifier group, in selection order.
type SelectedModifier struct {
	ID        string   `json:"id" bson:"id"`
	OptionIDs []string `json:"option_ids" bson:"option_ids"`
}

// OrderItem is a line item whose price was stamped by the price validator.
// The kitchen workflow mutates only the two timestamps.
type OrderItem struct {
	ID          string             `json:"id" bson:"id"`
	MenuItemID  string             `json:"menu_item_id" bson:"menu_item_id"`
	Name        string             `json:"name" bson:"name"`
	PriceCents  int                `json:"price_cents" bson:"price_cents"`
	VariantIDs  []string           `json:"variant_ids,omitempty" bson:"variant_ids,omitempty"`
	Modifiers   []SelectedModifier `json:"modifiers,omitempty" bson:"modifiers,omitempty"`
	StationTags []string           `json:"station_tags,omitempty" bson:"station_tags,omitempty"`
	Notes       string             `json:"notes,omitempty" bson:"notes,omitempty"`
	StartedAt   *time.Time         `json:"started_at,omitempty" bson:"started_at,omitempty"`
	CompletedAt *time.Time         `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
}

// OrderMeta carries correlation and acceptance metadata.
type OrderMeta struct {
	CorrelationID string     `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	AcceptedBy    string     `json:"accepted_by,omitempty" bson:"accepted_by,omitempty"`
	AcceptedAt    *time.Time `json:"accepted_at,omitempty" bson:"accepted_at,omitempty"`
	AutoAccept    bool       `json:"auto_accept,omitempty" bson:"auto_accept,omitempty"`
}

// Order is the confirmed, durable order built from a consumed preview.
type Order struct {
	ID              uuid.UUID   `json:"id" bson:"_id"`
	OrderCode       string      `json:"order_code" bson:"order_code"`
	PaymentID       string      `json:"payment_id,omitempty" bson:"payment_id,omitempty"`
	RestaurantID    string      `json:"restaurant_id" bson:"restaurant_id"`
	LocationID      uuid.UUID   `json:"location_id" bson:"location_id"`
	LocationSlug    string      `json:"location_slug,omitempty" bson:"location_slug,omitempty"`
	Meta            OrderMeta   `json:"meta" bson:"meta"`
	Customer        Customer    `json:"customer" bson:"customer"`
	Origin          OriginRef   `json:"origin" bson:"origin"`
	Items           []OrderItem `json:"items" bson:"items"`
	SubtotalCents   int         `json:"subtotal_cents" bson:"subtotal_cents"`
	TaxCents        int         `json:"tax_cents" bson:"tax_cents"`
	DiscountCents   int         `json:"discount_cents" bson:"discount_cents"`
	TotalPriceCents int         `json:"total_price_cents" bson:"total_price_cents"`
	Status          string      `json:"status" bson:"status"`
	StartedAt       time.Time   `json:"started_at" bson:"started_at"`
	EndedAt         *time.Time  `json:"ended_at,omitempty" bson:"ended_at,omitempty"`
	WaitTimeMinutes int         `json:"wait_time_in_minutes,omitempty" bson:"wait_time_in_minutes,omitempty"`
	GetSMS          bool        `json:"get_sms" bson:"get_sms"`
}

func (o *Order) GetID() uuid.UUID {
	return o.ID
}

func (o *Order) ResourceType() string {
	return "order"
}

func (o *Order) SetID(id uuid.UUID) {
	o.ID = id
}

// OrderCodeFor derives the short pickup code shown to customers: the last
// four characters of the id, upper-cased.
func OrderCodeFor(id uuid.UUID) string {
	s := id.String()
	return strings.ToUpper(s[len(s)-4:])
}

// NewOrderFromPreview builds the durable order out of a validated preview
// snapshot. The order gets its own id and code; items and totals are copied
// verbatim from the preview.
func NewOrderFromPreview(p *PreviewOrder, paymentID, correlationID string) *Order {
	id := apt.GenerateNewID()
	items := make([]OrderItem, len(p.Items))
	copy(items, p.Items)

	return &Order{
		ID:              id,
		OrderCode:       OrderCodeFor(id),
		PaymentID:       paymentID,
		RestaurantID:    p.RestaurantID,
		LocationID:      p.LocationID,
		LocationSlug:    p.LocationSlug,
		Meta:            OrderMeta{CorrelationID: correlationID},
		Customer:        p.Customer,
		Origin:          p.Origin,
		Items:           items,
		SubtotalCents:   p.SubtotalCents,
		TaxCents:        p.TaxCents,
		DiscountCents:   p.DiscountCents,
		TotalPriceCents: p.TotalPriceCents,
		Status:          orderstatus.Statuses.Created.Code(),
		StartedAt:       time.Now(),
		GetSMS:          p.GetSMS,
	}
}

// StationTagUnion returns the de-duplicated union of station tags across all
// items, preserving first-seen order.
func (o *Order) StationTagUnion() []string {
	seen := make(map[string]struct{})
	var tags []string
	for _, item := range o.Items {
		for _, tag := range item.StationTags {
			if tag == "" {
				continue
			}
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}
	return tags
}

// ItemsMatching returns the items whose tags intersect the given set.
func (o *Order) ItemsMatching(tags []string) []OrderItem {
	want := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		want[tag] = struct{}{}
	}
	var out []OrderItem
	for _, item := range o.Items {
		for _, tag := range item.StationTags {
			if _, ok := want[tag]; ok {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

// Item returns the line item with the given id.
func (o *Order) Item(id string) (*OrderItem, bool) {
	for i := range o.Items {
		if o.Items[i].ID == id {
			return &o.Items[i], true
		}
	}
	return nil, false
}

// Accept stamps acceptance metadata and moves the order to ACCEPTED.
func (o *Order) Accept(by string, auto bool, at time.Time) {
	o.Status = orderstatus.Statuses.Accepted.Code()
	o.Meta.AcceptedBy = by
	o.Meta.AcceptedAt = &at
	o.Meta.AutoAccept = auto
}

// MarkReadyForPickup moves the order to READY_FOR_PICKUP and closes out item
// timestamps: items without a completion time get one now, items that were
// never started inherit the order's own start time.
func (o *Order) MarkReadyForPickup(at time.Time) {
	o.Status = orderstatus.Statuses.ReadyForPickup.Code()
	for i := range o.Items {
		if o.Items[i].StartedAt == nil {
			started := o.StartedAt
			o.Items[i].StartedAt = &started
		}
		if o.Items[i].CompletedAt == nil {
			completed := at
			o.Items[i].CompletedAt = &completed
		}
	}
}

// Close stamps a terminal status and the end time.
func (o *Order) Close(status string, at time.Time) {
	o.Status = status
	o.EndedAt = &at
}
