package ordering

import (
	"context"
	"fmt"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"
)

// DefaultPreviewTTL bounds how long an unpaid preview stays claimable.
const DefaultPreviewTTL = 30 * time.Minute

// PreviewOrder is a fully validated, server-priced snapshot of a draft,
// persisted until payment settles or the TTL reaps it. Consumed flips
// exactly once, when an order is finalized from it.
type PreviewOrder struct {
	ID              uuid.UUID   `json:"id" bson:"_id"`
	RestaurantID    string      `json:"restaurant_id" bson:"restaurant_id"`
	LocationID      uuid.UUID   `json:"location_id" bson:"location_id"`
	LocationSlug    string      `json:"location_slug,omitempty" bson:"location_slug,omitempty"`
	Customer        Customer    `json:"customer" bson:"customer"`
	Origin          OriginRef   `json:"origin" bson:"origin"`
	Items           []OrderItem `json:"items" bson:"items"`
	SubtotalCents   int         `json:"subtotal_cents" bson:"subtotal_cents"`
	TaxCents        int         `json:"tax_cents" bson:"tax_cents"`
	DiscountCents   int         `json:"discount_cents" bson:"discount_cents"`
	TotalPriceCents int         `json:"total_price_cents" bson:"total_price_cents"`
	GetSMS          bool        `json:"get_sms" bson:"get_sms"`
	Consumed        bool        `json:"-" bson:"consumed"`
	CreatedAt       time.Time   `json:"created_at" bson:"created_at"`
}

func (p *PreviewOrder) GetID() uuid.UUID {
	return p.ID
}

func (p *PreviewOrder) ResourceType() string {
	return "preview-order"
}

// PreviewStore validates drafts and keeps the resulting previews until they
// are finalized or expire.
type PreviewStore struct {
	previews  PreviewRepo
	validator *PriceValidator
	locations LocationRepo
	log       apt.Logger
}

func NewPreviewStore(previews PreviewRepo, validator *PriceValidator, locations LocationRepo, log apt.Logger) *PreviewStore {
	return &PreviewStore{
		previews:  previews,
		validator: validator,
		locations: locations,
		log:       log,
	}
}

// CreatePreviewOrder validates and prices the draft, checks the location is
// open, and persists the resulting snapshot. The returned preview id is what
// the payment flow later finalizes against.
func (s *PreviewStore) CreatePreviewOrder(ctx context.Context, draft *OrderDraft) (*PreviewOrder, error) {
	location, err := s.resolveLocation(ctx, draft)
	if err != nil {
		return nil, err
	}
	if location == nil || !location.IsActive {
		return nil, fmt.Errorf("location %s: %w", draft.LocationSlug, ErrNotFound)
	}

	open, err := location.IsOpenAt(time.Now())
	if err != nil {
		return nil, fmt.Errorf("working hours for location %s: %w", location.ID, err)
	}
	if !open {
		return nil, fmt.Errorf("location %s is not accepting orders right now", location.LocationSlug)
	}

	draft.LocationID = location.ID
	draft.LocationSlug = location.LocationSlug

	pricing, err := s.validator.ValidateAndPrice(ctx, draft)
	if err != nil {
		return nil, err
	}

	preview := &PreviewOrder{
		ID:              apt.GenerateNewID(),
		RestaurantID:    draft.RestaurantID,
		LocationID:      location.ID,
		LocationSlug:    location.LocationSlug,
		Customer:        draft.Customer,
		Origin:          draft.Origin,
		Items:           pricing.Items,
		SubtotalCents:   pricing.SubtotalCents,
		TaxCents:        pricing.TaxCents,
		DiscountCents:   pricing.DiscountCents,
		TotalPriceCents: pricing.TotalCents,
		GetSMS:          draft.GetSMS,
		CreatedAt:       time.Now(),
	}

	if err := s.previews.Create(ctx, preview); err != nil {
		return nil, fmt.Errorf("persisting preview: %w", err)
	}

	s.log.Infof("preview %s created for %s/%s, total %d cents",
		preview.ID, preview.RestaurantID, preview.LocationSlug, preview.TotalPriceCents)

	return preview, nil
}

// Get returns a preview by id, consumed or not.
func (s *PreviewStore) Get(ctx context.Context, id uuid.UUID) (*PreviewOrder, error) {
	preview, err := s.previews.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if preview == nil {
		return nil, fmt.Errorf("preview %s: %w", id, ErrNotFound)
	}
	return preview, nil
}

func (s *PreviewStore) resolveLocation(ctx context.Context, draft *OrderDraft) (*Location, error) {
	if draft.LocationID != uuid.Nil {
		return s.locations.Get(ctx, draft.LocationID)
	}
	return s.locations.GetBySlug(ctx, draft.RestaurantID, draft.LocationSlug)
}
