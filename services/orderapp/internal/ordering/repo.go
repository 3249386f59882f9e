package ordering

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned by repositories when the requested document does
// not exist (or, for previews, was already consumed).
var ErrNotFound = errors.New("not found")

// MenuRepo reads the menu catalog. The ordering surface never writes menus.
type MenuRepo interface {
	Get(ctx context.Context, id uuid.UUID) (*Menu, error)
	GetBySlug(ctx context.Context, restaurantID string, locationID uuid.UUID, menuSlug string) (*Menu, error)
	ListForLocation(ctx context.Context, restaurantID string, locationID uuid.UUID) ([]MenuSummary, error)
}

// PreviewRepo persists validated previews until payment settles. Consume
// claims a preview exactly once; Release undoes a claim when the follow-up
// order write fails.
type PreviewRepo interface {
	Create(ctx context.Context, preview *PreviewOrder) error
	Get(ctx context.Context, id uuid.UUID) (*PreviewOrder, error)
	Consume(ctx context.Context, id uuid.UUID) (*PreviewOrder, error)
	Release(ctx context.Context, id uuid.UUID) error
}

// OrderRepo persists confirmed orders.
type OrderRepo interface {
	Create(ctx context.Context, order *Order) error
	Get(ctx context.Context, id uuid.UUID) (*Order, error)
	Save(ctx context.Context, order *Order) error
	MarkItemStarted(ctx context.Context, orderID uuid.UUID, itemID string) (*Order, error)
	MarkItemCompleted(ctx context.Context, orderID uuid.UUID, itemID string) (*Order, error)
	ListForStation(ctx context.Context, restaurantID string, locationID uuid.UUID, tags []string) ([]Order, error)
}

// LocationRepo reads location settings.
type LocationRepo interface {
	Get(ctx context.Context, id uuid.UUID) (*Location, error)
	GetBySlug(ctx context.Context, restaurantID, locationSlug string) (*Location, error)
}

// RestaurantRepo reads restaurant profiles.
type RestaurantRepo interface {
	Get(ctx context.Context, id string) (*Restaurant, error)
}

// CampaignRepo looks up the active campaign for an order origin, if any.
type CampaignRepo interface {
	ActiveForOrigin(ctx context.Context, restaurantID string, locationID uuid.UUID, originID string) (*Campaign, error)
}

// StationRepo persists kitchen stations.
type StationRepo interface {
	Create(ctx context.Context, station *Station) error
	Get(ctx context.Context, id uuid.UUID) (*Station, error)
	Save(ctx context.Context, station *Station) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListForLocation(ctx context.Context, restaurantID string, locationID uuid.UUID) ([]Station, error)
	FindByTags(ctx context.Context, restaurantID string, locationID uuid.UUID, tags []string) ([]Station, error)
}
