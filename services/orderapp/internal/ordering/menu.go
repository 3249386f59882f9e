package ordering

import (
	"time"

	"github.com/google/uuid"
)

// Menu is the canonical catalog for one (restaurant, location). It is
// read-only to this service; the menu-management surface owns it.
type Menu struct {
	ID           uuid.UUID  `json:"id" bson:"_id"`
	RestaurantID string     `json:"restaurant_id" bson:"restaurant_id"`
	LocationID   uuid.UUID  `json:"location_id" bson:"location_id"`
	MenuSlug     string     `json:"menu_slug" bson:"menu_slug"`
	Name         string     `json:"name" bson:"name"`
	Items        []MenuItem `json:"items" bson:"items"`
	SalesTax     float64    `json:"sales_tax" bson:"sales_tax"` // percent
	Available    bool       `json:"available" bson:"available"`
	CreatedAt    time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" bson:"updated_at"`
}

// MenuItem is a dish, drink or any orderable product. Station tags drive
// kitchen routing; variants replace the base price, modifiers add to it.
type MenuItem struct {
	ID          string     `json:"id" bson:"id"`
	Name        string     `json:"name" bson:"name"`
	CategoryID  string     `json:"category_id,omitempty" bson:"category_id,omitempty"`
	PriceCents  int        `json:"price_cents" bson:"price_cents"`
	IsAvailable bool       `json:"is_available" bson:"is_available"`
	StationTags []string   `json:"station_tags,omitempty" bson:"station_tags,omitempty"`
	Variants    []Variant  `json:"variants,omitempty" bson:"variants,omitempty"`
	Modifiers   []Modifier `json:"modifiers,omitempty" bson:"modifiers,omitempty"`
}

// Variant is a priced alternative of a menu item. Selecting one replaces the
// base price, it is never additive.
type Variant struct {
	ID         string `json:"id" bson:"id"`
	Name       string `json:"name" bson:"name"`
	PriceCents int    `json:"price_cents" bson:"price_cents"`
	Default    bool   `json:"default,omitempty" bson:"default,omitempty"`
}

// Modifier is an optional add-on group with tiered pricing.
type Modifier struct {
	ID                    string           `json:"id" bson:"id"`
	Name                  string           `json:"name" bson:"name"`
	MaxChoices            int              `json:"max_choices" bson:"max_choices"`
	FreeChoices           int              `json:"free_choices" bson:"free_choices"`
	ExtraChoicePriceCents int              `json:"extra_choice_price_cents" bson:"extra_choice_price_cents"`
	Options               []ModifierOption `json:"options" bson:"options"`
}

type ModifierOption struct {
	ID         string `json:"id" bson:"id"`
	Name       string `json:"name" bson:"name"`
	PriceCents int    `json:"price_cents" bson:"price_cents"`
}

func (m *Menu) GetID() uuid.UUID {
	return m.ID
}

func (m *Menu) ResourceType() string {
	return "menu"
}

// Item returns the menu item with the given id.
func (m *Menu) Item(id string) (*MenuItem, bool) {
	for i := range m.Items {
		if m.Items[i].ID == id {
			return &m.Items[i], true
		}
	}
	return nil, false
}

// AvailableItems returns the items customers may currently order.
func (m *Menu) AvailableItems() []MenuItem {
	out := make([]MenuItem, 0, len(m.Items))
	for _, item := range m.Items {
		if item.IsAvailable {
			out = append(out, item)
		}
	}
	return out
}

func (mi *MenuItem) Variant(id string) (*Variant, bool) {
	for i := range mi.Variants {
		if mi.Variants[i].ID == id {
			return &mi.Variants[i], true
		}
	}
	return nil, false
}

func (mi *MenuItem) Modifier(id string) (*Modifier, bool) {
	for i := range mi.Modifiers {
		if mi.Modifiers[i].ID == id {
			return &mi.Modifiers[i], true
		}
	}
	return nil, false
}

func (mo *Modifier) Option(id string) (*ModifierOption, bool) {
	for i := range mo.Options {
		if mo.Options[i].ID == id {
			return &mo.Options[i], true
		}
	}
	return nil, false
}

// MenuSummary is the projection returned when listing a location's menus.
type MenuSummary struct {
	ID        uuid.UUID `json:"id" bson:"_id"`
	MenuSlug  string    `json:"menu_slug" bson:"menu_slug"`
	Name      string    `json:"name" bson:"name"`
	Available bool      `json:"available" bson:"available"`
}
