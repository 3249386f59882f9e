package ordering

import (
	"context"
	"fmt"
	"math"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"
)

// DraftItem is one line of an incoming order before validation. Prices sent
// by the client are ignored; the validator recomputes everything from the
// menu.
type DraftItem struct {
	MenuItemID string             `json:"menu_item_id"`
	VariantIDs []string           `json:"variant_ids,omitempty"`
	Modifiers  []SelectedModifier `json:"modifiers,omitempty"`
	Notes      string             `json:"notes,omitempty"`
}

// OrderDraft is the client-submitted order payload.
type OrderDraft struct {
	RestaurantID string      `json:"restaurant_id"`
	LocationID   uuid.UUID   `json:"location_id"`
	LocationSlug string      `json:"location_slug,omitempty"`
	MenuID       uuid.UUID   `json:"menu_id,omitempty"`
	MenuSlug     string      `json:"menu_slug,omitempty"`
	Customer     Customer    `json:"customer"`
	Origin       OriginRef   `json:"origin"`
	GetSMS       bool        `json:"get_sms"`
	Items        []DraftItem `json:"items"`
}

// Pricing is the result of validating a draft against the menu: stamped line
// items plus the total breakdown.
type Pricing struct {
	Items         []OrderItem `json:"items"`
	SubtotalCents int         `json:"subtotal_cents"`
	TaxCents      int         `json:"tax_cents"`
	DiscountCents int         `json:"discount_cents"`
	TotalCents    int         `json:"total_cents"`
}

// PriceValidator recomputes every price server-side from the menu document.
// Client-sent prices never survive validation.
type PriceValidator struct {
	menus     MenuRepo
	campaigns CampaignRepo
	log       apt.Logger
}

func NewPriceValidator(menus MenuRepo, campaigns CampaignRepo, log apt.Logger) *PriceValidator {
	return &PriceValidator{
		menus:     menus,
		campaigns: campaigns,
		log:       log,
	}
}

// ValidateAndPrice resolves the draft against the menu and computes the full
// price breakdown. A missing or unavailable menu, item, variant or modifier
// aborts the whole draft with ErrNotFound. Unknown modifier options are
// skipped with a warning and contribute nothing.
func (v *PriceValidator) ValidateAndPrice(ctx context.Context, draft *OrderDraft) (*Pricing, error) {
	menu, err := v.resolveMenu(ctx, draft)
	if err != nil {
		return nil, err
	}
	if menu == nil || !menu.Available {
		return nil, fmt.Errorf("menu %s: %w", draft.MenuSlug, ErrNotFound)
	}

	pricing := &Pricing{
		Items: make([]OrderItem, 0, len(draft.Items)),
	}

	for _, line := range draft.Items {
		item, ok := menu.Item(line.MenuItemID)
		if !ok || !item.IsAvailable {
			return nil, fmt.Errorf("menu item %s: %w", line.MenuItemID, ErrNotFound)
		}

		price := item.PriceCents
		for i, variantID := range line.VariantIDs {
			variant, ok := item.Variant(variantID)
			if !ok {
				return nil, fmt.Errorf("variant %s of item %s: %w", variantID, item.ID, ErrNotFound)
			}
			if i > 0 {
				v.log.Infof("item %s carries multiple variants, keeping %s", item.ID, variantID)
			}
			price = variant.PriceCents
		}

		for _, selected := range line.Modifiers {
			modifier, ok := item.Modifier(selected.ID)
			if !ok {
				return nil, fmt.Errorf("modifier %s of item %s: %w", selected.ID, item.ID, ErrNotFound)
			}
			price += v.modifierPrice(modifier, selected.OptionIDs)
		}

		pricing.Items = append(pricing.Items, OrderItem{
			ID:          apt.GenerateNewID().String(),
			MenuItemID:  item.ID,
			Name:        item.Name,
			PriceCents:  price,
			VariantIDs:  line.VariantIDs,
			Modifiers:   line.Modifiers,
			StationTags: item.StationTags,
			Notes:       line.Notes,
		})
		pricing.SubtotalCents += price
	}

	pricing.TaxCents = int(math.Round(float64(pricing.SubtotalCents) * menu.SalesTax / 100))
	withTax := pricing.SubtotalCents + pricing.TaxCents

	pricing.DiscountCents = v.discountFor(ctx, draft, withTax)
	pricing.TotalCents = withTax - pricing.DiscountCents
	if pricing.TotalCents < 0 {
		pricing.TotalCents = 0
	}

	return pricing, nil
}

func (v *PriceValidator) resolveMenu(ctx context.Context, draft *OrderDraft) (*Menu, error) {
	if draft.MenuID != uuid.Nil {
		return v.menus.Get(ctx, draft.MenuID)
	}
	return v.menus.GetBySlug(ctx, draft.RestaurantID, draft.LocationID, draft.MenuSlug)
}

// modifierPrice sums the contribution of the selected options for one
// modifier group. Selections beyond maxChoices are dropped. The first
// freeChoices picks cost nothing unless the group has no free tier, in which
// case every pick costs its own price. Paid picks cost the group's flat
// extra-choice price when one is set, otherwise the option's own price.
func (v *PriceValidator) modifierPrice(modifier *Modifier, optionIDs []string) int {
	selected := optionIDs
	if len(selected) > modifier.MaxChoices {
		v.log.Infof("modifier %s: %d options selected, keeping first %d",
			modifier.ID, len(selected), modifier.MaxChoices)
		selected = selected[:modifier.MaxChoices]
	}

	total := 0
	for i, optionID := range selected {
		option, ok := modifier.Option(optionID)
		if !ok {
			v.log.Infof("modifier %s: unknown option %s, skipping", modifier.ID, optionID)
			continue
		}
		if i < modifier.FreeChoices {
			continue
		}
		if modifier.FreeChoices == 0 {
			total += option.PriceCents
			continue
		}
		if modifier.ExtraChoicePriceCents > 0 {
			total += modifier.ExtraChoicePriceCents
		} else {
			total += option.PriceCents
		}
	}
	return total
}

// discountFor looks up the active campaign for the draft's origin. Lookup
// failures are logged and treated as no discount; a campaign never blocks an
// order. The discount is capped at the taxed total.
func (v *PriceValidator) discountFor(ctx context.Context, draft *OrderDraft, withTax int) int {
	if v.campaigns == nil || draft.Origin.ID == "" {
		return 0
	}
	campaign, err := v.campaigns.ActiveForOrigin(ctx, draft.RestaurantID, draft.LocationID, draft.Origin.ID)
	if err != nil {
		v.log.Errorf("campaign lookup for origin %s failed: %v", draft.Origin.ID, err)
		return 0
	}
	if campaign == nil || !campaign.IsActive {
		return 0
	}
	discount := campaign.Reward.FlatOffCents
	if discount > withTax {
		discount = withTax
	}
	if discount < 0 {
		return 0
	}
	return discount
}
