package ordering

import (
	"context"
	"errors"
	"testing"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"
)

var (
	testRestaurantID = "trattoria-uno"
	testLocationID   = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	testMenuID       = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

func testMenu() *Menu {
	return &Menu{
		ID:           testMenuID,
		RestaurantID: testRestaurantID,
		LocationID:   testLocationID,
		MenuSlug:     "main",
		Name:         "Main",
		SalesTax:     8,
		Available:    true,
		Items: []MenuItem{
			{
				ID:          "pizza",
				Name:        "Pizza",
				PriceCents:  1000,
				IsAvailable: true,
				StationTags: []string{"grill"},
				Variants: []Variant{
					{ID: "small", Name: "Small", PriceCents: 800},
					{ID: "large", Name: "Large", PriceCents: 1200},
				},
				Modifiers: []Modifier{
					{
						ID:                    "extras",
						Name:                  "Extras",
						MaxChoices:            2,
						FreeChoices:           1,
						ExtraChoicePriceCents: 200,
						Options: []ModifierOption{
							{ID: "cheese", Name: "Cheese", PriceCents: 300},
							{ID: "ham", Name: "Ham", PriceCents: 300},
						},
					},
				},
			},
			{
				ID:          "soda",
				Name:        "Soda",
				PriceCents:  450,
				IsAvailable: true,
				StationTags: []string{"drinks"},
			},
			{
				ID:          "off-menu",
				Name:        "Seasonal Special",
				PriceCents:  900,
				IsAvailable: false,
			},
			{
				ID:          "salad",
				Name:        "Salad",
				PriceCents:  700,
				IsAvailable: true,
				Modifiers: []Modifier{
					{
						ID:          "dressings",
						Name:        "Dressings",
						MaxChoices:  3,
						FreeChoices: 2,
						// No flat extra price; paid picks cost their own price
						Options: []ModifierOption{
							{ID: "ranch", Name: "Ranch", PriceCents: 0},
							{ID: "caesar", Name: "Caesar", PriceCents: 0},
							{ID: "truffle", Name: "Truffle", PriceCents: 150},
						},
					},
					{
						ID:          "proteins",
						Name:        "Proteins",
						MaxChoices:  2,
						FreeChoices: 0,
						Options: []ModifierOption{
							{ID: "chicken", Name: "Chicken", PriceCents: 400},
							{ID: "shrimp", Name: "Shrimp", PriceCents: 600},
						},
					},
					{
						ID:          "garnishes",
						Name:        "Garnishes",
						MaxChoices:  0,
						FreeChoices: 0,
						Options: []ModifierOption{
							{ID: "croutons", Name: "Croutons", PriceCents: 100},
							{ID: "parmesan", Name: "Parmesan", PriceCents: 150},
						},
					},
				},
			},
		},
	}
}

func newTestValidator(campaign *Campaign) (*PriceValidator, *MockMenuRepo) {
	menus := NewMockMenuRepo()
	menus.Add(testMenu())
	campaigns := &MockCampaignRepo{Campaign: campaign}
	return NewPriceValidator(menus, campaigns, apt.NewNoopLogger()), menus
}

func baseDraft(items ...DraftItem) *OrderDraft {
	return &OrderDraft{
		RestaurantID: testRestaurantID,
		LocationID:   testLocationID,
		MenuID:       testMenuID,
		Customer:     Customer{Name: "Dana", Phone: "+15550001111"},
		Items:        items,
	}
}

func TestValidateBasePriceNoSelections(t *testing.T) {
	validator, _ := newTestValidator(nil)

	pricing, err := validator.ValidateAndPrice(context.Background(), baseDraft(DraftItem{MenuItemID: "soda"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pricing.Items[0].PriceCents != 450 {
		t.Errorf("expected base price 450, got %d", pricing.Items[0].PriceCents)
	}
	if pricing.SubtotalCents != 450 {
		t.Errorf("expected subtotal 450, got %d", pricing.SubtotalCents)
	}
}

func TestValidateVariantReplacesBasePrice(t *testing.T) {
	validator, _ := newTestValidator(nil)

	pricing, err := validator.ValidateAndPrice(context.Background(), baseDraft(DraftItem{
		MenuItemID: "pizza",
		VariantIDs: []string{"large"},
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 1200, never 1000+1200
	if pricing.Items[0].PriceCents != 1200 {
		t.Errorf("expected variant price 1200, got %d", pricing.Items[0].PriceCents)
	}
}

func TestValidateMultipleVariantsLastWins(t *testing.T) {
	validator, _ := newTestValidator(nil)

	pricing, err := validator.ValidateAndPrice(context.Background(), baseDraft(DraftItem{
		MenuItemID: "pizza",
		VariantIDs: []string{"small", "large"},
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pricing.Items[0].PriceCents != 1200 {
		t.Errorf("expected last variant price 1200, got %d", pricing.Items[0].PriceCents)
	}
}

func TestValidateUnknownVariantFails(t *testing.T) {
	validator, _ := newTestValidator(nil)

	_, err := validator.ValidateAndPrice(context.Background(), baseDraft(DraftItem{
		MenuItemID: "pizza",
		VariantIDs: []string{"extra-large"},
	}))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestValidateUnavailableItemFails(t *testing.T) {
	validator, _ := newTestValidator(nil)

	_, err := validator.ValidateAndPrice(context.Background(), baseDraft(DraftItem{MenuItemID: "off-menu"}))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestValidateUnknownMenuItemFails(t *testing.T) {
	validator, _ := newTestValidator(nil)

	_, err := validator.ValidateAndPrice(context.Background(), baseDraft(DraftItem{MenuItemID: "sushi"}))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestModifierFreeThenExtraPricing(t *testing.T) {
	validator, _ := newTestValidator(nil)

	// freeChoices=2 with zero-priced options: contributions are 0, 0, 150
	pricing, err := validator.ValidateAndPrice(context.Background(), baseDraft(DraftItem{
		MenuItemID: "salad",
		Modifiers: []SelectedModifier{
			{ID: "dressings", OptionIDs: []string{"ranch", "caesar", "truffle"}},
		},
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pricing.Items[0].PriceCents != 700+150 {
		t.Errorf("expected 850, got %d", pricing.Items[0].PriceCents)
	}
}

func TestModifierZeroFreeChoicesUsesOptionPrices(t *testing.T) {
	validator, _ := newTestValidator(nil)

	pricing, err := validator.ValidateAndPrice(context.Background(), baseDraft(DraftItem{
		MenuItemID: "salad",
		Modifiers: []SelectedModifier{
			{ID: "proteins", OptionIDs: []string{"chicken", "shrimp"}},
		},
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pricing.Items[0].PriceCents != 700+400+600 {
		t.Errorf("expected 1700, got %d", pricing.Items[0].PriceCents)
	}
}

func TestModifierTruncatesToMaxChoices(t *testing.T) {
	validator, _ := newTestValidator(nil)

	// maxChoices=2: the third selection is dropped, first two kept in order
	pricing, err := validator.ValidateAndPrice(context.Background(), baseDraft(DraftItem{
		MenuItemID: "salad",
		Modifiers: []SelectedModifier{
			{ID: "proteins", OptionIDs: []string{"chicken", "shrimp", "chicken"}},
		},
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pricing.Items[0].PriceCents != 700+400+600 {
		t.Errorf("expected truncation to first two options, got %d", pricing.Items[0].PriceCents)
	}
}

func TestModifierZeroMaxChoicesDropsEverySelection(t *testing.T) {
	validator, _ := newTestValidator(nil)

	// maxChoices=0: no selection survives truncation, nothing is charged
	pricing, err := validator.ValidateAndPrice(context.Background(), baseDraft(DraftItem{
		MenuItemID: "salad",
		Modifiers: []SelectedModifier{
			{ID: "garnishes", OptionIDs: []string{"croutons", "parmesan"}},
		},
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pricing.Items[0].PriceCents != 700 {
		t.Errorf("expected base price 700, got %d", pricing.Items[0].PriceCents)
	}
}

func TestModifierUnknownOptionSkipped(t *testing.T) {
	validator, _ := newTestValidator(nil)

	pricing, err := validator.ValidateAndPrice(context.Background(), baseDraft(DraftItem{
		MenuItemID: "salad",
		Modifiers: []SelectedModifier{
			{ID: "proteins", OptionIDs: []string{"tofu"}},
		},
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pricing.Items[0].PriceCents != 700 {
		t.Errorf("unknown option should contribute nothing, got %d", pricing.Items[0].PriceCents)
	}
}

func TestValidateUnknownModifierFails(t *testing.T) {
	validator, _ := newTestValidator(nil)

	_, err := validator.ValidateAndPrice(context.Background(), baseDraft(DraftItem{
		MenuItemID: "salad",
		Modifiers:  []SelectedModifier{{ID: "sauces", OptionIDs: []string{"bbq"}}},
	}))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCampaignLookupFailureMeansNoDiscount(t *testing.T) {
	validator, _ := newTestValidator(nil)
	validator.campaigns = &MockCampaignRepo{
		ActiveForOriginFn: func(ctx context.Context, restaurantID string, locationID uuid.UUID, originID string) (*Campaign, error) {
			return nil, errors.New("campaign store down")
		},
	}

	draft := baseDraft(DraftItem{MenuItemID: "soda"})
	draft.Origin = OriginRef{ID: "instagram"}

	pricing, err := validator.ValidateAndPrice(context.Background(), draft)
	if err != nil {
		t.Fatalf("campaign failure must not block the order: %v", err)
	}
	if pricing.DiscountCents != 0 {
		t.Errorf("expected no discount, got %d", pricing.DiscountCents)
	}
}

func TestDiscountNeverProducesNegativeTotal(t *testing.T) {
	validator, _ := newTestValidator(&Campaign{
		IsActive: true,
		Reward:   Reward{FlatOffCents: 100000},
	})

	draft := baseDraft(DraftItem{MenuItemID: "soda"})
	draft.Origin = OriginRef{ID: "instagram"}

	pricing, err := validator.ValidateAndPrice(context.Background(), draft)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pricing.TotalCents != 0 {
		t.Errorf("expected total clamped to 0, got %d", pricing.TotalCents)
	}
	if pricing.DiscountCents != pricing.SubtotalCents+pricing.TaxCents {
		t.Errorf("discount should be capped at the taxed total, got %d", pricing.DiscountCents)
	}
}

func TestEndToEndPricingScenario(t *testing.T) {
	// Item base 1000, variant 1200, modifier freeChoices=1 extra=200 with
	// both 300-priced options selected: item price 1200 + 0 + 200 = 1400.
	// Two items, 8% tax: subtotal 2800, with tax 3024. Flat 500 off: 2524.
	validator, _ := newTestValidator(&Campaign{
		IsActive: true,
		Reward:   Reward{FlatOffCents: 500},
	})

	item := DraftItem{
		MenuItemID: "pizza",
		VariantIDs: []string{"large"},
		Modifiers: []SelectedModifier{
			{ID: "extras", OptionIDs: []string{"cheese", "ham"}},
		},
	}
	draft := baseDraft(item, item)
	draft.Origin = OriginRef{ID: "instagram"}

	pricing, err := validator.ValidateAndPrice(context.Background(), draft)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pricing.Items[0].PriceCents != 1400 {
		t.Errorf("expected item price 1400, got %d", pricing.Items[0].PriceCents)
	}
	if pricing.SubtotalCents != 2800 {
		t.Errorf("expected subtotal 2800, got %d", pricing.SubtotalCents)
	}
	if pricing.TaxCents != 224 {
		t.Errorf("expected tax 224, got %d", pricing.TaxCents)
	}
	if pricing.DiscountCents != 500 {
		t.Errorf("expected discount 500, got %d", pricing.DiscountCents)
	}
	if pricing.TotalCents != 2524 {
		t.Errorf("expected total 2524, got %d", pricing.TotalCents)
	}
}

func TestValidateStampsStationTags(t *testing.T) {
	validator, _ := newTestValidator(nil)

	pricing, err := validator.ValidateAndPrice(context.Background(), baseDraft(
		DraftItem{MenuItemID: "pizza"},
		DraftItem{MenuItemID: "soda"},
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := pricing.Items[0].StationTags; len(got) != 1 || got[0] != "grill" {
		t.Errorf("expected grill tag on pizza, got %v", got)
	}
	if got := pricing.Items[1].StationTags; len(got) != 1 || got[0] != "drinks" {
		t.Errorf("expected drinks tag on soda, got %v", got)
	}
}
