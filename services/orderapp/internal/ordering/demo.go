package ordering

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/seed"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

const demoSeedApplication = "orderapp_demo"

// Demo fixture identifiers are fixed so re-seeding is idempotent and the
// demo clients can hardcode them.
var (
	DemoRestaurantID = "bella-vista"
	DemoLocationID   = uuid.MustParse("6f9619ff-8b86-d011-b42d-00cf4fc964ff")
	DemoMenuID       = uuid.MustParse("7c9e6679-7425-40de-944b-e07fc1f90ae7")
	DemoGrillStation = uuid.MustParse("550e8400-e29b-41d4-a716-446655440001")
	DemoBarStation   = uuid.MustParse("550e8400-e29b-41d4-a716-446655440002")
	DemoSweetStation = uuid.MustParse("550e8400-e29b-41d4-a716-446655440003")
	DemoCampaignID   = uuid.MustParse("550e8400-e29b-41d4-a716-446655440010")
)

// ApplyDemoSeeds creates a demo restaurant with a location, stations, a menu
// and an active campaign so the whole order flow can be exercised locally.
func ApplyDemoSeeds(ctx context.Context, db *mongo.Database, logger apt.Logger) error {
	if db == nil {
		return errors.New("database is required for demo seeding")
	}

	tracker := seed.NewMongoTracker(db)

	logger.Info("Applying demo order seeds")
	if err := seed.Apply(ctx, tracker, buildDemoSeeds(db, logger), demoSeedApplication); err != nil {
		return err
	}
	logger.Info("Demo order seeds applied successfully")
	return nil
}

func buildDemoSeeds(db *mongo.Database, logger apt.Logger) []seed.Seed {
	return []seed.Seed{
		{
			ID:          "2026-08-10_demo_restaurant_v1",
			Description: "Create demo restaurant, location, stations, menu and campaign",
			Run: func(ctx context.Context) error {
				return seedDemoRestaurant(ctx, db, logger)
			},
		},
	}
}

func seedDemoRestaurant(ctx context.Context, db *mongo.Database, logger apt.Logger) error {
	restaurant := &Restaurant{
		ID:      DemoRestaurantID,
		Name:    "Bella Vista",
		Concept: "Neighborhood trattoria",
	}
	if _, err := db.Collection("restaurants").InsertOne(ctx, restaurant); err != nil {
		return fmt.Errorf("create restaurant: %w", err)
	}

	location := demoLocation()
	if _, err := db.Collection("locations").InsertOne(ctx, location); err != nil {
		return fmt.Errorf("create location: %w", err)
	}

	for _, station := range demoStations() {
		if _, err := db.Collection("stations").InsertOne(ctx, station); err != nil {
			return fmt.Errorf("create station %s: %w", station.Name, err)
		}
	}

	menu := demoMenu()
	if _, err := db.Collection("menus").InsertOne(ctx, menu); err != nil {
		return fmt.Errorf("create menu: %w", err)
	}

	campaign := &Campaign{
		ID:           DemoCampaignID,
		RestaurantID: DemoRestaurantID,
		LocationID:   DemoLocationID,
		OriginID:     "instagram",
		Name:         "Instagram launch",
		Type:         "flat_off",
		Reward:       Reward{FlatOffCents: 500},
		IsActive:     true,
	}
	if _, err := db.Collection("campaigns").InsertOne(ctx, campaign); err != nil {
		return fmt.Errorf("create campaign: %w", err)
	}

	logger.Info("Created demo restaurant", "restaurant_id", DemoRestaurantID, "location_id", DemoLocationID.String())
	return nil
}

func demoLocation() *Location {
	days := []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}
	hours := make([]DayWorkingHours, 0, len(days))
	for _, day := range days {
		hours = append(hours, DayWorkingHours{
			Day:       day,
			StartTime: "08:00",
			EndTime:   "22:00",
			IsOpen:    true,
		})
	}

	return &Location{
		ID:              DemoLocationID,
		RestaurantID:    DemoRestaurantID,
		LocationSlug:    "downtown",
		Name:            "Bella Vista Downtown",
		Timezone:        "America/New_York",
		IsActive:        true,
		AutoAcceptOrder: true,
		AlertNumbers:    []AlertNumber{{PhoneNumber: "+15550100200"}},
		WorkingHours:    hours,
		OrderTiming: OrderTiming{
			AcceptOrdersAfterMinutes: 15,
			StopOrdersBeforeMinutes:  30,
		},
		AcceptPayment: true,
	}
}

func demoStations() []*Station {
	return []*Station{
		{
			ID:           DemoGrillStation,
			RestaurantID: DemoRestaurantID,
			LocationID:   DemoLocationID,
			Name:         "Grill",
			Tags:         []string{"grill", "kitchen"},
			IsActive:     true,
		},
		{
			ID:           DemoBarStation,
			RestaurantID: DemoRestaurantID,
			LocationID:   DemoLocationID,
			Name:         "Bar",
			Tags:         []string{"bar", "drinks"},
			IsActive:     true,
		},
		{
			ID:           DemoSweetStation,
			RestaurantID: DemoRestaurantID,
			LocationID:   DemoLocationID,
			Name:         "Desserts",
			Tags:         []string{"dessert"},
			IsActive:     true,
		},
	}
}

func demoMenu() *Menu {
	now := time.Now()
	return &Menu{
		ID:           DemoMenuID,
		RestaurantID: DemoRestaurantID,
		LocationID:   DemoLocationID,
		MenuSlug:     "main",
		Name:         "Main Menu",
		SalesTax:     8.875,
		Available:    true,
		CreatedAt:    now,
		UpdatedAt:    now,
		Items: []MenuItem{
			{
				ID:          "margherita-pizza",
				Name:        "Margherita Pizza",
				CategoryID:  "mains",
				PriceCents:  1850,
				IsAvailable: true,
				StationTags: []string{"grill"},
				Variants: []Variant{
					{ID: "small", Name: "Small 10\"", PriceCents: 1450},
					{ID: "large", Name: "Large 14\"", PriceCents: 2250, Default: true},
				},
			},
			{
				ID:          "smash-burger",
				Name:        "Smash Burger",
				CategoryID:  "mains",
				PriceCents:  1450,
				IsAvailable: true,
				StationTags: []string{"grill", "kitchen"},
				Modifiers: []Modifier{
					{
						ID:                    "toppings",
						Name:                  "Toppings",
						MaxChoices:            3,
						FreeChoices:           1,
						ExtraChoicePriceCents: 150,
						Options: []ModifierOption{
							{ID: "cheddar", Name: "Cheddar", PriceCents: 200},
							{ID: "bacon", Name: "Bacon", PriceCents: 250},
							{ID: "avocado", Name: "Avocado", PriceCents: 300},
							{ID: "pickles", Name: "Pickles", PriceCents: 100},
						},
					},
				},
			},
			{
				ID:          "house-lemonade",
				Name:        "House Lemonade",
				CategoryID:  "drinks",
				PriceCents:  450,
				IsAvailable: true,
				StationTags: []string{"drinks"},
			},
			{
				ID:          "tiramisu",
				Name:        "Tiramisu",
				CategoryID:  "desserts",
				PriceCents:  750,
				IsAvailable: true,
				StationTags: []string{"dessert"},
			},
		},
	}
}

// DemoSeedingFunc returns a lifecycle OnStart-compatible function for demo
// seeding.
func DemoSeedingFunc(seedCtx context.Context, db *mongo.Database, logger apt.Logger) func(ctx context.Context) error {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}

	return func(ctx context.Context) error {
		logger.Info("Starting demo seeding in background")
		go func() {
			if err := ApplyDemoSeeds(seedCtx, db, logger); err != nil && !errors.Is(err, context.Canceled) {
				logger.Errorf("❌ Demo seeds failed: %v", err)
			} else if err == nil {
				logger.Info("✓ Demo seeding completed successfully")
			}
		}()
		return nil
	}
}
