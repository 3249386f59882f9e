package commands

import (
	"context"
	"fmt"

	"github.com/appetiteclub/apt"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/orderbuddy/orderbuddy/services/orderapp/internal/ordering"
)

// ClearDemo removes the demo restaurant and everything scoped to it.
func ClearDemo(ctx context.Context, config *apt.Config, logger apt.Logger) error {
	logger.Info("Starting demo data cleanup...")

	client, dbName, err := connect(ctx, config, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(ctx)

	db := client.Database(dbName)

	scoped := bson.M{"restaurant_id": ordering.DemoRestaurantID}
	for _, name := range []string{"locations", "stations", "menus", "campaigns", "orders", "preview_orders"} {
		if err := clearCollection(ctx, db, name, scoped, logger); err != nil {
			return err
		}
	}

	if err := clearCollection(ctx, db, "restaurants", bson.M{"_id": ordering.DemoRestaurantID}, logger); err != nil {
		return err
	}

	// Clear seed tracker so seed-demo can run again
	seedsCollection := db.Collection("_seeds")
	trackerResult, err := seedsCollection.DeleteMany(ctx, bson.M{"application": "orderapp_demo"})
	if err != nil {
		return fmt.Errorf("delete seed tracker: %w", err)
	}
	logger.Info("Cleared seed tracker", "deleted", trackerResult.DeletedCount)

	return nil
}

func clearCollection(ctx context.Context, db *mongo.Database, name string, filter bson.M, logger apt.Logger) error {
	result, err := db.Collection(name).DeleteMany(ctx, filter)
	if err != nil {
		return fmt.Errorf("delete demo %s: %w", name, err)
	}
	logger.Info("Deleted demo documents", "collection", name, "count", result.DeletedCount)
	return nil
}
