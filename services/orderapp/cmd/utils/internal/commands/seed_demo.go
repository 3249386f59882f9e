package commands

import (
	"context"
	"fmt"

	"github.com/appetiteclub/apt"

	"github.com/orderbuddy/orderbuddy/services/orderapp/internal/ordering"
)

// SeedDemo creates the demo restaurant with its location, stations, menu and
// campaign.
func SeedDemo(ctx context.Context, config *apt.Config, logger apt.Logger) error {
	logger.Info("Starting demo seeding process...")

	client, dbName, err := connect(ctx, config, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(ctx)

	db := client.Database(dbName)
	if err := ordering.ApplyDemoSeeds(ctx, db, logger); err != nil {
		return fmt.Errorf("seed demo restaurant: %w", err)
	}

	return nil
}
