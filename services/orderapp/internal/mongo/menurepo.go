package mongo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/orderbuddy/orderbuddy/services/orderapp/internal/ordering"
)

type MenuRepo struct {
	collection *mongo.Collection
}

func NewMenuRepo(db *mongo.Database) *MenuRepo {
	return &MenuRepo{
		collection: db.Collection("menus"),
	}
}

func (r *MenuRepo) Get(ctx context.Context, id uuid.UUID) (*ordering.Menu, error) {
	var m ordering.Menu
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get menu: %w", err)
	}
	return &m, nil
}

func (r *MenuRepo) GetBySlug(ctx context.Context, restaurantID string, locationID uuid.UUID, menuSlug string) (*ordering.Menu, error) {
	filter := bson.M{
		"restaurant_id": restaurantID,
		"location_id":   locationID,
		"menu_slug":     menuSlug,
	}

	var m ordering.Menu
	err := r.collection.FindOne(ctx, filter).Decode(&m)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get menu by slug: %w", err)
	}
	return &m, nil
}

func (r *MenuRepo) ListForLocation(ctx context.Context, restaurantID string, locationID uuid.UUID) ([]ordering.MenuSummary, error) {
	filter := bson.M{
		"restaurant_id": restaurantID,
		"location_id":   locationID,
		"available":     true,
	}
	opts := options.Find().SetProjection(bson.M{
		"_id":       1,
		"menu_slug": 1,
		"name":      1,
		"available": 1,
	})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot list menus: %w", err)
	}
	defer cursor.Close(ctx)

	var result []ordering.MenuSummary
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode menus: %w", err)
	}

	return result, nil
}
