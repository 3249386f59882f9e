package mongo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/orderbuddy/orderbuddy/services/orderapp/internal/ordering"
)

type LocationRepo struct {
	collection *mongo.Collection
}

func NewLocationRepo(db *mongo.Database) *LocationRepo {
	return &LocationRepo{
		collection: db.Collection("locations"),
	}
}

func (r *LocationRepo) Get(ctx context.Context, id uuid.UUID) (*ordering.Location, error) {
	var l ordering.Location
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&l)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get location: %w", err)
	}
	return &l, nil
}

func (r *LocationRepo) GetBySlug(ctx context.Context, restaurantID, locationSlug string) (*ordering.Location, error) {
	filter := bson.M{
		"restaurant_id": restaurantID,
		"location_slug": locationSlug,
	}

	var l ordering.Location
	err := r.collection.FindOne(ctx, filter).Decode(&l)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get location by slug: %w", err)
	}
	return &l, nil
}
