package mongo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/orderbuddy/orderbuddy/services/orderapp/internal/ordering"
)

type StationRepo struct {
	collection *mongo.Collection
}

func NewStationRepo(db *mongo.Database) *StationRepo {
	return &StationRepo{
		collection: db.Collection("stations"),
	}
}

func (r *StationRepo) Create(ctx context.Context, s *ordering.Station) error {
	if s == nil {
		return fmt.Errorf("station is nil")
	}

	if _, err := r.collection.InsertOne(ctx, s); err != nil {
		return fmt.Errorf("cannot create station: %w", err)
	}

	return nil
}

func (r *StationRepo) Get(ctx context.Context, id uuid.UUID) (*ordering.Station, error) {
	var s ordering.Station
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&s)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get station: %w", err)
	}
	return &s, nil
}

func (r *StationRepo) Save(ctx context.Context, s *ordering.Station) error {
	if s == nil {
		return fmt.Errorf("station is nil")
	}

	filter := bson.M{"_id": s.ID}
	update := bson.M{"$set": s}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("cannot update station: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("station not found")
	}

	return nil
}

func (r *StationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("cannot delete station: %w", err)
	}

	if result.DeletedCount == 0 {
		return fmt.Errorf("station not found")
	}

	return nil
}

func (r *StationRepo) ListForLocation(ctx context.Context, restaurantID string, locationID uuid.UUID) ([]ordering.Station, error) {
	filter := bson.M{
		"restaurant_id": restaurantID,
		"location_id":   locationID,
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("cannot list stations: %w", err)
	}
	defer cursor.Close(ctx)

	var result []ordering.Station
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode stations: %w", err)
	}

	return result, nil
}

// FindByTags returns the active stations of a location serving any of the
// given tags.
func (r *StationRepo) FindByTags(ctx context.Context, restaurantID string, locationID uuid.UUID, tags []string) ([]ordering.Station, error) {
	filter := bson.M{
		"restaurant_id": restaurantID,
		"location_id":   locationID,
		"is_active":     true,
		"tags":          bson.M{"$in": tags},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("cannot find stations by tags: %w", err)
	}
	defer cursor.Close(ctx)

	var result []ordering.Station
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode stations: %w", err)
	}

	return result, nil
}
