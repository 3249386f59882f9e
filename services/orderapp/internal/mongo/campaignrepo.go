package mongo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/orderbuddy/orderbuddy/services/orderapp/internal/ordering"
)

type CampaignRepo struct {
	collection *mongo.Collection
}

func NewCampaignRepo(db *mongo.Database) *CampaignRepo {
	return &CampaignRepo{
		collection: db.Collection("campaigns"),
	}
}

func (r *CampaignRepo) ActiveForOrigin(ctx context.Context, restaurantID string, locationID uuid.UUID, originID string) (*ordering.Campaign, error) {
	filter := bson.M{
		"restaurant_id": restaurantID,
		"location_id":   locationID,
		"origin_id":     originID,
		"is_active":     true,
	}

	var c ordering.Campaign
	err := r.collection.FindOne(ctx, filter).Decode(&c)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get campaign: %w", err)
	}
	return &c, nil
}
