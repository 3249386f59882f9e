package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/orderbuddy/orderbuddy/services/orderapp/internal/ordering"
)

type RestaurantRepo struct {
	collection *mongo.Collection
}

func NewRestaurantRepo(db *mongo.Database) *RestaurantRepo {
	return &RestaurantRepo{
		collection: db.Collection("restaurants"),
	}
}

func (r *RestaurantRepo) Get(ctx context.Context, id string) (*ordering.Restaurant, error) {
	var doc ordering.Restaurant
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get restaurant: %w", err)
	}
	return &doc, nil
}
