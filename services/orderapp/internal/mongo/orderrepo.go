package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/orderbuddy/orderbuddy/pkg/enums/orderstatus"
	"github.com/orderbuddy/orderbuddy/services/orderapp/internal/ordering"
)

type OrderRepo struct {
	collection *mongo.Collection
}

func NewOrderRepo(db *mongo.Database) *OrderRepo {
	return &OrderRepo{
		collection: db.Collection("orders"),
	}
}

func (r *OrderRepo) Create(ctx context.Context, o *ordering.Order) error {
	if o == nil {
		return fmt.Errorf("order is nil")
	}

	if _, err := r.collection.InsertOne(ctx, o); err != nil {
		return fmt.Errorf("cannot create order: %w", err)
	}

	return nil
}

func (r *OrderRepo) Get(ctx context.Context, id uuid.UUID) (*ordering.Order, error) {
	var o ordering.Order
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get order: %w", err)
	}
	return &o, nil
}

func (r *OrderRepo) Save(ctx context.Context, o *ordering.Order) error {
	if o == nil {
		return fmt.Errorf("order is nil")
	}

	filter := bson.M{"_id": o.ID}
	update := bson.M{"$set": o}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("cannot update order: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("order not found")
	}

	return nil
}

// MarkItemStarted stamps the item's start time inside the order document and
// clears any stale completion time. Returns nil when the order or item does
// not exist.
func (r *OrderRepo) MarkItemStarted(ctx context.Context, orderID uuid.UUID, itemID string) (*ordering.Order, error) {
	now := time.Now()
	update := bson.M{"$set": bson.M{
		"items.$[it].started_at":   now,
		"items.$[it].completed_at": nil,
	}}
	return r.updateItem(ctx, orderID, itemID, update)
}

// MarkItemCompleted stamps the item's completion time. The start time is left
// untouched even when the item was never started.
func (r *OrderRepo) MarkItemCompleted(ctx context.Context, orderID uuid.UUID, itemID string) (*ordering.Order, error) {
	now := time.Now()
	update := bson.M{"$set": bson.M{
		"items.$[it].completed_at": now,
	}}
	return r.updateItem(ctx, orderID, itemID, update)
}

func (r *OrderRepo) updateItem(ctx context.Context, orderID uuid.UUID, itemID string, update bson.M) (*ordering.Order, error) {
	// Matching on items.id up front makes a missing item indistinguishable
	// from a missing order, which is what callers want: not found.
	filter := bson.M{"_id": orderID, "items.id": itemID}

	opts := options.FindOneAndUpdate().
		SetArrayFilters(options.ArrayFilters{Filters: []interface{}{bson.M{"it.id": itemID}}}).
		SetReturnDocument(options.After)

	var o ordering.Order
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&o)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot update order item: %w", err)
	}
	return &o, nil
}

// ListForStation returns the accepted orders of a location that carry at
// least one item matching the given tags.
func (r *OrderRepo) ListForStation(ctx context.Context, restaurantID string, locationID uuid.UUID, tags []string) ([]ordering.Order, error) {
	filter := bson.M{
		"restaurant_id": restaurantID,
		"location_id":   locationID,
		"status":        orderstatus.Statuses.Accepted.Name,
		"items": bson.M{"$elemMatch": bson.M{
			"station_tags": bson.M{"$in": tags},
		}},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("cannot list orders for station: %w", err)
	}
	defer cursor.Close(ctx)

	var result []ordering.Order
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode orders: %w", err)
	}

	return result, nil
}
