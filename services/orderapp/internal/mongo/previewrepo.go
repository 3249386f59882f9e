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

type PreviewRepo struct {
	collection *mongo.Collection
}

func NewPreviewRepo(db *mongo.Database) *PreviewRepo {
	return &PreviewRepo{
		collection: db.Collection("preview_orders"),
	}
}

// EnsureIndexes installs the TTL index that reaps abandoned previews.
func (r *PreviewRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: 1}},
		Options: options.Index().
			SetExpireAfterSeconds(int32(ordering.DefaultPreviewTTL.Seconds())),
	})
	if err != nil {
		return fmt.Errorf("cannot create preview TTL index: %w", err)
	}
	return nil
}

func (r *PreviewRepo) Create(ctx context.Context, p *ordering.PreviewOrder) error {
	if p == nil {
		return fmt.Errorf("preview is nil")
	}

	if _, err := r.collection.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("cannot create preview: %w", err)
	}

	return nil
}

func (r *PreviewRepo) Get(ctx context.Context, id uuid.UUID) (*ordering.PreviewOrder, error) {
	var p ordering.PreviewOrder
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get preview: %w", err)
	}
	return &p, nil
}

// Consume atomically claims an unconsumed preview. The compare-and-set on the
// consumed flag guarantees two concurrent finalize calls cannot both win;
// the loser sees nil.
func (r *PreviewRepo) Consume(ctx context.Context, id uuid.UUID) (*ordering.PreviewOrder, error) {
	filter := bson.M{"_id": id, "consumed": false}
	update := bson.M{"$set": bson.M{"consumed": true}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var p ordering.PreviewOrder
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&p)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot consume preview: %w", err)
	}
	return &p, nil
}

// Release hands a consumed preview back so finalize can be retried after a
// failed order write.
func (r *PreviewRepo) Release(ctx context.Context, id uuid.UUID) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"consumed": false}})
	if err != nil {
		return fmt.Errorf("cannot release preview: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("preview not found")
	}
	return nil
}
