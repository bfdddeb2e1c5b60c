package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepository stores one document per owner in the "carts" collection
type MongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: db.Collection("carts")}
}

func (r *MongoRepository) Get(ctx context.Context, ownerID string) (*Cart, error) {
	var c Cart
	err := r.collection.FindOne(ctx, bson.M{"owner_id": ownerID}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if c.Items == nil {
		c.Items = []Item{}
	}
	return &c, nil
}

// Save inserts a new cart when c.Version is 0 and otherwise updates the
// document only where the stored version still matches.
func (r *MongoRepository) Save(ctx context.Context, c *Cart) error {
	now := time.Now()
	items := c.Items
	if items == nil {
		items = []Item{}
	}

	if c.Version == 0 {
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		doc := Cart{
			OwnerID:   c.OwnerID,
			Items:     items,
			Version:   1,
			CreatedAt: c.CreatedAt,
			UpdatedAt: now,
		}
		if _, err := r.collection.InsertOne(ctx, doc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrVersionConflict
			}
			return fmt.Errorf("failed to create cart: %w", err)
		}
		c.Version = 1
		c.UpdatedAt = now
		return nil
	}

	filter := bson.M{"owner_id": c.OwnerID, "version": c.Version}
	update := bson.M{
		"$set": bson.M{"items": items, "updated_at": now},
		"$inc": bson.M{"version": 1},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update cart: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrVersionConflict
	}

	c.Version++
	c.UpdatedAt = now
	return nil
}

// CreateIndexes enforces one cart per owner
func (r *MongoRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create cart indexes: %w", err)
	}
	return nil
}
