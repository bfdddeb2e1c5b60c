package product

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoLedger stores products in the "products" collection
type MongoLedger struct {
	collection *mongo.Collection
}

func NewMongoLedger(db *mongo.Database) *MongoLedger {
	return &MongoLedger{collection: db.Collection("products")}
}

func (l *MongoLedger) Get(ctx context.Context, id string) (*Product, error) {
	var p Product
	err := l.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

func (l *MongoLedger) List(ctx context.Context) ([]*Product, error) {
	cursor, err := l.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	products := make([]*Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

func (l *MongoLedger) GetMany(ctx context.Context, ids []string) ([]*Product, error) {
	found, err := l.Find(ctx, ids)
	if err != nil {
		return nil, err
	}
	return inOrder(ids, found)
}

// Find loads every existing product among ids in one query
func (l *MongoLedger) Find(ctx context.Context, ids []string) (map[string]*Product, error) {
	cursor, err := l.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	defer cursor.Close(ctx)

	var found []Product
	if err := cursor.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	out := make(map[string]*Product, len(found))
	for i := range found {
		out[found[i].ID] = &found[i]
	}
	return out, nil
}

// DecrementStock relies on the stock filter so that the check and the
// write happen in one document update.
func (l *MongoLedger) DecrementStock(ctx context.Context, id string, amount int) (*Product, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	filter := bson.M{"_id": id, "stock": bson.M{"$gte": amount}}
	update := bson.M{
		"$inc": bson.M{"stock": -amount},
		"$set": bson.M{"updated_at": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var p Product
	err := l.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&p)
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to decrement stock: %w", err)
	}

	// No match: either the product is gone or it has too little stock
	current, getErr := l.Get(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	return nil, fmt.Errorf("%w: %s has %d, requested %d", ErrInsufficientStock, id, current.Stock, amount)
}

func (l *MongoLedger) IncrementStock(ctx context.Context, id string, amount int) (*Product, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	update := bson.M{
		"$inc": bson.M{"stock": amount},
		"$set": bson.M{"updated_at": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var p Product
	err := l.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
		}
		return nil, fmt.Errorf("failed to increment stock: %w", err)
	}
	return &p, nil
}

func (l *MongoLedger) Put(ctx context.Context, p *Product) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, err
	}
	p.UpdatedAt = time.Now()

	result, err := l.collection.ReplaceOne(ctx, bson.M{"_id": p.ID}, p, options.Replace().SetUpsert(true))
	if err != nil {
		return false, fmt.Errorf("failed to save product: %w", err)
	}
	return result.UpsertedCount > 0, nil
}

func (l *MongoLedger) Delete(ctx context.Context, id string) error {
	result, err := l.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	return nil
}

// CreateIndexes sets up the name index used by List
func (l *MongoLedger) CreateIndexes(ctx context.Context) error {
	_, err := l.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "name", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create product indexes: %w", err)
	}
	return nil
}
