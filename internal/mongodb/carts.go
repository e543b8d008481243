package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ariefcatur/go-khana-orders/internal/apperr"
	"github.com/ariefcatur/go-khana-orders/internal/carts"
)

const cartNotFound = "Cart not found for this user"

type CartStore struct {
	collection *mongo.Collection
}

func NewCartStore(db *mongo.Database) *CartStore {
	return &CartStore{collection: db.Collection(collCarts)}
}

func (s *CartStore) Get(ctx context.Context, userID string) (*carts.Cart, error) {
	var doc CartDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("mongodb.CartStore.Get", cartNotFound)
		}
		return nil, fmt.Errorf("failed to find cart: %w", err)
	}
	return toCartEntity(&doc), nil
}

func (s *CartStore) Insert(ctx context.Context, c *carts.Cart) error {
	if _, err := s.collection.InsertOne(ctx, toCartDocument(c)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Conflict("mongodb.CartStore.Insert")
		}
		return fmt.Errorf("failed to insert cart: %w", err)
	}
	return nil
}

// Update replaces the document only while its version equals expectedVersion.
func (s *CartStore) Update(ctx context.Context, c *carts.Cart, expectedVersion int64) error {
	const op = "mongodb.CartStore.Update"
	res, err := s.collection.ReplaceOne(ctx,
		bson.M{"_id": c.UserID, "version": expectedVersion},
		toCartDocument(c),
	)
	if err != nil {
		return fmt.Errorf("failed to update cart: %w", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}
	n, err := s.collection.CountDocuments(ctx, bson.M{"_id": c.UserID})
	if err != nil {
		return fmt.Errorf("failed to check cart: %w", err)
	}
	if n == 0 {
		return apperr.NotFound(op, cartNotFound)
	}
	return apperr.Conflict(op)
}
