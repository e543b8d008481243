package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ariefcatur/go-khana-orders/internal/apperr"
	"github.com/ariefcatur/go-khana-orders/internal/orders"
)

const orderNotFound = "Order not found"

type OrderStore struct {
	collection *mongo.Collection
}

func NewOrderStore(db *mongo.Database) *OrderStore {
	return &OrderStore{collection: db.Collection(collOrders)}
}

func (s *OrderStore) Insert(ctx context.Context, o *orders.Order) error {
	if _, err := s.collection.InsertOne(ctx, toOrderDocument(o)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Conflict("mongodb.OrderStore.Insert")
		}
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

func (s *OrderStore) Get(ctx context.Context, id string) (*orders.Order, error) {
	return s.findOne(ctx, "mongodb.OrderStore.Get", bson.M{"_id": id})
}

func (s *OrderStore) GetByExternalID(ctx context.Context, externalID string) (*orders.Order, error) {
	return s.findOne(ctx, "mongodb.OrderStore.GetByExternalID", bson.M{"externalId": externalID})
}

func (s *OrderStore) findOne(ctx context.Context, op string, filter bson.M) (*orders.Order, error) {
	var doc OrderDocument
	if err := s.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound(op, orderNotFound)
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	return toOrderEntity(&doc), nil
}

func (s *OrderStore) ListByUser(ctx context.Context, userID string) ([]*orders.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.collection.Find(ctx, bson.M{"user.userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	var docs []OrderDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	out := make([]*orders.Order, 0, len(docs))
	for i := range docs {
		out = append(out, toOrderEntity(&docs[i]))
	}
	return out, nil
}

func (s *OrderStore) Update(ctx context.Context, o *orders.Order) error {
	res, err := s.collection.ReplaceOne(ctx, bson.M{"_id": o.ID}, toOrderDocument(o))
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("mongodb.OrderStore.Update", orderNotFound)
	}
	return nil
}
