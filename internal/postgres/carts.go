package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-khana-orders/internal/apperr"
	"github.com/ariefcatur/go-khana-orders/internal/carts"
)

const cartNotFound = "Cart not found for this user"

type CartStore struct{ DB *pgxpool.Pool }

func (s *CartStore) Get(ctx context.Context, userID string) (*carts.Cart, error) {
	c := &carts.Cart{UserID: userID}
	err := s.DB.QueryRow(ctx,
		`SELECT items, subtotal, version, last_updated, created_at FROM carts WHERE user_id=$1`, userID,
	).Scan(&c.Items, &c.Subtotal, &c.Version, &c.LastUpdated, &c.CreatedAt)
	if err != nil {
		return nil, classify("postgres.CartStore.Get", cartNotFound, err)
	}
	if c.Items == nil {
		c.Items = []carts.Item{}
	}
	return c, nil
}

func (s *CartStore) Insert(ctx context.Context, c *carts.Cart) error {
	_, err := s.DB.Exec(ctx,
		`INSERT INTO carts (user_id, items, subtotal, version, last_updated, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		c.UserID, c.Items, c.Subtotal, c.Version, c.LastUpdated, c.CreatedAt)
	return classify("postgres.CartStore.Insert", cartNotFound, err)
}

// Update writes c only if the stored version still equals expectedVersion.
func (s *CartStore) Update(ctx context.Context, c *carts.Cart, expectedVersion int64) error {
	const op = "postgres.CartStore.Update"
	tag, err := s.DB.Exec(ctx,
		`UPDATE carts SET items=$2, subtotal=$3, version=$4, last_updated=$5
		 WHERE user_id=$1 AND version=$6`,
		c.UserID, c.Items, c.Subtotal, c.Version, c.LastUpdated, expectedVersion)
	if err != nil {
		return fmt.Errorf("update cart: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	var exists bool
	if err := s.DB.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM carts WHERE user_id=$1)`, c.UserID).Scan(&exists); err != nil {
		return fmt.Errorf("check cart: %w", err)
	}
	if !exists {
		return apperr.NotFound(op, cartNotFound)
	}
	return apperr.Conflict(op)
}
