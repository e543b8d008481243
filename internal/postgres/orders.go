package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-khana-orders/internal/apperr"
	"github.com/ariefcatur/go-khana-orders/internal/orders"
)

const orderNotFound = "Order not found"

// OrderStore keeps each order as a JSONB document next to the columns it is
// looked up by.
type OrderStore struct{ DB *pgxpool.Pool }

func (s *OrderStore) Insert(ctx context.Context, o *orders.Order) error {
	doc, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("encode order: %w", err)
	}
	_, err = s.DB.Exec(ctx,
		`INSERT INTO orders (id, external_id, user_id, doc, created_at, updated_at)
		 VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6)`,
		o.ID, o.ExternalID, o.User.UserID, doc, o.CreatedAt, o.UpdatedAt)
	return classify("postgres.OrderStore.Insert", orderNotFound, err)
}

func (s *OrderStore) Get(ctx context.Context, id string) (*orders.Order, error) {
	return s.getOne(ctx, "postgres.OrderStore.Get", `SELECT doc FROM orders WHERE id=$1`, id)
}

func (s *OrderStore) GetByExternalID(ctx context.Context, externalID string) (*orders.Order, error) {
	return s.getOne(ctx, "postgres.OrderStore.GetByExternalID", `SELECT doc FROM orders WHERE external_id=$1`, externalID)
}

func (s *OrderStore) getOne(ctx context.Context, op, query, arg string) (*orders.Order, error) {
	var doc []byte
	if err := s.DB.QueryRow(ctx, query, arg).Scan(&doc); err != nil {
		return nil, classify(op, orderNotFound, err)
	}
	return decodeOrder(doc)
}

func (s *OrderStore) ListByUser(ctx context.Context, userID string) ([]*orders.Order, error) {
	rows, err := s.DB.Query(ctx,
		`SELECT doc FROM orders WHERE user_id=$1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	out := make([]*orders.Order, 0)
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		o, err := decodeOrder(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *OrderStore) Update(ctx context.Context, o *orders.Order) error {
	doc, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("encode order: %w", err)
	}
	tag, err := s.DB.Exec(ctx, `UPDATE orders SET doc=$2, updated_at=$3 WHERE id=$1`, o.ID, doc, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("postgres.OrderStore.Update", orderNotFound)
	}
	return nil
}

func decodeOrder(doc []byte) (*orders.Order, error) {
	var o orders.Order
	if err := json.Unmarshal(doc, &o); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	return &o, nil
}
