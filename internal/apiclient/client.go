// Package apiclient is the HTTP client the checkout flow uses to mirror
// carts and place orders.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ariefcatur/go-khana-orders/internal/apperr"
	"github.com/ariefcatur/go-khana-orders/internal/carts"
	"github.com/ariefcatur/go-khana-orders/internal/orders"
)

const Timeout = 10 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
}

// New expects the API root, e.g. "http://localhost:8081/api".
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: Timeout},
	}
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode: %w", op, err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return apperr.Persistence(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var eb errorBody
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		switch resp.StatusCode {
		case http.StatusBadRequest:
			return apperr.Validation(op, eb.Message)
		case http.StatusNotFound:
			return apperr.NotFound(op, eb.Message)
		}
		return apperr.Persistence(op, fmt.Errorf("status %d: %s %s", resp.StatusCode, eb.Message, eb.Error))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode: %w", op, err)
	}
	return nil
}

func cartPath(userID string) string { return "/carts/" + url.PathEscape(userID) }

func (c *Client) FetchCart(ctx context.Context, userID string) (*carts.Cart, error) {
	var out carts.Cart
	if err := c.do(ctx, "apiclient.FetchCart", http.MethodGet, cartPath(userID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ReplaceCart(ctx context.Context, userID string, items []carts.Item) (*carts.Cart, error) {
	var out carts.Cart
	body := map[string]any{"userId": userID, "items": items}
	if err := c.do(ctx, "apiclient.ReplaceCart", http.MethodPost, "/carts", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddItem(ctx context.Context, userID string, item carts.Item) (*carts.Cart, error) {
	var out carts.Cart
	body := map[string]any{"item": item}
	if err := c.do(ctx, "apiclient.AddItem", http.MethodPut, cartPath(userID)+"/add", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) (*carts.Cart, error) {
	var out carts.Cart
	body := map[string]any{"itemId": itemID, "quantity": quantity}
	if err := c.do(ctx, "apiclient.UpdateQuantity", http.MethodPut, cartPath(userID)+"/update", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RemoveItem(ctx context.Context, userID, itemID string) (*carts.Cart, error) {
	var out carts.Cart
	body := map[string]any{"itemId": itemID}
	if err := c.do(ctx, "apiclient.RemoveItem", http.MethodPut, cartPath(userID)+"/remove", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ClearCart(ctx context.Context, userID string) (*carts.Cart, error) {
	var out carts.Cart
	if err := c.do(ctx, "apiclient.ClearCart", http.MethodDelete, cartPath(userID)+"/clear", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateOrder(ctx context.Context, in orders.CreateInput) (*orders.Order, error) {
	var out orders.Order
	if err := c.do(ctx, "apiclient.CreateOrder", http.MethodPost, "/orders", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
