package apiclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-khana-orders/internal/apperr"
	"github.com/ariefcatur/go-khana-orders/internal/carts"
)

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		body     string
		wantKind error
		wantMsg  string
	}{
		{"bad request", http.StatusBadRequest, `{"message":"Item ID is required"}`, apperr.ErrValidation, "Item ID is required"},
		{"not found", http.StatusNotFound, `{"message":"Cart not found for this user"}`, apperr.ErrNotFound, "Cart not found for this user"},
		{"server error", http.StatusInternalServerError, `{"message":"Server error","error":"boom"}`, apperr.ErrPersistence, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.code)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL).FetchCart(context.Background(), "u1")
			assert.ErrorIs(t, err, tc.wantKind)
			if tc.wantMsg != "" {
				assert.Equal(t, tc.wantMsg, apperr.Message(err))
			}
		})
	}
}

func TestAddItemSendsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/carts/u%201/add", r.URL.EscapedPath())
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"userId":"u 1","items":[{"id":"r1","name":"Dal","price":100,"quantity":1}],"subtotal":100,"version":1}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL+"/").AddItem(context.Background(), "u 1", carts.Item{ID: "r1", Name: "Dal", Price: 100})
	require.NoError(t, err)
	assert.Equal(t, int64(100), c.Subtotal)
	assert.Equal(t, int64(1), c.Version)
}
