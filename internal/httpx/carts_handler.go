package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-khana-orders/internal/carts"
)

type CartsHandler struct {
	Service *carts.Service
}

type replaceCartReq struct {
	UserID string       `json:"userId"`
	Items  []carts.Item `json:"items"`
}

type addItemReq struct {
	Item *carts.Item `json:"item"`
}

type updateQuantityReq struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

type removeItemReq struct {
	ItemID string `json:"itemId"`
}

func (h *CartsHandler) Register(r chi.Router) {
	r.Route("/carts", func(r chi.Router) {
		r.Post("/", h.replace)
		r.Get("/{userId}", h.fetch)
		r.Put("/{userId}/add", h.addItem)
		r.Put("/{userId}/update", h.updateQuantity)
		r.Put("/{userId}/remove", h.removeItem)
		r.Delete("/{userId}/clear", h.clear)
		r.Delete("/{userId}/item/{itemId}", h.removeItemByPath)
		r.Delete("/{userId}", h.clear)
	})
}

func (h *CartsHandler) respond(w http.ResponseWriter, r *http.Request, c *carts.Cart, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CartsHandler) replace(w http.ResponseWriter, r *http.Request) {
	var req replaceCartReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c, err := h.Service.Replace(ctx, req.UserID, req.Items)
	h.respond(w, r, c, err)
}

func (h *CartsHandler) fetch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.Service.Fetch(ctx, chi.URLParam(r, "userId"))
	h.respond(w, r, c, err)
}

func (h *CartsHandler) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	var item carts.Item
	if req.Item != nil {
		item = *req.Item
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c, err := h.Service.AddItem(ctx, chi.URLParam(r, "userId"), item)
	h.respond(w, r, c, err)
}

func (h *CartsHandler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	var req updateQuantityReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c, err := h.Service.UpdateQuantity(ctx, chi.URLParam(r, "userId"), req.ItemID, req.Quantity)
	h.respond(w, r, c, err)
}

func (h *CartsHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	var req removeItemReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c, err := h.Service.RemoveItem(ctx, chi.URLParam(r, "userId"), req.ItemID)
	h.respond(w, r, c, err)
}

func (h *CartsHandler) removeItemByPath(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c, err := h.Service.RemoveItem(ctx, chi.URLParam(r, "userId"), chi.URLParam(r, "itemId"))
	h.respond(w, r, c, err)
}

func (h *CartsHandler) clear(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c, err := h.Service.Clear(ctx, chi.URLParam(r, "userId"))
	h.respond(w, r, c, err)
}
