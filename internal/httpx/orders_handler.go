package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ariefcatur/go-khana-orders/internal/orders"
)

// TimelineReader is satisfied by redisx.Timeline.
type TimelineReader interface {
	List(ctx context.Context, orderID string) ([]json.RawMessage, error)
}

// QRGenerator is satisfied by receipt.QRGenerator.
type QRGenerator interface {
	Generate(orderID string) ([]byte, error)
}

type OrdersHandler struct {
	Service  *orders.Service
	Timeline TimelineReader // optional
	QR       QRGenerator
}

type setStatusReq struct {
	Status orders.Status `json:"status"`
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.createOrder)
		r.Get("/user/{userId}", h.listByUser)
		r.Get("/{id}", h.getOrder)
		r.Put("/{id}/pay", h.markPaid)
		r.Put("/{id}/deliver", h.markDelivered)
		r.Put("/{id}/status", h.setStatus)
		r.Get("/{id}/qrcode", h.qrcode)
		r.Get("/{id}/timeline", h.timeline)
	})
}

// withTrace gives store I/O a deadline and carries the request id into events.
func withTrace(r *http.Request, d time.Duration) (context.Context, context.CancelFunc) {
	ctx := orders.WithTraceID(r.Context(), middleware.GetReqID(r.Context()))
	return context.WithTimeout(ctx, d)
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var in orders.CreateInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if in.ExternalID == "" {
		in.ExternalID = r.Header.Get("Idempotency-Key")
	}
	ctx, cancel := withTrace(r, 5*time.Second)
	defer cancel()

	o, existed, err := h.Service.Create(ctx, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	code := http.StatusCreated
	if existed {
		code = http.StatusOK
	}
	writeJSON(w, code, o)
}

func (h *OrdersHandler) listByUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	list, err := h.Service.FetchByUser(ctx, chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Service.FetchByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) markPaid(w http.ResponseWriter, r *http.Request) {
	var details orders.PaymentResult
	if err := decodeOptionalJSON(r, &details); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := withTrace(r, 5*time.Second)
	defer cancel()

	o, err := h.Service.MarkPaid(ctx, chi.URLParam(r, "id"), details)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) markDelivered(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTrace(r, 5*time.Second)
	defer cancel()

	o, err := h.Service.MarkDelivered(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) setStatus(w http.ResponseWriter, r *http.Request) {
	var req setStatusReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := withTrace(r, 5*time.Second)
	defer cancel()

	o, err := h.Service.SetStatus(ctx, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) qrcode(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Service.FetchByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	png, err := h.QR.Generate(o.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (h *OrdersHandler) timeline(w http.ResponseWriter, r *http.Request) {
	if h.Timeline == nil {
		writeJSON(w, http.StatusOK, []json.RawMessage{})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	entries, err := h.Timeline.List(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
