package order

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/jmtembo/ordersys-backend/internal/modules/catalog"
)

// Handler exposes order HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Post("/", h.createOrder)                  // POST /api/v1/orders
		r.Get("/", h.listOrders)                    // GET  /api/v1/orders
		r.Get("/{id}", h.getOrder)                  // GET  /api/v1/orders/{id}
		r.Put("/{id}/status/cancel", h.cancelOrder) // PUT  /api/v1/orders/{id}/status/cancel
	})
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	o, err := h.service.CreateOrder(r.Context(), req)
	if err != nil {
		respondError(w, createStatus(err), err.Error())
		return
	}
	respond(w, http.StatusOK, o)
}

// createStatus maps order-creation errors onto the HTTP contract: unknown
// product references are 404, validation failures 400, everything else 500.
func createStatus(err error) int {
	var mismatch *AmountMismatchError
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNoProducts),
		errors.Is(err, ErrInvalidTotal),
		errors.As(err, &mismatch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListOrders(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if orders == nil {
		orders = []*Order{}
	}
	respond(w, http.StatusOK, orders)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, ErrNotFound) {
			code = http.StatusNotFound
		}
		respondError(w, code, err.Error())
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.CancelOrder(r.Context(), chi.URLParam(r, "id")); err != nil {
		var transition *InvalidTransitionError
		code := http.StatusInternalServerError
		if errors.Is(err, ErrNotFound) {
			code = http.StatusNotFound
		} else if errors.As(err, &transition) {
			code = http.StatusBadRequest
		}
		respondError(w, code, err.Error())
		return
	}
	respond(w, http.StatusOK, map[string]string{"message": "Order successfully cancelled"})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respond(w, status, map[string]string{"error": msg})
}
