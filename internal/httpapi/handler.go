// Package httpapi exposes the order entry service over HTTP.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/xenking/order-entry/internal/domain/order"
	"github.com/xenking/order-entry/internal/domain/product"
)

// Handler serves the API routes, delegating business logic to the order
// service and product repository.
type Handler struct {
	products     product.Repository
	orderService *order.Service
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(products product.Repository, orderService *order.Service) *Handler {
	return &Handler{
		products:     products,
		orderService: orderService,
	}
}

// Router returns the mux with all API routes registered.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/order", h.placeOrder).Methods(http.MethodPost)
	r.HandleFunc("/api/order/preflight", h.preflight).Methods(http.MethodPost)
	r.HandleFunc("/api/product", h.listProducts).Methods(http.MethodGet)
	r.HandleFunc("/api/product/{sku}", h.getProduct).Methods(http.MethodGet)
	return r
}

type errorResponse struct {
	Code       int             `json:"code"`
	Message    string          `json:"message"`
	Violations []violationJSON `json:"violations,omitempty"`
}

type violationJSON struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zctx.From(r.Context()).Error("encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	respondJSON(w, r, status, errorResponse{Code: status, Message: message})
}
