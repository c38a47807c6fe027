package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/order-entry/internal/domain/customer"
	"github.com/xenking/order-entry/internal/domain/order"
	"github.com/xenking/order-entry/internal/domain/product"
)

type orderRequest struct {
	CustomerID *int64      `json:"customerId"`
	Items      []orderItem `json:"items"`
}

type orderItem struct {
	Quantity decimal.Decimal `json:"quantity"`
	Product  productPayload  `json:"product"`
}

type productPayload struct {
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

type taxEntryJSON struct {
	Description string  `json:"description"`
	Rate        float64 `json:"rate"`
}

type summaryResponse struct {
	OrderID           int64          `json:"orderId"`
	OrderNumber       string         `json:"orderNumber"`
	CustomerID        int64          `json:"customerId"`
	Taxes             []taxEntryJSON `json:"taxes"`
	NetTotal          float64        `json:"netTotal"`
	Total             float64        `json:"total"`
	Items             []orderItem    `json:"items"`
	EstimatedDelivery string         `json:"estimatedDelivery"`
}

type preflightResponse struct {
	ProductsInStock bool `json:"productsInStock"`
	ProductsUnique  bool `json:"productsUnique"`
}

// placeOrder decodes the request, delegates to the order service, and maps
// the result (or error) back to JSON.
func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	o := req.toDomain()
	summary, err := h.orderService.PlaceOrder(r.Context(), o)
	if err != nil {
		h.mapOrderError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusCreated, summaryResponse{
		OrderID:           summary.OrderID,
		OrderNumber:       summary.OrderNumber,
		CustomerID:        summary.CustomerID,
		Taxes:             taxesJSON(summary),
		NetTotal:          summary.NetTotal.InexactFloat64(),
		Total:             summary.Total.InexactFloat64(),
		Items:             req.Items,
		EstimatedDelivery: summary.EstimatedDelivery.Format(time.RFC3339),
	})
}

// preflight runs the standalone stock and uniqueness checks without placing
// the order. It has no side effects and may be called repeatedly.
func (h *Handler) preflight(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	items := req.toDomain().Items
	inStock, err := order.ProductsInStock(r.Context(), h.products, items)
	if err != nil {
		zctx.From(r.Context()).Error("preflight stock check", zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "stock check failed")
		return
	}

	respondJSON(w, r, http.StatusOK, preflightResponse{
		ProductsInStock: inStock,
		ProductsUnique:  order.ProductsUnique(items),
	})
}

// mapOrderError converts domain errors to HTTP error responses. Collaborator
// failures that carry no domain meaning become opaque 500s.
func (h *Handler) mapOrderError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *order.ValidationError
	if errors.As(err, &vErr) {
		violations := make([]violationJSON, len(vErr.Violations))
		for i, v := range vErr.Violations {
			violations[i] = violationJSON{Message: v.Message, Field: v.Field}
		}
		respondJSON(w, r, http.StatusUnprocessableEntity, errorResponse{
			Code:       http.StatusUnprocessableEntity,
			Message:    "order validation failed",
			Violations: violations,
		})
		return
	}

	if errors.Is(err, order.ErrNilCustomerID) {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if errors.Is(err, customer.ErrNotFound) {
		respondError(w, r, http.StatusNotFound, "customer not found")
		return
	}

	zctx.From(r.Context()).Error("place order", zap.Error(err))
	respondError(w, r, http.StatusInternalServerError, "internal error")
}

func (req orderRequest) toDomain() *order.Order {
	items := make([]order.Item, len(req.Items))
	for i, it := range req.Items {
		items[i] = order.Item{
			Product: product.Product{
				SKU:         it.Product.SKU,
				Name:        it.Product.Name,
				Description: it.Product.Description,
				Price:       it.Product.Price,
			},
			Quantity: it.Quantity,
		}
	}
	return &order.Order{CustomerID: req.CustomerID, Items: items}
}

func taxesJSON(summary *order.Summary) []taxEntryJSON {
	taxes := make([]taxEntryJSON, len(summary.Taxes))
	for i, e := range summary.Taxes {
		taxes[i] = taxEntryJSON{Description: e.Description, Rate: e.Rate.InexactFloat64()}
	}
	return taxes
}
