package httpapi

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/xenking/order-entry/internal/domain/product"
)

type productResponse struct {
	SKU         string  `json:"sku"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		zctx.From(r.Context()).Error("list products", zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	resp := make([]productResponse, len(products))
	for i, p := range products {
		resp[i] = toProductResponse(p)
	}
	respondJSON(w, r, http.StatusOK, resp)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	sku := mux.Vars(r)["sku"]

	p, err := h.products.GetBySKU(r.Context(), sku)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, "product not found")
			return
		}
		zctx.From(r.Context()).Error("get product", zap.String("sku", sku), zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, r, http.StatusOK, toProductResponse(*p))
}

func toProductResponse(p product.Product) productResponse {
	return productResponse{
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.InexactFloat64(),
	}
}
