package handler

import (
	"net/http"

	"printsociety/internal/model"
	"printsociety/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	service service.ProductService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// GetAll handles GET /api/products requests.
func (h *ProductHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.GetAll(r.Context())
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// GetByID handles GET /api/products/{id} requests.
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// quoteResponse is a price quote with its non-blocking warnings flattened to messages.
type quoteResponse struct {
	ProductID  string   `json:"productId"`
	Quantity   int      `json:"quantity"`
	MaterialID string   `json:"materialId"`
	FinishID   string   `json:"finishId"`
	TierPrice  string   `json:"tierPrice"`
	Multiplier string   `json:"multiplier"`
	UnitPrice  string   `json:"unitPrice"`
	Subtotal   string   `json:"subtotal"`
	Warnings   []string `json:"warnings,omitempty"`
}

// Quote handles POST /api/products/{id}/quote requests.
func (h *ProductHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req model.QuoteRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	quote, err := h.service.Quote(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	resp := quoteResponse{
		ProductID:  quote.ProductID,
		Quantity:   quote.Quantity,
		MaterialID: quote.MaterialID,
		FinishID:   quote.FinishID,
		TierPrice:  quote.TierPrice.String(),
		Multiplier: quote.Multiplier.String(),
		UnitPrice:  model.Display(quote.UnitPrice),
		Subtotal:   model.Display(quote.Subtotal),
	}
	for _, warning := range quote.Warnings {
		resp.Warnings = append(resp.Warnings, warning.Error())
	}

	writeJSON(w, http.StatusOK, resp)
}
