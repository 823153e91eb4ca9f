package handler

import (
	"errors"
	"net/http"

	"printsociety/internal/model"
	"printsociety/internal/service"

	"github.com/rs/zerolog"
)

// uploadOverhead leaves room for multipart boundaries and headers around the file itself.
const uploadOverhead = 64 << 10

// CartHandler handles cart session and checkout HTTP requests.
type CartHandler struct {
	carts          service.CartService
	orders         service.OrderService
	maxUploadBytes int64
	logger         zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(carts service.CartService, orders service.OrderService, maxUploadBytes int64, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		carts:          carts,
		orders:         orders,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With().Str("handler", "cart").Logger(),
	}
}

// Create handles POST /api/carts requests.
func (h *CartHandler) Create(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.Create(r.Context())
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, c)
}

// Get handles GET /api/carts/{id} requests.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", h.logger)
	if !ok {
		return
	}

	c, err := h.carts.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// Clear handles DELETE /api/carts/{id} requests. The response carries the replacement cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", h.logger)
	if !ok {
		return
	}

	c, err := h.carts.Clear(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// AddItem handles POST /api/carts/{id}/items requests.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req model.AddItemRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if req.ProductID == "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "productId is required", h.logger)
		return
	}

	c, err := h.carts.AddItem(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// UpdateItem handles PATCH /api/carts/{id}/items/{itemID} requests.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", h.logger)
	if !ok {
		return
	}
	itemID, ok := uuidParam(w, r, "itemID", h.logger)
	if !ok {
		return
	}

	var req model.QuantityRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	c, err := h.carts.UpdateQuantity(r.Context(), id, itemID, req.Quantity)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// RemoveItem handles DELETE /api/carts/{id}/items/{itemID} requests.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", h.logger)
	if !ok {
		return
	}
	itemID, ok := uuidParam(w, r, "itemID", h.logger)
	if !ok {
		return
	}

	c, err := h.carts.RemoveItem(r.Context(), id, itemID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// UploadArtwork handles PUT /api/carts/{id}/items/{itemID}/artwork requests. The file is
// sent as the "file" field of a multipart form.
func (h *CartHandler) UploadArtwork(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", h.logger)
	if !ok {
		return
	}
	itemID, ok := uuidParam(w, r, "itemID", h.logger)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+uploadOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeServiceError(w, r, model.ErrUnsupportedArtwork, h.logger)
			return
		}
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "artwork file is required", h.logger)
		return
	}
	defer file.Close()

	c, err := h.carts.UploadArtwork(r.Context(), id, itemID, header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// ApplyPromo handles POST /api/carts/{id}/promo requests.
func (h *CartHandler) ApplyPromo(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req model.PromoRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if req.Code == "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "code is required", h.logger)
		return
	}

	c, err := h.carts.ApplyPromo(r.Context(), id, req.Code)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// RemovePromo handles DELETE /api/carts/{id}/promo requests.
func (h *CartHandler) RemovePromo(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", h.logger)
	if !ok {
		return
	}

	c, err := h.carts.RemovePromo(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// ShippingOptions handles GET /api/shipping-options requests.
func (h *CartHandler) ShippingOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.carts.ShippingOptions())
}

// SetShipping handles PUT /api/carts/{id}/shipping requests.
func (h *CartHandler) SetShipping(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req model.ShippingRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	c, err := h.carts.SetShipping(r.Context(), id, req.OptionID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// SetAddress handles PUT /api/carts/{id}/address requests.
func (h *CartHandler) SetAddress(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req model.AddressRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	c, err := h.carts.SetAddress(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// AcceptTerms handles PUT /api/carts/{id}/terms requests.
func (h *CartHandler) AcceptTerms(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req model.TermsRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	c, err := h.carts.AcceptTerms(r.Context(), id, req.Accepted)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// Summary handles GET /api/carts/{id}/summary requests.
func (h *CartHandler) Summary(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", h.logger)
	if !ok {
		return
	}

	summary, err := h.carts.Summary(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// Checkout handles POST /api/carts/{id}/checkout requests.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", h.logger)
	if !ok {
		return
	}

	o, err := h.orders.Checkout(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	h.logger.Info().
		Str("order_id", o.ID.String()).
		Str("order_number", o.OrderNumber).
		Msg("checkout completed")
	writeJSON(w, http.StatusCreated, o)
}
