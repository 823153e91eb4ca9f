package handler

import (
	"net/http"
	"strconv"

	"printsociety/internal/model"
	"printsociety/internal/order"
	"printsociety/internal/service"

	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// GetByID handles GET /api/orders/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", h.logger)
	if !ok {
		return
	}

	o, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, o)
}

// List handles GET /api/admin/orders requests with an optional status filter and pagination.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var status *order.Status
	if s := query.Get("status"); s != "" {
		parsed, err := order.ParseStatus(s)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidStatus, err.Error(), h.logger)
			return
		}
		status = &parsed
	}

	limit := 0
	if limitStr := query.Get("limit"); limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid limit parameter", h.logger)
			return
		}
	}

	offset := 0
	if offsetStr := query.Get("offset"); offsetStr != "" {
		var err error
		offset, err = strconv.Atoi(offsetStr)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid offset parameter", h.logger)
			return
		}
	}

	orders, err := h.service.List(r.Context(), status, limit, offset)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// UpdateStatus handles PUT /api/admin/orders/{id}/status requests.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req model.StatusRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	to, err := order.ParseStatus(req.Status)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidStatus, err.Error(), h.logger)
		return
	}

	o, err := h.service.UpdateStatus(r.Context(), id, to)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, o)
}

// SetTracking handles PUT /api/admin/orders/{id}/tracking requests.
func (h *OrderHandler) SetTracking(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req model.TrackingRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if req.TrackingNumber == "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "trackingNumber is required", h.logger)
		return
	}

	o, err := h.service.SetTracking(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, o)
}

// Cancel handles POST /api/admin/orders/{id}/cancel requests.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req model.CancelRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	o, err := h.service.Cancel(r.Context(), id, req.Reason)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, o)
}
