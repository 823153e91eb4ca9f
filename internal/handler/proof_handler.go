package handler

import (
	"net/http"
	"time"

	"printsociety/internal/clock"
	"printsociety/internal/model"
	"printsociety/internal/proof"
	"printsociety/internal/service"

	"github.com/rs/zerolog"
)

// ProofHandler handles proof review HTTP requests.
type ProofHandler struct {
	service service.ProofService
	clock   clock.Clock
	logger  zerolog.Logger
}

// NewProofHandler creates a new proof handler.
func NewProofHandler(service service.ProofService, clk clock.Clock, logger zerolog.Logger) *ProofHandler {
	return &ProofHandler{
		service: service,
		clock:   clk,
		logger:  logger.With().Str("handler", "proof").Logger(),
	}
}

// proofResponse adds the read-time view of a proof. EffectiveStatus reports expiry
// before the sweep has persisted it.
type proofResponse struct {
	*proof.Proof
	EffectiveStatus    proof.Status `json:"effectiveStatus"`
	RevisionsRemaining int          `json:"revisionsRemaining"`
}

func newProofResponse(p *proof.Proof, now time.Time) proofResponse {
	return proofResponse{
		Proof:              p,
		EffectiveStatus:    p.EffectiveStatus(now),
		RevisionsRemaining: p.RevisionsRemaining(),
	}
}

// GetByID handles GET /api/proofs/{id} requests.
func (h *ProofHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", h.logger)
	if !ok {
		return
	}

	p, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, newProofResponse(p, h.clock.Now()))
}

// Approve handles POST /api/proofs/{id}/approve requests.
func (h *ProofHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req model.ApproveRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	p, err := h.service.Approve(r.Context(), id, req.ApprovedBy)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, newProofResponse(p, h.clock.Now()))
}

// RequestRevision handles POST /api/proofs/{id}/revisions requests from customers.
func (h *ProofHandler) RequestRevision(w http.ResponseWriter, r *http.Request) {
	h.requestRevision(w, r, model.RoleCustomer)
}

// AdminRequestRevision handles POST /api/admin/proofs/{id}/revisions requests.
func (h *ProofHandler) AdminRequestRevision(w http.ResponseWriter, r *http.Request) {
	h.requestRevision(w, r, model.RoleAdmin)
}

// requestRevision records a revision with the role taken from the route, never the body.
func (h *ProofHandler) requestRevision(w http.ResponseWriter, r *http.Request, role model.ActorRole) {
	id, ok := uuidParam(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req model.RevisionRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if req.Comment == "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "comment is required", h.logger)
		return
	}
	req.Role = role

	p, err := h.service.RequestRevision(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, newProofResponse(p, h.clock.Now()))
}

// AddVersion handles POST /api/admin/proofs/{id}/versions requests.
func (h *ProofHandler) AddVersion(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req model.ProofVersionRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if req.ImageURL == "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "imageUrl is required", h.logger)
		return
	}

	p, err := h.service.AddVersion(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, newProofResponse(p, h.clock.Now()))
}

// MarkArtworkReceived handles POST /api/admin/proofs/{id}/artwork-received requests.
func (h *ProofHandler) MarkArtworkReceived(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", h.logger)
	if !ok {
		return
	}

	p, err := h.service.MarkArtworkReceived(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, newProofResponse(p, h.clock.Now()))
}
