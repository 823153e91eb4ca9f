package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"printsociety/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxBodyBytes caps JSON request bodies. Artwork uploads have their own limit.
const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code, code and message.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, logger zerolog.Logger) {
	requestID := middleware.GetReqID(r.Context())

	level := zerolog.WarnLevel
	if status >= http.StatusInternalServerError {
		level = zerolog.ErrorLevel
	}
	logger.WithLevel(level).
		Str("code", code).
		Str("error", message).
		Int("status", status).
		Str("request_id", requestID).
		Msg("handler error")

	writeJSON(w, status, model.ErrorResponse{
		Error:         code,
		Message:       message,
		CorrelationID: requestID,
	})
}

// writeServiceError renders an error returned by a service. Domain errors keep their
// code and message; anything else is reported as an internal error.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		writeError(w, r, statusFor(domainErr.Code), domainErr.Code, domainErr.Message, logger)
		return
	}

	logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error", logger)
}

// statusFor maps a domain error code to an HTTP status.
func statusFor(code string) int {
	switch code {
	case model.ErrCodeProductNotFound,
		model.ErrCodeCartNotFound,
		model.ErrCodeOrderNotFound,
		model.ErrCodeProofNotFound,
		model.ErrCodeItemNotFound:
		return http.StatusNotFound
	case model.ErrCodePromoAlreadyApplied,
		model.ErrCodeAlreadyApproved,
		model.ErrCodeInvalidTransition,
		model.ErrCodeStaleProof,
		model.ErrCodeProofNotReady,
		model.ErrCodeDeadlinePassed,
		model.ErrCodeRevisionLimitExceeded:
		return http.StatusConflict
	case model.ErrCodeInvalidCode,
		model.ErrCodeMinimumNotMet,
		model.ErrCodeEmptyCart,
		model.ErrCodeTermsNotAccepted,
		model.ErrCodeMissingAddress,
		model.ErrCodeMissingShipping,
		model.ErrCodeMissingTracking,
		model.ErrCodeUnknownShipping,
		model.ErrCodeUnsupportedArtwork,
		model.ErrCodeInvalidQuantity,
		model.ErrCodeUnknownOption:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

// decodeJSON reads a size-limited JSON body into dst, writing a 400 response on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, logger zerolog.Logger) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", logger)
		return false
	}
	return true
}

// uuidParam parses a UUID route parameter, writing a 400 response on failure.
func uuidParam(w http.ResponseWriter, r *http.Request, name string, logger zerolog.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidID, "invalid "+name+" format", logger)
		return uuid.Nil, false
	}
	return id, true
}
