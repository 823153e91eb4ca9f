package model

import "fmt"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON           = "INVALID_JSON"
	ErrCodeMissingField          = "MISSING_FIELD"
	ErrCodeInvalidID             = "INVALID_ID"
	ErrCodeUnauthorised          = "UNAUTHORIZED"
	ErrCodeInternalError         = "INTERNAL_ERROR"
	ErrCodeInvalidQuantity       = "INVALID_QUANTITY"
	ErrCodeUnknownOption         = "UNKNOWN_OPTION"
	ErrCodeInvalidCode           = "INVALID_CODE"
	ErrCodeMinimumNotMet         = "MINIMUM_NOT_MET"
	ErrCodePromoAlreadyApplied   = "PROMO_ALREADY_APPLIED"
	ErrCodeRevisionLimitExceeded = "REVISION_LIMIT_EXCEEDED"
	ErrCodeDeadlinePassed        = "DEADLINE_PASSED"
	ErrCodeProofNotReady         = "PROOF_NOT_READY"
	ErrCodeAlreadyApproved       = "ALREADY_APPROVED"
	ErrCodeInvalidTransition     = "INVALID_TRANSITION"
	ErrCodeMissingTracking       = "MISSING_TRACKING"
	ErrCodeProductNotFound       = "PRODUCT_NOT_FOUND"
	ErrCodeCartNotFound          = "CART_NOT_FOUND"
	ErrCodeOrderNotFound         = "ORDER_NOT_FOUND"
	ErrCodeProofNotFound         = "PROOF_NOT_FOUND"
	ErrCodeItemNotFound          = "ITEM_NOT_FOUND"
	ErrCodeEmptyCart             = "EMPTY_CART"
	ErrCodeTermsNotAccepted      = "TERMS_NOT_ACCEPTED"
	ErrCodeMissingAddress        = "MISSING_ADDRESS"
	ErrCodeMissingShipping       = "MISSING_SHIPPING"
	ErrCodeUnknownShipping       = "UNKNOWN_SHIPPING"
	ErrCodeStaleProof            = "STALE_PROOF"
	ErrCodeUnsupportedArtwork    = "UNSUPPORTED_ARTWORK"
	ErrCodeInvalidStatus         = "INVALID_STATUS"
)

// DomainError is a business rule rejection. Message is safe to show to customers as is.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches any DomainError with the same code, so errors built with WithMessage
// still satisfy errors.Is against the sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// WithMessage returns a copy of e carrying a more specific message.
func (e *DomainError) WithMessage(format string, args ...any) *DomainError {
	return &DomainError{Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Pricing errors.
var (
	ErrInvalidQuantity = NewDomainError(ErrCodeInvalidQuantity, "Quantity is outside the range offered for this product")
	ErrUnknownOption   = NewDomainError(ErrCodeUnknownOption, "Selected material or finish is not offered for this product")
)

// Promo errors.
var (
	ErrInvalidCode         = NewDomainError(ErrCodeInvalidCode, "This promo code is not valid")
	ErrMinimumNotMet       = NewDomainError(ErrCodeMinimumNotMet, "Your order does not meet the minimum amount for this promo code")
	ErrPromoAlreadyApplied = NewDomainError(ErrCodePromoAlreadyApplied, "A promo code is already applied to this cart, remove it first")
)

// Proof errors.
var (
	ErrRevisionLimitExceeded = NewDomainError(ErrCodeRevisionLimitExceeded, "You have used all revisions included with this order, please contact support")
	ErrDeadlinePassed        = NewDomainError(ErrCodeDeadlinePassed, "The approval window for this proof has closed, please contact support")
	ErrProofNotReady         = NewDomainError(ErrCodeProofNotReady, "This proof is not waiting for your approval")
	ErrAlreadyApproved       = NewDomainError(ErrCodeAlreadyApproved, "This proof has already been approved")
	ErrStaleProof            = NewDomainError(ErrCodeStaleProof, "This proof was changed by someone else, please reload and try again")
)

// Order errors.
var (
	ErrInvalidTransition = NewDomainError(ErrCodeInvalidTransition, "This order cannot move to the requested status")
	ErrMissingTracking   = NewDomainError(ErrCodeMissingTracking, "A tracking number is required before the order can be marked delivered")
	ErrInvalidStatus     = NewDomainError(ErrCodeInvalidStatus, "Unknown status")
)

// Checkout and lookup errors.
var (
	ErrProductNotFound    = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrCartNotFound       = NewDomainError(ErrCodeCartNotFound, "Cart not found or expired")
	ErrOrderNotFound      = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrProofNotFound      = NewDomainError(ErrCodeProofNotFound, "Proof not found")
	ErrItemNotFound       = NewDomainError(ErrCodeItemNotFound, "Item is not in this cart")
	ErrEmptyCart          = NewDomainError(ErrCodeEmptyCart, "Your cart is empty")
	ErrTermsNotAccepted   = NewDomainError(ErrCodeTermsNotAccepted, "Please accept the terms before placing your order")
	ErrMissingAddress     = NewDomainError(ErrCodeMissingAddress, "A complete shipping address with an email is required")
	ErrMissingShipping    = NewDomainError(ErrCodeMissingShipping, "Please choose a shipping option")
	ErrUnknownShipping    = NewDomainError(ErrCodeUnknownShipping, "Unknown shipping option")
	ErrUnsupportedArtwork = NewDomainError(ErrCodeUnsupportedArtwork, "Artwork must be a PNG, JPEG, SVG or PDF file within the size limit")
)
