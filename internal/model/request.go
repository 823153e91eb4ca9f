package model

import "time"

// QuoteRequest prices a product configuration.
type QuoteRequest struct {
	Quantity int    `json:"quantity"`
	Material string `json:"material"`
	Finish   string `json:"finish"`
}

// AddItemRequest adds a configured product to a cart.
type AddItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
	Material  string `json:"material"`
	Finish    string `json:"finish"`
}

// QuantityRequest changes a line item's quantity.
type QuantityRequest struct {
	Quantity int `json:"quantity"`
}

// PromoRequest applies a promo code.
type PromoRequest struct {
	Code string `json:"code"`
}

// ShippingRequest selects a shipping option.
type ShippingRequest struct {
	OptionID string `json:"optionId"`
}

// AddressRequest sets the cart addresses. A missing billing address means same as shipping.
type AddressRequest struct {
	Shipping Address  `json:"shipping"`
	Billing  *Address `json:"billing,omitempty"`
}

// TermsRequest records acceptance of the terms of sale.
type TermsRequest struct {
	Accepted bool `json:"accepted"`
}

// StatusRequest advances an order.
type StatusRequest struct {
	Status string `json:"status"`
}

// TrackingRequest records shipment tracking.
type TrackingRequest struct {
	TrackingNumber    string     `json:"trackingNumber"`
	TrackingURL       string     `json:"trackingUrl"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery,omitempty"`
}

// CancelRequest cancels an order.
type CancelRequest struct {
	Reason string `json:"reason"`
}

// ApproveRequest approves a proof.
type ApproveRequest struct {
	ApprovedBy string `json:"approvedBy"`
}

// RevisionRequest asks for changes to the current proof version.
type RevisionRequest struct {
	RequestedBy string    `json:"requestedBy"`
	Role        ActorRole `json:"role"`
	Comment     string    `json:"comment"`
}

// ProofVersionRequest publishes a new proof image.
type ProofVersionRequest struct {
	GeneratedBy string `json:"generatedBy"`
	Changes     string `json:"changes"`
	ImageURL    string `json:"imageUrl"`
}
