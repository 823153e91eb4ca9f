package service

import (
	"context"
	"io"
	"time"

	"printsociety/internal/artwork"
	"printsociety/internal/cart"
	"printsociety/internal/model"
	"printsociety/internal/order"
	"printsociety/internal/pricing"
	"printsociety/internal/proof"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductService defines read access to the catalogue and quoting.
type ProductService interface {
	// GetAll retrieves every priceable product.
	GetAll(ctx context.Context) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// Quote prices a configuration without touching a cart.
	Quote(ctx context.Context, id string, req model.QuoteRequest) (pricing.Quote, error)
}

// CartService defines operations on cart sessions.
type CartService interface {
	Create(ctx context.Context) (cart.Cart, error)
	Get(ctx context.Context, id uuid.UUID) (cart.Cart, error)

	// AddItem prices the configuration and adds it to the cart.
	AddItem(ctx context.Context, id uuid.UUID, req model.AddItemRequest) (cart.Cart, error)
	UpdateQuantity(ctx context.Context, id, itemID uuid.UUID, quantity int) (cart.Cart, error)
	RemoveItem(ctx context.Context, id, itemID uuid.UUID) (cart.Cart, error)

	// Clear empties the cart. The returned cart has a new ID and the old session is dropped.
	Clear(ctx context.Context, id uuid.UUID) (cart.Cart, error)

	ApplyPromo(ctx context.Context, id uuid.UUID, code string) (cart.Cart, error)
	RemovePromo(ctx context.Context, id uuid.UUID) (cart.Cart, error)
	SetShipping(ctx context.Context, id uuid.UUID, optionID string) (cart.Cart, error)
	SetAddress(ctx context.Context, id uuid.UUID, req model.AddressRequest) (cart.Cart, error)
	AcceptTerms(ctx context.Context, id uuid.UUID, accepted bool) (cart.Cart, error)

	// UploadArtwork stores the file and attaches it to the line item.
	UploadArtwork(ctx context.Context, id, itemID uuid.UUID, contentType string, size int64, body io.Reader) (cart.Cart, error)

	Summary(ctx context.Context, id uuid.UUID) (cart.Summary, error)
	ShippingOptions() []model.ShippingOption
}

// OrderService defines checkout and order fulfilment.
type OrderService interface {
	// Checkout turns a cart into an order and its proof. The cart session is dropped on success.
	Checkout(ctx context.Context, cartID uuid.UUID) (*order.Order, error)

	GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error)
	List(ctx context.Context, status *order.Status, limit, offset int) ([]order.Order, error)

	// UpdateStatus advances an order to the next fulfilment status.
	UpdateStatus(ctx context.Context, id uuid.UUID, to order.Status) (*order.Order, error)
	SetTracking(ctx context.Context, id uuid.UUID, req model.TrackingRequest) (*order.Order, error)
	Cancel(ctx context.Context, id uuid.UUID, reason string) (*order.Order, error)
}

// ProofService defines the proof approval workflow.
type ProofService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*proof.Proof, error)
	MarkArtworkReceived(ctx context.Context, id uuid.UUID) (*proof.Proof, error)

	// AddVersion publishes a proof image and notifies the customer.
	AddVersion(ctx context.Context, id uuid.UUID, req model.ProofVersionRequest) (*proof.Proof, error)

	// Approve accepts the current version and moves the order into proof-approved.
	Approve(ctx context.Context, id uuid.UUID, actor string) (*proof.Proof, error)
	RequestRevision(ctx context.Context, id uuid.UUID, req model.RevisionRequest) (*proof.Proof, error)

	// SweepExpired persists expiry for proofs whose approval deadline has passed.
	SweepExpired(ctx context.Context) (int, error)
}

// ArtworkStore uploads customer artwork.
type ArtworkStore interface {
	Put(ctx context.Context, cartID, itemID uuid.UUID, contentType string, size int64, body io.Reader) (artwork.Upload, error)
}

// Settings holds the business settings the services apply.
type Settings struct {
	SetupFee        decimal.Decimal
	MaxRevisions    int
	ReviewWindow    time.Duration
	ProofBaseURL    string
	MaxArtworkBytes int64
	ShippingOptions []model.ShippingOption
}
