package repository

import (
	"context"
	"time"

	"printsociety/internal/model"
	"printsociety/internal/notify"
	"printsociety/internal/order"
	"printsociety/internal/proof"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository defines the interface for catalogue data access.
type ProductRepository interface {
	// GetAll retrieves every product with its options and pricing tiers. Products whose tiers
	// fail validation are left out.
	GetAll(ctx context.Context) ([]model.Product, error)

	// GetByID retrieves a single product. It returns nil, nil when the product does not exist.
	GetByID(ctx context.Context, id string) (*model.Product, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Create inserts an order and its items within the provided transaction.
	Create(ctx context.Context, tx pgx.Tx, o *order.Order) error

	// Update writes the mutable lifecycle fields of an order.
	Update(ctx context.Context, tx pgx.Tx, o *order.Order) error

	// GetByID retrieves an order with its items. It returns nil, nil when not found.
	GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error)

	// GetForUpdate reads and locks an order row for the rest of the transaction.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*order.Order, error)

	// List returns orders newest first, optionally filtered by status. Items are not loaded.
	List(ctx context.Context, status *order.Status, limit, offset int) ([]order.Order, error)
}

// ProofRepository defines the interface for proof data access operations.
type ProofRepository interface {
	// Create inserts a new proof within the provided transaction.
	Create(ctx context.Context, tx pgx.Tx, p *proof.Proof) error

	// GetByID retrieves a proof with its versions. It returns nil, nil when not found.
	GetByID(ctx context.Context, id uuid.UUID) (*proof.Proof, error)

	// Update writes p if its RowVersion is still current and bumps it. A concurrent writer
	// makes it fail with model.ErrStaleProof.
	Update(ctx context.Context, tx pgx.Tx, p *proof.Proof) error

	// AddRevision records a customer change request.
	AddRevision(ctx context.Context, tx pgx.Tx, r proof.RevisionRequest) error

	// ListOverdue returns proofs still awaiting approval whose deadline is before now.
	ListOverdue(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
}

// OutboxRepository stores notification events until the relay publishes them.
type OutboxRepository interface {
	notify.OutboxStore

	// Insert queues an event in the same transaction as the change it reports.
	Insert(ctx context.Context, tx pgx.Tx, e notify.Event) error
}
