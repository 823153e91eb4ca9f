package service

import (
	"context"
	"io"
	"time"

	"printsociety/internal/artwork"
	"printsociety/internal/cart"
	"printsociety/internal/model"
	"printsociety/internal/notify"
	"printsociety/internal/order"
	"printsociety/internal/proof"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of ProductRepository.
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

// MockOrderRepository is a mock implementation of OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	// Return a MockTx interface value, not a pointer
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) Create(ctx context.Context, tx pgx.Tx, o *order.Order) error {
	args := m.Called(ctx, tx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, tx pgx.Tx, o *order.Order) error {
	args := m.Called(ctx, tx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, status *order.Status, limit, offset int) ([]order.Order, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

// MockProofRepository is a mock implementation of ProofRepository.
type MockProofRepository struct {
	mock.Mock
}

func (m *MockProofRepository) Create(ctx context.Context, tx pgx.Tx, p *proof.Proof) error {
	args := m.Called(ctx, tx, p)
	return args.Error(0)
}

func (m *MockProofRepository) GetByID(ctx context.Context, id uuid.UUID) (*proof.Proof, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*proof.Proof), args.Error(1)
}

func (m *MockProofRepository) Update(ctx context.Context, tx pgx.Tx, p *proof.Proof) error {
	args := m.Called(ctx, tx, p)
	return args.Error(0)
}

func (m *MockProofRepository) AddRevision(ctx context.Context, tx pgx.Tx, r proof.RevisionRequest) error {
	args := m.Called(ctx, tx, r)
	return args.Error(0)
}

func (m *MockProofRepository) ListOverdue(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) FetchUnprocessed(ctx context.Context, limit int) ([]notify.Event, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]notify.Event), args.Error(1)
}

func (m *MockOutboxRepository) MarkProcessed(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepository) Insert(ctx context.Context, tx pgx.Tx, e notify.Event) error {
	args := m.Called(ctx, tx, e)
	return args.Error(0)
}

// MockCartStore is a mock implementation of cache.CartStore.
type MockCartStore struct {
	mock.Mock
}

func (m *MockCartStore) Get(ctx context.Context, id uuid.UUID) (cart.Cart, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(cart.Cart), args.Error(1)
}

func (m *MockCartStore) Set(ctx context.Context, c cart.Cart) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCartStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockResolver is a mock implementation of promo.Resolver.
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(code string, subtotal decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(code, subtotal)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockArtworkStore is a mock implementation of ArtworkStore.
type MockArtworkStore struct {
	mock.Mock
}

func (m *MockArtworkStore) Put(ctx context.Context, cartID, itemID uuid.UUID, contentType string, size int64, body io.Reader) (artwork.Upload, error) {
	args := m.Called(ctx, cartID, itemID, contentType, size, body)
	return args.Get(0).(artwork.Upload), args.Error(1)
}

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
	committed  bool
	rolledBack bool
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	m.committed = true
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	m.rolledBack = true
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }
