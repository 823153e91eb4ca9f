package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"printsociety/internal/cart"
	"printsociety/internal/model"
	"printsociety/internal/order"
	"printsociety/internal/pricing"
	"printsociety/internal/proof"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductService is a mock implementation of ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) GetAll(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Quote(ctx context.Context, id string, req model.QuoteRequest) (pricing.Quote, error) {
	args := m.Called(ctx, id, req)
	return args.Get(0).(pricing.Quote), args.Error(1)
}

// MockCartService is a mock implementation of CartService.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) Create(ctx context.Context) (cart.Cart, error) {
	args := m.Called(ctx)
	return args.Get(0).(cart.Cart), args.Error(1)
}

func (m *MockCartService) Get(ctx context.Context, id uuid.UUID) (cart.Cart, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(cart.Cart), args.Error(1)
}

func (m *MockCartService) AddItem(ctx context.Context, id uuid.UUID, req model.AddItemRequest) (cart.Cart, error) {
	args := m.Called(ctx, id, req)
	return args.Get(0).(cart.Cart), args.Error(1)
}

func (m *MockCartService) UpdateQuantity(ctx context.Context, id, itemID uuid.UUID, quantity int) (cart.Cart, error) {
	args := m.Called(ctx, id, itemID, quantity)
	return args.Get(0).(cart.Cart), args.Error(1)
}

func (m *MockCartService) RemoveItem(ctx context.Context, id, itemID uuid.UUID) (cart.Cart, error) {
	args := m.Called(ctx, id, itemID)
	return args.Get(0).(cart.Cart), args.Error(1)
}

func (m *MockCartService) Clear(ctx context.Context, id uuid.UUID) (cart.Cart, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(cart.Cart), args.Error(1)
}

func (m *MockCartService) ApplyPromo(ctx context.Context, id uuid.UUID, code string) (cart.Cart, error) {
	args := m.Called(ctx, id, code)
	return args.Get(0).(cart.Cart), args.Error(1)
}

func (m *MockCartService) RemovePromo(ctx context.Context, id uuid.UUID) (cart.Cart, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(cart.Cart), args.Error(1)
}

func (m *MockCartService) SetShipping(ctx context.Context, id uuid.UUID, optionID string) (cart.Cart, error) {
	args := m.Called(ctx, id, optionID)
	return args.Get(0).(cart.Cart), args.Error(1)
}

func (m *MockCartService) SetAddress(ctx context.Context, id uuid.UUID, req model.AddressRequest) (cart.Cart, error) {
	args := m.Called(ctx, id, req)
	return args.Get(0).(cart.Cart), args.Error(1)
}

func (m *MockCartService) AcceptTerms(ctx context.Context, id uuid.UUID, accepted bool) (cart.Cart, error) {
	args := m.Called(ctx, id, accepted)
	return args.Get(0).(cart.Cart), args.Error(1)
}

func (m *MockCartService) UploadArtwork(ctx context.Context, id, itemID uuid.UUID, contentType string, size int64, body io.Reader) (cart.Cart, error) {
	args := m.Called(ctx, id, itemID, contentType, size, body)
	return args.Get(0).(cart.Cart), args.Error(1)
}

func (m *MockCartService) Summary(ctx context.Context, id uuid.UUID) (cart.Summary, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(cart.Summary), args.Error(1)
}

func (m *MockCartService) ShippingOptions() []model.ShippingOption {
	args := m.Called()
	return args.Get(0).([]model.ShippingOption)
}

// MockOrderService is a mock implementation of OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Checkout(ctx context.Context, cartID uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, cartID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) List(ctx context.Context, status *order.Status, limit, offset int) ([]order.Order, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, id uuid.UUID, to order.Status) (*order.Order, error) {
	args := m.Called(ctx, id, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) SetTracking(ctx context.Context, id uuid.UUID, req model.TrackingRequest) (*order.Order, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) Cancel(ctx context.Context, id uuid.UUID, reason string) (*order.Order, error) {
	args := m.Called(ctx, id, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

// MockProofService is a mock implementation of ProofService.
type MockProofService struct {
	mock.Mock
}

func (m *MockProofService) GetByID(ctx context.Context, id uuid.UUID) (*proof.Proof, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*proof.Proof), args.Error(1)
}

func (m *MockProofService) MarkArtworkReceived(ctx context.Context, id uuid.UUID) (*proof.Proof, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*proof.Proof), args.Error(1)
}

func (m *MockProofService) AddVersion(ctx context.Context, id uuid.UUID, req model.ProofVersionRequest) (*proof.Proof, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*proof.Proof), args.Error(1)
}

func (m *MockProofService) Approve(ctx context.Context, id uuid.UUID, actor string) (*proof.Proof, error) {
	args := m.Called(ctx, id, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*proof.Proof), args.Error(1)
}

func (m *MockProofService) RequestRevision(ctx context.Context, id uuid.UUID, req model.RevisionRequest) (*proof.Proof, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*proof.Proof), args.Error(1)
}

func (m *MockProofService) SweepExpired(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// newRequest builds a request with chi route parameters set, as the router would.
func newRequest(t *testing.T, method, target string, body interface{}, params map[string]string) *http.Request {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	case io.Reader:
		reader = b
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// decodeError reads an error response body.
func decodeError(t *testing.T, w *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()

	var resp model.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}
