package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"printsociety/internal/cache"
	"printsociety/internal/clock"
	"printsociety/internal/model"
	"printsociety/internal/notify"
	"printsociety/internal/order"
	"printsociety/internal/proof"
	"printsociety/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// orderService implements OrderService.
type orderService struct {
	orderRepo  repository.OrderRepository
	proofRepo  repository.ProofRepository
	outboxRepo repository.OutboxRepository
	carts      cache.CartStore
	settings   Settings
	clock      clock.Clock
	logger     zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	proofRepo repository.ProofRepository,
	outboxRepo repository.OutboxRepository,
	carts cache.CartStore,
	settings Settings,
	clk clock.Clock,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:  orderRepo,
		proofRepo:  proofRepo,
		outboxRepo: outboxRepo,
		carts:      carts,
		settings:   settings,
		clock:      clk,
		logger:     logger.With().Str("service", "order").Logger(),
	}
}

// Checkout turns a cart into an order and its proof. The order, the proof and the confirmation
// email are written in one transaction; the cart session is dropped after commit.
func (s *orderService) Checkout(ctx context.Context, cartID uuid.UUID) (*order.Order, error) {
	c, err := s.carts.Get(ctx, cartID)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, model.ErrCartNotFound
	}
	if err != nil {
		s.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to load cart")
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	now := s.clock.Now()
	orderID, proofID := uuid.New(), uuid.New()

	o, err := order.FromCart(c, orderID, proofID, s.settings.SetupFee, now)
	if err != nil {
		s.logger.Debug().Err(err).Str("cart_id", cartID.String()).Msg("cart not ready for checkout")
		return nil, err
	}
	p := proof.New(proofID, orderID, s.settings.MaxRevisions, c.ArtworkComplete(), now)

	err = inTx(ctx, s.orderRepo, s.logger, func(tx pgx.Tx) error {
		if err := s.orderRepo.Create(ctx, tx, o); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		if err := s.proofRepo.Create(ctx, tx, p); err != nil {
			return fmt.Errorf("failed to create proof: %w", err)
		}
		return enqueue(ctx, tx, s.outboxRepo, orderIntent(notify.OrderConfirmed, o), now)
	})
	if err != nil {
		s.logger.Error().Err(err).Str("cart_id", cartID.String()).Str("order_id", orderID.String()).Msg("checkout failed")
		return nil, err
	}

	if err := s.carts.Delete(ctx, cartID); err != nil {
		s.logger.Warn().Err(err).Str("cart_id", cartID.String()).Msg("failed to drop checked out cart")
	}

	s.logger.Info().
		Str("order_id", o.ID.String()).
		Str("order_number", o.OrderNumber).
		Str("proof_status", p.Status.String()).
		Int("item_count", len(o.Items)).
		Msg("order placed")

	return o, nil
}

// GetByID retrieves an order with its items.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	o, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if o == nil {
		s.logger.Debug().Str("order_id", id.String()).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}

	return o, nil
}

// List returns orders newest first, optionally filtered by status.
func (s *orderService) List(ctx context.Context, status *order.Status, limit, offset int) ([]order.Order, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	orders, err := s.orderRepo.List(ctx, status, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Int("limit", limit).Int("offset", offset).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, nil
}

// UpdateStatus advances an order to the next fulfilment status. Shipping and delivery notify
// the customer.
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, to order.Status) (*order.Order, error) {
	return s.transition(ctx, id, func(o *order.Order, now time.Time) (*notify.Intent, error) {
		if err := o.Advance(to, now); err != nil {
			return nil, err
		}

		switch to {
		case order.Shipped:
			intent := orderIntent(notify.OrderShipped, o)
			intent.TrackingNumber = o.TrackingNumber
			intent.TrackingURL = o.TrackingURL
			return &intent, nil
		case order.Delivered:
			intent := orderIntent(notify.OrderDelivered, o)
			return &intent, nil
		}
		return nil, nil
	})
}

func (s *orderService) SetTracking(ctx context.Context, id uuid.UUID, req model.TrackingRequest) (*order.Order, error) {
	return s.transition(ctx, id, func(o *order.Order, now time.Time) (*notify.Intent, error) {
		return nil, o.SetTracking(req.TrackingNumber, req.TrackingURL, req.EstimatedDelivery, now)
	})
}

func (s *orderService) Cancel(ctx context.Context, id uuid.UUID, reason string) (*order.Order, error) {
	return s.transition(ctx, id, func(o *order.Order, now time.Time) (*notify.Intent, error) {
		if err := o.Cancel(reason, now); err != nil {
			return nil, err
		}
		intent := orderIntent(notify.OrderCancelled, o)
		intent.Reason = o.CancelReason
		return &intent, nil
	})
}

// transition locks the order, applies fn and saves the result together with any notification.
func (s *orderService) transition(ctx context.Context, id uuid.UUID, fn func(o *order.Order, now time.Time) (*notify.Intent, error)) (*order.Order, error) {
	var updated *order.Order

	err := inTx(ctx, s.orderRepo, s.logger, func(tx pgx.Tx) error {
		o, err := s.orderRepo.GetForUpdate(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("failed to get order: %w", err)
		}
		if o == nil {
			return model.ErrOrderNotFound
		}

		now := s.clock.Now()
		from := o.Status
		intent, err := fn(o, now)
		if err != nil {
			if errors.Is(err, model.ErrInvalidTransition) || errors.Is(err, model.ErrMissingTracking) {
				s.logger.Error().Err(err).
					Str("order_id", id.String()).
					Str("status", from.String()).
					Msg("order transition rejected")
			}
			return err
		}

		if err := s.orderRepo.Update(ctx, tx, o); err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}
		if intent != nil {
			if err := enqueue(ctx, tx, s.outboxRepo, *intent, now); err != nil {
				return err
			}
		}

		if from != o.Status {
			s.logger.Info().
				Str("order_id", id.String()).
				Str("from", from.String()).
				Str("to", o.Status.String()).
				Msg("order status changed")
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// orderIntent fills the fields every notification about o carries.
func orderIntent(kind notify.Kind, o *order.Order) notify.Intent {
	return notify.Intent{
		Kind:         kind,
		OrderID:      o.ID,
		OrderNumber:  o.OrderNumber,
		To:           o.CustomerEmail,
		CustomerName: o.ShippingAddress.Name,
		Total:        model.Display(o.Total),
	}
}

// enqueue writes intent to the notification outbox inside tx.
func enqueue(ctx context.Context, tx pgx.Tx, outbox repository.OutboxRepository, intent notify.Intent, now time.Time) error {
	event, err := notify.NewEvent(intent, now)
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", intent.Kind, err)
	}
	if err := outbox.Insert(ctx, tx, event); err != nil {
		return fmt.Errorf("failed to queue %s: %w", intent.Kind, err)
	}
	return nil
}
