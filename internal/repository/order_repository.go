package repository

import (
	"context"
	"fmt"

	"printsociety/internal/model"
	"printsociety/internal/order"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const orderColumns = `id, order_number, status, subtotal, shipping_cost, discount_amount, setup_fee, total,
	promo_code, shipping_method, shipping_address, billing_address, customer_email,
	tracking_number, tracking_url, estimated_delivery, proof_id, cancel_reason, created_at, updated_at`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	db     DB
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(db DB, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		db:     db,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// Create inserts an order and its items within the provided transaction.
func (r *orderRepository) Create(ctx context.Context, tx pgx.Tx, o *order.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	_, err := tx.Exec(ctx, query,
		o.ID, o.OrderNumber, o.Status.String(), o.Subtotal, o.ShippingCost, o.DiscountAmount, o.SetupFee, o.Total,
		o.PromoCode, o.ShippingMethod, o.ShippingAddress, o.BillingAddress, o.CustomerEmail,
		o.TrackingNumber, o.TrackingURL, o.EstimatedDelivery, o.ProofID, o.CancelReason, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", o.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	if err := r.createItems(ctx, tx, o.ID, o.Items); err != nil {
		return err
	}

	r.logger.Debug().
		Str("order_id", o.ID.String()).
		Str("order_number", o.OrderNumber).
		Int("item_count", len(o.Items)).
		Msg("order created successfully")

	return nil
}

// createItems inserts the frozen line items in one batch.
func (r *orderRepository) createItems(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, items []order.Item) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (id, order_id, position, product_id, product_name, quantity, size, material,
			finish, unit_price, subtotal, artwork_url, thumbnail_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	batch := &pgx.Batch{}
	for i, item := range items {
		batch.Queue(query, item.ID, orderID, i, item.ProductID, item.ProductName, item.Quantity, item.Size,
			item.Material, item.Finish, item.UnitPrice, item.Subtotal, item.ArtworkURL, item.ThumbnailURL)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		_, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", orderID.String()).
				Str("product_id", items[i].ProductID).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	return nil
}

// Update writes the mutable lifecycle fields of an order.
func (r *orderRepository) Update(ctx context.Context, tx pgx.Tx, o *order.Order) error {
	query := `
		UPDATE orders
		SET status = $2, tracking_number = $3, tracking_url = $4, estimated_delivery = $5,
			cancel_reason = $6, updated_at = $7
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query, o.ID, o.Status.String(), o.TrackingNumber, o.TrackingURL,
		o.EstimatedDelivery, o.CancelReason, o.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", o.ID.String()).Msg("failed to update order")
		return fmt.Errorf("failed to update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}

	return nil
}

// GetByID retrieves an order by its ID along with its items.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return r.get(ctx, r.db, id, "")
}

// GetForUpdate reads and locks an order row inside tx.
func (r *orderRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*order.Order, error) {
	return r.get(ctx, tx, id, " FOR UPDATE")
}

func (r *orderRepository) get(ctx context.Context, q Querier, id uuid.UUID, lock string) (*order.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1` + lock

	o, err := scanOrder(q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	itemsQuery := `
		SELECT id, product_id, product_name, quantity, size, material, finish, unit_price, subtotal,
			artwork_url, thumbnail_url
		FROM order_items
		WHERE order_id = $1
		ORDER BY position
	`

	rows, err := q.Query(ctx, itemsQuery, id)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", id.String()).
			Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	o.Items = []order.Item{}
	for rows.Next() {
		var item order.Item
		err := rows.Scan(&item.ID, &item.ProductID, &item.ProductName, &item.Quantity, &item.Size,
			&item.Material, &item.Finish, &item.UnitPrice, &item.Subtotal, &item.ArtworkURL, &item.ThumbnailURL)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		o.Items = append(o.Items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return o, nil
}

// List returns orders newest first, optionally filtered by status.
func (r *orderRepository) List(ctx context.Context, status *order.Status, limit, offset int) ([]order.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	filter := ""
	if status != nil {
		filter = status.String()
	}

	rows, err := r.db.Query(ctx, query, filter, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).Str("status", filter).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []order.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

func scanOrder(row pgx.Row) (*order.Order, error) {
	var o order.Order
	var status string
	err := row.Scan(
		&o.ID, &o.OrderNumber, &status, &o.Subtotal, &o.ShippingCost, &o.DiscountAmount, &o.SetupFee, &o.Total,
		&o.PromoCode, &o.ShippingMethod, &o.ShippingAddress, &o.BillingAddress, &o.CustomerEmail,
		&o.TrackingNumber, &o.TrackingURL, &o.EstimatedDelivery, &o.ProofID, &o.CancelReason, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if o.Status, err = order.ParseStatus(status); err != nil {
		return nil, err
	}
	return &o, nil
}
