package store

import (
	"context"
	"database/sql"
	"fmt"

	"agrimarket/internal/models"
)

// CheckoutTx converts the buyer's cart into an order inside one transaction:
// snapshot the cart lines with their current catalog prices, insert the
// order, delete the lines, commit. Either the order exists and the cart is
// empty, or neither happened. An empty cart yields a zero-total order.
func (s *Store) CheckoutTx(ctx context.Context, buyerID int64, paymentMode string) (*models.Order, []models.CartItemData, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	rows, err := tx.QueryxContext(ctx, `
		SELECT c.product_id, c.quantity, p.price
		FROM cart_lines c
		JOIN products p ON p.id = c.product_id
		WHERE c.buyer_id = $1
		ORDER BY c.product_id
		FOR UPDATE OF c`, buyerID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to snapshot cart: %w", err)
	}

	items := []models.CartItemData{}
	var total float64
	for rows.Next() {
		var item models.CartItemData
		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.UnitPrice); err != nil {
			rows.Close()
			return nil, nil, err
		}
		total += item.UnitPrice * float64(item.Quantity)
		items = append(items, item)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	order := &models.Order{
		BuyerID:     buyerID,
		TotalAmount: total,
		PaymentMode: paymentMode,
		Status:      models.OrderStatusConfirmed,
	}

	err = tx.GetContext(ctx, order, `
		INSERT INTO orders (buyer_id, total_amount, payment_mode, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		order.BuyerID, order.TotalAmount, order.PaymentMode, order.Status)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create order: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM cart_lines WHERE buyer_id = $1", buyerID); err != nil {
		return nil, nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return order, items, nil
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrders retrieves all orders, newest first
func (s *Store) GetOrders(ctx context.Context) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.SelectContext(ctx, &orders, "SELECT * FROM orders ORDER BY created_at DESC")
	return orders, err
}

// TodaysSales sums order totals for the current server date. Status is not
// filtered; every creation path writes Confirmed anyway.
func (s *Store) TodaysSales(ctx context.Context) (float64, error) {
	var total float64
	err := s.db.GetContext(ctx, &total,
		"SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE created_at::date = CURRENT_DATE")
	return total, err
}

// CreateFeedback appends a feedback entry
func (s *Store) CreateFeedback(ctx context.Context, fb *models.Feedback) error {
	query := `
		INSERT INTO feedback (buyer_id, rating, message)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, fb, query, fb.BuyerID, fb.Rating, fb.Message)
}

// GetFeedback retrieves all feedback entries, newest first
func (s *Store) GetFeedback(ctx context.Context) ([]models.Feedback, error) {
	entries := []models.Feedback{}
	err := s.db.SelectContext(ctx, &entries, "SELECT * FROM feedback ORDER BY created_at DESC")
	return entries, err
}
