package store

import (
	"context"

	"agrimarket/internal/models"
)

// UpsertCartLine adds delta to the buyer's line for a product, creating the
// line when absent. A single atomic statement so concurrent adds never lose
// an increment.
func (s *Store) UpsertCartLine(ctx context.Context, buyerID, productID int64, delta int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cart_lines (buyer_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (buyer_id, product_id)
		DO UPDATE SET quantity = cart_lines.quantity + EXCLUDED.quantity`,
		buyerID, productID, delta)
	return err
}

// GetCartProducts joins the buyer's cart lines against the catalog at read
// time. Lines whose product no longer exists are dropped by the join.
func (s *Store) GetCartProducts(ctx context.Context, buyerID int64) ([]models.CartItem, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT p.id, p.name, p.category, p.price, p.quantity, p.image, p.seller_id, p.created_at,
		       c.quantity AS cart_quantity
		FROM cart_lines c
		JOIN products p ON p.id = c.product_id
		WHERE c.buyer_id = $1
		ORDER BY p.id`, buyerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.CartItem{}
	for rows.Next() {
		var item models.CartItem
		err := rows.Scan(
			&item.Product.ID, &item.Product.Name, &item.Product.Category,
			&item.Product.Price, &item.Product.Quantity, &item.Product.Image,
			&item.Product.SellerID, &item.Product.CreatedAt,
			&item.Quantity)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ClearCart removes all of the buyer's cart lines. Clearing an empty cart
// is a no-op.
func (s *Store) ClearCart(ctx context.Context, buyerID int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM cart_lines WHERE buyer_id = $1", buyerID)
	return err
}
