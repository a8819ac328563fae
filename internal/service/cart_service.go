package service

import (
	"context"
	"fmt"

	"agrimarket/internal/auth"
	"agrimarket/internal/models"
	"agrimarket/internal/util"

	"go.uber.org/zap"
)

// CartStore is the persistence surface the cart service needs
type CartStore interface {
	UpsertCartLine(ctx context.Context, buyerID, productID int64, delta int) error
	GetCartProducts(ctx context.Context, buyerID int64) ([]models.CartItem, error)
	ClearCart(ctx context.Context, buyerID int64) error
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
}

// CartService handles per-buyer cart accumulation
type CartService struct {
	store  CartStore
	logger *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(store CartStore) *CartService {
	return &CartService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// AddToCart adds delta units of a product to the buyer's cart. Adding a
// product already in the cart increments its line instead of creating a
// second one.
func (s *CartService) AddToCart(ctx context.Context, ident auth.Identity, productID int64, delta int) error {
	if ident.Role != models.RoleBuyer {
		return fmt.Errorf("only buyers can add to cart: %w", models.ErrUnauthorized)
	}
	if delta < 1 {
		return fmt.Errorf("quantity must be at least 1: %w", models.ErrValidation)
	}

	if _, err := s.store.GetProductByID(ctx, productID); err != nil {
		return err
	}

	if err := s.store.UpsertCartLine(ctx, ident.UserID, productID, delta); err != nil {
		return fmt.Errorf("failed to add to cart: %w", err)
	}

	util.CartAddsTotal.Inc()
	return nil
}

// GetCart returns the buyer's cart joined against current catalog prices,
// plus the cart total. Lines whose product vanished from the catalog are
// skipped and excluded from the total.
func (s *CartService) GetCart(ctx context.Context, ident auth.Identity) ([]models.CartItem, float64, error) {
	if ident.Role != models.RoleBuyer {
		return nil, 0, fmt.Errorf("only buyers have carts: %w", models.ErrUnauthorized)
	}

	items, err := s.store.GetCartProducts(ctx, ident.UserID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read cart: %w", err)
	}

	var total float64
	for i := range items {
		items[i].LineTotal = items[i].Product.Price * float64(items[i].Quantity)
		total += items[i].LineTotal
	}
	return items, total, nil
}

// ClearCart removes every line from the buyer's cart. Idempotent.
func (s *CartService) ClearCart(ctx context.Context, ident auth.Identity) error {
	if ident.Role != models.RoleBuyer {
		return fmt.Errorf("only buyers have carts: %w", models.ErrUnauthorized)
	}
	return s.store.ClearCart(ctx, ident.UserID)
}
