package service

import (
	"context"
	"fmt"
	"time"

	"agrimarket/internal/auth"
	"agrimarket/internal/models"
	"agrimarket/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckoutStore is the persistence surface the checkout engine needs.
// CheckoutTx must be atomic: order insert and cart clear commit together
// or not at all.
type CheckoutStore interface {
	CheckoutTx(ctx context.Context, buyerID int64, paymentMode string) (*models.Order, []models.CartItemData, error)
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
}

// Locker serializes checkouts per buyer. Acquire returns a release token;
// ok=false means the lock is held elsewhere.
type Locker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	ReleaseLock(ctx context.Context, key, token string) error
}

// CheckoutEvents publishes order domain events
type CheckoutEvents interface {
	PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error
}

// CheckoutService drains a buyer's cart into an immutable order
type CheckoutService struct {
	store  CheckoutStore
	locks  Locker
	events CheckoutEvents
	logger *zap.Logger
}

// NewCheckoutService creates a new checkout service. locks and events may
// be nil; the database transaction alone still guarantees atomicity.
func NewCheckoutService(store CheckoutStore, locks Locker, events CheckoutEvents) *CheckoutService {
	return &CheckoutService{
		store:  store,
		locks:  locks,
		events: events,
		logger: util.GetLogger(),
	}
}

const checkoutLockTTL = 10 * time.Second

// Checkout converts the buyer's current cart into a Confirmed order with a
// total computed from catalog prices at this instant, and clears the cart.
// An empty cart produces a zero-total order. A concurrent checkout for the
// same buyer is serialized behind the per-buyer lock; if the lock is
// unavailable the transaction still ensures the cart is drained exactly
// once, with the loser seeing an already-empty cart.
func (s *CheckoutService) Checkout(ctx context.Context, ident auth.Identity, paymentMode string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.Checkout")
	defer span.End()

	if ident.Role != models.RoleBuyer {
		util.CheckoutFailedTotal.WithLabelValues("unauthorized").Inc()
		return nil, fmt.Errorf("only buyers can checkout: %w", models.ErrUnauthorized)
	}
	if paymentMode == "" {
		util.CheckoutFailedTotal.WithLabelValues("invalid_payment_mode").Inc()
		return nil, fmt.Errorf("payment mode is required: %w", models.ErrValidation)
	}

	start := time.Now()
	defer func() {
		util.CheckoutLatency.Observe(time.Since(start).Seconds())
	}()

	if s.locks != nil {
		key := fmt.Sprintf("checkout:%d", ident.UserID)
		token, ok, err := s.locks.AcquireLock(ctx, key, checkoutLockTTL)
		if err != nil {
			s.logger.Warn("Checkout lock unavailable, relying on transaction",
				zap.Int64("buyer_id", ident.UserID), zap.Error(err))
		} else if ok {
			defer func() {
				if err := s.locks.ReleaseLock(ctx, key, token); err != nil {
					s.logger.Warn("Failed to release checkout lock", zap.Error(err))
				}
			}()
		}
	}

	order, items, err := s.store.CheckoutTx(ctx, ident.UserID, paymentMode)
	if err != nil {
		util.CheckoutFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("checkout failed: %w", err)
	}

	util.OrdersPlacedTotal.Inc()
	s.logger.Info("Order placed",
		zap.Int64("order_id", order.ID),
		zap.Int64("buyer_id", order.BuyerID),
		zap.Float64("total_amount", order.TotalAmount))

	if s.events != nil {
		event := &models.OrderPlacedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeOrderPlaced,
				Timestamp: time.Now(),
			},
			OrderID:     order.ID,
			BuyerID:     order.BuyerID,
			TotalAmount: order.TotalAmount,
			PaymentMode: order.PaymentMode,
			Items:       items,
		}
		if err := s.events.PublishOrderPlaced(ctx, event); err != nil {
			s.logger.Error("Failed to publish OrderPlaced event", zap.Error(err))
		}
	}

	return order, nil
}

// GetOrder retrieves an order for the confirmation view. Any authenticated
// caller may look up an order by ID.
func (s *CheckoutService) GetOrder(ctx context.Context, ident auth.Identity, orderID int64) (*models.Order, error) {
	if ident.UserID == 0 {
		return nil, fmt.Errorf("login required: %w", models.ErrUnauthorized)
	}
	return s.store.GetOrderByID(ctx, orderID)
}
