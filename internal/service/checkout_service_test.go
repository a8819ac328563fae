package service

import (
	"context"
	"sync"
	"testing"

	"agrimarket/internal/auth"
	"agrimarket/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutDrainsCart(t *testing.T) {
	store := newFakeStore()
	cart := NewCartService(store)
	publisher := &fakePublisher{}
	svc := NewCheckoutService(store, newFakeLocker(), publisher)
	ctx := context.Background()

	a := seedProduct(store, "A", 10)
	b := seedProduct(store, "B", 5)
	require.NoError(t, cart.AddToCart(ctx, buyerIdent, a.ID, 1))
	require.NoError(t, cart.AddToCart(ctx, buyerIdent, a.ID, 1))
	require.NoError(t, cart.AddToCart(ctx, buyerIdent, b.ID, 1))

	order, err := svc.Checkout(ctx, buyerIdent, "cash")
	require.NoError(t, err)
	assert.Equal(t, 25.0, order.TotalAmount)
	assert.Equal(t, models.OrderStatusConfirmed, order.Status)
	assert.Equal(t, "cash", order.PaymentMode)
	assert.NotZero(t, order.ID)

	items, total, err := cart.GetCart(ctx, buyerIdent)
	require.NoError(t, err)
	assert.Empty(t, items, "checkout must clear the cart")
	assert.Zero(t, total)

	require.Len(t, publisher.placed, 1)
	assert.Equal(t, order.ID, publisher.placed[0].OrderID)
	assert.Len(t, publisher.placed[0].Items, 2)
}

func TestCheckoutEmptyCart(t *testing.T) {
	store := newFakeStore()
	svc := NewCheckoutService(store, nil, nil)

	order, err := svc.Checkout(context.Background(), buyerIdent, "cash")
	require.NoError(t, err)
	assert.Zero(t, order.TotalAmount)
	assert.Equal(t, models.OrderStatusConfirmed, order.Status)
}

func TestCheckoutRequiresBuyerRole(t *testing.T) {
	store := newFakeStore()
	svc := NewCheckoutService(store, nil, nil)

	_, err := svc.Checkout(context.Background(), sellerIdent, "cash")
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = svc.Checkout(context.Background(), adminIdent, "cash")
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	assert.Equal(t, 0, store.orderCount())
}

func TestCheckoutRequiresPaymentMode(t *testing.T) {
	store := newFakeStore()
	svc := NewCheckoutService(store, nil, nil)

	_, err := svc.Checkout(context.Background(), buyerIdent, "")
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Equal(t, 0, store.orderCount())
}

func TestCheckoutRollsBackOnPersistenceFailure(t *testing.T) {
	store := newFakeStore()
	cart := NewCartService(store)
	svc := NewCheckoutService(store, nil, nil)
	ctx := context.Background()

	p := seedProduct(store, "A", 10)
	require.NoError(t, cart.AddToCart(ctx, buyerIdent, p.ID, 2))

	store.failCheckout = true
	_, err := svc.Checkout(ctx, buyerIdent, "cash")
	require.Error(t, err)

	assert.Equal(t, 0, store.orderCount(), "no order may exist after a failed checkout")
	assert.Equal(t, 2, store.cartQuantity(buyerIdent.UserID, p.ID), "cart must be untouched after a failed checkout")
}

func TestConcurrentCheckoutsNoDoubleSpend(t *testing.T) {
	store := newFakeStore()
	cart := NewCartService(store)
	svc := NewCheckoutService(store, newFakeLocker(), nil)
	ctx := context.Background()

	p := seedProduct(store, "A", 10)
	require.NoError(t, cart.AddToCart(ctx, buyerIdent, p.ID, 5))

	var wg sync.WaitGroup
	totals := make([]float64, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			order, err := svc.Checkout(ctx, buyerIdent, "cash")
			if err != nil {
				errs[i] = err
				return
			}
			totals[i] = order.TotalAmount
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	// One caller drains the cart; the other sees it already empty. The cart
	// state is never charged twice.
	assert.Equal(t, 50.0, totals[0]+totals[1])

	items, _, err := cart.GetCart(ctx, buyerIdent)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCheckoutSucceedsWhenPublishFails(t *testing.T) {
	store := newFakeStore()
	cart := NewCartService(store)
	publisher := &fakePublisher{fail: true}
	svc := NewCheckoutService(store, nil, publisher)
	ctx := context.Background()

	p := seedProduct(store, "A", 10)
	require.NoError(t, cart.AddToCart(ctx, buyerIdent, p.ID, 1))

	order, err := svc.Checkout(ctx, buyerIdent, "card")
	require.NoError(t, err, "a broker outage must not fail the checkout")
	assert.Equal(t, 10.0, order.TotalAmount)
}

func TestGetOrder(t *testing.T) {
	store := newFakeStore()
	cart := NewCartService(store)
	svc := NewCheckoutService(store, nil, nil)
	ctx := context.Background()

	p := seedProduct(store, "A", 10)
	require.NoError(t, cart.AddToCart(ctx, buyerIdent, p.ID, 1))

	placed, err := svc.Checkout(ctx, buyerIdent, "cash")
	require.NoError(t, err)

	got, err := svc.GetOrder(ctx, buyerIdent, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, placed.TotalAmount, got.TotalAmount)

	// Any authenticated user may view a confirmation; anonymous may not.
	_, err = svc.GetOrder(ctx, sellerIdent, placed.ID)
	assert.NoError(t, err)

	_, err = svc.GetOrder(ctx, auth.Identity{}, placed.ID)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = svc.GetOrder(ctx, buyerIdent, 98765)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
