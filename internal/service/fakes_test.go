package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"agrimarket/internal/models"
)

// fakeStore is an in-memory stand-in for the Postgres store. Mutations are
// serialized by one mutex so CheckoutTx keeps the same all-or-nothing
// behavior as the real transaction.
type fakeStore struct {
	mu       sync.Mutex
	nextID   int64
	users    map[int64]*models.User
	products map[int64]*models.Product
	order    []int64 // product insertion order
	carts    map[int64]map[int64]int
	orders   []models.Order
	feedback []models.Feedback

	clock        func() time.Time
	failCheckout bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    map[int64]*models.User{},
		products: map[int64]*models.Product{},
		carts:    map[int64]map[int64]int{},
		clock:    time.Now,
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) CreateUser(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return fmt.Errorf("email already registered: %w", models.ErrConflict)
		}
	}
	user.ID = f.id()
	user.CreatedAt = f.clock()
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, models.ErrNotFound)
}

func (f *fakeStore) CreateProduct(ctx context.Context, product *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	product.ID = f.id()
	product.CreatedAt = f.clock()
	cp := *product
	f.products[product.ID] = &cp
	f.order = append(f.order, product.ID)
	return nil
}

func (f *fakeStore) GetProducts(ctx context.Context, category string) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Product{}
	for _, id := range f.order {
		p := f.products[id]
		if category == "" || p.Category == category {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeStore) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, models.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) UpsertCartLine(ctx context.Context, buyerID, productID int64, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.carts[buyerID] == nil {
		f.carts[buyerID] = map[int64]int{}
	}
	f.carts[buyerID][productID] += delta
	return nil
}

func (f *fakeStore) GetCartProducts(ctx context.Context, buyerID int64) ([]models.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := []models.CartItem{}
	for _, id := range f.order {
		qty, ok := f.carts[buyerID][id]
		if !ok {
			continue
		}
		items = append(items, models.CartItem{Product: *f.products[id], Quantity: qty})
	}
	return items, nil
}

func (f *fakeStore) ClearCart(ctx context.Context, buyerID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.carts, buyerID)
	return nil
}

func (f *fakeStore) CheckoutTx(ctx context.Context, buyerID int64, paymentMode string) (*models.Order, []models.CartItemData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failCheckout {
		return nil, nil, errors.New("storage unavailable")
	}

	items := []models.CartItemData{}
	var total float64
	for _, id := range f.order {
		qty, ok := f.carts[buyerID][id]
		if !ok {
			continue
		}
		p := f.products[id]
		items = append(items, models.CartItemData{ProductID: id, Quantity: qty, UnitPrice: p.Price})
		total += p.Price * float64(qty)
	}

	order := models.Order{
		ID:          f.id(),
		BuyerID:     buyerID,
		TotalAmount: total,
		PaymentMode: paymentMode,
		Status:      models.OrderStatusConfirmed,
		CreatedAt:   f.clock(),
	}
	f.orders = append(f.orders, order)
	delete(f.carts, buyerID)

	return &order, items, nil
}

func (f *fakeStore) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.orders {
		if f.orders[i].ID == id {
			cp := f.orders[i]
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("order %d: %w", id, models.ErrNotFound)
}

func (f *fakeStore) GetOrders(ctx context.Context) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Order{}, f.orders...), nil
}

func (f *fakeStore) TodaysSales(ctx context.Context) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	today := f.clock()
	var total float64
	for _, o := range f.orders {
		y1, m1, d1 := o.CreatedAt.Date()
		y2, m2, d2 := today.Date()
		if y1 == y2 && m1 == m2 && d1 == d2 {
			total += o.TotalAmount
		}
	}
	return total, nil
}

func (f *fakeStore) CreateFeedback(ctx context.Context, fb *models.Feedback) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	fb.ID = f.id()
	fb.CreatedAt = f.clock()
	f.feedback = append(f.feedback, *fb)
	return nil
}

func (f *fakeStore) GetFeedback(ctx context.Context) ([]models.Feedback, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Feedback{}, f.feedback...), nil
}

func (f *fakeStore) cartQuantity(buyerID, productID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.carts[buyerID][productID]
}

func (f *fakeStore) orderCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders)
}

// fakeLocker is a non-blocking in-memory Locker
type fakeLocker struct {
	mu    sync.Mutex
	locks map[string]string
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{locks: map[string]string{}}
}

func (l *fakeLocker) AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, held := l.locks[key]; held {
		return "", false, nil
	}
	token := fmt.Sprintf("tok-%d", len(l.locks)+1)
	l.locks[key] = token
	return token, true, nil
}

func (l *fakeLocker) ReleaseLock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.locks[key] == token {
		delete(l.locks, key)
	}
	return nil
}

// fakePublisher records published events
type fakePublisher struct {
	mu       sync.Mutex
	placed   []*models.OrderPlacedEvent
	listed   []*models.ProductListedEvent
	feedback []*models.FeedbackSubmittedEvent
	fail     bool
}

func (p *fakePublisher) PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.placed = append(p.placed, event)
	return nil
}

func (p *fakePublisher) PublishProductListed(ctx context.Context, event *models.ProductListedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.listed = append(p.listed, event)
	return nil
}

func (p *fakePublisher) PublishFeedbackSubmitted(ctx context.Context, event *models.FeedbackSubmittedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.feedback = append(p.feedback, event)
	return nil
}

// fakeCache is an in-memory ProductCache
type fakeCache struct {
	mu    sync.Mutex
	items map[int64]*models.Product
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: map[int64]*models.Product{}}
}

func (c *fakeCache) GetCachedProduct(ctx context.Context, id int64) (*models.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.items[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (c *fakeCache) CacheProduct(ctx context.Context, product *models.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *product
	c.items[product.ID] = &cp
	return nil
}

// seedProduct inserts a product owned by a synthetic seller
func seedProduct(f *fakeStore, name string, price float64) *models.Product {
	p := &models.Product{Name: name, Category: "produce", Price: price, Quantity: 100, SellerID: 999}
	_ = f.CreateProduct(context.Background(), p)
	return p
}
