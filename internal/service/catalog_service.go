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

// CatalogStore is the persistence surface the catalog service needs
type CatalogStore interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	GetProducts(ctx context.Context, category string) ([]models.Product, error)
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
}

// ProductCache is a read-through cache for single-product lookups.
// A miss returns (nil, nil).
type ProductCache interface {
	GetCachedProduct(ctx context.Context, id int64) (*models.Product, error)
	CacheProduct(ctx context.Context, product *models.Product) error
}

// CatalogEvents publishes catalog domain events
type CatalogEvents interface {
	PublishProductListed(ctx context.Context, event *models.ProductListedEvent) error
}

// CatalogService handles product listings
type CatalogService struct {
	store  CatalogStore
	cache  ProductCache
	events CatalogEvents
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service. cache and events may be
// nil; the service degrades to plain store access.
func NewCatalogService(store CatalogStore, cache ProductCache, events CatalogEvents) *CatalogService {
	return &CatalogService{
		store:  store,
		cache:  cache,
		events: events,
		logger: util.GetLogger(),
	}
}

// AddProductRequest represents a new listing submitted by a seller
type AddProductRequest struct {
	Name     string  `json:"name" binding:"required"`
	Category string  `json:"category" binding:"required"`
	Price    float64 `json:"price" binding:"required"`
	Quantity int     `json:"quantity"`
	Image    string  `json:"image"`
}

// AddProduct persists a new listing owned by the calling seller
func (s *CatalogService) AddProduct(ctx context.Context, ident auth.Identity, req *AddProductRequest) (*models.Product, error) {
	if ident.Role != models.RoleSeller {
		return nil, fmt.Errorf("only sellers can add products: %w", models.ErrUnauthorized)
	}
	if req.Name == "" || req.Category == "" {
		return nil, fmt.Errorf("name and category are required: %w", models.ErrValidation)
	}
	if req.Price <= 0 {
		return nil, fmt.Errorf("price must be positive: %w", models.ErrValidation)
	}
	if req.Quantity < 0 {
		return nil, fmt.Errorf("quantity must not be negative: %w", models.ErrValidation)
	}

	product := &models.Product{
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
		Quantity: req.Quantity,
		Image:    req.Image,
		SellerID: ident.UserID,
	}

	if err := s.store.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	util.ProductsListedTotal.Inc()
	s.logger.Info("Product listed",
		zap.Int64("product_id", product.ID),
		zap.Int64("seller_id", ident.UserID))

	if s.cache != nil {
		if err := s.cache.CacheProduct(ctx, product); err != nil {
			s.logger.Warn("Failed to cache product", zap.Error(err))
		}
	}

	if s.events != nil {
		event := &models.ProductListedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeProductListed,
				Timestamp: time.Now(),
			},
			ProductID: product.ID,
			SellerID:  product.SellerID,
			Category:  product.Category,
			Price:     product.Price,
		}
		if err := s.events.PublishProductListed(ctx, event); err != nil {
			s.logger.Error("Failed to publish ProductListed event", zap.Error(err))
		}
	}

	return product, nil
}

// ListProducts returns products in creation order, optionally filtered by
// exact category. Open to anonymous callers.
func (s *CatalogService) ListProducts(ctx context.Context, category string) ([]models.Product, error) {
	return s.store.GetProducts(ctx, category)
}

// GetProduct retrieves one product, consulting the cache first
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	if s.cache != nil {
		cached, err := s.cache.GetCachedProduct(ctx, id)
		if err != nil {
			s.logger.Warn("Product cache lookup failed", zap.Int64("product_id", id), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	product, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.CacheProduct(ctx, product); err != nil {
			s.logger.Warn("Failed to cache product", zap.Error(err))
		}
	}
	return product, nil
}
