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

// ReportStore is the persistence surface for admin reporting and feedback
type ReportStore interface {
	TodaysSales(ctx context.Context) (float64, error)
	GetOrders(ctx context.Context) ([]models.Order, error)
	GetFeedback(ctx context.Context) ([]models.Feedback, error)
	GetProducts(ctx context.Context, category string) ([]models.Product, error)
	CreateFeedback(ctx context.Context, fb *models.Feedback) error
}

// ReportEvents publishes feedback domain events
type ReportEvents interface {
	PublishFeedbackSubmitted(ctx context.Context, event *models.FeedbackSubmittedEvent) error
}

// Dashboard is the admin aggregate view
type Dashboard struct {
	TodaysSales float64           `json:"todays_sales"`
	Orders      []models.Order    `json:"orders"`
	Feedback    []models.Feedback `json:"feedback"`
	Products    []models.Product  `json:"products"`
}

// ReportService serves read-only admin aggregates and collects feedback
type ReportService struct {
	store  ReportStore
	events ReportEvents
	logger *zap.Logger
}

// NewReportService creates a new report service. events may be nil.
func NewReportService(store ReportStore, events ReportEvents) *ReportService {
	return &ReportService{
		store:  store,
		events: events,
		logger: util.GetLogger(),
	}
}

// GetDashboard returns today's sales plus unfiltered dumps of orders,
// feedback and products. Admin only; no other role sees it.
func (s *ReportService) GetDashboard(ctx context.Context, ident auth.Identity) (*Dashboard, error) {
	if ident.Role != models.RoleAdmin {
		return nil, fmt.Errorf("admin only: %w", models.ErrUnauthorized)
	}

	sales, err := s.store.TodaysSales(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute today's sales: %w", err)
	}

	orders, err := s.store.GetOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	feedback, err := s.store.GetFeedback(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}

	products, err := s.store.GetProducts(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return &Dashboard{
		TodaysSales: sales,
		Orders:      orders,
		Feedback:    feedback,
		Products:    products,
	}, nil
}

// SubmitFeedback appends a feedback entry. Any authenticated user may
// submit; the rating is stored as given, without range validation.
func (s *ReportService) SubmitFeedback(ctx context.Context, ident auth.Identity, rating int, message string) (*models.Feedback, error) {
	if ident.UserID == 0 {
		return nil, fmt.Errorf("login required: %w", models.ErrUnauthorized)
	}
	if message == "" {
		return nil, fmt.Errorf("message is required: %w", models.ErrValidation)
	}

	fb := &models.Feedback{
		BuyerID: ident.UserID,
		Rating:  rating,
		Message: message,
	}

	if err := s.store.CreateFeedback(ctx, fb); err != nil {
		return nil, fmt.Errorf("failed to save feedback: %w", err)
	}

	util.FeedbackSubmittedTotal.Inc()

	if s.events != nil {
		event := &models.FeedbackSubmittedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeFeedbackSubmitted,
				Timestamp: time.Now(),
			},
			FeedbackID: fb.ID,
			BuyerID:    fb.BuyerID,
			Rating:     fb.Rating,
		}
		if err := s.events.PublishFeedbackSubmitted(ctx, event); err != nil {
			s.logger.Error("Failed to publish FeedbackSubmitted event", zap.Error(err))
		}
	}

	return fb, nil
}
