package worker

import (
	"context"
	"log"

	"agrimarket/internal/broker"
	"agrimarket/internal/models"
	"agrimarket/internal/util"

	"go.uber.org/zap"
)

// SalesWorker tails the market event stream and keeps the sales metrics
// hot so the admin dashboard numbers can be cross-checked against the
// stream. It never mutates store state.
type SalesWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	logger       *zap.Logger
}

// NewSalesWorker creates a new sales worker
func NewSalesWorker(consumer *broker.Consumer) *SalesWorker {
	w := &SalesWorker{
		consumer: consumer,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderPlaced(w.handleOrderPlaced)
	eventHandler.OnFeedbackSubmitted(w.handleFeedbackSubmitted)
	w.eventHandler = eventHandler

	return w
}

func (w *SalesWorker) handleOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	util.OrderEventsProcessedTotal.WithLabelValues(models.EventTypeOrderPlaced).Inc()
	util.StreamRevenueTotal.Add(event.TotalAmount)

	w.logger.Info("Order observed on stream",
		zap.Int64("order_id", event.OrderID),
		zap.Int64("buyer_id", event.BuyerID),
		zap.Float64("total_amount", event.TotalAmount),
		zap.String("payment_mode", event.PaymentMode),
		zap.Int("line_count", len(event.Items)))
	return nil
}

func (w *SalesWorker) handleFeedbackSubmitted(ctx context.Context, event *models.FeedbackSubmittedEvent) error {
	util.OrderEventsProcessedTotal.WithLabelValues(models.EventTypeFeedbackSubmitted).Inc()

	w.logger.Info("Feedback observed on stream",
		zap.Int64("feedback_id", event.FeedbackID),
		zap.Int("rating", event.Rating))
	return nil
}

// Start starts the worker
func (w *SalesWorker) Start(ctx context.Context) error {
	log.Println("Starting sales worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *SalesWorker) Stop() error {
	log.Println("Stopping sales worker...")
	return w.consumer.Close()
}
