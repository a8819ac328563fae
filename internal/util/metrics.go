package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Total number of orders placed via checkout",
	})

	CheckoutFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_failed_total",
		Help: "Total number of failed checkouts",
	}, []string{"reason"})

	CheckoutLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_latency_seconds",
		Help:    "Latency of checkout operations",
		Buckets: prometheus.DefBuckets,
	})

	CartAddsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cart_adds_total",
		Help: "Total number of add-to-cart operations",
	})

	ProductsListedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_listed_total",
		Help: "Total number of products listed by sellers",
	})

	FeedbackSubmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feedback_submitted_total",
		Help: "Total number of feedback entries submitted",
	})

	OrderEventsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_events_processed_total",
		Help: "Total number of order events processed by the sales worker",
	}, []string{"type"})

	StreamRevenueTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stream_revenue_total",
		Help: "Running revenue observed on the order event stream",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
