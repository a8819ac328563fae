package models

import "time"

// Event types
const (
	EventTypeOrderPlaced       = "ORDER_PLACED"
	EventTypeProductListed     = "PRODUCT_LISTED"
	EventTypeFeedbackSubmitted = "FEEDBACK_SUBMITTED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderPlacedEvent published after a checkout commits
type OrderPlacedEvent struct {
	BaseEvent
	OrderID     int64          `json:"order_id"`
	BuyerID     int64          `json:"buyer_id"`
	TotalAmount float64        `json:"total_amount"`
	PaymentMode string         `json:"payment_mode"`
	Items       []CartItemData `json:"items"`
}

// ProductListedEvent published when a seller adds a product
type ProductListedEvent struct {
	BaseEvent
	ProductID int64   `json:"product_id"`
	SellerID  int64   `json:"seller_id"`
	Category  string  `json:"category"`
	Price     float64 `json:"price"`
}

// FeedbackSubmittedEvent published on new feedback
type FeedbackSubmittedEvent struct {
	BaseEvent
	FeedbackID int64 `json:"feedback_id"`
	BuyerID    int64 `json:"buyer_id"`
	Rating     int   `json:"rating"`
}

// CartItemData represents a cart line snapshot inside events
type CartItemData struct {
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}
