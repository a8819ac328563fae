package models

import "time"

// User roles
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

// ValidRole reports whether role is one of the three known roles.
func ValidRole(role string) bool {
	return role == RoleBuyer || role == RoleSeller || role == RoleAdmin
}

// User represents a registered account
type User struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Product represents a listing in the catalog
type Product struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Category  string    `db:"category" json:"category"`
	Price     float64   `db:"price" json:"price"`
	Quantity  int       `db:"quantity" json:"quantity"`
	Image     string    `db:"image" json:"image,omitempty"`
	SellerID  int64     `db:"seller_id" json:"seller_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CartLine is one (buyer, product) row of a cart. Unique per pair; repeated
// adds increment Quantity instead of inserting a second row.
type CartLine struct {
	BuyerID   int64 `db:"buyer_id" json:"buyer_id"`
	ProductID int64 `db:"product_id" json:"product_id"`
	Quantity  int   `db:"quantity" json:"quantity"`
}

// CartItem is a cart line joined against the catalog at read time.
// Price is always the current catalog price, never a cached one.
type CartItem struct {
	Product   Product `json:"product"`
	Quantity  int     `json:"quantity"`
	LineTotal float64 `json:"line_total"`
}

// Order represents a completed checkout. Immutable once created.
type Order struct {
	ID          int64     `db:"id" json:"id"`
	BuyerID     int64     `db:"buyer_id" json:"buyer_id"`
	TotalAmount float64   `db:"total_amount" json:"total_amount"`
	PaymentMode string    `db:"payment_mode" json:"payment_mode"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Feedback is an append-only rating plus message from a user
type Feedback struct {
	ID        int64     `db:"id" json:"id"`
	BuyerID   int64     `db:"buyer_id" json:"buyer_id"`
	Rating    int       `db:"rating" json:"rating"`
	Message   string    `db:"message" json:"message"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Order statuses. Pending is the schema default but every creation path
// writes Confirmed directly.
const (
	OrderStatusPending   = "Pending"
	OrderStatusConfirmed = "Confirmed"
)
