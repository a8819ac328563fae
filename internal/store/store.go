package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"agrimarket/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const pqUniqueViolation = "23505"

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

var schema = `
CREATE TABLE IF NOT EXISTS users (
	id            BIGSERIAL PRIMARY KEY,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS products (
	id         BIGSERIAL PRIMARY KEY,
	name       TEXT NOT NULL,
	category   TEXT NOT NULL,
	price      DOUBLE PRECISION NOT NULL,
	quantity   INT NOT NULL,
	image      TEXT NOT NULL DEFAULT '',
	seller_id  BIGINT NOT NULL REFERENCES users(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS cart_lines (
	buyer_id   BIGINT NOT NULL REFERENCES users(id),
	product_id BIGINT NOT NULL REFERENCES products(id),
	quantity   INT NOT NULL CHECK (quantity >= 1),
	PRIMARY KEY (buyer_id, product_id)
);

CREATE TABLE IF NOT EXISTS orders (
	id           BIGSERIAL PRIMARY KEY,
	buyer_id     BIGINT NOT NULL REFERENCES users(id),
	total_amount DOUBLE PRECISION NOT NULL,
	payment_mode TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'Pending',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS feedback (
	id         BIGSERIAL PRIMARY KEY,
	buyer_id   BIGINT NOT NULL REFERENCES users(id),
	rating     INT NOT NULL,
	message    TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// Migrate creates the schema if it does not exist yet
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// EnsureAdmin seeds the default admin account when no admin exists
func (s *Store) EnsureAdmin(ctx context.Context, name, email, passwordHash string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (name, email, password_hash, role)
		SELECT $1, $2, $3, 'admin'
		WHERE NOT EXISTS (SELECT 1 FROM users WHERE role = 'admin')`,
		name, email, passwordHash)
	return err
}

// CreateUser persists a new user. Duplicate email maps to ErrConflict.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := s.db.GetContext(ctx, user, query,
		user.Name, user.Email, user.PasswordHash, user.Role)
	if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == pqUniqueViolation {
		return fmt.Errorf("email already registered: %w", models.ErrConflict)
	}
	return err
}

// GetUserByEmail retrieves a user by email
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, "SELECT * FROM users WHERE email = $1", email)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %s: %w", email, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, "SELECT * FROM users WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateProduct persists a new product listing
func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (name, category, price, quantity, image, seller_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, product, query,
		product.Name, product.Category, product.Price,
		product.Quantity, product.Image, product.SellerID)
}

// GetProducts retrieves products in insertion order, optionally filtered
// by exact category. Empty category means all.
func (s *Store) GetProducts(ctx context.Context, category string) ([]models.Product, error) {
	products := []models.Product{}
	if category == "" {
		err := s.db.SelectContext(ctx, &products, "SELECT * FROM products ORDER BY id")
		return products, err
	}
	err := s.db.SelectContext(ctx, &products,
		"SELECT * FROM products WHERE category = $1 ORDER BY id", category)
	return products, err
}

// GetProductByID retrieves a product by ID
func (s *Store) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("product %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}
