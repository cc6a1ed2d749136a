package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/talkincode/toughcrm/internal/domain"
	"gorm.io/gorm"
)

// ListOptions carries validated ORDER BY clauses, see ParseOrderBy
type ListOptions struct {
	OrderBy []string
}

// CustomerRepository handles persistence of customers
type CustomerRepository interface {
	// Create assigns an ID and inserts the customer. A duplicate email
	// surfaces as *domain.ConflictError.
	Create(ctx context.Context, customer *domain.Customer) error

	// GetByID returns *domain.NotFoundError when the customer is absent
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)

	// EmailExists checks an already normalized email
	EmailExists(ctx context.Context, email string) (bool, error)

	List(ctx context.Context, opts ListOptions) ([]domain.Customer, error)
	Count(ctx context.Context) (int64, error)
}

// ProductRepository handles persistence of products
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error

	// FindByIDs returns the subset of ids that exist, each product once
	FindByIDs(ctx context.Context, ids []int64) ([]domain.Product, error)

	List(ctx context.Context, opts ListOptions) ([]domain.Product, error)

	// LowStock returns products whose stock is below threshold
	LowStock(ctx context.Context, threshold int) ([]domain.Product, error)

	// IncrementStockBelow adds increment to the product stock only if it is
	// still below threshold. It reports the resulting stock and whether the
	// row was changed.
	IncrementStockBelow(ctx context.Context, id int64, threshold, increment int) (int, bool, error)
}

// OrderRepository handles persistence of orders
type OrderRepository interface {
	// Create inserts the order row together with its product links. The
	// referenced customer and products must already exist.
	Create(ctx context.Context, order *domain.Order) error

	List(ctx context.Context, opts ListOptions) ([]domain.Order, error)

	// PlacedSince returns orders with order_date >= since, customer loaded
	PlacedSince(ctx context.Context, since time.Time) ([]domain.Order, error)

	Count(ctx context.Context) (int64, error)
	Totals(ctx context.Context) ([]decimal.Decimal, error)
}

// Store groups the entity repositories behind one transaction boundary
type Store interface {
	Customers() CustomerRepository
	Products() ProductRepository
	Orders() OrderRepository

	// Atomic runs fn inside a transaction. Calling Atomic on the Store handed
	// to fn opens a savepoint, so a failing inner call only rolls back its
	// own writes.
	Atomic(ctx context.Context, fn func(tx Store) error) error
}

// GormStore is the GORM implementation of Store
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a Store backed by db. db should be opened with
// TranslateError enabled so duplicate keys are detected.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Customers() CustomerRepository {
	return &GormCustomerRepository{db: s.db}
}

func (s *GormStore) Products() ProductRepository {
	return &GormProductRepository{db: s.db}
}

func (s *GormStore) Orders() OrderRepository {
	return &GormOrderRepository{db: s.db}
}

func (s *GormStore) Atomic(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

// Ensure GormStore implements Store
var _ Store = (*GormStore)(nil)
