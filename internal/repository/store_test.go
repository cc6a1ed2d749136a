package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talkincode/toughcrm/internal/domain"
	"github.com/talkincode/toughcrm/internal/repository/sqlitetest"
)

func newProduct(t *testing.T, store Store, name, price string, stock int) domain.Product {
	t.Helper()
	p := domain.Product{Name: name, Price: decimal.RequireFromString(price), Stock: stock}
	require.NoError(t, store.Products().Create(context.Background(), &p))
	return p
}

func TestCustomerRepository(t *testing.T) {
	store := NewGormStore(sqlitetest.Open(t))
	ctx := context.Background()

	c := domain.Customer{Name: "John Doe", Email: "john@example.com"}
	require.NoError(t, store.Customers().Create(ctx, &c))
	assert.NotZero(t, c.ID)

	t.Run("get by id", func(t *testing.T) {
		got, err := store.Customers().GetByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, "john@example.com", got.Email)
	})

	t.Run("missing id is not found", func(t *testing.T) {
		_, err := store.Customers().GetByID(ctx, 42)
		var nf *domain.NotFoundError
		require.True(t, errors.As(err, &nf))
		assert.Equal(t, "customer", nf.Kind)
		assert.Equal(t, int64(42), nf.ID)
	})

	t.Run("email exists", func(t *testing.T) {
		ok, err := store.Customers().EmailExists(ctx, "john@example.com")
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = store.Customers().EmailExists(ctx, "jane@example.com")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unique index surfaces as conflict", func(t *testing.T) {
		dup := domain.Customer{Name: "Other", Email: "john@example.com"}
		err := store.Customers().Create(ctx, &dup)
		var ce *domain.ConflictError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, "email", ce.Field)
	})
}

func TestAtomicRollsBack(t *testing.T) {
	store := NewGormStore(sqlitetest.Open(t))
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.Atomic(ctx, func(tx Store) error {
		require.NoError(t, tx.Customers().Create(ctx, &domain.Customer{Name: "A", Email: "a@example.com"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	n, err := store.Customers().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAtomicNestedSavepoint(t *testing.T) {
	store := NewGormStore(sqlitetest.Open(t))
	ctx := context.Background()

	err := store.Atomic(ctx, func(tx Store) error {
		require.NoError(t, tx.Customers().Create(ctx, &domain.Customer{Name: "A", Email: "a@example.com"}))
		inner := tx.Atomic(ctx, func(inner Store) error {
			require.NoError(t, inner.Customers().Create(ctx, &domain.Customer{Name: "B", Email: "b@example.com"}))
			return errors.New("discard b")
		})
		assert.Error(t, inner)
		return nil
	})
	require.NoError(t, err)

	customers, err := store.Customers().List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "a@example.com", customers[0].Email)
}

func TestProductRepository(t *testing.T) {
	store := NewGormStore(sqlitetest.Open(t))
	ctx := context.Background()

	phone := newProduct(t, store, "Phone", "500.00", 5)
	tablet := newProduct(t, store, "Tablet", "300.00", 12)

	t.Run("find by ids returns existing subset", func(t *testing.T) {
		found, err := store.Products().FindByIDs(ctx, []int64{phone.ID, tablet.ID, 7})
		require.NoError(t, err)
		assert.Len(t, found, 2)
		assert.True(t, found[0].Price.Equal(decimal.NewFromInt(500)))
	})

	t.Run("low stock", func(t *testing.T) {
		low, err := store.Products().LowStock(ctx, 10)
		require.NoError(t, err)
		require.Len(t, low, 1)
		assert.Equal(t, "Phone", low[0].Name)
	})

	t.Run("conditional increment", func(t *testing.T) {
		stock, changed, err := store.Products().IncrementStockBelow(ctx, phone.ID, 10, 10)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, 15, stock)

		// a second bump of the same row is refused once it crossed the threshold
		stock, changed, err = store.Products().IncrementStockBelow(ctx, phone.ID, 10, 10)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, 15, stock)
	})
}

func TestOrderRepository(t *testing.T) {
	store := NewGormStore(sqlitetest.Open(t))
	ctx := context.Background()

	c := domain.Customer{Name: "Jane", Email: "jane@example.com"}
	require.NoError(t, store.Customers().Create(ctx, &c))
	phone := newProduct(t, store, "Phone", "500.00", 5)
	tablet := newProduct(t, store, "Tablet", "300.00", 3)

	old := domain.Order{
		CustomerID:  c.ID,
		Products:    []domain.Product{phone},
		TotalAmount: decimal.RequireFromString("500.00"),
		OrderDate:   time.Now().AddDate(0, 0, -30),
	}
	recent := domain.Order{
		CustomerID:  c.ID,
		Products:    []domain.Product{phone, tablet},
		TotalAmount: decimal.RequireFromString("800.00"),
		OrderDate:   time.Now().Add(-time.Hour),
	}
	require.NoError(t, store.Orders().Create(ctx, &old))
	require.NoError(t, store.Orders().Create(ctx, &recent))

	orders, err := store.Orders().List(ctx, ListOptions{OrderBy: []string{"total_amount DESC"}})
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, recent.ID, orders[0].ID)
	assert.Len(t, orders[0].Products, 2)
	require.NotNil(t, orders[0].Customer)
	assert.Equal(t, "jane@example.com", orders[0].Customer.Email)

	since, err := store.Orders().PlacedSince(ctx, time.Now().AddDate(0, 0, -7))
	require.NoError(t, err)
	require.Len(t, since, 1)
	assert.Equal(t, recent.ID, since[0].ID)

	totals, err := store.Orders().Totals(ctx)
	require.NoError(t, err)
	sum := decimal.Zero
	for _, v := range totals {
		sum = sum.Add(v)
	}
	assert.True(t, sum.Equal(decimal.NewFromInt(1300)), sum.String())
}

func TestParseOrderBy(t *testing.T) {
	opts, err := ParseOrderBy([]string{"-price", "name", "createdAt"}, ProductSortFields)
	require.NoError(t, err)
	assert.Equal(t, []string{"price DESC", "name ASC", "created_at ASC"}, opts.OrderBy)

	_, err = ParseOrderBy([]string{"password"}, CustomerSortFields)
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "order_by", ve.Field)
}
