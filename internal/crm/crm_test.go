package crm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talkincode/toughcrm/internal/domain"
	"github.com/talkincode/toughcrm/internal/repository"
	"github.com/talkincode/toughcrm/internal/repository/sqlitetest"
)

func setupStore(t *testing.T) repository.Store {
	return repository.NewGormStore(sqlitetest.Open(t))
}

func mustProduct(t *testing.T, store repository.Store, name, price string, stock int) *domain.Product {
	t.Helper()
	p, err := CreateProduct(context.Background(), store, ProductInput{
		Name:  name,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	})
	require.NoError(t, err)
	return p
}

func mustCustomer(t *testing.T, store repository.Store, name, email string) *domain.Customer {
	t.Helper()
	c, err := CreateCustomer(context.Background(), store, CustomerInput{Name: name, Email: email})
	require.NoError(t, err)
	return c
}

func requireField(t *testing.T, err error, field string) {
	t.Helper()
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve), "expected validation error, got %v", err)
	assert.Equal(t, field, ve.Field)
}

func countCustomers(t *testing.T, store repository.Store) int64 {
	t.Helper()
	n, err := store.Customers().Count(context.Background())
	require.NoError(t, err)
	return n
}

func TestCreateCustomer(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	t.Run("email is stored lower-cased", func(t *testing.T) {
		c, err := CreateCustomer(ctx, store, CustomerInput{Name: "John Doe", Email: "John@Example.com", Phone: "+1234567890"})
		require.NoError(t, err)
		assert.Equal(t, "john@example.com", c.Email)
		assert.Equal(t, "+1234567890", c.Phone)

		stored, err := store.Customers().GetByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, "john@example.com", stored.Email)
	})

	t.Run("duplicate email in another case is a conflict", func(t *testing.T) {
		before := countCustomers(t, store)
		_, err := CreateCustomer(ctx, store, CustomerInput{Name: "Johnny", Email: "JOHN@example.COM"})
		var ce *domain.ConflictError
		require.True(t, errors.As(err, &ce), "got %v", err)
		assert.Equal(t, "email", ce.Field)
		assert.Equal(t, before, countCustomers(t, store))
	})

	t.Run("dashed phone accepted", func(t *testing.T) {
		c, err := CreateCustomer(ctx, store, CustomerInput{Name: "Jane Smith", Email: "jane@example.com", Phone: "123-456-7890"})
		require.NoError(t, err)
		assert.Equal(t, "123-456-7890", c.Phone)
	})

	t.Run("bad phone rejected without write", func(t *testing.T) {
		before := countCustomers(t, store)
		_, err := CreateCustomer(ctx, store, CustomerInput{Name: "Bob", Email: "bob@example.com", Phone: "12345"})
		requireField(t, err, "phone")
		assert.Equal(t, before, countCustomers(t, store))
	})

	t.Run("missing name and email", func(t *testing.T) {
		_, err := CreateCustomer(ctx, store, CustomerInput{Email: "x@example.com"})
		requireField(t, err, "name")
		_, err = CreateCustomer(ctx, store, CustomerInput{Name: "X"})
		requireField(t, err, "email")
	})
}

func TestCreateProduct(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	p := mustProduct(t, store, "Phone", "500.00", 5)
	assert.Equal(t, 5, p.Stock)

	p, err := CreateProduct(ctx, store, ProductInput{Name: "Cable", Price: decimal.RequireFromString("9.99")})
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stock)

	_, err = CreateProduct(ctx, store, ProductInput{Name: "Free", Price: decimal.Zero})
	requireField(t, err, "price")
	_, err = CreateProduct(ctx, store, ProductInput{Name: "Negative", Price: decimal.NewFromInt(-5)})
	requireField(t, err, "price")
	_, err = CreateProduct(ctx, store, ProductInput{Name: "Stockless", Price: decimal.NewFromInt(10), Stock: -1})
	requireField(t, err, "stock")

	products, err := ListProducts(ctx, store, nil)
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestCreateOrder(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	customer := mustCustomer(t, store, "John Doe", "john@example.com")
	phone := mustProduct(t, store, "Phone", "500", 5)
	tablet := mustProduct(t, store, "Tablet", "300", 3)

	t.Run("total is the exact decimal sum", func(t *testing.T) {
		order, err := CreateOrder(ctx, store, OrderInput{
			CustomerID: customer.ID,
			ProductIDs: []int64{phone.ID, tablet.ID},
		})
		require.NoError(t, err)
		assert.Equal(t, "800.00", order.TotalAmount.StringFixed(2))
		assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("800.00")))
		assert.WithinDuration(t, time.Now(), order.OrderDate, time.Minute)
		require.NotNil(t, order.Customer)
		assert.Equal(t, customer.Email, order.Customer.Email)

		orders, err := ListOrders(ctx, store, nil)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.True(t, orders[0].TotalAmount.Equal(decimal.NewFromInt(800)))
		assert.Len(t, orders[0].Products, 2)
	})

	t.Run("fractional prices do not drift", func(t *testing.T) {
		a := mustProduct(t, store, "A", "0.10", 1)
		b := mustProduct(t, store, "B", "0.20", 1)
		order, err := CreateOrder(ctx, store, OrderInput{CustomerID: customer.ID, ProductIDs: []int64{a.ID, b.ID}})
		require.NoError(t, err)
		assert.Equal(t, "0.30", order.TotalAmount.StringFixed(2))
		assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("0.3")))
	})

	t.Run("explicit order date is kept", func(t *testing.T) {
		date := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		order, err := CreateOrder(ctx, store, OrderInput{CustomerID: customer.ID, ProductIDs: []int64{phone.ID}, OrderDate: &date})
		require.NoError(t, err)
		assert.True(t, order.OrderDate.Equal(date))
	})

	t.Run("unknown customer", func(t *testing.T) {
		_, err := CreateOrder(ctx, store, OrderInput{CustomerID: 1, ProductIDs: []int64{phone.ID}})
		var nf *domain.NotFoundError
		require.True(t, errors.As(err, &nf), "got %v", err)
		assert.Equal(t, "customer", nf.Kind)
	})

	t.Run("unknown product leaves no order behind", func(t *testing.T) {
		before, err := store.Orders().Count(ctx)
		require.NoError(t, err)

		_, err = CreateOrder(ctx, store, OrderInput{CustomerID: customer.ID, ProductIDs: []int64{phone.ID, 99}})
		requireField(t, err, "product_ids")

		after, err := store.Orders().Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("empty product set", func(t *testing.T) {
		_, err := CreateOrder(ctx, store, OrderInput{CustomerID: customer.ID})
		requireField(t, err, "product_ids")
	})
}

func TestBulkCreateCustomers(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	mustCustomer(t, store, "Existing", "taken@example.com")

	result, err := BulkCreateCustomers(ctx, store, []BulkCustomerItem{
		{Name: "Alice", Email: "alice@example.com", Phone: "+1234567890"},
		{Name: "Dup", Email: "Taken@Example.com"},
		{Name: "Bob", Email: "bob@example.com"},
	})
	require.NoError(t, err)
	require.Len(t, result.Created, 2)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "alice@example.com", result.Created[0].Email)
	assert.Equal(t, "bob@example.com", result.Created[1].Email)
	assert.Contains(t, result.Errors[0], "item 2")
	assert.Contains(t, result.Errors[0], "already exists")

	customers, err := ListCustomers(ctx, store, []string{"email"})
	require.NoError(t, err)
	emails := make([]string, 0, len(customers))
	for _, c := range customers {
		emails = append(emails, c.Email)
	}
	assert.Equal(t, []string{"alice@example.com", "bob@example.com", "taken@example.com"}, emails)
}

func TestBulkCreateCustomersRejections(t *testing.T) {
	store := setupStore(t)

	result, err := BulkCreateCustomers(context.Background(), store, []BulkCustomerItem{
		{Name: "Alice", Email: "alice@example.com"},
		{Name: "Alice again", Email: "ALICE@example.com"},
		{Name: "Bad phone", Email: "bad@example.com", Phone: "12345"},
		{Email: "noname@example.com"},
		{Name: "No email"},
	})
	require.NoError(t, err)
	assert.Len(t, result.Created, 1)
	require.Len(t, result.Errors, 4)
	assert.Contains(t, result.Errors[1], "phone: invalid format")
	assert.Contains(t, result.Errors[2], "name: missing field")
	assert.Contains(t, result.Errors[3], "email: missing field")
	assert.Equal(t, int64(1), countCustomers(t, store))
}

type failingCustomers struct {
	repository.CustomerRepository
	failOn string
}

func (f failingCustomers) Create(ctx context.Context, c *domain.Customer) error {
	if c.Email == f.failOn {
		return errors.New("disk full")
	}
	return f.CustomerRepository.Create(ctx, c)
}

type failingStore struct {
	repository.Store
	failOn string
}

func (s failingStore) Customers() repository.CustomerRepository {
	return failingCustomers{CustomerRepository: s.Store.Customers(), failOn: s.failOn}
}

func (s failingStore) Atomic(ctx context.Context, fn func(tx repository.Store) error) error {
	return s.Store.Atomic(ctx, func(tx repository.Store) error {
		return fn(failingStore{Store: tx, failOn: s.failOn})
	})
}

func TestBulkCreateCustomersAbortsOnUnexpectedError(t *testing.T) {
	base := setupStore(t)
	store := failingStore{Store: base, failOn: "boom@example.com"}

	_, err := BulkCreateCustomers(context.Background(), store, []BulkCustomerItem{
		{Name: "Alice", Email: "alice@example.com"},
		{Name: "Boom", Email: "boom@example.com"},
		{Name: "Carol", Email: "carol@example.com"},
	})
	require.Error(t, err)
	assert.False(t, domain.IsRejection(err))
	assert.Contains(t, err.Error(), "disk full")
	assert.Zero(t, countCustomers(t, base))
}

func TestBulkItemFromMap(t *testing.T) {
	item := BulkItemFromMap(map[string]interface{}{"name": "Alice", "email": "a@example.com", "phone": 1234567890})
	assert.Equal(t, BulkCustomerItem{Name: "Alice", Email: "a@example.com", Phone: "1234567890"}, item)

	item = BulkItemFromMap(map[string]interface{}{"email": "a@example.com"})
	assert.Empty(t, item.Name)
}

func TestGenerateReport(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	report, err := GenerateReport(ctx, store)
	require.NoError(t, err)
	assert.Zero(t, report.CustomerCount)
	assert.Zero(t, report.OrderCount)
	assert.True(t, report.Revenue.IsZero())

	c := mustCustomer(t, store, "John", "john@example.com")
	mustCustomer(t, store, "Jane", "jane@example.com")
	phone := mustProduct(t, store, "Phone", "500.00", 5)
	cable := mustProduct(t, store, "Cable", "9.99", 5)
	_, err = CreateOrder(ctx, store, OrderInput{CustomerID: c.ID, ProductIDs: []int64{phone.ID, cable.ID}})
	require.NoError(t, err)
	_, err = CreateOrder(ctx, store, OrderInput{CustomerID: c.ID, ProductIDs: []int64{cable.ID}})
	require.NoError(t, err)

	report, err = GenerateReport(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, int64(2), report.CustomerCount)
	assert.Equal(t, int64(2), report.OrderCount)
	assert.Equal(t, "519.98", report.Revenue.StringFixed(2))
}

func TestComputeOrderTotal(t *testing.T) {
	total := ComputeOrderTotal([]domain.Product{
		{Price: decimal.RequireFromString("500")},
		{Price: decimal.RequireFromString("300")},
	})
	assert.True(t, total.Equal(decimal.NewFromInt(800)))
	assert.True(t, ComputeOrderTotal(nil).IsZero())
}

func TestRestockLowStock(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	mustProduct(t, store, "Phone", "500", 5)
	mustProduct(t, store, "Tablet", "300", 12)

	restocked, err := RestockLowStock(ctx, store, 10, 10)
	require.NoError(t, err)
	require.Len(t, restocked, 1)
	assert.Equal(t, "Phone", restocked[0].Name)
	assert.Equal(t, 15, restocked[0].Stock)

	restocked, err = RestockLowStock(ctx, store, 10, 10)
	require.NoError(t, err)
	assert.Empty(t, restocked)

	products, err := ListProducts(ctx, store, []string{"name"})
	require.NoError(t, err)
	assert.Equal(t, 15, products[0].Stock)
	assert.Equal(t, 12, products[1].Stock)
}

func TestOrderReminders(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	c := mustCustomer(t, store, "John", "john@example.com")
	p := mustProduct(t, store, "Phone", "500", 5)
	old := time.Now().AddDate(0, 0, -10)
	_, err := CreateOrder(ctx, store, OrderInput{CustomerID: c.ID, ProductIDs: []int64{p.ID}, OrderDate: &old})
	require.NoError(t, err)
	recent, err := CreateOrder(ctx, store, OrderInput{CustomerID: c.ID, ProductIDs: []int64{p.ID}})
	require.NoError(t, err)

	reminders, err := OrderReminders(ctx, store, 7*24*time.Hour)
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.Equal(t, Reminder{OrderID: recent.ID, Email: "john@example.com"}, reminders[0])
}
