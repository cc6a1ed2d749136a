package adminapi

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"github.com/talkincode/toughcrm/internal/crm"
	"github.com/talkincode/toughcrm/internal/domain"
	"github.com/talkincode/toughcrm/internal/repository"
)

// Handler executes one named operation against store. payload is the raw
// JSON request body and may be empty.
type Handler func(ctx context.Context, store repository.Store, payload json.RawMessage) (interface{}, error)

// Registry maps operation names to their handlers
type Registry map[string]Handler

// Names returns the registered operation names in sorted order
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegistryOptions carries the configurable inputs of the registered operations
type RegistryOptions struct {
	RestockThreshold int
	RestockIncrement int
}

// NewRegistry builds the operation table. It is built once at startup and
// handed to the HTTP server.
func NewRegistry(opts RegistryOptions) Registry {
	return Registry{
		"createCustomer":         createCustomer,
		"bulkCreateCustomers":    bulkCreateCustomers,
		"createProduct":          createProduct,
		"createOrder":            createOrder,
		"listCustomers":          listCustomers,
		"listProducts":           listProducts,
		"listOrders":             listOrders,
		"generateReport":         generateReport,
		"updateLowStockProducts": updateLowStockProducts(opts.RestockThreshold, opts.RestockIncrement),
	}
}

// decode keeps numbers as json.Number so 64-bit ids survive untyped fields
func decode(payload json.RawMessage, v interface{}) error {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return domain.NewValidationError("body", "invalid JSON: "+err.Error())
	}
	return nil
}

type customerPayload struct {
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Phone interface{} `json:"phone"`
}

func createCustomer(ctx context.Context, store repository.Store, payload json.RawMessage) (interface{}, error) {
	var p customerPayload
	if err := decode(payload, &p); err != nil {
		return nil, err
	}
	customer, err := crm.CreateCustomer(ctx, store, crm.CustomerInput{
		Name:  p.Name,
		Email: p.Email,
		Phone: cast.ToString(p.Phone),
	})
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"customer": customer,
		"message":  "Customer created successfully",
	}, nil
}

type bulkPayload struct {
	Input []map[string]interface{} `json:"input"`
}

func bulkCreateCustomers(ctx context.Context, store repository.Store, payload json.RawMessage) (interface{}, error) {
	var p bulkPayload
	if err := decode(payload, &p); err != nil {
		return nil, err
	}
	items := make([]crm.BulkCustomerItem, 0, len(p.Input))
	for _, m := range p.Input {
		items = append(items, crm.BulkItemFromMap(m))
	}
	return crm.BulkCreateCustomers(ctx, store, items)
}

type productPayload struct {
	Name  string           `json:"name"`
	Price *decimal.Decimal `json:"price"`
	Stock interface{}      `json:"stock"`
}

func createProduct(ctx context.Context, store repository.Store, payload json.RawMessage) (interface{}, error) {
	var p productPayload
	if err := decode(payload, &p); err != nil {
		return nil, err
	}
	if p.Price == nil {
		return nil, domain.NewValidationError("price", "required")
	}
	stock, err := cast.ToIntE(p.Stock)
	if p.Stock != nil && err != nil {
		return nil, domain.NewValidationError("stock", "must be an integer")
	}
	product, err := crm.CreateProduct(ctx, store, crm.ProductInput{
		Name:  p.Name,
		Price: *p.Price,
		Stock: stock,
	})
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"product": product}, nil
}

type orderPayload struct {
	CustomerID interface{}   `json:"customer_id"`
	ProductIDs []interface{} `json:"product_ids"`
	OrderDate  interface{}   `json:"order_date"`
}

func createOrder(ctx context.Context, store repository.Store, payload json.RawMessage) (interface{}, error) {
	var p orderPayload
	if err := decode(payload, &p); err != nil {
		return nil, err
	}
	if p.CustomerID == nil {
		return nil, domain.NewValidationError("customer_id", "required")
	}
	customerID, err := cast.ToInt64E(p.CustomerID)
	if err != nil {
		return nil, domain.NewValidationError("customer_id", "invalid id")
	}
	productIDs := make([]int64, 0, len(p.ProductIDs))
	for _, raw := range p.ProductIDs {
		id, err := cast.ToInt64E(raw)
		if err != nil {
			return nil, domain.NewValidationError("product_ids", "invalid id")
		}
		productIDs = append(productIDs, id)
	}
	in := crm.OrderInput{CustomerID: customerID, ProductIDs: productIDs}
	if p.OrderDate != nil && p.OrderDate != "" {
		date, err := cast.ToTimeInDefaultLocationE(p.OrderDate, time.Local)
		if err != nil {
			return nil, domain.NewValidationError("order_date", "invalid datetime")
		}
		in.OrderDate = &date
	}
	order, err := crm.CreateOrder(ctx, store, in)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"order": order}, nil
}

type listPayload struct {
	OrderBy []string `json:"order_by"`
}

func listCustomers(ctx context.Context, store repository.Store, payload json.RawMessage) (interface{}, error) {
	var p listPayload
	if err := decode(payload, &p); err != nil {
		return nil, err
	}
	return crm.ListCustomers(ctx, store, p.OrderBy)
}

func listProducts(ctx context.Context, store repository.Store, payload json.RawMessage) (interface{}, error) {
	var p listPayload
	if err := decode(payload, &p); err != nil {
		return nil, err
	}
	return crm.ListProducts(ctx, store, p.OrderBy)
}

func listOrders(ctx context.Context, store repository.Store, payload json.RawMessage) (interface{}, error) {
	var p listPayload
	if err := decode(payload, &p); err != nil {
		return nil, err
	}
	return crm.ListOrders(ctx, store, p.OrderBy)
}

func generateReport(ctx context.Context, store repository.Store, _ json.RawMessage) (interface{}, error) {
	return crm.GenerateReport(ctx, store)
}

func updateLowStockProducts(threshold, increment int) Handler {
	return func(ctx context.Context, store repository.Store, _ json.RawMessage) (interface{}, error) {
		products, err := crm.RestockLowStock(ctx, store, threshold, increment)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"success":  "Low stock products updated successfully!",
			"products": products,
		}, nil
	}
}
