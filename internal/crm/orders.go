package crm

import (
	"context"
	"time"

	"github.com/talkincode/toughcrm/internal/domain"
	"github.com/talkincode/toughcrm/internal/repository"
	"github.com/talkincode/toughcrm/internal/validate"
	"go.uber.org/zap"
)

// OrderInput is the request to place an order. OrderDate defaults to now.
type OrderInput struct {
	CustomerID int64      `json:"customer_id,string"`
	ProductIDs []int64    `json:"product_ids"`
	OrderDate  *time.Time `json:"order_date"`
}

// CreateOrder places an order for an existing customer and product set. The
// lookups, the total and the insert share one transaction, and the order row
// is written with its final total together with its product links.
func CreateOrder(ctx context.Context, store repository.Store, in OrderInput) (*domain.Order, error) {
	var order *domain.Order
	err := store.Atomic(ctx, func(tx repository.Store) error {
		customer, err := tx.Customers().GetByID(ctx, in.CustomerID)
		if err != nil {
			return err
		}

		products, err := tx.Products().FindByIDs(ctx, in.ProductIDs)
		if err != nil {
			return err
		}
		if err := validate.ProductIDSet(in.ProductIDs, len(products)); err != nil {
			return err
		}

		orderDate := time.Now()
		if in.OrderDate != nil && !in.OrderDate.IsZero() {
			orderDate = *in.OrderDate
		}

		order = &domain.Order{
			CustomerID:  customer.ID,
			Products:    products,
			TotalAmount: ComputeOrderTotal(products),
			OrderDate:   orderDate,
		}
		if err := tx.Orders().Create(ctx, order); err != nil {
			return err
		}
		order.Customer = customer
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("order created",
		zap.Int64("order_id", order.ID),
		zap.Int64("customer_id", order.CustomerID),
		zap.Int("products", len(order.Products)),
		zap.String("total_amount", order.TotalAmount.StringFixed(2)))
	return order, nil
}

// ListOrders returns all orders with customer and products loaded
func ListOrders(ctx context.Context, store repository.Store, orderBy []string) ([]domain.Order, error) {
	opts, err := repository.ParseOrderBy(orderBy, repository.OrderSortFields)
	if err != nil {
		return nil, err
	}
	return store.Orders().List(ctx, opts)
}

// Reminder is a recent order whose customer should be reminded
type Reminder struct {
	OrderID int64  `json:"order_id,string"`
	Email   string `json:"email"`
}

// OrderReminders lists the orders placed within the last window. It never
// writes to the store.
func OrderReminders(ctx context.Context, store repository.Store, window time.Duration) ([]Reminder, error) {
	orders, err := store.Orders().PlacedSince(ctx, time.Now().Add(-window))
	if err != nil {
		return nil, err
	}
	reminders := make([]Reminder, 0, len(orders))
	for _, o := range orders {
		r := Reminder{OrderID: o.ID}
		if o.Customer != nil {
			r.Email = o.Customer.Email
		}
		reminders = append(reminders, r)
	}
	return reminders, nil
}
