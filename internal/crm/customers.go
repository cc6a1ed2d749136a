// Package crm implements the customer, product and order operations. Every
// operation is a plain function taking the store it works on.
package crm

import (
	"context"

	"github.com/talkincode/toughcrm/internal/domain"
	"github.com/talkincode/toughcrm/internal/repository"
	"github.com/talkincode/toughcrm/internal/validate"
	"go.uber.org/zap"
)

// CustomerInput is the request to create a single customer
type CustomerInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// CreateCustomer validates in and persists a new customer. The first failing
// check aborts the operation and nothing is written.
func CreateCustomer(ctx context.Context, store repository.Store, in CustomerInput) (*domain.Customer, error) {
	var customer *domain.Customer
	err := store.Atomic(ctx, func(tx repository.Store) error {
		var err error
		customer, err = createCustomer(ctx, tx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	zap.L().Info("customer created",
		zap.Int64("customer_id", customer.ID),
		zap.String("email", customer.Email))
	return customer, nil
}

func createCustomer(ctx context.Context, tx repository.Store, in CustomerInput) (*domain.Customer, error) {
	name, err := validate.Name("name", in.Name)
	if err != nil {
		return nil, err
	}
	email, err := validate.Email(in.Email)
	if err != nil {
		return nil, err
	}
	taken, err := tx.Customers().EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if _, err := validate.EmailAvailable(email, taken); err != nil {
		return nil, err
	}
	phone, err := validate.Phone(in.Phone)
	if err != nil {
		return nil, err
	}

	customer := &domain.Customer{Name: name, Email: email, Phone: phone}
	if err := tx.Customers().Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// ListCustomers returns all customers ordered by the given sort keys
func ListCustomers(ctx context.Context, store repository.Store, orderBy []string) ([]domain.Customer, error) {
	opts, err := repository.ParseOrderBy(orderBy, repository.CustomerSortFields)
	if err != nil {
		return nil, err
	}
	return store.Customers().List(ctx, opts)
}
