package crm

import (
	"context"
	"fmt"

	"github.com/spf13/cast"
	"github.com/talkincode/toughcrm/internal/domain"
	"github.com/talkincode/toughcrm/internal/repository"
	"github.com/talkincode/toughcrm/internal/validate"
	"go.uber.org/zap"
)

// BulkCustomerItem is one candidate of a bulk creation
type BulkCustomerItem struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required"`
	Phone string `json:"phone"`
}

// BulkItemFromMap reads a loosely typed JSON object into an item. Numbers are
// accepted for the phone.
func BulkItemFromMap(m map[string]interface{}) BulkCustomerItem {
	return BulkCustomerItem{
		Name:  cast.ToString(m["name"]),
		Email: cast.ToString(m["email"]),
		Phone: cast.ToString(m["phone"]),
	}
}

// BulkResult lists the created customers in input order and one message per
// rejected item
type BulkResult struct {
	Created []domain.Customer `json:"customers"`
	Errors  []string          `json:"errors"`
}

// BulkCreateCustomers creates each valid item and records a message for each
// rejected one. The batch runs in one transaction with a savepoint per item:
// a rejected item only undoes itself, while an unexpected store failure
// rolls back the whole batch and is returned.
func BulkCreateCustomers(ctx context.Context, store repository.Store, items []BulkCustomerItem) (*BulkResult, error) {
	var result *BulkResult
	err := store.Atomic(ctx, func(tx repository.Store) error {
		result = &BulkResult{Created: []domain.Customer{}, Errors: []string{}}
		for i, item := range items {
			customer, err := createBulkItem(ctx, tx, item)
			if domain.IsRejection(err) {
				result.Errors = append(result.Errors, bulkMessage(i, item, err))
				continue
			}
			if err != nil {
				return fmt.Errorf("bulk item %d: %w", i+1, err)
			}
			result.Created = append(result.Created, *customer)
		}
		return nil
	})
	if err != nil {
		zap.L().Error("bulk customer creation aborted", zap.Int("items", len(items)), zap.Error(err))
		return nil, err
	}

	zap.L().Info("bulk customer creation finished",
		zap.Int("items", len(items)),
		zap.Int("created", len(result.Created)),
		zap.Int("rejected", len(result.Errors)))
	return result, nil
}

func createBulkItem(ctx context.Context, tx repository.Store, item BulkCustomerItem) (*domain.Customer, error) {
	if err := validate.Struct(item); err != nil {
		return nil, err
	}
	var customer *domain.Customer
	err := tx.Atomic(ctx, func(sp repository.Store) error {
		var err error
		customer, err = createCustomer(ctx, sp, CustomerInput(item))
		return err
	})
	return customer, err
}

func bulkMessage(i int, item BulkCustomerItem, err error) string {
	if item.Email == "" {
		return fmt.Sprintf("item %d: %s", i+1, err)
	}
	return fmt.Sprintf("item %d (%s): %s", i+1, item.Email, err)
}
