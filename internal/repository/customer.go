package repository

import (
	"context"
	"errors"

	pkgerrors "github.com/pkg/errors"
	"github.com/talkincode/toughcrm/internal/domain"
	"github.com/talkincode/toughcrm/pkg/common"
	"gorm.io/gorm"
)

// GormCustomerRepository is the GORM implementation of CustomerRepository
type GormCustomerRepository struct {
	db *gorm.DB
}

func (r *GormCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	if customer.ID == 0 {
		customer.ID = common.UUIDint64()
	}
	err := r.db.WithContext(ctx).Create(customer).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.NewConflictError("email", "already exists")
	}
	return pkgerrors.Wrap(err, "create customer")
}

func (r *GormCustomerRepository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	var customer domain.Customer
	err := r.db.WithContext(ctx).First(&customer, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NewNotFoundError("customer", id)
	}
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "get customer %d", id)
	}
	return &customer, nil
}

func (r *GormCustomerRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Customer{}).
		Where("email = ?", email).
		Count(&count).Error
	if err != nil {
		return false, pkgerrors.Wrap(err, "check customer email")
	}
	return count > 0, nil
}

func (r *GormCustomerRepository) List(ctx context.Context, opts ListOptions) ([]domain.Customer, error) {
	var customers []domain.Customer
	err := applyOrder(r.db.WithContext(ctx), opts).Find(&customers).Error
	return customers, pkgerrors.Wrap(err, "list customers")
}

func (r *GormCustomerRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Customer{}).Count(&count).Error
	return count, pkgerrors.Wrap(err, "count customers")
}
