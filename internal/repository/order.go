package repository

import (
	"context"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/talkincode/toughcrm/internal/domain"
	"github.com/talkincode/toughcrm/pkg/common"
	"gorm.io/gorm"
)

// GormOrderRepository is the GORM implementation of OrderRepository
type GormOrderRepository struct {
	db *gorm.DB
}

func (r *GormOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	if order.ID == 0 {
		order.ID = common.UUIDint64()
	}
	// Products.* keeps GORM from upserting the product rows while still
	// writing the join table entries.
	err := r.db.WithContext(ctx).
		Omit("Customer", "Products.*").
		Create(order).Error
	return pkgerrors.Wrap(err, "create order")
}

func (r *GormOrderRepository) List(ctx context.Context, opts ListOptions) ([]domain.Order, error) {
	var orders []domain.Order
	err := applyOrder(r.db.WithContext(ctx), opts).
		Preload("Customer").
		Preload("Products", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Find(&orders).Error
	return orders, pkgerrors.Wrap(err, "list orders")
}

func (r *GormOrderRepository) PlacedSince(ctx context.Context, since time.Time) ([]domain.Order, error) {
	var orders []domain.Order
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Where("order_date >= ?", since).
		Order("order_date ASC, id ASC").
		Find(&orders).Error
	return orders, pkgerrors.Wrap(err, "query recent orders")
}

func (r *GormOrderRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Order{}).Count(&count).Error
	return count, pkgerrors.Wrap(err, "count orders")
}

func (r *GormOrderRepository) Totals(ctx context.Context) ([]decimal.Decimal, error) {
	var totals []decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&domain.Order{}).
		Pluck("total_amount", &totals).Error
	return totals, pkgerrors.Wrap(err, "query order totals")
}
