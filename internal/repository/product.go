package repository

import (
	"context"

	pkgerrors "github.com/pkg/errors"
	"github.com/talkincode/toughcrm/internal/domain"
	"github.com/talkincode/toughcrm/pkg/common"
	"gorm.io/gorm"
)

// GormProductRepository is the GORM implementation of ProductRepository
type GormProductRepository struct {
	db *gorm.DB
}

func (r *GormProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if product.ID == 0 {
		product.ID = common.UUIDint64()
	}
	return pkgerrors.Wrap(r.db.WithContext(ctx).Create(product).Error, "create product")
}

func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	var products []domain.Product
	if len(ids) == 0 {
		return products, nil
	}
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&products).Error
	return products, pkgerrors.Wrap(err, "find products")
}

func (r *GormProductRepository) List(ctx context.Context, opts ListOptions) ([]domain.Product, error) {
	var products []domain.Product
	err := applyOrder(r.db.WithContext(ctx), opts).Find(&products).Error
	return products, pkgerrors.Wrap(err, "list products")
}

func (r *GormProductRepository) LowStock(ctx context.Context, threshold int) ([]domain.Product, error) {
	var products []domain.Product
	err := r.db.WithContext(ctx).
		Where("stock < ?", threshold).
		Order("id ASC").
		Find(&products).Error
	return products, pkgerrors.Wrap(err, "query low stock products")
}

func (r *GormProductRepository) IncrementStockBelow(ctx context.Context, id int64, threshold, increment int) (int, bool, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ? AND stock < ?", id, threshold).
		Update("stock", gorm.Expr("stock + ?", increment))
	if result.Error != nil {
		return 0, false, pkgerrors.Wrapf(result.Error, "restock product %d", id)
	}

	var product domain.Product
	if err := r.db.WithContext(ctx).Select("stock").First(&product, id).Error; err != nil {
		return 0, false, pkgerrors.Wrapf(err, "reload product %d", id)
	}
	return product.Stock, result.RowsAffected > 0, nil
}
