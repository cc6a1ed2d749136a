package crm

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/talkincode/toughcrm/internal/domain"
	"github.com/talkincode/toughcrm/internal/repository"
	"github.com/talkincode/toughcrm/internal/validate"
	"go.uber.org/zap"
)

// ProductInput is the request to create a product. Stock defaults to 0.
type ProductInput struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

// CreateProduct validates in and persists a new product
func CreateProduct(ctx context.Context, store repository.Store, in ProductInput) (*domain.Product, error) {
	name, err := validate.Name("name", in.Name)
	if err != nil {
		return nil, err
	}
	price, err := validate.Price(in.Price)
	if err != nil {
		return nil, err
	}
	stock, err := validate.Stock(in.Stock)
	if err != nil {
		return nil, err
	}

	product := &domain.Product{Name: name, Price: price, Stock: stock}
	err = store.Atomic(ctx, func(tx repository.Store) error {
		return tx.Products().Create(ctx, product)
	})
	if err != nil {
		return nil, err
	}
	zap.L().Info("product created",
		zap.Int64("product_id", product.ID),
		zap.String("name", product.Name),
		zap.String("price", product.Price.StringFixed(2)))
	return product, nil
}

// ListProducts returns all products ordered by the given sort keys
func ListProducts(ctx context.Context, store repository.Store, orderBy []string) ([]domain.Product, error) {
	opts, err := repository.ParseOrderBy(orderBy, repository.ProductSortFields)
	if err != nil {
		return nil, err
	}
	return store.Products().List(ctx, opts)
}

// Restocked is one product bumped by RestockLowStock
type Restocked struct {
	ID    int64  `json:"id,string"`
	Name  string `json:"name"`
	Stock int    `json:"stock"`
}

// RestockLowStock adds increment to every product whose stock is below
// threshold. Each row is bumped with a conditional update, so a product that
// a concurrent run already lifted over the threshold is left alone.
func RestockLowStock(ctx context.Context, store repository.Store, threshold, increment int) ([]Restocked, error) {
	low, err := store.Products().LowStock(ctx, threshold)
	if err != nil {
		return nil, err
	}

	restocked := make([]Restocked, 0, len(low))
	for _, p := range low {
		var (
			stock   int
			changed bool
		)
		err := store.Atomic(ctx, func(tx repository.Store) error {
			var err error
			stock, changed, err = tx.Products().IncrementStockBelow(ctx, p.ID, threshold, increment)
			return err
		})
		if err != nil {
			return restocked, err
		}
		if !changed {
			zap.L().Debug("product already restocked", zap.Int64("product_id", p.ID))
			continue
		}
		restocked = append(restocked, Restocked{ID: p.ID, Name: p.Name, Stock: stock})
	}
	return restocked, nil
}
