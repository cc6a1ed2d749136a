package app

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/talkincode/toughcrm/internal/crm"
	"github.com/talkincode/toughcrm/internal/domain"
	"go.uber.org/zap"
)

var (
	seedCustomers = []crm.CustomerInput{
		{Name: "John Doe", Email: "john@example.com", Phone: "+1234567890"},
		{Name: "Jane Smith", Email: "jane@example.com", Phone: "123-456-7890"},
	}
	seedProducts = []crm.ProductInput{
		{Name: "Phone", Price: decimal.RequireFromString("500.00"), Stock: 5},
		{Name: "Tablet", Price: decimal.RequireFromString("300.00"), Stock: 3},
	}
)

// SeedData creates the demo customers and products that do not exist yet.
// Customers are matched by email and products by name.
func (a *Application) SeedData() error {
	ctx := context.Background()
	for _, in := range seedCustomers {
		exists, err := a.store.Customers().EmailExists(ctx, in.Email)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		c, err := crm.CreateCustomer(ctx, a.store, in)
		if err != nil {
			return errors.Wrapf(err, "seed customer %s", in.Email)
		}
		zap.L().Info("initialized demo customer", zap.Int64("id", c.ID), zap.String("email", c.Email))
	}

	for _, in := range seedProducts {
		var count int64
		if err := a.gormDB.WithContext(ctx).Model(&domain.Product{}).Where("name = ?", in.Name).Count(&count).Error; err != nil {
			return errors.Wrap(err, "count products")
		}
		if count > 0 {
			continue
		}
		p, err := crm.CreateProduct(ctx, a.store, in)
		if err != nil {
			return errors.Wrapf(err, "seed product %s", in.Name)
		}
		zap.L().Info("initialized demo product", zap.Int64("id", p.ID), zap.String("name", p.Name))
	}
	return nil
}
