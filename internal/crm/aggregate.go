package crm

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/talkincode/toughcrm/internal/domain"
	"github.com/talkincode/toughcrm/internal/repository"
)

// ComputeOrderTotal sums the current prices of products
func ComputeOrderTotal(products []domain.Product) decimal.Decimal {
	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.Price)
	}
	return total
}

// Report is the cross entity summary
type Report struct {
	CustomerCount int64           `json:"customer_count"`
	OrderCount    int64           `json:"order_count"`
	Revenue       decimal.Decimal `json:"revenue"`
}

// GenerateReport counts customers and orders and sums every order total. The
// reads share a transaction so the numbers describe one snapshot.
func GenerateReport(ctx context.Context, store repository.Store) (*Report, error) {
	report := &Report{Revenue: decimal.Zero}
	err := store.Atomic(ctx, func(tx repository.Store) error {
		var err error
		if report.CustomerCount, err = tx.Customers().Count(ctx); err != nil {
			return err
		}
		if report.OrderCount, err = tx.Orders().Count(ctx); err != nil {
			return err
		}
		totals, err := tx.Orders().Totals(ctx)
		if err != nil {
			return err
		}
		for _, t := range totals {
			report.Revenue = report.Revenue.Add(t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}
