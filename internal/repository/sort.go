package repository

import (
	"fmt"
	"strings"

	"github.com/talkincode/toughcrm/internal/domain"
	"gorm.io/gorm"
)

// Sort keys accepted by the list operations, mapped to their column.
var (
	CustomerSortFields = map[string]string{
		"id":         "id",
		"name":       "name",
		"email":      "email",
		"created_at": "created_at",
	}
	ProductSortFields = map[string]string{
		"id":         "id",
		"name":       "name",
		"price":      "price",
		"stock":      "stock",
		"created_at": "created_at",
	}
	OrderSortFields = map[string]string{
		"id":           "id",
		"customer_id":  "customer_id",
		"total_amount": "total_amount",
		"order_date":   "order_date",
		"created_at":   "created_at",
	}
)

// ParseOrderBy converts keys such as "name" or "-price" into ORDER BY
// clauses, rejecting keys missing from the whitelist. Camel case keys
// ("totalAmount") are accepted as well.
func ParseOrderBy(keys []string, allowed map[string]string) (ListOptions, error) {
	var opts ListOptions
	for _, key := range keys {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		dir := "ASC"
		if strings.HasPrefix(key, "-") {
			dir = "DESC"
			key = key[1:]
		}
		col, ok := allowed[toSnake(key)]
		if !ok {
			return ListOptions{}, domain.NewValidationError("order_by", fmt.Sprintf("unsupported sort key %q", key))
		}
		opts.OrderBy = append(opts.OrderBy, col+" "+dir)
	}
	return opts, nil
}

func applyOrder(db *gorm.DB, opts ListOptions) *gorm.DB {
	for _, clause := range opts.OrderBy {
		db = db.Order(clause)
	}
	return db.Order("id ASC")
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
