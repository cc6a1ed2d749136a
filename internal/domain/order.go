package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order links one customer to a set of products. TotalAmount is derived from
// the product prices when the order is created and never supplied by clients.
type Order struct {
	ID          int64           `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	CustomerID  int64           `gorm:"index;not null" json:"customer_id,string"`
	Customer    *Customer       `gorm:"constraint:OnDelete:CASCADE" json:"customer,omitempty"`
	Products    []Product       `gorm:"many2many:crm_order_products" json:"products"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	OrderDate   time.Time       `gorm:"index;not null" json:"order_date"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName Specify table name
func (Order) TableName() string {
	return "crm_order"
}
