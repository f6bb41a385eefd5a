package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLineItem snapshots one cart line at the moment the order converted.
type OrderLineItem struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	ServiceID      string          `gorm:"column:service_id;not null"`
	Name           string          `gorm:"column:name;not null"`
	SelectedOption string          `gorm:"column:selected_option;not null"`
	BasePrice      decimal.Decimal `gorm:"column:base_price;type:numeric(10,2);not null"`
	OptionPrice    decimal.Decimal `gorm:"column:option_price;type:numeric(10,2);not null"`
	Quantity       int             `gorm:"column:quantity;not null"`
	TotalPrice     decimal.Decimal `gorm:"column:total_price;type:numeric(10,2);not null"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
