package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/CodeX93/freshbox-backend/pkg/enums"
)

// Order is the server-confirmed record created from a frozen checkout draft.
// SessionToken carries a unique index so a draft can convert at most once,
// regardless of how many times the confirmation handler runs.
type Order struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SessionToken string            `gorm:"column:session_token;not null;uniqueIndex"`
	Status       enums.OrderStatus `gorm:"column:status;type:text;not null;default:'confirmed'"`

	AddressType  enums.AddressType `gorm:"column:address_type;type:text;not null"`
	Postcode     string            `gorm:"column:postcode;not null"`
	AddressLine1 string            `gorm:"column:address_line1;not null"`
	AddressLine2 *string           `gorm:"column:address_line2"`
	City         string            `gorm:"column:city;not null"`
	AddressNotes *string           `gorm:"column:address_notes"`

	CollectionDate       string `gorm:"column:collection_date;not null"`
	CollectionTimeSlotID int    `gorm:"column:collection_time_slot_id;not null"`
	DeliveryDate         string `gorm:"column:delivery_date;not null"`
	DeliveryTimeSlotID   int    `gorm:"column:delivery_time_slot_id;not null"`

	FirstName        string `gorm:"column:first_name;not null"`
	LastName         string `gorm:"column:last_name;not null"`
	Email            string `gorm:"column:email;not null"`
	Phone            string `gorm:"column:phone;not null"`
	MarketingConsent bool   `gorm:"column:marketing_consent;not null;default:false"`

	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	Total         decimal.Decimal     `gorm:"column:total;type:numeric(10,2);not null"`

	Items []OrderLineItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
