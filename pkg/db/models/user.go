package models

import (
	"time"

	"github.com/google/uuid"
)

// User is created only when a customer opts into an account at checkout.
type User struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email            string    `gorm:"column:email;not null;uniqueIndex"`
	FirstName        string    `gorm:"column:first_name;not null"`
	LastName         string    `gorm:"column:last_name;not null"`
	Phone            string    `gorm:"column:phone;not null"`
	PasswordHash     string    `gorm:"column:password_hash;not null"`
	MarketingConsent bool      `gorm:"column:marketing_consent;not null;default:false"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
