package checkout

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/CodeX93/freshbox-backend/internal/cart"
	"github.com/CodeX93/freshbox-backend/internal/schedule"
	"github.com/CodeX93/freshbox-backend/pkg/enums"
)

// AddressRecord is the collection/delivery address for a draft order.
// Coverage status is derived at validation time, never stored.
type AddressRecord struct {
	AddressType  enums.AddressType `json:"address_type" validate:"required,oneof=home office"`
	Postcode     string            `json:"postcode" validate:"required"`
	AddressLine1 string            `json:"address_line1" validate:"required"`
	AddressLine2 string            `json:"address_line2,omitempty"`
	City         string            `json:"city" validate:"required"`
	Notes        string            `json:"notes,omitempty"`
}

// ContactRecord holds the customer details. Password is required only when
// the customer opts into account creation.
type ContactRecord struct {
	FirstName        string `json:"first_name" validate:"required"`
	LastName         string `json:"last_name" validate:"required"`
	Email            string `json:"email" validate:"required,email"`
	Phone            string `json:"phone" validate:"required"`
	CreateAccount    bool   `json:"create_account"`
	Password         string `json:"password,omitempty"`
	MarketingConsent bool   `json:"marketing_consent"`
}

// PaymentRecord captures the chosen payment method. Card fields are
// required only for the card method and never leave the checkout session.
type PaymentRecord struct {
	Method     enums.PaymentMethod `json:"method" validate:"required,oneof=card paypal"`
	CardNumber string              `json:"card_number,omitempty"`
	ExpiryDate string              `json:"expiry_date,omitempty"`
	CVV        string              `json:"cvv,omitempty"`
	NameOnCard string              `json:"name_on_card,omitempty"`
	SaveCard   bool                `json:"save_card"`
}

// Sanitized returns a copy with the card fields cleared. Card data is
// consumed by step validation and the hosted payment page only; it is never
// written to durable storage.
func (p PaymentRecord) Sanitized() PaymentRecord {
	p.CardNumber = ""
	p.ExpiryDate = ""
	p.CVV = ""
	return p
}

// OrderDraft aggregates everything assembled across the checkout steps.
// It is the unit frozen into durable storage before the payment redirect.
type OrderDraft struct {
	Lines    []cart.Line        `json:"lines"`
	Address  AddressRecord      `json:"address"`
	Schedule schedule.Selection `json:"schedule"`
	Contact  ContactRecord      `json:"contact"`
	Payment  PaymentRecord      `json:"payment"`
}

// Total recomputes the cart total from the current lines.
func (d *OrderDraft) Total() decimal.Decimal {
	return cart.ComputeTotal(d.Lines)
}

// PersistedSession is the serialized form written to durable storage before
// the redirect and read exactly once on return.
type PersistedSession struct {
	Token   string          `json:"token"`
	Draft   OrderDraft      `json:"draft"`
	Total   decimal.Decimal `json:"total"`
	SavedAt time.Time       `json:"saved_at"`
}

// SessionState is the in-progress checkout for a token, stored in Redis
// while the user walks through the steps.
type SessionState struct {
	Token      string             `json:"token"`
	ActiveStep enums.CheckoutStep `json:"active_step"`
	Draft      OrderDraft         `json:"draft"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}
