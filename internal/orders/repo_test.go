package orders

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/CodeX93/freshbox-backend/internal/cart"
	"github.com/CodeX93/freshbox-backend/internal/checkout"
	"github.com/CodeX93/freshbox-backend/internal/schedule"
	"github.com/CodeX93/freshbox-backend/pkg/enums"
	pkgerrors "github.com/CodeX93/freshbox-backend/pkg/errors"
	"github.com/CodeX93/freshbox-backend/pkg/logger"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  session_token TEXT NOT NULL UNIQUE,
  status TEXT NOT NULL DEFAULT 'confirmed',
  address_type TEXT NOT NULL,
  postcode TEXT NOT NULL,
  address_line1 TEXT NOT NULL,
  address_line2 TEXT,
  city TEXT NOT NULL,
  address_notes TEXT,
  collection_date TEXT NOT NULL,
  collection_time_slot_id INTEGER NOT NULL,
  delivery_date TEXT NOT NULL,
  delivery_time_slot_id INTEGER NOT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  email TEXT NOT NULL,
  phone TEXT NOT NULL,
  marketing_consent INTEGER NOT NULL DEFAULT 0,
  payment_method TEXT NOT NULL,
  total NUMERIC NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderLineItems := `
CREATE TABLE IF NOT EXISTS order_line_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  service_id TEXT NOT NULL,
  name TEXT NOT NULL,
  selected_option TEXT NOT NULL,
  base_price NUMERIC NOT NULL,
  option_price NUMERIC NOT NULL,
  quantity INTEGER NOT NULL,
  total_price NUMERIC NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderLineItems).Error)
	return db
}

func testPersistedSession(token string) checkout.PersistedSession {
	draft := checkout.OrderDraft{
		Lines: []cart.Line{{
			ID: "l1", ServiceID: "ironing", Name: "Ironing",
			BasePrice: decimal.NewFromFloat(1.50), Quantity: 3,
		}},
		Address: checkout.AddressRecord{
			AddressType:  enums.AddressTypeHome,
			Postcode:     "SW1A 1AA",
			AddressLine1: "1 Test Street",
			AddressLine2: "Flat 2",
			City:         "London",
		},
		Schedule: schedule.Selection{
			CollectionDate:       "2026-03-11",
			CollectionTimeSlotID: 1,
			DeliveryDate:         "2026-03-12",
			DeliveryTimeSlotID:   2,
		},
		Contact: checkout.ContactRecord{
			FirstName: "Ada", LastName: "Lovelace",
			Email: "ada@example.com", Phone: "07000000000",
		},
		Payment: checkout.PaymentRecord{Method: enums.PaymentMethodPaypal},
	}
	return checkout.PersistedSession{
		Token: token,
		Draft: draft,
		Total: cart.ComputeTotal(draft.Lines),
	}
}

func newTestOrdersService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := setupOrdersTestDB(t)
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	return NewService(db, NewRepository(db), logg), db
}

func TestCreateFromDraft(t *testing.T) {
	svc, _ := newTestOrdersService(t)

	order, created, err := svc.CreateFromDraft(context.Background(), testPersistedSession("tok-1"))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "tok-1", order.SessionToken)
	assert.Equal(t, enums.OrderStatusConfirmed, order.Status)
	assert.True(t, order.Total.Equal(decimal.NewFromFloat(4.50)))

	loaded, err := svc.GetOrder(context.Background(), order.ID.String())
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, "ironing", loaded.Items[0].ServiceID)
	assert.True(t, loaded.Items[0].TotalPrice.Equal(decimal.NewFromFloat(4.50)))
	require.NotNil(t, loaded.AddressLine2)
	assert.Equal(t, "Flat 2", *loaded.AddressLine2)
}

func TestCreateFromDraftSameTokenReturnsExistingOrder(t *testing.T) {
	svc, _ := newTestOrdersService(t)

	first, created, err := svc.CreateFromDraft(context.Background(), testPersistedSession("tok-dup"))
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := svc.CreateFromDraft(context.Background(), testPersistedSession("tok-dup"))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, svc.db.Table("orders").Where("session_token = ?", "tok-dup").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGetOrderNotFound(t *testing.T) {
	svc, _ := newTestOrdersService(t)

	_, err := svc.GetOrder(context.Background(), uuid.NewString())
	pkgErr := pkgerrors.As(err)
	require.NotNil(t, pkgErr)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgErr.Code())
}

func TestGetOrderRejectsMalformedID(t *testing.T) {
	svc, _ := newTestOrdersService(t)

	_, err := svc.GetOrder(context.Background(), "not-a-uuid")
	pkgErr := pkgerrors.As(err)
	require.NotNil(t, pkgErr)
	assert.Equal(t, pkgerrors.CodeValidation, pkgErr.Code())
}

func TestFindBySessionToken(t *testing.T) {
	svc, _ := newTestOrdersService(t)

	order, _, err := svc.CreateFromDraft(context.Background(), testPersistedSession("tok-find"))
	require.NoError(t, err)

	found, err := svc.FindBySessionToken(context.Background(), "tok-find")
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)

	_, err = svc.FindBySessionToken(context.Background(), "tok-absent")
	pkgErr := pkgerrors.As(err)
	require.NotNil(t, pkgErr)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgErr.Code())
}
