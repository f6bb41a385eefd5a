package orders

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/CodeX93/freshbox-backend/internal/checkout"
	"github.com/CodeX93/freshbox-backend/pkg/db/models"
	"github.com/CodeX93/freshbox-backend/pkg/enums"
	pkgerrors "github.com/CodeX93/freshbox-backend/pkg/errors"
	"github.com/CodeX93/freshbox-backend/pkg/logger"
)

const uniqueViolationCode = "23505"

// Service converts frozen drafts into confirmed orders. The unique index on
// session_token makes creation idempotent at the database level: a second
// conversion attempt for the same token resolves to the already-created
// order instead of a duplicate.
type Service struct {
	db     *gorm.DB
	repo   Repository
	logger *logger.Logger
}

// NewService wires the orders service.
func NewService(db *gorm.DB, repo Repository, logg *logger.Logger) *Service {
	return &Service{db: db, repo: repo, logger: logg}
}

// CreateFromDraft persists the order and its line items in one transaction.
// The returned bool is false when the session token had already converted,
// in which case the existing order is returned.
func (s *Service) CreateFromDraft(ctx context.Context, persisted checkout.PersistedSession) (*models.Order, bool, error) {
	order := orderFromDraft(persisted)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.CreateOrder(ctx, order); err != nil {
			return err
		}
		items := lineItemsFromDraft(order.ID, persisted)
		return repo.CreateOrderLineItems(ctx, items)
	})
	if err != nil {
		if isUniqueViolation(err) {
			existing, findErr := s.repo.FindBySessionToken(ctx, persisted.Token)
			if findErr != nil {
				return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "load existing order")
			}
			ctx = s.logger.WithOrderID(ctx, existing.ID.String())
			s.logger.Warn(ctx, "session token already converted, returning existing order")
			return existing, false, nil
		}
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	ctx = s.logger.WithOrderID(ctx, order.ID.String())
	s.logger.Info(ctx, "order created")
	return order, true, nil
}

// GetOrder loads a confirmed order with its line items.
func (s *Service) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id must be a uuid")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// FindBySessionToken resolves the order a session token converted into.
func (s *Service) FindBySessionToken(ctx context.Context, token string) (*models.Order, error) {
	order, err := s.repo.FindBySessionToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no order for session token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order by session token")
	}
	return order, nil
}

func orderFromDraft(persisted checkout.PersistedSession) *models.Order {
	draft := persisted.Draft
	order := &models.Order{
		ID:           uuid.New(),
		SessionToken: persisted.Token,
		Status:       enums.OrderStatusConfirmed,

		AddressType:  draft.Address.AddressType,
		Postcode:     strings.TrimSpace(draft.Address.Postcode),
		AddressLine1: draft.Address.AddressLine1,
		City:         draft.Address.City,

		CollectionDate:       draft.Schedule.CollectionDate,
		CollectionTimeSlotID: draft.Schedule.CollectionTimeSlotID,
		DeliveryDate:         draft.Schedule.DeliveryDate,
		DeliveryTimeSlotID:   draft.Schedule.DeliveryTimeSlotID,

		FirstName:        draft.Contact.FirstName,
		LastName:         draft.Contact.LastName,
		Email:            draft.Contact.Email,
		Phone:            draft.Contact.Phone,
		MarketingConsent: draft.Contact.MarketingConsent,

		PaymentMethod: draft.Payment.Method,
		Total:         persisted.Total,
	}
	if draft.Address.AddressLine2 != "" {
		line2 := draft.Address.AddressLine2
		order.AddressLine2 = &line2
	}
	if draft.Address.Notes != "" {
		notes := draft.Address.Notes
		order.AddressNotes = &notes
	}
	return order
}

func lineItemsFromDraft(orderID uuid.UUID, persisted checkout.PersistedSession) []models.OrderLineItem {
	items := make([]models.OrderLineItem, 0, len(persisted.Draft.Lines))
	for _, line := range persisted.Draft.Lines {
		items = append(items, models.OrderLineItem{
			ID:             uuid.New(),
			OrderID:        orderID,
			ServiceID:      line.ServiceID,
			Name:           line.Name,
			SelectedOption: line.SelectedOption,
			BasePrice:      line.BasePrice,
			OptionPrice:    line.OptionPrice,
			Quantity:       line.Quantity,
			TotalPrice:     line.TotalPrice(),
		})
	}
	return items
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolationCode {
		return true
	}
	// sqlite, used in tests
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
