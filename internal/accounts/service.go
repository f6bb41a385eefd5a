package accounts

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/CodeX93/freshbox-backend/internal/checkout"
	"github.com/CodeX93/freshbox-backend/pkg/config"
	"github.com/CodeX93/freshbox-backend/pkg/db/models"
	"github.com/CodeX93/freshbox-backend/pkg/logger"
	"github.com/CodeX93/freshbox-backend/pkg/security"
)

const uniqueViolationCode = "23505"

// Service creates customer accounts for contacts that opted in at checkout.
// Account creation is best-effort: a failure here must never block or fail
// the order itself.
type Service struct {
	db     *gorm.DB
	cfg    config.PasswordConfig
	logger *logger.Logger
}

// NewService wires the accounts service.
func NewService(db *gorm.DB, cfg config.PasswordConfig, logg *logger.Logger) *Service {
	return &Service{db: db, cfg: cfg, logger: logg}
}

// CreateIfRequested provisions a user when the contact opted in. Existing
// emails are left untouched. Errors are returned for observability but the
// caller is expected to log and continue.
func (s *Service) CreateIfRequested(ctx context.Context, contact checkout.ContactRecord) error {
	if !contact.CreateAccount {
		return nil
	}

	email := strings.ToLower(strings.TrimSpace(contact.Email))
	hash, err := security.HashPassword(contact.Password, s.cfg)
	if err != nil {
		return err
	}

	user := &models.User{
		ID:               uuid.New(),
		Email:            email,
		FirstName:        contact.FirstName,
		LastName:         contact.LastName,
		Phone:            contact.Phone,
		PasswordHash:     hash,
		MarketingConsent: contact.MarketingConsent,
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicateEmail(err) {
			s.logger.Info(ctx, "account already exists for email, skipping creation")
			return nil
		}
		return err
	}

	s.logger.Info(ctx, "customer account created")
	return nil
}

func isDuplicateEmail(err error) bool {
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
