package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/CodeX93/freshbox-backend/internal/cart"
	"github.com/CodeX93/freshbox-backend/internal/schedule"
	"github.com/CodeX93/freshbox-backend/pkg/config"
	"github.com/CodeX93/freshbox-backend/pkg/enums"
	pkgerrors "github.com/CodeX93/freshbox-backend/pkg/errors"
	"github.com/CodeX93/freshbox-backend/pkg/logger"
	"github.com/CodeX93/freshbox-backend/pkg/square"
)

// DraftStore freezes a draft across the payment redirect.
type DraftStore interface {
	Write(ctx context.Context, token string, orderData, cartSnapshot []byte) error
}

// PaymentLinker provisions the hosted payment page.
type PaymentLinker interface {
	CreatePaymentLink(ctx context.Context, params square.PaymentLinkParams) (*square.PaymentLink, error)
}

// StateKV is the slice of the redis client used for session state and the
// per-token transition lock.
type StateKV interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	SessionStateKey(token string) string
	TransitionLockKey(token string) string
}

// AdvanceParams carries the step data submitted with a forward transition.
// Only the fields for the active step are expected; nil fields leave the
// draft untouched.
type AdvanceParams struct {
	Address  *AddressRecord      `json:"address,omitempty"`
	Lines    []cart.Line         `json:"lines,omitempty"`
	Schedule *schedule.Selection `json:"schedule,omitempty"`
	Contact  *ContactRecord      `json:"contact,omitempty"`
	Payment  *PaymentRecord      `json:"payment,omitempty"`
}

// PaymentRedirect is returned when a session hands off to the external
// payment step.
type PaymentRedirect struct {
	Token      string `json:"token"`
	PaymentURL string `json:"payment_url"`
}

// Service drives a checkout session through its steps. Every transition is
// serialized per token via a short-lived lock, so two concurrent requests
// for the same session cannot interleave.
type Service struct {
	cfg       config.CheckoutConfig
	kv        StateKV
	drafts    DraftStore
	sequencer *Sequencer
	catalog   *cart.Catalog
	payments  PaymentLinker
	logger    *logger.Logger
}

// NewService wires the checkout service.
func NewService(
	cfg config.CheckoutConfig,
	kv StateKV,
	drafts DraftStore,
	sequencer *Sequencer,
	catalog *cart.Catalog,
	payments PaymentLinker,
	logg *logger.Logger,
) *Service {
	return &Service{
		cfg:       cfg,
		kv:        kv,
		drafts:    drafts,
		sequencer: sequencer,
		catalog:   catalog,
		payments:  payments,
		logger:    logg,
	}
}

// StartSession opens a fresh checkout session at the address step.
func (s *Service) StartSession(ctx context.Context) (*SessionState, error) {
	now := time.Now().UTC()
	state := &SessionState{
		Token:      uuid.NewString(),
		ActiveStep: enums.StepAddress,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.saveState(ctx, state); err != nil {
		return nil, err
	}

	ctx = s.logger.WithSessionToken(ctx, state.Token)
	s.logger.Info(ctx, "checkout session started")
	return state, nil
}

// GetSession loads the current state for a token.
func (s *Service) GetSession(ctx context.Context, token string) (*SessionState, error) {
	return s.loadState(ctx, token)
}

// Advance merges the submitted step data into the draft, validates the
// active step, and moves the session forward.
func (s *Service) Advance(ctx context.Context, token string, params AdvanceParams) (*SessionState, error) {
	unlock, err := s.lockTransition(ctx, token)
	if err != nil {
		return nil, err
	}
	defer unlock()

	state, err := s.loadState(ctx, token)
	if err != nil {
		return nil, err
	}

	s.applyParams(state, params)

	ctx = s.logger.WithSessionToken(ctx, token)
	ctx = s.logger.WithStep(ctx, state.ActiveStep.String())
	if err := s.sequencer.Advance(state); err != nil {
		s.logger.Warn(ctx, "step validation rejected transition")
		return nil, err
	}
	if err := s.saveState(ctx, state); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "checkout advanced")
	return state, nil
}

// Retreat moves the session one step back without validation.
func (s *Service) Retreat(ctx context.Context, token string) (*SessionState, error) {
	unlock, err := s.lockTransition(ctx, token)
	if err != nil {
		return nil, err
	}
	defer unlock()

	state, err := s.loadState(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := s.sequencer.Retreat(state); err != nil {
		return nil, err
	}
	if err := s.saveState(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Pay freezes the draft into durable storage and hands off to the external
// payment step. The draft must have reached the payment step with every
// prior step already validated; the full draft is re-validated here so a
// stale or manipulated session cannot buy its way past a validator.
func (s *Service) Pay(ctx context.Context, token string, payment *PaymentRecord) (*PaymentRedirect, error) {
	unlock, err := s.lockTransition(ctx, token)
	if err != nil {
		return nil, err
	}
	defer unlock()

	state, err := s.loadState(ctx, token)
	if err != nil {
		return nil, err
	}
	if state.ActiveStep != enums.StepPayment {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("payment requires the payment step, session is at %s", state.ActiveStep))
	}
	if payment != nil {
		state.Draft.Payment = *payment
	}

	for _, step := range enums.OrderedCheckoutSteps() {
		if step == enums.StepComplete {
			break
		}
		if err := s.sequencer.Validate(step, &state.Draft); err != nil {
			return nil, err
		}
	}

	total := state.Draft.Total()
	if !total.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order total must be positive")
	}

	// Both writes land before the buyer can reach the hosted page; a
	// rejected write aborts the handoff instead of leaving a payable
	// session behind.
	if err := s.freezeDraft(ctx, state, total); err != nil {
		return nil, err
	}
	if err := s.saveState(ctx, state); err != nil {
		return nil, err
	}

	link, err := s.payments.CreatePaymentLink(ctx, square.PaymentLinkParams{
		Name:        "FreshBox laundry order",
		AmountCents: total.Mul(decimal.NewFromInt(100)).Round(0).IntPart(),
		Currency:    "GBP",
		RedirectURL: s.confirmURL(token),
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logger.WithSessionToken(ctx, token)
	s.logger.Info(ctx, "draft frozen, redirecting to payment")
	return &PaymentRedirect{Token: token, PaymentURL: link.URL}, nil
}

// MarkComplete pins the session at its terminal step so a revisit renders
// the confirmation rather than an editable checkout.
func (s *Service) MarkComplete(ctx context.Context, token string) error {
	state, err := s.loadState(ctx, token)
	if err != nil {
		if pkgErr := pkgerrors.As(err); pkgErr != nil && pkgErr.Code() == pkgerrors.CodeNotFound {
			return nil
		}
		return err
	}
	state.ActiveStep = enums.StepComplete
	return s.saveState(ctx, state)
}

func (s *Service) applyParams(state *SessionState, params AdvanceParams) {
	if params.Address != nil {
		state.Draft.Address = *params.Address
	}
	if params.Lines != nil {
		state.Draft.Lines = s.normalizeLines(params.Lines)
	}
	if params.Schedule != nil {
		state.Draft.Schedule = *params.Schedule
	}
	if params.Contact != nil {
		state.Draft.Contact = *params.Contact
	}
	if params.Payment != nil {
		state.Draft.Payment = *params.Payment
	}
}

// normalizeLines re-prices submitted lines from the catalog so client-sent
// prices are never trusted. Unknown service ids pass through untouched and
// fail validation downstream if malformed.
func (s *Service) normalizeLines(lines []cart.Line) []cart.Line {
	out := make([]cart.Line, 0, len(lines))
	for _, line := range lines {
		if svc, ok := s.catalog.Service(line.ServiceID); ok {
			line.Name = svc.Name
			line.BasePrice = svc.BasePrice
			line.OptionPrice = s.catalog.OptionPrice(line.ServiceID, line.SelectedOption)
		}
		if line.ID == "" {
			line.ID = uuid.NewString()
		}
		out = append(out, line)
	}
	return out
}

func (s *Service) freezeDraft(ctx context.Context, state *SessionState, total decimal.Decimal) error {
	frozen := state.Draft
	frozen.Payment = frozen.Payment.Sanitized()

	persisted := PersistedSession{
		Token:   state.Token,
		Draft:   frozen,
		Total:   total,
		SavedAt: time.Now().UTC(),
	}
	orderData, err := json.Marshal(persisted)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "serialize draft")
	}
	cartSnapshot, err := json.Marshal(frozen.Lines)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "serialize cart snapshot")
	}
	if err := s.drafts.Write(ctx, state.Token, orderData, cartSnapshot); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist draft")
	}
	return nil
}

func (s *Service) confirmURL(token string) string {
	u, err := url.Parse(s.cfg.ConfirmURL)
	if err != nil {
		return s.cfg.ConfirmURL + "?session_id=" + url.QueryEscape(token)
	}
	q := u.Query()
	q.Set("session_id", token)
	u.RawQuery = q.Encode()
	return u.String()
}

func (s *Service) lockTransition(ctx context.Context, token string) (func(), error) {
	key := s.kv.TransitionLockKey(token)
	ok, err := s.kv.SetNX(ctx, key, "1", s.cfg.TransitionLockTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire transition lock")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a transition is already in progress for this session")
	}
	return func() {
		if err := s.kv.Del(context.WithoutCancel(ctx), key); err != nil {
			s.logger.Error(ctx, "release transition lock", err)
		}
	}, nil
}

func (s *Service) loadState(ctx context.Context, token string) (*SessionState, error) {
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session token is required")
	}
	raw, err := s.kv.Get(ctx, s.kv.SessionStateKey(token))
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout session not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session state")
	}
	var state SessionState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode session state")
	}
	return &state, nil
}

func (s *Service) saveState(ctx context.Context, state *SessionState) error {
	// Validators have already consumed the card fields by the time a state
	// is written; they must not reach redis.
	state.Draft.Payment = state.Draft.Payment.Sanitized()
	state.UpdatedAt = time.Now().UTC()
	raw, err := json.Marshal(state)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode session state")
	}
	if err := s.kv.Set(ctx, s.kv.SessionStateKey(state.Token), raw, s.cfg.SessionTTL); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save session state")
	}
	return nil
}
