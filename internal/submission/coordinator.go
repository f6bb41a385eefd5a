package submission

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/CodeX93/freshbox-backend/internal/checkout"
	"github.com/CodeX93/freshbox-backend/internal/checkout/session"
	"github.com/CodeX93/freshbox-backend/pkg/db/models"
	"github.com/CodeX93/freshbox-backend/pkg/enums"
	pkgerrors "github.com/CodeX93/freshbox-backend/pkg/errors"
	"github.com/CodeX93/freshbox-backend/pkg/logger"
	"github.com/CodeX93/freshbox-backend/pkg/metrics"
)

// OrderCreator converts a frozen draft into a confirmed order.
type OrderCreator interface {
	CreateFromDraft(ctx context.Context, persisted checkout.PersistedSession) (*models.Order, bool, error)
	FindBySessionToken(ctx context.Context, token string) (*models.Order, error)
}

// DraftReader consumes the frozen draft written before the redirect.
type DraftReader interface {
	ReadOnce(ctx context.Context, token string) ([]byte, error)
	Clear(ctx context.Context, token string) error
}

// AccountCreator provisions opted-in customer accounts. Best-effort.
type AccountCreator interface {
	CreateIfRequested(ctx context.Context, contact checkout.ContactRecord) error
}

// SessionCleaner finalizes the in-progress checkout state after conversion.
type SessionCleaner interface {
	MarkComplete(ctx context.Context, token string) error
}

// Result reports the outcome of a finalization attempt.
type Result struct {
	OrderID   string                `json:"order_id"`
	State     enums.SubmissionState `json:"state"`
	Duplicate bool                  `json:"duplicate"`
}

// Terminal entries are evicted lazily so the map does not grow with every
// token ever probed. An evicted confirmed token falls back to the orders
// table on a repeat confirmation.
const (
	stateRetention = 24 * time.Hour
	sweepInterval  = time.Minute
)

type tokenState struct {
	phase   enums.SubmissionState
	orderID string
	// draft survives a failed creation attempt so an explicit retry does
	// not need the already-consumed storage entry.
	draft     *checkout.PersistedSession
	failure   *pkgerrors.Error
	touchedAt time.Time
}

// Coordinator guarantees at most one order-creation call per session token.
// The latch is taken synchronously under the mutex before any I/O, so two
// finalization requests arriving back-to-back can never both reach the
// creation endpoint: the second observes Submitting (409) or Confirmed
// (existing order id).
type Coordinator struct {
	mu        sync.Mutex
	states    map[string]*tokenState
	lastSweep time.Time

	drafts   DraftReader
	orders   OrderCreator
	accounts AccountCreator
	sessions SessionCleaner
	metrics  *metrics.CheckoutMetrics
	logger   *logger.Logger
}

// NewCoordinator wires the coordinator.
func NewCoordinator(
	drafts DraftReader,
	orders OrderCreator,
	accounts AccountCreator,
	sessions SessionCleaner,
	checkoutMetrics *metrics.CheckoutMetrics,
	logg *logger.Logger,
) *Coordinator {
	return &Coordinator{
		states:   map[string]*tokenState{},
		drafts:   drafts,
		orders:   orders,
		accounts: accounts,
		sessions: sessions,
		metrics:  checkoutMetrics,
		logger:   logg,
	}
}

// Finalize converts the draft stored under token into a confirmed order,
// exactly once. Repeat calls for a confirmed token return the existing
// order id; calls while a submission is in flight are rejected; a failed
// token stays failed until Retry.
func (c *Coordinator) Finalize(ctx context.Context, token string) (*Result, error) {
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session token is required")
	}

	c.mu.Lock()
	now := time.Now()
	c.sweepLocked(now)
	st, ok := c.states[token]
	if !ok {
		st = &tokenState{phase: enums.SubmissionIdle}
		c.states[token] = st
	}
	st.touchedAt = now
	switch st.phase {
	case enums.SubmissionConfirmed:
		orderID := st.orderID
		c.mu.Unlock()
		c.metrics.IncDuplicate()
		return &Result{OrderID: orderID, State: enums.SubmissionConfirmed, Duplicate: true}, nil
	case enums.SubmissionSubmitting:
		c.mu.Unlock()
		c.metrics.IncDuplicate()
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "finalization already in progress for this session")
	case enums.SubmissionFailed:
		failure := st.failure
		c.mu.Unlock()
		if failure != nil {
			return nil, failure
		}
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "previous finalization failed, retry explicitly")
	}
	// Latch before any suspension point.
	st.phase = enums.SubmissionSubmitting
	c.mu.Unlock()

	return c.submit(ctx, token)
}

// Retry moves a failed token back to Submitting and reruns the conversion
// using the draft retained from the failed attempt.
func (c *Coordinator) Retry(ctx context.Context, token string) (*Result, error) {
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session token is required")
	}

	c.mu.Lock()
	st, ok := c.states[token]
	if ok && st.phase == enums.SubmissionFailed {
		st.phase = enums.SubmissionSubmitting
		st.failure = nil
		st.touchedAt = time.Now()
		c.mu.Unlock()
		return c.submit(ctx, token)
	}
	var confirmed *Result
	if ok && st.phase == enums.SubmissionConfirmed {
		confirmed = &Result{OrderID: st.orderID, State: enums.SubmissionConfirmed, Duplicate: true}
	}
	c.mu.Unlock()

	if confirmed != nil {
		return confirmed, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "retry is only valid after a failed finalization")
}

// State reports the current phase for a token. Unknown tokens are Idle.
func (c *Coordinator) State(token string) Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.states[token]
	if !ok {
		return Result{State: enums.SubmissionIdle}
	}
	return Result{OrderID: st.orderID, State: st.phase}
}

// submit runs with the Submitting latch held for token. Only one goroutine
// can be here per token at a time.
func (c *Coordinator) submit(ctx context.Context, token string) (*Result, error) {
	start := time.Now()
	ctx = c.logger.WithSessionToken(ctx, token)

	persisted, err := c.loadDraft(ctx, token)
	if err != nil {
		result, failure := c.resolveMissingDraft(ctx, token, err)
		if result != nil {
			c.metrics.ObserveDuration("duplicate", time.Since(start))
			return result, nil
		}
		outcome := "failed"
		if failure.Code() == pkgerrors.CodeNotFound {
			outcome = "not_found"
		}
		c.metrics.ObserveDuration(outcome, time.Since(start))
		return nil, failure
	}

	order, created, err := c.orders.CreateFromDraft(ctx, *persisted)
	if err != nil {
		failure := pkgerrors.Wrap(pkgerrors.CodeDependency, err, "order creation failed")
		c.setFailed(token, persisted, failure)
		c.metrics.IncFailed()
		c.metrics.ObserveDuration("failed", time.Since(start))
		c.logger.Error(ctx, "order creation failed", err)
		return nil, failure
	}

	c.setConfirmed(token, order.ID.String())
	c.cleanup(ctx, token, persisted)

	if created {
		c.metrics.IncConfirmed()
	}
	c.metrics.ObserveDuration("confirmed", time.Since(start))

	ctx = c.logger.WithOrderID(ctx, order.ID.String())
	c.logger.Info(ctx, "order finalized")
	return &Result{OrderID: order.ID.String(), State: enums.SubmissionConfirmed, Duplicate: !created}, nil
}

// loadDraft returns the retained draft from a failed attempt, or consumes
// the stored one.
func (c *Coordinator) loadDraft(ctx context.Context, token string) (*checkout.PersistedSession, error) {
	c.mu.Lock()
	retained := c.states[token].draft
	c.mu.Unlock()
	if retained != nil {
		return retained, nil
	}

	raw, err := c.drafts.ReadOnce(ctx, token)
	if err != nil {
		return nil, err
	}

	var persisted checkout.PersistedSession
	if err := json.Unmarshal(raw, &persisted); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode persisted draft")
	}

	c.mu.Lock()
	c.states[token].draft = &persisted
	c.mu.Unlock()
	return &persisted, nil
}

// resolveMissingDraft handles a token whose draft is absent. The orders
// table is the durable backstop: if the token already converted (earlier
// process, earlier request), the existing order id is returned instead of
// a dead end.
func (c *Coordinator) resolveMissingDraft(ctx context.Context, token string, err error) (*Result, *pkgerrors.Error) {
	if !errors.Is(err, session.ErrNotFound) {
		failure := pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read persisted draft")
		c.setFailed(token, nil, failure)
		c.logger.Error(ctx, "reading persisted draft failed", err)
		return nil, failure
	}

	if order, findErr := c.orders.FindBySessionToken(ctx, token); findErr == nil {
		c.setConfirmed(token, order.ID.String())
		c.logger.Info(ctx, "token already converted, returning existing order")
		return &Result{OrderID: order.ID.String(), State: enums.SubmissionConfirmed, Duplicate: true}, nil
	}

	failure := pkgerrors.New(pkgerrors.CodeNotFound, "no draft found for session token")
	c.setFailed(token, nil, failure)
	c.metrics.IncFailed()
	c.logger.Warn(ctx, "no draft found for session token")
	return nil, failure
}

// cleanup removes the consumed draft pair and the in-progress session
// state, and provisions the opted-in account. All best-effort: the order
// is already confirmed.
func (c *Coordinator) cleanup(ctx context.Context, token string, persisted *checkout.PersistedSession) {
	if err := c.drafts.Clear(ctx, token); err != nil {
		c.logger.Error(ctx, "clearing draft storage failed", err)
	}
	if err := c.sessions.MarkComplete(ctx, token); err != nil {
		c.logger.Error(ctx, "marking session complete failed", err)
	}
	if c.accounts != nil {
		if err := c.accounts.CreateIfRequested(ctx, persisted.Draft.Contact); err != nil {
			c.logger.Error(ctx, "account creation failed, order unaffected", err)
		}
	}

	c.mu.Lock()
	c.states[token].draft = nil
	c.mu.Unlock()
}

func (c *Coordinator) setConfirmed(token, orderID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.states[token]
	st.phase = enums.SubmissionConfirmed
	st.orderID = orderID
	st.failure = nil
	st.touchedAt = time.Now()
}

func (c *Coordinator) setFailed(token string, draft *checkout.PersistedSession, failure *pkgerrors.Error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.states[token]
	st.phase = enums.SubmissionFailed
	st.draft = draft
	st.failure = failure
	st.touchedAt = time.Now()
}

// sweepLocked drops terminal entries that have been idle past the retention
// window. In-flight entries are never dropped. Caller holds mu.
func (c *Coordinator) sweepLocked(now time.Time) {
	if now.Sub(c.lastSweep) < sweepInterval {
		return
	}
	c.lastSweep = now
	for token, st := range c.states {
		if st.phase == enums.SubmissionSubmitting {
			continue
		}
		if now.Sub(st.touchedAt) > stateRetention {
			delete(c.states, token)
		}
	}
}
