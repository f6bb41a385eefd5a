package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeX93/freshbox-backend/internal/cart"
	"github.com/CodeX93/freshbox-backend/pkg/config"
	"github.com/CodeX93/freshbox-backend/pkg/enums"
	pkgerrors "github.com/CodeX93/freshbox-backend/pkg/errors"
	"github.com/CodeX93/freshbox-backend/pkg/logger"
	"github.com/CodeX93/freshbox-backend/pkg/square"
)

type fakeStateKV struct {
	data   map[string]string
	locks  map[string]bool
	setErr error
}

func newFakeStateKV() *fakeStateKV {
	return &fakeStateKV{data: map[string]string{}, locks: map[string]bool{}}
}

func (f *fakeStateKV) Set(_ context.Context, key string, value any, _ time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	return nil
}

func (f *fakeStateKV) Get(_ context.Context, key string) (string, error) {
	raw, ok := f.data[key]
	if !ok {
		return "", goredis.Nil
	}
	return raw, nil
}

func (f *fakeStateKV) SetNX(_ context.Context, key string, _ any, _ time.Duration) (bool, error) {
	if f.locks[key] {
		return false, nil
	}
	f.locks[key] = true
	return true, nil
}

func (f *fakeStateKV) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
		delete(f.locks, key)
	}
	return nil
}

func (f *fakeStateKV) SessionStateKey(token string) string   { return "fb:session:" + token + ":state" }
func (f *fakeStateKV) TransitionLockKey(token string) string { return "fb:lock:session:" + token }

type fakeDraftStore struct {
	orderData    map[string][]byte
	cartSnapshot map[string][]byte
}

func newFakeDraftStore() *fakeDraftStore {
	return &fakeDraftStore{orderData: map[string][]byte{}, cartSnapshot: map[string][]byte{}}
}

func (f *fakeDraftStore) Write(_ context.Context, token string, orderData, cartSnapshot []byte) error {
	f.orderData[token] = orderData
	f.cartSnapshot[token] = cartSnapshot
	return nil
}

type fakePaymentLinker struct {
	calls int
	err   error
}

func (f *fakePaymentLinker) CreatePaymentLink(_ context.Context, _ square.PaymentLinkParams) (*square.PaymentLink, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &square.PaymentLink{ID: "pl1", URL: "https://pay.example/pl1"}, nil
}

func newTestService(kv *fakeStateKV, drafts *fakeDraftStore, payments *fakePaymentLinker) *Service {
	cfg := config.CheckoutConfig{
		SessionTTL:        time.Hour,
		ConfirmURL:        "https://freshbox.example/checkout/confirm",
		CompleteURL:       "https://freshbox.example/checkout/complete",
		TransitionLockTTL: 15 * time.Second,
	}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	return NewService(cfg, kv, drafts, newTestSequencer(), cart.NewCatalog(), payments, logg)
}

func TestStartAndGetSession(t *testing.T) {
	svc := newTestService(newFakeStateKV(), newFakeDraftStore(), &fakePaymentLinker{})

	state, err := svc.StartSession(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, state.Token)
	assert.Equal(t, enums.StepAddress, state.ActiveStep)

	loaded, err := svc.GetSession(context.Background(), state.Token)
	require.NoError(t, err)
	assert.Equal(t, state.Token, loaded.Token)
	assert.Equal(t, enums.StepAddress, loaded.ActiveStep)
}

func TestGetSessionUnknownToken(t *testing.T) {
	svc := newTestService(newFakeStateKV(), newFakeDraftStore(), &fakePaymentLinker{})

	_, err := svc.GetSession(context.Background(), "missing")
	pkgErr := pkgerrors.As(err)
	require.NotNil(t, pkgErr)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgErr.Code())
}

func TestAdvanceMergesStepData(t *testing.T) {
	svc := newTestService(newFakeStateKV(), newFakeDraftStore(), &fakePaymentLinker{})
	state, err := svc.StartSession(context.Background())
	require.NoError(t, err)

	addr := validDraft().Address
	state, err = svc.Advance(context.Background(), state.Token, AdvanceParams{Address: &addr})
	require.NoError(t, err)
	assert.Equal(t, enums.StepServices, state.ActiveStep)
	assert.Equal(t, "SW1A 1AA", state.Draft.Address.Postcode)
}

func TestAdvanceRepricesLinesFromCatalog(t *testing.T) {
	svc := newTestService(newFakeStateKV(), newFakeDraftStore(), &fakePaymentLinker{})
	state, err := svc.StartSession(context.Background())
	require.NoError(t, err)

	addr := validDraft().Address
	state, err = svc.Advance(context.Background(), state.Token, AdvanceParams{Address: &addr})
	require.NoError(t, err)

	// Client claims a tampered price; the catalog wins.
	lines := []cart.Line{{
		ServiceID:      "wash-fold",
		SelectedOption: "express",
		BasePrice:      decimal.NewFromFloat(0.01),
		Quantity:       1,
	}}
	state, err = svc.Advance(context.Background(), state.Token, AdvanceParams{Lines: lines})
	require.NoError(t, err)

	line := state.Draft.Lines[0]
	assert.Equal(t, "Wash & Fold", line.Name)
	assert.True(t, line.BasePrice.Equal(decimal.NewFromFloat(15.00)))
	assert.True(t, line.OptionPrice.Equal(decimal.NewFromFloat(5.00)))
	assert.NotEmpty(t, line.ID)
}

func TestAdvanceRejectedValidationKeepsStep(t *testing.T) {
	svc := newTestService(newFakeStateKV(), newFakeDraftStore(), &fakePaymentLinker{})
	state, err := svc.StartSession(context.Background())
	require.NoError(t, err)

	addr := validDraft().Address
	addr.Postcode = "BR3 4QP"
	_, err = svc.Advance(context.Background(), state.Token, AdvanceParams{Address: &addr})
	require.Error(t, err)

	loaded, err := svc.GetSession(context.Background(), state.Token)
	require.NoError(t, err)
	assert.Equal(t, enums.StepAddress, loaded.ActiveStep)
}

func TestTransitionLockSerializesRequests(t *testing.T) {
	kv := newFakeStateKV()
	svc := newTestService(kv, newFakeDraftStore(), &fakePaymentLinker{})
	state, err := svc.StartSession(context.Background())
	require.NoError(t, err)

	// Simulate an in-flight transition holding the lock.
	kv.locks[kv.TransitionLockKey(state.Token)] = true

	addr := validDraft().Address
	_, err = svc.Advance(context.Background(), state.Token, AdvanceParams{Address: &addr})
	pkgErr := pkgerrors.As(err)
	require.NotNil(t, pkgErr)
	assert.Equal(t, pkgerrors.CodeConflict, pkgErr.Code())
}

func walkToPayment(t *testing.T, svc *Service) *SessionState {
	t.Helper()
	state, err := svc.StartSession(context.Background())
	require.NoError(t, err)

	draft := validDraft()
	state, err = svc.Advance(context.Background(), state.Token, AdvanceParams{Address: &draft.Address})
	require.NoError(t, err)
	state, err = svc.Advance(context.Background(), state.Token, AdvanceParams{Lines: draft.Lines})
	require.NoError(t, err)
	state, err = svc.Advance(context.Background(), state.Token, AdvanceParams{Schedule: &draft.Schedule})
	require.NoError(t, err)
	state, err = svc.Advance(context.Background(), state.Token, AdvanceParams{Contact: &draft.Contact})
	require.NoError(t, err)
	require.Equal(t, enums.StepPayment, state.ActiveStep)
	return state
}

func TestPayFreezesDraftAndReturnsRedirect(t *testing.T) {
	drafts := newFakeDraftStore()
	payments := &fakePaymentLinker{}
	svc := newTestService(newFakeStateKV(), drafts, payments)

	state := walkToPayment(t, svc)

	payment := PaymentRecord{Method: enums.PaymentMethodPaypal}
	redirect, err := svc.Pay(context.Background(), state.Token, &payment)
	require.NoError(t, err)
	assert.Equal(t, state.Token, redirect.Token)
	assert.Equal(t, "https://pay.example/pl1", redirect.PaymentURL)
	assert.Equal(t, 1, payments.calls)

	var persisted PersistedSession
	require.NoError(t, json.Unmarshal(drafts.orderData[state.Token], &persisted))
	assert.Equal(t, state.Token, persisted.Token)
	assert.True(t, persisted.Total.Equal(decimal.NewFromFloat(4.50)), "got %s", persisted.Total)
	require.Len(t, persisted.Draft.Lines, 1)

	var snapshot []cart.Line
	require.NoError(t, json.Unmarshal(drafts.cartSnapshot[state.Token], &snapshot))
	require.Len(t, snapshot, 1)
}

func TestPayNeverPersistsCardData(t *testing.T) {
	kv := newFakeStateKV()
	drafts := newFakeDraftStore()
	svc := newTestService(kv, drafts, &fakePaymentLinker{})

	state := walkToPayment(t, svc)

	payment := PaymentRecord{
		Method:     enums.PaymentMethodCard,
		CardNumber: "4111111111111111",
		ExpiryDate: "12/28",
		CVV:        "123",
		NameOnCard: "A LOVELACE",
	}
	_, err := svc.Pay(context.Background(), state.Token, &payment)
	require.NoError(t, err)

	var persisted PersistedSession
	require.NoError(t, json.Unmarshal(drafts.orderData[state.Token], &persisted))
	assert.Empty(t, persisted.Draft.Payment.CardNumber)
	assert.Empty(t, persisted.Draft.Payment.ExpiryDate)
	assert.Empty(t, persisted.Draft.Payment.CVV)
	assert.Equal(t, enums.PaymentMethodCard, persisted.Draft.Payment.Method)

	// The session-state entry outlives the redirect; it must be just as
	// clean as the frozen draft.
	stored := kv.data[kv.SessionStateKey(state.Token)]
	require.NotEmpty(t, stored)
	var saved SessionState
	require.NoError(t, json.Unmarshal([]byte(stored), &saved))
	assert.Empty(t, saved.Draft.Payment.CardNumber)
	assert.Empty(t, saved.Draft.Payment.ExpiryDate)
	assert.Empty(t, saved.Draft.Payment.CVV)
	assert.NotContains(t, stored, "4111111111111111")
	assert.NotContains(t, string(drafts.orderData[state.Token]), "4111111111111111")
}

func TestPayStateWriteFailureAbortsHandoff(t *testing.T) {
	kv := newFakeStateKV()
	payments := &fakePaymentLinker{}
	svc := newTestService(kv, newFakeDraftStore(), payments)

	state := walkToPayment(t, svc)

	kv.setErr = errors.New("redis down")
	payment := PaymentRecord{Method: enums.PaymentMethodPaypal}
	_, err := svc.Pay(context.Background(), state.Token, &payment)
	pkgErr := pkgerrors.As(err)
	require.NotNil(t, pkgErr)
	assert.Equal(t, pkgerrors.CodeDependency, pkgErr.Code())
	assert.Zero(t, payments.calls, "no payment link for a session whose state write was rejected")
}

func TestPayRequiresPaymentStep(t *testing.T) {
	svc := newTestService(newFakeStateKV(), newFakeDraftStore(), &fakePaymentLinker{})
	state, err := svc.StartSession(context.Background())
	require.NoError(t, err)

	_, err = svc.Pay(context.Background(), state.Token, nil)
	pkgErr := pkgerrors.As(err)
	require.NotNil(t, pkgErr)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgErr.Code())
}

func TestPersistedSessionRoundTrip(t *testing.T) {
	original := PersistedSession{
		Token:   "tok",
		Draft:   validDraft(),
		Total:   decimal.NewFromFloat(4.50),
		SavedAt: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}

	raw, err := json.Marshal(original)
	require.NoError(t, err)

	var restored PersistedSession
	require.NoError(t, json.Unmarshal(raw, &restored))

	assert.Equal(t, original.Token, restored.Token)
	assert.Equal(t, original.Draft.Address, restored.Draft.Address)
	assert.Equal(t, original.Draft.Schedule, restored.Draft.Schedule)
	assert.Equal(t, original.Draft.Contact, restored.Draft.Contact)
	assert.Equal(t, original.Draft.Payment, restored.Draft.Payment)
	assert.True(t, original.Total.Equal(restored.Total))
	assert.True(t, original.SavedAt.Equal(restored.SavedAt))
	require.Len(t, restored.Draft.Lines, len(original.Draft.Lines))
	for i := range original.Draft.Lines {
		assert.Equal(t, original.Draft.Lines[i].ID, restored.Draft.Lines[i].ID)
		assert.True(t, original.Draft.Lines[i].TotalPrice().Equal(restored.Draft.Lines[i].TotalPrice()))
	}
}
