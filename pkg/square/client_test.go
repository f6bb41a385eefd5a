package square

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sq "github.com/square/square-go-sdk"

	pkgerrors "github.com/CodeX93/freshbox-backend/pkg/errors"
	"github.com/CodeX93/freshbox-backend/pkg/logger"
)

func TestEnsureIdempotencyKey(t *testing.T) {
	c := &Client{}
	// Provided key should be used verbatim.
	if got := c.ensureIdempotencyKey("pref", "custom-key"); got != "custom-key" {
		t.Fatalf("expected provided key, got %q", got)
	}
	// Empty key should be generated and include prefix.
	if got := c.ensureIdempotencyKey("prefix", ""); !strings.HasPrefix(got, "prefix-") {
		t.Fatalf("generated idempotency key %q missing prefix", got)
	}
}

func TestRedact(t *testing.T) {
	c := &Client{}
	if out := c.redact("card_cvv", "123"); out != "[REDACTED]" {
		t.Fatalf("expected redacted value, got %v", out)
	}
	// Non-sensitive keys should be preserved.
	if v := c.redact("amount", 450); v != 450 {
		t.Fatal("unexpected redaction for safe key")
	}
}

func TestDomainCodeForStatus(t *testing.T) {
	tests := []struct {
		status int
		code   pkgerrors.Code
	}{
		{http.StatusNotFound, pkgerrors.CodeNotFound},
		{http.StatusConflict, pkgerrors.CodeConflict},
		{http.StatusBadRequest, pkgerrors.CodeValidation},
		{http.StatusUnprocessableEntity, pkgerrors.CodeStateConflict},
		{http.StatusForbidden, pkgerrors.CodeValidation},
		{http.StatusInternalServerError, pkgerrors.CodeDependency},
	}
	for _, tt := range tests {
		if got := domainCodeForStatus(tt.status); got != tt.code {
			t.Fatalf("status %d expected %s got %s", tt.status, tt.code, got)
		}
	}
}

func TestMapSquareError(t *testing.T) {
	c := &Client{}

	detail := "key already used"
	mapped := c.mapSquareError(http.StatusConflict, []*sq.Error{
		{Code: sq.ErrorCodeIdempotencyKeyReused, Detail: &detail},
	})
	typed := pkgerrors.As(mapped)
	if typed == nil {
		t.Fatal("result is not a typed error")
	}
	if typed.Code() != pkgerrors.CodeIdempotency {
		t.Fatalf("expected idempotency code, got %s", typed.Code())
	}
	if typed.Details() == nil {
		t.Fatal("expected square detail to be preserved")
	}

	mapped = c.mapSquareError(http.StatusBadRequest, nil)
	typed = pkgerrors.As(mapped)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code for bare 400, got %v", mapped)
	}
}

func TestCreatePaymentLink(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != paymentLinkPath {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token-123" {
			t.Fatalf("unexpected auth header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"payment_link":{"id":"pl-1","url":"https://square.link/pay","order_id":"sq-ord-1"}}`))
	}))
	defer srv.Close()

	c := &Client{
		httpClient:  srv.Client(),
		accessToken: "token-123",
		locationID:  "loc-1",
		environment: sandboxEnv,
		baseURL:     srv.URL,
		logger:      logger.New(logger.Options{ServiceName: "test"}),
	}

	link, err := c.CreatePaymentLink(context.Background(), PaymentLinkParams{
		Name:        "FreshBox laundry order",
		AmountCents: 2550,
		Currency:    "gbp",
		RedirectURL: "https://api.freshbox.example/checkout/confirm?session_id=tok",
	})
	if err != nil {
		t.Fatalf("CreatePaymentLink returned error: %v", err)
	}
	if link.URL != "https://square.link/pay" {
		t.Fatalf("unexpected payment link url %q", link.URL)
	}
	if link.ID != "pl-1" {
		t.Fatalf("unexpected payment link id %q", link.ID)
	}
}

func TestCreatePaymentLinkRejectsNonPositiveAmount(t *testing.T) {
	c := &Client{logger: logger.New(logger.Options{ServiceName: "test"})}
	if _, err := c.CreatePaymentLink(context.Background(), PaymentLinkParams{AmountCents: 0}); err == nil {
		t.Fatal("expected error for zero amount")
	}
}

func TestCreatePaymentLinkSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errors":[{"category":"INVALID_REQUEST_ERROR","code":"BAD_REQUEST","detail":"missing location"}]}`))
	}))
	defer srv.Close()

	c := &Client{
		httpClient:  srv.Client(),
		accessToken: "token-123",
		locationID:  "loc-1",
		environment: sandboxEnv,
		baseURL:     srv.URL,
		logger:      logger.New(logger.Options{ServiceName: "test"}),
	}

	_, err := c.CreatePaymentLink(context.Background(), PaymentLinkParams{AmountCents: 100})
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %s", typed.Code())
	}
}

func TestNormalizeEnv(t *testing.T) {
	if env, err := normalizeEnv(" Production "); err != nil || env != productionEnv {
		t.Fatalf("unexpected normalization result %q %v", env, err)
	}
	if env, err := normalizeEnv(""); err != nil || env != sandboxEnv {
		t.Fatalf("empty env should default to sandbox, got %q %v", env, err)
	}
	if _, err := normalizeEnv("staging"); err == nil {
		t.Fatal("expected error for unknown environment")
	}
}
