package square

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	sq "github.com/square/square-go-sdk"

	"github.com/CodeX93/freshbox-backend/pkg/config"
	pkgerrors "github.com/CodeX93/freshbox-backend/pkg/errors"
	"github.com/CodeX93/freshbox-backend/pkg/logger"
)

const (
	sandboxEnv    = "sandbox"
	productionEnv = "production"

	apiVersion      = "2024-06-04"
	paymentLinkPath = "/v2/online-checkout/payment-links"
)

var (
	errAccessTokenRequired = errors.New("square access token is required")
	errLocationIDRequired  = errors.New("square location id is required")
	errInvalidSquareEnv    = fmt.Errorf("square environment must be %q or %q", sandboxEnv, productionEnv)
	errLoggerRequired      = errors.New("square logger is required")
)

var baseURLs = map[string]string{
	sandboxEnv:    "https://connect.squareupsandbox.com",
	productionEnv: "https://connect.squareup.com",
}

// Client exposes the hosted-checkout surface with centralized auth, logging,
// idempotency, and error mapping.
type Client struct {
	httpClient  *http.Client
	accessToken string
	locationID  string
	environment string
	baseURL     string
	logger      *logger.Logger
}

// NewClient initializes the Square wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.SquareConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	env, err := normalizeEnv(cfg.Environment())
	if err != nil {
		return nil, err
	}

	accessToken := strings.TrimSpace(cfg.AccessToken)
	if accessToken == "" {
		return nil, errAccessTokenRequired
	}

	locationID := strings.TrimSpace(cfg.LocationID)
	if locationID == "" {
		return nil, errLocationIDRequired
	}

	c := &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		accessToken: accessToken,
		locationID:  locationID,
		environment: env,
		baseURL:     baseURLs[env],
		logger:      logg,
	}

	logg.Info(ctx, "square client initialized")
	return c, nil
}

// Environment reports the normalized Square environment.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// NewIdempotencyKey returns a unique key for Square operations.
func (c *Client) NewIdempotencyKey(prefix string) string {
	key := strings.TrimSpace(prefix)
	if key == "" {
		key = "fb"
	}
	return fmt.Sprintf("%s-%s", key, uuid.NewString())
}

// PaymentLinkParams describes a hosted quick-pay checkout page.
type PaymentLinkParams struct {
	Name           string
	AmountCents    int64
	Currency       string
	RedirectURL    string
	IdempotencyKey string
}

// PaymentLink is the hosted payment page the buyer is redirected to.
type PaymentLink struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	OrderID string `json:"order_id"`
}

type paymentLinkRequest struct {
	IdempotencyKey string          `json:"idempotency_key"`
	QuickPay       quickPay        `json:"quick_pay"`
	Options        checkoutOptions `json:"checkout_options"`
}

type quickPay struct {
	Name       string `json:"name"`
	PriceMoney money  `json:"price_money"`
	LocationID string `json:"location_id"`
}

type money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type checkoutOptions struct {
	RedirectURL string `json:"redirect_url"`
}

type paymentLinkResponse struct {
	PaymentLink *PaymentLink `json:"payment_link"`
	Errors      []*sq.Error  `json:"errors"`
}

// CreatePaymentLink provisions a hosted checkout page for the given amount.
// The buyer lands on RedirectURL once the external payment step finishes.
func (c *Client) CreatePaymentLink(ctx context.Context, params PaymentLinkParams) (*PaymentLink, error) {
	if c == nil {
		return nil, errAccessTokenRequired
	}
	if params.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}
	currency := strings.ToUpper(strings.TrimSpace(params.Currency))
	if currency == "" {
		currency = "GBP"
	}

	payload := paymentLinkRequest{
		IdempotencyKey: c.ensureIdempotencyKey("payment_link.create", params.IdempotencyKey),
		QuickPay: quickPay{
			Name:       params.Name,
			PriceMoney: money{Amount: params.AmountCents, Currency: currency},
			LocationID: c.locationID,
		},
		Options: checkoutOptions{RedirectURL: params.RedirectURL},
	}

	c.log(ctx, "request", "create_payment_link", map[string]any{
		"amount":   params.AmountCents,
		"currency": currency,
	})

	resp, err := c.post(ctx, paymentLinkPath, payload)
	if err != nil {
		c.log(ctx, "error", "create_payment_link", map[string]any{"error": err.Error()})
		return nil, err
	}
	if resp.PaymentLink == nil || resp.PaymentLink.URL == "" {
		err := pkgerrors.New(pkgerrors.CodeDependency, "square returned no payment link")
		c.log(ctx, "error", "create_payment_link", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "create_payment_link", map[string]any{
		"payment_link_id": resp.PaymentLink.ID,
	})
	return resp.PaymentLink, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) (*paymentLinkResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode square request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build square request")
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Square-Version", apiVersion)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "square request failed")
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read square response")
	}

	var decoded paymentLinkResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode square response")
	}

	if httpResp.StatusCode >= 400 {
		return nil, c.mapSquareError(httpResp.StatusCode, decoded.Errors)
	}
	return &decoded, nil
}

func (c *Client) ensureIdempotencyKey(prefix, provided string) string {
	if strings.TrimSpace(provided) != "" {
		return provided
	}
	return c.NewIdempotencyKey(prefix)
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = c.redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("square %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("square %s", phase))
	}
}

func (c *Client) redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"card", "nonce", "token", "cvv", "cvc", "secret", "email", "phone"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}

func (c *Client) mapSquareError(status int, sqErrors []*sq.Error) error {
	code := domainCodeForStatus(status)
	detail := ""
	for _, sqErr := range sqErrors {
		if sqErr == nil {
			continue
		}
		if sqErr.Code == sq.ErrorCodeIdempotencyKeyReused {
			code = pkgerrors.CodeIdempotency
		}
		if detail == "" && sqErr.Detail != nil {
			detail = *sqErr.Detail
		}
	}
	err := pkgerrors.New(code, "square create payment link failed")
	if detail != "" {
		err = err.WithDetails(map[string]any{"square_detail": detail})
	}
	return err
}

func domainCodeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict:
		return pkgerrors.CodeConflict
	case http.StatusBadRequest:
		return pkgerrors.CodeValidation
	case http.StatusUnprocessableEntity:
		return pkgerrors.CodeStateConflict
	default:
		if status >= 400 && status < 500 {
			return pkgerrors.CodeValidation
		}
		return pkgerrors.CodeDependency
	}
}

func normalizeEnv(raw string) (string, error) {
	env := strings.TrimSpace(strings.ToLower(raw))
	if env == "" {
		env = sandboxEnv
	}
	switch env {
	case sandboxEnv, productionEnv:
		return env, nil
	default:
		return "", errInvalidSquareEnv
	}
}
