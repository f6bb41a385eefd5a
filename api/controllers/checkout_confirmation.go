package controllers

import (
	"net/http"
	"strings"

	"github.com/CodeX93/freshbox-backend/api/middleware"
	"github.com/CodeX93/freshbox-backend/api/responses"
	"github.com/CodeX93/freshbox-backend/internal/submission"
	"github.com/CodeX93/freshbox-backend/pkg/config"
	pkgerrors "github.com/CodeX93/freshbox-backend/pkg/errors"
	"github.com/CodeX93/freshbox-backend/pkg/logger"
)

type confirmResponse struct {
	*submission.Result
	// CompleteURL is where the storefront should send the buyer next.
	CompleteURL string `json:"complete_url"`
}

// CheckoutConfirm is the return target of the external payment redirect.
// The session_id parameter correlates the visit to a frozen draft; the
// coordinator guarantees the order-creation call happens at most once no
// matter how many times this endpoint fires for the same token.
func CheckoutConfirm(cfg config.CheckoutConfig, coordinator *submission.Coordinator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(r.URL.Query().Get("session_id"))
		if token == "" {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "session_id query parameter is required"))
			return
		}

		result, err := coordinator.Finalize(r.Context(), token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, confirmResponse{Result: result, CompleteURL: cfg.CompleteURL})
	}
}

// CheckoutRetry reruns a failed finalization for a session token.
func CheckoutRetry(coordinator *submission.Coordinator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := middleware.SessionTokenFromContext(r.Context())
		result, err := coordinator.Retry(r.Context(), token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
