package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/CodeX93/freshbox-backend/api/responses"
	pkgerrors "github.com/CodeX93/freshbox-backend/pkg/errors"
	"github.com/CodeX93/freshbox-backend/pkg/logger"
)

type contextKey string

const ctxSessionToken contextKey = "session_token"

// SessionTokenFromContext returns the checkout session token bound to the
// request, or an empty string.
func SessionTokenFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSessionToken).(string); ok {
		return v
	}
	return ""
}

// SessionContext lifts the {token} route parameter into the request context
// and the log entry so every downstream line carries the session token.
func SessionContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := chi.URLParam(r, "token")
			if token == "" {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "session token is required"))
				return
			}

			ctx := context.WithValue(r.Context(), ctxSessionToken, token)
			if logg != nil {
				ctx = logg.WithSessionToken(ctx, token)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
