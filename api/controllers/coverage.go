package controllers

import (
	"net/http"
	"strings"

	"github.com/CodeX93/freshbox-backend/api/responses"
	"github.com/CodeX93/freshbox-backend/internal/coverage"
	pkgerrors "github.com/CodeX93/freshbox-backend/pkg/errors"
	"github.com/CodeX93/freshbox-backend/pkg/logger"
)

// CoverageCheck answers whether a postcode is inside the service area.
func CoverageCheck(matcher *coverage.Matcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postcode := strings.TrimSpace(r.URL.Query().Get("postcode"))
		if postcode == "" {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "postcode query parameter is required"))
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"postcode": postcode,
			"covered":  matcher.IsCovered(postcode),
		})
	}
}
