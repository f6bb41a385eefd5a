package controllers

import (
	"net/http"

	"github.com/CodeX93/freshbox-backend/api/responses"
	"github.com/CodeX93/freshbox-backend/internal/cart"
)

// ServicesList returns the bookable service catalog.
func ServicesList(catalog *cart.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]any{"services": catalog.Services()})
	}
}
