package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/CodeX93/freshbox-backend/api/responses"
	"github.com/CodeX93/freshbox-backend/internal/orders"
	"github.com/CodeX93/freshbox-backend/pkg/logger"
)

// OrderDetail returns a confirmed order with its line items.
func OrderDetail(service *orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := service.GetOrder(r.Context(), chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
