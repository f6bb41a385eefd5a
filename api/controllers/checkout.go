package controllers

import (
	"net/http"

	"github.com/CodeX93/freshbox-backend/api/middleware"
	"github.com/CodeX93/freshbox-backend/api/responses"
	"github.com/CodeX93/freshbox-backend/api/validators"
	"github.com/CodeX93/freshbox-backend/internal/checkout"
	"github.com/CodeX93/freshbox-backend/pkg/logger"
)

// SessionStart opens a new checkout session.
func SessionStart(service *checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := service.StartSession(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, state)
	}
}

// SessionFetch returns the current session state.
func SessionFetch(service *checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := middleware.SessionTokenFromContext(r.Context())
		state, err := service.GetSession(r.Context(), token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}

// SessionAdvance merges step data and moves the session forward.
func SessionAdvance(service *checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params checkout.AdvanceParams
		if err := validators.DecodeJSONBody(r, &params); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		token := middleware.SessionTokenFromContext(r.Context())
		state, err := service.Advance(r.Context(), token, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}

// SessionRetreat moves the session one step back.
func SessionRetreat(service *checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := middleware.SessionTokenFromContext(r.Context())
		state, err := service.Retreat(r.Context(), token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}

type payRequest struct {
	Payment *checkout.PaymentRecord `json:"payment" validate:"required"`
}

// SessionPay freezes the draft and returns the external payment redirect.
func SessionPay(service *checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req payRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		token := middleware.SessionTokenFromContext(r.Context())
		redirect, err := service.Pay(r.Context(), token, req.Payment)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, redirect)
	}
}
