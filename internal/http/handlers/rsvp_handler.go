package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ecavus/wedding-rsvp/internal/domain"
	"github.com/ecavus/wedding-rsvp/internal/http/response"
	"github.com/ecavus/wedding-rsvp/internal/service"
	"github.com/ecavus/wedding-rsvp/pkg/logger"
)

type Middleware func(http.Handler) http.Handler

type RSVPHandler struct {
	svc         service.RSVPService
	submitLimit Middleware
	lookupLimit Middleware
}

func NewRSVPHandler(svc service.RSVPService, submitLimit, lookupLimit Middleware) *RSVPHandler {
	return &RSVPHandler{svc: svc, submitLimit: submitLimit, lookupLimit: lookupLimit}
}

func (h *RSVPHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(h.submitLimit).Post("/", h.submit)
	r.With(h.lookupLimit).Get("/{phone_number}", h.getByPhone)

	return r
}

func (h *RSVPHandler) submit(w http.ResponseWriter, r *http.Request) {
	var req domain.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// Coercion failures (e.g. householdCount "abc") surface here.
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			response.UnprocessableEntity(w, ve.Error())
			return
		}
		response.UnprocessableEntity(w, "invalid request body")
		return
	}

	record, err := h.svc.Submit(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, record)
}

func (h *RSVPHandler) getByPhone(w http.ResponseWriter, r *http.Request) {
	record, err := h.svc.FindByPhone(r.Context(), chi.URLParam(r, "phone_number"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, record)
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		response.UnprocessableEntity(w, ve.Error())
	case errors.Is(err, domain.ErrInvalidPhone):
		response.BadRequest(w, "Invalid phone number format")
	case errors.Is(err, domain.ErrNotFound):
		response.NotFound(w, "RSVP not found")
	default:
		logger.ErrorContext(r.Context(), "RSVP request failed", "error", err)
		response.InternalError(w, "Internal server error")
	}
}
