package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ecavus/wedding-rsvp/internal/domain"
	"github.com/ecavus/wedding-rsvp/internal/http/response"
	"github.com/ecavus/wedding-rsvp/internal/service"
	"github.com/ecavus/wedding-rsvp/pkg/logger"
)

// GuestDetailsHandler serves the reporting projection.
type GuestDetailsHandler struct {
	svc         service.RSVPService
	lookupLimit Middleware
	adminGuard  Middleware
}

func NewGuestDetailsHandler(svc service.RSVPService, lookupLimit, adminGuard Middleware) *GuestDetailsHandler {
	return &GuestDetailsHandler{svc: svc, lookupLimit: lookupLimit, adminGuard: adminGuard}
}

func (h *GuestDetailsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(h.adminGuard)
	r.Use(h.lookupLimit)
	r.Get("/", h.list)
	r.Get("/{guest_id}", h.getByID)

	return r
}

type guestListResponse struct {
	Guests []domain.GuestDetails `json:"guests"`
}

func (h *GuestDetailsHandler) list(w http.ResponseWriter, r *http.Request) {
	details, err := h.svc.ListAll(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to list guest details", "error", err)
		response.InternalError(w, "Internal server error")
		return
	}

	response.WriteJSON(w, http.StatusOK, guestListResponse{Guests: details})
}

func (h *GuestDetailsHandler) getByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "guest_id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "bad guest id")
		return
	}

	details, err := h.svc.FindByGuestID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			response.NotFound(w, "Guest not found")
			return
		}
		logger.ErrorContext(r.Context(), "Failed to fetch guest details", "error", err)
		response.InternalError(w, "Internal server error")
		return
	}

	response.WriteJSON(w, http.StatusOK, details)
}
