package scheduling

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/medbook-ai/scheduling-agent/internal/calendar"
	"github.com/medbook-ai/scheduling-agent/pkg/logging"
)

// Handler exposes the engine's two operations over HTTP, mirroring the
// tool surface the agent uses so the engine can be exercised directly.
type Handler struct {
	engine *Engine
	store  calendar.Store
	logger *logging.Logger
}

// NewHandler creates a scheduling handler.
func NewHandler(engine *Engine, store calendar.Store, logger *logging.Logger) *Handler {
	return &Handler{
		engine: engine,
		store:  store,
		logger: logger,
	}
}

// AvailabilityResponse is the body of GET /calendly/availability.
type AvailabilityResponse struct {
	Date           string `json:"date"`
	AvailableSlots []Slot `json:"available_slots"`
}

// GetAvailability handles GET /calendly/availability?date=&appointment_type=.
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	appointmentType := r.URL.Query().Get("appointment_type")

	slots, err := h.engine.ComputeAvailability(r.Context(), date, appointmentType)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, AvailabilityResponse{
		Date:           date,
		AvailableSlots: slots,
	})
}

// BookAppointment handles POST /calendly/book.
func (h *Handler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	var req BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode booking request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	confirmation, err := h.engine.Book(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, confirmation)
}

// ListAppointments handles GET /admin/appointments?date=. It is a
// read-only operational view over the committed calendar.
func (h *Handler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if _, err := calendar.ParseDate(date); err != nil {
		http.Error(w, "invalid or missing date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	appts, err := h.store.AppointmentsOn(r.Context(), date)
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err, "date", date)
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}
	if appts == nil {
		appts = []calendar.Appointment{}
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"date":         date,
		"appointments": appts,
	})
}

// writeError maps engine failures onto HTTP statuses: validation
// problems are the caller's fault, conflicts are 409, anything else is
// a backing-store fault.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSlotConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case IsValidationError(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error("calendar store failure", "error", err)
		http.Error(w, "calendar store unavailable", http.StatusInternalServerError)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
