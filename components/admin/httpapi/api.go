package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	gocommand "github.com/goliatone/go-command"
	"github.com/gorilla/mux"

	"github.com/goliatone/go-admin-reports/components/admin"
	"github.com/goliatone/go-admin-reports/components/analytics"
	"github.com/goliatone/go-admin-reports/components/analytics/queries"
	"github.com/goliatone/go-admin-reports/components/bookings"
	"github.com/goliatone/go-admin-reports/components/bookings/commands"
)

// Handlers exposes HTTP endpoints backed by shared commands and queries.
type Handlers struct {
	Report  gocommand.Querier[queries.ReportRequest, *analytics.Report]
	Accept  gocommand.Commander[commands.AcceptBookingInput]
	Decline gocommand.Commander[commands.DeclineBookingInput]
	Cancel  gocommand.Commander[commands.CancelBookingInput]
	Delete  gocommand.Commander[commands.DeleteBookingInput]
	Convert gocommand.Commander[commands.ConvertBookingInput]

	Bookings *bookings.Service
	Live     *admin.LiveBroadcast
	// Activity is optional; without it GET /activity returns 404.
	Activity admin.ActivityFeed
}

// Register mounts every endpoint on the router.
func (h *Handlers) Register(r *mux.Router) {
	r.HandleFunc("/analytics/report", h.HandleReport).Methods(http.MethodGet)
	r.HandleFunc("/analytics/live", h.Live.ServeSSE).Methods(http.MethodGet)
	r.HandleFunc("/analytics/live/ws", h.Live.ServeWebSocket).Methods(http.MethodGet)

	r.HandleFunc("/bookings", h.HandleListBookings).Methods(http.MethodGet)
	r.HandleFunc("/bookings/{id}/accept", h.HandleAcceptBooking).Methods(http.MethodPost)
	r.HandleFunc("/bookings/{id}/decline", h.HandleDeclineBooking).Methods(http.MethodPost)
	r.HandleFunc("/bookings/{id}/cancel", h.HandleCancelBooking).Methods(http.MethodPost)
	r.HandleFunc("/bookings/{id}/convert", h.HandleConvertBooking).Methods(http.MethodPost)
	r.HandleFunc("/bookings/{id}", h.HandleDeleteBooking).Methods(http.MethodDelete)

	r.HandleFunc("/settings/trial-bookings", h.HandleGetAvailability).Methods(http.MethodGet)
	r.HandleFunc("/settings/trial-bookings", h.HandleSetAvailability).Methods(http.MethodPut)

	if h.Activity != nil {
		r.HandleFunc("/activity", h.HandleActivity).Methods(http.MethodGet)
	}
}

func (h *Handlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			http.Error(w, "days must be a non-negative integer", http.StatusBadRequest)
			return
		}
		days = parsed
	}
	report, err := h.Report.Query(r.Context(), queries.ReportRequest{Days: days})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handlers) HandleListBookings(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("status")
	list, err := h.Bookings.List(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, admin.BookingCards(list))
}

func (h *Handlers) HandleAcceptBooking(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.Accept.Execute(r.Context(), commands.AcceptBookingInput{BookingID: id}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// reasonPayload distinguishes an absent reason (JSON null, operator backed
// out) from an empty string (proceed without an explanation).
type reasonPayload struct {
	Reason *string `json:"reason"`
}

func (h *Handlers) HandleDeclineBooking(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var payload reasonPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Decline.Execute(r.Context(), commands.DeclineBookingInput{BookingID: id, Reason: payload.Reason}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if payload.Reason == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleCancelBooking(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var payload reasonPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Cancel.Execute(r.Context(), commands.CancelBookingInput{BookingID: id, Reason: payload.Reason}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if payload.Reason == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleDeleteBooking(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.Delete.Execute(r.Context(), commands.DeleteBookingInput{BookingID: id}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleConvertBooking(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.Convert.Execute(r.Context(), commands.ConvertBookingInput{BookingID: id}); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, bookings.ErrNotListed) {
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handlers) HandleActivity(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}
	items, err := h.Activity.Recent(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

type availabilityPayload struct {
	Enabled bool `json:"enabled"`
}

func (h *Handlers) HandleGetAvailability(w http.ResponseWriter, r *http.Request) {
	enabled, err := h.Bookings.TrialBookingsEnabled(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, availabilityPayload{Enabled: enabled})
}

func (h *Handlers) HandleSetAvailability(w http.ResponseWriter, r *http.Request) {
	var payload availabilityPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	prior, err := h.Bookings.SetTrialBookings(r.Context(), payload.Enabled)
	if err != nil {
		// hand the prior value back so the toggle can roll itself back
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":   err.Error(),
			"enabled": prior,
		})
		return
	}
	writeJSON(w, http.StatusOK, availabilityPayload{Enabled: payload.Enabled})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
