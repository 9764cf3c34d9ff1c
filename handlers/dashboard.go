package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/giygas/telehealth-api/dashboard"
	"github.com/giygas/telehealth-api/entities"
	"github.com/giygas/telehealth-api/logging"
	"github.com/giygas/telehealth-api/store"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type LoginRequest struct {
	UserID string `json:"user_id"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

// AppointmentView adds the display fields of the dashboard table
type AppointmentView struct {
	entities.Appointment
	Badge           string `json:"badge,omitempty"`
	PatientInitials string `json:"patient_initials"`
}

// Login makes a stored user the session's current user. There is no
// credential check.
func (h *HTTPHandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	s, ok := h.currentSession(w, r)
	if !ok {
		return
	}

	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		h.RespondWithError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	user, err := h.records.UserByID(r.Context(), req.UserID)
	if errors.Is(err, store.ErrUserNotFound) {
		h.RespondWithError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		logging.Error("Failed to load user", "user_id", req.UserID, "error", err)
		h.RespondWithError(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	if err := h.records.SetCurrentUser(r.Context(), s.ID, user); err != nil {
		logging.Error("Failed to store current user", "session_id", s.ID, "error", err)
		h.RespondWithError(w, http.StatusInternalServerError, "failed to log in")
		return
	}
	s.SetUserID(user.ID)

	h.RespondWithJSON(w, http.StatusOK, user)
}

func (h *HTTPHandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	s, ok := h.currentSession(w, r)
	if !ok {
		return
	}
	if err := h.records.ClearCurrentUser(r.Context(), s.ID); err != nil {
		logging.Error("Failed to clear current user", "session_id", s.ID, "error", err)
		h.RespondWithError(w, http.StatusInternalServerError, "failed to log out")
		return
	}
	s.SetUserID("")
	h.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// respondDashboardError maps dashboard sentinel errors to status codes
func (h *HTTPHandlerImpl) respondDashboardError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dashboard.ErrNotDoctor):
		h.RespondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, dashboard.ErrAppointmentNotFound):
		h.RespondWithError(w, http.StatusNotFound, "Appointment not found")
	case errors.Is(err, dashboard.ErrInvalidTransition):
		h.RespondWithError(w, http.StatusConflict, err.Error())
	default:
		logging.Error("Dashboard request failed", "error", err)
		h.RespondWithError(w, http.StatusInternalServerError, "dashboard request failed")
	}
}

func (h *HTTPHandlerImpl) filteredAppointments(w http.ResponseWriter, r *http.Request, sessionID string) ([]entities.Appointment, bool) {
	filter, err := dashboard.ParseStatusFilter(r.URL.Query().Get("filter"))
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	appts, err := h.dashboard.Appointments(r.Context(), sessionID, filter)
	if err != nil {
		h.respondDashboardError(w, err)
		return nil, false
	}
	return appts, true
}

// DashboardAppointments lists the doctor's appointments newest first
func (h *HTTPHandlerImpl) DashboardAppointments(w http.ResponseWriter, r *http.Request) {
	s, ok := h.currentSession(w, r)
	if !ok {
		return
	}
	appts, ok := h.filteredAppointments(w, r, s.ID)
	if !ok {
		return
	}

	now := h.now()
	views := make([]AppointmentView, len(appts))
	for i, a := range appts {
		views[i] = AppointmentView{
			Appointment:     a,
			Badge:           dashboard.TimingBadge(a, now),
			PatientInitials: dashboard.Initials(a.PatientName),
		}
	}
	h.RespondWithJSON(w, http.StatusOK, views)
}

func (h *HTTPHandlerImpl) DashboardPatients(w http.ResponseWriter, r *http.Request) {
	s, ok := h.currentSession(w, r)
	if !ok {
		return
	}

	search := strings.TrimSpace(r.URL.Query().Get("search"))
	if search != "" {
		if err := h.validator.ValidateInput(search); err != nil {
			logging.Warn("Unusual user input", "search", search, "error", err)
			h.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	mode := dashboard.ParsePatientMode(r.URL.Query().Get("mode"))

	patients, err := h.dashboard.Patients(r.Context(), s.ID, search, mode)
	if err != nil {
		h.respondDashboardError(w, err)
		return
	}
	h.RespondWithJSON(w, http.StatusOK, patients)
}

func (h *HTTPHandlerImpl) DashboardCounts(w http.ResponseWriter, r *http.Request) {
	s, ok := h.currentSession(w, r)
	if !ok {
		return
	}
	counts, err := h.dashboard.Counts(r.Context(), s.ID)
	if err != nil {
		h.respondDashboardError(w, err)
		return
	}
	h.RespondWithJSON(w, http.StatusOK, counts)
}

// UpdateAppointmentStatus completes or cancels an upcoming appointment
func (h *HTTPHandlerImpl) UpdateAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	s, ok := h.currentSession(w, r)
	if !ok {
		return
	}

	var req StatusRequest
	if err := decodeJSON(r, &req); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	status, err := entities.ParseAppointmentStatus(req.Status)
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	appt, err := h.dashboard.UpdateStatus(r.Context(), s.ID, chi.URLParam(r, "id"), status)
	if err != nil {
		h.respondDashboardError(w, err)
		return
	}

	logging.Info("Appointment status updated", "appointment_id", appt.ID, "status", appt.Status)
	h.RespondWithJSON(w, http.StatusOK, map[string]any{
		"message":     fmt.Sprintf("Appointment %s successfully", strings.ToLower(string(appt.Status))),
		"appointment": appt,
	})
}

// ExportAppointments downloads the filtered appointment list as XLSX
func (h *HTTPHandlerImpl) ExportAppointments(w http.ResponseWriter, r *http.Request) {
	s, ok := h.currentSession(w, r)
	if !ok {
		return
	}
	appts, ok := h.filteredAppointments(w, r, s.ID)
	if !ok {
		return
	}

	now := h.now()
	body, err := dashboard.ExportXLSX(appts, now)
	if err != nil {
		logging.Error("Failed to export appointments", "error", err)
		h.RespondWithError(w, http.StatusInternalServerError, "failed to export appointments")
		return
	}

	filename := fmt.Sprintf("appointments-%s.xlsx", now.Format("2006-01-02"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
