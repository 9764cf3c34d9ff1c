package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/giygas/telehealth-api/logging"
	"github.com/giygas/telehealth-api/metrics"
	"github.com/giygas/telehealth-api/store"
	"github.com/giygas/telehealth-api/videocall"
)

type StartCallRequest struct {
	AppointmentID string `json:"appointment_id"`
}

type StartCallResponse struct {
	Call         videocall.Info         `json:"call"`
	Participants videocall.Participants `json:"participants"`
}

type ToggleResponse struct {
	Kind    string `json:"kind"`
	Enabled bool   `json:"enabled"`
}

// StartCall joins the logged-in user to the room of one of their
// appointments
func (h *HTTPHandlerImpl) StartCall(w http.ResponseWriter, r *http.Request) {
	s, ok := h.currentSession(w, r)
	if !ok {
		return
	}

	var req StartCallRequest
	if err := decodeJSON(r, &req); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.AppointmentID) == "" {
		h.RespondWithError(w, http.StatusBadRequest, "appointment_id is required")
		return
	}

	current, err := h.records.CurrentUser(r.Context(), s.ID)
	if errors.Is(err, store.ErrUserNotFound) {
		h.RespondWithError(w, http.StatusUnauthorized, "login required")
		return
	}
	if err != nil {
		logging.Error("Failed to load current user", "session_id", s.ID, "error", err)
		h.RespondWithError(w, http.StatusInternalServerError, "failed to load current user")
		return
	}

	users, err := h.records.Users(r.Context())
	if err != nil {
		logging.Error("Failed to load users", "error", err)
		h.RespondWithError(w, http.StatusInternalServerError, "failed to load users")
		return
	}

	participants, err := videocall.ResolveParticipants(current, users, req.AppointmentID)
	if errors.Is(err, videocall.ErrAppointmentNotFound) {
		h.RespondWithError(w, http.StatusNotFound, "Appointment not found")
		return
	}
	if err != nil {
		h.RespondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	call, err := h.calls.Start(r.Context(), req.AppointmentID, current.ID)
	if err != nil {
		logging.Error("Failed to start call", "appointment_id", req.AppointmentID, "error", err)
		h.RespondWithError(w, http.StatusBadGateway, "failed to start call")
		return
	}
	metrics.ActiveCalls.Set(float64(h.calls.Count()))

	logging.Info("Call started", "call_id", call.ID(), "appointment_id", req.AppointmentID, "user_id", current.ID)
	h.RespondWithJSON(w, http.StatusCreated, StartCallResponse{
		Call:         call.Info(),
		Participants: participants,
	})
}

// ownedCall looks up the call in the URL and checks that it belongs to the
// session's user
func (h *HTTPHandlerImpl) ownedCall(w http.ResponseWriter, r *http.Request) (*videocall.Call, bool) {
	s, ok := h.currentSession(w, r)
	if !ok {
		return nil, false
	}
	call, err := h.calls.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondWithError(w, http.StatusNotFound, "call not found")
		return nil, false
	}
	if call.Info().UserID != s.UserID() {
		h.RespondWithError(w, http.StatusForbidden, "call belongs to another user")
		return nil, false
	}
	return call, true
}

func (h *HTTPHandlerImpl) GetCall(w http.ResponseWriter, r *http.Request) {
	call, ok := h.ownedCall(w, r)
	if !ok {
		return
	}
	h.RespondWithJSON(w, http.StatusOK, call.Info())
}

// ToggleCall flips the local video or audio track named by {kind}
func (h *HTTPHandlerImpl) ToggleCall(w http.ResponseWriter, r *http.Request) {
	call, ok := h.ownedCall(w, r)
	if !ok {
		return
	}

	kind := strings.ToLower(chi.URLParam(r, "kind"))
	var enabled bool
	switch kind {
	case "video":
		enabled = call.ToggleVideo()
	case "audio":
		enabled = call.ToggleAudio()
	default:
		h.RespondWithError(w, http.StatusBadRequest, "kind must be video or audio")
		return
	}
	h.RespondWithJSON(w, http.StatusOK, ToggleResponse{Kind: kind, Enabled: enabled})
}

func (h *HTTPHandlerImpl) EndCall(w http.ResponseWriter, r *http.Request) {
	call, ok := h.ownedCall(w, r)
	if !ok {
		return
	}

	info, err := h.calls.End(r.Context(), call.ID())
	metrics.ActiveCalls.Set(float64(h.calls.Count()))
	if errors.Is(err, videocall.ErrCallNotFound) {
		h.RespondWithError(w, http.StatusNotFound, "call not found")
		return
	}
	if err != nil {
		logging.Warn("Call teardown failed", "call_id", call.ID(), "error", err)
		h.RespondWithError(w, http.StatusBadGateway, "failed to end call")
		return
	}

	logging.Info("Call ended", "call_id", info.ID)
	h.RespondWithJSON(w, http.StatusOK, info)
}
