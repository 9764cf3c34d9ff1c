package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/giygas/telehealth-api/diagnosis"
	"github.com/giygas/telehealth-api/logging"
	"github.com/giygas/telehealth-api/metrics"
	"github.com/giygas/telehealth-api/risk"
	"github.com/giygas/telehealth-api/session"
	"github.com/giygas/telehealth-api/validation"
)

const noMatchMessage = "No matching disease found. Please try a different description."

type SessionResponse struct {
	SessionID        string                  `json:"session_id"`
	CreatedAt        time.Time               `json:"created_at"`
	CameraPermission session.PermissionState `json:"camera_permission"`
}

// CreateSession starts a session with an empty cart
func (h *HTTPHandlerImpl) CreateSession(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Create()
	metrics.ActiveSessions.Set(float64(h.sessions.Count()))

	h.RespondWithJSON(w, http.StatusCreated, SessionResponse{
		SessionID:        s.ID,
		CreatedAt:        s.CreatedAt,
		CameraPermission: s.Permission(),
	})
}

// EndSession drops the session with its cart and logs its user out
func (h *HTTPHandlerImpl) EndSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.currentSession(w, r)
	if !ok {
		return
	}
	if err := h.records.ClearCurrentUser(r.Context(), s.ID); err != nil {
		logging.Warn("Failed to clear current user", "session_id", s.ID, "error", err)
	}
	h.sessions.Delete(s.ID)
	metrics.ActiveSessions.Set(float64(h.sessions.Count()))

	h.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "session ended"})
}

// AssessRisk scores a risk form. Field problems come back as a 400 with a
// fields map.
func (h *HTTPHandlerImpl) AssessRisk(w http.ResponseWriter, r *http.Request) {
	var form validation.RiskForm
	if err := decodeJSON(r, &form); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	in, err := validation.ParseRiskForm(form)
	if err != nil {
		var fe validation.FieldErrors
		if errors.As(err, &fe) {
			h.RespondWithJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:   http.StatusText(http.StatusBadRequest),
				Message: "invalid risk form",
				Code:    http.StatusBadRequest,
				Fields:  fe,
			})
			return
		}
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	assessment := risk.Evaluate(in)
	metrics.RiskAssessmentsTotal.WithLabelValues(string(assessment.Tier)).Inc()
	logging.Debug("Risk assessed", "score", assessment.Score, "tier", assessment.Tier)

	h.RespondWithJSON(w, http.StatusOK, assessment)
}

type DiagnosisRequest struct {
	PatientName string `json:"patient_name"`
	Diagnosis   string `json:"diagnosis"`
}

type DiagnosisResponse struct {
	PatientName     string                     `json:"patient_name"`
	Diagnosis       string                     `json:"diagnosis"`
	Matched         bool                       `json:"matched"`
	Label           string                     `json:"label,omitempty"`
	Method          diagnosis.MatchMethod      `json:"method,omitempty"`
	Message         string                     `json:"message,omitempty"`
	Recommendations []diagnosis.Recommendation `json:"recommendations"`
}

// ResolveDiagnosis matches the typed diagnosis and returns the recommended
// medicines. No match is a 200 with matched=false.
func (h *HTTPHandlerImpl) ResolveDiagnosis(w http.ResponseWriter, r *http.Request) {
	var req DiagnosisRequest
	if err := decodeJSON(r, &req); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	req.PatientName = strings.TrimSpace(req.PatientName)
	req.Diagnosis = strings.TrimSpace(req.Diagnosis)
	if req.PatientName == "" || req.Diagnosis == "" {
		h.RespondWithError(w, http.StatusBadRequest, "Please enter patient name and diagnosis")
		return
	}
	// punctuation alone is not an error here, the text simply will not match
	for _, input := range []string{req.PatientName, req.Diagnosis} {
		err := h.validator.ValidateInput(input)
		if err == nil || errors.Is(err, validation.ErrInvalidCharacters) {
			continue
		}
		logging.Warn("Unusual user input", "input", input, "error", err)
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := DiagnosisResponse{
		PatientName:     req.PatientName,
		Diagnosis:       req.Diagnosis,
		Recommendations: []diagnosis.Recommendation{},
	}

	match, ok := h.catalog.GetResolver().Resolve(req.Diagnosis)
	if !ok {
		metrics.DiagnosisResolutionsTotal.WithLabelValues("none").Inc()
		resp.Message = noMatchMessage
		h.RespondWithJSON(w, http.StatusOK, resp)
		return
	}

	metrics.DiagnosisResolutionsTotal.WithLabelValues(string(match.Method)).Inc()
	resp.Matched = true
	resp.Label = match.Label
	resp.Method = match.Method
	resp.Recommendations = diagnosis.Enrich(h.catalog.GetCatalog().Recommend(match.Label))
	h.RespondWithJSON(w, http.StatusOK, resp)
}

// ListDiagnoses returns the catalog labels in definition order
func (h *HTTPHandlerImpl) ListDiagnoses(w http.ResponseWriter, r *http.Request) {
	catalog := h.catalog.GetCatalog()
	h.RespondWithJSON(w, http.StatusOK, map[string]any{
		"diagnoses":    catalog.Labels(),
		"count":        catalog.Len(),
		"last_updated": h.catalog.GetLastUpdated(),
	})
}

// DiagnosisMedicines lists the medicines of one canonical label
func (h *HTTPHandlerImpl) DiagnosisMedicines(w http.ResponseWriter, r *http.Request) {
	label, err := url.PathUnescape(chi.URLParam(r, "label"))
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, "invalid diagnosis label")
		return
	}

	catalog := h.catalog.GetCatalog()
	if !catalog.Has(label) {
		h.RespondWithError(w, http.StatusNotFound, "diagnosis not found")
		return
	}

	h.RespondWithJSON(w, http.StatusOK, map[string]any{
		"label":     label,
		"medicines": diagnosis.Enrich(catalog.Recommend(label)),
	})
}
