// Package handlers implements the JSON API. Every route except session
// creation and health is scoped to the session named by the X-Session-ID
// header.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/giygas/telehealth-api/dashboard"
	"github.com/giygas/telehealth-api/interfaces"
	"github.com/giygas/telehealth-api/logging"
	"github.com/giygas/telehealth-api/session"
	"github.com/giygas/telehealth-api/store"
	"github.com/giygas/telehealth-api/videocall"
)

var _ interfaces.HTTPHandler = (*HTTPHandlerImpl)(nil)

// Deps are the collaborators of the handlers. Health may be nil.
type Deps struct {
	Catalog   interfaces.CatalogStore
	Validator interfaces.Validator
	Health    interfaces.HealthChecker
	Sessions  *session.Manager
	Records   *store.Records
	Dashboard *dashboard.Service
	Calls     *videocall.Registry
}

type HTTPHandlerImpl struct {
	catalog   interfaces.CatalogStore
	validator interfaces.Validator
	health    interfaces.HealthChecker
	sessions  *session.Manager
	records   *store.Records
	dashboard *dashboard.Service
	calls     *videocall.Registry
	now       func() time.Time
}

func NewHTTPHandler(deps Deps) *HTTPHandlerImpl {
	return &HTTPHandlerImpl{
		catalog:   deps.Catalog,
		validator: deps.Validator,
		health:    deps.Health,
		sessions:  deps.Sessions,
		records:   deps.Records,
		dashboard: deps.Dashboard,
		calls:     deps.Calls,
		now:       time.Now,
	}
}

// ErrorResponse is the body of every non-2xx answer
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Code    int               `json:"code"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// RespondWithJSON writes payload with the given status
func (h *HTTPHandlerImpl) RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Last-Modified", h.now().UTC().Format(http.TimeFormat))
	w.WriteHeader(code)
	_, _ = w.Write(data)
}

// RespondWithError writes an ErrorResponse
func (h *HTTPHandlerImpl) RespondWithError(w http.ResponseWriter, code int, message string) {
	h.RespondWithJSON(w, code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: message,
		Code:    code,
	})
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// currentSession resolves the session header. It writes the error response
// itself and returns false when the request cannot continue.
func (h *HTTPHandlerImpl) currentSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := strings.TrimSpace(r.Header.Get(session.Header))
	if id == "" {
		h.RespondWithError(w, http.StatusBadRequest, "missing "+session.Header+" header")
		return nil, false
	}
	s, err := h.sessions.Get(id)
	if err != nil {
		h.RespondWithError(w, http.StatusNotFound, "session not found or expired")
		return nil, false
	}
	return s, true
}

// HealthResponse keeps the health fields in a stable order
type HealthResponse struct {
	Status        string         `json:"status"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	Uptime        string         `json:"uptime"`
	Data          map[string]any `json:"data"`
	System        map[string]any `json:"system"`
}

func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, details, code := "healthy", map[string]any{}, http.StatusOK
	if h.health != nil {
		status, details, code = h.health.HealthCheck()
	}

	var uptime time.Duration
	if start := h.catalog.GetServerStartTime(); !start.IsZero() {
		uptime = h.now().Sub(start)
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	h.RespondWithJSON(w, code, HealthResponse{
		Status:        status,
		UptimeSeconds: int64(uptime.Seconds()),
		Uptime:        formatUptimeHuman(uptime),
		Data:          details,
		System: map[string]any{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb": int(m.Alloc / 1024 / 1024),
				"sys_mb":   int(m.Sys / 1024 / 1024),
				"num_gc":   m.NumGC,
			},
		},
	})
}

// formatUptimeHuman renders durations like "1d 2h 3m 4s"
func formatUptimeHuman(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", seconds))
	return strings.Join(parts, " ")
}
