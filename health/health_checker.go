// Package health reports whether the service can answer requests: the
// catalog is loaded and fresh, and the record store is reachable.
package health

import (
	"context"
	"math"
	"net/http"
	"time"

	"github.com/giygas/telehealth-api/interfaces"
)

// Pinger is satisfied by the record stores
type Pinger interface {
	Ping(ctx context.Context) error
}

type Option func(*HealthCheckerImpl)

// WithStore adds a reachability check on the record store
func WithStore(p Pinger) Option {
	return func(h *HealthCheckerImpl) { h.store = p }
}

// WithCounter reports a live count, such as sessions or calls, under name
func WithCounter(name string, fn func() int) Option {
	return func(h *HealthCheckerImpl) { h.counters[name] = fn }
}

type HealthCheckerImpl struct {
	catalog  interfaces.CatalogStore
	refresh  time.Duration
	store    Pinger
	counters map[string]func() int
	now      func() time.Time
}

var _ interfaces.HealthChecker = (*HealthCheckerImpl)(nil)

// NewHealthChecker judges catalog freshness against the refresh interval
func NewHealthChecker(catalog interfaces.CatalogStore, refresh time.Duration, opts ...Option) *HealthCheckerImpl {
	h := &HealthCheckerImpl{
		catalog:  catalog,
		refresh:  refresh,
		counters: map[string]func() int{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HealthCheck is unhealthy without a catalog or when the catalog missed
// four refreshes, degraded after two missed refreshes or when the store
// does not answer
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	catalog := h.catalog.GetCatalog()
	lastUpdate := h.catalog.GetLastUpdated()
	isUpdating := h.catalog.IsUpdating()
	age := h.now().Sub(lastUpdate)

	storeOK := true
	var storeErr error
	if h.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		storeErr = h.store.Ping(ctx)
		cancel()
		storeOK = storeErr == nil
	}

	switch {
	case catalog == nil || catalog.Len() == 0 || lastUpdate.IsZero():
		status, httpStatus = "unhealthy", http.StatusServiceUnavailable
	case age > 4*h.refresh:
		status, httpStatus = "unhealthy", http.StatusServiceUnavailable
	case age > 2*h.refresh, !storeOK:
		status, httpStatus = "degraded", http.StatusServiceUnavailable
	default:
		status, httpStatus = "healthy", http.StatusOK
	}

	data = map[string]any{
		"last_update":       lastUpdate.Format(time.RFC3339),
		"catalog_age_hours": math.Round(age.Hours()*10) / 10,
		"is_updating":       isUpdating,
		"next_update":       h.CalculateNextUpdate().Format(time.RFC3339),
		"store_ok":          storeOK,
	}
	if catalog != nil {
		data["diagnoses"] = catalog.Len()
		data["medicines"] = catalog.MedicineCount()
	}
	if storeErr != nil {
		data["store_error"] = storeErr.Error()
	}
	if start := h.catalog.GetServerStartTime(); !start.IsZero() {
		data["uptime_seconds"] = int64(h.now().Sub(start).Seconds())
	}
	for name, fn := range h.counters {
		data[name] = fn()
	}

	return status, data, httpStatus
}

// CalculateNextUpdate is one refresh interval after the last load, or now
// when the catalog was never loaded or the refresh is overdue
func (h *HealthCheckerImpl) CalculateNextUpdate() time.Time {
	now := h.now()
	last := h.catalog.GetLastUpdated()
	if last.IsZero() {
		return now
	}
	next := last.Add(h.refresh)
	if next.Before(now) {
		return now
	}
	return next
}
