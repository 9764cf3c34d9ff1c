// Package interfaces defines the contracts between the service layers so
// handlers, the scheduler and health checks can be tested with fakes.
package interfaces

import (
	"context"
	"net/http"
	"time"

	"github.com/giygas/telehealth-api/diagnosis"
	"github.com/giygas/telehealth-api/risk"
)

// CatalogQualityReport summarises problems found in a loaded catalog
type CatalogQualityReport struct {
	DuplicateMedicineIDs  map[string][]int // label -> ids repeated within it
	MedicinesWithoutImage []string         // medicine names with no image mapping
	DanglingAliases       []string         // alias keys pointing to unknown labels
	EmptyDiagnoses        []string         // labels without any medicine
}

// HasIssues reports whether any check found a problem
func (r *CatalogQualityReport) HasIssues() bool {
	return len(r.DuplicateMedicineIDs) > 0 || len(r.MedicinesWithoutImage) > 0 ||
		len(r.DanglingAliases) > 0 || len(r.EmptyDiagnoses) > 0
}

// CatalogStore holds the live catalog and resolver. Reads never block and
// a reload swaps both atomically.
type CatalogStore interface {
	GetCatalog() *diagnosis.Catalog
	GetResolver() *diagnosis.Resolver
	GetLastUpdated() time.Time
	IsUpdating() bool
	GetServerStartTime() time.Time

	UpdateCatalog(catalog *diagnosis.Catalog, resolver *diagnosis.Resolver)
	BeginUpdate() bool
	EndUpdate()
}

// Parser loads a catalog from its configured source
type Parser interface {
	ParseCatalog(ctx context.Context) (*diagnosis.Catalog, error)
	Source() string
}

type Scheduler interface {
	Start() error
	Stop()
}

// HTTPHandler is the JSON API surface
type HTTPHandler interface {
	CreateSession(w http.ResponseWriter, r *http.Request)
	EndSession(w http.ResponseWriter, r *http.Request)
	AssessRisk(w http.ResponseWriter, r *http.Request)
	ResolveDiagnosis(w http.ResponseWriter, r *http.Request)
	ListDiagnoses(w http.ResponseWriter, r *http.Request)
	DiagnosisMedicines(w http.ResponseWriter, r *http.Request)

	GetCart(w http.ResponseWriter, r *http.Request)
	AddCartItem(w http.ResponseWriter, r *http.Request)
	ChangeQuantity(w http.ResponseWriter, r *http.Request)
	Checkout(w http.ResponseWriter, r *http.Request)

	GetCameraPermission(w http.ResponseWriter, r *http.Request)
	SetCameraPermission(w http.ResponseWriter, r *http.Request)

	Login(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	DashboardAppointments(w http.ResponseWriter, r *http.Request)
	DashboardPatients(w http.ResponseWriter, r *http.Request)
	DashboardCounts(w http.ResponseWriter, r *http.Request)
	UpdateAppointmentStatus(w http.ResponseWriter, r *http.Request)
	ExportAppointments(w http.ResponseWriter, r *http.Request)

	StartCall(w http.ResponseWriter, r *http.Request)
	GetCall(w http.ResponseWriter, r *http.Request)
	ToggleCall(w http.ResponseWriter, r *http.Request)
	EndCall(w http.ResponseWriter, r *http.Request)

	HealthCheck(w http.ResponseWriter, r *http.Request)
}

// HealthChecker reports service health. httpStatus is what /health answers.
type HealthChecker interface {
	HealthCheck() (status string, details map[string]any, httpStatus int)

	// CalculateNextUpdate returns when the catalog is next refreshed
	CalculateNextUpdate() time.Time
}

// Validator checks user input and catalog integrity
type Validator interface {
	ValidateInput(input string) error
	ValidateRiskInput(in risk.PatientRiskInput) error
	ReportCatalogQuality(catalog *diagnosis.Catalog, aliases map[string]string) *CatalogQualityReport
}
