package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/giygas/telehealth-api/catalogparser"
	"github.com/giygas/telehealth-api/config"
	"github.com/giygas/telehealth-api/dashboard"
	"github.com/giygas/telehealth-api/data"
	"github.com/giygas/telehealth-api/diagnosis"
	"github.com/giygas/telehealth-api/handlers"
	"github.com/giygas/telehealth-api/health"
	"github.com/giygas/telehealth-api/scheduler"
	"github.com/giygas/telehealth-api/server"
	"github.com/giygas/telehealth-api/session"
	"github.com/giygas/telehealth-api/store"
	"github.com/giygas/telehealth-api/validation"
	"github.com/giygas/telehealth-api/videocall"
)

type stack struct {
	container *data.CatalogContainer
	scheduler *scheduler.Scheduler
	handler   *handlers.HTTPHandlerImpl
	router    http.Handler
}

// newStack wires the same components as runServer, reading the catalog from
// a TSV file
func newStack(t testing.TB, catalogFile string) *stack {
	t.Helper()

	kv := store.NewMemoryKV()
	records := store.NewRecords(kv)
	if _, err := records.SeedUsers(context.Background(), store.DemoUsers(time.Now())); err != nil {
		t.Fatalf("seed: %v", err)
	}

	container := data.NewCatalogContainer()
	container.SetServerStartTime(time.Now())
	validator := validation.NewDataValidator()
	sessions := session.NewManager(30 * time.Minute)
	calls := videocall.NewSimulatedRegistry(videocall.NewHub())
	t.Cleanup(func() { calls.EndAll(context.Background()) })

	sched := scheduler.NewScheduler(container, catalogparser.NewCatalogParser(catalogFile, ""), validator, sessions, time.Hour)

	cfg := &config.Config{
		Port:           "0",
		Address:        "localhost",
		Env:            config.EnvTest,
		MaxRequestBody: 1 << 20,
		MaxHeaderSize:  1 << 20,
		AllowedOrigins: []string{"*"},
		CatalogRefresh: time.Hour,
	}

	h := handlers.NewHTTPHandler(handlers.Deps{
		Catalog:   container,
		Validator: validator,
		Health: health.NewHealthChecker(container, cfg.CatalogRefresh,
			health.WithStore(kv),
			health.WithCounter("sessions", sessions.Count)),
		Sessions:  sessions,
		Records:   records,
		Dashboard: dashboard.NewService(records),
		Calls:     calls,
	})

	return &stack{
		container: container,
		scheduler: sched,
		handler:   h,
		router:    server.NewServer(cfg, h).Router(),
	}
}

func writeCatalog(t *testing.T, catalog *diagnosis.Catalog) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.tsv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := catalogparser.WriteTSV(f, catalog); err != nil {
		t.Fatalf("WriteTSV: %v", err)
	}
	return path
}

func (s *stack) request(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.RemoteAddr = "127.0.0.1:9999"
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func TestIntegrationCatalogFileRoundTrip(t *testing.T) {
	st := newStack(t, writeCatalog(t, diagnosis.DefaultCatalog()))

	// before the first load the service reports unhealthy
	if rr := st.request(t, http.MethodGet, "/health", ""); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("Health before load: expected 503, got %d", rr.Code)
	}

	if err := st.scheduler.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	got := st.container.GetCatalog()
	want := diagnosis.DefaultCatalog()
	if got.Len() != want.Len() || got.MedicineCount() != want.MedicineCount() {
		t.Fatalf("Round trip lost data: %d/%d diagnoses, %d/%d medicines",
			got.Len(), want.Len(), got.MedicineCount(), want.MedicineCount())
	}
	for _, label := range want.Labels() {
		if len(got.Recommend(label)) != len(want.Recommend(label)) {
			t.Errorf("Medicines of %s differ after round trip", label)
		}
	}

	if rr := st.request(t, http.MethodGet, "/health", ""); rr.Code != http.StatusOK {
		t.Errorf("Health after load: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	rr := st.request(t, http.MethodPost, "/diagnosis", `{"patient_name":"Asha","diagnosis":"uti"}`)
	var resp handlers.DiagnosisResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Label != "Urinary Tract Infection" || resp.Method != diagnosis.MatchAlias {
		t.Errorf("Unexpected diagnosis %+v", resp)
	}
}

func TestIntegrationReloadKeepsCatalogOnError(t *testing.T) {
	path := writeCatalog(t, diagnosis.DefaultCatalog())
	st := newStack(t, path)

	if err := st.scheduler.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	before := st.container.GetLastUpdated()

	if err := os.WriteFile(path, []byte("# nothing usable\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := st.scheduler.Reload(context.Background()); err == nil {
		t.Fatal("Expected an empty catalog file to fail")
	}

	if st.container.GetCatalog().Len() != diagnosis.DefaultCatalog().Len() {
		t.Error("Failed reload must keep the previous catalog")
	}
	if !st.container.GetLastUpdated().Equal(before) {
		t.Error("Failed reload must not touch the update time")
	}
}

func TestIntegrationConcurrentReadsDuringReload(t *testing.T) {
	st := newStack(t, writeCatalog(t, diagnosis.DefaultCatalog()))
	if err := st.scheduler.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan string, 100)

	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = st.scheduler.Reload(context.Background())
		}()
	}
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rr := st.request(t, http.MethodGet, "/diagnoses/Flu/medicines", "")
			if rr.Code != http.StatusOK {
				errs <- rr.Body.String()
			}
		}()
	}
	wg.Wait()
	close(errs)

	for body := range errs {
		t.Errorf("Read during reload failed: %s", body)
	}
}
