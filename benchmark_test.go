package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/giygas/telehealth-api/diagnosis"
)

// benchmarkStack calls the handlers directly, the rate limiter would
// otherwise reject most iterations
func benchmarkStack(b *testing.B) *stack {
	b.Helper()
	st := newStack(b, "")
	st.container.UpdateCatalog(diagnosis.DefaultCatalog(), nil)
	return st
}

func BenchmarkResolveDiagnosis(b *testing.B) {
	r := diagnosis.NewResolver(diagnosis.DefaultCatalog(), diagnosis.DefaultAliases())
	inputs := []string{"flu", "cold", "high blood pressure", "broken arm"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Resolve(inputs[i%len(inputs)])
	}
}

func BenchmarkDiagnosisHandler(b *testing.B) {
	st := benchmarkStack(b)
	body := `{"patient_name":"Asha","diagnosis":"migraine"}`

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodPost, "/diagnosis", strings.NewReader(body))
		st.handler.ResolveDiagnosis(httptest.NewRecorder(), req)
	}
}

func BenchmarkRiskHandler(b *testing.B) {
	st := benchmarkStack(b)
	body := `{"age":52,"gender":"male","height_cm":175,"weight_kg":92,"systolic":145,"diastolic":95,
		"cholesterol":250,"glucose":130,"smoking":"current","alcohol":"heavy","activity":"sedentary",
		"sleep_hours":5,"history":"diabetes"}`

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			req := httptest.NewRequest(http.MethodPost, "/risk/assess", strings.NewReader(body))
			st.handler.AssessRisk(httptest.NewRecorder(), req)
		}
	})
}

func BenchmarkMetricsThroughRouter(b *testing.B) {
	st := benchmarkStack(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		req.RemoteAddr = "127.0.0.1:3"
		st.router.ServeHTTP(httptest.NewRecorder(), req)
	}
}
