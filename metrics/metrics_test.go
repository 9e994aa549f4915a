package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddleware(t *testing.T) {
	router := chi.NewRouter()
	router.Use(Metrics)
	router.Get("/api/drugs", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	before := testutil.ToFloat64(HTTPRequestTotals.WithLabelValues("GET", "/api/drugs", "200"))

	req := httptest.NewRequest("GET", "/api/drugs", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	after := testutil.ToFloat64(HTTPRequestTotals.WithLabelValues("GET", "/api/drugs", "200"))
	if after != before+1 {
		t.Errorf("Expected request counter to increase by 1, got %f then %f", before, after)
	}
}

func TestMetricsMiddlewareCapturesStatus(t *testing.T) {
	router := chi.NewRouter()
	router.Use(Metrics)
	router.Get("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})

	before := testutil.ToFloat64(HTTPRequestTotals.WithLabelValues("GET", "/missing", "404"))

	req := httptest.NewRequest("GET", "/missing", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	after := testutil.ToFloat64(HTTPRequestTotals.WithLabelValues("GET", "/missing", "404"))
	if after != before+1 {
		t.Errorf("Expected 404 counter to increase by 1, got %f then %f", before, after)
	}
}

func TestCatalogGauge(t *testing.T) {
	CatalogRecords.Set(1200)

	if v := testutil.ToFloat64(CatalogRecords); v != 1200 {
		t.Errorf("Expected catalog gauge 1200, got %f", v)
	}
}

func TestReloadCounterByResult(t *testing.T) {
	before := testutil.ToFloat64(DataReloadsTotal.WithLabelValues("success"))
	DataReloadsTotal.WithLabelValues("success").Inc()

	after := testutil.ToFloat64(DataReloadsTotal.WithLabelValues("success"))
	if after != before+1 {
		t.Errorf("Expected success reload counter to increase, got %f then %f", before, after)
	}
}
