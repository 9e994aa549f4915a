package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pharmalytics/drugcost-api/data"
	"github.com/pharmalytics/drugcost-api/drugparser/entities"
	"github.com/pharmalytics/drugcost-api/forecast"
	"github.com/pharmalytics/drugcost-api/handlers"
	"github.com/pharmalytics/drugcost-api/health"
	"github.com/pharmalytics/drugcost-api/impact"
	"github.com/pharmalytics/drugcost-api/recommend"
	"github.com/pharmalytics/drugcost-api/validation"
)

// Catalog fixtures for endpoint testing
var testRecords = []entities.DrugRecord{
	{
		NDC:                    "00071015523",
		DrugName:               "LIPITOR",
		GenericName:            "ATORVASTATIN CALCIUM",
		TherapeuticClass:       "Statins",
		TECode:                 "AB",
		PMPMCost:               45.20,
		MemberCount:            800,
		TotalDrugCost:          36160,
		TotalPrescriptionFills: 2400,
		DrugInteractions:       entities.NoInteractionData,
		ClinicalEfficacy:       entities.NoEfficacyData,
		State:                  "CA",
		AvgAge:                 58,
	},
	{
		NDC:                    "00093715298",
		DrugName:               "SIMVASTATIN",
		GenericName:            "SIMVASTATIN",
		TherapeuticClass:       "Statins",
		TECode:                 "AB",
		PMPMCost:               12.40,
		MemberCount:            500,
		TotalDrugCost:          6200,
		TotalPrescriptionFills: 1500,
		DrugInteractions:       entities.NoInteractionData,
		ClinicalEfficacy:       entities.NoEfficacyData,
		State:                  "CA",
		AvgAge:                 61,
	},
	{
		NDC:                    "00074433902",
		DrugName:               "HUMIRA",
		GenericName:            "ADALIMUMAB",
		TherapeuticClass:       "Biologics",
		TECode:                 entities.NoTECode,
		PMPMCost:               512.75,
		MemberCount:            40,
		TotalDrugCost:          20510,
		TotalPrescriptionFills: 120,
		DrugInteractions:       entities.NoInteractionData,
		ClinicalEfficacy:       entities.NoEfficacyData,
		State:                  "NY",
		AvgAge:                 47,
	},
}

var testFormulary = []entities.FormularyEntry{
	{DrugName: "LIPITOR", RxCUI: "83367", NDC: "00071015523", Tier: 1, TierLabel: "Generic"},
}

var testHistory = map[string][]entities.SpendingPoint{
	"HUMIRA": {
		{Period: "2019", Amount: 1200},
		{Period: "2020", Amount: 2400},
		{Period: "2021", Amount: 3600},
	},
}

// Global test data container
var testDataContainer *data.DataContainer

func catalogReady() bool {
	return len(testDataContainer.GetRecords()) > 0
}

func TestMain(m *testing.M) {
	fmt.Println("Initializing test catalog...")
	testDataContainer = data.NewDataContainer()
	testDataContainer.SetServerStartTime(time.Now())

	byName, byClass, byGeneric := data.BuildIndexes(testRecords)
	testDataContainer.UpdateData(testRecords, byName, byClass, byGeneric, testFormulary, testHistory)
	fmt.Printf("Test catalog ready: %d records, %d formulary entries\n",
		len(testRecords), len(testFormulary))

	os.Exit(m.Run())
}

// newAPIRouter wires the real dependency graph onto a bare router, the same
// way main does but without the middleware stack, so endpoint behavior is
// exercised in isolation.
func newAPIRouter(t *testing.T) *chi.Mux {
	t.Helper()

	ledger, err := impact.NewSQLiteStore(filepath.Join(t.TempDir(), "impact.db"))
	if err != nil {
		t.Fatalf("Failed to open test ledger: %v", err)
	}
	t.Cleanup(func() { _ = ledger.Close() })

	validator := validation.NewDataValidator()
	recommender := recommend.NewEngine(testDataContainer, ledger)
	forecaster := forecast.NewEstimator(testDataContainer)
	healthChecker := health.NewHealthChecker(testDataContainer)

	handler := handlers.NewHTTPHandler(testDataContainer, validator, recommender, forecaster, ledger, healthChecker)

	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		r.Get("/drugs", handler.ServeDrugs)
		r.Get("/drug-stats", handler.ServeDrugStats)
		r.Post("/recommend", handler.RecommendDrugs)
		r.Post("/add-drug", handler.AddDrug)
		r.Get("/cost-analysis", handler.ServeCostAnalysis)
		r.Get("/formulary", handler.ServeFormulary)
		r.Get("/stats", handler.ServeFormularyStats)
		r.Post("/forecast", handler.ForecastDrug)
		r.Get("/forecast/drugs", handler.ServeForecastableDrugs)
		r.Route("/cia", func(r chi.Router) {
			r.Post("/add", handler.AddCostImpact)
			r.Get("/summary", handler.ServeCostImpactSummary)
			r.Get("/records", handler.ServeCostImpactRecords)
			r.Delete("/clear", handler.ClearCostImpact)
		})
		r.Get("/health", handler.HealthCheck)
	})

	return router
}

func TestEndpoints(t *testing.T) {
	if !catalogReady() {
		t.Fatal("Test catalog was not initialized")
	}

	router := newAPIRouter(t)

	testCases := []struct {
		name     string
		method   string
		endpoint string
		body     string
		expected int
	}{
		{"list drugs", "GET", "/api/drugs", "", http.StatusOK},
		{"drug stats", "GET", "/api/drug-stats", "", http.StatusOK},
		{"cost analysis", "GET", "/api/cost-analysis", "", http.StatusOK},
		{"formulary", "GET", "/api/formulary", "", http.StatusOK},
		{"formulary stats", "GET", "/api/stats", "", http.StatusOK},
		{"forecastable drugs", "GET", "/api/forecast/drugs", "", http.StatusOK},
		{"health", "GET", "/api/health", "", http.StatusOK},
		{"impact summary", "GET", "/api/cia/summary", "", http.StatusOK},
		{"impact records", "GET", "/api/cia/records", "", http.StatusOK},
		{"recommend substitution", "POST", "/api/recommend",
			`{"drug_names": ["LIPITOR"], "policy": "te"}`, http.StatusOK},
		{"recommend malformed body", "POST", "/api/recommend",
			`not-json`, http.StatusBadRequest},
		{"recommend unknown drug", "POST", "/api/recommend",
			`{"drug_names": ["NOSUCHDRUG"]}`, http.StatusNotFound},
		{"forecast spending", "POST", "/api/forecast",
			`{"drug_name": "HUMIRA", "steps": 2}`, http.StatusOK},
		{"forecast unknown drug", "POST", "/api/forecast",
			`{"drug_name": "NOSUCHDRUG", "steps": 2}`, http.StatusNotFound},
		{"forecast without history", "POST", "/api/forecast",
			`{"drug_name": "LIPITOR", "steps": 2}`, http.StatusUnprocessableEntity},
		{"add drug", "POST", "/api/add-drug",
			`{"drug_name": "ZOCOR", "generic_name": "SIMVASTATIN", "therapeutic_class": "Statins", "pmpm_cost": 18.5}`,
			http.StatusCreated},
		{"add drug missing fields", "POST", "/api/add-drug",
			`{}`, http.StatusBadRequest},
		{"record impact", "POST", "/api/cia/add",
			`{"original_cost": 150, "reduced_cost": 70}`, http.StatusCreated},
		{"clear impact", "DELETE", "/api/cia/clear", "", http.StatusOK},
		{"unknown endpoint", "GET", "/api/nothing", "", http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var req *http.Request
			if tc.body != "" {
				req = httptest.NewRequest(tc.method, tc.endpoint, strings.NewReader(tc.body))
				req.Header.Set("Content-Type", "application/json")
			} else {
				req = httptest.NewRequest(tc.method, tc.endpoint, nil)
			}

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			if rr.Code != tc.expected {
				t.Errorf("Expected status %d, got %d: %s", tc.expected, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestRecommendAcrossRealGraph(t *testing.T) {
	router := newAPIRouter(t)

	body := `{"drug_names": ["LIPITOR"], "policy": "te"}`
	req := httptest.NewRequest("POST", "/api/recommend", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "SIMVASTATIN") {
		t.Errorf("Expected SIMVASTATIN as the cheaper statin, got: %s", rr.Body.String())
	}
}

func TestDocumentationFileExists(t *testing.T) {
	// The router serves html/index.html at the root path
	if _, err := os.Stat(filepath.Join("html", "index.html")); err != nil {
		t.Errorf("Documentation page missing: %v", err)
	}
}
