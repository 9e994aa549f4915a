package handlers

import (
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pharmalytics/drugcost-api/data"
	"github.com/pharmalytics/drugcost-api/drugparser/entities"
	"github.com/pharmalytics/drugcost-api/forecast"
	"github.com/pharmalytics/drugcost-api/health"
	"github.com/pharmalytics/drugcost-api/interfaces"
	"github.com/pharmalytics/drugcost-api/recommend"
	"github.com/pharmalytics/drugcost-api/validation"
)

// ============================================================================
// BENCHMARKS
// ============================================================================

// benchHandler wires the handler against a synthetic catalog of n records
// without a ledger, so the hot paths are measured on their own.
func benchHandler(n int) interfaces.HTTPHandler {
	classes := []string{
		"Corticosteroids", "Statins", "Biologics", "Anticoagulants",
		"Opioid Analgesics", "SSRIs", "Beta Blockers", "Diuretics",
	}
	states := []string{"CA", "NY", "TX", "FL", "WA"}
	teCodes := []string{"AB", "BX", "NA"}

	records := make([]entities.DrugRecord, n)
	formulary := make([]entities.FormularyEntry, n)
	for i := range n {
		records[i] = entities.DrugRecord{
			NDC:              fmt.Sprintf("%011d", i),
			DrugName:         fmt.Sprintf("DRUG %04d", i),
			GenericName:      fmt.Sprintf("GENERIC %04d", i/2),
			TherapeuticClass: classes[i%len(classes)],
			TECode:           teCodes[i%len(teCodes)],
			PMPMCost:         float64(10 + i%200),
			MemberCount:      50 + i%500,
			TotalDrugCost:    float64(1000 + i*3),
			State:            states[i%len(states)],
			AvgAge:           40 + float64(i%30),
		}
		formulary[i] = entities.FormularyEntry{
			DrugName:    records[i].DrugName,
			RxCUI:       fmt.Sprintf("%d", 100000+i),
			NDC:         records[i].NDC,
			Tier:        1 + i%5,
			TierLabel:   entities.TierLabel(1 + i%5),
			PriorAuth:   i%4 == 0,
			StepTherapy: i%7 == 0,
		}
	}

	dc := data.NewDataContainer()
	byName, byClass, byGeneric := data.BuildIndexes(records)
	dc.UpdateData(records, byName, byClass, byGeneric, formulary, testHistory())
	dc.SetServerStartTime(time.Now())

	return NewHTTPHandler(
		dc,
		validation.NewDataValidator(),
		recommend.NewEngine(dc, nil),
		forecast.NewEstimator(dc),
		nil,
		health.NewHealthChecker(dc),
	)
}

func BenchmarkServeDrugs(b *testing.B) {
	handler := benchHandler(1000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/drugs", nil)
		handler.ServeDrugs(rr, req)
	}
}

func BenchmarkServeDrugStats(b *testing.B) {
	handler := benchHandler(1000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/drug-stats", nil)
		handler.ServeDrugStats(rr, req)
	}
}

func BenchmarkServeCostAnalysis(b *testing.B) {
	handler := benchHandler(1000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/cost-analysis", nil)
		handler.ServeCostAnalysis(rr, req)
	}
}

// BenchmarkRecommendDrugs measures the steady-state path, which hits the
// recommendation cache after the first iteration.
func BenchmarkRecommendDrugs(b *testing.B) {
	handler := benchHandler(1000)
	body := `{"drug_names": ["DRUG 0100"], "policy": "class"}`

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/recommend", strings.NewReader(body))
		handler.RecommendDrugs(rr, req)
	}
}

func BenchmarkServeFormulary_Search(b *testing.B) {
	handler := benchHandler(1000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/formulary?search=DRUG+09&limit=100", nil)
		handler.ServeFormulary(rr, req)
	}
}

func BenchmarkHealthCheckEndpoint(b *testing.B) {
	handler := benchHandler(1000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/health", nil)
		handler.HealthCheck(rr, req)
	}
}
