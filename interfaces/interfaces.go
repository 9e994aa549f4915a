// Package interfaces defines core abstractions for the drug cost API
// to improve testability, maintainability, and separation of concerns.
package interfaces

import (
	"context"
	"iter"
	"net/http"
	"time"

	"github.com/pharmalytics/drugcost-api/drugparser/entities"
)

// DataQualityReport provides a summary of data quality issues
type DataQualityReport struct {
	DuplicateNDCs              []string // first few duplicated NDC codes
	RecordsWithoutNDC          int
	RecordsWithoutTECode       int // TE code defaulted to "NA"
	RecordsWithoutInteractions int
	RecordsWithoutEfficacy     int
	RecordsWithoutState        int
	DrugsWithoutHistory        int // catalog drugs with no spending series
}

// DataStore defines the contract for data storage operations.
// It provides thread-safe access to catalog, formulary and spending-history
// data with atomic operations for zero-downtime updates.
type DataStore interface {
	// Data retrieval methods
	GetRecords() []entities.DrugRecord
	GetRecordsByName() map[string][]entities.DrugRecord
	GetRecordsByClass() map[string][]entities.DrugRecord
	GetRecordsByGeneric() map[string][]entities.DrugRecord
	GetFormulary() []entities.FormularyEntry
	GetSpendingHistory() map[string][]entities.SpendingPoint
	FindByName(name string) (entities.DrugRecord, error)
	Filter(pred func(entities.DrugRecord) bool) iter.Seq[entities.DrugRecord]
	GetLastUpdated() time.Time
	IsUpdating() bool
	GetServerStartTime() time.Time
	Version() uint64

	// Data update methods
	UpdateData(records []entities.DrugRecord,
		byName, byClass, byGeneric map[string][]entities.DrugRecord,
		formulary []entities.FormularyEntry, history map[string][]entities.SpendingPoint)
	Append(rec entities.DrugRecord)
	BeginUpdate() bool
	EndUpdate()
}

// Parser defines the contract for loading the CSV exports into structured
// entities.
type Parser interface {
	// ParseDataset loads and cleans the claims drug dataset
	ParseDataset() ([]entities.DrugRecord, error)

	// ParseFormulary loads the plan formulary; empty when not configured
	ParseFormulary() ([]entities.FormularyEntry, error)

	// ParseSpendingHistory loads the per-drug annual spend series; empty
	// when not configured
	ParseSpendingHistory() (map[string][]entities.SpendingPoint, error)
}

// Recommender defines the contract for the substitution engine.
type Recommender interface {
	// Recommend analyzes one or two drug names under the given substitution
	// policy ("te" or "class"; empty means "te")
	Recommend(names []string, policy string) (*entities.RecommendationResult, error)
}

// Forecaster defines the contract for spending projections.
type Forecaster interface {
	// ForecastDrug projects a drug's annual spend the given number of steps
	// ahead
	ForecastDrug(name string, steps int) (*entities.DrugForecast, error)

	// ForecastableDrugs lists drugs with enough history to forecast, sorted
	ForecastableDrugs() []string
}

// ImpactStore defines the contract for the cost-impact ledger.
type ImpactStore interface {
	Record(ctx context.Context, originalCost, reducedCost float64) (int64, error)
	Summary(ctx context.Context) (*entities.CostImpactSummary, error)
	Records(ctx context.Context, limit int) ([]entities.CostImpact, error)
	Clear(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

// Scheduler defines the contract for job scheduling and health monitoring.
// It manages automated data reloads and system health checks.
type Scheduler interface {
	// Lifecycle management
	Start() error
	Stop()
}

// HTTPHandler defines the contract for HTTP request handlers.
// It provides a consistent interface for all API endpoints.
type HTTPHandler interface {
	ServeDrugs(w http.ResponseWriter, r *http.Request)
	ServeDrugStats(w http.ResponseWriter, r *http.Request)
	RecommendDrugs(w http.ResponseWriter, r *http.Request)
	AddDrug(w http.ResponseWriter, r *http.Request)
	ServeCostAnalysis(w http.ResponseWriter, r *http.Request)
	ServeFormulary(w http.ResponseWriter, r *http.Request)
	ServeFormularyStats(w http.ResponseWriter, r *http.Request)
	ForecastDrug(w http.ResponseWriter, r *http.Request)
	ServeForecastableDrugs(w http.ResponseWriter, r *http.Request)
	AddCostImpact(w http.ResponseWriter, r *http.Request)
	ServeCostImpactSummary(w http.ResponseWriter, r *http.Request)
	ServeCostImpactRecords(w http.ResponseWriter, r *http.Request)
	ClearCostImpact(w http.ResponseWriter, r *http.Request)

	// This will stay in all versions
	HealthCheck(w http.ResponseWriter, r *http.Request)
}

// HealthChecker defines the contract for health check functionality.
// It provides system health monitoring and reporting.
type HealthChecker interface {
	// HealthCheck returns current system health status with the HTTP code
	// the /health endpoint should answer with
	HealthCheck() (status string, data map[string]any, httpStatus int)

	// CalculateNextUpdate returns the next scheduled reload time
	CalculateNextUpdate() time.Time
}

// DataValidator defines the contract for data validation operations.
// It ensures data integrity and consistency.
type DataValidator interface {
	// ValidateRecord checks the invariants every stored record must hold
	ValidateRecord(rec *entities.DrugRecord) error

	// ValidateAddDrug checks a catalog append payload and reports every
	// field problem at once
	ValidateAddDrug(req *entities.AddDrugRequest) error

	// ValidateDataIntegrity performs comprehensive dataset validation
	ValidateDataIntegrity(records []entities.DrugRecord) error

	// ReportDataQuality generates a data quality report with all issues found
	ReportDataQuality(records []entities.DrugRecord, history map[string][]entities.SpendingPoint) *DataQualityReport

	// ValidateInput validates user input strings
	ValidateInput(input string) error

	// ValidateDrugName validates a drug name and returns its normalized form
	ValidateDrugName(input string) (string, error)
}
