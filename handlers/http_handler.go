// Package handlers provides HTTP request handlers for the drug cost API
// endpoints. This file implements the HTTPHandler interface with dependency
// injection.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pharmalytics/drugcost-api/data"
	"github.com/pharmalytics/drugcost-api/drugparser/entities"
	"github.com/pharmalytics/drugcost-api/forecast"
	"github.com/pharmalytics/drugcost-api/interfaces"
	"github.com/pharmalytics/drugcost-api/logging"
	"github.com/pharmalytics/drugcost-api/metrics"
	"github.com/pharmalytics/drugcost-api/validation"
)

// Compile-time check to ensure HTTPHandlerImpl implements HTTPHandler
var _ interfaces.HTTPHandler = (*HTTPHandlerImpl)(nil)

const (
	formularyPageSize    = 50
	formularyMaxPageSize = 500
)

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	dataStore     interfaces.DataStore
	validator     interfaces.DataValidator
	recommender   interfaces.Recommender
	forecaster    interfaces.Forecaster
	impactStore   interfaces.ImpactStore // nil when the ledger is disabled
	healthChecker interfaces.HealthChecker
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies.
// impactStore may be nil, which answers the ledger endpoints with 503.
func NewHTTPHandler(
	dataStore interfaces.DataStore,
	validator interfaces.DataValidator,
	recommender interfaces.Recommender,
	forecaster interfaces.Forecaster,
	impactStore interfaces.ImpactStore,
	healthChecker interfaces.HealthChecker,
) interfaces.HTTPHandler {
	return &HTTPHandlerImpl{
		dataStore:     dataStore,
		validator:     validator,
		recommender:   recommender,
		forecaster:    forecaster,
		impactStore:   impactStore,
		healthChecker: healthChecker,
	}
}

// RespondWithJSON writes a JSON response
func (h *HTTPHandlerImpl) RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	RespondWithJSON(w, code, payload)
}

// RespondWithError writes a JSON error response
func (h *HTTPHandlerImpl) RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithError(w, code, message)
}

// respondWithDomainError maps typed domain errors to their HTTP responses.
// Anything unrecognized is a 500 with the detail kept in the logs.
func (h *HTTPHandlerImpl) respondWithDomainError(w http.ResponseWriter, err error) {
	var notFound *data.NotFoundError
	var invalid *validation.ValidationError
	var insufficient *forecast.InsufficientDataError

	switch {
	case errors.As(err, &notFound):
		h.RespondWithError(w, http.StatusNotFound, notFound.Error())
	case errors.As(err, &invalid):
		h.RespondWithJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":   http.StatusText(http.StatusBadRequest),
			"message": invalid.Error(),
			"code":    http.StatusBadRequest,
			"fields":  invalid.Fields,
		})
	case errors.As(err, &insufficient):
		h.RespondWithError(w, http.StatusUnprocessableEntity, insufficient.Error())
	default:
		logging.Error("Request failed", "error", err)
		h.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// ledgerAvailable answers 503 and returns false when the ledger is disabled
func (h *HTTPHandlerImpl) ledgerAvailable(w http.ResponseWriter) bool {
	if h.impactStore == nil {
		h.RespondWithError(w, http.StatusServiceUnavailable, "Cost impact ledger is disabled")
		return false
	}
	return true
}

// ServeDrugs returns the catalog deduplicated by drug name
func (h *HTTPHandlerImpl) ServeDrugs(w http.ResponseWriter, r *http.Request) {
	records := h.dataStore.GetRecords()

	seen := make(map[string]bool, len(records))
	drugs := make([]entities.DrugRecord, 0, len(records))
	for _, rec := range records {
		name := entities.NormalizeName(rec.DrugName)
		if seen[name] {
			continue
		}
		seen[name] = true
		drugs = append(drugs, rec)
	}
	sort.Slice(drugs, func(i, j int) bool {
		return drugs[i].DrugName < drugs[j].DrugName
	})

	h.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"drugs":       drugs,
		"total_count": len(drugs),
	})
}

// ServeDrugStats returns catalog-wide aggregate statistics
func (h *HTTPHandlerImpl) ServeDrugStats(w http.ResponseWriter, r *http.Request) {
	stats := data.ComputeStats(h.dataStore.GetRecords())
	h.RespondWithJSON(w, http.StatusOK, stats)
}

// ServeCostAnalysis returns cost aggregates by class, state and age band
func (h *HTTPHandlerImpl) ServeCostAnalysis(w http.ResponseWriter, r *http.Request) {
	analysis := data.ComputeCostAnalysis(h.dataStore.GetRecords())
	h.RespondWithJSON(w, http.StatusOK, analysis)
}

// RecommendDrugs analyzes one or two drugs and proposes substitutions
func (h *HTTPHandlerImpl) RecommendDrugs(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DrugNames []string `json:"drug_names"`
		Policy    string   `json:"policy"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.DrugNames) == 0 {
		h.RespondWithError(w, http.StatusBadRequest, "drug_names is required")
		return
	}

	names := make([]string, 0, len(req.DrugNames))
	for _, name := range req.DrugNames {
		validated, err := h.validator.ValidateDrugName(name)
		if err != nil {
			h.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		names = append(names, validated)
	}

	result, err := h.recommender.Recommend(names, req.Policy)
	if err != nil {
		h.respondWithDomainError(w, err)
		return
	}

	metrics.RecommendationsTotal.WithLabelValues(result.Analysis.Outcome).Inc()
	h.RespondWithJSON(w, http.StatusOK, result)
}

// AddDrug appends a record to the in-memory catalog
func (h *HTTPHandlerImpl) AddDrug(w http.ResponseWriter, r *http.Request) {
	var req entities.AddDrugRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validator.ValidateAddDrug(&req); err != nil {
		h.respondWithDomainError(w, err)
		return
	}

	rec := req.ToRecord()
	if rec.NDC == "" {
		rec.NDC = uuid.NewString()
	}

	h.dataStore.Append(rec)
	logging.Info("Drug added to catalog", "drug_name", rec.DrugName, "ndc", rec.NDC)

	h.RespondWithJSON(w, http.StatusCreated, rec)
}

// ServeFormulary returns formulary entries with filtering and pagination
func (h *HTTPHandlerImpl) ServeFormulary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	search := strings.ToUpper(strings.TrimSpace(q.Get("search")))

	tier := 0
	if tierStr := q.Get("tier"); tierStr != "" {
		parsed, err := strconv.Atoi(tierStr)
		if err != nil || parsed < 1 {
			h.RespondWithError(w, http.StatusBadRequest, "Invalid tier")
			return
		}
		tier = parsed
	}

	var paFilter *bool
	if paStr := q.Get("pa"); paStr != "" {
		parsed, err := strconv.ParseBool(paStr)
		if err != nil {
			h.RespondWithError(w, http.StatusBadRequest, "Invalid pa value")
			return
		}
		paFilter = &parsed
	}

	page := 1
	if pageStr := q.Get("page"); pageStr != "" {
		parsed, err := strconv.Atoi(pageStr)
		if err != nil || parsed < 1 {
			logging.Warn("Unusual user input", "page", pageStr)
			h.RespondWithError(w, http.StatusBadRequest, "Invalid page number")
			return
		}
		page = parsed
	}

	limit := formularyPageSize
	if limitStr := q.Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 || parsed > formularyMaxPageSize {
			h.RespondWithError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	entries := h.dataStore.GetFormulary()
	filtered := make([]entities.FormularyEntry, 0, len(entries))
	for _, entry := range entries {
		if search != "" &&
			!strings.Contains(strings.ToUpper(entry.DrugName), search) &&
			!strings.Contains(entry.RxCUI, search) &&
			!strings.Contains(entry.NDC, search) {
			continue
		}
		if tier != 0 && entry.Tier != tier {
			continue
		}
		if paFilter != nil && entry.PriorAuth != *paFilter {
			continue
		}
		filtered = append(filtered, entry)
	}

	totalItems := len(filtered)
	start := (page - 1) * limit
	if start >= totalItems && totalItems > 0 {
		h.RespondWithError(w, http.StatusNotFound, "Page not found")
		return
	}
	end := start + limit
	if end > totalItems {
		end = totalItems
	}
	if start > totalItems {
		start = totalItems
	}

	maxPage := (totalItems + limit - 1) / limit

	h.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"data":       filtered[start:end],
		"page":       page,
		"pageSize":   limit,
		"totalItems": totalItems,
		"maxPage":    maxPage,
	})
}

// ServeFormularyStats returns utilization-management totals
func (h *HTTPHandlerImpl) ServeFormularyStats(w http.ResponseWriter, r *http.Request) {
	entries := h.dataStore.GetFormulary()

	stats := entities.FormularyStats{Total: len(entries)}
	for _, entry := range entries {
		if entry.PriorAuth {
			stats.PriorAuth++
		}
		if entry.StepTherapy {
			stats.StepTherapy++
		}
	}

	h.RespondWithJSON(w, http.StatusOK, stats)
}

// ForecastDrug projects a drug's annual spending forward
func (h *HTTPHandlerImpl) ForecastDrug(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DrugName string `json:"drug_name"`
		Steps    int    `json:"steps"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	name, err := h.validator.ValidateDrugName(req.DrugName)
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	projection, err := h.forecaster.ForecastDrug(name, req.Steps)
	if err != nil {
		h.respondWithDomainError(w, err)
		return
	}

	h.RespondWithJSON(w, http.StatusOK, projection)
}

// ServeForecastableDrugs lists drugs with enough history to forecast
func (h *HTTPHandlerImpl) ServeForecastableDrugs(w http.ResponseWriter, r *http.Request) {
	drugs := h.forecaster.ForecastableDrugs()
	h.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"drugs": drugs,
		"count": len(drugs),
	})
}

// AddCostImpact records a manually reported saving in the ledger
func (h *HTTPHandlerImpl) AddCostImpact(w http.ResponseWriter, r *http.Request) {
	if !h.ledgerAvailable(w) {
		return
	}

	var req struct {
		OriginalCost *float64 `json:"original_cost"`
		ReducedCost  *float64 `json:"reduced_cost"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	verr := &validation.ValidationError{}
	switch {
	case req.OriginalCost == nil:
		verr.Add("original_cost", "is required")
	case *req.OriginalCost < 0:
		verr.Add("original_cost", "cannot be negative")
	}
	switch {
	case req.ReducedCost == nil:
		verr.Add("reduced_cost", "is required")
	case *req.ReducedCost < 0:
		verr.Add("reduced_cost", "cannot be negative")
	}
	if len(verr.Fields) > 0 {
		h.respondWithDomainError(w, verr)
		return
	}

	id, err := h.impactStore.Record(r.Context(), *req.OriginalCost, *req.ReducedCost)
	if err != nil {
		h.respondWithDomainError(w, err)
		return
	}

	h.RespondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"id":     id,
		"status": "recorded",
	})
}

// ServeCostImpactSummary returns the aggregated ledger totals
func (h *HTTPHandlerImpl) ServeCostImpactSummary(w http.ResponseWriter, r *http.Request) {
	if !h.ledgerAvailable(w) {
		return
	}

	summary, err := h.impactStore.Summary(r.Context())
	if err != nil {
		h.respondWithDomainError(w, err)
		return
	}

	h.RespondWithJSON(w, http.StatusOK, summary)
}

// ServeCostImpactRecords returns recent ledger entries, newest first
func (h *HTTPHandlerImpl) ServeCostImpactRecords(w http.ResponseWriter, r *http.Request) {
	if !h.ledgerAvailable(w) {
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			h.RespondWithError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	records, err := h.impactStore.Records(r.Context(), limit)
	if err != nil {
		h.respondWithDomainError(w, err)
		return
	}
	if records == nil {
		records = []entities.CostImpact{}
	}

	h.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"records": records,
		"count":   len(records),
	})
}

// ClearCostImpact wipes the ledger
func (h *HTTPHandlerImpl) ClearCostImpact(w http.ResponseWriter, r *http.Request) {
	if !h.ledgerAvailable(w) {
		return
	}

	deleted, err := h.impactStore.Clear(r.Context())
	if err != nil {
		h.respondWithDomainError(w, err)
		return
	}

	logging.Info("Cost impact ledger cleared", "deleted", deleted)
	h.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "cleared",
		"deleted": deleted,
	})
}

// HealthResponse defines the structure for consistent JSON ordering
type HealthResponse struct {
	Status        string                 `json:"status"`
	UptimeSeconds float64                `json:"uptime_seconds"`
	UptimeHuman   string                 `json:"uptime_human"`
	Data          map[string]interface{} `json:"data"`
	System        map[string]interface{} `json:"system"`
}

// HealthCheck returns server health information
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, healthData, httpStatus := h.healthChecker.HealthCheck()

	uptime := time.Since(h.dataStore.GetServerStartTime())

	ledgerState := "disabled"
	if h.impactStore != nil {
		ctx, cancel := context.WithTimeout(r.Context(), time.Second)
		defer cancel()
		if err := h.impactStore.Ping(ctx); err != nil {
			ledgerState = "unavailable"
		} else {
			ledgerState = "ok"
		}
	}

	healthData["api_version"] = "1.0"
	healthData["next_update"] = h.healthChecker.CalculateNextUpdate().Format(time.RFC3339)
	healthData["ledger"] = ledgerState

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:        status,
		UptimeSeconds: uptime.Seconds(),
		UptimeHuman:   formatUptimeHuman(uptime),
		Data:          healthData,
		System: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc_mb":       int(m.Alloc / 1024 / 1024),
				"total_alloc_mb": int(m.TotalAlloc / 1024 / 1024),
				"sys_mb":         int(m.Sys / 1024 / 1024),
				"num_gc":         m.NumGC,
			},
		},
	}

	h.RespondWithJSON(w, httpStatus, response)
}
