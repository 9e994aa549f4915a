// Package scheduler provides automated catalog reload scheduling and freshness
// monitoring for the drug cost API. It handles cron-based reloads of the CSV
// exports and coordinates refresh operations with the data container using
// dependency injection.
package scheduler

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/pharmalytics/drugcost-api/data"
	"github.com/pharmalytics/drugcost-api/interfaces"
	"github.com/pharmalytics/drugcost-api/logging"
	"github.com/pharmalytics/drugcost-api/metrics"
	"github.com/pharmalytics/drugcost-api/validation"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Scheduler handles catalog reloads and freshness monitoring using dependency injection
type Scheduler struct {
	dataStore interfaces.DataStore
	parser    interfaces.Parser
	scheduler *gocron.Scheduler
}

// NewScheduler creates a new scheduler instance with injected dependencies
func NewScheduler(dataStore interfaces.DataStore, parser interfaces.Parser) *Scheduler {
	return &Scheduler{
		dataStore: dataStore,
		parser:    parser,
		scheduler: gocron.NewScheduler(time.Local),
	}
}

// Start initializes the scheduler with catalog reloads and freshness monitoring
func (s *Scheduler) Start() error {
	// Initial load
	if err := s.Reload(); err != nil {
		logging.Error("Failed to perform initial catalog load", "error", err)
		return fmt.Errorf("initial catalog load failed: %w", err)
	}

	// Schedule reloads at 06:00 and 18:00 daily
	_, err := s.scheduler.Every(1).Days().At("06:00;18:00").Do(func() {
		if err := s.Reload(); err != nil {
			logging.Error("Failed to reload catalog", "error", err)
		}
	})

	if err != nil {
		logging.Error("Failed to schedule reloads", "error", err)
		return fmt.Errorf("failed to schedule reloads: %w", err)
	}

	s.scheduler.StartAsync()

	// Start freshness monitoring
	s.startFreshnessMonitoring()

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// Reload performs a complete catalog refresh using injected dependencies
func (s *Scheduler) Reload() error {
	// Prevent concurrent reloads
	if !s.dataStore.BeginUpdate() {
		logging.Info("Reload already in progress, skipping...")
		return nil
	}
	defer s.dataStore.EndUpdate()

	logging.Info(fmt.Sprintf("Starting catalog reload at: %s", time.Now().Format(time.RFC3339)))
	start := time.Now()

	// Parse the exports using the injected parser
	newRecords, err := s.parser.ParseDataset()
	if err != nil {
		metrics.DataReloadsTotal.WithLabelValues("failure").Inc()
		logging.Error("Failed to parse drug dataset", "error", err)
		return fmt.Errorf("failed to parse drug dataset: %w", err)
	}

	newFormulary, err := s.parser.ParseFormulary()
	if err != nil {
		metrics.DataReloadsTotal.WithLabelValues("failure").Inc()
		logging.Error("Failed to parse formulary", "error", err)
		return fmt.Errorf("failed to parse formulary: %w", err)
	}

	newHistory, err := s.parser.ParseSpendingHistory()
	if err != nil {
		metrics.DataReloadsTotal.WithLabelValues("failure").Inc()
		logging.Error("Failed to parse spending history", "error", err)
		return fmt.Errorf("failed to parse spending history: %w", err)
	}

	byName, byClass, byGeneric := data.BuildIndexes(newRecords)

	validator := validation.NewDataValidator()
	report := validator.ReportDataQuality(newRecords, newHistory)

	// Log duplicate NDC codes
	if len(report.DuplicateNDCs) > 0 {
		logging.Warn("Duplicate NDC codes detected",
			"total", len(report.DuplicateNDCs),
			"ndc_list", report.DuplicateNDCs,
		)
	}

	// Log records missing identifiers or TE codes
	if report.RecordsWithoutNDC > 0 {
		logging.Warn("Records without NDC codes", "count", report.RecordsWithoutNDC)
	}
	if report.RecordsWithoutTECode > 0 {
		logging.Warn("Records without TE codes", "count", report.RecordsWithoutTECode)
	}

	// Log catalog drugs that have no spending history
	if report.DrugsWithoutHistory > 0 {
		logging.Warn("Catalog drugs without spending history", "count", report.DrugsWithoutHistory)
	}

	// Atomic swap using the injected data store
	s.dataStore.UpdateData(newRecords, byName, byClass, byGeneric, newFormulary, newHistory)

	metrics.DataReloadsTotal.WithLabelValues("success").Inc()
	metrics.CatalogRecords.Set(float64(len(newRecords)))

	elapsed := time.Since(start)
	logging.Info("Catalog reload completed",
		"duration", elapsed.String(),
		"record_count", len(newRecords),
		"formulary_count", len(newFormulary),
		"history_series", len(newHistory))

	return nil
}

// startFreshnessMonitoring watches the age of the loaded catalog
func (s *Scheduler) startFreshnessMonitoring() {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			lastUpdate := s.dataStore.GetLastUpdated()
			if time.Since(lastUpdate) > 25*time.Hour {
				logging.Warn("Catalog hasn't been reloaded in over 25 hours")
			}
		}
	}()
}

// CalculateNextUpdate returns the next scheduled reload time
func CalculateNextUpdate() time.Time {
	now := time.Now()
	next6AM := time.Date(now.Year(), now.Month(), now.Day(), 6, 0, 0, 0, now.Location())
	next6PM := time.Date(now.Year(), now.Month(), now.Day(), 18, 0, 0, 0, now.Location())

	if now.Before(next6AM) {
		return next6AM
	} else if now.Before(next6PM) {
		return next6PM
	}
	return next6AM.Add(24 * time.Hour)
}
