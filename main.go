package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pharmalytics/drugcost-api/config"
	"github.com/pharmalytics/drugcost-api/data"
	"github.com/pharmalytics/drugcost-api/drugparser"
	"github.com/pharmalytics/drugcost-api/forecast"
	"github.com/pharmalytics/drugcost-api/handlers"
	"github.com/pharmalytics/drugcost-api/health"
	"github.com/pharmalytics/drugcost-api/impact"
	"github.com/pharmalytics/drugcost-api/interfaces"
	"github.com/pharmalytics/drugcost-api/logging"
	"github.com/pharmalytics/drugcost-api/recommend"
	"github.com/pharmalytics/drugcost-api/scheduler"
	"github.com/pharmalytics/drugcost-api/server"
	"github.com/pharmalytics/drugcost-api/validation"
)

func init() {
	// Read the env variables, falling back to the executable directory
	// when run outside the project root
	if err := godotenv.Load(); err != nil {
		if ex, exErr := os.Executable(); exErr == nil {
			_ = godotenv.Load(filepath.Join(filepath.Dir(ex), ".env"))
		}
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	logging.InitLoggerWithRetention("logs", cfg.LogRetentionWeeks)

	// Data container and CSV parser
	dataContainer := data.NewDataContainer()
	dataContainer.SetServerStartTime(time.Now())
	parser := drugparser.NewCSVParser(cfg.DataFile, cfg.FormularyFile, cfg.HistoryFile)

	// Initial catalog load plus twice-daily reloads. A failed first load is
	// fatal, the API must not serve an empty catalog.
	sched := scheduler.NewScheduler(dataContainer, parser)
	if err := sched.Start(); err != nil {
		logging.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	// Cost impact ledger, optional
	var ledger interfaces.ImpactStore
	if cfg.ImpactDB != "" {
		store, err := impact.NewSQLiteStore(cfg.ImpactDB)
		if err != nil {
			logging.Error("Failed to open cost impact ledger", "error", err, "path", cfg.ImpactDB)
			os.Exit(1)
		}
		defer store.Close()
		ledger = store
	} else {
		logging.Warn("Cost impact ledger disabled, IMPACT_DB is empty")
	}

	validator := validation.NewDataValidator()
	recommender := recommend.NewEngine(dataContainer, ledger)
	forecaster := forecast.NewEstimator(dataContainer)
	healthChecker := health.NewHealthChecker(dataContainer)

	handler := handlers.NewHTTPHandler(dataContainer, validator, recommender, forecaster, ledger, healthChecker)

	srv := server.NewServer(cfg, dataContainer, handler)

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Start the server in a goroutine
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Block until a signal is received
	<-quit

	// Create a context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Shutdown error", "error", err)
	}
}
