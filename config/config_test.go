package config

import (
	"os"
	"strings"
	"testing"
)

func cleanupEnv() {
	for _, key := range GetEnvVars() {
		_ = os.Unsetenv(key)
	}
}

func TestLoadValidConfig(t *testing.T) {
	// Set valid environment variables
	_ = os.Setenv("PORT", "8002")
	_ = os.Setenv("ADDRESS", "127.0.0.1")
	_ = os.Setenv("ENV", "dev")
	_ = os.Setenv("LOG_LEVEL", "info")
	_ = os.Setenv("DATA_FILE", "testdata/claims.csv")
	_ = os.Setenv("FORMULARY_FILE", "testdata/formulary.json")
	_ = os.Setenv("HISTORY_FILE", "testdata/spending.csv")
	_ = os.Setenv("IMPACT_DB", "testdata/impact.db")
	defer cleanupEnv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8002" {
		t.Errorf("Expected port 8002, got %s", cfg.Port)
	}
	if cfg.Address != "127.0.0.1" {
		t.Errorf("Expected address 127.0.0.1, got %s", cfg.Address)
	}
	if cfg.Env != "dev" {
		t.Errorf("Expected env dev, got %s", cfg.Env)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected log level info, got %s", cfg.LogLevel)
	}
	if cfg.DataFile != "testdata/claims.csv" {
		t.Errorf("Expected data file testdata/claims.csv, got %s", cfg.DataFile)
	}
	if cfg.FormularyFile != "testdata/formulary.json" {
		t.Errorf("Expected formulary file testdata/formulary.json, got %s", cfg.FormularyFile)
	}
	if cfg.HistoryFile != "testdata/spending.csv" {
		t.Errorf("Expected history file testdata/spending.csv, got %s", cfg.HistoryFile)
	}
	if cfg.ImpactDB != "testdata/impact.db" {
		t.Errorf("Expected impact db testdata/impact.db, got %s", cfg.ImpactDB)
	}
}

func TestLoadWithDefaults(t *testing.T) {
	// Clear environment variables to test defaults
	cleanupEnv()
	defer cleanupEnv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("Expected default port 8000, got %s", cfg.Port)
	}
	if cfg.Address != "127.0.0.1" {
		t.Errorf("Expected default address 127.0.0.1, got %s", cfg.Address)
	}
	if cfg.Env != "dev" {
		t.Errorf("Expected default env dev, got %s", cfg.Env)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level info, got %s", cfg.LogLevel)
	}
	if cfg.LogRetentionWeeks != 4 {
		t.Errorf("Expected default retention 4 weeks, got %d", cfg.LogRetentionWeeks)
	}
	if cfg.MaxLogFileSize != 104857600 {
		t.Errorf("Expected default max log file size 100MB, got %d", cfg.MaxLogFileSize)
	}
	if cfg.MaxRequestBody != 1048576 {
		t.Errorf("Expected default max request body 1MB, got %d", cfg.MaxRequestBody)
	}
	if cfg.MaxHeaderSize != 1048576 {
		t.Errorf("Expected default max header size 1MB, got %d", cfg.MaxHeaderSize)
	}
	if cfg.DataFile != "data/drug_costs.csv" {
		t.Errorf("Expected default data file, got %s", cfg.DataFile)
	}
	if cfg.FormularyFile != "" {
		t.Errorf("Expected empty formulary file by default, got %s", cfg.FormularyFile)
	}
	if cfg.HistoryFile != "" {
		t.Errorf("Expected empty history file by default, got %s", cfg.HistoryFile)
	}
	if cfg.ImpactDB != "data/cost_impact.db" {
		t.Errorf("Expected default impact db, got %s", cfg.ImpactDB)
	}
}

func TestImpactDBExplicitlyEmpty(t *testing.T) {
	// IMPACT_DB set to an empty value disables the ledger, unset keeps the default
	cleanupEnv()
	_ = os.Setenv("IMPACT_DB", "")
	defer cleanupEnv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.ImpactDB != "" {
		t.Errorf("Expected empty impact db when explicitly cleared, got %s", cfg.ImpactDB)
	}
}

func TestInvalidPort(t *testing.T) {
	// Test invalid port values (excluding empty string since it uses default)
	testCases := []struct {
		port     string
		expected string
	}{
		{"abc", "PORT must be a valid number"},
		{"0", "PORT must be between 1 and 65535"},
		{"65536", "PORT must be between 1 and 65535"},
		{"80", "PORT 80 is privileged"},
	}

	defer cleanupEnv()
	for _, tc := range testCases {
		cleanupEnv()
		_ = os.Setenv("PORT", tc.port)

		_, err := Load()
		if err == nil {
			t.Errorf("Expected error for port %s, got nil", tc.port)
			continue
		}
		if !strings.Contains(err.Error(), tc.expected) {
			t.Errorf("Expected error for port %s to contain %q, got: %v", tc.port, tc.expected, err)
		}
	}
}

func TestAddressValidation(t *testing.T) {
	testCases := []struct {
		address string
		wantErr bool
	}{
		{"127.0.0.1", false},
		{"localhost", false},
		{"::1", false},
		{"192.168.1.10", false},
		{"10.0.0.5", false},
		{"172.16.0.1", false},
		{"8.8.8.8", true},   // public IP
		{"invalid", true},   // not an IP
		{"999.1.1.1", true}, // malformed IP
	}

	defer cleanupEnv()
	for _, tc := range testCases {
		cleanupEnv()
		_ = os.Setenv("ADDRESS", tc.address)

		_, err := Load()
		if tc.wantErr && err == nil {
			t.Errorf("Expected error for address %s, got nil", tc.address)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("Expected no error for address %s, got %v", tc.address, err)
		}
	}
}

func TestEnvValidation(t *testing.T) {
	defer cleanupEnv()

	for _, env := range []string{"dev", "staging", "prod", "test"} {
		cleanupEnv()
		_ = os.Setenv("ENV", env)
		if _, err := Load(); err != nil {
			t.Errorf("Expected env %s to be accepted, got %v", env, err)
		}
	}

	cleanupEnv()
	_ = os.Setenv("ENV", "sandbox")
	_, err := Load()
	if err == nil {
		t.Fatal("Expected error for env sandbox, got nil")
	}
	if !strings.Contains(err.Error(), "ENV must be one of") {
		t.Errorf("Expected ENV error, got: %v", err)
	}
}

func TestLogLevelValidation(t *testing.T) {
	defer cleanupEnv()

	for _, level := range []string{"debug", "info", "warn", "error"} {
		cleanupEnv()
		_ = os.Setenv("LOG_LEVEL", level)
		if _, err := Load(); err != nil {
			t.Errorf("Expected log level %s to be accepted, got %v", level, err)
		}
	}

	cleanupEnv()
	_ = os.Setenv("LOG_LEVEL", "verbose")
	_, err := Load()
	if err == nil {
		t.Fatal("Expected error for log level verbose, got nil")
	}
	if !strings.Contains(err.Error(), "LOG_LEVEL must be one of") {
		t.Errorf("Expected LOG_LEVEL error, got: %v", err)
	}
}

func TestSizeLimitValidation(t *testing.T) {
	testCases := []struct {
		name     string
		key      string
		value    string
		expected string
	}{
		{"zero request body", "MAX_REQUEST_BODY", "0", "MAX_REQUEST_BODY must be positive"},
		{"negative request body", "MAX_REQUEST_BODY", "-5", "MAX_REQUEST_BODY must be positive"},
		{"oversized request body", "MAX_REQUEST_BODY", "209715200", "MAX_REQUEST_BODY is too large"},
		{"zero header size", "MAX_HEADER_SIZE", "0", "MAX_HEADER_SIZE must be positive"},
		{"oversized header size", "MAX_HEADER_SIZE", "209715200", "MAX_HEADER_SIZE is too large"},
	}

	defer cleanupEnv()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cleanupEnv()
			_ = os.Setenv(tc.key, tc.value)

			_, err := Load()
			if err == nil {
				t.Fatalf("Expected error for %s=%s, got nil", tc.key, tc.value)
			}
			if !strings.Contains(err.Error(), tc.expected) {
				t.Errorf("Expected error to contain %q, got: %v", tc.expected, err)
			}
		})
	}

	// Non-numeric values silently fall back to the default
	cleanupEnv()
	_ = os.Setenv("MAX_REQUEST_BODY", "lots")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected fallback to default for non-numeric value, got %v", err)
	}
	if cfg.MaxRequestBody != 1048576 {
		t.Errorf("Expected default 1MB for non-numeric value, got %d", cfg.MaxRequestBody)
	}
}

func TestLogRetentionValidation(t *testing.T) {
	defer cleanupEnv()

	for _, weeks := range []string{"0", "-1", "53"} {
		cleanupEnv()
		_ = os.Setenv("LOG_RETENTION_WEEKS", weeks)
		if _, err := Load(); err == nil {
			t.Errorf("Expected error for LOG_RETENTION_WEEKS=%s, got nil", weeks)
		}
	}

	for _, weeks := range []string{"1", "52"} {
		cleanupEnv()
		_ = os.Setenv("LOG_RETENTION_WEEKS", weeks)
		if _, err := Load(); err != nil {
			t.Errorf("Expected LOG_RETENTION_WEEKS=%s to be accepted, got %v", weeks, err)
		}
	}
}

func TestMaxLogFileSizeValidation(t *testing.T) {
	defer cleanupEnv()

	cleanupEnv()
	_ = os.Setenv("MAX_LOG_FILE_SIZE", "1024")
	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "too small") {
		t.Errorf("Expected too small error for 1KB log file size, got: %v", err)
	}

	cleanupEnv()
	_ = os.Setenv("MAX_LOG_FILE_SIZE", "2147483648")
	_, err = Load()
	if err == nil || !strings.Contains(err.Error(), "too large") {
		t.Errorf("Expected too large error for 2GB log file size, got: %v", err)
	}

	cleanupEnv()
	_ = os.Setenv("MAX_LOG_FILE_SIZE", "1048576")
	if _, err := Load(); err != nil {
		t.Errorf("Expected 1MB log file size to be accepted, got %v", err)
	}
}

func TestDataFileValidation(t *testing.T) {
	defer cleanupEnv()

	// Whitespace-only path is rejected, the default covers the unset case
	cleanupEnv()
	_ = os.Setenv("DATA_FILE", "   ")
	_, err := Load()
	if err == nil {
		t.Fatal("Expected error for whitespace DATA_FILE, got nil")
	}
	if !strings.Contains(err.Error(), "DATA_FILE cannot be empty") {
		t.Errorf("Expected DATA_FILE error, got: %v", err)
	}
}

func TestGetEnvVars(t *testing.T) {
	vars := GetEnvVars()
	if len(vars) != 12 {
		t.Errorf("Expected 12 environment variables, got %d", len(vars))
	}

	for _, want := range []string{"PORT", "DATA_FILE", "FORMULARY_FILE", "HISTORY_FILE", "IMPACT_DB"} {
		found := false
		for _, v := range vars {
			if v == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Expected %s in GetEnvVars()", want)
		}
	}
}

func TestValidateAllEnvVars(t *testing.T) {
	defer cleanupEnv()

	cleanupEnv()
	if err := ValidateAllEnvVars(); err == nil {
		t.Error("Expected error when PORT is unset, got nil")
	}

	_ = os.Setenv("PORT", "8000")
	if err := ValidateAllEnvVars(); err != nil {
		t.Errorf("Expected no error with PORT set, got %v", err)
	}
}
