package drugparser

import (
	"encoding/csv"
	"errors"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/pharmalytics/drugcost-api/drugparser/entities"
	"github.com/pharmalytics/drugcost-api/logging"
)

var historyColumns = []string{"drug_name", "year", "total_spend"}

// ParseSpendingHistory reads the long-format annual spending export into
// per-drug series. Duplicate drug/year rows are summed, and each series is
// sorted ascending by period (numerically when the periods are years).
func ParseSpendingHistory(path string) (map[string][]entities.SpendingPoint, error) {
	reader, err := openCSV(path)
	if err != nil {
		return nil, err
	}

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &DataFormatError{File: path, Reason: "empty file"}
	}
	if err != nil {
		return nil, &DataFormatError{File: path, Reason: "unreadable header: " + err.Error()}
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[normalizeHeader(h)] = i
	}
	var missing []string
	minRowLen := 0
	for _, c := range historyColumns {
		i, ok := cols[c]
		if !ok {
			missing = append(missing, c)
			continue
		}
		if i+1 > minRowLen {
			minRowLen = i + 1
		}
	}
	if len(missing) > 0 {
		return nil, &DataFormatError{File: path, Missing: missing}
	}

	totals := make(map[string]map[string]float64)
	lineCount := 0
	skippedFormatErrors := 0

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				skippedFormatErrors++
				continue
			}
			return nil, &DataFormatError{File: path, Reason: "read failed: " + err.Error()}
		}
		lineCount++

		if len(row) < minRowLen {
			skippedFormatErrors++
			continue
		}

		name := strings.ToUpper(strings.TrimSpace(row[cols["drug_name"]]))
		period := strings.TrimSpace(row[cols["year"]])
		if name == "" || period == "" {
			skippedFormatErrors++
			continue
		}
		amount, err := cleanCurrency(row[cols["total_spend"]])
		if err != nil || amount < 0 {
			skippedFormatErrors++
			continue
		}

		if totals[name] == nil {
			totals[name] = make(map[string]float64)
		}
		totals[name][period] += amount
	}

	history := make(map[string][]entities.SpendingPoint, len(totals))
	for name, byPeriod := range totals {
		series := make([]entities.SpendingPoint, 0, len(byPeriod))
		for period, amount := range byPeriod {
			series = append(series, entities.SpendingPoint{Period: period, Amount: amount})
		}
		sort.Slice(series, func(i, j int) bool {
			return periodLess(series[i].Period, series[j].Period)
		})
		history[name] = series
	}

	if skippedFormatErrors > 0 {
		logging.Info("Spending history skip statistics",
			"file", path,
			"format_errors", skippedFormatErrors,
			"total_lines", lineCount,
			"drugs_parsed", len(history))
	}

	return history, nil
}

// periodLess orders period labels numerically when both are integers, so
// "2024" sorts after "999" and before "2025". Non-numeric labels fall back
// to lexicographic order.
func periodLess(a, b string) bool {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)
	if aErr == nil && bErr == nil {
		return ai < bi
	}
	return a < b
}
