package forecast

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/pharmalytics/drugcost-api/data"
	"github.com/pharmalytics/drugcost-api/drugparser/entities"
	"github.com/pharmalytics/drugcost-api/interfaces"
)

// Compile-time check to ensure Estimator implements Forecaster
var _ interfaces.Forecaster = (*Estimator)(nil)

const (
	// minHistoryPoints is the shortest series a trend can be fit on.
	minHistoryPoints = 2

	defaultSteps = 5
	maxSteps     = 30

	trendModel = "linear trend, 95% residual band"
)

// Estimator fits spending trends against the catalog's history snapshot.
type Estimator struct {
	store interfaces.DataStore
}

func NewEstimator(store interfaces.DataStore) *Estimator {
	return &Estimator{store: store}
}

// ForecastDrug projects annual spending for one drug. steps is clamped to
// [1, 30], with non-positive values taking the default of 5.
func (e *Estimator) ForecastDrug(name string, steps int) (*entities.DrugForecast, error) {
	if steps <= 0 {
		steps = defaultSteps
	}
	if steps > maxSteps {
		steps = maxSteps
	}

	normalized := entities.NormalizeName(name)
	series := e.store.GetSpendingHistory()[normalized]
	if len(series) == 0 {
		return nil, &data.NotFoundError{Names: []string{normalized}}
	}
	if len(series) < minHistoryPoints {
		return nil, &InsufficientDataError{DrugName: normalized, Points: len(series), Required: minHistoryPoints}
	}

	periods := make([]string, len(series))
	amounts := make([]float64, len(series))
	for i, point := range series {
		periods[i] = point.Period
		amounts[i] = point.Amount
	}

	points, lower, upper := fitLine(amounts).project(len(amounts), steps)

	pmpm := make([]float64, steps)
	for i, p := range points {
		pmpm[i] = p / 12
	}

	return &entities.DrugForecast{
		DrugName:           normalized,
		TrendModel:         trendModel,
		HistoricalPeriods:  periods,
		HistoricalSpending: amounts,
		Periods:            futurePeriods(periods, steps),
		Forecast:           points,
		PMPMCost:           pmpm,
		ConfidenceLower:    lower,
		ConfidenceUpper:    upper,
	}, nil
}

// ForecastableDrugs lists, sorted, every drug whose history is long enough
// to forecast.
func (e *Estimator) ForecastableDrugs() []string {
	history := e.store.GetSpendingHistory()
	names := make([]string, 0, len(history))
	for name, series := range history {
		if len(series) >= minHistoryPoints {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// futurePeriods continues the period labels past the history: numeric years
// keep counting, anything else falls back to relative labels.
func futurePeriods(periods []string, steps int) []string {
	labels := make([]string, steps)
	last, err := strconv.Atoi(periods[len(periods)-1])
	if err != nil {
		for i := range labels {
			labels[i] = fmt.Sprintf("Year +%d", i+1)
		}
		return labels
	}
	for i := range labels {
		labels[i] = strconv.Itoa(last + i + 1)
	}
	return labels
}
