package forecast

import "fmt"

// InsufficientDataError reports a drug whose spending history is too short
// to fit a trend.
type InsufficientDataError struct {
	DrugName string
	Points   int
	Required int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("not enough spending history for %s: %d points, need at least %d",
		e.DrugName, e.Points, e.Required)
}
