package drugparser

import (
	"fmt"
	"strings"
)

// DataFormatError reports a dataset file that cannot be used at all, such as
// an empty file or a header missing required columns. Load-time callers treat
// it as fatal.
type DataFormatError struct {
	File    string
	Missing []string
	Reason  string
}

func (e *DataFormatError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("%s: missing required columns: %s", e.File, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("%s: %s", e.File, e.Reason)
}
