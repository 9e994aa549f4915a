// Package drugparser loads and cleans the claims drug dataset, the plan
// formulary and the historical spending series from CSV exports.
package drugparser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// openCSV reads the file at path into a CSV reader. Exports arrive from
// several upstream systems, some UTF-8 and some ISO-8859-1, so the bytes are
// sniffed and decoded before parsing. A UTF-8 BOM is skipped when present.
func openCSV(path string) (*csv.Reader, error) {
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if !utf8.Valid(raw) {
		decoded, err := io.ReadAll(charmap.ISO8859_1.NewDecoder().Reader(bytes.NewReader(raw)))
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s as ISO-8859-1: %w", path, err)
		}
		raw = decoded
	}
	raw = bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF})

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader, nil
}

// normalizeHeader lower-cases a header cell and squeezes spaces to
// underscores so "Drug Name" and "drug_name" map to the same column.
func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, " ", "_")
}

// cleanCurrency parses a numeric field that may carry currency formatting
// such as "$1,234.56". Empty values parse as 0.
func cleanCurrency(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// cleanInt parses a count field. Some exports write counts with a decimal
// part ("123.0"), so the value goes through a float parse first.
func cleanInt(s string) (int, error) {
	f, err := cleanCurrency(s)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}
