package drugparser

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/pharmalytics/drugcost-api/drugparser/entities"
	"github.com/pharmalytics/drugcost-api/logging"
)

// Columns that must be present in the dataset header. Rows that leave any of
// them empty are dropped.
var requiredColumns = []string{"drug_name", "generic_name", "therapeutic_class", "pmpm_cost"}

// ParseDataset reads the claims drug CSV at path into cleaned DrugRecords.
// The header row drives column mapping, so column order does not matter.
// A header missing required columns fails with *DataFormatError; malformed
// rows are skipped and counted.
func ParseDataset(path string) ([]entities.DrugRecord, error) {
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
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &DataFormatError{File: path, Missing: missing}
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []entities.DrugRecord
	lineCount := 0
	skippedMissingValues := 0
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

		name := strings.ToUpper(field(row, "drug_name"))
		generic := strings.ToUpper(field(row, "generic_name"))
		class := field(row, "therapeutic_class")
		pmpmRaw := field(row, "pmpm_cost")

		// Same drop rule the reporting pipeline applies upstream
		if name == "" || generic == "" || class == "" || pmpmRaw == "" {
			skippedMissingValues++
			continue
		}

		pmpm, err := cleanCurrency(pmpmRaw)
		if err != nil || pmpm < 0 {
			skippedFormatErrors++
			continue
		}

		members, err := cleanInt(field(row, "member_count"))
		if err != nil || members < 0 {
			skippedFormatErrors++
			continue
		}

		totalCost, err := cleanCurrency(field(row, "total_drug_cost"))
		if err != nil || totalCost < 0 {
			skippedFormatErrors++
			continue
		}

		fills, err := cleanInt(field(row, "total_prescription_fills"))
		if err != nil || fills < 0 {
			skippedFormatErrors++
			continue
		}

		avgAge, err := cleanCurrency(field(row, "avg_age"))
		if err != nil || avgAge < 0 {
			skippedFormatErrors++
			continue
		}

		teCode := strings.ToUpper(field(row, "therapeutic_equivalence_code"))
		if teCode == "" {
			teCode = entities.NoTECode
		}
		interactions := field(row, "drug_interactions")
		if interactions == "" {
			interactions = entities.NoInteractionData
		}
		efficacy := field(row, "clinical_efficacy")
		if efficacy == "" {
			efficacy = entities.NoEfficacyData
		}

		records = append(records, entities.DrugRecord{
			NDC:                    field(row, "ndc"),
			DrugName:               name,
			GenericName:            generic,
			TherapeuticClass:       class,
			TECode:                 teCode,
			PMPMCost:               pmpm,
			MemberCount:            members,
			TotalDrugCost:          totalCost,
			TotalPrescriptionFills: fills,
			DrugInteractions:       interactions,
			ClinicalEfficacy:       efficacy,
			State:                  strings.ToUpper(field(row, "state")),
			AvgAge:                 avgAge,
		})
	}

	if skippedMissingValues > 0 || skippedFormatErrors > 0 {
		logging.Info("Drug dataset skip statistics",
			"file", path,
			"missing_values", skippedMissingValues,
			"format_errors", skippedFormatErrors,
			"total_lines", lineCount,
			"records_parsed", len(records))
	}

	return records, nil
}
