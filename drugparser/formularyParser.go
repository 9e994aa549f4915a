package drugparser

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/pharmalytics/drugcost-api/drugparser/entities"
	"github.com/pharmalytics/drugcost-api/logging"
)

// The formulary export is headerless with a fixed column layout.
const formularyColumns = 11

// ParseFormulary reads the plan formulary CSV at path. The file carries no
// header and no display names, so each entry gets a synthetic drug name from
// its RxCUI. Short rows are skipped and counted.
func ParseFormulary(path string) ([]entities.FormularyEntry, error) {
	reader, err := openCSV(path)
	if err != nil {
		return nil, err
	}

	var formEntries []entities.FormularyEntry
	lineCount := 0
	skippedMissingColumns := 0

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				skippedMissingColumns++
				continue
			}
			return nil, &DataFormatError{File: path, Reason: "read failed: " + err.Error()}
		}
		lineCount++

		if len(row) < formularyColumns {
			skippedMissingColumns++
			continue
		}

		rxcui := strings.TrimSpace(row[3])
		tier, err := strconv.Atoi(strings.TrimSpace(row[5]))
		if err != nil {
			tier = 0
		}

		formEntries = append(formEntries, entities.FormularyEntry{
			DrugName:            "RXCUI: " + rxcui,
			FormularyID:         strings.TrimSpace(row[0]),
			FormularyVersion:    strings.TrimSpace(row[1]),
			ContractYear:        strings.TrimSpace(row[2]),
			RxCUI:               rxcui,
			NDC:                 strings.TrimSpace(row[4]),
			Tier:                tier,
			TierLabel:           entities.TierLabel(tier),
			QuantityLimit:       strings.EqualFold(strings.TrimSpace(row[6]), "Y"),
			QuantityLimitAmount: strings.TrimSpace(row[7]),
			QuantityLimitDays:   strings.TrimSpace(row[8]),
			PriorAuth:           strings.EqualFold(strings.TrimSpace(row[9]), "Y"),
			StepTherapy:         strings.EqualFold(strings.TrimSpace(row[10]), "Y"),
		})
	}

	if skippedMissingColumns > 0 {
		logging.Info("Formulary skip statistics",
			"file", path,
			"missing_columns", skippedMissingColumns,
			"total_lines", lineCount,
			"records_parsed", len(formEntries))
	}

	return formEntries, nil
}
