package drugparser

import (
	"github.com/pharmalytics/drugcost-api/drugparser/entities"
	"github.com/pharmalytics/drugcost-api/interfaces"
)

// Compile-time check to ensure CSVParser implements Parser interface
var _ interfaces.Parser = (*CSVParser)(nil)

// CSVParser implements the Parser interface over the configured CSV exports.
// The claims dataset is mandatory; formulary and spending history are
// optional and parse to empty results when not configured.
type CSVParser struct {
	dataFile      string
	formularyFile string
	historyFile   string
}

// NewCSVParser creates a new CSVParser instance
func NewCSVParser(dataFile, formularyFile, historyFile string) *CSVParser {
	return &CSVParser{
		dataFile:      dataFile,
		formularyFile: formularyFile,
		historyFile:   historyFile,
	}
}

// ParseDataset implements the Parser interface
func (p *CSVParser) ParseDataset() ([]entities.DrugRecord, error) {
	return ParseDataset(p.dataFile)
}

// ParseFormulary implements the Parser interface
func (p *CSVParser) ParseFormulary() ([]entities.FormularyEntry, error) {
	if p.formularyFile == "" {
		return nil, nil
	}
	return ParseFormulary(p.formularyFile)
}

// ParseSpendingHistory implements the Parser interface
func (p *CSVParser) ParseSpendingHistory() (map[string][]entities.SpendingPoint, error) {
	if p.historyFile == "" {
		return nil, nil
	}
	return ParseSpendingHistory(p.historyFile)
}
