package entities

import "strings"

// NormalizeName upper-cases and trims a drug, generic or class name so
// lookups are case-insensitive.
func NormalizeName(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// DrugRecord is one row of the claims drug dataset. Text fields are trimmed
// and drug/generic names upper-cased at load time; numeric fields are cleaned
// of currency symbols and thousands separators. Records are immutable once
// published to the data container.
type DrugRecord struct {
	NDC                    string  `json:"ndc"`
	DrugName               string  `json:"drug_name"`
	GenericName            string  `json:"generic_name"`
	TherapeuticClass       string  `json:"therapeutic_class"`
	TECode                 string  `json:"therapeutic_equivalence_code"`
	PMPMCost               float64 `json:"pmpm_cost"`
	MemberCount            int     `json:"member_count"`
	TotalDrugCost          float64 `json:"total_drug_cost"`
	TotalPrescriptionFills int     `json:"total_prescription_fills"`
	DrugInteractions       string  `json:"drug_interactions"`
	ClinicalEfficacy       string  `json:"clinical_efficacy"`
	State                  string  `json:"state"`
	AvgAge                 float64 `json:"avg_age"`
}

// Defaults applied when a source row leaves these fields empty.
const (
	NoTECode          = "NA"
	NoInteractionData = "No interaction data"
	NoEfficacyData    = "No efficacy data available"
)
