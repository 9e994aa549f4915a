package entities

import "strings"

// AddDrugRequest is the payload for catalog appends. Pointer fields
// distinguish absent values from explicit zeros.
type AddDrugRequest struct {
	NDC                    string   `json:"ndc"`
	DrugName               string   `json:"drug_name"`
	GenericName            string   `json:"generic_name"`
	TherapeuticClass       string   `json:"therapeutic_class"`
	TECode                 string   `json:"therapeutic_equivalence_code"`
	PMPMCost               *float64 `json:"pmpm_cost"`
	MemberCount            *int     `json:"member_count"`
	TotalDrugCost          *float64 `json:"total_drug_cost"`
	TotalPrescriptionFills *int     `json:"total_prescription_fills"`
	DrugInteractions       string   `json:"drug_interactions"`
	ClinicalEfficacy       string   `json:"clinical_efficacy"`
	State                  string   `json:"state"`
	AvgAge                 *float64 `json:"avg_age"`
}

// ToRecord builds a cleaned DrugRecord from a validated request, applying
// the same normalization and defaults the CSV loader applies. The caller
// assigns an NDC when the request left it empty.
func (r *AddDrugRequest) ToRecord() DrugRecord {
	rec := DrugRecord{
		NDC:              strings.TrimSpace(r.NDC),
		DrugName:         strings.ToUpper(strings.TrimSpace(r.DrugName)),
		GenericName:      strings.ToUpper(strings.TrimSpace(r.GenericName)),
		TherapeuticClass: strings.TrimSpace(r.TherapeuticClass),
		TECode:           strings.ToUpper(strings.TrimSpace(r.TECode)),
		DrugInteractions: strings.TrimSpace(r.DrugInteractions),
		ClinicalEfficacy: strings.TrimSpace(r.ClinicalEfficacy),
		State:            strings.ToUpper(strings.TrimSpace(r.State)),
	}

	if r.PMPMCost != nil {
		rec.PMPMCost = *r.PMPMCost
	}
	if r.MemberCount != nil {
		rec.MemberCount = *r.MemberCount
	}
	if r.TotalDrugCost != nil {
		rec.TotalDrugCost = *r.TotalDrugCost
	}
	if r.TotalPrescriptionFills != nil {
		rec.TotalPrescriptionFills = *r.TotalPrescriptionFills
	}
	if r.AvgAge != nil {
		rec.AvgAge = *r.AvgAge
	}

	if rec.TECode == "" {
		rec.TECode = NoTECode
	}
	if rec.DrugInteractions == "" {
		rec.DrugInteractions = NoInteractionData
	}
	if rec.ClinicalEfficacy == "" {
		rec.ClinicalEfficacy = NoEfficacyData
	}

	return rec
}
