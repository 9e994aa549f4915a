package entities

// RiskLabel is the interaction risk classification shown to clients.
type RiskLabel string

const (
	RiskNone      RiskLabel = "No Interaction"
	RiskLow       RiskLabel = "Low Risk"
	RiskPotential RiskLabel = "Potential Interaction"
	RiskHigh      RiskLabel = "High Risk"
)

// Severity orders risk labels from RiskNone (0) to RiskHigh (3).
func (r RiskLabel) Severity() int {
	switch r {
	case RiskLow:
		return 1
	case RiskPotential:
		return 2
	case RiskHigh:
		return 3
	default:
		return 0
	}
}

// MaxRisk returns the more severe of two labels.
func MaxRisk(a, b RiskLabel) RiskLabel {
	if b.Severity() > a.Severity() {
		return b
	}
	return a
}

// InteractionAssessment pairs a risk label with the text that produced it.
type InteractionAssessment struct {
	RiskLabel   RiskLabel `json:"risk_label"`
	Description string    `json:"description"`
}

// SubstitutionCandidate is one ranked alternative for an original drug.
type SubstitutionCandidate struct {
	Original            DrugRecord `json:"original"`
	Candidate           DrugRecord `json:"candidate"`
	TEMatch             bool       `json:"te_match"`
	CostSavingPerMember float64    `json:"cost_saving_per_member"`
	PercentageSaving    float64    `json:"percentage_saving"`
	ConfidenceScore     float64    `json:"confidence_score"`
}

// EfficacyAlternative is a same-generic drug ranked by efficacy-text
// similarity.
type EfficacyAlternative struct {
	DrugName         string  `json:"drug_name"`
	PMPMCost         float64 `json:"pmpm_cost"`
	Similarity       float64 `json:"similarity"`
	ClinicalEfficacy string  `json:"clinical_efficacy"`
}

// Recommendation outcomes. Inputs are never silently dropped: when no
// candidate pool yields anything the outcome says so explicitly.
const (
	OutcomeRecommended      = "recommended"
	OutcomeNoCandidate      = "no_candidate"
	OutcomeNoRecommendation = "no_recommendation_available"
)

// Analysis types.
const (
	AnalysisSingleDrug  = "single_drug"
	AnalysisCombination = "combination"
)

// LegAnalysis details the substitution computed independently for one input
// drug of a combination request.
type LegAnalysis struct {
	DrugName            string  `json:"drug_name"`
	RecommendedDrug     string  `json:"recommended_drug"`
	CandidateFound      bool    `json:"candidate_found"`
	TEMatch             bool    `json:"te_match"`
	CostSavingPerMember float64 `json:"cost_saving_per_member"`
	PercentageSaving    float64 `json:"percentage_saving"`
	ConfidenceScore     float64 `json:"confidence_score"`
}

// DrugAnalysis is the analysis block of a recommendation response. Cost
// savings and interaction risk are reported as separate axes, never folded
// into one score.
type DrugAnalysis struct {
	Type    string `json:"type"`
	Outcome string `json:"outcome"`
	Policy  string `json:"substitution_policy"`

	// Single-drug fields
	CostSavingPerMember float64                `json:"cost_saving_per_member,omitempty"`
	TEMatch             bool                   `json:"te_match,omitempty"`
	ConfidenceScore     float64                `json:"confidence_score,omitempty"`
	Interaction         *InteractionAssessment `json:"interaction,omitempty"`

	// Combination fields
	TotalCostSaving        float64                `json:"total_cost_saving,omitempty"`
	OriginalInteraction    *InteractionAssessment `json:"original_interaction,omitempty"`
	RecommendedInteraction *InteractionAssessment `json:"recommended_interaction,omitempty"`
	Legs                   []LegAnalysis          `json:"legs,omitempty"`

	PercentageSaving float64 `json:"percentage_saving"`

	EfficacyAlternatives       []EfficacyAlternative            `json:"clinical_efficacy_alternatives,omitempty"`
	EfficacyAlternativesByDrug map[string][]EfficacyAlternative `json:"clinical_efficacy_alternatives_by_drug,omitempty"`
}

// RecommendationResult is the full recommendation response. RecommendedDrugs
// always has one entry per original drug; a leg without a candidate keeps
// its original record there.
type RecommendationResult struct {
	OriginalDrugs    []DrugRecord `json:"original_drugs"`
	RecommendedDrugs []DrugRecord `json:"recommended_drugs"`
	Analysis         DrugAnalysis `json:"analysis"`
}
