package recommend

import (
	"fmt"
	"strings"

	"github.com/pharmalytics/drugcost-api/drugparser/entities"
)

// Keyword taxonomy for single-drug risk classification, checked in
// precedence order: high-risk wording always wins, explicit reassurance
// wording is checked before the broad potential-interaction terms so that
// "no significant risk" reads as reassurance, and text matching nothing
// defaults to no interaction.
var (
	highRiskTerms = []string{
		"contraindicated",
		"fatal",
		"decrease the excretion rate",
		"higher serum level",
		"increased when combined",
	}
	reassuranceTerms = []string{
		"no significant",
		"minimal",
		"mild",
	}
	potentialTerms = []string{
		"metabolism",
		"can be decreased",
		"increase",
		"risk",
		"caution",
	}
)

// classContraindications lists therapeutic class pairs that are always high
// risk when combined, regardless of the per-drug interaction text. Matching
// is by containment on the lower-cased class names, so "Anticoagulants" and
// "NSAIDs (Cox inhibitors)" both hit their terms.
type classPair struct {
	a, b        string
	description string
}

var classContraindications = []classPair{
	{"anticoagulant", "anticoagulant", "two anticoagulants combined carry a major bleeding risk"},
	{"anticoagulant", "antiplatelet", "an anticoagulant with an antiplatelet carries a major bleeding risk"},
	{"anticoagulant", "nsaid", "NSAID use alongside an anticoagulant carries a major bleeding risk"},
	{"maoi", "ssri", "an MAOI with an SSRI can precipitate serotonin syndrome"},
	{"maoi", "snri", "an MAOI with an SNRI can precipitate serotonin syndrome"},
	{"opioid", "benzodiazepine", "an opioid with a benzodiazepine carries a respiratory depression risk"},
	{"nitrate", "pde5 inhibitor", "a nitrate with a PDE5 inhibitor can cause severe hypotension"},
}

// Classify assigns an interaction risk label to a single drug from its
// interactions text.
func Classify(rec entities.DrugRecord) entities.InteractionAssessment {
	description := rec.DrugInteractions
	if strings.TrimSpace(description) == "" {
		description = entities.NoInteractionData
	}
	return entities.InteractionAssessment{
		RiskLabel:   classifyText(rec.DrugInteractions),
		Description: description,
	}
}

func classifyText(text string) entities.RiskLabel {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" || strings.Contains(text, strings.ToLower(entities.NoInteractionData)) {
		return entities.RiskNone
	}
	for _, term := range highRiskTerms {
		if strings.Contains(text, term) {
			return entities.RiskHigh
		}
	}
	for _, term := range reassuranceTerms {
		if strings.Contains(text, term) {
			return entities.RiskLow
		}
	}
	for _, term := range potentialTerms {
		if strings.Contains(text, term) {
			return entities.RiskPotential
		}
	}
	return entities.RiskNone
}

// ClassifyPair assesses the combined risk of dispensing two drugs together.
// A class-level contraindication decides immediately; otherwise the pair
// inherits the more severe of the two single-drug labels, with the
// description taken from whichever drug's text names the other drug's
// generic, when either does.
func ClassifyPair(a, b entities.DrugRecord) entities.InteractionAssessment {
	if desc, ok := classContraindication(a, b); ok {
		return entities.InteractionAssessment{RiskLabel: entities.RiskHigh, Description: desc}
	}

	label := entities.MaxRisk(classifyText(a.DrugInteractions), classifyText(b.DrugInteractions))

	description := crossReference(a, b)
	if description == "" {
		description = fmt.Sprintf("No direct interaction documented between %s and %s", a.DrugName, b.DrugName)
	}
	return entities.InteractionAssessment{RiskLabel: label, Description: description}
}

func classContraindication(a, b entities.DrugRecord) (string, bool) {
	ca := strings.ToLower(a.TherapeuticClass)
	cb := strings.ToLower(b.TherapeuticClass)
	for _, p := range classContraindications {
		if (strings.Contains(ca, p.a) && strings.Contains(cb, p.b)) ||
			(strings.Contains(ca, p.b) && strings.Contains(cb, p.a)) {
			return fmt.Sprintf("Contraindicated class combination (%s + %s): %s",
				a.TherapeuticClass, b.TherapeuticClass, p.description), true
		}
	}
	return "", false
}

// crossReference returns the interaction text of whichever drug mentions
// the other drug's generic name, preferring the first drug's text.
func crossReference(a, b entities.DrugRecord) string {
	if mentions(a.DrugInteractions, b.GenericName) {
		return fmt.Sprintf("DRUG INTERACTION FOUND in '%s' data: %s", a.DrugName, a.DrugInteractions)
	}
	if mentions(b.DrugInteractions, a.GenericName) {
		return fmt.Sprintf("DRUG INTERACTION FOUND in '%s' data: %s", b.DrugName, b.DrugInteractions)
	}
	return ""
}

func mentions(text, generic string) bool {
	generic = strings.ToLower(strings.TrimSpace(generic))
	if generic == "" {
		return false
	}
	return strings.Contains(strings.ToLower(text), generic)
}
