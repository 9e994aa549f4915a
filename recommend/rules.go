// Package recommend implements the therapeutic substitution engine: cost
// rules, candidate ranking, interaction risk classification and the
// recommendation service over the drug catalog. Everything here is a pure
// function of its inputs, so identical requests against the same catalog
// snapshot always produce identical results.
package recommend

import (
	"sort"
	"strings"

	"github.com/pharmalytics/drugcost-api/drugparser/entities"
)

// Substitution policies. TE-equivalent requires the candidate to carry an
// FDA "AB" therapeutic equivalence rating; class-equivalent only requires
// the shared therapeutic class and reports the TE flag per candidate. The
// two are distinct policies and never conflated.
const (
	PolicyTEEquivalent    = "te"
	PolicyClassEquivalent = "class"
)

// NormalizePolicy maps a request policy string to a known policy.
// TE-equivalent is the default for an empty value.
func NormalizePolicy(p string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case "", PolicyTEEquivalent:
		return PolicyTEEquivalent, true
	case PolicyClassEquivalent:
		return PolicyClassEquivalent, true
	default:
		return "", false
	}
}

// IsTESubstitutable reports whether candidate can substitute original on
// therapeutic equivalence grounds: same therapeutic class and an "AB" rated
// equivalence code on the candidate. Codes default to "NA", which never
// qualifies.
func IsTESubstitutable(original, candidate entities.DrugRecord) bool {
	if entities.NormalizeName(original.TherapeuticClass) != entities.NormalizeName(candidate.TherapeuticClass) {
		return false
	}
	return strings.HasPrefix(strings.ToUpper(candidate.TECode), "AB")
}

// ComputeSaving returns the per-member-per-month saving of switching from
// original to candidate and its percentage of the original cost. The sign
// is kept, so a costlier candidate yields negative savings. A zero original
// cost yields zero percent.
func ComputeSaving(original, candidate entities.DrugRecord) (perMember, percentage float64) {
	perMember = original.PMPMCost - candidate.PMPMCost
	if original.PMPMCost > 0 {
		percentage = perMember / original.PMPMCost * 100
	}
	return perMember, percentage
}

// confidenceScore grades a candidate 0-100 by fixed rules: 50 base, +30 for
// a TE match, +10 for a shared generic, +10 when the candidate has at least
// the original's member utilization.
func confidenceScore(original, candidate entities.DrugRecord, teMatch bool) float64 {
	score := 50.0
	if teMatch {
		score += 30
	}
	if entities.NormalizeName(original.GenericName) == entities.NormalizeName(candidate.GenericName) {
		score += 10
	}
	if candidate.MemberCount >= original.MemberCount {
		score += 10
	}
	if score > 100 {
		score = 100
	}
	return score
}

// RankCandidates builds and ranks substitution candidates for original from
// pool. Candidates sharing the original's name are excluded; under the
// TE-equivalent policy candidates without an AB rating are too. The order
// is total: percentage saving descending, then candidate name ascending.
// A drug appearing in several states is ranked once, by its best record.
func RankCandidates(original entities.DrugRecord, pool []entities.DrugRecord, policy string) []entities.SubstitutionCandidate {
	originalName := entities.NormalizeName(original.DrugName)
	originalClass := entities.NormalizeName(original.TherapeuticClass)

	candidates := make([]entities.SubstitutionCandidate, 0, len(pool))
	for _, cand := range pool {
		if entities.NormalizeName(cand.DrugName) == originalName {
			continue
		}
		if entities.NormalizeName(cand.TherapeuticClass) != originalClass {
			continue
		}
		teMatch := IsTESubstitutable(original, cand)
		if policy == PolicyTEEquivalent && !teMatch {
			continue
		}
		perMember, percentage := ComputeSaving(original, cand)
		candidates = append(candidates, entities.SubstitutionCandidate{
			Original:            original,
			Candidate:           cand,
			TEMatch:             teMatch,
			CostSavingPerMember: perMember,
			PercentageSaving:    percentage,
			ConfidenceScore:     confidenceScore(original, cand, teMatch),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].PercentageSaving != candidates[j].PercentageSaving {
			return candidates[i].PercentageSaving > candidates[j].PercentageSaving
		}
		return candidates[i].Candidate.DrugName < candidates[j].Candidate.DrugName
	})

	seen := make(map[string]bool, len(candidates))
	deduped := candidates[:0]
	for _, cand := range candidates {
		name := entities.NormalizeName(cand.Candidate.DrugName)
		if seen[name] {
			continue
		}
		seen[name] = true
		deduped = append(deduped, cand)
	}

	return deduped
}
