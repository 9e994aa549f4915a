package recommend

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/pharmalytics/drugcost-api/drugparser/entities"
)

// tokenize lower-cases text and splits it into letter and digit runs,
// dropping tokens of one or two characters that carry no signal.
func tokenize(text string) map[string]float64 {
	counts := make(map[string]float64)
	var sb strings.Builder
	flush := func() {
		if sb.Len() > 2 {
			counts[sb.String()]++
		}
		sb.Reset()
	}
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	return counts
}

// cosineSimilarity compares two token frequency vectors. An empty vector on
// either side yields zero.
func cosineSimilarity(a, b map[string]float64) float64 {
	var dot, normA, normB float64
	for token, av := range a {
		normA += av * av
		if bv, ok := b[token]; ok {
			dot += av * bv
		}
	}
	for _, bv := range b {
		normB += bv * bv
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// EfficacyAlternatives ranks drugs sharing the original's generic and
// therapeutic class by similarity of their clinical efficacy text, ties
// broken by cheaper PMPM cost and then by name. At most limit alternatives
// are returned; a drug appearing in several states is considered once.
func EfficacyAlternatives(original entities.DrugRecord, sameGeneric []entities.DrugRecord, limit int) []entities.EfficacyAlternative {
	origTokens := tokenize(original.ClinicalEfficacy)
	origName := entities.NormalizeName(original.DrugName)
	origClass := entities.NormalizeName(original.TherapeuticClass)

	seen := make(map[string]bool, len(sameGeneric))
	alternatives := make([]entities.EfficacyAlternative, 0, len(sameGeneric))
	for _, cand := range sameGeneric {
		name := entities.NormalizeName(cand.DrugName)
		if name == origName || seen[name] {
			continue
		}
		if entities.NormalizeName(cand.TherapeuticClass) != origClass {
			continue
		}
		seen[name] = true
		alternatives = append(alternatives, entities.EfficacyAlternative{
			DrugName:         cand.DrugName,
			PMPMCost:         cand.PMPMCost,
			Similarity:       cosineSimilarity(origTokens, tokenize(cand.ClinicalEfficacy)),
			ClinicalEfficacy: cand.ClinicalEfficacy,
		})
	}

	sort.Slice(alternatives, func(i, j int) bool {
		if alternatives[i].Similarity != alternatives[j].Similarity {
			return alternatives[i].Similarity > alternatives[j].Similarity
		}
		if alternatives[i].PMPMCost != alternatives[j].PMPMCost {
			return alternatives[i].PMPMCost < alternatives[j].PMPMCost
		}
		return alternatives[i].DrugName < alternatives[j].DrugName
	})

	if limit > 0 && len(alternatives) > limit {
		alternatives = alternatives[:limit]
	}
	return alternatives
}
