package recommend

import (
	"context"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/pharmalytics/drugcost-api/data"
	"github.com/pharmalytics/drugcost-api/drugparser/entities"
	"github.com/pharmalytics/drugcost-api/interfaces"
	"github.com/pharmalytics/drugcost-api/logging"
	"github.com/pharmalytics/drugcost-api/validation"
)

// Compile-time check to ensure Engine implements Recommender
var _ interfaces.Recommender = (*Engine)(nil)

const (
	cacheSize          = 512
	maxAlternatives    = 3
	ledgerWriteTimeout = 2 * time.Second
)

type cacheEntry struct {
	version uint64
	result  *entities.RecommendationResult
}

// Engine computes substitution recommendations over the catalog. Results
// are deterministic for a given catalog snapshot, so they are cached in an
// LRU keyed by the normalized request; entries written against an older
// catalog version are discarded on read.
type Engine struct {
	store  interfaces.DataStore
	ledger interfaces.ImpactStore // optional, may be nil
	cache  *lru.Cache[string, cacheEntry]
}

// NewEngine creates a recommendation engine over store. ledger may be nil
// when impact tracking is disabled.
func NewEngine(store interfaces.DataStore, ledger interfaces.ImpactStore) *Engine {
	cache, err := lru.New[string, cacheEntry](cacheSize)
	if err != nil {
		// lru.New only fails on a non-positive size
		logging.Error("Failed to create recommendation cache", "error", err)
	}
	return &Engine{store: store, ledger: ledger, cache: cache}
}

// Recommend analyzes one or two drugs and proposes the cheapest acceptable
// substitution for each under the given policy. A first-time positive
// saving is recorded in the cost impact ledger.
func (e *Engine) Recommend(names []string, policy string) (*entities.RecommendationResult, error) {
	policy, ok := NormalizePolicy(policy)
	if !ok {
		return nil, validation.NewValidationError("policy", `must be "te" or "class"`)
	}
	if len(names) == 0 {
		return nil, validation.NewValidationError("drug_names", "at least one drug name is required")
	}
	if len(names) > 2 {
		return nil, validation.NewValidationError("drug_names", "at most two drug names are supported")
	}

	version := e.store.Version()
	key := cacheKey(names, policy)
	if e.cache != nil {
		if entry, ok := e.cache.Get(key); ok && entry.version == version {
			return entry.result, nil
		}
	}

	originals, err := e.lookup(names)
	if err != nil {
		return nil, err
	}

	var result *entities.RecommendationResult
	if len(originals) == 1 {
		result = e.recommendSingle(originals[0], policy)
	} else {
		result, err = e.recommendPair(originals[0], originals[1], policy)
		if err != nil {
			return nil, err
		}
	}

	if e.cache != nil {
		e.cache.Add(key, cacheEntry{version: version, result: result})
	}

	e.recordImpact(result)
	return result, nil
}

func cacheKey(names []string, policy string) string {
	normalized := make([]string, len(names))
	for i, name := range names {
		normalized[i] = entities.NormalizeName(name)
	}
	return strings.Join(normalized, "\x1f") + "\x1f" + policy
}

// lookup resolves every requested name, reporting all unknown names in a
// single error so the client sees the full list at once.
func (e *Engine) lookup(names []string) ([]entities.DrugRecord, error) {
	records := make([]entities.DrugRecord, 0, len(names))
	var missing []string
	for _, name := range names {
		rec, err := e.store.FindByName(name)
		if err != nil {
			missing = append(missing, name)
			continue
		}
		records = append(records, rec)
	}
	if len(missing) > 0 {
		return nil, &data.NotFoundError{Names: missing}
	}
	return records, nil
}

func (e *Engine) recommendSingle(original entities.DrugRecord, policy string) *entities.RecommendationResult {
	pool := e.store.GetRecordsByClass()[entities.NormalizeName(original.TherapeuticClass)]
	ranked := RankCandidates(original, pool, policy)

	assessment := Classify(original)
	alternatives := EfficacyAlternatives(original,
		e.store.GetRecordsByGeneric()[entities.NormalizeName(original.GenericName)], maxAlternatives)

	result := &entities.RecommendationResult{
		OriginalDrugs: []entities.DrugRecord{original},
		Analysis: entities.DrugAnalysis{
			Type:                 entities.AnalysisSingleDrug,
			Policy:               policy,
			Interaction:          &assessment,
			EfficacyAlternatives: alternatives,
		},
	}

	if len(ranked) == 0 {
		result.RecommendedDrugs = []entities.DrugRecord{original}
		result.Analysis.Outcome = entities.OutcomeNoCandidate
		return result
	}

	top := ranked[0]
	result.RecommendedDrugs = []entities.DrugRecord{top.Candidate}
	result.Analysis.Outcome = entities.OutcomeRecommended
	result.Analysis.CostSavingPerMember = top.CostSavingPerMember
	result.Analysis.PercentageSaving = top.PercentageSaving
	result.Analysis.TEMatch = top.TEMatch
	result.Analysis.ConfidenceScore = top.ConfidenceScore
	return result
}

func (e *Engine) recommendPair(first, second entities.DrugRecord, policy string) (*entities.RecommendationResult, error) {
	if entities.NormalizeName(first.GenericName) == entities.NormalizeName(second.GenericName) {
		return nil, validation.NewValidationError("drug_names",
			fmt.Sprintf("%s and %s share the generic %s; combination analysis needs two distinct therapies",
				first.DrugName, second.DrugName, first.GenericName))
	}

	byClass := e.store.GetRecordsByClass()
	byGeneric := e.store.GetRecordsByGeneric()

	legs := make([]entities.LegAnalysis, 0, 2)
	recommended := make([]entities.DrugRecord, 0, 2)
	alternativesByDrug := make(map[string][]entities.EfficacyAlternative, 2)

	var totalSaving, totalOriginalCost float64
	candidates := 0

	for _, original := range []entities.DrugRecord{first, second} {
		ranked := RankCandidates(original, byClass[entities.NormalizeName(original.TherapeuticClass)], policy)
		alternativesByDrug[original.DrugName] = EfficacyAlternatives(original,
			byGeneric[entities.NormalizeName(original.GenericName)], maxAlternatives)
		totalOriginalCost += original.PMPMCost

		// A leg without a candidate keeps its original drug.
		leg := entities.LegAnalysis{DrugName: original.DrugName, RecommendedDrug: original.DrugName}
		chosen := original
		if len(ranked) > 0 {
			top := ranked[0]
			chosen = top.Candidate
			leg.RecommendedDrug = top.Candidate.DrugName
			leg.CandidateFound = true
			leg.TEMatch = top.TEMatch
			leg.CostSavingPerMember = top.CostSavingPerMember
			leg.PercentageSaving = top.PercentageSaving
			leg.ConfidenceScore = top.ConfidenceScore
			totalSaving += top.CostSavingPerMember
			candidates++
		}
		legs = append(legs, leg)
		recommended = append(recommended, chosen)
	}

	originalAssessment := ClassifyPair(first, second)
	recommendedAssessment := ClassifyPair(recommended[0], recommended[1])

	var percentage float64
	if totalOriginalCost > 0 {
		percentage = totalSaving / totalOriginalCost * 100
	}

	outcome := entities.OutcomeRecommended
	if candidates == 0 {
		outcome = entities.OutcomeNoRecommendation
	}

	return &entities.RecommendationResult{
		OriginalDrugs:    []entities.DrugRecord{first, second},
		RecommendedDrugs: recommended,
		Analysis: entities.DrugAnalysis{
			Type:                       entities.AnalysisCombination,
			Outcome:                    outcome,
			Policy:                     policy,
			TotalCostSaving:            totalSaving,
			PercentageSaving:           percentage,
			OriginalInteraction:        &originalAssessment,
			RecommendedInteraction:     &recommendedAssessment,
			Legs:                       legs,
			EfficacyAlternativesByDrug: alternativesByDrug,
		},
	}, nil
}

// recordImpact writes an accepted positive saving to the ledger. Ledger
// problems are logged, never surfaced to the caller.
func (e *Engine) recordImpact(result *entities.RecommendationResult) {
	if e.ledger == nil || result == nil || result.Analysis.Outcome != entities.OutcomeRecommended {
		return
	}

	var originalCost, reducedCost float64
	switch result.Analysis.Type {
	case entities.AnalysisSingleDrug:
		if result.Analysis.CostSavingPerMember <= 0 {
			return
		}
		originalCost = result.OriginalDrugs[0].PMPMCost
		reducedCost = result.RecommendedDrugs[0].PMPMCost
	case entities.AnalysisCombination:
		if result.Analysis.TotalCostSaving <= 0 {
			return
		}
		for _, rec := range result.OriginalDrugs {
			originalCost += rec.PMPMCost
		}
		for _, rec := range result.RecommendedDrugs {
			reducedCost += rec.PMPMCost
		}
	default:
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), ledgerWriteTimeout)
	defer cancel()
	if _, err := e.ledger.Record(ctx, originalCost, reducedCost); err != nil {
		logging.Warn("Failed to record cost impact", "error", err)
	}
}
