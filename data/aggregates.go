package data

import (
	"sort"

	"github.com/pharmalytics/drugcost-api/drugparser/entities"
)

// Age bands used by the cost-analysis breakdown, in display order.
var ageBands = []string{"0-17", "18-34", "35-49", "50-64", "65+"}

func ageBand(avgAge float64) string {
	switch {
	case avgAge < 18:
		return ageBands[0]
	case avgAge < 35:
		return ageBands[1]
	case avgAge < 50:
		return ageBands[2]
	case avgAge < 65:
		return ageBands[3]
	default:
		return ageBands[4]
	}
}

// ComputeStats summarizes a record set. Averages are over raw rows, not
// unique names, matching how the reporting pipeline computed them.
func ComputeStats(records []entities.DrugRecord) entities.DrugStats {
	stats := entities.DrugStats{
		TotalRecords:   len(records),
		TEDistribution: make(map[string]int),
	}

	names := make(map[string]struct{})
	classes := make(map[string]struct{})
	states := make(map[string]struct{})

	var pmpmSum float64
	for _, rec := range records {
		names[entities.NormalizeName(rec.DrugName)] = struct{}{}
		classes[entities.NormalizeName(rec.TherapeuticClass)] = struct{}{}
		if rec.State != "" {
			states[rec.State] = struct{}{}
		}
		stats.TotalCost += rec.TotalDrugCost
		stats.TotalPrescriptionFills += rec.TotalPrescriptionFills
		stats.TEDistribution[rec.TECode]++
		pmpmSum += rec.PMPMCost
	}

	stats.TotalDrugs = len(names)
	stats.TherapeuticClasses = len(classes)
	stats.States = len(states)
	if len(records) > 0 {
		stats.AveragePMPMCost = pmpmSum / float64(len(records))
	}

	return stats
}

// ComputeCostAnalysis breaks total spend down by therapeutic class, state
// and member age band. Class and state groups are ordered by descending
// total cost with name as the tie-break; age bands keep their display order.
func ComputeCostAnalysis(records []entities.DrugRecord) entities.CostAnalysis {
	type group struct {
		count   int
		total   float64
		pmpmSum float64
	}

	classGroups := make(map[string]*group)
	stateGroups := make(map[string]*group)
	ageGroups := make(map[string]*group)

	grow := func(m map[string]*group, key string, rec entities.DrugRecord) {
		g := m[key]
		if g == nil {
			g = &group{}
			m[key] = g
		}
		g.count++
		g.total += rec.TotalDrugCost
		g.pmpmSum += rec.PMPMCost
	}

	for _, rec := range records {
		grow(classGroups, rec.TherapeuticClass, rec)
		if rec.State != "" {
			grow(stateGroups, rec.State, rec)
		}
		grow(ageGroups, ageBand(rec.AvgAge), rec)
	}

	analysis := entities.CostAnalysis{
		ByTherapeuticClass: make([]entities.ClassCost, 0, len(classGroups)),
		ByState:            make([]entities.StateCost, 0, len(stateGroups)),
		ByAgeBand:          make([]entities.AgeBandCost, 0, len(ageBands)),
	}

	for class, g := range classGroups {
		analysis.ByTherapeuticClass = append(analysis.ByTherapeuticClass, entities.ClassCost{
			TherapeuticClass: class,
			DrugCount:        g.count,
			TotalCost:        g.total,
			AveragePMPM:      g.pmpmSum / float64(g.count),
		})
	}
	sort.Slice(analysis.ByTherapeuticClass, func(i, j int) bool {
		a, b := analysis.ByTherapeuticClass[i], analysis.ByTherapeuticClass[j]
		if a.TotalCost != b.TotalCost {
			return a.TotalCost > b.TotalCost
		}
		return a.TherapeuticClass < b.TherapeuticClass
	})

	for state, g := range stateGroups {
		analysis.ByState = append(analysis.ByState, entities.StateCost{
			State:       state,
			DrugCount:   g.count,
			TotalCost:   g.total,
			AveragePMPM: g.pmpmSum / float64(g.count),
		})
	}
	sort.Slice(analysis.ByState, func(i, j int) bool {
		a, b := analysis.ByState[i], analysis.ByState[j]
		if a.TotalCost != b.TotalCost {
			return a.TotalCost > b.TotalCost
		}
		return a.State < b.State
	})

	for _, band := range ageBands {
		g := ageGroups[band]
		if g == nil {
			continue
		}
		analysis.ByAgeBand = append(analysis.ByAgeBand, entities.AgeBandCost{
			AgeBand:     band,
			DrugCount:   g.count,
			TotalCost:   g.total,
			AveragePMPM: g.pmpmSum / float64(g.count),
		})
	}

	return analysis
}
