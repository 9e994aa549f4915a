package data

import (
	"github.com/pharmalytics/drugcost-api/drugparser/entities"
)

// BuildIndexes creates the lookup maps for a record set: by drug name, by
// therapeutic class and by generic name. All keys are normalized with
// entities.NormalizeName.
func BuildIndexes(records []entities.DrugRecord) (byName, byClass, byGeneric map[string][]entities.DrugRecord) {
	byName = make(map[string][]entities.DrugRecord, len(records))
	byClass = make(map[string][]entities.DrugRecord)
	byGeneric = make(map[string][]entities.DrugRecord)

	for _, rec := range records {
		nameKey := entities.NormalizeName(rec.DrugName)
		classKey := entities.NormalizeName(rec.TherapeuticClass)
		genericKey := entities.NormalizeName(rec.GenericName)

		byName[nameKey] = append(byName[nameKey], rec)
		byClass[classKey] = append(byClass[classKey], rec)
		byGeneric[genericKey] = append(byGeneric[genericKey], rec)
	}

	return byName, byClass, byGeneric
}
