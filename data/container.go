// Package data provides thread-safe data storage and management for the drug
// cost API. It includes the DataContainer struct with atomic operations for
// zero-downtime updates and thread-safe access methods for catalog, formulary
// and spending-history data.
package data

import (
	"iter"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pharmalytics/drugcost-api/drugparser/entities"
	"github.com/pharmalytics/drugcost-api/interfaces"
	"github.com/pharmalytics/drugcost-api/logging"
)

// Compile-time check to ensure DataContainer implements DataStore
var _ interfaces.DataStore = (*DataContainer)(nil)

// DataContainer holds all the data with atomic pointers for zero-downtime
// updates. Reads never block; all writers (scheduled reloads and catalog
// appends) serialize on a single mutex.
type DataContainer struct {
	records         atomic.Value // []entities.DrugRecord
	byName          atomic.Value // map[string][]entities.DrugRecord
	byClass         atomic.Value // map[string][]entities.DrugRecord
	byGeneric       atomic.Value // map[string][]entities.DrugRecord
	formulary       atomic.Value // []entities.FormularyEntry
	history         atomic.Value // map[string][]entities.SpendingPoint
	lastUpdated     atomic.Value // time.Time
	updating        atomic.Bool
	serverStartTime atomic.Value // time.Time
	version         atomic.Uint64
	writeMu         sync.Mutex
}

// NewDataContainer creates a new DataContainer with empty data
func NewDataContainer() *DataContainer {
	dc := &DataContainer{}
	dc.records.Store(make([]entities.DrugRecord, 0))
	dc.byName.Store(make(map[string][]entities.DrugRecord))
	dc.byClass.Store(make(map[string][]entities.DrugRecord))
	dc.byGeneric.Store(make(map[string][]entities.DrugRecord))
	dc.formulary.Store(make([]entities.FormularyEntry, 0))
	dc.history.Store(make(map[string][]entities.SpendingPoint))
	dc.lastUpdated.Store(time.Time{})
	dc.serverStartTime.Store(time.Time{})
	return dc
}

// Thread-safe getters with type check

// GetRecords returns the catalog records
func (dc *DataContainer) GetRecords() []entities.DrugRecord {
	if v := dc.records.Load(); v != nil {
		if records, ok := v.([]entities.DrugRecord); ok {
			return records
		}
	}

	logging.Warn("Drug records list is empty or invalid")
	return []entities.DrugRecord{}
}

// GetRecordsByName returns the name index for O(1) lookups. Keys are
// upper-cased drug names; a name can hold several records (one per state).
func (dc *DataContainer) GetRecordsByName() map[string][]entities.DrugRecord {
	if v := dc.byName.Load(); v != nil {
		if byName, ok := v.(map[string][]entities.DrugRecord); ok {
			return byName
		}
	}

	logging.Warn("Drug name index is empty or invalid")
	return make(map[string][]entities.DrugRecord)
}

// GetRecordsByClass returns the therapeutic-class index used for candidate
// pool lookups
func (dc *DataContainer) GetRecordsByClass() map[string][]entities.DrugRecord {
	if v := dc.byClass.Load(); v != nil {
		if byClass, ok := v.(map[string][]entities.DrugRecord); ok {
			return byClass
		}
	}

	logging.Warn("Therapeutic class index is empty or invalid")
	return make(map[string][]entities.DrugRecord)
}

// GetRecordsByGeneric returns the generic-name index for O(1) lookups
func (dc *DataContainer) GetRecordsByGeneric() map[string][]entities.DrugRecord {
	if v := dc.byGeneric.Load(); v != nil {
		if byGeneric, ok := v.(map[string][]entities.DrugRecord); ok {
			return byGeneric
		}
	}

	logging.Warn("Generic name index is empty or invalid")
	return make(map[string][]entities.DrugRecord)
}

// GetFormulary returns the plan formulary entries
func (dc *DataContainer) GetFormulary() []entities.FormularyEntry {
	if v := dc.formulary.Load(); v != nil {
		if formulary, ok := v.([]entities.FormularyEntry); ok {
			return formulary
		}
	}

	logging.Warn("Formulary list is empty or invalid")
	return []entities.FormularyEntry{}
}

// GetSpendingHistory returns the per-drug spending series
func (dc *DataContainer) GetSpendingHistory() map[string][]entities.SpendingPoint {
	if v := dc.history.Load(); v != nil {
		if history, ok := v.(map[string][]entities.SpendingPoint); ok {
			return history
		}
	}

	logging.Warn("Spending history is empty or invalid")
	return make(map[string][]entities.SpendingPoint)
}

// FindByName looks a drug up by name, case-insensitively. When the same name
// appears in several states the first loaded record wins. Misses return a
// *NotFoundError carrying the requested name.
func (dc *DataContainer) FindByName(name string) (entities.DrugRecord, error) {
	if recs, ok := dc.GetRecordsByName()[entities.NormalizeName(name)]; ok && len(recs) > 0 {
		return recs[0], nil
	}
	return entities.DrugRecord{}, &NotFoundError{Names: []string{name}}
}

// Filter returns a lazy sequence over the record snapshot taken at call
// time. The sequence is restartable and always finite; a nil predicate
// yields every record.
func (dc *DataContainer) Filter(pred func(entities.DrugRecord) bool) iter.Seq[entities.DrugRecord] {
	snapshot := dc.GetRecords()
	return func(yield func(entities.DrugRecord) bool) {
		for _, rec := range snapshot {
			if pred != nil && !pred(rec) {
				continue
			}
			if !yield(rec) {
				return
			}
		}
	}
}

// GetLastUpdated returns the timestamp of the last dataset reload
func (dc *DataContainer) GetLastUpdated() time.Time {
	if v := dc.lastUpdated.Load(); v != nil {
		if lastUpdated, ok := v.(time.Time); ok {
			return lastUpdated
		}
	}

	logging.Warn("Could not get the last updated value")
	return time.Time{}
}

// IsUpdating returns true if a data update is currently in progress
func (dc *DataContainer) IsUpdating() bool {
	return dc.updating.Load()
}

// SetServerStartTime sets the server start time
func (dc *DataContainer) SetServerStartTime(startTime time.Time) {
	dc.serverStartTime.Store(startTime)
}

// GetServerStartTime returns the server start time
func (dc *DataContainer) GetServerStartTime() time.Time {
	if v := dc.serverStartTime.Load(); v != nil {
		if startTime, ok := v.(time.Time); ok {
			return startTime
		}
	}

	logging.Warn("Could not get the server start time value")
	return time.Time{}
}

// Version returns a counter that increments on every catalog swap. Caches
// keyed on catalog contents use it to notice reloads and appends.
func (dc *DataContainer) Version() uint64 {
	return dc.version.Load()
}

// UpdateData atomically replaces all data in the container after a reload
func (dc *DataContainer) UpdateData(records []entities.DrugRecord,
	byName, byClass, byGeneric map[string][]entities.DrugRecord,
	formulary []entities.FormularyEntry, history map[string][]entities.SpendingPoint) {

	dc.writeMu.Lock()
	defer dc.writeMu.Unlock()

	// Atomic swap (zero downtime replacement)
	dc.records.Store(records)
	dc.byName.Store(byName)
	dc.byClass.Store(byClass)
	dc.byGeneric.Store(byGeneric)
	dc.formulary.Store(formulary)
	dc.history.Store(history)
	dc.lastUpdated.Store(time.Now())
	dc.version.Add(1)
}

// Append adds one record to the catalog with a copy-on-write swap. Readers
// observe either the pre- or post-append snapshot, never a partial one.
// The record must already be validated and cleaned.
func (dc *DataContainer) Append(rec entities.DrugRecord) {
	dc.writeMu.Lock()
	defer dc.writeMu.Unlock()

	current := dc.GetRecords()
	next := make([]entities.DrugRecord, 0, len(current)+1)
	next = append(next, current...)
	next = append(next, rec)

	byName, byClass, byGeneric := BuildIndexes(next)

	dc.records.Store(next)
	dc.byName.Store(byName)
	dc.byClass.Store(byClass)
	dc.byGeneric.Store(byGeneric)
	dc.version.Add(1)
}

// BeginUpdate marks the start of a data update operation
// Returns true if update can proceed, false if another update is in progress
func (dc *DataContainer) BeginUpdate() bool {
	return dc.updating.CompareAndSwap(false, true)
}

// EndUpdate marks the end of a data update operation
func (dc *DataContainer) EndUpdate() {
	dc.updating.Store(false)
}
