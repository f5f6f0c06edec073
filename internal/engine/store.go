// internal/engine/store.go
package engine

import "github.com/law-makers/rostercrawl/pkg/models"

// RecordStore accumulates records across pages in discovery order.
// It does not deduplicate.
type RecordStore struct {
	records []models.Record
}

// NewRecordStore creates an empty store
func NewRecordStore() *RecordStore {
	return &RecordStore{}
}

// Append adds records to the end of the store
func (s *RecordStore) Append(records ...models.Record) {
	s.records = append(s.records, records...)
}

// Len returns the number of stored records
func (s *RecordStore) Len() int {
	return len(s.records)
}

// Snapshot returns a copy of the stored records
func (s *RecordStore) Snapshot() []models.Record {
	out := make([]models.Record, len(s.records))
	copy(out, s.records)
	return out
}

// Drain returns all records and empties the store
func (s *RecordStore) Drain() []models.Record {
	out := s.records
	s.records = nil
	if out == nil {
		out = []models.Record{}
	}
	return out
}
