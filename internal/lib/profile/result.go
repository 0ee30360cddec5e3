// Package profile collects features found along a profiling line and
// prints them ordered by distance along that line.
package profile

import (
	"errors"
	"sort"
)

// ErrResultSetFull is returned by Append once the configured limit is reached
var ErrResultSetFull = errors.New("result set is full")

// Record is a single sample taken along the profile
type Record struct {
	// Distance is the arc-length position along the profile line
	Distance float64
	// Category identifies the source feature, vector.NoCategory when absent
	Category int
	// Z is the elevation of the sample, only meaningful for 3-D inputs
	Z float64
}

// Less orders records by distance then category
func Less(a, b Record) bool {
	if a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	return a.Category < b.Category
}

// ResultSet is the owned, append-only collection of records for one run
type ResultSet struct {
	records []Record
	limit   int
}

// NewResultSet returns an empty set. A limit of zero or less means unbounded.
func NewResultSet(limit int) *ResultSet {
	return &ResultSet{limit: limit}
}

// Append adds a record. Insertion order carries no meaning.
func (s *ResultSet) Append(r Record) error {
	if s.limit > 0 && len(s.records) >= s.limit {
		return ErrResultSetFull
	}
	s.records = append(s.records, r)
	return nil
}

// Len returns the number of records
func (s *ResultSet) Len() int {
	return len(s.records)
}

// Records returns the records in their current order. The slice is shared
// with the set.
func (s *ResultSet) Records() []Record {
	return s.records
}

// Sort orders the records by distance, then category
func (s *ResultSet) Sort() {
	sort.SliceStable(s.records, func(i, j int) bool {
		return Less(s.records[i], s.records[j])
	})
}
