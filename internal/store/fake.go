package store

import (
	"github.com/sweeney/plant-monitor/internal/logic"
)

// FakeStore keeps appended records in memory.
type FakeStore struct {
	Records []logic.CycleRecord
	RunID   string

	// AppendError, if set, will be returned (wrapped) by Append().
	AppendError error

	Closed bool
}

// NewFakeStore creates an empty FakeStore.
func NewFakeStore() *FakeStore {
	return &FakeStore{RunID: "test-run"}
}

// Append records rec.
func (f *FakeStore) Append(rec logic.CycleRecord) error {
	if f.AppendError != nil {
		return &PersistError{Cycle: rec.Cycle, Err: f.AppendError}
	}
	f.Records = append(f.Records, rec)
	return nil
}

// Recent returns up to n rows, newest first.
func (f *FakeStore) Recent(n int) ([]Row, error) {
	var rows []Row
	for i := len(f.Records) - 1; i >= 0 && len(rows) < n; i-- {
		r := NewRow(f.Records[i], f.RunID)
		r.ID = int64(i + 1)
		rows = append(rows, r)
	}
	return rows, nil
}

// Close marks the store closed.
func (f *FakeStore) Close() error {
	f.Closed = true
	return nil
}
