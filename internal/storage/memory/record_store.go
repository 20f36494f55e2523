// Package memory keeps fetch records in-memory for development and tests.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/JakeFAU/trendwatch/internal/trends"
)

// RecordStore is an in-memory trends.RecordStore.
type RecordStore struct {
	mu      sync.RWMutex
	order   []string
	records map[string]trends.RecordDocument
}

// NewRecordStore constructs an empty RecordStore.
func NewRecordStore() *RecordStore {
	return &RecordStore{records: make(map[string]trends.RecordDocument)}
}

// Persist stores the record keyed by its ID. IDs are write-once.
func (s *RecordStore) Persist(_ context.Context, record trends.FetchRecord) error {
	if record.ID == "" {
		return errors.New("record id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[record.ID]; exists {
		return errors.New("record already exists")
	}
	s.records[record.ID] = record.Document()
	s.order = append(s.order, record.ID)
	return nil
}

// List returns stored documents in insertion order.
func (s *RecordStore) List() []trends.RecordDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]trends.RecordDocument, 0, len(s.order))
	for _, id := range s.order {
		doc := s.records[id]
		doc.Topics = append([]string(nil), doc.Topics...)
		out = append(out, doc)
	}
	return out
}
