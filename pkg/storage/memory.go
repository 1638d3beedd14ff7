package storage

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/matzehuels/flownet/pkg/graph"
)

// MemoryStore keeps records in a map. Documents are copied on the way in
// and out so callers cannot mutate stored state.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) Save(ctx context.Context, doc graph.Document) (Record, error) {
	rec := newRecord(cloneDocument(doc))

	s.mu.Lock()
	s.records[rec.ID] = rec
	s.mu.Unlock()
	return cloneRecord(rec), nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return cloneRecord(rec), nil
}

func (s *MemoryStore) List(ctx context.Context) ([]Record, error) {
	s.mu.RLock()
	recs := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		recs = append(recs, cloneRecord(rec))
	}
	s.mu.RUnlock()

	sortRecords(recs)
	return recs, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return ErrNotFound
	}
	delete(s.records, id)
	return nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *MemoryStore) Close() error { return nil }

func cloneRecord(rec Record) Record {
	rec.Document = cloneDocument(rec.Document)
	return rec
}

func cloneDocument(doc graph.Document) graph.Document {
	doc.Vars = maps.Clone(doc.Vars)
	doc.Nodes = slices.Clone(doc.Nodes)
	doc.Edges = slices.Clone(doc.Edges)
	return doc
}

var _ Store = (*MemoryStore)(nil)
