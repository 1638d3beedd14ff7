// Package storage persists named graph documents for the HTTP API.
//
// A [Store] assigns each saved document a UUID and keeps it until deleted.
// Backends:
//   - [MemoryStore]: in-process storage for development and tests
//   - [FileStore]: one JSON file per graph, for single-node deployments
//   - [MongoStore]: MongoDB-backed storage for multi-instance deployments
//
// # Usage
//
//	store := storage.NewMemoryStore()
//	rec, err := store.Save(ctx, doc)
//	if err != nil {
//	    return err
//	}
//	rec, err = store.Get(ctx, rec.ID)
//	if errors.Is(err, storage.ErrNotFound) {
//	    // unknown ID
//	}
package storage

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/flownet/pkg/cache"
	"github.com/matzehuels/flownet/pkg/graph"
)

// ErrNotFound is returned when no graph is stored under an ID.
// It is the cache sentinel so both layers classify the same way.
var ErrNotFound = cache.ErrNotFound

// Record is a stored graph document.
type Record struct {
	ID        string         `json:"id" bson:"_id"`
	Name      string         `json:"name" bson:"name"`
	Document  graph.Document `json:"document" bson:"document"`
	CreatedAt time.Time      `json:"created_at" bson:"created_at"`
}

// Store is the interface for graph storage backends.
type Store interface {
	// Save stores doc under a freshly generated ID.
	Save(ctx context.Context, doc graph.Document) (Record, error)

	// Get retrieves a record by ID. Returns ErrNotFound for unknown IDs.
	Get(ctx context.Context, id string) (Record, error)

	// List returns all records, oldest first.
	List(ctx context.Context) ([]Record, error)

	// Delete removes a record. Returns ErrNotFound for unknown IDs.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

func newRecord(doc graph.Document) Record {
	return Record{
		ID:        uuid.NewString(),
		Name:      doc.Name,
		Document:  doc,
		CreatedAt: time.Now().UTC(),
	}
}

// validID rejects IDs that are not UUIDs before they reach a backend,
// which keeps file paths and queries well-formed.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func sortRecords(recs []Record) {
	slices.SortFunc(recs, func(a, b Record) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
