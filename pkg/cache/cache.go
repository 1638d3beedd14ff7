// Package cache provides the caching layer for solve results and rendered
// artifacts.
//
// A [Cache] stores opaque byte slices under string keys with an optional TTL.
// Backends:
//
//   - [FileCache]: one JSON file per entry, used by the CLI
//   - [MemoryCache]: in-process map, used by the server lifecycle core and tests
//   - [RedisCache]: shared cache for server deployments, behind a circuit breaker
//   - [NullCache]: stores nothing, for --no-cache
//
// Keys are built by a [Keyer] from the content hash of a graph document plus
// the options that influence the result, so identical requests share entries.
package cache

import (
	"context"
	"time"
)

// Default TTLs for cached entries.
const (
	// TTLResult applies to MST and max-flow results. Results depend only on
	// the document hash and options, so they can live long.
	TTLResult = 7 * 24 * time.Hour

	// TTLArtifact applies to rendered DOT and SVG output.
	TTLArtifact = 24 * time.Hour
)

// Cache is a key-value store for byte slices.
//
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures. A ttl of zero means the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// SolveKey returns the key for an algorithm result on a document.
	SolveKey(graphHash string, opts SolveKeyOpts) string

	// ArtifactKey returns the key for a rendered document.
	ArtifactKey(graphHash string, opts ArtifactKeyOpts) string
}

// SolveKeyOpts holds the options that change a solve result.
type SolveKeyOpts struct {
	Algorithm string `json:"algorithm"`
	Root      *int   `json:"root,omitempty"`
	Source    int    `json:"source,omitempty"`
	Sink      int    `json:"sink,omitempty"`
}

// ArtifactKeyOpts holds the options that change rendered output.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	MST      bool   `json:"mst,omitempty"`
	Root     *int   `json:"root,omitempty"`
	Flow     bool   `json:"flow,omitempty"`
	Source   int    `json:"source,omitempty"`
	Sink     int    `json:"sink,omitempty"`
	Detailed bool   `json:"detailed,omitempty"`
}

// DefaultKeyer hashes the graph hash and options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// SolveKey returns "solve:<sha256>".
func (DefaultKeyer) SolveKey(graphHash string, opts SolveKeyOpts) string {
	return hashKey("solve", graphHash, opts)
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(graphHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", graphHash, opts)
}
