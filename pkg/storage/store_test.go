package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/matzehuels/flownet/pkg/cache"
	"github.com/matzehuels/flownet/pkg/graph"
)

func sampleDoc(name string) graph.Document {
	return graph.Document{
		Name: name,
		Vars: map[string]float64{"lanes": 2},
		Nodes: []graph.Node{
			{ID: 1, Value: 1},
			{ID: 2, Value: 2},
		},
		Edges: []graph.Edge{
			{From: 1, To: 2, CapacityExpr: "lanes * 10"},
		},
	}
}

// testStore runs the behaviour every backend shares.
func testStore(t *testing.T, s Store) {
	ctx := context.Background()

	empty, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	first, err := s.Save(ctx, sampleDoc("first"))
	require.NoError(t, err)
	_, err = uuid.Parse(first.ID)
	require.NoError(t, err, "IDs are UUIDs")
	assert.Equal(t, "first", first.Name)
	assert.False(t, first.CreatedAt.IsZero())

	second, err := s.Save(ctx, sampleDoc("second"))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	got, err := s.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, "first", got.Document.Name)
	assert.Equal(t, "lanes * 10", got.Document.Edges[0].CapacityExpr)
	assert.Equal(t, 2.0, got.Document.Vars["lanes"])

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	ids := []string{all[0].ID, all[1].ID}
	assert.ElementsMatch(t, []string{first.ID, second.ID}, ids)
	assert.False(t, all[1].CreatedAt.Before(all[0].CreatedAt), "oldest first")

	require.NoError(t, s.Delete(ctx, first.ID))
	_, err = s.Get(ctx, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, first.ID), ErrNotFound)

	_, err = s.Get(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(ctx, "../../etc/passwd")
	assert.ErrorIs(t, err, ErrNotFound)

	all, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, second.ID, all[0].ID)

	require.NoError(t, s.Close())
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	testStore(t, s)
}

func TestMemoryStoreCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	doc := sampleDoc("g")
	rec, err := s.Save(ctx, doc)
	require.NoError(t, err)

	doc.Vars["lanes"] = 99
	doc.Nodes[0].Value = 99
	rec.Document.Edges[0].CapacityExpr = "1"

	got, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.Document.Vars["lanes"])
	assert.Equal(t, 1.0, got.Document.Nodes[0].Value)
	assert.Equal(t, "lanes * 10", got.Document.Edges[0].CapacityExpr)
	assert.Equal(t, 1, s.Len())
}

func TestFileStoreSkipsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, s.Path())

	ctx := context.Background()
	rec, err := s.Save(ctx, sampleDoc("keep"))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.json"), []byte("{}"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, uuid.NewString()+".json"), []byte("not json"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o700))

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, rec.ID, all[0].ID)
}

func TestFileStoreCorruptRecord(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	id := uuid.NewString()
	require.NoError(t, os.WriteFile(filepath.Join(dir, id+".json"), []byte("{"), 0o600))

	_, err = s.Get(context.Background(), id)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify("find", nil))

	err := classify("find", errors.New("bad filter"))
	require.Error(t, err)
	assert.False(t, cache.IsRetryable(err))
	assert.Contains(t, err.Error(), "mongo find")

	err = classify("find", mongo.ErrNoDocuments)
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)
	assert.False(t, errors.Is(err, cache.ErrNetwork))
}

func TestNotFoundIsCacheSentinel(t *testing.T) {
	assert.ErrorIs(t, ErrNotFound, cache.ErrNotFound)
}
