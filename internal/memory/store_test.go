package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_AddAssignsSequentialIDs(t *testing.T) {
	s := NewStore()

	assert.Equal(t, 0, s.Add("first memory", nil))
	assert.Equal(t, 1, s.Add("second memory", map[string]any{"kind": "note"}))
	assert.Equal(t, 2, s.Len())
}

func TestStore_Search_IdenticalTextRanksFirst(t *testing.T) {
	s := NewStore()
	s.Add("workflow for billing feature", nil)
	s.Add("completely different topic about databases", nil)
	s.Add("another unrelated note on logging", nil)

	results := s.Search("workflow for billing feature", 3, nil)
	require.NotEmpty(t, results)

	// Embeddings are deterministic, so identical text has similarity 1.
	assert.Equal(t, "workflow for billing feature", results[0].Text)
	assert.InDelta(t, 1.0, results[0].Similarity, 1e-9)
}

func TestStore_Search_RespectsTopK(t *testing.T) {
	s := NewStore()
	for i := 0; i < 10; i++ {
		s.Add("memory entry", map[string]any{"n": i})
	}

	assert.Len(t, s.Search("query", 3, nil), 3)
	// Non-positive topK falls back to 5.
	assert.Len(t, s.Search("query", 0, nil), 5)
}

func TestStore_Search_MetadataFilter(t *testing.T) {
	s := NewStore()
	s.Add("run one", map[string]any{"kind": "workflow_run"})
	s.Add("note one", map[string]any{"kind": "note"})
	s.Add("run two", map[string]any{"kind": "workflow_run"})

	results := s.Search("run", 10, map[string]any{"kind": "workflow_run"})
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, "workflow_run", r.Metadata["kind"])
	}
}

func TestStore_Search_EmptyStore(t *testing.T) {
	s := NewStore()
	assert.Empty(t, s.Search("anything", 5, nil))
}

func TestStore_Add_StampsTimestamp(t *testing.T) {
	s := NewStore()
	s.Add("memory", map[string]any{})

	results := s.Search("memory", 1, nil)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Metadata, "timestamp")
}
