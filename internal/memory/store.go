// Package memory is the historical-memory search collaborator: an in-memory
// vector store over deterministic hash embeddings.
//
// DESIGN: This is a stand-in for a real embedding model — embeddings are
// pseudo-random vectors seeded from a hash of the text, so identical text
// always maps to the same vector. Good enough for the adaptive planner and
// risk agent to surface past runs; callers must treat results as best-effort.
package memory

import (
	"hash/fnv"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"
)

// embeddingDim matches the all-MiniLM-L6-v2 dimension the store is sized for.
const embeddingDim = 384

// Entry is a stored memory with its metadata.
type Entry struct {
	ID       int            `json:"id"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
}

// Result is a search hit with its similarity score in [-1, 1].
type Result struct {
	Entry
	Similarity float64 `json:"similarity"`
}

// Store holds memories and answers similarity queries.
// Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	entries  []Entry
	vectors  [][]float64
}

// NewStore creates an empty memory store.
func NewStore() *Store {
	return &Store{}
}

// Add stores text with metadata and returns the memory ID.
func (s *Store) Add(text string, metadata map[string]any) int {
	if metadata == nil {
		metadata = map[string]any{}
	}
	if _, ok := metadata["timestamp"]; !ok {
		metadata["timestamp"] = time.Now().Format(time.RFC3339)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := len(s.entries)
	s.entries = append(s.entries, Entry{ID: id, Text: text, Metadata: metadata})
	s.vectors = append(s.vectors, embed(text))
	return id
}

// Search returns up to topK memories most similar to query, optionally
// filtered by metadata equality. Never errors; an empty slice means no
// matches (or an empty store).
func (s *Store) Search(query string, topK int, filter map[string]any) []Result {
	if topK <= 0 {
		topK = 5
	}
	queryVec := embed(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]Result, 0, len(s.entries))
	for i, entry := range s.entries {
		if !matches(entry.Metadata, filter) {
			continue
		}
		results = append(results, Result{
			Entry:      entry,
			Similarity: cosine(queryVec, s.vectors[i]),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// Len returns the number of stored memories.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func matches(metadata, filter map[string]any) bool {
	for k, want := range filter {
		if metadata[k] != want {
			return false
		}
	}
	return true
}

// embed produces a deterministic pseudo-embedding for text.
func embed(text string) []float64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	vec := make([]float64, embeddingDim)
	for i := range vec {
		vec[i] = rng.NormFloat64()
	}
	return vec
}

func cosine(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
