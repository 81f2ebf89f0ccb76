// Package vectorindex provides an append-only in-memory nearest-neighbour index.
package vectorindex

import (
	"math"
	"sort"
	"sync"

	"github.com/schoolhub/aigateway/internal/domain"
)

// Index stores vector records in insertion order. Safe for concurrent use.
type Index struct {
	mu      sync.RWMutex
	records []domain.VectorRecord
}

// New creates an empty index.
func New() *Index {
	return &Index{}
}

// AddVectors appends records to the index.
func (i *Index) AddVectors(records []domain.VectorRecord) {
	if len(records) == 0 {
		return
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	i.records = append(i.records, records...)
}

// Count returns the number of stored records.
func (i *Index) Count() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.records)
}

// SimilaritySearch returns up to topK records ordered by descending cosine
// similarity to query. Ties keep insertion order.
func (i *Index) SimilaritySearch(query []float64, topK int) []domain.ScoredRecord {
	if topK <= 0 {
		return []domain.ScoredRecord{}
	}

	i.mu.RLock()
	scored := make([]domain.ScoredRecord, len(i.records))
	for idx, record := range i.records {
		scored[idx] = domain.ScoredRecord{
			VectorRecord: record,
			Similarity:   CosineSimilarity(query, record.Embedding),
		}
	}
	i.mu.RUnlock()

	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].Similarity > scored[b].Similarity
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}

// CosineSimilarity returns dot(a, b) / (|a| |b|). It is 0 when either vector
// has zero magnitude or the dimensions differ.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for idx := range a {
		dot += a[idx] * b[idx]
		normA += a[idx] * a[idx]
		normB += b[idx] * b[idx]
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
