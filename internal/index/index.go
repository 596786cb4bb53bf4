// Package index builds and queries the retrieval index over cleaned
// literature chunks. The index is a handoff artifact: the indexing stage
// writes it, the reasoning stage reloads it and runs top-k similarity
// queries against it.
package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/sameerk147/repurpose/internal/eventlog"
	"github.com/sameerk147/repurpose/internal/model"
	"github.com/sameerk147/repurpose/internal/store"
)

const indexFile = "index.json"

// Index holds the chunk corpus, its vectors, and the embedder that produced
// them. Vectors are L2-normalized, so cosine similarity reduces to a dot
// product.
type Index struct {
	embedder *Embedder
	chunks   []model.IndexChunk
	vectors  [][]float64
}

// Build cleans, chunks, and embeds the given records.
func Build(records []model.LiteratureRecord, cfg model.IndexConfig, log *eventlog.Logger) (*Index, error) {
	log = log.With("Indexer")

	chunker := NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	chunks := chunker.Chunk(records)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no indexable abstracts in %d records", len(records))
	}
	log.Infof("Chunking complete: %d records -> %d chunks (size=%d, overlap=%d)",
		len(records), len(chunks), cfg.ChunkSize, cfg.ChunkOverlap)

	corpus := make([]string, len(chunks))
	for i, c := range chunks {
		corpus[i] = c.Text
	}

	embedder := NewEmbedder()
	if err := embedder.Prepare(corpus); err != nil {
		return nil, fmt.Errorf("prepare embedder: %w", err)
	}

	vectors := make([][]float64, len(chunks))
	for i, text := range corpus {
		vectors[i] = embedder.Embed(text)
	}
	log.Infof("[INDEX] Embedded %d chunks (dimension=%d)", len(chunks), embedder.Dimension())

	return &Index{embedder: embedder, chunks: chunks, vectors: vectors}, nil
}

// Len returns the number of indexed chunks.
func (ix *Index) Len() int { return len(ix.chunks) }

// Search returns the top-k chunks by descending cosine similarity to the
// query. Ties break deterministically on insertion order for a fixed index
// state.
func (ix *Index) Search(query string, k int) []model.IndexChunk {
	if k <= 0 || len(ix.chunks) == 0 {
		return nil
	}

	qvec := ix.embedder.Embed(query)

	type scored struct {
		idx   int
		score float64
	}
	ranked := make([]scored, len(ix.vectors))
	for i, vec := range ix.vectors {
		ranked[i] = scored{idx: i, score: dot(vec, qvec)}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if k > len(ranked) {
		k = len(ranked)
	}
	results := make([]model.IndexChunk, k)
	for i := 0; i < k; i++ {
		results[i] = ix.chunks[ranked[i].idx]
	}
	return results
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// indexDocument is the persisted form of the index.
type indexDocument struct {
	Embedder embedderState      `json:"embedder"`
	Chunks   []model.IndexChunk `json:"chunks"`
	Vectors  [][]float64        `json:"vectors"`
}

// Save writes the index into dir, fully replacing any previous state.
func (ix *Index) Save(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("clear index dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}

	doc := indexDocument{
		Embedder: ix.embedder.state(),
		Chunks:   ix.chunks,
		Vectors:  ix.vectors,
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, indexFile), data, 0o644); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

// Load reloads a saved index. A missing index directory is a missing
// handoff, fatal to the consuming stage.
func Load(dir string) (*Index, error) {
	data, err := os.ReadFile(filepath.Join(dir, indexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", store.ErrMissingHandoff, dir)
		}
		return nil, fmt.Errorf("read index: %w", err)
	}

	var doc indexDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: index: %v", store.ErrMalformedRecord, err)
	}
	if len(doc.Chunks) != len(doc.Vectors) {
		return nil, fmt.Errorf("%w: index: chunk/vector count mismatch", store.ErrMalformedRecord)
	}

	embedder, err := embedderFromState(doc.Embedder)
	if err != nil {
		return nil, fmt.Errorf("%w: index: %v", store.ErrMalformedRecord, err)
	}

	return &Index{embedder: embedder, chunks: doc.Chunks, vectors: doc.Vectors}, nil
}
