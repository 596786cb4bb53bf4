package index

import "github.com/sameerk147/repurpose/internal/model"

// Chunker splits cleaned abstracts into overlapping fixed-size rune spans.
// Overlap preserves local context across chunk boundaries while keeping
// embedding cost bounded. Geometry is an index constant, not a per-call
// parameter.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker creates a chunker with the given span geometry. Invalid values
// fall back to 500/50.
func NewChunker(size, overlap int) *Chunker {
	if size <= 0 {
		size = 500
	}
	if overlap < 0 || overlap >= size {
		overlap = 50
		if overlap >= size {
			overlap = size / 10
		}
	}
	return &Chunker{size: size, overlap: overlap}
}

// Chunk cleans each record's abstract, drops records with empty abstracts,
// and splits the remainder into spans carrying source back-references.
func (c *Chunker) Chunk(records []model.LiteratureRecord) []model.IndexChunk {
	var chunks []model.IndexChunk

	for _, rec := range records {
		text := CleanText(rec.Abstract)
		if text == "" {
			continue
		}
		title := CleanText(rec.Title)

		runes := []rune(text)
		step := c.size - c.overlap
		seq := 0
		for start := 0; start < len(runes); start += step {
			end := start + c.size
			if end > len(runes) {
				end = len(runes)
			}

			chunks = append(chunks, model.IndexChunk{
				SourceID: rec.ID,
				Title:    title,
				Text:     string(runes[start:end]),
				Seq:      seq,
			})
			seq++

			if end == len(runes) {
				break
			}
		}
	}

	return chunks
}
