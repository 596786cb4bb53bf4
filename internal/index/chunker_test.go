package index

import (
	"strings"
	"testing"

	"github.com/sameerk147/repurpose/internal/model"
)

func TestChunker_Geometry(t *testing.T) {
	chunker := NewChunker(100, 20)
	abstract := strings.Repeat("a", 250)

	chunks := chunker.Chunk([]model.LiteratureRecord{{ID: "1", Title: "T", Abstract: abstract}})

	// step = 80: spans [0,100), [80,180), [160,250)
	if len(chunks) != 3 {
		t.Fatalf("Expected 3 chunks, got %d", len(chunks))
	}
	if len(chunks[0].Text) != 100 || len(chunks[1].Text) != 100 || len(chunks[2].Text) != 90 {
		t.Errorf("Unexpected chunk lengths: %d, %d, %d", len(chunks[0].Text), len(chunks[1].Text), len(chunks[2].Text))
	}
	for i, c := range chunks {
		if c.Seq != i {
			t.Errorf("Chunk %d has seq %d", i, c.Seq)
		}
		if c.SourceID != "1" || c.Title != "T" {
			t.Errorf("Chunk %d lost its back-reference: %+v", i, c)
		}
	}
}

func TestChunker_OverlapPreservesBoundaryText(t *testing.T) {
	chunker := NewChunker(100, 20)
	abstract := strings.Repeat("x", 150)

	chunks := chunker.Chunk([]model.LiteratureRecord{{ID: "1", Abstract: abstract}})
	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks, got %d", len(chunks))
	}

	// The second chunk starts 20 runes before the first ends.
	if chunks[0].Text[80:] != chunks[1].Text[:20] {
		t.Error("Expected 20 runes of overlap between consecutive chunks")
	}
}

func TestChunker_SkipsEmptyAbstracts(t *testing.T) {
	chunker := NewChunker(500, 50)
	chunks := chunker.Chunk([]model.LiteratureRecord{
		{ID: "1", Abstract: ""},
		{ID: "2", Abstract: "   "},
		{ID: "3", Abstract: "<p></p>"},
		{ID: "4", Abstract: "Metformin activates AMPK."},
	})

	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].SourceID != "4" {
		t.Errorf("Expected chunk from record 4, got %q", chunks[0].SourceID)
	}
}

func TestChunker_ShortAbstractIsOneChunk(t *testing.T) {
	chunker := NewChunker(500, 50)
	chunks := chunker.Chunk([]model.LiteratureRecord{{ID: "1", Abstract: "short text"}})

	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != "short text" {
		t.Errorf("Expected whole abstract, got %q", chunks[0].Text)
	}
}

func TestNewChunker_InvalidGeometryFallsBack(t *testing.T) {
	chunker := NewChunker(0, -5)
	if chunker.size != 500 || chunker.overlap != 50 {
		t.Errorf("Expected 500/50 fallback, got %d/%d", chunker.size, chunker.overlap)
	}

	chunker = NewChunker(40, 80)
	if chunker.overlap >= chunker.size {
		t.Errorf("Overlap %d must stay below size %d", chunker.overlap, chunker.size)
	}
}
