package model

// LiteratureRecord is one mined publication abstract. Records are written
// once by the mining stage and never mutated afterwards; entries with an
// empty abstract are kept here and filtered out at indexing time.
type LiteratureRecord struct {
	ID       string   `json:"pmid"`               // External record identifier (PubMed ID)
	Title    string   `json:"title"`              // Article title
	Abstract string   `json:"abstract"`           // Abstract text, may be empty
	Authors  []string `json:"authors,omitempty"`  // Author names in publication order
	Date     string   `json:"date,omitempty"`     // Publication date as reported by the source
}

// IndexChunk is a fixed-size span of a cleaned abstract, carrying a
// back-reference to its source record for citation. The back-reference is
// metadata only; chunks do not own record lifecycle.
type IndexChunk struct {
	SourceID string `json:"source_id"` // PMID of the originating record
	Title    string `json:"title"`     // Title of the originating record
	Text     string `json:"text"`      // Chunk text
	Seq      int    `json:"seq"`       // Position of the chunk within its record
}
