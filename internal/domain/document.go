package domain

import (
	"fmt"
	"strings"
	"time"
)

// Metadata carries document provenance attached to every chunk.
// Known fields are named; Extra holds only keys the system does not anticipate.
type Metadata struct {
	DocumentID     string
	Filename       string
	Category       string
	Title          string
	ExtractionDate string
	Extra          map[string]string
}

// Document represents an ingested source file in the knowledge base.
type Document struct {
	ID         string
	Filename   string
	Category   string
	SizeBytes  int64
	TextLength int
	IngestedAt time.Time
}

// Chunk is a bounded, overlapping word-window extracted from a document.
// It is the atomic unit of retrieval and is exclusively owned by its document.
type Chunk struct {
	ID         string
	Text       string
	Index      int
	WordCount  int
	DocumentID string
	Title      string
	Meta       Metadata
}

// ChunkID builds the canonical identifier for a locally produced chunk.
func ChunkID(documentID string, index int) string {
	return fmt.Sprintf("%s_chunk_%d", documentID, index)
}

// Stats summarizes the knowledge base. Counters are always recomputed from
// live content, never maintained independently. ChunkWindow and ChunkOverlap
// report the active chunking configuration.
type Stats struct {
	TotalDocuments int
	TotalChunks    int
	CategoryCounts map[string]int
	ChunkWindow    int
	ChunkOverlap   int
}

// NewDocument creates a new Document instance.
func NewDocument(id, filename, category string, sizeBytes int64, textLength int, ingestedAt time.Time) *Document {
	return &Document{
		ID:         id,
		Filename:   filename,
		Category:   category,
		SizeBytes:  sizeBytes,
		TextLength: textLength,
		IngestedAt: ingestedAt,
	}
}

// ValidateDocument validates a Document instance.
func ValidateDocument(d *Document) error {
	if d == nil {
		return fmt.Errorf("document cannot be nil")
	}

	if d.ID == "" {
		return fmt.Errorf("document ID is required")
	}

	if d.Filename == "" {
		return fmt.Errorf("document Filename is required")
	}

	return nil
}

// ValidateChunk validates a Chunk instance.
func ValidateChunk(c *Chunk) error {
	if c == nil {
		return fmt.Errorf("chunk cannot be nil")
	}

	if c.ID == "" {
		return fmt.Errorf("chunk ID is required")
	}

	if c.DocumentID == "" {
		return fmt.Errorf("chunk DocumentID is required")
	}

	if strings.TrimSpace(c.Text) == "" {
		return fmt.Errorf("chunk Text must be non-empty")
	}

	if c.Index < 0 {
		return fmt.Errorf("chunk Index must not be negative")
	}

	return nil
}
