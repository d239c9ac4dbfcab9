// Package corpus loads a prepared, pre-chunked manual archive into the
// knowledge base at startup.
package corpus

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mrcgomez/safetyagent/internal/domain"
)

// DocumentID is the fixed identifier of the bundled manual document.
const DocumentID = "safety_manual"

// archive is the on-disk JSON shape of a prepared manual.
type archive struct {
	Metadata struct {
		SourceFile      string `json:"source_file"`
		ExtractionDate  string `json:"extraction_date"`
		TotalChunks     int    `json:"total_chunks"`
		TotalCharacters int    `json:"total_characters"`
	} `json:"metadata"`
	Chunks []struct {
		ID        string `json:"id"`
		Title     string `json:"title"`
		Content   string `json:"content"`
		WordCount int    `json:"word_count"`
	} `json:"chunks"`
	FullText string `json:"full_text"`
}

// Manual is a decoded archive ready for ingestion.
type Manual struct {
	Document domain.Document
	Chunks   []domain.Chunk
	FullText string
	Source   string
}

// Options selects where the archive comes from. Sources are tried in order:
// compressed env payload first, then raw JSON payload, then file path. All
// empty means no bundled manual, which is not an error.
type Options struct {
	Compressed string // base64-encoded gzip of the archive JSON
	JSON       string // the archive JSON itself
	Path       string // path to an archive JSON file
}

// Load decodes the first available archive source. Returns (nil, nil) when
// no source is configured.
func Load(opts Options) (*Manual, error) {
	switch {
	case opts.Compressed != "":
		raw, err := decompress(opts.Compressed)
		if err != nil {
			return nil, fmt.Errorf("corpus: decode compressed archive: %w", err)
		}
		return decode(raw, "environment")
	case opts.JSON != "":
		return decode([]byte(opts.JSON), "environment")
	case opts.Path != "":
		raw, err := os.ReadFile(opts.Path)
		if err != nil {
			return nil, fmt.Errorf("corpus: read archive file: %w", err)
		}
		return decode(raw, "file")
	default:
		return nil, nil
	}
}

func decompress(encoded string) ([]byte, error) {
	compressed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}

	zr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	return io.ReadAll(zr)
}

func decode(raw []byte, source string) (*Manual, error) {
	var a archive
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("corpus: parse archive: %w", err)
	}
	if len(a.Chunks) == 0 {
		return nil, fmt.Errorf("corpus: %w: archive has no chunks", domain.ErrEmptyContent)
	}
	if a.FullText == "" {
		return nil, fmt.Errorf("corpus: %w: archive has no full text", domain.ErrEmptyContent)
	}

	extractionDate := a.Metadata.ExtractionDate
	if extractionDate == "" {
		extractionDate = time.Now().UTC().Format(time.RFC3339)
	}

	doc := domain.Document{
		ID:         DocumentID,
		Filename:   a.Metadata.SourceFile,
		Category:   "safety_manual",
		SizeBytes:  int64(len(raw)),
		TextLength: a.Metadata.TotalCharacters,
		IngestedAt: time.Now().UTC(),
	}
	if doc.TextLength == 0 {
		doc.TextLength = len(a.FullText)
	}

	chunks := make([]domain.Chunk, 0, len(a.Chunks))
	for i, c := range a.Chunks {
		id := c.ID
		if id == "" {
			id = domain.ChunkID(DocumentID, i)
		}
		chunks = append(chunks, domain.Chunk{
			ID:         id,
			Text:       c.Content,
			Index:      i,
			WordCount:  c.WordCount,
			DocumentID: DocumentID,
			Title:      c.Title,
			Meta: domain.Metadata{
				DocumentID:     DocumentID,
				Filename:       a.Metadata.SourceFile,
				Category:       "safety_manual",
				Title:          c.Title,
				ExtractionDate: extractionDate,
			},
		})
	}

	return &Manual{
		Document: doc,
		Chunks:   chunks,
		FullText: a.FullText,
		Source:   source,
	}, nil
}
