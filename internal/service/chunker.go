package service

import (
	"strings"

	"github.com/mrcgomez/safetyagent/internal/domain"
)

// ChunkConfig controls how extracted text is split into overlapping
// word windows.
type ChunkConfig struct {
	WindowSize int
	Overlap    int
}

// DefaultChunkConfig provides sane defaults for chunking.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		WindowSize: 1000,
		Overlap:    200,
	}
}

// Validate checks the window constraint: 0 < overlap < windowSize.
func (c ChunkConfig) Validate() error {
	if c.Overlap <= 0 || c.Overlap >= c.WindowSize {
		return domain.ErrInvalidChunkWindow
	}
	return nil
}

// ChunkText splits text into overlapping word windows of WindowSize words,
// sliding by WindowSize-Overlap. Each emitted chunk carries a sequential
// index counted over emitted chunks only; windows that are blank after
// trimming are dropped without consuming an index. Empty or all-whitespace
// input yields zero chunks, which callers treat as "no content extracted",
// not as an error.
func ChunkText(text string, cfg ChunkConfig, meta domain.Metadata) ([]domain.Chunk, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, nil
	}

	stride := cfg.WindowSize - cfg.Overlap
	chunks := make([]domain.Chunk, 0, (len(words)+stride-1)/stride)

	for start := 0; start < len(words); start += stride {
		end := start + cfg.WindowSize
		if end > len(words) {
			end = len(words)
		}
		window := words[start:end]

		content := strings.TrimSpace(strings.Join(window, " "))
		if content == "" {
			continue
		}

		index := len(chunks)
		chunks = append(chunks, domain.Chunk{
			ID:         domain.ChunkID(meta.DocumentID, index),
			Text:       content,
			Index:      index,
			WordCount:  len(window),
			DocumentID: meta.DocumentID,
			Title:      meta.Title,
			Meta:       meta,
		})
	}

	return chunks, nil
}
