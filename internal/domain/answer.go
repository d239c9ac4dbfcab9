package domain

import "time"

// RankedChunk pairs a chunk with its transient relevance score. It is valid
// only for the lifetime of one query and is never stored.
type RankedChunk struct {
	Chunk Chunk
	Score float64
}

// Source is a citation pointing back at the chunk an answer drew from.
type Source struct {
	Filename  string  `json:"filename"`
	ChunkID   string  `json:"chunk_id"`
	Relevance float64 `json:"relevance"`
}

// AnswerResult is the outcome of one query: the response text, a confidence
// in [0, 1], and the ordered citation list.
type AnswerResult struct {
	Answer     string
	Confidence float64
	Sources    []Source
	CreatedAt  time.Time
}
