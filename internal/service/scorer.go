package service

import (
	"sort"
	"strings"

	"github.com/mrcgomez/safetyagent/internal/domain"
)

// DefaultRankLimit caps the number of chunks returned per query.
const DefaultRankLimit = 5

const phraseBonus = 2

// punctuation stripped from the tail of each query token.
const trailingPunct = ".,!?"

// queryTokens normalizes a query: lowercase, whitespace split, trailing
// punctuation stripped, empty tokens dropped.
func queryTokens(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tok := strings.TrimRight(f, trailingPunct)
		if tok == "" {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// Rank scores every chunk in the corpus against the query and returns the
// highest-scoring chunks, capped at limit. Chunks with no token hit are
// excluded entirely; a query with no usable tokens yields an empty result,
// which callers treat as "no relevant content", not as an error.
//
// A token hits when it occurs anywhere in the lowercased chunk text,
// including inside other words. On top of token hits, containing any
// whitespace-delimited segment of the lowercased query verbatim adds a fixed
// bonus; single-word segments therefore count a second time, which is kept
// for compatibility with the scoring this service has always used.
func Rank(query string, corpus []domain.Chunk, limit int) []domain.RankedChunk {
	tokens := queryTokens(query)
	if len(tokens) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = DefaultRankLimit
	}

	segments := strings.Fields(strings.ToLower(query))

	ranked := make([]domain.RankedChunk, 0, limit)
	for _, chunk := range corpus {
		text := strings.ToLower(chunk.Text)

		matches := 0
		for _, tok := range tokens {
			if strings.Contains(text, tok) {
				matches++
			}
		}
		if matches == 0 {
			continue
		}

		for _, seg := range segments {
			if strings.Contains(text, seg) {
				matches += phraseBonus
				break
			}
		}

		ranked = append(ranked, domain.RankedChunk{
			Chunk: chunk,
			Score: float64(matches) / float64(len(tokens)),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
