package service

import (
	"testing"

	"github.com/mrcgomez/safetyagent/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scorerCorpus(texts ...string) []domain.Chunk {
	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{
			ID:         domain.ChunkID("doc-1", i),
			Text:       text,
			Index:      i,
			DocumentID: "doc-1",
		}
	}
	return chunks
}

func TestRank_ExcludesZeroMatches(t *testing.T) {
	corpus := scorerCorpus(
		"Wear hearing protection near loud machinery.",
		"Forklift operators must be certified every three years.",
		"Completely unrelated paragraph about cafeteria hours.",
	)

	ranked := Rank("hearing protection", corpus, DefaultRankLimit)
	require.NotEmpty(t, ranked)
	for _, r := range ranked {
		assert.Greater(t, r.Score, 0.0)
		assert.NotContains(t, r.Chunk.Text, "cafeteria")
	}
}

func TestRank_ScoresNonIncreasing(t *testing.T) {
	corpus := scorerCorpus(
		"Fire extinguishers are inspected monthly.",
		"In case of fire use the nearest exit.",
		"Fire drills and fire extinguisher training happen every fire season.",
		"Safety glasses protect against debris.",
	)

	ranked := Rank("fire extinguisher training", corpus, DefaultRankLimit)
	require.NotEmpty(t, ranked)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}
}

func TestRank_EmptyQuery(t *testing.T) {
	corpus := scorerCorpus("Any text at all.")

	assert.Empty(t, Rank("", corpus, DefaultRankLimit))
	assert.Empty(t, Rank("   \t ", corpus, DefaultRankLimit))
	assert.Empty(t, Rank("...", corpus, DefaultRankLimit))
}

func TestRank_PhraseMatchWinsOverScatteredTokens(t *testing.T) {
	corpus := scorerCorpus(
		"PPE requires hard hats and",
		"hats and safety glasses on",
		"glasses on site.",
	)

	ranked := Rank("hard hats", corpus, DefaultRankLimit)
	require.NotEmpty(t, ranked)
	assert.Contains(t, ranked[0].Chunk.Text, "hard hats")
}

func TestRank_TrailingPunctuationStripped(t *testing.T) {
	corpus := scorerCorpus("Report every incident to your supervisor immediately.")

	ranked := Rank("incident? supervisor!", corpus, DefaultRankLimit)
	require.Len(t, ranked, 1)
	// Both tokens match after stripping; the raw "incident?" segment does
	// not appear verbatim, so no phrase bonus applies.
	assert.InDelta(t, 1.0, ranked[0].Score, 0.0001)
}

func TestRank_LimitTruncates(t *testing.T) {
	corpus := scorerCorpus(
		"safety one", "safety two", "safety three",
		"safety four", "safety five", "safety six",
	)

	ranked := Rank("safety", corpus, 2)
	assert.Len(t, ranked, 2)
}

func TestRank_SubstringContainment(t *testing.T) {
	corpus := scorerCorpus("Scaffolding must be inspected before each shift.")

	// "scaffold" matches as a substring of "scaffolding".
	ranked := Rank("scaffold", corpus, DefaultRankLimit)
	require.Len(t, ranked, 1)
	assert.Greater(t, ranked[0].Score, 0.0)
}

func TestRank_StableForEqualScores(t *testing.T) {
	corpus := scorerCorpus(
		"helmet rule first mention",
		"helmet rule second mention",
	)

	ranked := Rank("helmet", corpus, DefaultRankLimit)
	require.Len(t, ranked, 2)
	assert.Equal(t, ranked[0].Score, ranked[1].Score)
	assert.Equal(t, corpus[0].ID, ranked[0].Chunk.ID)
	assert.Equal(t, corpus[1].ID, ranked[1].Chunk.ID)
}
