package service

import (
	"context"
	"strings"
	"testing"

	"github.com/mrcgomez/safetyagent/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	args := m.Called(ctx, systemPrompt, userPrompt)
	return args.String(0), args.Error(1)
}

func rankedFixture(scores ...float64) []domain.RankedChunk {
	ranked := make([]domain.RankedChunk, len(scores))
	for i, score := range scores {
		ranked[i] = domain.RankedChunk{
			Chunk: domain.Chunk{
				ID:         domain.ChunkID("doc-1", i),
				Text:       strings.Repeat("hard hat area ", 50),
				Index:      i,
				DocumentID: "doc-1",
				Meta:       domain.Metadata{DocumentID: "doc-1", Filename: "manual.pdf"},
			},
			Score: score,
		}
	}
	return ranked
}

func TestExtractiveSynthesizer_NoChunks(t *testing.T) {
	synth := NewExtractiveSynthesizer()

	result := synth.Answer(context.Background(), "anything", nil)

	assert.Equal(t, NotFoundAnswer, result.Answer)
	assert.Equal(t, 0.0, result.Confidence)
	assert.Empty(t, result.Sources)
	assert.False(t, result.CreatedAt.IsZero())
}

func TestExtractiveSynthesizer_SingleChunk(t *testing.T) {
	synth := NewExtractiveSynthesizer()
	ranked := rankedFixture(0.7)

	result := synth.Answer(context.Background(), "hard hats", ranked)

	assert.True(t, strings.HasPrefix(result.Answer, "Based on the safety manual:\n\n"))
	assert.True(t, strings.HasSuffix(result.Answer, "..."))
	assert.NotContains(t, result.Answer, "1. ")

	body := strings.TrimPrefix(result.Answer, "Based on the safety manual:\n\n")
	body = strings.TrimSuffix(body, "...")
	assert.LessOrEqual(t, len([]rune(body)), 500)

	assert.Equal(t, 0.7, result.Confidence)
	require.Len(t, result.Sources, 1)
	assert.Equal(t, "manual.pdf", result.Sources[0].Filename)
	assert.Equal(t, "doc-1_chunk_0", result.Sources[0].ChunkID)
	assert.Equal(t, 0.7, result.Sources[0].Relevance)
}

func TestExtractiveSynthesizer_MultipleChunks(t *testing.T) {
	synth := NewExtractiveSynthesizer()
	ranked := rankedFixture(0.9, 0.6, 0.4, 0.2)

	result := synth.Answer(context.Background(), "hard hats", ranked)

	// Only the top three chunks are quoted, numbered.
	assert.Contains(t, result.Answer, "1. ")
	assert.Contains(t, result.Answer, "2. ")
	assert.Contains(t, result.Answer, "3. ")
	assert.NotContains(t, result.Answer, "4. ")

	require.Len(t, result.Sources, 3)
	assert.Equal(t, "doc-1_chunk_0", result.Sources[0].ChunkID)
	assert.Equal(t, "doc-1_chunk_2", result.Sources[2].ChunkID)
}

func TestExtractiveSynthesizer_ConfidenceClamped(t *testing.T) {
	synth := NewExtractiveSynthesizer()

	tests := []struct {
		name     string
		topScore float64
		want     float64
	}{
		{"low score raised to floor", 0.1, 0.5},
		{"in-range score kept", 0.65, 0.65},
		{"high score capped", 2.5, 0.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := synth.Answer(context.Background(), "q", rankedFixture(tt.topScore))
			assert.InDelta(t, tt.want, result.Confidence, 0.0001)
		})
	}
}

func TestGenerativeSynthesizer_Success(t *testing.T) {
	gen := new(mockGenerator)
	gen.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return("  Always wear a hard hat in marked zones.  ", nil)

	synth := NewGenerativeSynthesizer(gen, NewExtractiveSynthesizer(), 0)
	ranked := rankedFixture(0.8, 0.5)

	result := synth.Answer(context.Background(), "When do I need a hard hat?", ranked)

	assert.Equal(t, "Always wear a hard hat in marked zones.", result.Answer)
	assert.Equal(t, 0.9, result.Confidence)
	require.Len(t, result.Sources, 2)
	gen.AssertExpectations(t)
}

func TestGenerativeSynthesizer_PromptCarriesQueryAndContext(t *testing.T) {
	gen := new(mockGenerator)
	var captured string
	gen.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.String(2)
		}).
		Return("answer", nil)

	synth := NewGenerativeSynthesizer(gen, NewExtractiveSynthesizer(), 0)
	ranked := rankedFixture(0.8)

	synth.Answer(context.Background(), "lockout tagout steps", ranked)

	assert.Contains(t, captured, `"lockout tagout steps"`)
	assert.Contains(t, captured, ranked[0].Chunk.Text)
}

func TestGenerativeSynthesizer_FallsBackOnError(t *testing.T) {
	gen := new(mockGenerator)
	gen.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return("", assert.AnError)

	synth := NewGenerativeSynthesizer(gen, NewExtractiveSynthesizer(), 0)
	ranked := rankedFixture(0.7)

	result := synth.Answer(context.Background(), "hard hats", ranked)

	assert.True(t, strings.HasPrefix(result.Answer, "Based on the safety manual:"))
	assert.GreaterOrEqual(t, result.Confidence, 0.5)
	assert.LessOrEqual(t, result.Confidence, 0.8)
	gen.AssertExpectations(t)
}

func TestGenerativeSynthesizer_NoChunksSkipsGenerator(t *testing.T) {
	gen := new(mockGenerator)

	synth := NewGenerativeSynthesizer(gen, NewExtractiveSynthesizer(), 0)
	result := synth.Answer(context.Background(), "anything", nil)

	assert.Equal(t, NotFoundAnswer, result.Answer)
	assert.Equal(t, 0.0, result.Confidence)
	gen.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
}
