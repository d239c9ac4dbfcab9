package service

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/mrcgomez/safetyagent/internal/domain"
)

const (
	// answerContextChunks caps how many ranked chunks feed an answer.
	answerContextChunks = 3

	singleExcerptChars = 500
	multiExcerptChars  = 300

	generativeConfidence     = 0.9
	extractiveMinConfidence  = 0.5
	extractiveMaxConfidence  = 0.8
	defaultGenerationTimeout = 30 * time.Second

	answerPreamble = "Based on the safety manual:\n\n"

	// NotFoundAnswer is returned verbatim when ranking produced no chunks.
	NotFoundAnswer = "I couldn't find specific information about that topic in the safety manual. " +
		"Try asking about general safety requirements, PPE, emergency procedures, or incident reporting."

	// EmptyKnowledgeAnswer is returned when nothing has been indexed yet.
	EmptyKnowledgeAnswer = "I don't have access to the safety manual yet. " +
		"Please restart the server to load the safety manual."

	generatorSystemPrompt = `You are SafetyAgent AI, a helpful assistant that answers questions about workplace safety based on the provided safety manual content.

Your role:
- Answer safety-related questions clearly and accurately
- Use only information from the provided safety manual content
- Be helpful, professional, and safety-focused
- If the information isn't in the manual, say so clearly
- Provide specific, actionable guidance when possible

Always base your answers on the safety manual content provided.`
)

// TextGenerator is the optional generative collaborator. Implementations may
// fail; the synthesizer recovers from any failure.
type TextGenerator interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Synthesizer turns ranked chunks into an answer. Both variants satisfy the
// same contract and never return an error: answering degrades, it does not
// fail.
type Synthesizer interface {
	Answer(ctx context.Context, query string, ranked []domain.RankedChunk) domain.AnswerResult
}

// ExtractiveSynthesizer composes an answer directly from chunk excerpts.
type ExtractiveSynthesizer struct{}

// NewExtractiveSynthesizer creates the chunk-quoting synthesizer.
func NewExtractiveSynthesizer() *ExtractiveSynthesizer {
	return &ExtractiveSynthesizer{}
}

// Answer quotes the top chunks. Confidence is the top score clamped to
// [0.5, 0.8], reflecting lower trust in unprocessed extracts.
func (s *ExtractiveSynthesizer) Answer(_ context.Context, _ string, ranked []domain.RankedChunk) domain.AnswerResult {
	if len(ranked) == 0 {
		return notFoundResult()
	}

	top := topChunks(ranked)

	var b strings.Builder
	b.WriteString(answerPreamble)
	if len(top) == 1 {
		b.WriteString(excerpt(top[0].Chunk.Text, singleExcerptChars))
		b.WriteString("...")
	} else {
		for i, rc := range top {
			b.WriteString(numberPrefix(i + 1))
			b.WriteString(excerpt(rc.Chunk.Text, multiExcerptChars))
			b.WriteString("...\n\n")
		}
	}

	confidence := top[0].Score
	if confidence < extractiveMinConfidence {
		confidence = extractiveMinConfidence
	}
	if confidence > extractiveMaxConfidence {
		confidence = extractiveMaxConfidence
	}

	return domain.AnswerResult{
		Answer:     b.String(),
		Confidence: confidence,
		Sources:    sourcesFor(top),
		CreatedAt:  time.Now().UTC(),
	}
}

// GenerativeSynthesizer asks the text generator to answer from retrieved
// context and delegates to a fallback synthesizer whenever the generator
// fails. Selection between variants happens once, at construction.
type GenerativeSynthesizer struct {
	generator TextGenerator
	fallback  Synthesizer
	timeout   time.Duration
}

// NewGenerativeSynthesizer wraps a generator around a fallback synthesizer.
func NewGenerativeSynthesizer(generator TextGenerator, fallback Synthesizer, timeout time.Duration) *GenerativeSynthesizer {
	if timeout <= 0 {
		timeout = defaultGenerationTimeout
	}
	return &GenerativeSynthesizer{
		generator: generator,
		fallback:  fallback,
		timeout:   timeout,
	}
}

// Answer invokes the generator once, bounded by the configured timeout. Any
// generator error degrades to the extractive fallback; a query never hard
// fails on the generative path.
func (s *GenerativeSynthesizer) Answer(ctx context.Context, query string, ranked []domain.RankedChunk) domain.AnswerResult {
	if len(ranked) == 0 {
		return notFoundResult()
	}

	top := topChunks(ranked)
	contextParts := make([]string, 0, len(top))
	for _, rc := range top {
		contextParts = append(contextParts, rc.Chunk.Text)
	}

	userPrompt := "Based on the following safety manual content, please answer this question: \"" + query + "\"\n\n" +
		"Safety Manual Content:\n" + strings.Join(contextParts, "\n\n") + "\n\n" +
		"Please provide a clear, helpful answer based on the safety manual information above."

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	answer, err := s.generator.Complete(genCtx, generatorSystemPrompt, userPrompt)
	if err != nil {
		log.Printf("generation failed, falling back to extractive answer: %v", err)
		return s.fallback.Answer(ctx, query, ranked)
	}

	return domain.AnswerResult{
		Answer:     strings.TrimSpace(answer),
		Confidence: generativeConfidence,
		Sources:    sourcesFor(top),
		CreatedAt:  time.Now().UTC(),
	}
}

func notFoundResult() domain.AnswerResult {
	return domain.AnswerResult{
		Answer:     NotFoundAnswer,
		Confidence: 0.0,
		Sources:    []domain.Source{},
		CreatedAt:  time.Now().UTC(),
	}
}

func topChunks(ranked []domain.RankedChunk) []domain.RankedChunk {
	if len(ranked) > answerContextChunks {
		return ranked[:answerContextChunks]
	}
	return ranked
}

func sourcesFor(top []domain.RankedChunk) []domain.Source {
	sources := make([]domain.Source, 0, len(top))
	for _, rc := range top {
		sources = append(sources, domain.Source{
			Filename:  rc.Chunk.Meta.Filename,
			ChunkID:   rc.Chunk.ID,
			Relevance: rc.Score,
		})
	}
	return sources
}

func excerpt(text string, maxChars int) string {
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return string(runes[:maxChars])
}

func numberPrefix(n int) string {
	return strconv.Itoa(n) + ". "
}
