package service

import (
	"context"
	"strings"
	"testing"

	"github.com/mrcgomez/safetyagent/internal/domain"
	"github.com/mrcgomez/safetyagent/internal/kb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUUIDGenerator struct {
	mock.Mock
}

func (m *mockUUIDGenerator) NewString() string {
	args := m.Called()
	return args.String(0)
}

type mockSynthesizer struct {
	mock.Mock
}

func (m *mockSynthesizer) Answer(ctx context.Context, query string, ranked []domain.RankedChunk) domain.AnswerResult {
	args := m.Called(ctx, query, ranked)
	return args.Get(0).(domain.AnswerResult)
}

func newTestKnowledgeService(synth Synthesizer, docIDs ...string) *KnowledgeService {
	uuidGen := new(mockUUIDGenerator)
	for _, id := range docIDs {
		uuidGen.On("NewString").Return(id).Once()
	}
	cfg := ChunkConfig{WindowSize: 5, Overlap: 2}
	return NewKnowledgeServiceWithUUIDGen(kb.NewStore(), cfg, synth, DefaultRankLimit, uuidGen)
}

func TestKnowledgeService_IngestText(t *testing.T) {
	svc := newTestKnowledgeService(NewExtractiveSynthesizer(), "doc-1")

	doc, err := svc.IngestText(context.Background(), IngestTextInput{
		Text:      "All visitors must wear hard hats and high visibility vests inside the plant.",
		Filename:  "visitors.txt",
		Category:  "site_rules",
		SizeBytes: 77,
	})
	require.NoError(t, err)
	require.NotNil(t, doc)

	assert.Equal(t, "doc-1", doc.ID)
	assert.Equal(t, "visitors.txt", doc.Filename)
	assert.Equal(t, "site_rules", doc.Category)
	assert.Equal(t, int64(77), doc.SizeBytes)

	stats := svc.Stats(context.Background())
	assert.Equal(t, 1, stats.TotalDocuments)
	assert.Greater(t, stats.TotalChunks, 0)
	assert.Equal(t, 1, stats.CategoryCounts["site_rules"])
}

func TestKnowledgeService_IngestTextEmpty(t *testing.T) {
	svc := newTestKnowledgeService(NewExtractiveSynthesizer(), "doc-1")

	_, err := svc.IngestText(context.Background(), IngestTextInput{
		Text:     "   \n\t  ",
		Filename: "blank.txt",
	})
	assert.ErrorIs(t, err, domain.ErrEmptyContent)

	stats := svc.Stats(context.Background())
	assert.Equal(t, 0, stats.TotalDocuments)
}

func TestKnowledgeService_IngestTextInvalidConfig(t *testing.T) {
	uuidGen := new(mockUUIDGenerator)
	uuidGen.On("NewString").Return("doc-1")
	svc := NewKnowledgeServiceWithUUIDGen(
		kb.NewStore(),
		ChunkConfig{WindowSize: 3, Overlap: 3},
		NewExtractiveSynthesizer(),
		DefaultRankLimit,
		uuidGen,
	)

	_, err := svc.IngestText(context.Background(), IngestTextInput{
		Text:     "some text",
		Filename: "a.txt",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidChunkWindow)
}

func TestKnowledgeService_IngestPrechunked(t *testing.T) {
	svc := newTestKnowledgeService(NewExtractiveSynthesizer())

	doc := domain.Document{ID: "archive-1", Filename: "safety_manual.pdf", Category: "safety_manual"}
	chunks := []domain.Chunk{
		{
			ID:         domain.ChunkID("archive-1", 0),
			Text:       "Hard hats are mandatory in all construction zones.",
			Index:      0,
			WordCount:  8,
			DocumentID: "archive-1",
			Meta:       domain.Metadata{DocumentID: "archive-1", Filename: "safety_manual.pdf"},
		},
	}

	err := svc.IngestPrechunked(context.Background(), doc, chunks, chunks[0].Text)
	require.NoError(t, err)

	entry, err := svc.GetDocument(context.Background(), "archive-1")
	require.NoError(t, err)
	assert.Len(t, entry.Chunks, 1)
}

func TestKnowledgeService_Query(t *testing.T) {
	synth := new(mockSynthesizer)
	svc := newTestKnowledgeService(synth, "doc-1")

	_, err := svc.IngestText(context.Background(), IngestTextInput{
		Text:     "Hard hats are mandatory in all construction zones at all times.",
		Filename: "manual.txt",
	})
	require.NoError(t, err)

	want := domain.AnswerResult{Answer: "wear one", Confidence: 0.9}
	synth.On("Answer", mock.Anything, "hard hats", mock.MatchedBy(func(ranked []domain.RankedChunk) bool {
		return len(ranked) > 0
	})).Return(want)

	got := svc.Query(context.Background(), "hard hats")

	assert.Equal(t, "wear one", got.Answer)
	assert.Equal(t, 0.9, got.Confidence)
	synth.AssertExpectations(t)
}

func TestKnowledgeService_QueryEmptyStore(t *testing.T) {
	synth := new(mockSynthesizer)

	svc := newTestKnowledgeService(synth)
	got := svc.Query(context.Background(), "anything")

	assert.Equal(t, EmptyKnowledgeAnswer, got.Answer)
	assert.Equal(t, 0.0, got.Confidence)
	assert.Empty(t, got.Sources)
	synth.AssertNotCalled(t, "Answer", mock.Anything, mock.Anything, mock.Anything)
}

func TestKnowledgeService_Search(t *testing.T) {
	svc := newTestKnowledgeService(NewExtractiveSynthesizer(), "doc-1")

	_, err := svc.IngestText(context.Background(), IngestTextInput{
		Text:     "Report every incident to your supervisor before the end of the shift without exception.",
		Filename: "incidents.txt",
	})
	require.NoError(t, err)

	results := svc.Search(context.Background(), "incident supervisor", 0)
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.Greater(t, r.Score, 0.0)
		assert.Equal(t, "doc-1", r.Chunk.DocumentID)
	}

	assert.Empty(t, svc.Search(context.Background(), "cafeteria", 0))
}

func TestKnowledgeService_RemoveDocument(t *testing.T) {
	svc := newTestKnowledgeService(NewExtractiveSynthesizer(), "doc-1")

	_, err := svc.IngestText(context.Background(), IngestTextInput{
		Text:     "Fire extinguishers must be inspected monthly by a trained employee.",
		Filename: "fire.txt",
	})
	require.NoError(t, err)

	assert.True(t, svc.RemoveDocument(context.Background(), "doc-1"))
	assert.False(t, svc.RemoveDocument(context.Background(), "doc-1"))

	_, err = svc.GetDocument(context.Background(), "doc-1")
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestKnowledgeService_ReingestIsIdempotent(t *testing.T) {
	svc := newTestKnowledgeService(NewExtractiveSynthesizer(), "doc-1", "doc-2")

	text := "Lockout tagout procedures apply to every machine with stored energy on this site."
	_, err := svc.IngestText(context.Background(), IngestTextInput{Text: text, Filename: "loto.txt"})
	require.NoError(t, err)
	first := svc.Stats(context.Background())

	// Second ingest gets a fresh document identifier, so the corpus grows.
	_, err = svc.IngestText(context.Background(), IngestTextInput{Text: text, Filename: "loto.txt"})
	require.NoError(t, err)
	second := svc.Stats(context.Background())

	assert.Equal(t, first.TotalDocuments+1, second.TotalDocuments)
	assert.Equal(t, 2*first.TotalChunks, second.TotalChunks)
}

func TestKnowledgeService_Reindex(t *testing.T) {
	svc := newTestKnowledgeService(NewExtractiveSynthesizer(), "doc-1")

	text := strings.Repeat("safety first always ", 10)
	_, err := svc.IngestText(context.Background(), IngestTextInput{Text: text, Filename: "repeat.txt"})
	require.NoError(t, err)
	before := svc.Stats(context.Background())

	require.NoError(t, svc.Reindex(context.Background()))
	after := svc.Stats(context.Background())

	assert.Equal(t, before.TotalDocuments, after.TotalDocuments)
	assert.Equal(t, before.TotalChunks, after.TotalChunks)

	entry, err := svc.GetDocument(context.Background(), "doc-1")
	require.NoError(t, err)
	for i, c := range entry.Chunks {
		assert.Equal(t, domain.ChunkID("doc-1", i), c.ID)
	}
}

func TestKnowledgeService_ReindexPreservesPrechunkedContent(t *testing.T) {
	svc := newTestKnowledgeService(NewExtractiveSynthesizer())

	doc := domain.Document{ID: "archive-1", Filename: "safety_manual.pdf", Category: "safety_manual"}
	chunks := []domain.Chunk{
		{
			ID:         domain.ChunkID("archive-1", 0),
			Text:       "Hard hats are mandatory in all construction zones.",
			Index:      0,
			WordCount:  8,
			DocumentID: "archive-1",
			Meta:       domain.Metadata{DocumentID: "archive-1", Filename: "safety_manual.pdf"},
		},
	}
	require.NoError(t, svc.IngestPrechunked(context.Background(), doc, chunks, ""))

	require.NoError(t, svc.Reindex(context.Background()))

	after := svc.Stats(context.Background())
	assert.Equal(t, 1, after.TotalChunks, "reindex must not discard chunks that lack backing text")

	entry, err := svc.GetDocument(context.Background(), "archive-1")
	require.NoError(t, err)
	require.Len(t, entry.Chunks, 1)
	assert.Equal(t, "Hard hats are mandatory in all construction zones.", entry.Chunks[0].Text)
}

func TestKnowledgeService_ListDocumentsOrder(t *testing.T) {
	svc := newTestKnowledgeService(NewExtractiveSynthesizer(), "doc-a", "doc-b")

	_, err := svc.IngestText(context.Background(), IngestTextInput{
		Text: "First document about ladder safety and fall protection rules.", Filename: "ladders.txt",
	})
	require.NoError(t, err)
	_, err = svc.IngestText(context.Background(), IngestTextInput{
		Text: "Second document about confined space entry permits and monitoring.", Filename: "confined.txt",
	})
	require.NoError(t, err)

	docs := svc.ListDocuments(context.Background())
	require.Len(t, docs, 2)
	assert.Equal(t, "doc-a", docs[0].ID)
	assert.Equal(t, "doc-b", docs[1].ID)
}
