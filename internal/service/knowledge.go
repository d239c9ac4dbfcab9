package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mrcgomez/safetyagent/internal/domain"
	"github.com/mrcgomez/safetyagent/internal/kb"
	"github.com/mrcgomez/safetyagent/internal/telemetry"
)

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// KnowledgeService wires the chunker, the knowledge base store, the
// relevance scorer, and the answer synthesizer into the operations the
// transport layer consumes.
type KnowledgeService struct {
	store     *kb.Store
	chunkCfg  ChunkConfig
	synth     Synthesizer
	rankLimit int
	uuidGen   UUIDGenerator
}

// NewKnowledgeService creates a new KnowledgeService instance.
func NewKnowledgeService(store *kb.Store, chunkCfg ChunkConfig, synth Synthesizer, rankLimit int) *KnowledgeService {
	if rankLimit <= 0 {
		rankLimit = DefaultRankLimit
	}
	return &KnowledgeService{
		store:     store,
		chunkCfg:  chunkCfg,
		synth:     synth,
		rankLimit: rankLimit,
		uuidGen:   &DefaultUUIDGenerator{},
	}
}

// NewKnowledgeServiceWithUUIDGen creates a KnowledgeService with a custom
// UUID generator (for testing).
func NewKnowledgeServiceWithUUIDGen(store *kb.Store, chunkCfg ChunkConfig, synth Synthesizer, rankLimit int, uuidGen UUIDGenerator) *KnowledgeService {
	svc := NewKnowledgeService(store, chunkCfg, synth, rankLimit)
	svc.uuidGen = uuidGen
	return svc
}

// IngestTextInput represents the input for ingesting extracted text.
type IngestTextInput struct {
	Text      string
	Filename  string
	Category  string
	SizeBytes int64
	Extra     map[string]string
}

// IngestText chunks extracted text and stores the resulting document.
// Extraction that yielded no usable chunks surfaces ErrEmptyContent; the
// service itself keeps running.
func (s *KnowledgeService) IngestText(ctx context.Context, input IngestTextInput) (*domain.Document, error) {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.IngestText", telemetry.SpanAttributes{
		Filename:  input.Filename,
		Operation: "ingest",
	})
	defer span.End()

	docID := s.uuidGen.NewString()
	now := time.Now().UTC()

	meta := domain.Metadata{
		DocumentID:     docID,
		Filename:       input.Filename,
		Category:       input.Category,
		ExtractionDate: now.Format(time.RFC3339),
		Extra:          input.Extra,
	}

	chunks, err := ChunkText(input.Text, s.chunkCfg, meta)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, domain.ErrEmptyContent
	}

	doc := domain.Document{
		ID:         docID,
		Filename:   input.Filename,
		Category:   input.Category,
		SizeBytes:  input.SizeBytes,
		TextLength: len(input.Text),
		IngestedAt: now,
	}

	if err := s.store.Ingest(doc, chunks, input.Text); err != nil {
		return nil, err
	}
	return &doc, nil
}

// IngestPrechunked stores a document whose chunks were produced externally,
// for example a prepared corpus archive. The chunks are accepted as-is, with
// no re-chunking.
func (s *KnowledgeService) IngestPrechunked(ctx context.Context, doc domain.Document, chunks []domain.Chunk, fullText string) error {
	_, span := telemetry.StartSpan(ctx, "KnowledgeService.IngestPrechunked", telemetry.SpanAttributes{
		DocumentID: doc.ID,
		Operation:  "ingest",
	})
	defer span.End()

	return s.store.Ingest(doc, chunks, fullText)
}

// Query ranks the corpus against the query and synthesizes an answer. It
// never hard fails: an unanswerable query produces the fixed not-found
// result with confidence zero.
func (s *KnowledgeService) Query(ctx context.Context, query string) domain.AnswerResult {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.Query", telemetry.SpanAttributes{
		Operation: "query",
	})
	defer span.End()

	chunks := s.store.Chunks()
	if len(chunks) == 0 {
		return domain.AnswerResult{
			Answer:     EmptyKnowledgeAnswer,
			Confidence: 0.0,
			Sources:    []domain.Source{},
			CreatedAt:  time.Now().UTC(),
		}
	}

	ranked := Rank(query, chunks, s.rankLimit)
	return s.synth.Answer(ctx, query, ranked)
}

// Search exposes raw ranked chunks without answer synthesis.
func (s *KnowledgeService) Search(ctx context.Context, query string, limit int) []domain.RankedChunk {
	_, span := telemetry.StartSpan(ctx, "KnowledgeService.Search", telemetry.SpanAttributes{
		Operation: "search",
	})
	defer span.End()

	if limit <= 0 {
		limit = s.rankLimit
	}
	return Rank(query, s.store.Chunks(), limit)
}

// RemoveDocument deletes a document and all its chunks. Removing an unknown
// identifier reports false, not an error.
func (s *KnowledgeService) RemoveDocument(ctx context.Context, id string) bool {
	_, span := telemetry.StartSpan(ctx, "KnowledgeService.RemoveDocument", telemetry.SpanAttributes{
		DocumentID: id,
		Operation:  "remove",
	})
	defer span.End()

	return s.store.Remove(id)
}

// GetDocument returns a single document with its chunks.
func (s *KnowledgeService) GetDocument(ctx context.Context, id string) (*kb.Entry, error) {
	_, span := telemetry.StartSpan(ctx, "KnowledgeService.GetDocument", telemetry.SpanAttributes{
		DocumentID: id,
		Operation:  "get",
	})
	defer span.End()

	return s.store.Get(id)
}

// ListDocuments returns all documents in deterministic order.
func (s *KnowledgeService) ListDocuments(ctx context.Context) []domain.Document {
	_, span := telemetry.StartSpan(ctx, "KnowledgeService.ListDocuments", telemetry.SpanAttributes{
		Operation: "list",
	})
	defer span.End()

	return s.store.Documents()
}

// Stats folds over the live knowledge base.
func (s *KnowledgeService) Stats(ctx context.Context) domain.Stats {
	_, span := telemetry.StartSpan(ctx, "KnowledgeService.Stats", telemetry.SpanAttributes{
		Operation: "stats",
	})
	defer span.End()

	stats := s.store.Stats()
	stats.ChunkWindow = s.chunkCfg.WindowSize
	stats.ChunkOverlap = s.chunkCfg.Overlap
	return stats
}

// Reindex rebuilds every document's chunk set from its stored aggregate text
// using the current chunk configuration.
func (s *KnowledgeService) Reindex(ctx context.Context) error {
	_, span := telemetry.StartSpan(ctx, "KnowledgeService.Reindex", telemetry.SpanAttributes{
		Operation: "reindex",
	})
	defer span.End()

	return s.store.Rebuild(func(doc domain.Document, fullText string) ([]domain.Chunk, error) {
		meta := domain.Metadata{
			DocumentID: doc.ID,
			Filename:   doc.Filename,
			Category:   doc.Category,
		}
		return ChunkText(fullText, s.chunkCfg, meta)
	})
}
