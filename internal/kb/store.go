// Package kb holds the in-memory knowledge base: the mapping from document
// identifier to its chunk collection and aggregate text.
package kb

import (
	"sort"
	"sync"

	"github.com/mrcgomez/safetyagent/internal/domain"
)

// Entry is a document together with its chunks and aggregate text.
type Entry struct {
	Document domain.Document
	Chunks   []domain.Chunk
	FullText string
}

// Store is the one shared mutable resource of the service. A single
// read-write lock guards the map: writers replace a document's chunk set
// atomically, readers (ranking, stats, listing) scan under the read lock.
type Store struct {
	mu   sync.RWMutex
	docs map[string]*Entry
}

// NewStore creates an empty knowledge base.
func NewStore() *Store {
	return &Store{
		docs: make(map[string]*Entry),
	}
}

// Ingest stores a document with its chunks. Re-ingesting an existing document
// identifier replaces the prior chunk set in one step; a half-replaced state
// is never observable.
func (s *Store) Ingest(doc domain.Document, chunks []domain.Chunk, fullText string) error {
	if err := domain.ValidateDocument(&doc); err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid document", err)
	}
	for i := range chunks {
		if err := domain.ValidateChunk(&chunks[i]); err != nil {
			return domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid chunk", err)
		}
	}

	owned := make([]domain.Chunk, len(chunks))
	copy(owned, chunks)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = &Entry{
		Document: doc,
		Chunks:   owned,
		FullText: fullText,
	}
	return nil
}

// Get returns the entry for a document identifier.
func (s *Store) Get(id string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.docs[id]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}

	chunks := make([]domain.Chunk, len(entry.Chunks))
	copy(chunks, entry.Chunks)
	return &Entry{
		Document: entry.Document,
		Chunks:   chunks,
		FullText: entry.FullText,
	}, nil
}

// Remove deletes a document and all of its chunks in one step. Removing an
// unknown identifier returns false, not an error.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; !ok {
		return false
	}
	delete(s.docs, id)
	return true
}

// Documents lists all documents ordered by ingestion time, then identifier,
// so iteration is deterministic for listings and stats.
func (s *Store) Documents() []domain.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Document, 0, len(s.docs))
	for _, entry := range s.docs {
		out = append(out, entry.Document)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].IngestedAt.Equal(out[j].IngestedAt) {
			return out[i].IngestedAt.Before(out[j].IngestedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Chunks returns a snapshot of every chunk across all documents, in document
// order. The snapshot is safe to scan after the lock is released.
func (s *Store) Chunks() []domain.Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.docs))
	total := 0
	for id, entry := range s.docs {
		ids = append(ids, id)
		total += len(entry.Chunks)
	}
	sort.Strings(ids)

	out := make([]domain.Chunk, 0, total)
	for _, id := range ids {
		out = append(out, s.docs[id].Chunks...)
	}
	return out
}

// Stats folds over the current map. Totals can never drift from live content
// because nothing maintains them separately.
func (s *Store) Stats() domain.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := domain.Stats{
		CategoryCounts: make(map[string]int),
	}
	for _, entry := range s.docs {
		stats.TotalDocuments++
		stats.TotalChunks += len(entry.Chunks)
		stats.CategoryCounts[entry.Document.Category]++
	}
	return stats
}

// Rebuild re-derives every document's chunk set from its aggregate text using
// the supplied chunking function, then swaps all chunk sets in one step. If
// any document fails to re-chunk, nothing is replaced. A document whose text
// yields no chunks keeps its current set.
func (s *Store) Rebuild(rechunk func(doc domain.Document, fullText string) ([]domain.Chunk, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	replacements := make(map[string][]domain.Chunk, len(s.docs))
	for id, entry := range s.docs {
		chunks, err := rechunk(entry.Document, entry.FullText)
		if err != nil {
			return domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "rebuild failed for document "+id, err)
		}
		if len(chunks) == 0 {
			continue
		}
		replacements[id] = chunks
	}

	for id, chunks := range replacements {
		s.docs[id].Chunks = chunks
	}
	return nil
}
