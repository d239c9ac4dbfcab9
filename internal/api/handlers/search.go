package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/mrcgomez/safetyagent/internal/api"
	"github.com/mrcgomez/safetyagent/internal/domain"
)

type SearchService interface {
	Search(ctx context.Context, query string, limit int) []domain.RankedChunk
}

type SearchHandler struct {
	svc SearchService
}

func NewSearchHandler(svc SearchService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

type SearchResult struct {
	ChunkID    string  `json:"chunk_id"`
	DocumentID string  `json:"document_id"`
	Filename   string  `json:"filename"`
	Title      string  `json:"title,omitempty"`
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		api.Error(w, http.StatusBadRequest, "query is required")
		return
	}

	limit := 0
	if k := r.URL.Query().Get("k"); k != "" {
		parsed, err := strconv.Atoi(k)
		if err != nil || parsed <= 0 {
			api.Error(w, http.StatusBadRequest, "k must be a positive integer")
			return
		}
		limit = parsed
	}

	ranked := h.svc.Search(r.Context(), query, limit)

	results := make([]SearchResult, 0, len(ranked))
	for _, rc := range ranked {
		results = append(results, SearchResult{
			ChunkID:    rc.Chunk.ID,
			DocumentID: rc.Chunk.DocumentID,
			Filename:   rc.Chunk.Meta.Filename,
			Title:      rc.Chunk.Title,
			Text:       rc.Chunk.Text,
			Score:      rc.Score,
		})
	}

	api.Success(w, http.StatusOK, map[string]interface{}{
		"query":   query,
		"results": results,
		"count":   len(results),
	})
}
