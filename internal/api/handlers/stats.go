package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/mrcgomez/safetyagent/internal/api"
	"github.com/mrcgomez/safetyagent/internal/domain"
)

type StatsService interface {
	Stats(ctx context.Context) domain.Stats
	Reindex(ctx context.Context) error
}

type StatsHandler struct {
	svc StatsService
}

func NewStatsHandler(svc StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

type StatsResponse struct {
	TotalDocuments int            `json:"total_documents"`
	TotalChunks    int            `json:"total_chunks"`
	Categories     map[string]int `json:"categories"`
	ChunkSize      int            `json:"chunk_size"`
	ChunkOverlap   int            `json:"chunk_overlap"`
}

func statsToResponse(s domain.Stats) StatsResponse {
	categories := s.CategoryCounts
	if categories == nil {
		categories = map[string]int{}
	}
	return StatsResponse{
		TotalDocuments: s.TotalDocuments,
		TotalChunks:    s.TotalChunks,
		Categories:     categories,
		ChunkSize:      s.ChunkWindow,
		ChunkOverlap:   s.ChunkOverlap,
	}
}

func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, statsToResponse(h.svc.Stats(r.Context())))
}

func (h *StatsHandler) Health(w http.ResponseWriter, r *http.Request) {
	stats := h.svc.Stats(r.Context())
	api.Success(w, http.StatusOK, map[string]interface{}{
		"status":           "healthy",
		"documents":        stats.TotalDocuments,
		"chunks":           stats.TotalChunks,
		"documents_loaded": stats.TotalDocuments > 0,
		"timestamp":        time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *StatsHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Reindex(r.Context()); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]interface{}{
		"message": "knowledge base reindexed",
		"stats":   statsToResponse(h.svc.Stats(r.Context())),
	})
}
