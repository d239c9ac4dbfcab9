package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mrcgomez/safetyagent/internal/api"
	"github.com/mrcgomez/safetyagent/internal/api/handlers"
	"github.com/mrcgomez/safetyagent/internal/kb"
	"github.com/mrcgomez/safetyagent/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (http.Handler, *service.KnowledgeService) {
	t.Helper()

	store := kb.NewStore()
	svc := service.NewKnowledgeService(
		store,
		service.ChunkConfig{WindowSize: 10, Overlap: 3},
		service.NewExtractiveSynthesizer(),
		service.DefaultRankLimit,
	)

	router := NewRouter(RouterConfig{
		ChatHandler:     handlers.NewChatHandler(svc),
		DocumentHandler: handlers.NewDocumentHandler(svc, nil),
		SearchHandler:   handlers.NewSearchHandler(svc),
		StatsHandler:    handlers.NewStatsHandler(svc),
	})
	return router, svc
}

func ingestFixture(t *testing.T, svc *service.KnowledgeService) string {
	t.Helper()

	doc, err := svc.IngestText(context.Background(), service.IngestTextInput{
		Text:     "Hard hats and safety glasses are mandatory in every construction zone on this site at all times.",
		Filename: "manual.txt",
		Category: "safety_manual",
	})
	require.NoError(t, err)
	return doc.ID
}

func dataOf(t *testing.T, body []byte) map[string]interface{} {
	t.Helper()

	var resp api.SuccessResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	return data
}

func TestRouter_Health(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", dataOf(t, rec.Body.Bytes())["status"])
}

func TestRouter_RequestIDHeader(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRouter_ChatFlow(t *testing.T) {
	router, svc := newTestRouter(t)
	ingestFixture(t, svc)

	body, _ := json.Marshal(map[string]string{"query": "hard hats"})
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	data := dataOf(t, rec.Body.Bytes())
	assert.Contains(t, data["response"], "Based on the safety manual:")

	confidence, ok := data["confidence"].(float64)
	require.True(t, ok)
	assert.GreaterOrEqual(t, confidence, 0.5)
	assert.LessOrEqual(t, confidence, 0.8)
	assert.NotEmpty(t, data["sources"])
}

func TestRouter_SearchFlow(t *testing.T) {
	router, svc := newTestRouter(t)
	docID := ingestFixture(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/search?query=safety+glasses", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	data := dataOf(t, rec.Body.Bytes())
	require.NotZero(t, data["count"])

	results := data["results"].([]interface{})
	first := results[0].(map[string]interface{})
	assert.Equal(t, docID, first["document_id"])
}

func TestRouter_StatsAndDelete(t *testing.T) {
	router, svc := newTestRouter(t)
	docID := ingestFixture(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), dataOf(t, rec.Body.Bytes())["total_documents"])

	req = httptest.NewRequest(http.MethodDelete, "/api/documents/"+docID, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, float64(0), dataOf(t, rec.Body.Bytes())["total_documents"])
}

func TestRouter_DeleteUnknownDocument(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/documents/ghost", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_Reindex(t *testing.T) {
	router, svc := newTestRouter(t)
	ingestFixture(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/reindex", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "knowledge base reindexed", dataOf(t, rec.Body.Bytes())["message"])
}

func TestRouter_BodyLimit(t *testing.T) {
	store := kb.NewStore()
	svc := service.NewKnowledgeService(
		store,
		service.DefaultChunkConfig(),
		service.NewExtractiveSynthesizer(),
		service.DefaultRankLimit,
	)
	router := NewRouter(RouterConfig{
		ChatHandler:     handlers.NewChatHandler(svc),
		DocumentHandler: handlers.NewDocumentHandler(svc, nil),
		SearchHandler:   handlers.NewSearchHandler(svc),
		StatsHandler:    handlers.NewStatsHandler(svc),
		MaxBodyBytes:    64,
	})

	big := bytes.Repeat([]byte("x"), 256)
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(big))
	req.ContentLength = int64(len(big))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
