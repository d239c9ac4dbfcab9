//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/mrcgomez/safetyagent/internal/api/handlers"
	"github.com/mrcgomez/safetyagent/internal/kb"
	"github.com/mrcgomez/safetyagent/internal/server"
	"github.com/mrcgomez/safetyagent/internal/service"
)

// E2ETestEnv holds the resources needed for end-to-end tests: a fully wired
// API server backed by a fresh in-memory knowledge base.
type E2ETestEnv struct {
	T         *testing.T
	ServerURL string
	server    *httptest.Server
	client    *http.Client
}

// APIResponse mirrors the server's response envelope.
type APIResponse struct {
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

// SetupE2EEnv wires the full service stack behind a test HTTP server. The
// extractive synthesizer is used so tests run without an OpenAI key.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	t.Helper()

	store := kb.NewStore()
	chunkCfg := service.ChunkConfig{WindowSize: 50, Overlap: 10}
	svc := service.NewKnowledgeService(store, chunkCfg, service.NewExtractiveSynthesizer(), 5)

	router := server.NewRouter(server.RouterConfig{
		ChatHandler:     handlers.NewChatHandler(svc),
		DocumentHandler: handlers.NewDocumentHandler(svc, nil),
		SearchHandler:   handlers.NewSearchHandler(svc),
		StatsHandler:    handlers.NewStatsHandler(svc),
	})

	srv := httptest.NewServer(router)

	return &E2ETestEnv{
		T:         t,
		ServerURL: srv.URL,
		server:    srv,
		client:    srv.Client(),
	}
}

// Cleanup shuts down the test server.
func (e *E2ETestEnv) Cleanup() {
	e.server.Close()
}

// Get performs a GET request against the test server.
func (e *E2ETestEnv) Get(path string) (*APIResponse, int, error) {
	resp, err := e.client.Get(e.ServerURL + path)
	if err != nil {
		return nil, 0, err
	}
	return e.decode(resp)
}

// Post performs a POST request with a JSON body.
func (e *E2ETestEnv) Post(path string, body interface{}) (*APIResponse, int, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, 0, err
		}
		reqBody = bytes.NewReader(data)
	}

	resp, err := e.client.Post(e.ServerURL+path, "application/json", reqBody)
	if err != nil {
		return nil, 0, err
	}
	return e.decode(resp)
}

// Delete performs a DELETE request.
func (e *E2ETestEnv) Delete(path string) (*APIResponse, int, error) {
	req, err := http.NewRequest("DELETE", e.ServerURL+path, nil)
	if err != nil {
		return nil, 0, err
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	return e.decode(resp)
}

// Upload performs a multipart document upload.
func (e *E2ETestEnv) Upload(path, filename string, content []byte, category string) (*APIResponse, int, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, 0, err
	}
	if _, err := part.Write(content); err != nil {
		return nil, 0, err
	}
	if category != "" {
		if err := w.WriteField("category", category); err != nil {
			return nil, 0, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, 0, err
	}

	resp, err := e.client.Post(e.ServerURL+path, w.FormDataContentType(), &buf)
	if err != nil {
		return nil, 0, err
	}
	return e.decode(resp)
}

func (e *E2ETestEnv) decode(resp *http.Response) (*APIResponse, int, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}

	if len(body) == 0 {
		return &APIResponse{}, resp.StatusCode, nil
	}

	var apiResp APIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to parse response %q: %w", body, err)
	}
	return &apiResp, resp.StatusCode, nil
}
