package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mrcgomez/safetyagent/internal/api"
	"github.com/mrcgomez/safetyagent/internal/domain"
)

// emptyQueryResponse is returned when the question is blank.
const emptyQueryResponse = "Please provide a question."

type ChatService interface {
	Query(ctx context.Context, query string) domain.AnswerResult
}

type ChatHandler struct {
	svc ChatService
}

func NewChatHandler(svc ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type ChatRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

type ChatResponse struct {
	Response   string          `json:"response"`
	Confidence float64         `json:"confidence"`
	Sources    []domain.Source `json:"sources"`
	SessionID  string          `json:"session_id"`
	Timestamp  string          `json:"timestamp"`
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = fmt.Sprintf("session_%d", time.Now().UnixNano())
	}

	question := strings.TrimSpace(req.Query)
	if question == "" {
		api.Success(w, http.StatusOK, ChatResponse{
			Response:   emptyQueryResponse,
			Confidence: 0.0,
			Sources:    []domain.Source{},
			SessionID:  sessionID,
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	result := h.svc.Query(r.Context(), question)

	api.Success(w, http.StatusOK, ChatResponse{
		Response:   result.Answer,
		Confidence: result.Confidence,
		Sources:    result.Sources,
		SessionID:  sessionID,
		Timestamp:  result.CreatedAt.Format(time.RFC3339),
	})
}
