package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/medbook-ai/scheduling-agent/internal/agent"
	"github.com/medbook-ai/scheduling-agent/pkg/logging"
)

// Handler wires HTTP requests to the chat service.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a chat handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	UserQuery string `json:"user_query"`
	SessionID string `json:"session_id"`
}

// ChatResponse carries the agent's final answer.
type ChatResponse struct {
	Result    string `json:"result"`
	SessionID string `json:"session_id"`
}

// Chat handles POST /chat.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode chat request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.UserQuery) == "" {
		http.Error(w, "user_query is required", http.StatusBadRequest)
		return
	}

	reply, sessionID, err := h.service.HandleQuery(r.Context(), req.SessionID, req.UserQuery)
	if err != nil {
		h.logger.Error("failed to process chat query", "error", err, "session_id", req.SessionID)
		if errors.Is(err, agent.ErrMaxRoundsExceeded) {
			http.Error(w, "The assistant could not reach an answer, please try again", http.StatusBadGateway)
			return
		}
		http.Error(w, "Failed to process query", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ChatResponse{Result: reply, SessionID: sessionID})
}
