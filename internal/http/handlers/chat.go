// Package handlers exposes the assistant's HTTP endpoints.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/healthcareplus/clinic-assistant/pkg/logging"
)

// ChatService runs one conversation turn.
type ChatService interface {
	Chat(ctx context.Context, sessionID, message string) (string, error)
	Reset(ctx context.Context, sessionID string) error
}

// ChatHandler serves the conversational endpoints.
type ChatHandler struct {
	engine ChatService
	logger *logging.Logger
}

func NewChatHandler(engine ChatService, logger *logging.Logger) *ChatHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ChatHandler{engine: engine, logger: logger}
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

type chatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

const apologyReply = "I apologize, I'm having some technical difficulties right now. Could you please try again or tell me how I can help you?"

// Chat handles POST /chat. A missing session_id mints a new session; the
// ID is echoed back so the client can continue the conversation.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = r.Header.Get("X-Session-Id")
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	reply, err := h.engine.Chat(r.Context(), sessionID, req.Message)
	if err != nil {
		// The engine already degraded through its fallback; an error here
		// means session storage broke. Stay polite to the patient.
		h.logger.Error("chat turn failed", "session_id", sessionID, "error", err.Error())
		writeJSON(w, http.StatusOK, chatResponse{Response: apologyReply, SessionID: sessionID})
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Response: reply, SessionID: sessionID})
}

type resetRequest struct {
	SessionID string `json:"session_id"`
}

// Reset handles POST /reset, discarding a session's conversation.
func (h *ChatHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.SessionID) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "session_id is required"})
		return
	}

	if err := h.engine.Reset(r.Context(), req.SessionID); err != nil {
		h.logger.Error("session reset failed", "session_id", req.SessionID, "error", err.Error())
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to reset session"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "conversation reset"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
