package api

import (
	"errors"
	"net/http"

	"claudehub/internal/assistant"

	"github.com/sirupsen/logrus"
)

type ClaudeRequest struct {
	Message             string                  `json:"message"`
	ConversationHistory []assistant.HistoryItem `json:"conversationHistory"`
}

type ClaudeResponse struct {
	Response string          `json:"response"`
	Usage    assistant.Usage `json:"usage"`
	Demo     bool            `json:"demo"`
}

// ClaudeHandler proxies one message plus its history to the assistant.
func (h *Handler) ClaudeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req ClaudeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}

	resp, err := h.assistant.Reply(r.Context(), req.Message, req.ConversationHistory)
	if err != nil {
		logrus.Errorf("Claude API error: %v", err)
		var gwErr *assistant.GatewayError
		if errors.As(err, &gwErr) {
			writeError(w, gwErr.Status, gwErr.Message)
			return
		}
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, ClaudeResponse{
		Response: resp.Text,
		Usage:    resp.Usage,
		Demo:     resp.Demo(),
	})
}
