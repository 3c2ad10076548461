package api

import (
	"errors"
	"net/http"

	"claudehub/internal/assistant"
)

type ChatMessageRequest struct {
	Message string `json:"message"`
}

type transcriptResponse struct {
	Messages []assistant.Turn `json:"messages"`
	Pending  bool             `json:"pending"`
}

type chatReplyResponse struct {
	Reply    assistant.Turn   `json:"reply"`
	Usage    assistant.Usage  `json:"usage"`
	Demo     bool             `json:"demo"`
	Error    string           `json:"error,omitempty"`
	Messages []assistant.Turn `json:"messages"`
}

// ChatHandler serves the caller's conversation: GET reads it, DELETE clears it.
func (h *Handler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFromContext(r.Context())

	switch r.Method {
	case http.MethodGet:
		conv := h.chats.Get(session.ID, session.ExpiresAt)
		messages := conv.Transcript()
		if messages == nil {
			messages = []assistant.Turn{}
		}
		writeJSON(w, http.StatusOK, transcriptResponse{Messages: messages, Pending: conv.Pending()})

	case http.MethodDelete:
		if conv, ok := h.chats.Lookup(session.ID); ok {
			conv.Clear()
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodDelete)
	}
}

// ChatMessageHandler submits one message to the caller's conversation. A
// failed reply still answers 200 with the recorded apology and the error.
func (h *Handler) ChatMessageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	session, _ := SessionFromContext(r.Context())

	var req ChatMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	conv := h.chats.Get(session.ID, session.ExpiresAt)
	resp, err := conv.Submit(r.Context(), req.Message)
	switch {
	case errors.Is(err, assistant.ErrEmptyMessage):
		w.WriteHeader(http.StatusNoContent)
		return
	case errors.Is(err, assistant.ErrPending):
		writeError(w, http.StatusConflict, "A reply is already pending")
		return
	}

	messages := conv.Transcript()
	out := chatReplyResponse{
		Usage:    resp.Usage,
		Demo:     resp.Demo(),
		Messages: messages,
	}
	if n := len(messages); n > 0 && messages[n-1].Role == assistant.RoleAssistant {
		out.Reply = messages[n-1]
	}
	if err != nil {
		out.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, out)
}
