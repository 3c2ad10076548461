package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"claudehub/internal/assistant"
	"claudehub/internal/chat"
	"claudehub/internal/dashboard"
	"claudehub/internal/records"

	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 20

var errEmptyBody = errors.New("empty request body")

type Handler struct {
	records   records.Client
	assistant *assistant.Service
	dashboard *dashboard.Service
	chats     *chat.Registry
}

func NewHandler(
	recordsClient records.Client,
	assistantService *assistant.Service,
	dashboardService *dashboard.Service,
	chats *chat.Registry,
) *Handler {
	return &Handler{
		records:   recordsClient,
		assistant: assistantService,
		dashboard: dashboardService,
		chats:     chats,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Errorf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	for _, m := range allowed {
		w.Header().Add("Allow", m)
	}
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// decodeJSON reads a JSON body into v. An empty body decodes as {}.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"demo":   h.records.Demo(),
	})
}
