package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"claudehub/internal/assistant"

	"golang.org/x/oauth2"
)

var ErrFailedResponse = errors.New("Failed to get response")

type claudeRequest struct {
	Message             string                  `json:"message"`
	ConversationHistory []assistant.HistoryItem `json:"conversationHistory"`
}

type claudeResponse struct {
	Response string          `json:"response"`
	Usage    assistant.Usage `json:"usage"`
	Demo     bool            `json:"demo"`
}

// Client is an assistant.Replier backed by a running server's /api/claude
// endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient returns a client for the server at baseURL. A non-empty token is
// sent as a bearer credential.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	httpClient := &http.Client{Timeout: timeout}
	if token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: timeout})
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
		httpClient.Timeout = timeout
	}
	return &Client{
		endpoint:   strings.TrimRight(baseURL, "/") + "/api/claude",
		httpClient: httpClient,
	}
}

func (c *Client) Reply(ctx context.Context, message string, history []assistant.HistoryItem) (assistant.Response, error) {
	if history == nil {
		history = []assistant.HistoryItem{}
	}
	payload, err := json.Marshal(claudeRequest{Message: message, ConversationHistory: history})
	if err != nil {
		return assistant.Response{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return assistant.Response{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return assistant.Response{}, fmt.Errorf("%w: %v", ErrFailedResponse, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(raw, &body) == nil && body.Error != "" {
			return assistant.Response{}, fmt.Errorf("%w: %d %s", ErrFailedResponse, resp.StatusCode, body.Error)
		}
		return assistant.Response{}, fmt.Errorf("%w: %d", ErrFailedResponse, resp.StatusCode)
	}

	var out claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return assistant.Response{}, fmt.Errorf("%w: %v", ErrFailedResponse, err)
	}

	mode := assistant.ModeLive
	if out.Demo {
		mode = assistant.ModeFallback
	}
	return assistant.Response{Text: out.Response, Usage: out.Usage, Mode: mode}, nil
}
