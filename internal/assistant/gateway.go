// Package assistant holds the conversation session and the gateways that
// forward it to a hosted chat completion API.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// MaxOutputTokens caps every live completion.
const MaxOutputTokens = 1024

var ErrMissingCredential = errors.New("assistant credential is not configured")

type HistoryItem struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

type Completion struct {
	System    string
	History   []HistoryItem
	Message   string
	MaxTokens int64
}

type Reply struct {
	Text  string
	Usage Usage
}

// Gateway is a hosted chat completion API. Complete returns
// ErrMissingCredential without touching the network when no usable key is
// configured, and a *GatewayError for transport or API failures.
type Gateway interface {
	Complete(ctx context.Context, req Completion) (Reply, error)
	Model() string
}

// GatewayError is a failed completion. Status mirrors the upstream HTTP
// status when one was received.
type GatewayError struct {
	Status  int
	Message string
	Err     error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("assistant gateway: %d %s", e.Status, e.Message)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

func newGatewayError(status int, message string, err error) *GatewayError {
	if status < 400 {
		status = http.StatusInternalServerError
	}
	if message == "" {
		if err != nil {
			message = err.Error()
		} else {
			message = http.StatusText(status)
		}
	}
	return &GatewayError{Status: status, Message: message, Err: err}
}
