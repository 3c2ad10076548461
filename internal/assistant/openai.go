package assistant

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

// OpenAIGateway talks to any OpenAI compatible chat completion endpoint.
type OpenAIGateway struct {
	client     *openai.Client
	apiKey     string
	model      string
	maxRetries int
	backoff    time.Duration
}

func NewOpenAIGateway(opts GatewayOptions) *OpenAIGateway {
	model := opts.Model
	if model == "" {
		model = openai.GPT4Dot1
	}

	clientCfg := openai.DefaultConfig(opts.APIKey)
	clientCfg.HTTPClient = opts.httpClient()
	if opts.BaseURL != "" {
		clientCfg.BaseURL = opts.BaseURL
	}

	return &OpenAIGateway{
		client:     openai.NewClientWithConfig(clientCfg),
		apiKey:     opts.APIKey,
		model:      model,
		maxRetries: opts.retries(),
		backoff:    500 * time.Millisecond,
	}
}

func (g *OpenAIGateway) Model() string {
	return g.model
}

func (g *OpenAIGateway) Complete(ctx context.Context, req Completion) (Reply, error) {
	if ResolveMode(g.apiKey) == ModeFallback {
		return Reply{}, ErrMissingCredential
	}

	messages := []openai.ChatCompletionMessage{{
		Role:    openai.ChatMessageRoleSystem,
		Content: req.System,
	}}
	for _, item := range req.History {
		role := openai.ChatMessageRoleUser
		if item.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: item.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Message,
	})

	maxTokens := int(req.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = MaxOutputTokens
	}
	chatReq := openai.ChatCompletionRequest{
		Model:     g.model,
		Messages:  messages,
		MaxTokens: maxTokens,
	}

	var (
		resp openai.ChatCompletionResponse
		err  error
	)
	for attempt := 0; ; attempt++ {
		resp, err = g.client.CreateChatCompletion(ctx, chatReq)
		if err == nil || attempt >= g.maxRetries || !retryable(err) {
			break
		}
		wait := g.backoff << attempt
		logrus.Warnf("OpenAI request failed, retrying in %s: %v", wait, err)
		select {
		case <-ctx.Done():
			return Reply{}, newGatewayError(0, "", ctx.Err())
		case <-time.After(wait):
		}
	}
	if err != nil {
		logrus.Errorf("OpenAI API error: %v", err)
		return Reply{}, openAIGatewayError(err)
	}

	reply := Reply{
		Usage: Usage{
			InputTokens:  int64(resp.Usage.PromptTokens),
			OutputTokens: int64(resp.Usage.CompletionTokens),
		},
	}
	if len(resp.Choices) > 0 {
		reply.Text = resp.Choices[0].Message.Content
	}
	return reply, nil
}

func retryable(err error) bool {
	status := statusOf(err)
	return status == 0 || status == http.StatusTooManyRequests || status >= 500
}

func statusOf(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

func openAIGatewayError(err error) *GatewayError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return newGatewayError(apiErr.HTTPStatusCode, apiErr.Message, err)
	}
	return newGatewayError(statusOf(err), "", err)
}
