package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"claudehub/pkg/config"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sirupsen/logrus"
)

const DefaultAnthropicModel = "claude-sonnet-4-20250514"

type GatewayOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

func (o GatewayOptions) httpClient() *http.Client {
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func (o GatewayOptions) retries() int {
	if o.MaxRetries < 0 {
		return 0
	}
	return o.MaxRetries
}

// NewGateway builds the gateway for the configured provider.
func NewGateway(cfg *config.Config) Gateway {
	opts := GatewayOptions{
		APIKey:     cfg.AssistantKey(),
		Model:      cfg.AssistantModel,
		Timeout:    cfg.GatewayTimeout,
		MaxRetries: cfg.GatewayMaxRetries,
	}
	if cfg.AssistantProvider == config.ProviderOpenAI {
		return NewOpenAIGateway(opts)
	}
	return NewAnthropicGateway(opts)
}

type AnthropicGateway struct {
	client anthropic.Client
	apiKey string
	model  string
}

func NewAnthropicGateway(opts GatewayOptions) *AnthropicGateway {
	model := opts.Model
	if model == "" {
		model = DefaultAnthropicModel
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithHTTPClient(opts.httpClient()),
		option.WithMaxRetries(opts.retries()),
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}

	return &AnthropicGateway{
		client: anthropic.NewClient(clientOpts...),
		apiKey: opts.APIKey,
		model:  model,
	}
}

func (g *AnthropicGateway) Model() string {
	return g.model
}

func (g *AnthropicGateway) Complete(ctx context.Context, req Completion) (Reply, error) {
	if ResolveMode(g.apiKey) == ModeFallback {
		return Reply{}, ErrMissingCredential
	}

	messages := make([]anthropic.MessageParam, 0, len(req.History)+1)
	for _, item := range req.History {
		if item.Role == RoleAssistant {
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(item.Content)))
		} else {
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(item.Content)))
		}
	}
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(req.Message)))

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = MaxOutputTokens
	}

	msg, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: maxTokens,
		System:    []anthropic.TextBlockParam{{Text: req.System}},
		Messages:  messages,
	})
	if err != nil {
		logrus.Errorf("Anthropic API error: %v", err)
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return Reply{}, newGatewayError(apiErr.StatusCode, anthropicErrorMessage(apiErr), err)
		}
		return Reply{}, newGatewayError(0, "", err)
	}

	reply := Reply{
		Usage: Usage{
			InputTokens:  msg.Usage.InputTokens,
			OutputTokens: msg.Usage.OutputTokens,
		},
	}
	for _, block := range msg.Content {
		if block.Type == "text" {
			reply.Text = block.Text
			break
		}
	}
	return reply, nil
}

// anthropicErrorMessage pulls the human readable message out of the API's
// error envelope.
func anthropicErrorMessage(apiErr *anthropic.Error) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(apiErr.RawJSON()), &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return http.StatusText(apiErr.StatusCode)
}
