package assistant

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("claudehub/assistant")

type Response struct {
	Text  string
	Usage Usage
	Mode  Mode
}

func (r Response) Demo() bool {
	return r.Mode == ModeFallback
}

// Service answers one message at a time, going to the gateway when a
// credential is configured and to the canned replies otherwise.
type Service struct {
	gateway Gateway
}

// NewService returns a service backed by gateway. A nil gateway always
// answers in fallback mode.
func NewService(gateway Gateway) *Service {
	return &Service{gateway: gateway}
}

func (s *Service) Reply(ctx context.Context, message string, history []HistoryItem) (Response, error) {
	ctx, span := tracer.Start(ctx, "assistant.reply")
	defer span.End()

	if s.gateway == nil {
		return s.fallback(span, message), nil
	}
	span.SetAttributes(attribute.String("assistant.model", s.gateway.Model()))

	reply, err := s.gateway.Complete(ctx, Completion{
		System:    SystemPrompt,
		History:   history,
		Message:   message,
		MaxTokens: MaxOutputTokens,
	})
	if errors.Is(err, ErrMissingCredential) {
		return s.fallback(span, message), nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Response{}, err
	}

	span.SetAttributes(
		attribute.String("assistant.mode", string(ModeLive)),
		attribute.Int64("assistant.input_tokens", reply.Usage.InputTokens),
		attribute.Int64("assistant.output_tokens", reply.Usage.OutputTokens),
	)
	return Response{Text: reply.Text, Usage: reply.Usage, Mode: ModeLive}, nil
}

func (s *Service) fallback(span trace.Span, message string) Response {
	logrus.Debugf("Assistant credential missing, answering in fallback mode")
	span.SetAttributes(attribute.String("assistant.mode", string(ModeFallback)))
	return Response{Text: FallbackResponse(message), Mode: ModeFallback}
}
