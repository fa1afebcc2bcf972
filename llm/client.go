// ABOUTME: Single-endpoint LLM client wrapper: one Complete call under a timeout, no retry logic.
// ABOUTME: Retries against defective output live entirely in package guard; this client only wraps transport.
package llm

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultTimeout is the call-level timeout used when Config.Timeout is zero.
const DefaultTimeout = 300 * time.Second

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "default"

// Client is the LLM connector interface the orchestrator depends on: one
// call, one timeout, text in, text out. Conversation history is supplied by
// the caller; the client does not retain state between calls.
type Client interface {
	Complete(ctx context.Context, systemPrompt string, history []Message) (Response, error)
}

// Config configures an OpenAIClient from process environment variables.
type Config struct {
	Endpoint string        // LLM_API_ENDPOINT
	APIKey   string        // LLM_API_KEY
	Model    string        // LLM_MODEL_NAME
	Timeout  time.Duration // derived from LLM_REQUEST_TIMEOUT_SEC
}

// OpenAIClient implements Client against any OpenAI-compatible
// chat-completions endpoint.
type OpenAIClient struct {
	client  openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAIClient builds an OpenAIClient. A blank Endpoint uses openai-go's
// built-in default (api.openai.com); any OpenAI-compatible gateway can be
// targeted by setting LLM_API_ENDPOINT.
func NewOpenAIClient(cfg Config) *OpenAIClient {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey), option.WithMaxRetries(0)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(cfg.Endpoint))
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &OpenAIClient{
		client:  openai.NewClient(opts...),
		model:   model,
		timeout: timeout,
	}
}

// Complete sends systemPrompt plus history as a single chat-completions call
// and returns the raw assistant text. It never retries; the caller routes any error
// here straight to the caller's fallback handling.
func (c *OpenAIClient) Complete(ctx context.Context, systemPrompt string, history []Message) (Response, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	messages = append(messages, openai.SystemMessage(systemPrompt))
	for _, m := range history {
		switch m.Role {
		case RoleUser:
			messages = append(messages, openai.UserMessage(m.Content))
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		case RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		}
	}

	completion, err := c.client.Chat.Completions.New(callCtx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: messages,
	})
	if err != nil {
		return Response{}, classifyError(callCtx, err)
	}
	if len(completion.Choices) == 0 {
		return Response{}, &ProviderError{SDKError: SDKError{Message: "completion returned no choices"}}
	}

	choice := completion.Choices[0]
	return Response{
		Text:         choice.Message.Content,
		InputTokens:  int(completion.Usage.PromptTokens),
		OutputTokens: int(completion.Usage.CompletionTokens),
	}, nil
}

// classifyError maps a transport-level failure into the retryable/non-retryable error taxonomy.
func classifyError(ctx context.Context, err error) error {
	if ctx.Err() != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &RequestTimeoutError{SDKError: SDKError{Message: "LLM call exceeded its timeout", Cause: err}}
	}
	if errors.Is(err, context.Canceled) {
		return &RequestTimeoutError{SDKError: SDKError{Message: "LLM call canceled", Cause: err}}
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return ErrorFromStatusCode(apiErr.StatusCode, apiErr.Message, "", nil)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return &NetworkError{SDKError: SDKError{Message: "network error calling LLM endpoint", Cause: err}}
	}

	return &SDKError{Message: "LLM call failed", Cause: err}
}
