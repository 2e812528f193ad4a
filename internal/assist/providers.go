package assist

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/generative-ai-go/genai"
	"github.com/openai/openai-go"
	openaioption "github.com/openai/openai-go/option"
	"google.golang.org/api/option"
)

// Default models per provider.
const (
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultAnthropicModel = "claude-3-5-haiku-latest"
	DefaultGeminiModel    = "gemini-1.5-flash"
)

// Settings selects and authenticates a provider.
type Settings struct {
	Provider string
	Model    string
	APIKey   string

	// BaseURL overrides the provider endpoint.
	BaseURL string

	// HTTPClient replaces the provider's HTTP client. For Gemini it also
	// replaces API key authentication.
	HTTPClient *http.Client
}

// NewCompleter returns the Completer for s.Provider.
func NewCompleter(ctx context.Context, s Settings) (Completer, error) {
	if s.Provider == "" {
		return nil, ErrNoProvider
	}
	if s.APIKey == "" {
		return nil, fmt.Errorf("%s: %w", s.Provider, ErrNoAPIKey)
	}
	switch s.Provider {
	case "openai":
		return newOpenAI(s), nil
	case "anthropic":
		return newAnthropic(s), nil
	case "gemini":
		return newGemini(ctx, s)
	}
	return nil, fmt.Errorf("unknown assistant provider %q", s.Provider)
}

type openAICompleter struct {
	client openai.Client
	model  string
}

func newOpenAI(s Settings) *openAICompleter {
	opts := []openaioption.RequestOption{openaioption.WithAPIKey(s.APIKey)}
	if s.BaseURL != "" {
		opts = append(opts, openaioption.WithBaseURL(s.BaseURL))
	}
	if s.HTTPClient != nil {
		opts = append(opts, openaioption.WithHTTPClient(s.HTTPClient))
	}
	model := s.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &openAICompleter{client: openai.NewClient(opts...), model: model}
}

func (c *openAICompleter) Complete(ctx context.Context, req Request) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
		MaxTokens:   openai.Int(int64(req.MaxTokens)),
		Temperature: openai.Float(req.Temperature),
	})
	if err != nil {
		return "", &ProviderError{Provider: "openai", Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &ProviderError{Provider: "openai", Err: ErrEmptyAnswer}
	}
	return resp.Choices[0].Message.Content, nil
}

type anthropicCompleter struct {
	client anthropic.Client
	model  string
}

func newAnthropic(s Settings) *anthropicCompleter {
	opts := []anthropicoption.RequestOption{anthropicoption.WithAPIKey(s.APIKey)}
	if s.BaseURL != "" {
		opts = append(opts, anthropicoption.WithBaseURL(s.BaseURL))
	}
	if s.HTTPClient != nil {
		opts = append(opts, anthropicoption.WithHTTPClient(s.HTTPClient))
	}
	model := s.Model
	if model == "" {
		model = DefaultAnthropicModel
	}
	return &anthropicCompleter{client: anthropic.NewClient(opts...), model: model}
}

func (c *anthropicCompleter) Complete(ctx context.Context, req Request) (string, error) {
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(req.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
		Temperature: anthropic.Float(req.Temperature),
	})
	if err != nil {
		return "", &ProviderError{Provider: "anthropic", Err: err}
	}
	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}

type geminiCompleter struct {
	client *genai.Client
	model  string
}

func newGemini(ctx context.Context, s Settings) (*geminiCompleter, error) {
	opts := []option.ClientOption{option.WithAPIKey(s.APIKey)}
	if s.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(s.BaseURL))
	}
	if s.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(s.HTTPClient))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, &ProviderError{Provider: "gemini", Err: err}
	}
	model := s.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	return &geminiCompleter{client: client, model: model}, nil
}

func (c *geminiCompleter) Complete(ctx context.Context, req Request) (string, error) {
	m := c.client.GenerativeModel(c.model)
	m.SetTemperature(float32(req.Temperature))
	m.SetMaxOutputTokens(int32(req.MaxTokens))

	resp, err := m.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", &ProviderError{Provider: "gemini", Err: err}
	}
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
		break
	}
	return sb.String(), nil
}

// Close releases the gRPC connection.
func (c *geminiCompleter) Close() error {
	return c.client.Close()
}
