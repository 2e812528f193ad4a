package assist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("inkpost.assist")

// Errors returned by the assistant.
var (
	ErrNoContent   = errors.New("article has no content")
	ErrNoProvider  = errors.New("no assistant provider configured")
	ErrNoAPIKey    = errors.New("assistant api key not set")
	ErrEmptyAnswer = errors.New("model returned no text")
)

// MaxTags is the number of tags requested from the model.
const MaxTags = 5

// Request is one completion call.
type Request struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Completer sends a single user prompt and returns the model's text.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, req Request) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// ProviderError wraps a failure reported by a provider.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Assistant produces titles and tags for article content.
type Assistant struct {
	c Completer
}

// New returns an assistant using c.
func New(c Completer) *Assistant {
	return &Assistant{c: c}
}

// GenerateTitle asks for a short, engaging title.
func (a *Assistant) GenerateTitle(ctx context.Context, content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrNoContent
	}
	out, err := a.c.Complete(ctx, Request{
		Prompt:      "Generate an engaging and concise title for the following article:\n\n" + content + "\n\nTitle:",
		MaxTokens:   20,
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("generating title: %w", err)
	}
	title := strings.Trim(strings.TrimSpace(out), `"`)
	if title == "" {
		return "", ErrEmptyAnswer
	}
	log.Debug("title generated", "title", title)
	return title, nil
}

// SuggestTags asks for up to MaxTags comma separated tags.
func (a *Assistant) SuggestTags(ctx context.Context, content string) ([]string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrNoContent
	}
	out, err := a.c.Complete(ctx, Request{
		Prompt:      fmt.Sprintf("Based on the following article, suggest up to %d relevant tags separated by commas:\n\n%s\n\nTags:", MaxTags, content),
		MaxTokens:   50,
		Temperature: 0.5,
	})
	if err != nil {
		return nil, fmt.Errorf("suggesting tags: %w", err)
	}

	var tags []string
	for _, t := range strings.Split(out, ",") {
		t = strings.Trim(strings.TrimSpace(t), `"#`)
		if t == "" {
			continue
		}
		tags = append(tags, t)
		if len(tags) == MaxTags {
			break
		}
	}
	if len(tags) == 0 {
		return nil, ErrEmptyAnswer
	}
	return tags, nil
}
