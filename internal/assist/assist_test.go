package assist

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/tidwall/gjson"
)

func fixed(answer string, seen *Request) Completer {
	return CompleterFunc(func(_ context.Context, req Request) (string, error) {
		if seen != nil {
			*seen = req
		}
		return answer, nil
	})
}

func TestAssistant_GenerateTitle(t *testing.T) {
	var req Request
	a := New(fixed("  \"Ten Go Idioms\"\n", &req))
	got, err := a.GenerateTitle(context.Background(), "\n article body \n")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Ten Go Idioms" {
		t.Errorf("title = %q", got)
	}
	if req.MaxTokens != 20 || req.Temperature != 0.7 {
		t.Errorf("request = %+v", req)
	}
	if !strings.Contains(req.Prompt, "article body\n\nTitle:") {
		t.Errorf("prompt = %q", req.Prompt)
	}
}

func TestAssistant_SuggestTags(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   []string
	}{
		{"plain", "go, programming, tools", []string{"go", "programming", "tools"}},
		{"hashes and quotes", "#go, \"writing\" ,", []string{"go", "writing"}},
		{"capped", "a,b,c,d,e,f,g", []string{"a", "b", "c", "d", "e"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req Request
			got, err := New(fixed(tt.answer, &req)).SuggestTags(context.Background(), "text")
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("tags = %q, want %q", got, tt.want)
			}
			if req.MaxTokens != 50 || req.Temperature != 0.5 {
				t.Errorf("request = %+v", req)
			}
		})
	}
}

func TestAssistant_Errors(t *testing.T) {
	a := New(fixed("", nil))
	if _, err := a.GenerateTitle(context.Background(), "  "); !errors.Is(err, ErrNoContent) {
		t.Errorf("empty content: %v", err)
	}
	if _, err := a.GenerateTitle(context.Background(), "x"); !errors.Is(err, ErrEmptyAnswer) {
		t.Errorf("empty answer: %v", err)
	}
	if _, err := a.SuggestTags(context.Background(), "x"); !errors.Is(err, ErrEmptyAnswer) {
		t.Errorf("empty tags: %v", err)
	}

	boom := errors.New("boom")
	failing := New(CompleterFunc(func(context.Context, Request) (string, error) { return "", boom }))
	if _, err := failing.SuggestTags(context.Background(), "x"); !errors.Is(err, boom) {
		t.Errorf("provider error not wrapped: %v", err)
	}
}

func TestNewCompleter_Selection(t *testing.T) {
	ctx := context.Background()
	if _, err := NewCompleter(ctx, Settings{}); !errors.Is(err, ErrNoProvider) {
		t.Errorf("no provider: %v", err)
	}
	if _, err := NewCompleter(ctx, Settings{Provider: "openai"}); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("no key: %v", err)
	}
	if _, err := NewCompleter(ctx, Settings{Provider: "clippy", APIKey: "k"}); err == nil {
		t.Error("unknown provider accepted")
	}
}

func TestOpenAICompleter(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q", got)
		}
		body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"A Title"}}]}`)
	}))
	defer srv.Close()

	c, err := NewCompleter(context.Background(), Settings{Provider: "openai", APIKey: "sk-test", BaseURL: srv.URL + "/"})
	if err != nil {
		t.Fatal(err)
	}
	got, err := New(c).GenerateTitle(context.Background(), "body")
	if err != nil {
		t.Fatal(err)
	}
	if got != "A Title" {
		t.Errorf("title = %q", got)
	}
	if m := gjson.GetBytes(body, "model").String(); m != DefaultOpenAIModel {
		t.Errorf("model = %q", m)
	}
	if n := gjson.GetBytes(body, "max_tokens").Int(); n != 20 {
		t.Errorf("max_tokens = %d", n)
	}
	if msg := gjson.GetBytes(body, "messages.0.role").String(); msg != "user" {
		t.Errorf("role = %q", msg)
	}
}

func TestAnthropicCompleter(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v1/messages") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("X-Api-Key"); got != "ak-test" {
			t.Errorf("X-Api-Key = %q", got)
		}
		body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"m1","type":"message","role":"assistant","model":"claude",
			"content":[{"type":"text","text":"go, editors"}],
			"stop_reason":"end_turn","usage":{"input_tokens":3,"output_tokens":2}}`)
	}))
	defer srv.Close()

	c, err := NewCompleter(context.Background(), Settings{Provider: "anthropic", Model: "claude", APIKey: "ak-test", BaseURL: srv.URL + "/"})
	if err != nil {
		t.Fatal(err)
	}
	got, err := New(c).SuggestTags(context.Background(), "body")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{"go", "editors"}) {
		t.Errorf("tags = %q", got)
	}
	if n := gjson.GetBytes(body, "max_tokens").Int(); n != 50 {
		t.Errorf("max_tokens = %d", n)
	}
	if m := gjson.GetBytes(body, "model").String(); m != "claude" {
		t.Errorf("model = %q", m)
	}
}

func TestGeminiCompleter(t *testing.T) {
	var path string
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"Gemini Title"}]}}]}`)
	}))
	defer srv.Close()

	c, err := NewCompleter(context.Background(), Settings{
		Provider:   "gemini",
		APIKey:     "gk-test",
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
	})
	if err != nil {
		t.Fatal(err)
	}
	defer c.(interface{ Close() error }).Close()

	got, err := New(c).GenerateTitle(context.Background(), "article body")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Gemini Title" {
		t.Errorf("title = %q", got)
	}
	if !strings.HasSuffix(path, "models/"+DefaultGeminiModel+":generateContent") {
		t.Errorf("path = %s", path)
	}
	if text := gjson.GetBytes(body, "contents.0.parts.0.text").String(); !strings.Contains(text, "article body") {
		t.Errorf("prompt = %q", text)
	}
	if n := gjson.GetBytes(body, "generationConfig.maxOutputTokens").Int(); n != 20 {
		t.Errorf("maxOutputTokens = %d", n)
	}
}

func TestGeminiCompleter_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `{"error":{"code":403,"message":"bad key","status":"PERMISSION_DENIED"}}`)
	}))
	defer srv.Close()

	c, err := NewCompleter(context.Background(), Settings{
		Provider:   "gemini",
		APIKey:     "gk-test",
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
	})
	if err != nil {
		t.Fatal(err)
	}
	defer c.(interface{ Close() error }).Close()

	_, err = New(c).SuggestTags(context.Background(), "article body")
	var pe *ProviderError
	if !errors.As(err, &pe) || pe.Provider != "gemini" {
		t.Errorf("error = %v, want gemini ProviderError", err)
	}
}
