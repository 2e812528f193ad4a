package grammar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// DefaultEndpoint is the public LanguageTool API.
const DefaultEndpoint = "https://api.languagetool.org"

// LanguageTool checks text against a LanguageTool server (/v2/check).
type LanguageTool struct {
	endpoint string
	language string
	username string
	apiKey   string
	client   *http.Client
}

// LanguageToolOption configures a LanguageTool client.
type LanguageToolOption func(*LanguageTool)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) LanguageToolOption {
	return func(lt *LanguageTool) {
		if c != nil {
			lt.client = c
		}
	}
}

// WithCredentials sets the username and API key of a premium account.
func WithCredentials(username, apiKey string) LanguageToolOption {
	return func(lt *LanguageTool) {
		lt.username = username
		lt.apiKey = apiKey
	}
}

// NewLanguageTool creates a client. An empty endpoint selects
// DefaultEndpoint and an empty language selects en-US.
func NewLanguageTool(endpoint, language string, opts ...LanguageToolOption) *LanguageTool {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if language == "" {
		language = "en-US"
	}
	lt := &LanguageTool{
		endpoint: strings.TrimRight(endpoint, "/"),
		language: language,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(lt)
	}
	return lt
}

// Check implements Checker.
func (lt *LanguageTool) Check(ctx context.Context, text string) ([]Match, error) {
	form := url.Values{}
	form.Set("text", text)
	form.Set("language", lt.language)
	if lt.username != "" && lt.apiKey != "" {
		form.Set("username", lt.username)
		form.Set("apiKey", lt.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, lt.endpoint+"/v2/check", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := lt.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("languagetool request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("languagetool response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("languagetool: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("languagetool: invalid JSON response")
	}

	return parseMatches(text, body), nil
}

// parseMatches converts the response into rune-offset matches.
// LanguageTool reports offsets in UTF-16 code units.
func parseMatches(text string, body []byte) []Match {
	idx := newUTF16Index(text)
	var matches []Match
	gjson.GetBytes(body, "matches").ForEach(func(_, m gjson.Result) bool {
		off := int(m.Get("offset").Int())
		length := int(m.Get("length").Int())
		start, ok1 := idx.runeOffset(off)
		end, ok2 := idx.runeOffset(off + length)
		if !ok1 || !ok2 || end <= start {
			return true
		}

		var repl []string
		m.Get("replacements.#.value").ForEach(func(_, v gjson.Result) bool {
			repl = append(repl, v.String())
			return true
		})

		matches = append(matches, Match{
			Offset:       start,
			Length:       end - start,
			Replacements: repl,
			Message:      m.Get("message").String(),
			RuleID:       m.Get("rule.id").String(),
		})
		return true
	})
	return matches
}

// utf16Index maps UTF-16 code unit offsets to rune offsets.
type utf16Index struct {
	// units[i] is the UTF-16 offset at which rune i starts; the final
	// element is the total length.
	units []int
}

func newUTF16Index(text string) utf16Index {
	units := make([]int, 0, utf8.RuneCountInString(text)+1)
	n := 0
	for _, r := range text {
		units = append(units, n)
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	units = append(units, n)
	return utf16Index{units: units}
}

func (x utf16Index) runeOffset(unit int) (int, bool) {
	lo, hi := 0, len(x.units)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		switch {
		case x.units[mid] == unit:
			return mid, true
		case x.units[mid] < unit:
			lo = mid + 1
		default:
			hi = mid - 1
		}
	}
	return 0, false
}
