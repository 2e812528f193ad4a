package publish

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("inkpost.publish")

// DefaultEndpoint is Medium's API root.
const DefaultEndpoint = "https://api.medium.com"

// User is the account owning the integration token.
type User struct {
	ID       string
	Username string
	Name     string
	URL      string
}

// Published describes a created post.
type Published struct {
	ID     string
	URL    string
	Status Status
}

// Client talks to the Medium API.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
	user     *User
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// NewClient returns a client for endpoint authenticated with token.
func NewClient(endpoint, token string, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		token:    token,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Me returns the token's user. The result is cached after the first
// successful call.
func (c *Client) Me(ctx context.Context) (User, error) {
	if c.user != nil {
		return *c.user, nil
	}
	body, err := c.do(ctx, "me", http.MethodGet, "/v1/me", nil, http.StatusOK)
	if err != nil {
		return User{}, err
	}
	data := gjson.GetBytes(body, "data")
	u := User{
		ID:       data.Get("id").String(),
		Username: data.Get("username").String(),
		Name:     data.Get("name").String(),
		URL:      data.Get("url").String(),
	}
	if u.ID == "" {
		return User{}, fmt.Errorf("medium me: response has no user id")
	}
	c.user = &u
	log.Debug("medium user", "id", u.ID, "username", u.Username)
	return u, nil
}

// Publish validates and creates p under the token's user.
func (c *Client) Publish(ctx context.Context, p Post) (Published, error) {
	if err := p.Validate(); err != nil {
		return Published{}, err
	}
	u, err := c.Me(ctx)
	if err != nil {
		return Published{}, err
	}
	payload, err := encodePost(p)
	if err != nil {
		return Published{}, fmt.Errorf("encoding post: %w", err)
	}

	body, err := c.do(ctx, "publish", http.MethodPost, "/v1/users/"+u.ID+"/posts", payload, http.StatusCreated)
	if err != nil {
		return Published{}, err
	}
	data := gjson.GetBytes(body, "data")
	out := Published{
		ID:     data.Get("id").String(),
		URL:    data.Get("url").String(),
		Status: Status(data.Get("publishStatus").String()),
	}
	if out.Status == "" {
		out.Status = p.Status
	}
	log.Info("post published", "id", out.ID, "url", out.URL, "status", string(out.Status))
	return out, nil
}

func encodePost(p Post) ([]byte, error) {
	status := p.Status
	if status == "" {
		status = StatusDraft
	}
	license := p.License
	if license == "" {
		license = DefaultLicense
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}

	fields := []struct {
		path  string
		value any
	}{
		{"title", p.Title},
		{"contentFormat", "markdown"},
		{"content", p.Content},
		{"tags", tags},
		{"canonicalUrl", p.CanonicalURL},
		{"publishStatus", string(status)},
		{"license", string(license)},
		{"notifyFollowers", p.NotifyFollowers},
	}
	body := []byte(`{}`)
	for _, f := range fields {
		var err error
		if body, err = sjson.SetBytes(body, f.path, f.value); err != nil {
			return nil, fmt.Errorf("%s: %w", f.path, err)
		}
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, payload []byte, want int) ([]byte, error) {
	if c.token == "" {
		return nil, ErrNoToken
	}
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("medium %s: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("medium %s: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("medium %s: reading response: %w", op, err)
	}
	if resp.StatusCode != want {
		return nil, &APIError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    gjson.GetBytes(body, "errors.0.message").String(),
			Body:       string(body),
		}
	}
	return body, nil
}
