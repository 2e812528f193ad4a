package publish

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/tidwall/gjson"
)

func TestParseTags(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"go, writing ,tools", []string{"go", "writing", "tools"}},
		{" , ,", []string{}},
		{"", []string{}},
		{"single", []string{"single"}},
	}
	for _, tt := range tests {
		if got := ParseTags(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseTags(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestParseStatusAndLicense(t *testing.T) {
	if s, err := ParseStatus(""); err != nil || s != StatusDraft {
		t.Errorf("ParseStatus(\"\") = %q, %v", s, err)
	}
	if _, err := ParseStatus("private"); err == nil {
		t.Error("ParseStatus(private) succeeded")
	}
	if l, err := ParseLicense("cc-40-zero"); err != nil || l != "cc-40-zero" {
		t.Errorf("ParseLicense(cc-40-zero) = %q, %v", l, err)
	}
	if _, err := ParseLicense("mit"); err == nil {
		t.Error("ParseLicense(mit) succeeded")
	}
}

func TestWithFeaturedImage(t *testing.T) {
	got := WithFeaturedImage("Body", "https://i.imgur.com/x.png")
	want := "![Featured Image](https://i.imgur.com/x.png)\n\nBody"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got := WithFeaturedImage("Body", ""); got != "Body" {
		t.Errorf("empty url changed content: %q", got)
	}
}

func newMedium(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "tok", WithHTTPClient(srv.Client()))
}

func TestClient_Publish(t *testing.T) {
	var meCalls int
	var payload []byte
	c := newMedium(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/v1/me":
			meCalls++
			io.WriteString(w, `{"data":{"id":"u1","username":"ana","name":"Ana"}}`)
		case r.Method == http.MethodPost && r.URL.Path == "/v1/users/u1/posts":
			if ct := r.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
			payload, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusCreated)
			io.WriteString(w, `{"data":{"id":"p1","url":"https://medium.com/@ana/p1","publishStatus":"draft"}}`)
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	post := Post{Title: "Hello", Content: "# Hello\n\nBody", Tags: []string{"go"}}
	got, err := c.Publish(context.Background(), post)
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if got.URL != "https://medium.com/@ana/p1" || got.ID != "p1" || got.Status != StatusDraft {
		t.Errorf("Publish() = %+v", got)
	}

	checks := map[string]string{
		"title":           "Hello",
		"contentFormat":   "markdown",
		"content":         "# Hello\n\nBody",
		"tags":            `["go"]`,
		"canonicalUrl":    "",
		"publishStatus":   "draft",
		"license":         "all-rights-reserved",
		"notifyFollowers": "false",
	}
	for path, want := range checks {
		res := gjson.GetBytes(payload, path)
		got := res.String()
		if res.IsArray() {
			got = res.Raw
		}
		if !res.Exists() || got != want {
			t.Errorf("payload %s = %q, want %q", path, got, want)
		}
	}

	if _, err := c.Publish(context.Background(), post); err != nil {
		t.Fatal(err)
	}
	if meCalls != 1 {
		t.Errorf("GET /v1/me called %d times, want 1", meCalls)
	}
}

func TestClient_PublishEmptyTags(t *testing.T) {
	var payload []byte
	c := newMedium(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/me" {
			io.WriteString(w, `{"data":{"id":"u1"}}`)
			return
		}
		payload, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"data":{"url":"u"}}`)
	})
	_, err := c.Publish(context.Background(), Post{Title: "T", Content: "C", Status: StatusPublic})
	if err != nil {
		t.Fatal(err)
	}
	if raw := gjson.GetBytes(payload, "tags").Raw; raw != "[]" {
		t.Errorf("tags = %s, want []", raw)
	}
	if s := gjson.GetBytes(payload, "publishStatus").String(); s != "public" {
		t.Errorf("publishStatus = %s", s)
	}
}

func TestClient_Errors(t *testing.T) {
	c := newMedium(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"errors":[{"message":"Token was invalid.","code":6003}]}`)
	})
	_, err := c.Publish(context.Background(), Post{Title: "T", Content: "C"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Message != "Token was invalid." || apiErr.Op != "me" {
		t.Errorf("APIError = %+v", apiErr)
	}

	if _, err := c.Publish(context.Background(), Post{Content: "C"}); !errors.Is(err, ErrMissingTitle) {
		t.Errorf("missing title error = %v", err)
	}
	if _, err := c.Publish(context.Background(), Post{Title: "T", Content: " \n"}); !errors.Is(err, ErrMissingContent) {
		t.Errorf("missing content error = %v", err)
	}
	if _, err := NewClient("", "").Me(context.Background()); !errors.Is(err, ErrNoToken) {
		t.Errorf("no token error = %v", err)
	}
}
