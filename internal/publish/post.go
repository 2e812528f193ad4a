package publish

import (
	"errors"
	"fmt"
	"strings"
)

// Post validation errors.
var (
	ErrMissingTitle   = errors.New("title is required")
	ErrMissingContent = errors.New("content is required")
)

// Status is the visibility of a published post.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusPublic   Status = "public"
	StatusUnlisted Status = "unlisted"
)

// Statuses lists every accepted status.
var Statuses = []Status{StatusDraft, StatusPublic, StatusUnlisted}

// ParseStatus validates s. An empty string means draft.
func ParseStatus(s string) (Status, error) {
	if s == "" {
		return StatusDraft, nil
	}
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown publish status %q", s)
}

// License is a Medium license identifier.
type License string

// DefaultLicense is used when none is given.
const DefaultLicense License = "all-rights-reserved"

// Licenses lists every license Medium accepts.
var Licenses = []License{
	DefaultLicense,
	"cc-40-by",
	"cc-40-by-sa",
	"cc-40-by-nd",
	"cc-40-by-nc",
	"cc-40-by-nc-nd",
	"cc-40-by-nc-sa",
	"cc-40-zero",
	"public-domain",
}

// ParseLicense validates s. An empty string means DefaultLicense.
func ParseLicense(s string) (License, error) {
	if s == "" {
		return DefaultLicense, nil
	}
	for _, l := range Licenses {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown license %q", s)
}

// ParseTags splits a comma separated list, trimming blanks and dropping
// empty entries.
func ParseTags(s string) []string {
	tags := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// Post is an article ready to be sent.
type Post struct {
	Title           string
	Content         string
	Tags            []string
	CanonicalURL    string
	Status          Status
	License         License
	NotifyFollowers bool
}

// Validate reports a missing title or body.
func (p Post) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return ErrMissingTitle
	}
	if strings.TrimSpace(p.Content) == "" {
		return ErrMissingContent
	}
	return nil
}

// WithFeaturedImage puts a Markdown image for url above content.
func WithFeaturedImage(content, url string) string {
	if url == "" {
		return content
	}
	return fmt.Sprintf("![Featured Image](%s)\n\n%s", url, content)
}
