// Package frontmatter reads the YAML header at the top of a post.
//
// A header is a block delimited by lines containing only "---", starting
// on the first line of the file:
//
//	---
//	title: Ten Go Idioms
//	tags: [go, style]
//	status: draft
//	---
//	# Ten Go Idioms
//
// The header carries publishing metadata and is removed from the body that
// gets published.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// Meta is the publishing metadata of a post.
type Meta struct {
	Title        string   `yaml:"title,omitempty"`
	Tags         []string `yaml:"tags,omitempty"`
	CanonicalURL string   `yaml:"canonicalUrl,omitempty"`
	Status       string   `yaml:"status,omitempty"`
	License      string   `yaml:"license,omitempty"`
	Notify       *bool    `yaml:"notify,omitempty"`
	Image        string   `yaml:"image,omitempty"`
}

// IsZero reports whether no field is set.
func (m Meta) IsZero() bool {
	return m.Title == "" && len(m.Tags) == 0 && m.CanonicalURL == "" &&
		m.Status == "" && m.License == "" && m.Notify == nil && m.Image == ""
}

// Split separates the header from the body. Text without a header yields
// a zero Meta and the text unchanged.
func Split(text string) (Meta, string, error) {
	header, body, ok := cut(text)
	if !ok {
		return Meta{}, text, nil
	}
	var m Meta
	dec := yaml.NewDecoder(strings.NewReader(header))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return Meta{}, text, fmt.Errorf("front matter: %w", err)
	}
	return m, body, nil
}

// Join renders m as a header above body. A zero Meta returns body as is.
func Join(m Meta, body string) (string, error) {
	if m.IsZero() {
		return body, nil
	}
	var buf bytes.Buffer
	buf.WriteString(delimiter + "\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return "", fmt.Errorf("front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	buf.WriteString(delimiter + "\n")
	buf.WriteString(body)
	return buf.String(), nil
}

// cut finds the header lines between the opening and closing delimiters.
func cut(text string) (header, body string, ok bool) {
	first, rest, found := strings.Cut(text, "\n")
	if !found || strings.TrimRight(first, "\r") != delimiter {
		return "", text, false
	}
	offset := 0
	for {
		line, next, more := strings.Cut(rest[offset:], "\n")
		if strings.TrimRight(line, "\r") == delimiter {
			header = rest[:offset]
			if more {
				body = next
			}
			return header, body, true
		}
		if !more {
			return "", text, false
		}
		offset += len(line) + 1
	}
}
