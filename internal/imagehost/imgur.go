// Package imagehost uploads featured images so that posts can link them.
package imagehost

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("inkpost.image")

// DefaultEndpoint is Imgur's API root.
const DefaultEndpoint = "https://api.imgur.com"

// ErrNoClientID is returned when no Imgur client id is configured.
var ErrNoClientID = errors.New("imgur client id not set")

// UploadError is a failed upload.
type UploadError struct {
	StatusCode int
	Body       string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("image upload failed: status %d", e.StatusCode)
}

// Uploader stores an image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, name string, r io.Reader) (string, error)
}

// Imgur uploads anonymously with a client id.
type Imgur struct {
	endpoint string
	clientID string
	http     *http.Client
}

// NewImgur returns an uploader. An empty endpoint means DefaultEndpoint.
func NewImgur(endpoint, clientID string, hc *http.Client) *Imgur {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if hc == nil {
		hc = &http.Client{Timeout: 60 * time.Second}
	}
	return &Imgur{endpoint: strings.TrimRight(endpoint, "/"), clientID: clientID, http: hc}
}

// Upload posts the image as the multipart field "image".
func (im *Imgur) Upload(ctx context.Context, name string, r io.Reader) (string, error) {
	if im.clientID == "" {
		return "", ErrNoClientID
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", filepath.Base(name))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("reading image %s: %w", name, err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, im.endpoint+"/3/image", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Client-ID "+im.clientID)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := im.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("uploading image: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("uploading image: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &UploadError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	link := gjson.GetBytes(body, "data.link").String()
	if link == "" {
		return "", fmt.Errorf("image upload: response has no link")
	}
	log.Info("image uploaded", "name", filepath.Base(name), "url", link)
	return link, nil
}

// UploadFile opens path and uploads it.
func UploadFile(ctx context.Context, u Uploader, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return u.Upload(ctx, path, f)
}
