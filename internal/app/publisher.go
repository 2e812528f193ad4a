package app

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/dshills/inkpost/internal/config"
	"github.com/dshills/inkpost/internal/frontmatter"
	"github.com/dshills/inkpost/internal/history"
	"github.com/dshills/inkpost/internal/hooks"
	"github.com/dshills/inkpost/internal/imagehost"
	"github.com/dshills/inkpost/internal/publish"
)

// PostClient creates posts on the publishing platform.
type PostClient interface {
	Publish(ctx context.Context, p publish.Post) (publish.Published, error)
}

// PublishRequest is a document to publish plus metadata that overrides
// its front matter. Overrides.Tags replaces the front matter tags unless
// it is nil. Source is the document path, used to resolve a
// relative image path and recorded in the history.
type PublishRequest struct {
	Text      string
	Source    string
	Overrides frontmatter.Meta
}

// PublishResult is a published post and what was sent.
type PublishResult struct {
	Published publish.Published
	Post      publish.Post
}

// Publisher runs the publishing steps: front matter, featured image,
// pre-publish hook, platform call and history record.
type Publisher struct {
	Client   PostClient
	Images   imagehost.Uploader
	Hooks    *hooks.Runner
	History  *history.Store
	Metrics  *Metrics
	Defaults config.PublishConfig
}

// Prepare builds the post for req without sending anything. The returned
// image is the featured image reference still to be resolved.
func (p *Publisher) Prepare(req PublishRequest) (publish.Post, string, error) {
	meta, body, err := frontmatter.Split(req.Text)
	if err != nil {
		return publish.Post{}, "", err
	}
	meta = merge(meta, req.Overrides)

	status, err := publish.ParseStatus(firstNonEmpty(meta.Status, p.Defaults.DefaultStatus))
	if err != nil {
		return publish.Post{}, "", err
	}
	license, err := publish.ParseLicense(firstNonEmpty(meta.License, p.Defaults.DefaultLicense))
	if err != nil {
		return publish.Post{}, "", err
	}
	notify := p.Defaults.NotifyFollowers
	if meta.Notify != nil {
		notify = *meta.Notify
	}

	post := publish.Post{
		Title:           strings.TrimSpace(meta.Title),
		Content:         body,
		Tags:            publish.ParseTags(strings.Join(meta.Tags, ",")),
		CanonicalURL:    meta.CanonicalURL,
		Status:          status,
		License:         license,
		NotifyFollowers: notify,
	}
	if err := post.Validate(); err != nil {
		return publish.Post{}, "", err
	}
	return post, meta.Image, nil
}

// Publish sends req. A featured image that fails to upload, a hook that
// aborts or a platform error stops publishing. A failed history record is
// only logged.
func (p *Publisher) Publish(ctx context.Context, req PublishRequest) (PublishResult, error) {
	res, err := p.publish(ctx, req)
	if p.Metrics != nil {
		p.Metrics.RecordPublish(err)
	}
	return res, err
}

func (p *Publisher) publish(ctx context.Context, req PublishRequest) (PublishResult, error) {
	if p.Client == nil {
		return PublishResult{}, NewOperationError("publish", req.Source, publish.ErrNoToken)
	}
	post, image, err := p.Prepare(req)
	if err != nil {
		return PublishResult{}, NewOperationError("publish", req.Source, err)
	}

	if image != "" {
		url, err := p.featuredImage(ctx, image, req.Source)
		if err != nil {
			return PublishResult{}, NewOperationError("publish", post.Title, err).WithContext("featured image")
		}
		post.Content = publish.WithFeaturedImage(post.Content, url)
	}

	if p.Hooks != nil && p.Hooks.Has() {
		hp, err := p.Hooks.BeforePublish(ctx, hooks.Post{Title: post.Title, Content: post.Content, Tags: post.Tags})
		if err != nil {
			return PublishResult{}, NewOperationError("publish", post.Title, err).WithContext(hooks.HookName)
		}
		post.Title, post.Content, post.Tags = hp.Title, hp.Content, publish.ParseTags(strings.Join(hp.Tags, ","))
		if err := post.Validate(); err != nil {
			return PublishResult{}, NewOperationError("publish", post.Title, err).WithContext(hooks.HookName)
		}
	}

	published, err := p.Client.Publish(ctx, post)
	if err != nil {
		return PublishResult{}, NewOperationError("publish", post.Title, err)
	}

	if p.History != nil {
		_, err := p.History.Add(ctx, history.Entry{
			PostID: published.ID,
			URL:    published.URL,
			Title:  post.Title,
			Status: string(published.Status),
			Tags:   post.Tags,
			Source: req.Source,
		})
		if err != nil {
			log.Warning("could not record publish history", "error", err.Error())
		}
	}
	return PublishResult{Published: published, Post: post}, nil
}

// featuredImage returns a URL for image, uploading it first when it is a
// local file.
func (p *Publisher) featuredImage(ctx context.Context, image, source string) (string, error) {
	if isRemote(image) {
		return image, nil
	}
	if p.Images == nil {
		return "", NewOperationError("upload", image, ErrNotConfigured)
	}
	if !filepath.IsAbs(image) && source != "" {
		image = filepath.Join(filepath.Dir(source), image)
	}
	return imagehost.UploadFile(ctx, p.Images, image)
}

func isRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// merge overlays the non-zero fields of over onto m. Non-nil empty tags
// clear the front matter tags.
func merge(m, over frontmatter.Meta) frontmatter.Meta {
	if over.Title != "" {
		m.Title = over.Title
	}
	if over.Tags != nil {
		m.Tags = over.Tags
	}
	if over.CanonicalURL != "" {
		m.CanonicalURL = over.CanonicalURL
	}
	if over.Status != "" {
		m.Status = over.Status
	}
	if over.License != "" {
		m.License = over.License
	}
	if over.Notify != nil {
		m.Notify = over.Notify
	}
	if over.Image != "" {
		m.Image = over.Image
	}
	return m
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
