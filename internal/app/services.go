package app

import (
	"context"
	"io"
	"net/http"

	"github.com/dshills/inkpost/internal/assist"
	"github.com/dshills/inkpost/internal/config"
	"github.com/dshills/inkpost/internal/grammar"
	"github.com/dshills/inkpost/internal/history"
	"github.com/dshills/inkpost/internal/hooks"
	"github.com/dshills/inkpost/internal/imagehost"
	"github.com/dshills/inkpost/internal/publish"
)

// Services are the backends built from configuration. They are shared by
// the editor and the headless commands.
type Services struct {
	Checker   grammar.Checker
	Publisher *Publisher
	Metrics   *Metrics

	// HTTP is used by every client; tests point it at httptest servers.
	HTTP *http.Client

	cfg     *config.Config
	history *history.Store
	hooks   *hooks.Runner
}

// NewServices builds the grammar checker, the publisher and its
// dependencies. A history database that cannot be opened is logged and
// skipped; a broken hook script is an error.
func NewServices(cfg *config.Config, hc *http.Client) (*Services, error) {
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Grammar.Timeout()}
	}
	s := &Services{
		Metrics: NewMetrics(),
		HTTP:    hc,
		cfg:     cfg,
	}

	if cfg.Grammar.Enabled {
		var opts []grammar.LanguageToolOption
		opts = append(opts, grammar.WithHTTPClient(hc))
		if cfg.Grammar.APIKey != "" {
			opts = append(opts, grammar.WithCredentials(cfg.Grammar.Username, cfg.Grammar.APIKey))
		}
		lt := grammar.NewLanguageTool(cfg.Grammar.Endpoint, cfg.Grammar.Language, opts...)
		s.Checker = TimedChecker(lt, s.Metrics)
	}

	if cfg.Hooks.Script != "" {
		r, err := hooks.Load(cfg.Hooks.Script)
		if err != nil {
			return nil, &InitError{Component: "hooks", Err: err}
		}
		s.hooks = r
	}

	if cfg.History.Path != "" {
		st, err := history.Open(cfg.History.Path)
		if err != nil {
			log.Warning("publish history disabled", "path", cfg.History.Path, "error", err.Error())
		} else {
			s.history = st
		}
	}

	s.Publisher = &Publisher{
		Hooks:    s.hooks,
		History:  s.history,
		Metrics:  s.Metrics,
		Defaults: cfg.Publish,
	}
	if cfg.Publish.Token != "" {
		s.Publisher.Client = publish.NewClient(cfg.Publish.Endpoint, cfg.Publish.Token, publish.WithHTTPClient(hc))
	}
	if cfg.Image.ClientID != "" {
		s.Publisher.Images = imagehost.NewImgur(cfg.Image.Endpoint, cfg.Image.ClientID, hc)
	}
	return s, nil
}

// History returns the publish history, or nil when it is disabled.
func (s *Services) History() *history.Store {
	return s.history
}

// Assistant builds an assistant for the configured provider. The returned
// function releases provider connections.
func (s *Services) Assistant(ctx context.Context) (*assist.Assistant, func(), error) {
	c, err := assist.NewCompleter(ctx, assist.Settings{
		Provider: s.cfg.AI.Provider,
		Model:    s.cfg.AI.Model,
		APIKey:   s.cfg.AI.APIKey(),
	})
	if err != nil {
		return nil, nil, err
	}
	release := func() {}
	if cl, ok := c.(io.Closer); ok {
		release = func() {
			if err := cl.Close(); err != nil {
				log.Debug("closing assistant", "error", err.Error())
			}
		}
	}
	return assist.New(c), release, nil
}

// Close releases the hook interpreter and the history database.
func (s *Services) Close() error {
	var errs ErrorList
	if s.hooks != nil {
		s.hooks.Close()
	}
	if s.history != nil {
		errs.Add(s.history.Close())
	}
	return errs.AsError()
}
