// Package toolhub wires the Toolhub client, its Lua library and the Go
// snippet runner from a ClientConfig.
package toolhub

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/toolhub-scripting/go-toolhub/src/apiclient"
	"github.com/toolhub-scripting/go-toolhub/src/bridge"
	"github.com/toolhub-scripting/go-toolhub/src/cache"
	"github.com/toolhub-scripting/go-toolhub/src/library"
	"github.com/toolhub-scripting/go-toolhub/src/logging"
	"github.com/toolhub-scripting/go-toolhub/src/plugins/codemode"
	"github.com/toolhub-scripting/go-toolhub/src/transports"
	httptransport "github.com/toolhub-scripting/go-toolhub/src/transports/http"
	"github.com/toolhub-scripting/go-toolhub/src/transports/text"
)

// Toolhub owns one configured client and everything built on it.
type Toolhub struct {
	cfg     *ClientConfig
	logger  *logging.Logger
	cache   *cache.ResponseCache
	client  *apiclient.Client
	lib     *library.CoreLibrary
	sandbox *library.Sandbox
	code    *codemode.CodeMode
}

type options struct {
	transport transports.ClientTransport
	logOutput io.Writer
}

type Option func(*options)

// WithTransport replaces the HTTP transport built from the config.
func WithTransport(tr transports.ClientTransport) Option {
	return func(o *options) { o.transport = tr }
}

// WithLogOutput sends logs to w instead of stderr.
func WithLogOutput(w io.Writer) Option {
	return func(o *options) { o.logOutput = w }
}

// New resolves cfg and builds a Toolhub. ctx bounds the cache cleanup
// goroutine, if caching is enabled.
func New(ctx context.Context, cfg *ClientConfig, opts ...Option) (*Toolhub, error) {
	if cfg == nil {
		cfg = NewClientConfig()
	}
	if err := cfg.Resolve(); err != nil {
		return nil, fmt.Errorf("toolhub config: %w", err)
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format, o.logOutput)

	tr := o.transport
	if tr == nil && strings.HasPrefix(cfg.BaseURL, "file://") {
		ft := text.NewTextTransport(logger.Component("transport"))
		if u, err := url.Parse(cfg.BaseURL); err == nil {
			ft.SetBasePath(u.Path)
		}
		tr = ft
	}
	if tr == nil {
		auth, err := cfg.Auth.Build()
		if err != nil {
			return nil, err
		}
		httpOpts := []httptransport.Option{
			httptransport.WithTimeout(cfg.Timeout),
			httptransport.WithUserAgent(cfg.UserAgent),
			httptransport.WithHeaders(cfg.Headers),
		}
		if auth != nil {
			httpOpts = append(httpOpts, httptransport.WithAuth(auth))
		}
		tr = httptransport.NewHttpClientTransport(logger.Component("transport"), httpOpts...)
	}

	respCache := cache.New(cfg.Cache.TTL, cfg.Cache.MaxEntries)
	if respCache.Enabled() {
		respCache.StartCleanupRoutine(ctx, cleanupInterval(cfg.Cache.TTL))
	}

	client := apiclient.New(tr, cfg.BaseURL,
		apiclient.WithCache(respCache),
		apiclient.WithLogger(logger.Component("apiclient")),
	)

	mode, err := bridge.ParseRebase(cfg.Rebase)
	if err != nil {
		return nil, err
	}
	lib := library.New(client, bridge.NewConverter(mode), logger.Component("library"))

	logger.Infof("toolhub client ready (base=%s, rebase=%s, cache ttl=%s)", cfg.BaseURL, mode, cfg.Cache.TTL)

	return &Toolhub{
		cfg:     cfg,
		logger:  logger,
		cache:   respCache,
		client:  client,
		lib:     lib,
		sandbox: library.NewSandbox(lib, library.Limits{Timeout: cfg.ScriptTimeout, MaxOutput: cfg.MaxOutput}),
		code:    codemode.New(client),
	}, nil
}

func cleanupInterval(ttl time.Duration) time.Duration {
	if ttl < time.Minute {
		return ttl
	}
	return time.Minute
}

// Client returns the API client.
func (t *Toolhub) Client() *apiclient.Client { return t.client }

// Library returns the mw.ext.toolhub implementation.
func (t *Toolhub) Library() *library.CoreLibrary { return t.lib }

func (t *Toolhub) CacheStats() cache.Stats { return t.cache.Stats() }

// RunLua runs a Lua script in a fresh sandbox.
func (t *Toolhub) RunLua(ctx context.Context, source string) (library.Result, error) {
	res, err := t.sandbox.Run(ctx, source)
	if err != nil {
		t.logger.Warnf("lua script failed: %v", err)
	}
	return res, err
}

// RunGo interprets a Go snippet with the toolhub helpers in scope.
func (t *Toolhub) RunGo(ctx context.Context, code string) (codemode.Result, error) {
	res, err := t.code.Execute(ctx, codemode.Args{Code: code, Timeout: t.cfg.ScriptTimeout})
	if err != nil {
		t.logger.Warnf("go snippet failed: %v", err)
	}
	return res, err
}
