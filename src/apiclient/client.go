// Package apiclient executes Toolhub requests and decodes their bodies.
package apiclient

import (
	"context"
	"errors"
	"mime"
	"strings"

	"github.com/toolhub-scripting/go-toolhub/src/cache"
	"github.com/toolhub-scripting/go-toolhub/src/request"
	"github.com/toolhub-scripting/go-toolhub/src/transports"
	"github.com/toolhub-scripting/go-toolhub/src/value"
)

// Client runs descriptors against a transport. It is safe for concurrent use
// when its transport is.
type Client struct {
	transport transports.ClientTransport
	builder   *request.Builder
	cache     *cache.ResponseCache
	logger    func(format string, args ...interface{})
}

// Option customises a Client.
type Option func(*Client)

// WithCache stores successful GET results in c.
func WithCache(c *cache.ResponseCache) Option {
	return func(cl *Client) { cl.cache = c }
}

func WithLogger(logger func(format string, args ...interface{})) Option {
	return func(cl *Client) {
		if logger != nil {
			cl.logger = logger
		}
	}
}

// WithRequestOptions passes opts to the transport with every request.
func WithRequestOptions(opts request.Options) Option {
	return func(cl *Client) {
		cl.builder = request.NewBuilder(cl.builder.BaseURL(), opts)
	}
}

// New returns a Client talking to the Toolhub instance at baseURL.
func New(tr transports.ClientTransport, baseURL string, opts ...Option) *Client {
	c := &Client{
		transport: tr,
		builder:   request.NewBuilder(baseURL, nil),
		logger:    func(format string, args ...interface{}) {},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Builder exposes the request builder used by the typed lookups.
func (c *Client) Builder() *request.Builder {
	return c.builder
}

// Execute performs d with a single transport call and decodes the body.
// Any failure is a *Failure.
func (c *Client) Execute(ctx context.Context, d request.Descriptor) (value.Value, error) {
	cacheable := d.Method == request.MethodGet && c.cache.Enabled()
	var key string
	if cacheable {
		key = cache.Key(d.Method, d.URL)
		if v, ok := c.cache.Get(key); ok {
			c.logger("cache hit for %s", d)
			return v, nil
		}
	}

	resp, err := c.transport.Request(ctx, d.Method, d.URL, d.Options)
	if err != nil {
		c.logger("%s failed: %v", d, err)
		return value.Value{}, &Failure{Kind: FailureTransport, Method: d.Method, URL: d.URL, Err: err}
	}
	if resp == nil || resp.Body == nil {
		return value.Value{}, &Failure{Kind: FailureEmptyBody, Method: d.Method, URL: d.URL}
	}

	v, err := decode(resp)
	if err != nil {
		c.logger("%s returned an undecodable body (id=%s): %v", d, resp.RequestID, err)
		return value.Value{}, &Failure{Kind: FailureDecode, Method: d.Method, URL: d.URL, Err: err}
	}
	if cacheable {
		c.cache.Set(key, v)
	}
	return v, nil
}

func decode(resp *transports.Response) (value.Value, error) {
	if isYAML(resp.ContentType) {
		return value.DecodeYAML(resp.Body)
	}
	return value.DecodeJSON(resp.Body)
}

func isYAML(contentType string) bool {
	if contentType == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasSuffix(mt, "/yaml") || strings.HasSuffix(mt, "/x-yaml") || strings.HasSuffix(mt, "+yaml")
}

// GetToolByName looks up a single tool.
func (c *Client) GetToolByName(ctx context.Context, name string) (value.Value, error) {
	return c.Execute(ctx, c.builder.BuildToolLookup(name))
}

// GetListByID looks up a curated tool list.
func (c *Client) GetListByID(ctx context.Context, id int64) (value.Value, error) {
	return c.Execute(ctx, c.builder.BuildListLookup(id))
}

// SearchTools runs a full-text search. A nil query lists everything.
func (c *Client) SearchTools(ctx context.Context, query *string, page, pageSize int) (value.Value, error) {
	d, err := c.builder.BuildSearch(query, page, pageSize)
	if err != nil {
		return value.Value{}, err
	}
	return c.Execute(ctx, d)
}

// IsFailure reports whether err came from Execute and returns it.
func IsFailure(err error) (*Failure, bool) {
	var f *Failure
	ok := errors.As(err, &f)
	return f, ok
}
