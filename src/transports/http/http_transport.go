package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cast"

	"github.com/toolhub-scripting/go-toolhub/src/transports"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultMaxBodyBytes = 4 << 20
	defaultUserAgent    = "go-toolhub/1.0"

	// RequestIDHeader carries the id generated for every outbound request.
	RequestIDHeader = "X-Request-Id"
)

// HttpClientTransport implements transports.ClientTransport over net/http.
type HttpClientTransport struct {
	httpClient   *http.Client
	userAgent    string
	headers      map[string]string
	auth         Auth
	maxBodyBytes int64
	allowHTTP    bool
	logger       func(format string, args ...interface{})
}

// Option customises an HttpClientTransport.
type Option func(*HttpClientTransport)

// WithTimeout sets the client-wide timeout.
func WithTimeout(d time.Duration) Option {
	return func(t *HttpClientTransport) {
		if d > 0 {
			t.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying client.
func WithHTTPClient(c *http.Client) Option {
	return func(t *HttpClientTransport) {
		if c != nil {
			t.httpClient = c
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(t *HttpClientTransport) {
		if ua != "" {
			t.userAgent = ua
		}
	}
}

// WithHeaders adds static headers sent with every request.
func WithHeaders(h map[string]string) Option {
	return func(t *HttpClientTransport) {
		for k, v := range h {
			t.headers[k] = v
		}
	}
}

func WithAuth(a Auth) Option {
	return func(t *HttpClientTransport) { t.auth = a }
}

// WithMaxBodyBytes caps how much of a response body is read.
func WithMaxBodyBytes(n int64) Option {
	return func(t *HttpClientTransport) {
		if n > 0 {
			t.maxBodyBytes = n
		}
	}
}

// WithInsecureHTTP allows plain http:// URLs for hosts other than localhost.
func WithInsecureHTTP() Option {
	return func(t *HttpClientTransport) { t.allowHTTP = true }
}

// NewHttpClientTransport constructs a new HttpClientTransport.
func NewHttpClientTransport(logger func(format string, args ...interface{}), opts ...Option) *HttpClientTransport {
	if logger == nil {
		logger = func(format string, args ...interface{}) {}
	}
	t := &HttpClientTransport{
		httpClient:   &http.Client{Timeout: defaultTimeout},
		userAgent:    defaultUserAgent,
		headers:      make(map[string]string),
		maxBodyBytes: defaultMaxBodyBytes,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// applyAuth applies authentication to the request.
func (t *HttpClientTransport) applyAuth(req *http.Request) error {
	if t.auth == nil {
		return nil
	}
	switch a := t.auth.(type) {
	case *ApiKeyAuth:
		if a.APIKey == "" {
			t.logger("API key not found for ApiKeyAuth.")
			return errors.New("API key for ApiKeyAuth not found")
		}
		name := a.VarName
		if name == "" {
			name = "Authorization"
		}
		switch a.Location {
		case "", "header":
			req.Header.Set(name, a.APIKey)
		case "query":
			q := req.URL.Query()
			q.Set(name, a.APIKey)
			req.URL.RawQuery = q.Encode()
		case "cookie":
			req.AddCookie(&http.Cookie{Name: name, Value: a.APIKey})
		default:
			return fmt.Errorf("unsupported api key location %q", a.Location)
		}
	case *BasicAuth:
		req.SetBasicAuth(a.Username, a.Password)
	case *BearerAuth:
		if a.Token == "" {
			return errors.New("bearer token is empty")
		}
		req.Header.Set("Authorization", "Bearer "+a.Token)
	default:
		return fmt.Errorf("unsupported auth type %T", a)
	}
	return nil
}

func (t *HttpClientTransport) checkURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "https":
		return u, nil
	case "http":
		host := u.Hostname()
		if t.allowHTTP || host == "localhost" || host == "127.0.0.1" || host == "::1" {
			return u, nil
		}
	}
	return nil, fmt.Errorf("security error: URL must use HTTPS or localhost; got: %s", raw)
}

// Request performs one HTTP exchange. Non-2xx answers are returned as
// *transports.StatusError; a 204 or empty body yields a Response with a
// nil Body.
func (t *HttpClientTransport) Request(ctx context.Context, method, rawURL string, options map[string]any) (*transports.Response, error) {
	u, err := t.checkURL(rawURL)
	if err != nil {
		return nil, err
	}

	if raw, ok := options["timeout"]; ok {
		d, err := cast.ToDurationE(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout option: %w", err)
		}
		if d > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d)
			defer cancel()
		}
	}

	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(method), u.String(), nil)
	if err != nil {
		return nil, err
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", t.userAgent)
	req.Header.Set(RequestIDHeader, reqID)
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	if raw, ok := options["headers"]; ok && raw != nil {
		hdrs, err := cast.ToStringMapStringE(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid headers option: %w", err)
		}
		for k, v := range hdrs {
			req.Header.Set(k, v)
		}
	}
	if err := t.applyAuth(req); err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := t.httpClient.Do(req)
	if err != nil {
		t.logger("request %s %s failed (id=%s): %v", req.Method, rawURL, reqID, err)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, t.maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > t.maxBodyBytes {
		return nil, fmt.Errorf("response body exceeds %d bytes", t.maxBodyBytes)
	}
	t.logger("request %s %s -> %d in %s (id=%s)", req.Method, rawURL, resp.StatusCode, time.Since(start).Round(time.Millisecond), reqID)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &transports.StatusError{StatusCode: resp.StatusCode, Status: resp.Status, Body: body}
	}
	out := &transports.Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		RequestID:   reqID,
	}
	if resp.StatusCode != http.StatusNoContent && len(body) > 0 {
		out.Body = body
	}
	return out, nil
}
