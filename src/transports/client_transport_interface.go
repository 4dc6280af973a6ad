// Package transports defines the boundary between the Toolhub client and
// whatever carries its requests over the wire.
package transports

import (
	"context"
	"fmt"
)

// Response is what a transport hands back for a completed exchange. A nil
// Body means the service answered without content.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
	RequestID   string
}

// ClientTransport performs a single request. Implementations must not retry.
type ClientTransport interface {
	Request(ctx context.Context, method, url string, options map[string]any) (*Response, error)
}

// TransportFunc adapts a function to ClientTransport.
type TransportFunc func(ctx context.Context, method, url string, options map[string]any) (*Response, error)

func (f TransportFunc) Request(ctx context.Context, method, url string, options map[string]any) (*Response, error) {
	return f(ctx, method, url, options)
}

// StatusError reports a non-2xx answer.
type StatusError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %s", e.Status)
}
