// Package request assembles Toolhub API requests without performing I/O.
package request

import (
	"errors"
	"fmt"
	"maps"
	"net/url"
	"strconv"
	"strings"

	"github.com/toolhub-scripting/go-toolhub/src/query"
)

const (
	MethodGet    = "GET"
	MethodPost   = "POST"
	MethodPut    = "PUT"
	MethodPatch  = "PATCH"
	MethodDelete = "DELETE"
	MethodHead   = "HEAD"
)

const (
	// DefaultPageSize is the page size used when a caller does not pick one.
	DefaultPageSize = 25
	// SearchOrdering asks the search endpoint for descending relevance.
	SearchOrdering = "-score"
)

// ErrInvalidPage is returned when a page or page size is below 1.
var ErrInvalidPage = errors.New("page and page size must be at least 1")

// Options is passed through to the transport untouched.
type Options map[string]any

// Descriptor is a fully built request. The transport consumes it once.
type Descriptor struct {
	Method  string
	URL     string
	Options Options
}

func (d Descriptor) String() string {
	return d.Method + " " + d.URL
}

// Builder creates descriptors for the Toolhub REST API rooted at a base URL.
type Builder struct {
	baseURL string
	options Options
}

// NewBuilder returns a Builder for baseURL. opts are copied into every
// descriptor it builds.
func NewBuilder(baseURL string, opts Options) *Builder {
	return &Builder{
		baseURL: strings.TrimRight(baseURL, "/"),
		options: maps.Clone(opts),
	}
}

// BaseURL returns the base URL without a trailing slash.
func (b *Builder) BaseURL() string {
	return b.baseURL
}

// BuildToolLookup describes GET {base}/api/tools/{name}/.
func (b *Builder) BuildToolLookup(name string) Descriptor {
	return b.get("/api/tools/" + url.PathEscape(name) + "/")
}

// BuildListLookup describes GET {base}/api/lists/{id}/.
func (b *Builder) BuildListLookup(id int64) Descriptor {
	return b.get("/api/lists/" + strconv.FormatInt(id, 10) + "/")
}

// BuildSearch describes a full-text tool search ordered by relevance. A nil
// query omits the q parameter.
func (b *Builder) BuildSearch(q *string, page, pageSize int) (Descriptor, error) {
	if page < 1 || pageSize < 1 {
		return Descriptor{}, fmt.Errorf("%w: page=%d page_size=%d", ErrInvalidPage, page, pageSize)
	}
	params := query.Params{
		"q":         q,
		"ordering":  SearchOrdering,
		"page":      page,
		"page_size": pageSize,
	}
	encoded, err := params.Encode()
	if err != nil {
		return Descriptor{}, err
	}
	return b.get("/api/search/tools/?" + encoded), nil
}

func (b *Builder) get(path string) Descriptor {
	opts := maps.Clone(b.options)
	if opts == nil {
		opts = Options{}
	}
	return Descriptor{
		Method:  MethodGet,
		URL:     b.baseURL + path,
		Options: opts,
	}
}
