package omdb

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/s0up4200/omdbq/credentials"
)

// Mode selects how the service interprets the query value
type Mode string

const (
	// ModeID looks up one entity by IMDb identifier
	ModeID Mode = "id"
	// ModeTitle looks up one entity by title
	ModeTitle Mode = "title"
	// ModeSearch runs a paginated search
	ModeSearch Mode = "search"
)

// Wire-level parameter keys
const (
	keyID     = "i"
	keyTitle  = "t"
	keySearch = "s"
	keyPage   = "page"
	keyFormat = "r"
	keyAPIKey = "apikey"
)

// internalKeys are managed by the builder and cannot be set through filters
var internalKeys = []string{keyID, keyTitle, keySearch, keyPage, keyFormat, keyAPIKey}

// defaultValues let the tool be exercised without arguments
var defaultValues = map[Mode]string{
	ModeID:     "tt0078346",
	ModeTitle:  "Superman",
	ModeSearch: "Batman",
}

// ParseMode converts a user-supplied string to a Mode
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", &InvalidModeError{Mode: s}
	}
	return m, nil
}

// Valid checks if the mode is one of the supported values
func (m Mode) Valid() bool {
	return m == ModeID || m == ModeTitle || m == ModeSearch
}

// key returns the wire-level parameter carrying the query value
func (m Mode) key() string {
	switch m {
	case ModeID:
		return keyID
	case ModeTitle:
		return keyTitle
	default:
		return keySearch
	}
}

// DefaultValue returns the demonstration value used when a query has none
func (m Mode) DefaultValue() string {
	return defaultValues[m]
}

// Query is one intended lookup. Page is only used in search mode; zero means
// no page was pinned. Filters are passed to the service unchecked.
type Query struct {
	Mode    Mode
	Value   string
	Page    int
	Filters map[string]string
}

// PageExplicit reports whether the caller pinned a search page
func (q Query) PageExplicit() bool {
	return q.Mode == ModeSearch && q.Page > 0
}

// Params is the flattened request, credential included
type Params map[string]string

// Mode returns the lookup mode encoded in the parameters
func (p Params) Mode() Mode {
	switch {
	case p[keyID] != "":
		return ModeID
	case p[keyTitle] != "":
		return ModeTitle
	case p[keySearch] != "":
		return ModeSearch
	}
	return ""
}

// Page returns the requested page, or 0 when none is set
func (p Params) Page() int {
	n, _ := strconv.Atoi(p[keyPage])
	return n
}

// WithPage returns a copy of the parameters requesting another page
func (p Params) WithPage(page int) Params {
	out := maps.Clone(p)
	out[keyPage] = strconv.Itoa(page)
	return out
}

// Encode renders the parameters as a URL query string
func (p Params) Encode() string {
	values := make(url.Values, len(p))
	for k, v := range p {
		values.Set(k, v)
	}
	return values.Encode()
}

// Redacted renders the parameters for display without the credential
func (p Params) Redacted() string {
	keys := slices.Sorted(maps.Keys(p))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == keyAPIKey {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%s", k, p[k]))
	}
	return strings.Join(parts, " ")
}

// BuilderOption configures a Builder
type BuilderOption func(*Builder)

// WithVerbose logs every assembled request, minus the credential
func WithVerbose(verbose bool) BuilderOption {
	return func(b *Builder) {
		b.verbose = verbose
	}
}

// Builder turns a Query into request parameters
type Builder struct {
	creds   credentials.Provider
	logger  zerolog.Logger
	verbose bool
}

// NewBuilder creates a new Builder
func NewBuilder(creds credentials.Provider, logger zerolog.Logger, opts ...BuilderOption) *Builder {
	b := &Builder{
		creds:  creds,
		logger: logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build assembles the request parameters for q
func (b *Builder) Build(ctx context.Context, q Query) (Params, error) {
	if !q.Mode.Valid() {
		return nil, &InvalidModeError{Mode: string(q.Mode)}
	}

	params := make(Params, len(q.Filters)+4)
	for k, v := range q.Filters {
		if slices.Contains(internalKeys, k) {
			b.logger.Debug().Str("filter", k).Msg("Dropping filter that collides with an internal parameter")
			continue
		}
		params[k] = v
	}

	value := strings.TrimSpace(q.Value)
	if value == "" {
		value = q.Mode.DefaultValue()
	}
	params[q.Mode.key()] = value
	params[keyFormat] = "json"

	if q.Mode == ModeSearch {
		page := q.Page
		if page <= 0 {
			page = 1
		}
		params[keyPage] = strconv.Itoa(page)
	}

	if b.verbose {
		b.logger.Info().Str("mode", string(q.Mode)).Str("params", params.Redacted()).Msg("Request parameters")
	}

	if b.creds == nil {
		return nil, ErrMissingCredential
	}
	key, err := b.creds.APIKey(ctx)
	if err != nil {
		if errors.Is(err, credentials.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrMissingCredential, err)
		}
		return nil, err
	}
	params[keyAPIKey] = key

	return params, nil
}
