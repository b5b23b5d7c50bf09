package omdb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"github.com/segmentio/encoding/json"
)

const (
	// notAvailable is how the service spells an absent value
	notAvailable = "N/A"

	// maxBodySize bounds how much of a response body is read
	maxBodySize = 8 << 20
)

// Client performs single requests against the OMDb endpoint
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	logger     zerolog.Logger
	maxBody    int64
}

// NewClient creates a new OMDb client
func NewClient(logger zerolog.Logger, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{},
		logger:     logger,
		maxBody:    maxBodySize,
	}
	for _, opt := range opts {
		opt(c)
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid omdb URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid omdb URL %q: scheme must be http or https", c.baseURL)
	}
	c.baseURL = u.String()

	return c, nil
}

// Send issues one GET with params as the query string and returns the decoded,
// missing-normalized body. A non-2xx status yields *TransportError and a payload
// reporting failure yields *RemoteRejectionError.
func (c *Client) Send(ctx context.Context, params Params) (RawResponse, error) {
	requestURL := c.baseURL
	if strings.Contains(requestURL, "?") {
		requestURL += "&" + params.Encode()
	} else {
		requestURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	c.logger.Debug().
		Str("mode", string(params.Mode())).
		Int("page", params.Page()).
		Msg("Making OMDb API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrUnexpectedPayload, c.maxBody)
	}

	var raw RawResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: empty body", ErrUnexpectedPayload)
	}

	normalizeMissing(raw)

	if !strings.EqualFold(raw.String("Response"), "True") {
		msg := raw.String("Error")
		if msg == "" {
			msg = "omdb reported failure without a message"
		}
		return nil, &RemoteRejectionError{Message: msg}
	}

	return raw, nil
}

// normalizeMissing replaces every top-level value that carries no information
// with the missing marker.
func normalizeMissing(raw RawResponse) {
	for k, v := range raw {
		if isEmptyValue(v) {
			raw[k] = nil
		}
	}
}

func isEmptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		s := strings.TrimSpace(val)
		return s == "" || s == notAvailable
	case []any:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	}
	return false
}
