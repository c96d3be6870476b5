// Package tavily implements a client for the Tavily search API.
package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	errors "github.com/Laisky/errors/v2"

	"github.com/Laisky/websearch-mcp/library/search"
)

// DefaultEndpoint is the production Tavily search endpoint.
const DefaultEndpoint = "https://api.tavily.com/search"

var (
	// ErrInvalidAPIKey indicates the caller-supplied credential was rejected
	// by the provider.
	ErrInvalidAPIKey = errors.New("tavily: invalid api key")
	// ErrUsageLimitExceeded indicates the credential's usage quota is exhausted.
	ErrUsageLimitExceeded = errors.New("tavily: usage limit exceeded")
)

// SearchEngine issues search requests against the Tavily HTTP API. The API
// key is supplied per request, never stored on the engine.
type SearchEngine struct {
	endpoint   string
	httpClient *http.Client
}

// Option customizes a SearchEngine.
type Option func(*SearchEngine)

// WithEndpoint overrides the API endpoint, mainly for tests.
func WithEndpoint(endpoint string) Option {
	return func(se *SearchEngine) {
		se.endpoint = endpoint
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(se *SearchEngine) {
		se.httpClient = client
	}
}

// NewSearchEngine is a constructor for SearchEngine.
func NewSearchEngine(opts ...Option) *SearchEngine {
	se := &SearchEngine{
		endpoint:   DefaultEndpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(se)
	}

	return se
}

// searchRequest is the JSON body accepted by the Tavily search endpoint.
type searchRequest struct {
	Query             string   `json:"query"`
	Topic             string   `json:"topic,omitempty"`
	SearchDepth       string   `json:"search_depth,omitempty"`
	MaxResults        int      `json:"max_results,omitempty"`
	IncludeDomains    []string `json:"include_domains,omitempty"`
	ExcludeDomains    []string `json:"exclude_domains,omitempty"`
	Days              int      `json:"days,omitempty"`
	IncludeAnswer     bool     `json:"include_answer"`
	IncludeRawContent bool     `json:"include_raw_content"`
}

// searchResponse is the JSON document returned by the Tavily search endpoint.
type searchResponse struct {
	Query   string  `json:"query"`
	Answer  string  `json:"answer"`
	Results []struct {
		Title         string  `json:"title"`
		URL           string  `json:"url"`
		Content       string  `json:"content"`
		Score         float64 `json:"score"`
		PublishedDate string  `json:"published_date"`
	} `json:"results"`
}

type errorResponse struct {
	Detail struct {
		Error string `json:"error"`
	} `json:"detail"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Search executes a single provider lookup with the caller's credential.
//
// The provider's own failure modes are normalized: credential rejections
// unwrap to ErrInvalidAPIKey and quota exhaustion to ErrUsageLimitExceeded,
// both carrying the upstream message. No retries are attempted.
func (se *SearchEngine) Search(ctx context.Context, apiKey string, query search.Query) ([]search.ResultItem, error) {
	payload := searchRequest{
		Query:          query.Query,
		Topic:          string(query.Topic),
		SearchDepth:    string(query.Depth),
		MaxResults:     query.MaxResults,
		IncludeDomains: query.IncludeDomains,
		ExcludeDomains: query.ExcludeDomains,
		IncludeAnswer:  true,
	}
	if query.Topic == search.TopicNews {
		payload.Days = query.Days
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "marshal search request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, se.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrapf(err, "create request to `%s`", se.endpoint)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := se.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "send search request")
	}
	defer resp.Body.Close() // nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read search response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, respBody)
	}

	var decoded searchResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, errors.Wrap(err, "decode search response")
	}

	items := make([]search.ResultItem, 0, len(decoded.Results))
	for _, result := range decoded.Results {
		items = append(items, search.ResultItem{
			URL:     result.URL,
			Title:   result.Title,
			Content: result.Content,
			Score:   result.Score,
		})
	}

	return items, nil
}

// apiError maps provider HTTP failures to sentinel errors where the status is
// meaningful, otherwise wraps the raw body.
func apiError(status int, body []byte) error {
	msg := upstreamMessage(body)

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		if msg == "" {
			return errors.WithStack(ErrInvalidAPIKey)
		}
		return errors.Wrap(ErrInvalidAPIKey, msg)
	case http.StatusTooManyRequests, 432:
		// Tavily signals plan quota exhaustion with 432.
		if msg == "" {
			return errors.WithStack(ErrUsageLimitExceeded)
		}
		return errors.Wrap(ErrUsageLimitExceeded, msg)
	default:
		if msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		return errors.Errorf("tavily returned status %d: %s", status, msg)
	}
}

func upstreamMessage(body []byte) string {
	var decoded errorResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return ""
	}

	for _, candidate := range []string{decoded.Detail.Error, decoded.Error, decoded.Message} {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return trimmed
		}
	}

	return ""
}
