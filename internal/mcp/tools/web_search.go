package tools

import (
	"context"
	"fmt"
	"time"

	errors "github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	mcp "github.com/mark3labs/mcp-go/mcp"

	"github.com/Laisky/websearch-mcp/library/search"
	"github.com/Laisky/websearch-mcp/library/search/tavily"
)

// SearchProvider abstracts the outbound search capability. The credential is
// supplied per call and never stored.
type SearchProvider interface {
	Search(ctx context.Context, apiKey string, query search.Query) ([]search.ResultItem, error)
}

// WebSearchTool implements the general_search and news_search MCP tools; the
// two differ only in topic and the news-only recency window.
type WebSearchTool struct {
	name           string
	topic          search.Topic
	description    string
	searchProvider SearchProvider
	credential     CredentialProvider
	logger         logSDK.Logger
}

// NewGeneralSearchTool constructs the general_search tool.
func NewGeneralSearchTool(provider SearchProvider, credential CredentialProvider, logger logSDK.Logger) (*WebSearchTool, error) {
	return newWebSearchTool(
		"general_search",
		search.TopicGeneral,
		"Performs a general web search via the Tavily API and returns formatted results with URLs and content.",
		provider, credential, logger,
	)
}

// NewNewsSearchTool constructs the news_search tool.
func NewNewsSearchTool(provider SearchProvider, credential CredentialProvider, logger logSDK.Logger) (*WebSearchTool, error) {
	return newWebSearchTool(
		"news_search",
		search.TopicNews,
		"Performs a news search via the Tavily API restricted to a recency window and returns formatted results with URLs and content.",
		provider, credential, logger,
	)
}

func newWebSearchTool(name string, topic search.Topic, description string, provider SearchProvider, credential CredentialProvider, logger logSDK.Logger) (*WebSearchTool, error) {
	if provider == nil {
		return nil, errors.New("search provider is required")
	}
	if credential == nil {
		return nil, errors.New("credential provider is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	return &WebSearchTool{
		name:           name,
		topic:          topic,
		description:    description,
		searchProvider: provider,
		credential:     credential,
		logger:         logger.Named(name),
	}, nil
}

// Definition returns the MCP metadata describing the tool.
func (t *WebSearchTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(t.description),
		mcp.WithString(
			"query",
			mcp.Required(),
			mcp.Description("Plain text search query."),
		),
		mcp.WithNumber(
			"max_results",
			mcp.Description("Maximum number of results to return, between 1 and 19. Defaults to 3."),
		),
		mcp.WithString(
			"search_depth",
			mcp.Description("Depth of search: 'basic' or 'advanced'. Defaults to 'basic'."),
			mcp.Enum("basic", "advanced"),
		),
		mcp.WithArray(
			"include_domains",
			mcp.Description("Domains to restrict results to, e.g. [\"example.com\", \"test.org\"]. A JSON array string, comma-separated list, or single domain is also accepted."),
		),
		mcp.WithArray(
			"exclude_domains",
			mcp.Description("Domains to exclude from results. Same accepted shapes as include_domains."),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	}

	if t.topic == search.TopicNews {
		opts = append(opts, mcp.WithNumber(
			"days",
			mcp.Description("Number of days back to search, between 1 and 365. Defaults to 7."),
		))
	}

	return mcp.NewTool(t.name, opts...)
}

// Handle executes one search invocation: validate parameters, resolve the
// caller's provider credential, run the upstream search, and format the
// result text.
func (t *WebSearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseSearchArgs(req)
	if err != nil {
		return toolErrorResult(ErrCodeInvalidParams, err.Error()), nil
	}

	start := time.Now().UTC()
	t.logger.Debug("search started",
		zap.Int("query_len", len(args.Query)),
		zap.Int("max_results", args.MaxResults),
		zap.String("depth", string(args.Depth)),
	)

	apiKey := t.credential(ctx)
	if apiKey == "" {
		t.logger.Warn("search missing provider credential", zap.Int("query_len", len(args.Query)))
		return toolErrorResult(ErrCodeUnauthorized, "missing search provider credential header"), nil
	}

	query := search.Query{
		Query:          args.Query,
		Topic:          t.topic,
		Depth:          args.Depth,
		MaxResults:     args.MaxResults,
		IncludeDomains: args.IncludeDomains,
		ExcludeDomains: args.ExcludeDomains,
		Days:           args.Days,
	}

	items, err := t.searchProvider.Search(ctx, apiKey, query)
	if err != nil {
		if errors.Is(err, tavily.ErrInvalidAPIKey) || errors.Is(err, tavily.ErrUsageLimitExceeded) {
			t.logger.Warn("search rejected by provider", zap.Error(err))
			return toolErrorResult(ErrCodeInternalError, err.Error()), nil
		}

		t.logger.Error("search failed", zap.Error(err), zap.Int("query_len", len(args.Query)))
		return toolErrorResult(ErrCodeInternalError, fmt.Sprintf("search failed: %v", err)), nil
	}

	t.logger.Debug("search completed",
		zap.Int("query_len", len(args.Query)),
		zap.Int("results_count", len(items)),
		zap.Duration("duration", time.Since(start)),
	)

	return mcp.NewToolResultText(search.FormatResults(items)), nil
}

// Name returns the registered tool name.
func (t *WebSearchTool) Name() string {
	return t.name
}
