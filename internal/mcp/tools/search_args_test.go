package tools

import (
	"testing"

	"github.com/stretchr/testify/require"
	mcp "github.com/mark3labs/mcp-go/mcp"

	"github.com/Laisky/websearch-mcp/library/search"
)

func callRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: args},
	}
}

func TestNormalizeDomainList(t *testing.T) {
	cases := map[string]struct {
		input    any
		expected []string
	}{
		"absent":            {input: nil, expected: []string{}},
		"structured list":   {input: []any{"A.com", " b.org "}, expected: []string{"A.com", "b.org"}},
		"string slice":      {input: []string{"a.com", "", "  "}, expected: []string{"a.com"}},
		"json array text":   {input: `["a.com"]`, expected: []string{"a.com"}},
		"json multi text":   {input: `["a.com", " b.org "]`, expected: []string{"a.com", "b.org"}},
		"json scalar text":  {input: `"a.com"`, expected: []string{"a.com"}},
		"comma separated":   {input: "a.com,b.org", expected: []string{"a.com", "b.org"}},
		"comma with spaces": {input: "a.com, b.org , ", expected: []string{"a.com", "b.org"}},
		"single literal":    {input: "a.com", expected: []string{"a.com"}},
		"empty string":      {input: "   ", expected: []string{}},
		"unexpected type":   {input: 42, expected: []string{}},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tc.expected, normalizeDomainList(tc.input))
		})
	}
}

func TestParseSearchArgsDefaults(t *testing.T) {
	args, err := parseSearchArgs(callRequest(map[string]any{"query": "golang"}))
	require.NoError(t, err)
	require.Equal(t, "golang", args.Query)
	require.Equal(t, defaultMaxResults, args.MaxResults)
	require.Equal(t, search.DepthBasic, args.Depth)
	require.Equal(t, defaultDays, args.Days)
	require.Empty(t, args.IncludeDomains)
	require.Empty(t, args.ExcludeDomains)
}

func TestParseSearchArgsFull(t *testing.T) {
	args, err := parseSearchArgs(callRequest(map[string]any{
		"query":           "  golang  ",
		"max_results":     float64(19),
		"search_depth":    "advanced",
		"days":            float64(365),
		"include_domains": []any{"go.dev"},
		"exclude_domains": "spam.example,junk.example",
	}))
	require.NoError(t, err)
	require.Equal(t, "golang", args.Query)
	require.Equal(t, 19, args.MaxResults)
	require.Equal(t, search.DepthAdvanced, args.Depth)
	require.Equal(t, 365, args.Days)
	require.Equal(t, []string{"go.dev"}, args.IncludeDomains)
	require.Equal(t, []string{"spam.example", "junk.example"}, args.ExcludeDomains)
}

func TestParseSearchArgsRejectsMissingQuery(t *testing.T) {
	_, err := parseSearchArgs(callRequest(map[string]any{}))
	require.Error(t, err)

	_, err = parseSearchArgs(callRequest(map[string]any{"query": "   "}))
	require.Error(t, err)
}

func TestParseSearchArgsRejectsMaxResultsOutOfRange(t *testing.T) {
	// 25 exceeds the exclusive upper bound of 20
	_, err := parseSearchArgs(callRequest(map[string]any{
		"query":       "golang",
		"max_results": float64(25),
	}))
	require.Error(t, err)
	require.Contains(t, err.Error(), "max_results")

	_, err = parseSearchArgs(callRequest(map[string]any{
		"query":       "golang",
		"max_results": float64(20),
	}))
	require.Error(t, err)

	_, err = parseSearchArgs(callRequest(map[string]any{
		"query":       "golang",
		"max_results": float64(0),
	}))
	require.Error(t, err)
}

func TestParseSearchArgsRejectsBadDepth(t *testing.T) {
	_, err := parseSearchArgs(callRequest(map[string]any{
		"query":        "golang",
		"search_depth": "exhaustive",
	}))
	require.Error(t, err)
	require.Contains(t, err.Error(), "search_depth")
}

func TestParseSearchArgsRejectsDaysOutOfRange(t *testing.T) {
	for _, days := range []float64{0, 366, -1} {
		_, err := parseSearchArgs(callRequest(map[string]any{
			"query": "golang",
			"days":  days,
		}))
		require.Error(t, err, "days=%v", days)
	}
}
