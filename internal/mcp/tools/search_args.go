package tools

import (
	"encoding/json"
	"strings"

	errors "github.com/Laisky/errors/v2"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Laisky/websearch-mcp/library/search"
)

const (
	defaultMaxResults = 3
	// maxResultsLimit is exclusive: max_results must stay below it.
	maxResultsLimit = 20
	defaultDays     = 7
	daysLimit       = 365
)

// searchArgs holds the validated, normalized parameters of one search call.
type searchArgs struct {
	Query          string
	MaxResults     int
	Depth          search.Depth
	IncludeDomains []string
	ExcludeDomains []string
	Days           int
}

// parseSearchArgs validates tool arguments at the boundary, before any
// outbound call. Every violation is an invalid-params failure.
func parseSearchArgs(req mcp.CallToolRequest) (searchArgs, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return searchArgs{}, errors.WithStack(err)
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return searchArgs{}, errors.New("query cannot be empty")
	}

	args := searchArgs{
		Query:      query,
		MaxResults: defaultMaxResults,
		Depth:      search.DepthBasic,
		Days:       defaultDays,
	}

	raw, _ := req.Params.Arguments.(map[string]any)

	if value, ok := raw["max_results"]; ok {
		n, err := intArg(value)
		if err != nil {
			return searchArgs{}, errors.Wrap(err, "max_results")
		}
		if n < 1 || n >= maxResultsLimit {
			return searchArgs{}, errors.Errorf("max_results must be between 1 and %d, got %d", maxResultsLimit-1, n)
		}
		args.MaxResults = n
	}

	if value, ok := raw["search_depth"]; ok {
		depth, _ := value.(string)
		switch search.Depth(depth) {
		case search.DepthBasic, search.DepthAdvanced:
			args.Depth = search.Depth(depth)
		default:
			return searchArgs{}, errors.Errorf("search_depth must be %q or %q, got %q",
				search.DepthBasic, search.DepthAdvanced, depth)
		}
	}

	if value, ok := raw["days"]; ok {
		n, err := intArg(value)
		if err != nil {
			return searchArgs{}, errors.Wrap(err, "days")
		}
		if n < 1 || n > daysLimit {
			return searchArgs{}, errors.Errorf("days must be between 1 and %d, got %d", daysLimit, n)
		}
		args.Days = n
	}

	args.IncludeDomains = normalizeDomainList(raw["include_domains"])
	args.ExcludeDomains = normalizeDomainList(raw["exclude_domains"])

	return args, nil
}

// normalizeDomainList coerces a domain filter argument into a clean string
// slice. The calling protocol may marshal parameters through plain-text
// transport where structured types degrade to strings depending on the
// client, so three shapes are accepted, tried in order:
//
//  1. absent / a structured sequence → trimmed non-empty entries, order kept;
//  2. a string parsing as a JSON array → same treatment;
//  3. a string containing commas → comma-split, else one literal domain.
func normalizeDomainList(value any) []string {
	switch v := value.(type) {
	case nil:
		return []string{}
	case []string:
		return trimDomains(v)
	case []any:
		domains := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				domains = append(domains, s)
			}
		}
		return trimDomains(domains)
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return []string{}
		}

		var parsed any
		if err := json.Unmarshal([]byte(v), &parsed); err == nil {
			switch p := parsed.(type) {
			case []any:
				return normalizeDomainList(p)
			case string:
				return trimDomains([]string{p})
			}
			// JSON but not a list or string; fall through to the text forms
		}

		if strings.Contains(v, ",") {
			return trimDomains(strings.Split(v, ","))
		}
		return []string{v}
	default:
		return []string{}
	}
}

func trimDomains(domains []string) []string {
	cleaned := make([]string, 0, len(domains))
	for _, domain := range domains {
		if trimmed := strings.TrimSpace(domain); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}

// intArg coerces a JSON-decoded argument into an int.
func intArg(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, errors.Wrapf(err, "parse %q", v.String())
		}
		return int(n), nil
	default:
		return 0, errors.Errorf("expected a number, got %T", value)
	}
}
