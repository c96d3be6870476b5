// Package search contains provider-neutral types shared by search engines.
package search

// Topic selects the search category supported by the provider.
type Topic string

const (
	TopicGeneral Topic = "general"
	TopicNews    Topic = "news"
)

// Depth selects how thorough the provider's lookup should be. Advanced
// searches trade latency and cost for completeness.
type Depth string

const (
	DepthBasic    Depth = "basic"
	DepthAdvanced Depth = "advanced"
)

// Query aggregates all parameters forwarded to the search provider.
type Query struct {
	Query          string
	Topic          Topic
	Depth          Depth
	MaxResults     int
	IncludeDomains []string
	ExcludeDomains []string
	// Days restricts results to a recency window. Only honored for news.
	Days int
}

// ResultItem captures a single entry returned by a search provider.
type ResultItem struct {
	URL     string  `json:"url"`
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Score   float64 `json:"score,omitempty"`
}
