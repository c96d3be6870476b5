package search

import (
	"fmt"
	"strings"
)

// FormatResults renders provider results as the plain-text block returned to
// MCP clients. Entries missing either URL or content are skipped, not
// reported as errors.
func FormatResults(items []ResultItem) string {
	var sb strings.Builder
	index := 1
	for _, item := range items {
		if item.URL == "" || item.Content == "" {
			continue
		}

		fmt.Fprintf(&sb, "----------------- Result: %d -----------------\n", index)
		fmt.Fprintf(&sb, "Search URL: %s\nSearch Content: %s\n\n", item.URL, item.Content)
		index++
	}

	return sb.String()
}
