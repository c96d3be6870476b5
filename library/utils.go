// Package library contains helper functions
package library

import "strings"

// StripBearerPrefix removes any leading "Bearer " scheme markers from an
// authorization header value and returns the trimmed token.
func StripBearerPrefix(header string) string {
	value := strings.TrimSpace(header)
	for {
		if len(value) < 7 || !strings.EqualFold(value[:7], "bearer ") {
			break
		}
		value = strings.TrimSpace(value[7:])
	}

	return value
}
