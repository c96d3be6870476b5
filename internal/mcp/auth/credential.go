package auth

import (
	"net/http"
	"strings"

	errors "github.com/Laisky/errors/v2"
)

// DefaultProviderKeyHeader names the header carrying the caller's search
// provider credential unless overridden in configuration.
const DefaultProviderKeyHeader = "Tavily-API-Key"

// ErrMissingProviderKey indicates the provider credential header was absent.
var ErrMissingProviderKey = errors.New("provider credential header required")

// ExtractProviderKey pulls the caller-supplied search provider credential out
// of the request headers. The value is trimmed but never validated locally;
// an invalid credential only surfaces when the downstream search call fails.
func ExtractProviderKey(headers http.Header, headerName string) (string, error) {
	if headerName == "" {
		headerName = DefaultProviderKeyHeader
	}

	value := strings.TrimSpace(headers.Get(headerName))
	if value == "" {
		return "", errors.Wrapf(ErrMissingProviderKey, "header %q", headerName)
	}

	return value, nil
}
