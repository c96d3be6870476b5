package auth

import (
	"net/http"
	"testing"

	errors "github.com/Laisky/errors/v2"
	"github.com/stretchr/testify/require"
)

func TestOriginValidator(t *testing.T) {
	validator := NewOriginValidator([]string{
		"https://trusted.example/mcp",
		"http://localhost:8001/mcp",
		"",
	})

	require.NoError(t, validator.Validate("https://trusted.example/mcp"))
	require.NoError(t, validator.Validate("http://localhost:8001/mcp"))

	err := validator.Validate("")
	require.True(t, errors.Is(err, ErrMissingOrigin))

	// exact string equality only, no prefix matching
	err = validator.Validate("https://trusted.example")
	require.True(t, errors.Is(err, ErrUntrustedOrigin))

	err = validator.Validate("https://trusted.example/mcp/extra")
	require.True(t, errors.Is(err, ErrUntrustedOrigin))

	err = validator.Validate("https://evil.example/mcp")
	require.True(t, errors.Is(err, ErrUntrustedOrigin))
}

func TestExtractProviderKey(t *testing.T) {
	headers := http.Header{}
	headers.Set("Tavily-API-Key", "  tvly-abc123  ")

	key, err := ExtractProviderKey(headers, "")
	require.NoError(t, err)
	require.Equal(t, "tvly-abc123", key)

	key, err = ExtractProviderKey(headers, "Tavily-API-Key")
	require.NoError(t, err)
	require.Equal(t, "tvly-abc123", key)

	_, err = ExtractProviderKey(http.Header{}, "Tavily-API-Key")
	require.True(t, errors.Is(err, ErrMissingProviderKey))
}
