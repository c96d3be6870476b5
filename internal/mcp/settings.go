// Package mcp provides the remote MCP server exposing the search tools.
package mcp

import (
	gconfig "github.com/Laisky/go-config/v2"

	"github.com/Laisky/websearch-mcp/internal/mcp/auth"
)

// Settings captures runtime configuration for the MCP server.
type Settings struct {
	// TrustedOrigins is the static allow-list applied to every tool call.
	TrustedOrigins []string
	// ProviderKeyHeader names the header carrying the caller's search
	// provider credential.
	ProviderKeyHeader string
	// BearerAuthEnabled switches on signed bearer-token verification against
	// the key registry (the advanced auth variant).
	BearerAuthEnabled bool
	// Per-tool enablement. All tools default to enabled.
	GeneralSearchEnabled bool
	NewsSearchEnabled    bool
}

// LoadSettingsFromConfig reads the MCP configuration, applying defaults for
// anything not explicitly set.
func LoadSettingsFromConfig() Settings {
	trustedOrigins := gconfig.Shared.GetStringSlice("settings.mcp.trusted_origins")
	if len(trustedOrigins) == 0 {
		trustedOrigins = []string{
			"https://websearch-mcp.onrender.com/mcp",
			"http://localhost:8001/mcp",
		}
	}

	providerKeyHeader := gconfig.Shared.GetString("settings.mcp.provider_key_header")
	if providerKeyHeader == "" {
		providerKeyHeader = auth.DefaultProviderKeyHeader
	}

	return Settings{
		TrustedOrigins:       trustedOrigins,
		ProviderKeyHeader:    providerKeyHeader,
		BearerAuthEnabled:    boolFromConfig("settings.mcp.auth.bearer.enabled", false),
		GeneralSearchEnabled: boolFromConfig("settings.mcp.tools.general_search.enabled", true),
		NewsSearchEnabled:    boolFromConfig("settings.mcp.tools.news_search.enabled", true),
	}
}

// boolFromConfig retrieves a boolean configuration value with a default fallback.
func boolFromConfig(key string, def bool) bool {
	value := gconfig.Shared.Get(key)
	switch v := value.(type) {
	case nil:
		return def
	case bool:
		return v
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case string:
		switch v {
		case "true", "True", "TRUE", "1", "yes", "Yes", "YES":
			return true
		case "false", "False", "FALSE", "0", "no", "No", "NO":
			return false
		default:
			return def
		}
	default:
		return def
	}
}
