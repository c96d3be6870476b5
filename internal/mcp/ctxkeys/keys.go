package ctxkeys

// Key identifies a context value propagated across MCP services.
type Key string

const (
	// Logger stores the per-request logger within tool contexts.
	Logger Key = "mcp_logger"
	// Origin stores the inbound Origin header value.
	Origin Key = "mcp_origin"
	// Authorization stores the raw Authorization header value.
	Authorization Key = "mcp_authorization"
	// ProviderKey stores the caller-supplied search provider credential.
	ProviderKey Key = "mcp_provider_key"
)
