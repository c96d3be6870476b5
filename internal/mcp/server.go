package mcp

import (
	"context"
	"net/http"
	"strings"
	"time"

	errors "github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	mcp "github.com/mark3labs/mcp-go/mcp"
	srv "github.com/mark3labs/mcp-go/server"

	"github.com/Laisky/websearch-mcp/internal/mcp/auth"
	"github.com/Laisky/websearch-mcp/internal/mcp/calllog"
	"github.com/Laisky/websearch-mcp/internal/mcp/ctxkeys"
	"github.com/Laisky/websearch-mcp/internal/mcp/tools"
)

const serverVersion = "1.0.0"

// CallRecorder persists audit records for tool invocations.
type CallRecorder interface {
	Record(ctx context.Context, input calllog.RecordInput) error
}

// Server wraps the MCP server state for the HTTP transport. All dependencies
// are injected by the composition root; the server holds no global state.
type Server struct {
	handler    http.Handler
	logger     logSDK.Logger
	callLogger CallRecorder
}

// NewServer constructs the remote MCP server exposing the search tools under
// a single HTTP handler. The origin validator runs on every request; bearer
// verification is added when a verifier is supplied. callLogger may be nil
// to disable invocation auditing.
func NewServer(
	settings Settings,
	provider tools.SearchProvider,
	verifier *auth.Verifier,
	callLogger CallRecorder,
	logger logSDK.Logger,
) (*Server, error) {
	if provider == nil {
		return nil, errors.New("search provider is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	s := &Server{
		logger:     logger.Named("mcp"),
		callLogger: callLogger,
	}

	mcpServer := srv.NewMCPServer(
		"websearch-mcp",
		serverVersion,
		srv.WithToolCapabilities(true),
		srv.WithInstructions("Use the general_search and news_search tools to run Tavily-powered web searches."),
		srv.WithRecovery(),
		srv.WithHooks(newMCPHooks(s.logger.Named("hooks"))),
	)

	credential := credentialFromContext

	if settings.GeneralSearchEnabled {
		tool, err := tools.NewGeneralSearchTool(provider, credential, s.logger)
		if err != nil {
			return nil, errors.Wrap(err, "build general_search tool")
		}
		mcpServer.AddTool(tool.Definition(), s.wrapTool(tool))
	}

	if settings.NewsSearchEnabled {
		tool, err := tools.NewNewsSearchTool(provider, credential, s.logger)
		if err != nil {
			return nil, errors.Wrap(err, "build news_search tool")
		}
		mcpServer.AddTool(tool.Definition(), s.wrapTool(tool))
	}

	providerKeyHeader := settings.ProviderKeyHeader
	if providerKeyHeader == "" {
		providerKeyHeader = auth.DefaultProviderKeyHeader
	}

	streamable := srv.NewStreamableHTTPServer(
		mcpServer,
		srv.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			ctx = context.WithValue(ctx, ctxkeys.Origin, r.Header.Get("Origin"))
			ctx = context.WithValue(ctx, ctxkeys.Authorization, r.Header.Get("Authorization"))
			if key, err := auth.ExtractProviderKey(r.Header, providerKeyHeader); err == nil {
				ctx = context.WithValue(ctx, ctxkeys.ProviderKey, key)
			}
			return ctx
		}),
	)

	handler := http.Handler(streamable)
	if verifier != nil {
		handler = auth.WithBearerVerification(handler, verifier, s.logger)
	}
	handler = auth.WithOriginValidation(handler, auth.NewOriginValidator(settings.TrustedOrigins), s.logger)

	s.handler = handler
	return s, nil
}

// Handler returns the HTTP handler that should be mounted to serve MCP traffic.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// credentialFromContext retrieves the caller's provider credential stored by
// the HTTP context func.
func credentialFromContext(ctx context.Context) string {
	key, _ := ctx.Value(ctxkeys.ProviderKey).(string)
	return key
}

// wrapTool adapts a tool into the server handler signature, auditing every
// invocation via the call logger when one is configured.
func (s *Server) wrapTool(tool tools.Tool) srv.ToolHandlerFunc {
	name := tool.Definition().Name

	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now().UTC()
		result, err := tool.Handle(ctx, req)
		s.recordToolInvocation(ctx, name, argumentsMap(req.Params.Arguments), start, time.Since(start), result, err)
		if err != nil {
			return result, errors.WithStack(err)
		}
		return result, nil
	}
}

func (s *Server) recordToolInvocation(ctx context.Context, toolName string, args map[string]any, startedAt time.Time, duration time.Duration, result *mcp.CallToolResult, invokeErr error) {
	if s.callLogger == nil {
		return
	}

	status := calllog.StatusSuccess
	errorMessage := ""
	if invokeErr != nil {
		status = calllog.StatusError
		errorMessage = invokeErr.Error()
	}
	if result != nil && result.IsError {
		status = calllog.StatusError
		if msg := toolErrorMessage(result); msg != "" && errorMessage == "" {
			errorMessage = msg
		}
	}

	input := calllog.RecordInput{
		ToolName:     toolName,
		ProviderKey:  credentialFromContext(ctx),
		Status:       status,
		Duration:     duration,
		Parameters:   args,
		ErrorMessage: errorMessage,
		OccurredAt:   startedAt,
	}

	if err := s.callLogger.Record(ctx, input); err != nil {
		s.logger.Warn("record call log", zap.Error(err), zap.String("tool", toolName))
	}
}

func argumentsMap(raw any) map[string]any {
	switch value := raw.(type) {
	case nil:
		return nil
	case map[string]any:
		return value
	case map[string]string:
		result := make(map[string]any, len(value))
		for key, item := range value {
			result[key] = item
		}
		return result
	default:
		return map[string]any{"value": value}
	}
}

func toolErrorMessage(result *mcp.CallToolResult) string {
	if result == nil || !result.IsError {
		return ""
	}
	for _, content := range result.Content {
		if textContent, ok := mcp.AsTextContent(content); ok {
			if txt := strings.TrimSpace(textContent.Text); txt != "" {
				return txt
			}
		}
	}
	return ""
}

func newMCPHooks(logger logSDK.Logger) *srv.Hooks {
	if logger == nil {
		return nil
	}

	hooks := &srv.Hooks{}

	hooks.AddBeforeAny(func(ctx context.Context, id any, method mcp.MCPMethod, message any) {
		logger.Debug("mcp request received", hookLogFields(ctx, id, method)...)
	})

	hooks.AddOnSuccess(func(ctx context.Context, id any, method mcp.MCPMethod, message any, result any) {
		logger.Info("mcp request succeeded", hookLogFields(ctx, id, method)...)
	})

	hooks.AddOnError(func(ctx context.Context, id any, method mcp.MCPMethod, message any, err error) {
		fields := append(hookLogFields(ctx, id, method), zap.Error(err))
		logger.Error("mcp request failed", fields...)
	})

	hooks.AddOnRegisterSession(func(ctx context.Context, session srv.ClientSession) {
		logger.Info("mcp session registered", zap.String("session_id", session.SessionID()))
	})

	hooks.AddOnUnregisterSession(func(ctx context.Context, session srv.ClientSession) {
		logger.Info("mcp session unregistered", zap.String("session_id", session.SessionID()))
	})

	return hooks
}

func hookLogFields(ctx context.Context, id any, method mcp.MCPMethod) []zap.Field {
	fields := []zap.Field{
		zap.Any("request_id", id),
		zap.String("method", string(method)),
	}

	if session := srv.ClientSessionFromContext(ctx); session != nil {
		fields = append(fields, zap.String("session_id", session.SessionID()))
	}

	return fields
}
