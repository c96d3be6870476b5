package auth

import (
	"encoding/json"
	"net/http"

	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"

	"github.com/Laisky/websearch-mcp/library"
)

// WithOriginValidation rejects requests whose Origin header is absent or not
// in the allow-list before they reach the MCP handler. With the streamable
// HTTP transport every tool invocation is one HTTP request, so this runs once
// per invocation.
func WithOriginValidation(next http.Handler, validator *OriginValidator, logger logSDK.Logger) http.Handler {
	if next == nil {
		return nil
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := validator.Validate(r.Header.Get("Origin")); err != nil {
			if logger != nil {
				logger.Warn("reject untrusted origin",
					zap.Error(err),
					zap.String("origin", r.Header.Get("Origin")))
			}
			writeAuthError(w, http.StatusForbidden, "origin_not_allowed", err.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}

// WithBearerVerification enforces signed bearer tokens on every request,
// resolved against the registered key set. Failures reject the request before
// any tool logic executes.
func WithBearerVerification(next http.Handler, verifier *Verifier, logger logSDK.Logger) http.Handler {
	if next == nil {
		return nil
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := library.StripBearerPrefix(r.Header.Get("Authorization"))
		if token == "" {
			writeAuthError(w, http.StatusUnauthorized, "unauthorized", "authorization bearer token required")
			return
		}

		if _, err := verifier.Verify(token); err != nil {
			if logger != nil {
				logger.Warn("reject bearer token", zap.Error(err))
			}
			writeAuthError(w, http.StatusUnauthorized, "unauthorized", "invalid bearer token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeAuthError writes a standardized JSON body for middleware rejections.
func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"code": code, "error": message})
}
