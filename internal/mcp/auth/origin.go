// Package auth guards inbound MCP traffic: origin allow-listing, provider
// credential extraction, and bearer token verification against registered
// client keys.
package auth

import (
	"strings"

	errors "github.com/Laisky/errors/v2"
)

var (
	// ErrMissingOrigin indicates the request carried no Origin header.
	ErrMissingOrigin = errors.New("origin header required")
	// ErrUntrustedOrigin indicates the Origin header is not in the allow-list.
	ErrUntrustedOrigin = errors.New("origin is not trusted")
)

// OriginValidator accepts requests whose Origin header exactly matches one of
// a fixed set of trusted values. No wildcard or prefix matching is performed.
type OriginValidator struct {
	trusted map[string]struct{}
}

// NewOriginValidator builds a validator from the configured allow-list.
// Blank entries are ignored.
func NewOriginValidator(trustedOrigins []string) *OriginValidator {
	trusted := make(map[string]struct{}, len(trustedOrigins))
	for _, origin := range trustedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		trusted[origin] = struct{}{}
	}

	return &OriginValidator{trusted: trusted}
}

// Validate checks an Origin header value against the allow-list.
func (v *OriginValidator) Validate(origin string) error {
	origin = strings.TrimSpace(origin)
	if origin == "" {
		return errors.WithStack(ErrMissingOrigin)
	}

	if _, ok := v.trusted[origin]; !ok {
		return errors.Wrapf(ErrUntrustedOrigin, "origin %q", origin)
	}

	return nil
}
