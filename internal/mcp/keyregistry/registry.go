// Package keyregistry stores client public keys and publishes them as a
// JWKS discovery document for bearer token verification.
package keyregistry

import (
	"strings"
	"sync"

	errors "github.com/Laisky/errors/v2"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

// RegisteredKey binds one client public key to its caller-chosen identifier.
// Both the material and the identifier are unique across the registry.
type RegisteredKey struct {
	// Material is the PEM-encoded public key exactly as supplied at
	// registration. The registry never parses it, only compares it.
	Material string
	// KID is the caller-chosen key identifier.
	KID string
}

// Registry is an in-memory, process-lifetime store of registered client keys.
// It is owned by the composition root and injected into every consumer;
// nothing in this package holds global state. All state is lost on restart.
type Registry struct {
	mu      sync.Mutex
	entries []RegisteredKey
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{}
}

// Register appends a key to the registry unless either its material or its
// identifier is already present. The scan and the append happen under one
// lock acquisition, so concurrent registrations cannot race past the
// duplicate check. It reports whether the key was added and the registry
// size after the call.
//
// A collision on material OR identifier rejects the registration: rotating
// material under an existing kid requires revoking the old entry first.
func (r *Registry) Register(material, kid string) (added bool, size int) {
	material = strings.TrimSpace(material)
	kid = strings.TrimSpace(kid)

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, entry := range r.entries {
		if entry.Material == material || entry.KID == kid {
			return false, len(r.entries)
		}
	}

	r.entries = append(r.entries, RegisteredKey{Material: material, KID: kid})
	return true, len(r.entries)
}

// Revoke removes the entry whose identifier matches kid, reporting whether
// an entry was removed. Verification attempts after a revocation no longer
// see the key because the discovery document is rebuilt per request.
func (r *Registry) Revoke(kid string) bool {
	kid = strings.TrimSpace(kid)

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, entry := range r.entries {
		if entry.KID == kid {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return true
		}
	}

	return false
}

// Size returns the current number of registered keys.
func (r *Registry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.entries)
}

// Snapshot returns a copy of all current entries in registration order.
func (r *Registry) Snapshot() []RegisteredKey {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make([]RegisteredKey, len(r.entries))
	copy(entries, r.entries)
	return entries
}

// KeySet builds the JWKS discovery document from the current registry
// contents. Each entry's PEM material is parsed into its algorithm-specific
// JWK representation and tagged with the registry identifier; any kid the key
// itself carries is overwritten. The set is rebuilt on every call, never
// cached, so registrations and revocations are visible immediately.
func (r *Registry) KeySet() (jwk.Set, error) {
	set := jwk.NewSet()
	for _, entry := range r.Snapshot() {
		key, err := jwk.ParseKey([]byte(entry.Material), jwk.WithPEM(true))
		if err != nil {
			return nil, errors.Wrapf(err, "parse registered key %q", entry.KID)
		}
		if err := key.Set(jwk.KeyIDKey, entry.KID); err != nil {
			return nil, errors.Wrapf(err, "set kid on key %q", entry.KID)
		}
		if err := set.AddKey(key); err != nil {
			return nil, errors.Wrapf(err, "add key %q to set", entry.KID)
		}
	}

	return set, nil
}
