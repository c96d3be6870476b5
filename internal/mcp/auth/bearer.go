package auth

import (
	errors "github.com/Laisky/errors/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

var (
	// ErrMissingKID indicates the bearer token does not claim a key identifier.
	ErrMissingKID = errors.New("token has no kid header")
	// ErrUnknownKID indicates no registered key matches the token's kid.
	ErrUnknownKID = errors.New("no registered key matches kid")
)

// KeySetProvider supplies the current signing-key-set document. The registry
// satisfies this; the set is rebuilt per verification so revocations and new
// registrations take effect without restart.
type KeySetProvider interface {
	KeySet() (jwk.Set, error)
}

// Verifier validates bearer JWTs against registered client public keys.
type Verifier struct {
	keys KeySetProvider
}

// NewVerifier builds a Verifier resolving signers through the provided key set.
func NewVerifier(keys KeySetProvider) (*Verifier, error) {
	if keys == nil {
		return nil, errors.New("key set provider is required")
	}

	return &Verifier{keys: keys}, nil
}

// Verify checks the token's signature against the registered key matching its
// kid claim, along with the standard temporal claims when present. Any
// failure means the request must be rejected before tool logic runs.
func (v *Verifier) Verify(tokenString string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, v.resolveKey,
		jwt.WithValidMethods([]string{"RS256", "RS384", "RS512", "ES256", "ES384", "ES512"}),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return nil, errors.Wrap(err, "verify bearer token")
	}

	return claims, nil
}

// resolveKey is the jwt keyfunc: it locates the registered public key whose
// kid matches the token header.
func (v *Verifier) resolveKey(token *jwt.Token) (any, error) {
	kid, _ := token.Header["kid"].(string)
	if kid == "" {
		return nil, errors.WithStack(ErrMissingKID)
	}

	set, err := v.keys.KeySet()
	if err != nil {
		return nil, errors.Wrap(err, "load key set")
	}

	key, ok := set.LookupKeyID(kid)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownKID, "kid %q", kid)
	}

	var raw any
	if err := key.Raw(&raw); err != nil {
		return nil, errors.Wrapf(err, "export key %q", kid)
	}

	return raw, nil
}
