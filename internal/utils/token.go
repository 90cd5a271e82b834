package utils

import "github.com/google/uuid"

// NewSessionToken returns an opaque, unguessable bearer token.  Sessions are
// plain rows keyed by this value; the token carries identity only, never
// authority.
func NewSessionToken() string {
	return uuid.NewString()
}
