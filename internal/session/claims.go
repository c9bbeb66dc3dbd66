package session

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is what the client can read out of a JWT access token without
// verifying it. Verification is the server's job; the client only uses the
// claims for display and for failing expired tokens fast locally.
type Identity struct {
	Username  string
	ExpiresAt time.Time
}

// parseIdentity extracts claims from a JWT token. Opaque (non-JWT) tokens
// return false; they are still usable credentials, just without local claims.
func parseIdentity(token string) (Identity, bool) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return Identity{}, false
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(trimmed, jwt.MapClaims{})
	if err != nil {
		return Identity{}, false
	}

	identity := Identity{}
	if subject, err := parsed.Claims.GetSubject(); err == nil {
		identity.Username = subject
	}
	if expiry, err := parsed.Claims.GetExpirationTime(); err == nil && expiry != nil {
		identity.ExpiresAt = expiry.Time
	}
	return identity, true
}
