package authentication

import (
	"github.com/golang-jwt/jwt/v5"
)

// DisplayName extracts a human-readable identity from a bearer token for
// display only. The token is parsed unverified: the client has no signing
// key and never gates anything on claim contents.
func DisplayName(token string) string {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return ""
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	for _, key := range []string{"username", "name", "sub"} {
		if v, ok := claims[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
