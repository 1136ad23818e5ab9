package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the fields decoded from a backend-issued access token. They are
// derived on every use and never persisted.
type Claims struct {
	UserID    string
	Email     string
	ExpiresAt int64 // epoch seconds
}

// DecodeClaims parses the payload segment of a backend-issued access token.
// The signature is not verified here; the backend verifies it on every API
// call, the client only needs the embedded identity and expiry.
// Returns nil on any malformed input.
func DecodeClaims(token string) *Claims {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}

	exp, err := mapClaims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}

	claims := &Claims{ExpiresAt: exp.Unix()}

	switch v := mapClaims["user_id"].(type) {
	case string:
		claims.UserID = v
	case float64:
		claims.UserID = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		// Fall back to the standard subject claim.
		sub, err := mapClaims.GetSubject()
		if err != nil || sub == "" {
			return nil
		}
		claims.UserID = sub
	}

	if email, ok := mapClaims["email"].(string); ok {
		claims.Email = email
	}

	return claims
}

// Expired reports whether the claims' expiry has passed. A token expiring
// exactly now counts as expired.
func (c *Claims) Expired(now time.Time) bool {
	return c.ExpiresAt <= now.Unix()
}
