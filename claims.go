package auth

import (
	"encoding/json"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ClaimRole is the extra claim carrying the principal role
const ClaimRole = "role"

// registeredClaimNames are owned by the codec and can not be set through extra claims
var registeredClaimNames = map[string]struct{}{
	"iss": {},
	"sub": {},
	"aud": {},
	"exp": {},
	"nbf": {},
	"iat": {},
	"jti": {},
}

// IsRegisteredClaim reports whether name is a JWT registered claim
func IsRegisteredClaim(name string) bool {
	_, ok := registeredClaimNames[name]
	return ok
}

// Claims is the verified payload of a token. Extra holds every non
// registered claim and is serialized flat next to sub, iat and exp.
type Claims struct {
	jwt.RegisteredClaims
	Extra map[string]any `json:"-"`
}

var _ jwt.Claims = (*Claims)(nil)

// Subject returns the subject claim
func (c *Claims) Subject() string {
	return c.RegisteredClaims.Subject
}

// IssuedAt returns the issued at time
func (c *Claims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// ExpiresAt returns the expiration time
func (c *Claims) ExpiresAt() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// Get returns an extra claim
func (c *Claims) Get(key string) (any, bool) {
	if c.Extra == nil {
		return nil, false
	}
	v, ok := c.Extra[key]
	return v, ok
}

// String returns an extra claim when it holds a string
func (c *Claims) String(key string) (string, bool) {
	v, ok := c.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Role returns the role extra claim, if any
func (c *Claims) Role() string {
	role, _ := c.String(ClaimRole)
	return role
}

func (c Claims) MarshalJSON() ([]byte, error) {
	registered, err := json.Marshal(c.RegisteredClaims)
	if err != nil {
		return nil, err
	}

	out := map[string]json.RawMessage{}
	if err := json.Unmarshal(registered, &out); err != nil {
		return nil, err
	}

	for k, v := range c.Extra {
		if IsRegisteredClaim(k) {
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		out[k] = raw
	}

	return json.Marshal(out)
}

func (c *Claims) UnmarshalJSON(data []byte) error {
	var registered jwt.RegisteredClaims
	if err := json.Unmarshal(data, &registered); err != nil {
		return err
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	c.RegisteredClaims = registered
	c.Extra = nil
	for k, v := range raw {
		if IsRegisteredClaim(k) {
			continue
		}
		if c.Extra == nil {
			c.Extra = make(map[string]any, len(raw))
		}
		c.Extra[k] = v
	}

	return nil
}
