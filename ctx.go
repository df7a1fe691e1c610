package auth

import (
	"context"
	"slices"
	"time"
)

var authenticationCtxKey = &contextKey{"authentication"}
var filteredCtxKey = &contextKey{"bearer-filtered"}

type contextKey struct {
	name string
}

// Details is request metadata recorded for audit purposes
type Details struct {
	RemoteAddress string `json:"remote_address,omitempty"`
	UserAgent     string `json:"user_agent,omitempty"`
	RequestID     string `json:"request_id,omitempty"`
}

// Authentication is the security context entry of an authenticated request
type Authentication struct {
	Principal       Principal
	Authorities     []string
	Details         Details
	Claims          *Claims
	AuthenticatedAt time.Time
}

// Name returns the principal identifier
func (a *Authentication) Name() string {
	if a == nil || a.Principal == nil {
		return ""
	}
	return a.Principal.Identifier()
}

// HasAuthority checks the granted authorities
func (a *Authentication) HasAuthority(authority string) bool {
	if a == nil {
		return false
	}
	return slices.Contains(a.Authorities, authority)
}

// WithAuthentication installs auth in the request context
func WithAuthentication(ctx context.Context, auth *Authentication) context.Context {
	return context.WithValue(ctx, authenticationCtxKey, auth)
}

// AuthenticationFromContext finds the authentication of the current request
func AuthenticationFromContext(ctx context.Context) (*Authentication, bool) {
	if ctx == nil {
		return nil, false
	}
	raw, ok := ctx.Value(authenticationCtxKey).(*Authentication)
	return raw, ok && raw != nil
}

// IsAuthenticated reports whether the request carries an authentication
func IsAuthenticated(ctx context.Context) bool {
	_, ok := AuthenticationFromContext(ctx)
	return ok
}

// PrincipalFromContext returns the authenticated principal
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	a, ok := AuthenticationFromContext(ctx)
	if !ok {
		return nil, false
	}
	return a.Principal, a.Principal != nil
}

func markFiltered(ctx context.Context) context.Context {
	return context.WithValue(ctx, filteredCtxKey, true)
}

// AlreadyFiltered reports whether the bearer filter ran for this request
func AlreadyFiltered(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	v, _ := ctx.Value(filteredCtxKey).(bool)
	return v
}
