package auth

import "context"

// ClaimsDecorator fills extra claims before a token is issued.
// Registered claims (sub, iat, exp, ...) are owned by the codec and
// are rejected at issuance if a decorator sets them.
type ClaimsDecorator interface {
	Decorate(ctx context.Context, principal Principal, claims map[string]any) error
}

// ClaimsDecoratorFunc adapts a function into a ClaimsDecorator.
type ClaimsDecoratorFunc func(ctx context.Context, principal Principal, claims map[string]any) error

// Decorate satisfies the ClaimsDecorator interface.
func (f ClaimsDecoratorFunc) Decorate(ctx context.Context, principal Principal, claims map[string]any) error {
	if f == nil {
		return nil
	}
	return f(ctx, principal, claims)
}

// RoleClaimsDecorator adds the role claim for principals that carry one
var RoleClaimsDecorator = ClaimsDecoratorFunc(func(_ context.Context, principal Principal, claims map[string]any) error {
	if user, ok := principal.(*User); ok && user.Role != "" {
		claims[ClaimRole] = string(user.Role)
	}
	return nil
})

type noopClaimsDecorator struct{}

func (noopClaimsDecorator) Decorate(context.Context, Principal, map[string]any) error {
	return nil
}

func normalizeClaimsDecorator(d ClaimsDecorator) ClaimsDecorator {
	if d == nil {
		return noopClaimsDecorator{}
	}
	return d
}
