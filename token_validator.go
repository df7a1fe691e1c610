package auth

// TokenValidator verifies tokens without tying callers to a specific
// signing implementation. TokenCodec satisfies it.
type TokenValidator interface {
	DecodeAndVerify(raw string) (*Claims, error)
	IsTokenValid(raw string, principal Principal) bool
}

var _ TokenValidator = (*TokenCodec)(nil)

// TokenIssuer signs tokens for a subject
type TokenIssuer interface {
	Issue(subject string, extraClaims map[string]any) (string, error)
}

var _ TokenIssuer = (*TokenCodec)(nil)
