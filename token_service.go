package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// MinSigningKeyLength is the minimum HS256 key size in bytes
const MinSigningKeyLength = 32

// DefaultTokenTTL is used when no TTL is configured
const DefaultTokenTTL = 24 * time.Hour

// TokenCodec issues and verifies HS256 signed tokens. It is safe for
// concurrent use: the key is copied at construction and never mutated.
type TokenCodec struct {
	signingKey []byte
	ttl        time.Duration
	leeway     time.Duration
	issuer     string
	now        func() time.Time
	logger     Logger
}

// TokenCodecOption configures a TokenCodec
type TokenCodecOption func(*TokenCodec)

// WithClock overrides the time source used for iat/exp and verification
func WithClock(now func() time.Time) TokenCodecOption {
	return func(c *TokenCodec) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLeeway allows exp to be exceeded by d during verification
func WithLeeway(d time.Duration) TokenCodecOption {
	return func(c *TokenCodec) {
		if d > 0 {
			c.leeway = d
		}
	}
}

// WithIssuer sets iss on issued tokens and requires it on verification
func WithIssuer(issuer string) TokenCodecOption {
	return func(c *TokenCodec) {
		c.issuer = issuer
	}
}

func WithCodecLogger(logger Logger) TokenCodecOption {
	return func(c *TokenCodec) {
		c.logger = normalizeLogger(logger)
	}
}

// NewTokenCodec creates a TokenCodec. A ttl <= 0 falls back to DefaultTokenTTL.
func NewTokenCodec(signingKey []byte, ttl time.Duration, opts ...TokenCodecOption) (*TokenCodec, error) {
	if len(signingKey) < MinSigningKeyLength {
		return nil, cloneWithCause(ErrWeakSigningKey, nil, map[string]any{
			"length":  len(signingKey),
			"minimum": MinSigningKeyLength,
		})
	}

	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	c := &TokenCodec{
		signingKey: append([]byte(nil), signingKey...),
		ttl:        ttl,
		now:        time.Now,
		logger:     defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c, nil
}

// NewTokenCodecFromConfig builds a codec from a Config
func NewTokenCodecFromConfig(cfg Config, opts ...TokenCodecOption) (*TokenCodec, error) {
	key, err := cfg.GetSigningKey()
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to load signing key")
	}

	base := []TokenCodecOption{
		WithLeeway(cfg.GetLeeway()),
		WithIssuer(cfg.GetIssuer()),
	}

	return NewTokenCodec(key, cfg.GetTokenTTL(), append(base, opts...)...)
}

// TTL returns the lifetime of issued tokens
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a token for subject. Extra claims are copied next to the
// registered ones and may not use registered claim names.
func (c *TokenCodec) Issue(subject string, extraClaims map[string]any) (string, error) {
	if strings.TrimSpace(subject) == "" {
		return "", goerrors.New("token subject is required", goerrors.CategoryBadInput).
			WithTextCode(TextCodeInvalidRequest).
			WithCode(goerrors.CodeBadRequest)
	}

	var extra map[string]any
	if len(extraClaims) > 0 {
		extra = make(map[string]any, len(extraClaims))
		for k, v := range extraClaims {
			if IsRegisteredClaim(k) {
				return "", cloneWithCause(ErrReservedClaim, nil, map[string]any{"claim": k})
			}
			extra[k] = v
		}
	}

	now := c.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
			ID:        uuid.NewString(),
		},
		Extra: extra,
	}

	return c.SignClaims(claims)
}

// SignClaims signs claims as they are, without applying defaults
func (c *TokenCodec) SignClaims(claims *Claims) (string, error) {
	if claims == nil {
		return "", goerrors.New("claims must not be nil", goerrors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(c.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign JWT")
	}

	return signed, nil
}

// DecodeAndVerify parses a token, checks its signature and then its expiry.
func (c *TokenCodec) DecodeAndVerify(raw string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, c.keyFunc, c.parserOptions()...)
	if err != nil {
		return nil, c.classify(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		c.logger.Error("TokenCodec could not decode claims")
		return nil, cloneWithCause(ErrTokenMalformed, nil, nil)
	}

	return claims, nil
}

// ExtractSubject returns the sub claim of a verified token
func (c *TokenCodec) ExtractSubject(raw string) (string, error) {
	claims, err := c.DecodeAndVerify(raw)
	if err != nil {
		return "", err
	}

	if claims.Subject() == "" {
		return "", cloneWithCause(ErrTokenMalformed, nil, map[string]any{"claim": "sub"})
	}

	return claims.Subject(), nil
}

// Validate checks the token and that it was issued for expectedSubject
func (c *TokenCodec) Validate(raw, expectedSubject string) error {
	subject, err := c.ExtractSubject(raw)
	if err != nil {
		return err
	}

	if subject != expectedSubject {
		return cloneWithCause(ErrSubjectMismatch, nil, nil)
	}

	return nil
}

// IsTokenValid reports whether raw is a live token for principal
func (c *TokenCodec) IsTokenValid(raw string, principal Principal) bool {
	if principal == nil {
		return false
	}
	return c.Validate(raw, principal.Identifier()) == nil
}

func (c *TokenCodec) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		c.logger.Warn("TokenCodec encountered unexpected signing method", "alg", t.Header["alg"])
		return nil, jwt.ErrTokenSignatureInvalid
	}
	return c.signingKey, nil
}

func (c *TokenCodec) parserOptions() []jwt.ParserOption {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	}
	if c.leeway > 0 {
		opts = append(opts, jwt.WithLeeway(c.leeway))
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}
	return opts
}

// classify maps jwt errors to the package taxonomy. Signature failures
// win over claim failures since claims are only checked on a valid signature.
func (c *TokenCodec) classify(err error) error {
	meta := map[string]any{"cause": err.Error()}

	switch {
	case goerrors.Is(err, jwt.ErrTokenMalformed):
		return cloneWithCause(ErrTokenMalformed, err, meta)
	case goerrors.Is(err, jwt.ErrTokenSignatureInvalid), goerrors.Is(err, jwt.ErrTokenUnverifiable):
		return cloneWithCause(ErrTokenInvalidSignature, err, meta)
	case goerrors.Is(err, jwt.ErrTokenExpired):
		return cloneWithCause(ErrTokenExpired, err, meta)
	default:
		return cloneWithCause(ErrTokenMalformed, err, meta)
	}
}
