package auth

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeTokenMalformed        = "TOKEN_MALFORMED"
	TextCodeTokenInvalidSignature = "TOKEN_INVALID_SIGNATURE"
	TextCodeTokenExpired          = "TOKEN_EXPIRED"
	TextCodeSubjectMismatch       = "TOKEN_SUBJECT_MISMATCH"
	TextCodeReservedClaim         = "TOKEN_RESERVED_CLAIM"
	TextCodeWeakSigningKey        = "WEAK_SIGNING_KEY"
	TextCodeDuplicateIdentifier   = "DUPLICATE_IDENTIFIER"
	TextCodeInvalidCredentials    = "INVALID_CREDENTIALS"
	TextCodePrincipalNotFound     = "PRINCIPAL_NOT_FOUND"
	TextCodeEmptyPassword         = "EMPTY_PASSWORD"
	TextCodeInvalidRequest        = "INVALID_REQUEST"
	TextCodeUnauthenticated       = "AUTHENTICATION_REQUIRED"
	TextCodeAccessDenied          = "ACCESS_DENIED"
)

// ErrTokenMalformed is returned when a token cannot be parsed into
// the header.payload.signature structure.
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenInvalidSignature is returned when the signature does not match
// the signing key or the token was tampered with.
var ErrTokenInvalidSignature = goerrors.New("token signature is invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenInvalidSignature).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenExpired is returned when exp is not after the verification time.
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrSubjectMismatch is returned when a valid token was issued for a different principal.
var ErrSubjectMismatch = goerrors.New("token subject does not match principal", goerrors.CategoryAuth).
	WithTextCode(TextCodeSubjectMismatch).
	WithCode(goerrors.CodeUnauthorized)

// ErrReservedClaim is returned when extra claims try to override a registered claim.
var ErrReservedClaim = goerrors.New("extra claims must not override registered claims", goerrors.CategoryBadInput).
	WithTextCode(TextCodeReservedClaim).
	WithCode(goerrors.CodeBadRequest)

// ErrWeakSigningKey is returned when the HMAC key is shorter than 256 bits.
var ErrWeakSigningKey = goerrors.New("signing key must be at least 32 bytes", goerrors.CategoryBadInput).
	WithTextCode(TextCodeWeakSigningKey).
	WithCode(goerrors.CodeBadRequest)

// ErrDuplicateIdentifier is returned when the directory already holds the identifier.
var ErrDuplicateIdentifier = goerrors.New("identifier already registered", goerrors.CategoryConflict).
	WithTextCode(TextCodeDuplicateIdentifier).
	WithCode(goerrors.CodeConflict)

// ErrInvalidCredentials is returned when the password does not match the stored hash
// or the identifier is unknown.
var ErrInvalidCredentials = goerrors.New("invalid credentials", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(goerrors.CodeUnauthorized)

// ErrPrincipalNotFound is returned on directory lookup misses.
var ErrPrincipalNotFound = goerrors.New("principal not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodePrincipalNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrNoEmptyString is returned when hashing an empty password
var ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(goerrors.CodeBadRequest)

// ErrInvalidRequest is the base error for payload validation failures
var ErrInvalidRequest = goerrors.New("invalid request payload", goerrors.CategoryValidation).
	WithTextCode(TextCodeInvalidRequest).
	WithCode(goerrors.CodeBadRequest)

// ErrUnauthenticated is returned by protected routes reached anonymously
var ErrUnauthenticated = goerrors.New("authentication required", goerrors.CategoryAuth).
	WithTextCode(TextCodeUnauthenticated).
	WithCode(goerrors.CodeUnauthorized)

// ErrAccessDenied is returned when the principal lacks a required authority
var ErrAccessDenied = goerrors.New("access denied", goerrors.CategoryAuthz).
	WithTextCode(TextCodeAccessDenied).
	WithCode(goerrors.CodeForbidden)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if hasTextCode(err, TextCodeTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for malformed tokens
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if hasTextCode(err, TextCodeTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed")
}

// IsInvalidSignatureError reports tampered or foreign-key tokens
func IsInvalidSignatureError(err error) bool {
	return hasTextCode(err, TextCodeTokenInvalidSignature)
}

func IsDuplicateIdentifierError(err error) bool {
	return hasTextCode(err, TextCodeDuplicateIdentifier)
}

func IsInvalidCredentialsError(err error) bool {
	return hasTextCode(err, TextCodeInvalidCredentials)
}

func IsPrincipalNotFoundError(err error) bool {
	return hasTextCode(err, TextCodePrincipalNotFound)
}

func hasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == code
	}
	return false
}

// cloneWithCause returns a per call copy of a sentinel so callers can
// attach metadata without mutating the shared value. Without a cause the
// sentinel itself is the source, which keeps errors.Is working.
func cloneWithCause(sentinel *goerrors.Error, cause error, metadata map[string]any) error {
	clone := sentinel.Clone()
	if clone == nil {
		return sentinel
	}
	if cause != nil {
		clone.Source = cause
	} else {
		clone.Source = sentinel
	}
	if len(metadata) == 0 {
		return clone
	}
	return clone.WithMetadata(metadata)
}
