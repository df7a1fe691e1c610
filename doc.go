// Package auth provides stateless bearer token authentication: an HS256
// token codec, a per request filter that turns an Authorization header into
// a request scoped Authentication, and a service that registers principals
// and exchanges credentials for tokens.
//
// Tokens:
//   - TokenCodec signs compact JWS tokens carrying sub, iat, exp and jti next
//     to caller supplied extra claims. Registered claim names can not be
//     overridden. Keys shorter than 256 bits are rejected at construction.
//   - DecodeAndVerify checks the signature before any claim. Failures are
//     reported as ErrTokenMalformed, ErrTokenInvalidSignature or
//     ErrTokenExpired clones carrying the jwt cause.
//
// Request filter:
//   - RequestAuthenticator runs once per request. It never rejects a request,
//     a missing or bad token leaves it anonymous and authorization is left to
//     guards such as jwtware.RequireAuthenticated.
//   - The Authentication lives in the request context.Context, see
//     AuthenticationFromContext.
//
// Activity sinks:
//   - ActivitySink receives register, login and request authentication events.
//     Sinks run best effort, errors are logged and never fail the caller.
//
// Claims decoration:
//   - ClaimsDecorator is invoked before tokens are issued by the
//     AuthenticationService. The default decorator adds the role claim.
package auth
