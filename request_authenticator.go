package auth

import (
	"context"
	"strings"
	"time"
)

// BearerPrefix is the literal Authorization scheme prefix, space included
const BearerPrefix = "Bearer "

// RequestAuthenticator resolves bearer tokens into a request scoped
// Authentication. It never blocks a request: every failure leaves the
// request anonymous and the access decision to downstream authorization.
type RequestAuthenticator struct {
	validator    TokenValidator
	directory    UserDirectory
	logger       Logger
	activitySink ActivitySink
	now          func() time.Time
}

// NewRequestAuthenticator returns a RequestAuthenticator
func NewRequestAuthenticator(validator TokenValidator, directory UserDirectory) *RequestAuthenticator {
	return &RequestAuthenticator{
		validator:    validator,
		directory:    directory,
		logger:       defLogger{},
		activitySink: noopActivitySink{},
		now:          time.Now,
	}
}

func (a *RequestAuthenticator) WithLogger(logger Logger) *RequestAuthenticator {
	a.logger = normalizeLogger(logger)
	return a
}

// WithActivitySink configures an ActivitySink for request authentication events.
func (a *RequestAuthenticator) WithActivitySink(sink ActivitySink) *RequestAuthenticator {
	a.activitySink = normalizeActivitySink(sink)
	return a
}

// ExtractBearerToken strips the Bearer prefix from an Authorization header value
func ExtractBearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", false
	}
	token := header[len(BearerPrefix):]
	if token == "" {
		return "", false
	}
	return token, true
}

// Authenticate runs the bearer filter once for the request carried by ctx.
// It returns the context to continue with and whether this call installed
// an Authentication.
func (a *RequestAuthenticator) Authenticate(ctx context.Context, header string, details Details) (context.Context, bool) {
	if AlreadyFiltered(ctx) {
		return ctx, false
	}
	ctx = markFiltered(ctx)

	raw, ok := ExtractBearerToken(header)
	if !ok {
		return ctx, false
	}

	claims, err := a.validator.DecodeAndVerify(raw)
	if err != nil {
		a.logger.Debug("bearer token rejected", "error", err, "remote_address", details.RemoteAddress)
		recordActivity(ctx, a.activitySink, a.logger, ActivityEvent{
			EventType: ActivityEventRequestTokenRejected,
			Details:   details,
			Metadata:  map[string]any{"error": err.Error()},
		})
		return ctx, false
	}

	subject := claims.Subject()
	if subject == "" || IsAuthenticated(ctx) {
		return ctx, false
	}

	user, err := a.directory.FindByIdentifier(ctx, subject)
	if err != nil || user == nil {
		if err != nil && !IsPrincipalNotFoundError(err) {
			a.logger.Error("bearer principal lookup failed", "error", err)
		} else {
			a.logger.Debug("bearer principal not found")
		}
		return ctx, false
	}

	if !a.validator.IsTokenValid(raw, user) {
		a.logger.Debug("bearer token not valid for principal", "subject", subject)
		return ctx, false
	}

	authentication := &Authentication{
		Principal:       user,
		Authorities:     user.Authorities(),
		Details:         details,
		Claims:          claims,
		AuthenticatedAt: a.now(),
	}

	recordActivity(ctx, a.activitySink, a.logger, ActivityEvent{
		EventType:  ActivityEventRequestAuthenticated,
		Identifier: subject,
		Details:    details,
	})

	return WithAuthentication(ctx, authentication), true
}
