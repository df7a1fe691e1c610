package jwtware

import (
	"context"

	"github.com/gofiber/fiber/v2"

	auth "github.com/goliatone/go-bearer"
)

// Authenticator resolves the Authorization header of a request into an
// authenticated context. *auth.RequestAuthenticator satisfies it.
type Authenticator interface {
	Authenticate(ctx context.Context, header string, details auth.Details) (context.Context, bool)
}

// ValidationListener is invoked after a request was authenticated, before
// the next handler runs.
type ValidationListener func(c *fiber.Ctx, authentication *auth.Authentication) error

type Config struct {
	// Filter skips the middleware when it returns true
	Filter         func(*fiber.Ctx) bool
	SuccessHandler fiber.Handler
	ErrorHandler   fiber.ErrorHandler
	// Authenticator is required
	Authenticator Authenticator
	// ContextKey is the Locals key holding the *auth.Authentication
	ContextKey string

	ValidationListeners []ValidationListener
}

// New returns the bearer filter. Requests continue anonymous when there is
// no valid token, protected handlers use RequireAuthenticated to reject them.
func New(config ...Config) fiber.Handler {
	cfg := GetDefaultConfig(config...)
	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		ctx, ok := cfg.Authenticator.Authenticate(
			c.UserContext(),
			c.Get(fiber.HeaderAuthorization),
			DetailsFromCtx(c),
		)
		c.SetUserContext(ctx)

		if !ok {
			return c.Next()
		}

		authentication, _ := auth.AuthenticationFromContext(ctx)
		if err := cfg.runValidationListeners(c, authentication); err != nil {
			return cfg.ErrorHandler(c, err)
		}

		c.Locals(cfg.ContextKey, authentication)

		return cfg.SuccessHandler(c)
	}
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = auth.ErrorHandler
	}

	if cfg.Authenticator == nil {
		panic("AUTH: bearer middleware configuration: Authenticator is required.")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	return cfg
}

func (cfg *Config) runValidationListeners(c *fiber.Ctx, authentication *auth.Authentication) error {
	for _, listener := range cfg.ValidationListeners {
		if listener == nil {
			continue
		}
		if err := listener(c, authentication); err != nil {
			return err
		}
	}
	return nil
}

// DetailsFromCtx collects the audit details of a fiber request
func DetailsFromCtx(c *fiber.Ctx) auth.Details {
	return auth.Details{
		RemoteAddress: c.IP(),
		UserAgent:     c.Get(fiber.HeaderUserAgent),
		RequestID:     c.Get(auth.HeaderRequestID),
	}
}

// AuthenticationFrom returns the authentication installed by the filter
func AuthenticationFrom(c *fiber.Ctx) (*auth.Authentication, bool) {
	return auth.AuthenticationFromContext(c.UserContext())
}

// RequireAuthenticated rejects anonymous requests
func RequireAuthenticated(errorHandler ...fiber.ErrorHandler) fiber.Handler {
	handler := pickErrorHandler(errorHandler)
	return func(c *fiber.Ctx) error {
		if _, ok := AuthenticationFrom(c); !ok {
			return handler(c, auth.ErrUnauthenticated)
		}
		return c.Next()
	}
}

// RequireAuthority rejects requests whose principal lacks authority.
// Anonymous requests get a 401, authenticated ones a 403.
func RequireAuthority(authority string, errorHandler ...fiber.ErrorHandler) fiber.Handler {
	handler := pickErrorHandler(errorHandler)
	return func(c *fiber.Ctx) error {
		authentication, ok := AuthenticationFrom(c)
		if !ok {
			return handler(c, auth.ErrUnauthenticated)
		}
		if !authentication.HasAuthority(authority) {
			return handler(c, auth.ErrAccessDenied)
		}
		return c.Next()
	}
}

func pickErrorHandler(handlers []fiber.ErrorHandler) fiber.ErrorHandler {
	if len(handlers) > 0 && handlers[0] != nil {
		return handlers[0]
	}
	return auth.ErrorHandler
}
