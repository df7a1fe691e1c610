package auth

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// ErrorResponse is the JSON body of failed requests
type ErrorResponse struct {
	Error      string            `json:"error"`
	Code       string            `json:"code,omitempty"`
	Validation map[string]string `json:"validation,omitempty"`
}

// MeResponse describes the authenticated principal
type MeResponse struct {
	Identifier  string   `json:"identifier"`
	Authorities []string `json:"authorities"`
	Role        string   `json:"role,omitempty"`
}

type AuthControllerRoutes struct {
	Register     string
	Authenticate string
	Me           string
}

type AuthController struct {
	Logger       Logger
	Service      *AuthenticationService
	Routes       *AuthControllerRoutes
	ErrorHandler fiber.ErrorHandler
}

type AuthControllerOption func(*AuthController) *AuthController

// WithControllerLogger sets the controller logger
func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Logger = normalizeLogger(logger)
		return c
	}
}

// WithControllerRoutes overrides the route paths
func WithControllerRoutes(routes AuthControllerRoutes) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Routes = &routes
		return c
	}
}

// WithControllerErrorHandler replaces the JSON error renderer
func WithControllerErrorHandler(handler fiber.ErrorHandler) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if handler != nil {
			c.ErrorHandler = handler
		}
		return c
	}
}

func NewAuthController(service *AuthenticationService, opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:       defLogger{},
		Service:      service,
		ErrorHandler: ErrorHandler,
		Routes: &AuthControllerRoutes{
			Register:     "/auth/register",
			Authenticate: "/auth/authenticate",
			Me:           "/me",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Service == nil {
		panic("Missing AuthenticationService in auth controller...")
	}

	return c
}

// RegisterAuthRoutes mounts the public auth routes on app. The me route
// is mounted behind the given handlers, usually the bearer filter and
// an authentication guard.
func RegisterAuthRoutes(app fiber.Router, controller *AuthController, protected ...fiber.Handler) {
	app.Post(controller.Routes.Register, controller.Register).Name("auth.register")
	app.Post(controller.Routes.Authenticate, controller.Authenticate).Name("auth.authenticate")

	handlers := append(append([]fiber.Handler{}, protected...), controller.Me)
	app.Get(controller.Routes.Me, handlers...).Name("auth.me")
}

func (a *AuthController) Register(ctx *fiber.Ctx) error {
	payload := new(RegisterRequest)
	if err := ctx.BodyParser(payload); err != nil {
		a.Logger.Error("register parse payload", "error", err)
		return a.ErrorHandler(ctx, badPayload(err))
	}

	res, err := a.Service.Register(ctx.UserContext(), *payload)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(res)
}

func (a *AuthController) Authenticate(ctx *fiber.Ctx) error {
	payload := new(AuthenticateRequest)
	if err := ctx.BodyParser(payload); err != nil {
		a.Logger.Error("authenticate parse payload", "error", err)
		return a.ErrorHandler(ctx, badPayload(err))
	}

	res, err := a.Service.Authenticate(ctx.UserContext(), *payload)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(res)
}

func (a *AuthController) Me(ctx *fiber.Ctx) error {
	authentication, ok := AuthenticationFromContext(ctx.UserContext())
	if !ok {
		return a.ErrorHandler(ctx, ErrUnauthenticated)
	}

	res := MeResponse{
		Identifier:  authentication.Name(),
		Authorities: authentication.Authorities,
	}
	if authentication.Claims != nil {
		res.Role = authentication.Claims.Role()
	}

	return ctx.JSON(res)
}

// ErrorHandler renders errors as JSON using the go-errors code for status.
// It can be used as the fiber app ErrorHandler.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	return handleError(ctx, err, noopLogger{})
}

// NewErrorHandler returns ErrorHandler logging every mapped error to logger
func NewErrorHandler(logger Logger) fiber.ErrorHandler {
	logger = normalizeLogger(logger)
	return func(ctx *fiber.Ctx, err error) error {
		return handleError(ctx, err, logger)
	}
}

func handleError(ctx *fiber.Ctx, err error, logger Logger) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return ctx.Status(fiberErr.Code).JSON(ErrorResponse{Error: fiberErr.Message})
	}

	richErr := AsRichError(err)
	status := HTTPStatus(richErr)

	logf := logger.Debug
	if status >= fiber.StatusInternalServerError {
		logf = logger.Error
	}
	logf("request failed",
		"path", ctx.Path(),
		"status", status,
		"error", richErr.Message,
		"category", richErr.Category,
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)

	res := ErrorResponse{
		Error: richErr.Message,
		Code:  richErr.TextCode,
	}
	if status >= fiber.StatusInternalServerError {
		res.Error = "An unexpected server error occurred"
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		res.Validation = FormatValidationErrorToMap(verrs)
	}

	if status == fiber.StatusUnauthorized {
		ctx.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	}

	return ctx.Status(status).JSON(res)
}

// FormatValidationErrorToMap flattens ozzo validation errors by field
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		if err != nil {
			out["error"] = err.Error()
		}
		return out
	}
	for field, ferr := range verrs {
		if ferr != nil {
			out[field] = ferr.Error()
		}
	}
	return out
}

func badPayload(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse request body").
		WithTextCode(TextCodeInvalidRequest).
		WithCode(goerrors.CodeBadRequest)
}
