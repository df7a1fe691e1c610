package auth

import (
	"net"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

// HeaderRequestID is read into Details when present
const HeaderRequestID = "X-Request-ID"

// DetailsFromRequest collects the audit details of a net/http request
func DetailsFromRequest(r *http.Request) Details {
	remote := r.RemoteAddr
	if host, _, err := net.SplitHostPort(remote); err == nil {
		remote = host
	}
	return Details{
		RemoteAddress: remote,
		UserAgent:     r.UserAgent(),
		RequestID:     r.Header.Get(HeaderRequestID),
	}
}

// Middleware runs the bearer filter in front of next. The request always
// continues, authenticated or not.
func (a *RequestAuthenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, _ := a.Authenticate(r.Context(), r.Header.Get("Authorization"), DetailsFromRequest(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuthenticated rejects anonymous requests with 401
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsAuthenticated(r.Context()) {
			w.Header().Set("WWW-Authenticate", "Bearer")
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AsRichError returns err as a *goerrors.Error, wrapping unknown errors as
// internal server errors.
func AsRichError(err error) *goerrors.Error {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr != nil {
		return richErr
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, "An unexpected server error occurred").
		WithCode(goerrors.CodeInternal)
}

// HTTPStatus maps an error to the response status code
func HTTPStatus(err error) int {
	richErr := AsRichError(err)
	if richErr.Code > 0 {
		return richErr.Code
	}

	switch richErr.Category {
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
