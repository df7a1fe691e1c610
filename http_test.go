package auth_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/steinfletcher/apitest"
	"github.com/stretchr/testify/assert"

	auth "github.com/goliatone/go-bearer"
)

func whoAmI(w http.ResponseWriter, r *http.Request) {
	authentication, ok := auth.AuthenticationFromContext(r.Context())
	if !ok {
		fmt.Fprint(w, "anonymous")
		return
	}
	fmt.Fprint(w, authentication.Name())
}

func TestMiddleware(t *testing.T) {
	f := newRequestAuthFixture(t)
	handler := f.filter.Middleware(http.HandlerFunc(whoAmI))
	token := f.token(t, "alice@example.com")

	apitest.New().
		Handler(handler).
		Get("/").
		Header("Authorization", "Bearer "+token).
		Expect(t).
		Status(http.StatusOK).
		Body("alice@example.com").
		End()

	apitest.New().
		Handler(handler).
		Get("/").
		Expect(t).
		Status(http.StatusOK).
		Body("anonymous").
		End()

	apitest.New().
		Handler(handler).
		Get("/").
		Header("Authorization", "Basic "+token).
		Expect(t).
		Status(http.StatusOK).
		Body("anonymous").
		End()
}

func TestMiddleware_FilterOnlyOnce(t *testing.T) {
	f := newRequestAuthFixture(t)
	token := f.token(t, "alice@example.com")

	// the inner filter sees the marker left by the outer pass
	handler := f.filter.Middleware(f.filter.Middleware(http.HandlerFunc(whoAmI)))

	apitest.New().
		Handler(handler).
		Get("/").
		Header("Authorization", "Bearer "+token).
		Expect(t).
		Body("alice@example.com").
		End()

	assert.Len(t, f.events, 1)
}

func TestRequireAuthenticated(t *testing.T) {
	f := newRequestAuthFixture(t)
	handler := f.filter.Middleware(auth.RequireAuthenticated(http.HandlerFunc(whoAmI)))

	apitest.New().
		Handler(handler).
		Get("/").
		Expect(t).
		Status(http.StatusUnauthorized).
		Header("WWW-Authenticate", "Bearer").
		End()

	apitest.New().
		Handler(handler).
		Get("/").
		Header("Authorization", "Bearer "+f.token(t, "alice@example.com")).
		Expect(t).
		Status(http.StatusOK).
		End()
}

func TestDetailsFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.10:5555"
	r.Header.Set("User-Agent", "curl/8")
	r.Header.Set(auth.HeaderRequestID, "abc")

	assert.Equal(t, auth.Details{
		RemoteAddress: "192.0.2.10",
		UserAgent:     "curl/8",
		RequestID:     "abc",
	}, auth.DetailsFromRequest(r))
}
