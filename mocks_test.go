package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auth "github.com/goliatone/go-bearer"
)

var testSigningKey = []byte("0123456789abcdef0123456789abcdef")

// MockLogger implements auth.Logger for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}

// MockUserDirectory implements auth.UserDirectory
type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) FindByIdentifier(ctx context.Context, identifier string) (*auth.User, error) {
	args := m.Called(ctx, identifier)
	user, _ := args.Get(0).(*auth.User)
	return user, args.Error(1)
}

func (m *MockUserDirectory) Save(ctx context.Context, user *auth.User) (*auth.User, error) {
	args := m.Called(ctx, user)
	saved, _ := args.Get(0).(*auth.User)
	return saved, args.Error(1)
}

// MockAuthenticationManager implements auth.AuthenticationManager
type MockAuthenticationManager struct {
	mock.Mock
}

func (m *MockAuthenticationManager) Verify(ctx context.Context, identifier, password string) error {
	args := m.Called(ctx, identifier, password)
	return args.Error(0)
}

// fixedClock returns a settable clock for codec tests
type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestCodec(t *testing.T, opts ...auth.TokenCodecOption) *auth.TokenCodec {
	t.Helper()
	codec, err := auth.NewTokenCodec(testSigningKey, time.Hour, opts...)
	require.NoError(t, err)
	return codec
}

// cheap bcrypt cost keeps the suite fast
func newTestEncoder() *auth.BcryptPasswordEncoder {
	return auth.NewBcryptPasswordEncoder(4)
}

func newTestUser(t *testing.T, encoder auth.PasswordEncoder, email, password string) *auth.User {
	t.Helper()
	hash, err := encoder.Encode(password)
	require.NoError(t, err)
	return &auth.User{
		FirstName:    "Test",
		LastName:     "User",
		Email:        email,
		PasswordHash: hash,
		Role:         auth.RoleUser,
	}
}
