package auth

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Logger is the logging contract used across the package. Args are
// key/value pairs following the message.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Principal is the authenticated entity a token represents
type Principal interface {
	// Identifier is unique and used as the token subject
	Identifier() string
	Authorities() []string
	GetPasswordHash() string
}

// UserDirectory stores principals. FindByIdentifier returns an error
// matching IsPrincipalNotFoundError on misses, Save returns one matching
// IsDuplicateIdentifierError when the identifier is taken.
type UserDirectory interface {
	FindByIdentifier(ctx context.Context, identifier string) (*User, error)
	Save(ctx context.Context, user *User) (*User, error)
}

// PasswordEncoder hashes and compares raw passwords
type PasswordEncoder interface {
	Encode(raw string) (string, error)
	Matches(raw, hash string) bool
}

// AuthenticationManager verifies credentials
type AuthenticationManager interface {
	Verify(ctx context.Context, identifier, rawPassword string) error
}

// Config holds token options
type Config interface {
	GetSigningKey() ([]byte, error)
	GetTokenTTL() time.Duration
	GetLeeway() time.Duration
	GetIssuer() string
}

type defLogger struct{}

func (d defLogger) Error(msg string, args ...any) {
	fmt.Print("[ERR] AUTH " + line(msg, args))
}

func (d defLogger) Warn(msg string, args ...any) {
	fmt.Print("[WRN] AUTH " + line(msg, args))
}

func (d defLogger) Info(msg string, args ...any) {
	fmt.Print("[INF] AUTH " + line(msg, args))
}

func (d defLogger) Debug(msg string, args ...any) {
	fmt.Print("[DBG] AUTH " + line(msg, args))
}

func line(msg string, args []any) string {
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
		} else {
			fmt.Fprintf(&b, " %v", args[i])
		}
	}
	b.WriteString("\n")
	return b.String()
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// NoopLogger discards everything, handy for tests.
func NoopLogger() Logger {
	return noopLogger{}
}

func normalizeLogger(l Logger) Logger {
	if l == nil {
		return defLogger{}
	}
	return l
}
