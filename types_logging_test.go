package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type logCall struct {
	level   string
	message string
	args    []any
}

type captureLogger struct {
	calls []logCall
}

func (l *captureLogger) record(level, message string, args ...any) {
	l.calls = append(l.calls, logCall{level: level, message: message, args: args})
}

func (l *captureLogger) Debug(message string, args ...any) { l.record("debug", message, args...) }
func (l *captureLogger) Info(message string, args ...any)  { l.record("info", message, args...) }
func (l *captureLogger) Warn(message string, args ...any)  { l.record("warn", message, args...) }
func (l *captureLogger) Error(message string, args ...any) { l.record("error", message, args...) }

func TestDefLoggerLine(t *testing.T) {
	require.Equal(t, "login failed identifier=a@b.com error=boom\n",
		line("login failed", []any{"identifier", "a@b.com", "error", errors.New("boom")}))
	require.Equal(t, "odd dangling\n", line("odd", []any{"dangling"}))
	require.Equal(t, "plain\n", line("plain", nil))
}

func TestNormalizeLogger(t *testing.T) {
	require.IsType(t, defLogger{}, normalizeLogger(nil))

	logger := &captureLogger{}
	require.Same(t, logger, normalizeLogger(logger))
}

func TestRecordActivityLogsSinkErrors(t *testing.T) {
	logger := &captureLogger{}
	var got ActivityEvent

	sink := ActivitySinkFunc(func(_ context.Context, event ActivityEvent) error {
		got = event
		return errors.New("sink down")
	})

	recordActivity(context.Background(), sink, logger, ActivityEvent{
		EventType:  ActivityEventLoginSuccess,
		Identifier: "a@b.com",
	})

	require.Equal(t, ActivityEventLoginSuccess, got.EventType)
	require.NotNil(t, got.Metadata)
	require.False(t, got.OccurredAt.IsZero())

	require.Len(t, logger.calls, 1)
	require.Equal(t, "warn", logger.calls[0].level)
	require.Equal(t, "activity sink record error", logger.calls[0].message)
}

func TestRecordActivityNilSink(t *testing.T) {
	logger := &captureLogger{}
	require.NotPanics(t, func() {
		recordActivity(context.Background(), nil, logger, ActivityEvent{EventType: ActivityEventLoginFailure})
	})
	require.Empty(t, logger.calls)
}

func TestServiceLogsVerifyFailures(t *testing.T) {
	logger := &captureLogger{}
	directory := NewMemoryDirectory()
	encoder := NewBcryptPasswordEncoder(4)
	codec, err := NewTokenCodec([]byte("0123456789abcdef0123456789abcdef"), 0)
	require.NoError(t, err)

	service := NewAuthenticationService(directory, encoder, NewUserProvider(directory, encoder).WithLogger(logger), codec).
		WithLogger(logger)

	_, err = service.Authenticate(context.Background(), AuthenticateRequest{Email: "nobody@example.com", Password: "x"})
	require.Error(t, err)

	var infos []string
	for _, call := range logger.calls {
		if call.level == "info" {
			infos = append(infos, call.message)
		}
	}
	require.Contains(t, infos, "Authenticate verify credentials error")
}
