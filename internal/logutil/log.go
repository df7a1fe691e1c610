package logutil

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type (
	key byte
)

var (
	loggerKey = key(1)
)

func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

func GetOrDefault(ctx context.Context) zerolog.Logger {
	v := ctx.Value(loggerKey)
	if v == nil {
		return log.Logger
	}
	return v.(zerolog.Logger)
}

// New builds a zerolog logger writing to out. format is json or console.
func New(out io.Writer, level, format string) (zerolog.Logger, error) {
	if out == nil {
		out = os.Stderr
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if format == "console" {
		out = zerolog.ConsoleWriter{Out: out}
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}

// Adapter exposes a zerolog logger through the Debug/Info/Warn/Error
// key value interface used by the auth package.
type Adapter struct {
	logger zerolog.Logger
}

func NewAdapter(logger zerolog.Logger) *Adapter {
	return &Adapter{logger: logger}
}

func (a *Adapter) Debug(msg string, args ...any) {
	withFields(a.logger.Debug(), args).Msg(msg)
}

func (a *Adapter) Info(msg string, args ...any) {
	withFields(a.logger.Info(), args).Msg(msg)
}

func (a *Adapter) Warn(msg string, args ...any) {
	withFields(a.logger.Warn(), args).Msg(msg)
}

func (a *Adapter) Error(msg string, args ...any) {
	withFields(a.logger.Error(), args).Msg(msg)
}

func withFields(evt *zerolog.Event, args []any) *zerolog.Event {
	for i := 0; i < len(args); i += 2 {
		k, ok := args[i].(string)
		if !ok {
			k = fmt.Sprint(args[i])
		}
		if i+1 >= len(args) {
			evt = evt.Str(k, "(MISSING)")
			break
		}
		switch v := args[i+1].(type) {
		case error:
			evt = evt.AnErr(k, v)
		default:
			evt = evt.Interface(k, v)
		}
	}
	return evt
}
