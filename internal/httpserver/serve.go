package httpserver

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/goliatone/go-bearer/internal/logutil"
)

// Serve runs app on bind until ctx is cancelled, then shuts it down
// gracefully.
func Serve(ctx context.Context, bind string, app *fiber.App) error {
	log := logutil.GetOrDefault(ctx).With().Str("server.addr", bind).Logger()

	firstErr := make(chan error, 1)
	go func() {
		defer close(firstErr)
		log.Info().Msg("Starting HTTP server")
		if err := app.Listen(bind); err != nil {
			firstErr <- err
		}
	}()

	select {
	case err := <-firstErr:
		return err
	case <-ctx.Done():
		log.Info().Msg("Initiating shutdown process")
		if err := app.ShutdownWithTimeout(time.Minute); err != nil {
			return err
		}
		log.Info().Msg("Shutdown completed")
		return <-firstErr
	}
}
