package server

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	auth "github.com/goliatone/go-bearer"
	"github.com/goliatone/go-bearer/activitymap"
	"github.com/goliatone/go-bearer/config"
	"github.com/goliatone/go-bearer/internal/logutil"
	"github.com/goliatone/go-bearer/middleware/jwtware"
)

// APIPrefix is the mount point of the auth routes
const APIPrefix = "/api/v1"

// Server bundles the wired components of the token service
type Server struct {
	App           *fiber.App
	Codec         *auth.TokenCodec
	Directory     auth.UserDirectory
	Service       *auth.AuthenticationService
	Authenticator *auth.RequestAuthenticator

	db *bun.DB
}

// Option customizes New
type Option func(*options)

type options struct {
	encoder  auth.PasswordEncoder
	activity auth.ActivitySink
}

// WithPasswordEncoder replaces the bcrypt encoder, tests use a cheap cost
func WithPasswordEncoder(encoder auth.PasswordEncoder) Option {
	return func(o *options) { o.encoder = encoder }
}

// WithActivitySink routes auth events to sink
func WithActivitySink(sink auth.ActivitySink) Option {
	return func(o *options) { o.activity = sink }
}

// New wires directory, codec, service and HTTP routes from cfg
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Server, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	zlog := logutil.GetOrDefault(ctx)
	logger := logutil.NewAdapter(zlog)

	if o.encoder == nil {
		o.encoder = auth.NewBcryptPasswordEncoder()
	}
	if o.activity == nil {
		o.activity = LogActivitySink(zlog)
	}

	s := &Server{}

	switch cfg.Database.Driver {
	case config.DriverMemory:
		s.Directory = auth.NewMemoryDirectory()
	default:
		db, err := OpenDB(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		repos := auth.NewRepositoryManager(db)
		repos.MustValidate()
		if err := repos.Migrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create users schema: %w", err)
		}
		s.db = db
		s.Directory = repos.Users()
	}

	codec, err := auth.NewTokenCodecFromConfig(cfg, auth.WithCodecLogger(logger))
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Codec = codec

	manager := auth.NewUserProvider(s.Directory, o.encoder).WithLogger(logger)

	s.Service = auth.NewAuthenticationService(s.Directory, o.encoder, manager, codec).
		WithLogger(logger).
		WithActivitySink(o.activity).
		WithHashid(cfg.Database.Hashid)

	s.Authenticator = auth.NewRequestAuthenticator(codec, s.Directory).
		WithLogger(logger).
		WithActivitySink(o.activity)

	errorHandler := auth.NewErrorHandler(logger)

	s.App = fiber.New(fiber.Config{
		AppName:               "tokenauth",
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})

	api := s.App.Group(APIPrefix, jwtware.New(jwtware.Config{
		Authenticator: s.Authenticator,
		ErrorHandler:  errorHandler,
	}))

	controller := auth.NewAuthController(s.Service,
		auth.WithControllerLogger(logger),
		auth.WithControllerErrorHandler(errorHandler),
	)
	auth.RegisterAuthRoutes(api, controller, jwtware.RequireAuthenticated(errorHandler))

	return s, nil
}

// Close releases the database handle, if any
func (s *Server) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// OpenDB opens a bun handle on the sqlite dsn
func OpenDB(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// in memory sqlite databases live as long as one connection
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// LogActivitySink writes auth events as structured log lines
func LogActivitySink(logger zerolog.Logger) auth.ActivitySink {
	return auth.ActivitySinkFunc(func(_ context.Context, event auth.ActivityEvent) error {
		record := activitymap.Normalize(event)

		level := zerolog.InfoLevel
		switch event.EventType {
		case auth.ActivityEventLoginFailure, auth.ActivityEventRegisterFailure, auth.ActivityEventRequestTokenRejected:
			level = zerolog.WarnLevel
		}

		logger.WithLevel(level).
			Str("event", record.Verb).
			Str("actor_id", record.ActorID).
			Str("identifier", record.ObjectID).
			Str("channel", record.Channel).
			Interface("metadata", record.Metadata).
			Time("occurred_at", record.OccurredAt).
			Msg("auth activity")
		return nil
	})
}
