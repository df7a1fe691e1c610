package auth

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
)

// RegisterRequest payload
type RegisterRequest struct {
	FirstName string `json:"firstName" form:"first_name"`
	LastName  string `json:"lastName" form:"last_name"`
	Email     string `json:"email" form:"email"`
	Password  string `json:"password" form:"password"`
}

// Validate will run validation rules
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required),
		validation.Field(&r.LastName, validation.Required),
		validation.Field(&r.Email, validation.Required, is.Email),
		// bcrypt ignores everything past 72 bytes
		validation.Field(&r.Password, validation.Required, validation.Length(1, 72)),
	)
}

// AuthenticateRequest payload
type AuthenticateRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Validate will run validation rules
func (r AuthenticateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// AuthenticationResponse carries the issued token
type AuthenticationResponse struct {
	Token string `json:"token"`
}

// AuthenticationService registers principals and logs them in, issuing
// a token on success.
type AuthenticationService struct {
	directory       UserDirectory
	encoder         PasswordEncoder
	manager         AuthenticationManager
	tokens          TokenIssuer
	logger          Logger
	activitySink    ActivitySink
	claimsDecorator ClaimsDecorator
	useHashid       bool
}

// NewAuthenticationService returns a new AuthenticationService
func NewAuthenticationService(directory UserDirectory, encoder PasswordEncoder, manager AuthenticationManager, tokens TokenIssuer) *AuthenticationService {
	return &AuthenticationService{
		directory:       directory,
		encoder:         encoder,
		manager:         manager,
		tokens:          tokens,
		logger:          defLogger{},
		activitySink:    noopActivitySink{},
		claimsDecorator: RoleClaimsDecorator,
	}
}

func (s *AuthenticationService) WithLogger(logger Logger) *AuthenticationService {
	s.logger = normalizeLogger(logger)
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *AuthenticationService) WithActivitySink(sink ActivitySink) *AuthenticationService {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// WithClaimsDecorator configures a ClaimsDecorator for extra token claims.
func (s *AuthenticationService) WithClaimsDecorator(decorator ClaimsDecorator) *AuthenticationService {
	s.claimsDecorator = normalizeClaimsDecorator(decorator)
	return s
}

// WithHashid derives user IDs from the normalized email so the same
// principal gets the same ID across directories.
func (s *AuthenticationService) WithHashid(enabled bool) *AuthenticationService {
	s.useHashid = enabled
	return s
}

// Register creates a USER principal and returns a token for it
func (s *AuthenticationService) Register(ctx context.Context, req RegisterRequest) (*AuthenticationResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, invalidRequest(err, "invalid registration request")
	}

	hash, err := s.encoder.Encode(req.Password)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	user := &User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        NormalizeIdentifier(req.Email),
		PasswordHash: hash,
		Role:         RoleUser,
	}

	if s.useHashid {
		if id, err := hashid.NewUUID(user.Email); err == nil {
			user.ID = id
		} else {
			s.logger.Warn("hashid generation failed, using random id", "error", err)
		}
	}

	saved, err := s.directory.Save(ctx, user)
	if err != nil {
		s.emit(ctx, ActivityEventRegisterFailure, user.Email, err)
		if IsDuplicateIdentifierError(err) {
			return nil, err
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not create user")
	}

	token, err := s.issueToken(ctx, saved)
	if err != nil {
		s.emit(ctx, ActivityEventRegisterFailure, saved.Identifier(), err)
		return nil, err
	}

	s.emit(ctx, ActivityEventRegisterSuccess, saved.Identifier(), nil)

	return &AuthenticationResponse{Token: token}, nil
}

// Authenticate verifies credentials and returns a token
func (s *AuthenticationService) Authenticate(ctx context.Context, req AuthenticateRequest) (*AuthenticationResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, invalidRequest(err, "invalid authentication request")
	}

	identifier := NormalizeIdentifier(req.Email)

	if err := s.manager.Verify(ctx, identifier, req.Password); err != nil {
		s.logger.Info("Authenticate verify credentials error", "identifier", identifier, "error", err)
		s.emit(ctx, ActivityEventLoginFailure, identifier, err)
		if IsInvalidCredentialsError(err) {
			return nil, err
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to verify credentials")
	}

	user, err := s.directory.FindByIdentifier(ctx, identifier)
	if err != nil || user == nil {
		s.logger.Error("Authenticate principal lookup failed after verification", "identifier", identifier, "error", err)
		s.emit(ctx, ActivityEventLoginFailure, identifier, err)
		if err == nil || IsPrincipalNotFoundError(err) {
			return nil, cloneWithCause(ErrPrincipalNotFound, err, map[string]any{"identifier": identifier})
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load principal")
	}

	token, err := s.issueToken(ctx, user)
	if err != nil {
		s.emit(ctx, ActivityEventLoginFailure, identifier, err)
		return nil, err
	}

	s.emit(ctx, ActivityEventLoginSuccess, identifier, nil)

	return &AuthenticationResponse{Token: token}, nil
}

func (s *AuthenticationService) issueToken(ctx context.Context, principal Principal) (string, error) {
	extra := map[string]any{}
	if err := normalizeClaimsDecorator(s.claimsDecorator).Decorate(ctx, principal, extra); err != nil {
		s.logger.Error("claims decorator failed", "error", err)
		return "", err
	}
	return s.tokens.Issue(principal.Identifier(), extra)
}

func (s *AuthenticationService) emit(ctx context.Context, eventType ActivityEventType, identifier string, err error) {
	metadata := map[string]any{}
	if err != nil {
		metadata["error"] = err.Error()
	}
	recordActivity(ctx, s.activitySink, s.logger, ActivityEvent{
		EventType:  eventType,
		Identifier: identifier,
		Metadata:   metadata,
	})
}

func invalidRequest(err error, message string) error {
	return goerrors.Wrap(err, goerrors.CategoryValidation, message).
		WithTextCode(TextCodeInvalidRequest).
		WithCode(goerrors.CodeBadRequest).
		WithMetadata(map[string]any{"validation": err.Error()})
}
