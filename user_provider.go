package auth

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

// UserProvider is the AuthenticationManager backed by a UserDirectory and
// a PasswordEncoder
type UserProvider struct {
	store   UserDirectory
	encoder PasswordEncoder
	logger  Logger
}

var _ AuthenticationManager = (*UserProvider)(nil)

// NewUserProvider will create a new UserProvider
func NewUserProvider(store UserDirectory, encoder PasswordEncoder) *UserProvider {
	return &UserProvider{
		store:   store,
		encoder: encoder,
		logger:  defLogger{},
	}
}

func (u *UserProvider) WithLogger(l Logger) *UserProvider {
	u.logger = normalizeLogger(l)
	return u
}

// Verify finds the user and compares the password against its hash.
// Unknown identifiers and wrong passwords return the same error.
func (u *UserProvider) Verify(ctx context.Context, identifier, password string) error {
	user, err := u.store.FindByIdentifier(ctx, identifier)
	if err != nil {
		if IsPrincipalNotFoundError(err) {
			return cloneWithCause(ErrInvalidCredentials, nil, nil)
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user during verification")
	}

	if !u.encoder.Matches(password, user.GetPasswordHash()) {
		u.logger.Debug("UserProvider password mismatch", "identifier", identifier)
		return cloneWithCause(ErrInvalidCredentials, nil, nil)
	}

	return nil
}
