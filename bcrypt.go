package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrMismatchedHashAndPassword is returned when the password does not match the hash
var ErrMismatchedHashAndPassword = bcrypt.ErrMismatchedHashAndPassword

// HashPassword will generate a password hash
func HashPassword(password string) (string, error) {
	return hashWithCost(password, passwordHashCost())
}

// ComparePasswordAndHash will validate the given cleartext
// password matches the hashed password
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return err
	}
	return nil
}

func hashWithCost(password string, cost int) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(h), err
}

// BcryptPasswordEncoder implements PasswordEncoder with bcrypt
type BcryptPasswordEncoder struct {
	cost int
}

var _ PasswordEncoder = (*BcryptPasswordEncoder)(nil)

// NewBcryptPasswordEncoder returns an encoder. Costs outside the bcrypt
// range fall back to the default cost.
func NewBcryptPasswordEncoder(cost ...int) *BcryptPasswordEncoder {
	c := passwordHashCost()
	if len(cost) > 0 && cost[0] >= bcrypt.MinCost && cost[0] <= bcrypt.MaxCost {
		c = cost[0]
	}
	return &BcryptPasswordEncoder{cost: c}
}

func (e *BcryptPasswordEncoder) Encode(raw string) (string, error) {
	return hashWithCost(raw, e.cost)
}

func (e *BcryptPasswordEncoder) Matches(raw, hash string) bool {
	if raw == "" || hash == "" {
		return false
	}
	return ComparePasswordAndHash(raw, hash) == nil
}
