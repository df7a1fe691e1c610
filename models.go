package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the user model
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,type:uuid" json:"id,omitempty"`
	FirstName     string     `bun:"first_name,notnull" json:"first_name,omitempty"`
	LastName      string     `bun:"last_name,notnull" json:"last_name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	Role          UserRole   `bun:"user_role,notnull" json:"user_role,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at,omitempty"`
}

var _ Principal = (*User)(nil)

// Identifier returns the email, which is the token subject
func (u *User) Identifier() string {
	return u.Email
}

// Authorities returns the authorities granted by the user role
func (u *User) Authorities() []string {
	return u.Role.Authorities()
}

func (u *User) GetPasswordHash() string {
	return u.PasswordHash
}

// Clone returns a copy so callers can not mutate directory state
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

func prepareUserDefaults(u *User) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	now := time.Now()
	if u.CreatedAt == nil {
		u.CreatedAt = &now
	}
	if u.UpdatedAt == nil {
		u.UpdatedAt = &now
	}
}
