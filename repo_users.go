package auth

import (
	"context"
	"database/sql"
	"fmt"
	"net/mail"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is a UserDirectory backed by bun
type Users struct {
	db *bun.DB
}

var _ UserDirectory = (*Users)(nil)

type identifierOption struct {
	column string
	value  string
}

// NewUsersRepository returns a bun backed directory
func NewUsersRepository(db *bun.DB) *Users {
	return &Users{db: db}
}

// CreateSchema creates the users table if needed
func (a *Users) CreateSchema(ctx context.Context) error {
	return a.CreateSchemaTx(ctx, a.db)
}

func (a *Users) CreateSchemaTx(ctx context.Context, tx bun.IDB) error {
	_, err := tx.NewCreateTable().
		Model((*User)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create users table")
	}
	return nil
}

// FindByIdentifier looks users up by id or email
func (a *Users) FindByIdentifier(ctx context.Context, identifier string) (*User, error) {
	return a.FindByIdentifierTx(ctx, a.db, identifier)
}

func (a *Users) FindByIdentifierTx(ctx context.Context, tx bun.IDB, identifier string) (*User, error) {
	for _, opt := range resolveUserIdentifier(identifier) {
		record := &User{}
		err := tx.NewSelect().
			Model(record).
			Where(fmt.Sprintf("?TableAlias.%s = ?", opt.column), opt.value).
			Limit(1).
			Scan(ctx)

		if err != nil {
			if goerrors.Is(err, sql.ErrNoRows) {
				continue
			}
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to find user")
		}

		return record, nil
	}

	return nil, cloneWithCause(ErrPrincipalNotFound, nil, map[string]any{
		"identifier": identifier,
	})
}

// Save inserts a new user, the email must be unique
func (a *Users) Save(ctx context.Context, user *User) (*User, error) {
	return a.SaveTx(ctx, a.db, user)
}

func (a *Users) SaveTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	if user == nil {
		return nil, goerrors.New("user must not be nil", goerrors.CategoryBadInput)
	}

	record := user.Clone()
	record.Email = NormalizeIdentifier(record.Email)
	prepareUserDefaults(record)

	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, cloneWithCause(ErrDuplicateIdentifier, err, map[string]any{
				"identifier": record.Email,
			})
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not create user")
	}

	return record, nil
}

// NormalizeIdentifier returns the canonical form of an email identifier
func NormalizeIdentifier(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

func resolveUserIdentifier(identifier string) []identifierOption {
	trimmed := strings.TrimSpace(identifier)
	if trimmed == "" {
		return nil
	}

	options := make([]identifierOption, 0, 2)

	if isUUID(trimmed) {
		options = append(options, identifierOption{
			column: "id",
			value:  trimmed,
		})
	}

	if isEmail(trimmed) {
		options = append(options, identifierOption{
			column: "email",
			value:  NormalizeIdentifier(trimmed),
		})
	}

	return options
}

func isEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

func isUUID(identifier string) bool {
	_, err := uuid.Parse(identifier)
	return err == nil
}

// sqlite reports "UNIQUE constraint failed", postgres "duplicate key value"
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
