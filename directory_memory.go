package auth

import (
	"context"
	"sync"
)

// MemoryDirectory is an in process UserDirectory keyed by canonical email
type MemoryDirectory struct {
	mu    sync.RWMutex
	users map[string]*User
}

var _ UserDirectory = (*MemoryDirectory)(nil)

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{users: map[string]*User{}}
}

func (d *MemoryDirectory) FindByIdentifier(ctx context.Context, identifier string) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := NormalizeIdentifier(identifier)

	d.mu.RLock()
	defer d.mu.RUnlock()

	if user, ok := d.users[key]; ok {
		return user.Clone(), nil
	}

	for _, user := range d.users {
		if user.ID.String() == key {
			return user.Clone(), nil
		}
	}

	return nil, cloneWithCause(ErrPrincipalNotFound, nil, map[string]any{
		"identifier": identifier,
	})
}

func (d *MemoryDirectory) Save(ctx context.Context, user *User) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidRequest
	}

	record := user.Clone()
	record.Email = NormalizeIdentifier(record.Email)
	prepareUserDefaults(record)

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.users[record.Email]; exists {
		return nil, cloneWithCause(ErrDuplicateIdentifier, nil, map[string]any{
			"identifier": record.Email,
		})
	}

	d.users[record.Email] = record
	return record.Clone(), nil
}
