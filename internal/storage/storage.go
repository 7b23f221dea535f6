package storage

import (
	"context"
	"errors"

	"github.com/antonminaichev/mediexpress/internal/types/user"
)

var (
	// ErrNotFound is returned by BlobStore.Get for a key that was never written.
	ErrNotFound = errors.New("storage: not found")
	// ErrUserExists is returned by UserRepository.Create for a duplicate email.
	ErrUserExists = errors.New("storage: user already exists")
)

// BlobStore holds opaque values by key, the way browser local storage does.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// UserRepository stores registered customers.
type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	FindByEmail(ctx context.Context, email string) (*user.User, error)
}

// Storage combines both repositories behind one connection.
type Storage interface {
	BlobStore
	UserRepository

	Ping(ctx context.Context) error
	Close() error
}
