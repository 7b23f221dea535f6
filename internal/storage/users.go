package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/antonminaichev/mediexpress/internal/types/user"
)

// UsersKey is the blob BlobUsers keeps its records in.
const UsersKey = "mediexpress_users_v1"

// BlobUsers is a UserRepository for backends that only hold blobs (file, redis).
// All users live in one JSON document keyed by lowercased email.
type BlobUsers struct {
	blobs BlobStore
	mu    sync.Mutex
}

func NewBlobUsers(blobs BlobStore) *BlobUsers {
	return &BlobUsers{blobs: blobs}
}

// stored users carry their hash, which user.User hides from JSON
type storedUser struct {
	user.User
	PasswordHash string `json:"passwordHash"`
}

type userDoc struct {
	NextID int64                 `json:"nextId"`
	Users  map[string]storedUser `json:"users"`
}

func (b *BlobUsers) load(ctx context.Context) (map[string]storedUser, int64, error) {
	raw, err := b.blobs.Get(ctx, UsersKey)
	if errors.Is(err, ErrNotFound) {
		return map[string]storedUser{}, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read users: %w", err)
	}
	var doc userDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, 0, fmt.Errorf("decode users: %w", err)
	}
	if doc.Users == nil {
		doc.Users = map[string]storedUser{}
	}
	return doc.Users, doc.NextID, nil
}

func (b *BlobUsers) Create(ctx context.Context, u *user.User) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	users, nextID, err := b.load(ctx)
	if err != nil {
		return err
	}
	email := strings.ToLower(u.Email)
	if _, exists := users[email]; exists {
		return ErrUserExists
	}
	nextID++
	u.ID = nextID
	users[email] = storedUser{User: *u, PasswordHash: u.PasswordHash}

	raw, err := json.Marshal(userDoc{NextID: nextID, Users: users})
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}
	return b.blobs.Put(ctx, UsersKey, raw)
}

func (b *BlobUsers) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	users, _, err := b.load(ctx)
	if err != nil {
		return nil, err
	}
	su, ok := users[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	u := su.User
	u.PasswordHash = su.PasswordHash
	return &u, nil
}
