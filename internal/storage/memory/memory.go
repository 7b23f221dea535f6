package memory

import (
	"context"
	"sync"

	"github.com/antonminaichev/mediexpress/internal/storage"
	"github.com/antonminaichev/mediexpress/internal/types/user"
)

// Storage keeps everything in process memory. Values are copied on the way in
// and out so callers cannot mutate stored state.
type Storage struct {
	mu     sync.RWMutex
	blobs  map[string][]byte
	users  map[string]user.User
	nextID int64
}

func New() *Storage {
	return &Storage{
		blobs: make(map[string][]byte),
		users: make(map[string]user.User),
	}
}

func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *Storage) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = append([]byte(nil), value...)
	return nil
}

func (s *Storage) Create(ctx context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[u.Email]; exists {
		return storage.ErrUserExists
	}
	s.nextID++
	u.ID = s.nextID
	s.users[u.Email] = *u
	return nil
}

func (s *Storage) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[email]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &u, nil
}

func (s *Storage) Ping(ctx context.Context) error { return nil }

func (s *Storage) Close() error { return nil }
