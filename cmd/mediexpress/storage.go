package main

import (
	"context"
	"fmt"

	"github.com/antonminaichev/mediexpress/internal/storage"
	"github.com/antonminaichev/mediexpress/internal/storage/file"
	"github.com/antonminaichev/mediexpress/internal/storage/memory"
	pgstorage "github.com/antonminaichev/mediexpress/internal/storage/postgres"
	"github.com/antonminaichev/mediexpress/internal/storage/redis"
)

type backend struct {
	blobs storage.BlobStore
	users storage.UserRepository
	ping  func(ctx context.Context) error
	close func() error
}

func noop() error { return nil }

func openBackend(ctx context.Context, cfg *Config) (*backend, error) {
	switch cfg.StorageBackend {
	case "memory":
		m := memory.New()
		return &backend{blobs: m, users: m, ping: m.Ping, close: m.Close}, nil
	case "file":
		fs, err := file.New(cfg.StorageDir)
		if err != nil {
			return nil, err
		}
		return &backend{blobs: fs, users: storage.NewBlobUsers(fs), close: noop}, nil
	case "redis":
		rs, err := redis.Dial(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		return &backend{blobs: rs, users: storage.NewBlobUsers(rs), ping: rs.Ping, close: rs.Close}, nil
	case "postgres":
		if cfg.DatabaseURI == "" {
			return nil, fmt.Errorf("postgres backend needs DATABASE_URI")
		}
		pg, err := pgstorage.NewPostgresStorage(cfg.DatabaseURI)
		if err != nil {
			return nil, err
		}
		return &backend{blobs: pg, users: pg, ping: pg.Ping, close: pg.Close}, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
