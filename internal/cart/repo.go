package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/antonminaichev/mediexpress/internal/storage"
	"github.com/antonminaichev/mediexpress/internal/types/cart"
	"github.com/antonminaichev/mediexpress/internal/types/order"
)

const KeyPrefix = "mediexpress_cart_v1:"

func Key(userID int64) string {
	return fmt.Sprintf("%s%d", KeyPrefix, userID)
}

// Repository stores one cart blob per user. Unreadable carts load as empty.
type Repository struct {
	blobs storage.BlobStore
	log   *zap.Logger
}

func NewRepository(blobs storage.BlobStore, log *zap.Logger) *Repository {
	if log == nil {
		log = zap.NewNop()
	}
	return &Repository{blobs: blobs, log: log}
}

func (r *Repository) Load(ctx context.Context, userID int64) cart.Cart {
	raw, err := r.blobs.Get(ctx, Key(userID))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			r.log.Warn("cart storage unavailable, treating as empty", zap.Int64("user_id", userID), zap.Error(err))
		}
		return cart.Cart{}
	}
	var c cart.Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		r.log.Warn("malformed cart, treating as empty", zap.Int64("user_id", userID), zap.Error(err))
		return cart.Cart{}
	}
	return c
}

func (r *Repository) Save(ctx context.Context, userID int64, c cart.Cart) error {
	if c.Items == nil {
		c.Items = []order.Item{}
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := r.blobs.Put(ctx, Key(userID), raw); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}
