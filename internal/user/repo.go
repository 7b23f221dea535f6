package user

import (
	"context"

	"github.com/antonminaichev/mediexpress/internal/types/user"
)

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	FindByEmail(ctx context.Context, email string) (*user.User, error)
}
