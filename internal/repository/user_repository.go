package repository

import (
	"context"
	"errors"

	"github.com/putrairawan992/tradoora-b2b/internal/domain/model"
)

var ErrUserNotFound = errors.New("user not found")

// 会員と認証まわりの永続化。
// Find系は該当なしを (nil, nil) で返す。
type UserRepository interface {
	// email の重複は ErrDuplicate
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// last_login_at, is_active, role など。token_version は書かない
	Update(ctx context.Context, user *model.User) error
	// 対象がいなければ ErrUserNotFound
	IncrementTokenVersion(ctx context.Context, userID string) error
}
