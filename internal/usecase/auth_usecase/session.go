package auth

import (
	"context"

	"github.com/putrairawan992/tradoora-b2b/internal/domain/model"
	"github.com/putrairawan992/tradoora-b2b/internal/repository"
)

// ログイン中ユーザーの取得とログアウト
type SessionUsecase struct {
	userRepo repository.UserRepository
}

func NewSessionUsecase(userRepo repository.UserRepository) *SessionUsecase {
	return &SessionUsecase{userRepo: userRepo}
}

func (u *SessionUsecase) Me(ctx context.Context, userID string) (model.User, error) {
	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		return model.User{}, err
	}
	if user == nil {
		return model.User{}, repository.ErrUserNotFound
	}
	return publicUser(*user), nil
}

// token_versionを上げて発行済みのJWTを全部無効にする
func (u *SessionUsecase) Logout(ctx context.Context, userID string) error {
	return u.userRepo.IncrementTokenVersion(ctx, userID)
}
