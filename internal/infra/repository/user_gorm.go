package repository

import (
	"context"
	"time"

	"github.com/putrairawan992/tradoora-b2b/internal/domain/model"
	repo "github.com/putrairawan992/tradoora-b2b/internal/repository"

	"gorm.io/gorm"
)

type UserGormRepository struct {
	db *gorm.DB
}

func NewUserGormRepository(db *gorm.DB) *UserGormRepository {
	return &UserGormRepository{db: db}
}

var _ repo.UserRepository = (*UserGormRepository)(nil)

func (r *UserGormRepository) Create(ctx context.Context, user *model.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if isUniqueViolation(err) {
		return repo.ErrDuplicate
	}
	return err
}

func (r *UserGormRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *UserGormRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.first(ctx, "id = ?", id)
}

// 見つからなければ nil, nil
func (r *UserGormRepository) first(ctx context.Context, cond string, arg any) (*model.User, error) {
	u := new(model.User)
	switch err := r.db.WithContext(ctx).Where(cond, arg).Take(u).Error; {
	case isNotFound(err):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return u, nil
}

// プロフィール系の列だけ書く。token_version は IncrementTokenVersion 専用
func (r *UserGormRepository) Update(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).
		Model(user).
		Select("name", "email", "password_hash", "role", "is_active", "last_login_at", "updated_at").
		Updates(user).Error
}

func (r *UserGormRepository) IncrementTokenVersion(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		UpdateColumn("token_version", gorm.Expr("token_version + 1"))
	switch {
	case res.Error != nil:
		return res.Error
	case res.RowsAffected == 0:
		return repo.ErrUserNotFound
	}
	return nil
}
