package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/putrairawan992/tradoora-b2b/internal/domain/model"
	"github.com/putrairawan992/tradoora-b2b/internal/repository"
)

var (
	ErrNameRequired       = errors.New("name is required")
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	ErrWeakPassword       = errors.New("weak password")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

type IDGenerator interface {
	NewID() string
}

type Clock interface {
	Now() time.Time
}

type RegisterUserInput struct {
	Name     string
	Email    string
	Password string
}

type RegisterUserOutput struct {
	User model.User
}

// 入力を正規化して検査する。返すのは name と email を整えたコピー
func (in RegisterUserInput) normalize() (RegisterUserInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, ErrNameRequired
	}
	email, ok := normalizeEmail(in.Email)
	if !ok {
		return in, ErrInvalidEmailFormat
	}
	in.Email = email
	return in, checkPassword(in.Password)
}

// 新規会員は USER / token_version 0 / 有効 で作る。
type RegisterUserUsecase struct {
	users  repository.UserRepository
	hasher PasswordHasher
	ids    IDGenerator
	clock  Clock
}

func NewRegisterUserUsecase(users repository.UserRepository, hasher PasswordHasher, ids IDGenerator, clock Clock) *RegisterUserUsecase {
	return &RegisterUserUsecase{users: users, hasher: hasher, ids: ids, clock: clock}
}

func (u *RegisterUserUsecase) Execute(ctx context.Context, raw RegisterUserInput) (RegisterUserOutput, error) {
	in, err := raw.normalize()
	if err != nil {
		return RegisterUserOutput{}, err
	}

	taken, err := u.users.FindByEmail(ctx, in.Email)
	switch {
	case err != nil:
		return RegisterUserOutput{}, err
	case taken != nil:
		return RegisterUserOutput{}, ErrEmailAlreadyExists
	}

	hash, err := u.hasher.Hash(in.Password)
	if err != nil {
		return RegisterUserOutput{}, err
	}

	now := u.clock.Now()
	user := model.User{
		ID:           u.ids.NewID(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	// 同時登録は一意制約で落ちる
	if err := u.users.Create(ctx, &user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return RegisterUserOutput{}, ErrEmailAlreadyExists
		}
		return RegisterUserOutput{}, err
	}

	return RegisterUserOutput{User: publicUser(user)}, nil
}

// レスポンス用。ハッシュを落とす
func publicUser(u model.User) model.User {
	u.PasswordHash = ""
	return u
}
