package auth

import (
	"context"
	"errors"
	"time"

	"github.com/putrairawan992/tradoora-b2b/internal/domain/model"
	"github.com/putrairawan992/tradoora-b2b/internal/repository"
)

var (
	// メール不明とパスワード違いは区別しない
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user is inactive")
)

type AccessTokenIssuer interface {
	Issue(userID string, role model.Role, tokenVersion int, now time.Time) (token string, expiresAt time.Time, err error)
}

type LoginInput struct {
	Email    string
	Password string
}

type JwtAccessToken struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	TokenVersion int    `json:"token_version"`
}

type LoginOutput struct {
	User  model.User     `json:"user"`
	Token JwtAccessToken `json:"token"`
}

type LoginUsecase struct {
	users    repository.UserRepository
	verifier PasswordVerifier
	issuer   AccessTokenIssuer
	clock    Clock
}

func NewLoginUsecase(users repository.UserRepository, verifier PasswordVerifier, issuer AccessTokenIssuer, clock Clock) *LoginUsecase {
	return &LoginUsecase{users: users, verifier: verifier, issuer: issuer, clock: clock}
}

func (u *LoginUsecase) Execute(ctx context.Context, in LoginInput) (LoginOutput, error) {
	user, err := u.authenticate(ctx, in)
	if err != nil {
		return LoginOutput{}, err
	}

	now := u.clock.Now()
	raw, exp, err := u.issuer.Issue(user.ID, user.Role, user.TokenVersion, now)
	if err != nil {
		return LoginOutput{}, err
	}

	user.LastLoginAt = &now
	if err := u.users.Update(ctx, user); err != nil {
		return LoginOutput{}, err
	}

	return LoginOutput{
		User: publicUser(*user),
		Token: JwtAccessToken{
			AccessToken:  raw,
			TokenType:    "Bearer",
			ExpiresIn:    int(exp.Sub(now) / time.Second),
			TokenVersion: user.TokenVersion,
		},
	}, nil
}

// 停止中の判定はパスワード照合の後。照合前に返すと登録有無が漏れる
func (u *LoginUsecase) authenticate(ctx context.Context, in LoginInput) (*model.User, error) {
	email, ok := normalizeEmail(in.Email)
	if !ok {
		return nil, ErrInvalidCredentials
	}
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !u.verifier.Verify(in.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	return user, nil
}
