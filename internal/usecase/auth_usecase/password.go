package auth

import (
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// 辞書攻撃で真っ先に試される値
var commonPasswords = map[string]struct{}{
	"password": {}, "password123": {}, "123456": {}, "12345678": {}, "1234567890": {},
	"qwerty": {}, "qwertyuiop": {}, "letmein": {}, "admin": {}, "admin123": {},
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
}

type PasswordVerifier interface {
	Verify(plain, hashed string) bool
}

func checkPassword(p string) error {
	if len(p) < minPasswordLength {
		return ErrPasswordTooShort
	}
	if _, weak := commonPasswords[strings.ToLower(strings.TrimSpace(p))]; weak {
		return ErrWeakPassword
	}
	return nil
}

// 表示名付き（"Budi <budi@x>"）は不可
func normalizeEmail(raw string) (string, bool) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", false
	}
	return email, true
}

// BcryptPasswordHasher は cost<=0 なら bcrypt.DefaultCost。
type BcryptPasswordHasher struct {
	cost int
}

func NewBcryptPasswordHasher(cost int) *BcryptPasswordHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptPasswordHasher{cost: cost}
}

func (h *BcryptPasswordHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	return string(b), err
}

type BcryptPasswordVerifier struct{}

func NewBcryptPasswordVerifier() *BcryptPasswordVerifier {
	return &BcryptPasswordVerifier{}
}

func (BcryptPasswordVerifier) Verify(plain, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
