package middleware

import (
	"net/http"
	"strings"

	"github.com/putrairawan992/tradoora-b2b/internal/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey       = "user_id"       // string
	CtxUserRoleKey     = "user_role"     // string
	CtxTokenVersionKey = "token_version" // int
)

// アクセストークンの中身。sub=ユーザーID, tv=token_version
type accessClaims struct {
	Role string `json:"role"`
	TV   *int   `json:"tv"`
	jwt.RegisteredClaims
}

// Authorization: Bearer <jwt> を検証して user_id / role / tv を context に載せる。
// 失敗理由は返さず一律 401。
func AuthJWT(cfg config.Config) echo.MiddlewareFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	keyFunc := func(*jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request())
			if !ok {
				return unauthorized(c)
			}

			var claims accessClaims
			token, err := parser.ParseWithClaims(raw, &claims, keyFunc)
			if err != nil || !token.Valid {
				return unauthorized(c)
			}
			if !claims.complete() {
				return unauthorized(c)
			}

			c.Set(CtxUserIDKey, strings.TrimSpace(claims.Subject))
			c.Set(CtxUserRoleKey, claims.Role)
			c.Set(CtxTokenVersionKey, *claims.TV)
			return next(c)
		}
	}
}

// exp無しのトークンは受け付けない
func (a accessClaims) complete() bool {
	return strings.TrimSpace(a.Subject) != "" &&
		a.Role != "" &&
		a.TV != nil && *a.TV >= 0 &&
		a.ExpiresAt != nil
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get(echo.HeaderAuthorization), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

type errorResponse struct {
	Error string `json:"error"`
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
}

func forbidden(c echo.Context, msg string) error {
	return c.JSON(http.StatusForbidden, errorResponse{Error: msg})
}
