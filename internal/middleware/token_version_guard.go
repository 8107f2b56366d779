package middleware

import (
	"github.com/putrairawan992/tradoora-b2b/internal/repository"

	"github.com/labstack/echo/v4"
)

// JWTのtvとDBのtoken_versionを突き合わせる。
// ログアウト（強制ログアウト含む）で番号が進むと、発行済みのトークンはすべて401になる。
func TokenVersionGuard(userRepo repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, _ := c.Get(CtxUserIDKey).(string)
			tv, hasTV := c.Get(CtxTokenVersionKey).(int)
			if id == "" || !hasTV {
				return unauthorized(c)
			}

			u, err := userRepo.FindByID(c.Request().Context(), id)
			switch {
			case err != nil || u == nil:
				return unauthorized(c)
			case !u.IsActive:
				return forbidden(c, "user is inactive")
			case u.TokenVersion != tv:
				return unauthorized(c)
			}

			c.Set(CtxUserRoleKey, string(u.Role))
			return next(c)
		}
	}
}
