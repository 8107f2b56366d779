package middleware

import (
	"github.com/putrairawan992/tradoora-b2b/internal/domain/model"

	"github.com/labstack/echo/v4"
)

// AdminRoleGuard は TokenVersionGuard の後ろに置く（roleはDBの値に差し替え済み）。
func AdminRoleGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch role, _ := c.Get(CtxUserRoleKey).(string); model.Role(role) {
			case "":
				return unauthorized(c)
			case model.RoleAdmin:
				return next(c)
			default:
				return forbidden(c, "admin only")
			}
		}
	}
}
