package handler

import (
	"net/http"
	"strings"

	"github.com/putrairawan992/tradoora-b2b/internal/config"
	"github.com/putrairawan992/tradoora-b2b/internal/repository"
	auth "github.com/putrairawan992/tradoora-b2b/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

type AdminUserHandler struct {
	session *auth.SessionUsecase
}

func NewAdminUserHandler(session *auth.SessionUsecase) *AdminUserHandler {
	return &AdminUserHandler{session: session}
}

func (h *AdminUserHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	adminGroup(e, cfg, userRepo).POST("/users/:id/force-logout", h.ForceLogout)
}

// 対象ユーザーの発行済みトークンを全部無効にする
func (h *AdminUserHandler) ForceLogout(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user_id"})
	}
	if err := h.session.Logout(c.Request().Context(), id); err != nil {
		return writeAuthError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "user logged out"})
}
