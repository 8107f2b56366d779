package handler

import (
	"context"
	"net/http"

	"github.com/putrairawan992/tradoora-b2b/internal/config"
	"github.com/putrairawan992/tradoora-b2b/internal/domain/model"
	"github.com/putrairawan992/tradoora-b2b/internal/repository"
	"github.com/putrairawan992/tradoora-b2b/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AuditReader interface {
	List(ctx context.Context, in usecase.AuditListInput) (usecase.AuditListOutput, error)
	OrderHistory(ctx context.Context, orderRef string) ([]model.AuditLog, error)
}

// 監査ログの閲覧（ADMIN）
type AdminAuditHandler struct {
	uc AuditReader
}

func NewAdminAuditHandler(uc AuditReader) *AdminAuditHandler {
	return &AdminAuditHandler{uc: uc}
}

func (h *AdminAuditHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := adminGroup(e, cfg, userRepo)
	g.GET("/audit-logs", h.list)
	g.GET("/transactions/:orderRef/history", h.orderHistory)
}

// GET /admin/audit-logs?resource_type=order&resource_id=...&actor_id=...&action=...
func (h *AdminAuditHandler) list(c echo.Context) error {
	page, limit, err := pageParams(c, 50)
	if err != nil {
		return writeQueryError(c, err)
	}

	out, err := h.uc.List(c.Request().Context(), usecase.AuditListInput{
		ResourceType: c.QueryParam("resource_type"),
		ResourceID:   c.QueryParam("resource_id"),
		ActorID:      c.QueryParam("actor_id"),
		Action:       c.QueryParam("action"),
		Page:         page,
		Limit:        limit,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminAuditHandler) orderHistory(c echo.Context) error {
	items, err := h.uc.OrderHistory(c.Request().Context(), c.Param("orderRef"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"order_ref": c.Param("orderRef"),
		"items":     items,
	})
}
