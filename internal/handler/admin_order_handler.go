package handler

import (
	"context"

	"github.com/putrairawan992/tradoora-b2b/internal/config"
	"github.com/putrairawan992/tradoora-b2b/internal/repository"
	"github.com/putrairawan992/tradoora-b2b/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminOrderLister interface {
	ListAll(ctx context.Context, f repository.AdminOrderListFilter) (usecase.OrderListOutput, error)
}

// GET /admin/transactions
type AdminOrderHandler struct {
	uc AdminOrderLister
}

func NewAdminOrderHandler(uc AdminOrderLister) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc}
}

func (h *AdminOrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	admin := adminGroup(e, cfg, userRepo)

	admin.GET("/transactions", h.list)
}

func (h *AdminOrderHandler) list(c echo.Context) error {
	page, limit, err := pageParams(c, 50)
	if err != nil {
		return writeQueryError(c, err)
	}

	var userID *string
	if v := c.QueryParam("user_id"); v != "" {
		userID = &v
	}

	out, err := h.uc.ListAll(c.Request().Context(), repository.AdminOrderListFilter{
		Page:   page,
		Limit:  limit,
		Status: c.QueryParam("status"),
		UserID: userID,
	})
	return respond(c, out, err)
}
