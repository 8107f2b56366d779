package handler

import (
	"net/http"

	"github.com/putrairawan992/tradoora-b2b/internal/config"
	"github.com/putrairawan992/tradoora-b2b/internal/middleware"
	"github.com/putrairawan992/tradoora-b2b/internal/repository"
	"github.com/putrairawan992/tradoora-b2b/internal/usecase"

	"github.com/labstack/echo/v4"
)

// ログインユーザー自身のカート。決済が PAID になるとその商品の行は消える
type CartHandler struct {
	uc *usecase.CartUsecase
}

func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type AddCartRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Qty       int64  `json:"qty"`
}

type UpdateCartItemRequest struct {
	Qty int64 `json:"qty"`
}

func (h *CartHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/cart", middleware.AuthJWT(cfg), middleware.TokenVersionGuard(userRepo))

	g.GET("", withUser(h.getCart))
	g.POST("", withUser(h.addToCart))
	g.DELETE("", withUser(h.clear))
	g.GET("/count", withUser(h.count))
	g.GET("/exists/:productId", withUser(h.exists))
	g.PATCH("/:id", withUser(h.patchItem))
	g.DELETE("/:id", withUser(h.deleteItem))
}

func (h *CartHandler) getCart(c echo.Context, userID string) error {
	out, err := h.uc.GetCart(c.Request().Context(), userID)
	return respond(c, out, err)
}

func (h *CartHandler) addToCart(c echo.Context, userID string) error {
	var req AddCartRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	out, err := h.uc.AddToCart(c.Request().Context(), userID, usecase.AddCartInput{ProductID: req.ProductID, Qty: req.Qty})
	return respond(c, out, err)
}

// qty<=0 はusecase側で400
func (h *CartHandler) patchItem(c echo.Context, userID string) error {
	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	out, err := h.uc.UpdateCartItem(c.Request().Context(), userID, c.Param("id"), usecase.UpdateCartItemInput{Qty: req.Qty})
	return respond(c, out, err)
}

func (h *CartHandler) deleteItem(c echo.Context, userID string) error {
	out, err := h.uc.DeleteCartItem(c.Request().Context(), userID, c.Param("id"))
	return respond(c, out, err)
}

func (h *CartHandler) clear(c echo.Context, userID string) error {
	n, err := h.uc.ClearCart(c.Request().Context(), userID)
	return respond(c, map[string]any{"message": "cart cleared", "deleted": n}, err)
}

func (h *CartHandler) count(c echo.Context, userID string) error {
	n, err := h.uc.CountItems(c.Request().Context(), userID)
	return respond(c, map[string]int64{"count": n}, err)
}

func (h *CartHandler) exists(c echo.Context, userID string) error {
	found, err := h.uc.Exists(c.Request().Context(), userID, c.Param("productId"))
	return respond(c, map[string]bool{"exists": found}, err)
}
