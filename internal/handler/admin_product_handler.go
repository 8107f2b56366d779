package handler

import (
	"net/http"

	"github.com/putrairawan992/tradoora-b2b/internal/config"
	"github.com/putrairawan992/tradoora-b2b/internal/repository"
	"github.com/putrairawan992/tradoora-b2b/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// 作成と更新で同じ形。更新は全項目を上書きする
type ProductCreateRequest struct {
	Name                 string          `json:"name" validate:"required"`
	Slug                 string          `json:"slug"`
	SKU                  string          `json:"sku"`
	Description          string          `json:"description"`
	ImageURL             string          `json:"image_url"`
	CategoryID           *string         `json:"category_id"`
	Price                decimal.Decimal `json:"price"`
	StockQuantity        int64           `json:"stock_quantity" validate:"gte=0"`
	MinimumOrderQuantity int64           `json:"minimum_order_quantity" validate:"gte=0"`
}

// 在庫の絶対値。差分は履歴に残る
type InventoryUpdateRequest struct {
	Stock  int64  `json:"stock" validate:"gte=0"`
	Reason string `json:"reason"`
}

// /admin/products と /admin/inventory
type AdminProductHandler struct {
	uc *usecase.ProductUsecase
}

func NewAdminProductHandler(uc *usecase.ProductUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

func (h *AdminProductHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	admin := adminGroup(e, cfg, userRepo)

	admin.POST("/products", withUser(h.createProduct))
	admin.PUT("/products/:id", withUser(h.updateProduct))
	admin.DELETE("/products/:id", withUser(h.deleteProduct))
	admin.PUT("/inventory/:product_id", withUser(h.updateInventory))
}

func (r ProductCreateRequest) toInput() usecase.AdminProductInput {
	return usecase.AdminProductInput{
		Name:                 r.Name,
		Slug:                 r.Slug,
		SKU:                  r.SKU,
		Description:          r.Description,
		ImageURL:             r.ImageURL,
		CategoryID:           r.CategoryID,
		Price:                r.Price,
		StockQuantity:        r.StockQuantity,
		MinimumOrderQuantity: r.MinimumOrderQuantity,
	}
}

func (h *AdminProductHandler) createProduct(c echo.Context, adminID string) error {
	var req ProductCreateRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	p, err := h.uc.AdminCreateProduct(c.Request().Context(), adminID, req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *AdminProductHandler) updateProduct(c echo.Context, adminID string) error {
	var req ProductCreateRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	p, err := h.uc.AdminUpdateProduct(c.Request().Context(), adminID, c.Param("id"), req.toInput())
	return respond(c, p, err)
}

// 論理削除
func (h *AdminProductHandler) deleteProduct(c echo.Context, adminID string) error {
	err := h.uc.AdminDeleteProduct(c.Request().Context(), adminID, c.Param("id"))
	return respond(c, SuccessResponse{Message: "deleted"}, err)
}

func (h *AdminProductHandler) updateInventory(c echo.Context, adminID string) error {
	var req InventoryUpdateRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	err := h.uc.AdminUpdateInventory(c.Request().Context(), adminID, c.Param("product_id"), req.Stock, req.Reason)
	return respond(c, SuccessResponse{Message: "stock updated"}, err)
}
