package server

import (
	"github.com/putrairawan992/tradoora-b2b/internal/config"
	"github.com/putrairawan992/tradoora-b2b/internal/handler"
	"github.com/putrairawan992/tradoora-b2b/internal/repository"

	"github.com/labstack/echo/v4"
)

// 全ハンドラ
type Handlers struct {
	Auth            *handler.AuthHandler
	AdminUser       *handler.AdminUserHandler
	Product         *handler.ProductHandler
	AdminProduct    *handler.AdminProductHandler
	Cart            *handler.CartHandler
	Review          *handler.ReviewHandler
	Transaction     *handler.TransactionHandler
	AdminOrder      *handler.AdminOrderHandler
	AdminAudit      *handler.AdminAuditHandler
	PaymentCallback *handler.PaymentCallbackHandler
}

func RegisterRoutes(e *echo.Echo, h Handlers, cfg config.Config, userRepo repository.UserRepository) {
	// 公開
	h.Product.RegisterRoutes(e)
	h.PaymentCallback.RegisterRoutes(e)

	// 一部 JWT
	h.Auth.RegisterRoutes(e, cfg, userRepo)
	h.Review.RegisterRoutes(e, cfg, userRepo)

	// JWT必須
	h.Cart.RegisterRoutes(e, cfg, userRepo)
	h.Transaction.RegisterRoutes(e, cfg, userRepo)

	// ADMIN
	h.AdminProduct.RegisterRoutes(e, cfg, userRepo)
	h.AdminOrder.RegisterRoutes(e, cfg, userRepo)
	h.AdminAudit.RegisterRoutes(e, cfg, userRepo)
	h.AdminUser.RegisterRoutes(e, cfg, userRepo)
}
