package handler

import (
	"context"
	"net/http"

	"github.com/putrairawan992/tradoora-b2b/internal/config"
	"github.com/putrairawan992/tradoora-b2b/internal/middleware"
	"github.com/putrairawan992/tradoora-b2b/internal/repository"
	"github.com/putrairawan992/tradoora-b2b/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// /transactions で使うusecaseの約束
type TransactionService interface {
	Checkout(ctx context.Context, in usecase.CheckoutInput) (usecase.CheckoutOutput, error)
	ResumeCheckout(ctx context.Context, userID, orderRef string) (usecase.CheckoutOutput, error)
	ListByUser(ctx context.Context, userID string) ([]usecase.OrderOutput, error)
	GetByOrderRef(ctx context.Context, userID, orderRef string) (usecase.OrderOutput, error)
}

type TransactionHandler struct {
	uc TransactionService
}

func NewTransactionHandler(uc TransactionService) *TransactionHandler {
	return &TransactionHandler{uc: uc}
}

type CheckoutRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Qty       int64           `json:"qty" validate:"gt=0"`
	Price     decimal.Decimal `json:"price"`
}

type checkoutResponse struct {
	Message     string              `json:"message"`
	Order       usecase.OrderOutput `json:"order"`
	SnapToken   string              `json:"snap_token"`
	RedirectURL string              `json:"redirect_url"`
}

func (h *TransactionHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/transactions", middleware.AuthJWT(cfg), middleware.TokenVersionGuard(userRepo))

	g.POST("/checkout", h.checkout)
	g.POST("/:orderRef/resume", h.resume)
	g.GET("", h.list)
	g.GET("/:orderRef", h.detail)
}

func (h *TransactionHandler) checkout(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req CheckoutRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	out, err := h.uc.Checkout(c.Request().Context(), usecase.CheckoutInput{
		UserID:    userID,
		ProductID: req.ProductID,
		Qty:       req.Qty,
		Price:     req.Price,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, checkoutResponse{
		Message:     "Transaction created",
		Order:       out.Order,
		SnapToken:   out.SnapToken,
		RedirectURL: out.RedirectURL,
	})
}

func (h *TransactionHandler) resume(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.ResumeCheckout(c.Request().Context(), userID, c.Param("orderRef"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, checkoutResponse{
		Message:     "Payment session renewed",
		Order:       out.Order,
		SnapToken:   out.SnapToken,
		RedirectURL: out.RedirectURL,
	})
}

func (h *TransactionHandler) list(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *TransactionHandler) detail(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.GetByOrderRef(c.Request().Context(), userID, c.Param("orderRef"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
