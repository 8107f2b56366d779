package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/putrairawan992/tradoora-b2b/internal/domain/model"
	"github.com/putrairawan992/tradoora-b2b/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 決済通知を処理するusecaseの約束
type NotificationHandler interface {
	HandleNotification(ctx context.Context, n model.PaymentNotification) (usecase.NotificationResult, error)
}

// POST /midtrans/callback。認証はJWTではなく署名で行う。
type PaymentCallbackHandler struct {
	uc     NotificationHandler
	logger *slog.Logger
}

func NewPaymentCallbackHandler(uc NotificationHandler, logger *slog.Logger) *PaymentCallbackHandler {
	return &PaymentCallbackHandler{uc: uc, logger: logger}
}

type callbackResponse struct {
	Message  string                      `json:"message"`
	OrderRef string                      `json:"order_ref,omitempty"`
	Outcome  usecase.NotificationOutcome `json:"outcome,omitempty"`
	Status   model.OrderStatus           `json:"status,omitempty"`
}

func (h *PaymentCallbackHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/midtrans/callback", h.callback)
}

func (h *PaymentCallbackHandler) callback(c echo.Context) error {
	var n model.PaymentNotification
	if ok, err := bindAndValidate(c, &n); !ok {
		h.logger.Warn("malformed payment notification", "remote_ip", c.RealIP())
		return err
	}

	res, err := h.uc.HandleNotification(c.Request().Context(), n)
	if err != nil {
		// 4xx はゲートウェイが再送しない、5xx は再送する
		h.logger.Warn("payment notification rejected", "order_ref", n.OrderRef, "err", err)
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, callbackResponse{
		Message:  "Callback processed",
		OrderRef: res.OrderRef,
		Outcome:  res.Outcome,
		Status:   res.Status,
	})
}
