package handler

import (
	"net/http"

	"github.com/putrairawan992/tradoora-b2b/internal/config"
	"github.com/putrairawan992/tradoora-b2b/internal/middleware"
	"github.com/putrairawan992/tradoora-b2b/internal/repository"
	"github.com/putrairawan992/tradoora-b2b/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ReviewHandler struct {
	uc *usecase.ReviewUsecase
}

func NewReviewHandler(uc *usecase.ReviewUsecase) *ReviewHandler {
	return &ReviewHandler{uc: uc}
}

type CreateReviewRequest struct {
	ProductID string  `json:"product_id" validate:"required"`
	Rating    int     `json:"rating" validate:"gte=1,lte=5"`
	Comment   *string `json:"comment"`
}

// 一覧は公開、投稿はログイン必須
func (h *ReviewHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	e.GET("/products/:id/reviews", h.listByProduct)
	e.GET("/reviews", h.listAll)
	e.POST("/reviews", withUser(h.create), middleware.AuthJWT(cfg), middleware.TokenVersionGuard(userRepo))
}

func (h *ReviewHandler) create(c echo.Context, userID string) error {
	var req CreateReviewRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	out, err := h.uc.Create(c.Request().Context(), userID, usecase.CreateReviewInput{
		ProductID: req.ProductID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *ReviewHandler) listByProduct(c echo.Context) error {
	out, err := h.uc.ListByProduct(c.Request().Context(), c.Param("id"))
	return respond(c, out, err)
}

func (h *ReviewHandler) listAll(c echo.Context) error {
	out, err := h.uc.ListAll(c.Request().Context())
	return respond(c, out, err)
}
