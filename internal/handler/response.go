package handler

import (
	"errors"
	"net/http"

	"github.com/putrairawan992/tradoora-b2b/internal/config"
	"github.com/putrairawan992/tradoora-b2b/internal/middleware"
	"github.com/putrairawan992/tradoora-b2b/internal/repository"
	"github.com/putrairawan992/tradoora-b2b/internal/usecase"
	"github.com/putrairawan992/tradoora-b2b/internal/validator"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse は { message: string } の形
type SuccessResponse struct {
	Message string `json:"message"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		if he.Err != nil || he.Status >= http.StatusInternalServerError {
			// 原因はログにだけ出す
			middleware.LoggerFrom(c).ErrorContext(c.Request().Context(), "request failed",
				"status", he.Status, "err", err)
		}
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	middleware.LoggerFrom(c).ErrorContext(c.Request().Context(), "unhandled error", "err", err)
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// Bind + Validate。失敗時は400を書いて false を返す
func bindAndValidate(c echo.Context, req interface{}) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		msg := "invalid body"
		if errors.Is(err, validator.ErrInvalidInput) {
			msg = err.Error()
		}
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
	}
	return true, nil
}

//middleware.AuthJWT が c.Set("user_id", string) した値を取り出す

func getUserIDFromContext(c echo.Context) (string, bool) {
	id, ok := c.Get(middleware.CtxUserIDKey).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// page / limit を読む。未指定ならデフォルト
func pageParams(c echo.Context, defaultLimit int) (page, limit int, err error) {
	page, limit = 1, defaultLimit
	err = echo.QueryParamsBinder(c).
		Int("page", &page).
		Int("limit", &limit).
		BindError()
	return page, limit, err
}

// QueryParamsBinder の失敗を 400 に
func writeQueryError(c echo.Context, err error) error {
	var be *echo.BindingError
	if errors.As(err, &be) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + be.Field})
	}
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query"})
}

// JWT で入った user_id を取り出してから fn を呼ぶ
func withUser(fn func(c echo.Context, userID string) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, ok := getUserIDFromContext(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		}
		return fn(c, userID)
	}
}

// usecaseの戻り値をそのまま200で返す
func respond[T any](c echo.Context, v T, err error) error {
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

// /admin 配下: JWT + token_version一致 + ADMIN
func adminGroup(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) *echo.Group {
	return e.Group("/admin",
		middleware.AuthJWT(cfg),
		middleware.TokenVersionGuard(userRepo),
		middleware.AdminRoleGuard(),
	)
}
