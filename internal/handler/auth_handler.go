package handler

import (
	"errors"
	"net/http"

	"github.com/putrairawan992/tradoora-b2b/internal/config"
	"github.com/putrairawan992/tradoora-b2b/internal/middleware"
	"github.com/putrairawan992/tradoora-b2b/internal/repository"
	auth "github.com/putrairawan992/tradoora-b2b/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

// /auth 配下。register と login は公開、me と logout はJWT必須
type AuthHandler struct {
	register *auth.RegisterUserUsecase
	login    *auth.LoginUsecase
	session  *auth.SessionUsecase
}

func NewAuthHandler(register *auth.RegisterUserUsecase, login *auth.LoginUsecase, session *auth.SessionUsecase) *AuthHandler {
	return &AuthHandler{register: register, login: login, session: session}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// auth usecase のエラーとHTTPステータスの対応。
// ログイン失敗はメール不明とパスワード違いを同じ文言にする
var authErrors = []struct {
	err    error
	status int
	msg    string
}{
	{auth.ErrNameRequired, http.StatusBadRequest, ""},
	{auth.ErrInvalidEmailFormat, http.StatusBadRequest, ""},
	{auth.ErrPasswordTooShort, http.StatusBadRequest, ""},
	{auth.ErrWeakPassword, http.StatusBadRequest, ""},
	{auth.ErrEmailAlreadyExists, http.StatusConflict, ""},
	{auth.ErrInvalidCredentials, http.StatusUnauthorized, "invalid email or password"},
	{auth.ErrUserInactive, http.StatusForbidden, ""},
	{repository.ErrUserNotFound, http.StatusNotFound, ""},
}

func writeAuthError(c echo.Context, err error) error {
	for _, m := range authErrors {
		if !errors.Is(err, m.err) {
			continue
		}
		msg := m.msg
		if msg == "" {
			msg = m.err.Error()
		}
		return c.JSON(m.status, ErrorResponse{Error: msg})
	}
	return writeError(c, err)
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)

	authed := []echo.MiddlewareFunc{middleware.AuthJWT(cfg), middleware.TokenVersionGuard(userRepo)}
	g.GET("/me", withUser(h.Me), authed...)
	g.POST("/logout", withUser(h.Logout), authed...)
}

// POST /auth/register -> 201
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	out, err := h.register.Execute(c.Request().Context(), auth.RegisterUserInput(req))
	if err != nil {
		return writeAuthError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

// POST /auth/login -> { user, token }
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	out, err := h.login.Execute(c.Request().Context(), auth.LoginInput(req))
	if err != nil {
		return writeAuthError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AuthHandler) Me(c echo.Context, userID string) error {
	u, err := h.session.Me(c.Request().Context(), userID)
	if err != nil {
		return writeAuthError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *AuthHandler) Logout(c echo.Context, userID string) error {
	if err := h.session.Logout(c.Request().Context(), userID); err != nil {
		return writeAuthError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "logged out"})
}
