package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/putrairawan992/tradoora-b2b/internal/config"
	"github.com/putrairawan992/tradoora-b2b/internal/metrics"
	"github.com/putrairawan992/tradoora-b2b/internal/middleware"
	"github.com/putrairawan992/tradoora-b2b/internal/repository"
	"github.com/putrairawan992/tradoora-b2b/internal/validator"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// DBの疎通確認
type Pinger func(ctx context.Context) error

type Deps struct {
	Config   config.Config
	Logger   *slog.Logger
	UserRepo repository.UserRepository
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Ping     Pinger
	Handlers Handlers
}

type healthResponse struct {
	Status string `json:"status"`
	DB     string `json:"db"`
}

// New はミドルウェアとルートを組んだ echo を返す。
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validator.New()

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{d.Config.FrontendURL},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	if d.Metrics != nil {
		e.Use(d.Metrics.Middleware())
	}

	e.GET("/health", health(d.Ping))
	if d.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(metrics.Handler(d.Gatherer)))
	}

	RegisterRoutes(e, d.Handlers, d.Config, d.UserRepo)
	return e
}

func health(ping Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		if ping == nil {
			return c.JSON(http.StatusOK, healthResponse{Status: "ok", DB: "unknown"})
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		if err := ping(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, healthResponse{Status: "degraded", DB: "down"})
		}
		return c.JSON(http.StatusOK, healthResponse{Status: "ok", DB: "up"})
	}
}

// Start はctxが終わるまで待ち、終わったらgracefulに止める。
func Start(ctx context.Context, e *echo.Echo, addr string, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("http server shutting down")
	return e.Shutdown(shutdownCtx)
}
