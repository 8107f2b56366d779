package middleware

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// echo.Context に載せるリクエスト単位の *slog.Logger
const CtxLoggerKey = "logger"

// LoggerFrom は RequestLogger が載せたロガーを返す。無ければ slog.Default()。
func LoggerFrom(c echo.Context) *slog.Logger {
	if l, ok := c.Get(CtxLoggerKey).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}

// RequestLogger はアクセスログを slog に流し、request_id 付きのロガーを context に載せる。
// RequestID の後に置く。
func RequestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	access := accessLog(logger)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		h := access(next)
		return func(c echo.Context) error {
			l := logger
			if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
				l = logger.With("request_id", id)
			}
			c.Set(CtxLoggerKey, l)
			return h(c)
		}
	}
}

func accessLog(logger *slog.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogRoutePath: true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.String("route", v.RoutePath),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
				slog.String("remote_ip", v.RemoteIP),
			}
			level := slog.LevelInfo
			if v.Error != nil {
				attrs = append(attrs, slog.String("err", v.Error.Error()))
				level = slog.LevelError
			} else if v.Status >= 500 {
				level = slog.LevelError
			}
			logger.LogAttrs(context.Background(), level, "request", attrs...)
			return nil
		},
	})
}
