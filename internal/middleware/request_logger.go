package middleware

import (
	"time"

	"rushivan/internal/infra/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const HeaderRequestID = "X-Request-ID"

// リクエストIDを決めてcontextに載せ、1リクエスト1行でログを出す
func RequestLogger(base *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			requestID := req.Header.Get(HeaderRequestID)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			c.Response().Header().Set(HeaderRequestID, requestID)
			c.SetRequest(req.WithContext(logger.WithRequestID(req.Context(), requestID)))

			err := next(c)
			if err != nil {
				//ステータスを確定させてからログに出す
				c.Error(err)
			}

			fields := []zap.Field{
				zap.String("request_id", requestID),
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.String("route", c.Path()),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", c.RealIP()),
				zap.String("user_agent", req.UserAgent()),
			}
			if span := trace.SpanFromContext(c.Request().Context()); span.SpanContext().IsValid() {
				fields = append(fields, zap.String("trace_id", span.SpanContext().TraceID().String()))
			}

			status := c.Response().Status
			switch {
			case status >= 500:
				base.Error("HTTP Request", fields...)
			case status >= 400:
				base.Warn("HTTP Request", fields...)
			default:
				base.Info("HTTP Request", fields...)
			}
			return nil
		}
	}
}
