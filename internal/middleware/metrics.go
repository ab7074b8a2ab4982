package middleware

import (
	"strconv"
	"time"

	"rushivan/internal/metrics"

	"github.com/labstack/echo/v4"
)

// ルートのテンプレート単位で件数と処理時間を数える
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}
			metrics.ObserveHTTP(c.Request().Method, path, strconv.Itoa(c.Response().Status), time.Since(start).Seconds())
			return nil
		}
	}
}
