package middleware

import (
	"net/http"

	"rushivan/internal/usecase"

	"github.com/labstack/echo/v4"
)

// contextに入っているroleがADMINかどうかを確認します。
func AdminRoleGuard() echo.MiddlewareFunc {
	return roleGuard(usecase.RoleAdmin, "admin only")
}

// 顧客向けAPI（自分の注文一覧など）
func CustomerRoleGuard() echo.MiddlewareFunc {
	return roleGuard(usecase.RoleCustomer, "customer only")
}

func roleGuard(want, deny string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(CtxUserRoleKey).(string)
			if !ok || role == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			if role != want {
				return c.JSON(http.StatusForbidden, errorJSON(deny))
			}
			return next(c)
		}
	}
}
