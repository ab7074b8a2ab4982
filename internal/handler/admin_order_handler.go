package handler

import (
	"net/http"

	"rushivan/internal/middleware"
	"rushivan/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminOrderHandler struct {
	uc *usecase.AdminOrderUsecase
}

func NewAdminOrderHandler(uc *usecase.AdminOrderUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc}
}

type AdminUpdateOrderStatusRequest struct {
	OrderStatus string `json:"order_status" validate:"required"`
}

type AuditLogQuery struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

func (h *AdminOrderHandler) RegisterRoutes(e *echo.Echo, jwtSecret string) {
	g := e.Group("/admin")
	g.Use(middleware.AuthJWT(jwtSecret))
	g.Use(middleware.AdminRoleGuard())

	g.GET("/orders", h.list)
	g.PATCH("/orders/:id/status", h.updateStatus)
	g.GET("/orders/:id/audit-logs", h.auditLogs)
}

func (h *AdminOrderHandler) list(c echo.Context) error {
	var q ListOrdersQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return writeError(c, usecase.NewValidationError("invalid query", nil))
	}

	out, err := h.uc.List(c.Request().Context(), q.filter())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) updateStatus(c echo.Context) error {
	orderID, err := parseIDParam(c)
	if err != nil {
		return writeError(c, err)
	}

	var req AdminUpdateOrderStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	who := middleware.IdentityFrom(c)
	out, err := h.uc.UpdateStatus(c.Request().Context(), who.UserID, orderID, usecase.AdminUpdateOrderStatusInput{
		OrderStatus: req.OrderStatus,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) auditLogs(c echo.Context) error {
	orderID, err := parseIDParam(c)
	if err != nil {
		return writeError(c, err)
	}

	var q AuditLogQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return writeError(c, usecase.NewValidationError("invalid query", nil))
	}

	logs, err := h.uc.ListAuditLogs(c.Request().Context(), orderID, q.Limit, q.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}
