package handler

import (
	"net/http"

	"rushivan/internal/middleware"
	repo "rushivan/internal/repository"
	"rushivan/internal/usecase"

	"github.com/labstack/echo/v4"
)

type CustomerOrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewCustomerOrderHandler(uc *usecase.OrderUsecase) *CustomerOrderHandler {
	return &CustomerOrderHandler{uc: uc}
}

type ListOrdersQuery struct {
	Page          int    `query:"page"`
	Limit         int    `query:"limit"`
	PaymentStatus string `query:"payment_status"`
	OrderStatus   string `query:"order_status"`
	CustomerID    *int64 `query:"customer_id"`
}

func (q ListOrdersQuery) filter() repo.OrderListFilter {
	return repo.OrderListFilter{
		Page:          q.Page,
		Limit:         q.Limit,
		CustomerID:    q.CustomerID,
		PaymentStatus: q.PaymentStatus,
		OrderStatus:   q.OrderStatus,
	}
}

func (h *CustomerOrderHandler) RegisterRoutes(e *echo.Echo, jwtSecret string) {
	g := e.Group("/customer")
	g.Use(middleware.AuthJWT(jwtSecret))
	g.Use(middleware.CustomerRoleGuard())

	g.GET("/orders", h.list)
}

func (h *CustomerOrderHandler) list(c echo.Context) error {
	var q ListOrdersQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return writeError(c, usecase.NewValidationError("invalid query", nil))
	}

	//customer_idは自分に固定される
	out, err := h.uc.ListMyOrders(c.Request().Context(), middleware.IdentityFrom(c), q.filter())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
