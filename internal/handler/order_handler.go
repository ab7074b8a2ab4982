package handler

import (
	"net/http"

	"rushivan/internal/middleware"
	"rushivan/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// チェックアウト画面から送られる明細
type PlaceOrderItemRequest struct {
	ProductID      *int64           `json:"product_id" validate:"omitempty,gte=0"`
	VariationID    *int64           `json:"variation_id" validate:"omitempty,gte=0"`
	AttributeName  *string          `json:"attribute_name" validate:"omitempty,max=100"`
	TermName       *string          `json:"term_name" validate:"omitempty,max=100"`
	VariationValue *string          `json:"variation_value" validate:"omitempty,max=100"`
	QuantityValue  *decimal.Decimal `json:"quantity_value" validate:"omitempty,gte=0"`
	Unit           *string          `json:"unit" validate:"omitempty,max=20"`
	SKU            *string          `json:"sku" validate:"omitempty,max=100"`
	ProductName    string           `json:"product_name" validate:"max=255"`
	Quantity       int64            `json:"quantity" validate:"gt=0,lte=100000"`
	UnitPrice      decimal.Decimal  `json:"unit_price" validate:"gte=0"`
	//サーバー側の税率を使うので読み捨て
	GSTRate *decimal.Decimal `json:"gst_rate"`
}

type PlaceOrderRequest struct {
	CustomerName    string           `json:"customer_name" validate:"required,max=255"`
	CustomerEmail   string           `json:"customer_email" validate:"required,email,max=255"`
	CustomerPhone   string           `json:"customer_phone" validate:"required,max=30"`
	CustomerAddress string           `json:"customer_address" validate:"required"`
	CustomerPincode string           `json:"customer_pincode" validate:"required,max=20"`
	TotalAmount     *decimal.Decimal `json:"total_amount" validate:"omitempty,gte=0"`

	//作成時は常にPendingなので読み捨て
	PaymentStatus string `json:"payment_status"`
	OrderStatus   string `json:"order_status"`

	RazorpayOrderID   string `json:"razorpay_order_id" validate:"max=100"`
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"max=100"`
	RazorpaySignature string `json:"razorpay_signature" validate:"max=255"`

	Items []PlaceOrderItemRequest `json:"items" validate:"dive"`
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, jwtSecret string) {
	g := e.Group("/orders")

	//ゲストでも注文できる
	g.POST("", h.create, middleware.OptionalAuthJWT(jwtSecret))
	g.GET("/:id", h.detail, middleware.AuthJWT(jwtSecret))
}

func (h *OrderHandler) create(c echo.Context) error {
	var req PlaceOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	//二重送信防止キーはヘッダーから受け取る（bodyには入れない）
	idemKey := c.Request().Header.Get("X-Idempotency-Key")

	out, err := h.uc.PlaceOrder(c.Request().Context(), middleware.IdentityFrom(c), toPlaceOrderInput(req, idemKey))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	orderID, err := parseIDParam(c)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.GetOrder(c.Request().Context(), middleware.IdentityFrom(c), orderID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func toPlaceOrderInput(req PlaceOrderRequest, idemKey string) usecase.PlaceOrderInput {
	items := make([]usecase.PlaceOrderItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, usecase.PlaceOrderItemInput{
			ProductID:      it.ProductID,
			VariationID:    it.VariationID,
			AttributeName:  it.AttributeName,
			TermName:       it.TermName,
			VariationValue: it.VariationValue,
			QuantityValue:  it.QuantityValue,
			Unit:           it.Unit,
			SKU:            it.SKU,
			ProductName:    it.ProductName,
			Quantity:       it.Quantity,
			UnitPrice:      it.UnitPrice,
		})
	}

	return usecase.PlaceOrderInput{
		CustomerName:      req.CustomerName,
		CustomerEmail:     req.CustomerEmail,
		CustomerPhone:     req.CustomerPhone,
		CustomerAddress:   req.CustomerAddress,
		CustomerPincode:   req.CustomerPincode,
		TotalAmount:       req.TotalAmount,
		RazorpayOrderID:   req.RazorpayOrderID,
		RazorpayPaymentID: req.RazorpayPaymentID,
		RazorpaySignature: req.RazorpaySignature,
		Items:             items,
		IdempotencyKey:    idemKey,
	}
}
