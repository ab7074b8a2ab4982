package handler

import (
	"net/http"

	"rushivan/internal/usecase"

	"github.com/labstack/echo/v4"
)

type PaymentHandler struct {
	uc *usecase.PaymentUsecase
}

func NewPaymentHandler(uc *usecase.PaymentUsecase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

// 欠けている値は署名不一致として扱う（必須チェックはしない）
type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

// 決済画面からのコールバック。認証なし。
func (h *PaymentHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/orders/:id/payment-verify", h.verify)
}

func (h *PaymentHandler) verify(c echo.Context) error {
	orderID, err := parseIDParam(c)
	if err != nil {
		return writeError(c, err)
	}

	var req VerifyPaymentRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, usecase.NewValidationError("invalid body", nil))
	}

	out, err := h.uc.Verify(c.Request().Context(), orderID, usecase.VerifyPaymentInput{
		RazorpayOrderID:   req.RazorpayOrderID,
		RazorpayPaymentID: req.RazorpayPaymentID,
		RazorpaySignature: req.RazorpaySignature,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
