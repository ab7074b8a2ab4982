package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Razorpayのcheckout署名
// signature = hex(HMAC-SHA256(key_secret, razorpay_order_id + "|" + razorpay_payment_id))
type RazorpaySigner struct {
	secret []byte
}

func NewRazorpaySigner(keySecret string) *RazorpaySigner {
	return &RazorpaySigner{secret: []byte(keySecret)}
}

// シークレット未設定なら何も検証できない
func (s *RazorpaySigner) Configured() bool {
	return len(s.secret) > 0
}

func (s *RazorpaySigner) Sign(gatewayOrderID, gatewayPaymentID string) string {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	return hex.EncodeToString(h.Sum(nil))
}

// 比較は定数時間。シークレットが空なら常にfalse
func (s *RazorpaySigner) Verify(gatewayOrderID, gatewayPaymentID, signature string) bool {
	if !s.Configured() {
		return false
	}
	expected := s.Sign(gatewayOrderID, gatewayPaymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}
