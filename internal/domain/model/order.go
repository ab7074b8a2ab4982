package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "Pending"
	PaymentStatusPaid     PaymentStatus = "Paid"
	PaymentStatusFailed   PaymentStatus = "Failed"
	PaymentStatusRefunded PaymentStatus = "Refunded"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusConfirmed OrderStatus = "Confirmed"
	OrderStatusShipped   OrderStatus = "Shipped"
	OrderStatusDelivered OrderStatus = "Delivered"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return OrderStatus(s), true
	}
	return "", false
}

func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	switch PaymentStatus(s) {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return PaymentStatus(s), true
	}
	return "", false
}

// 終端ステータスからは変更しない
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// 決済済み（Failedで上書きしない）
func (s PaymentStatus) IsSettled() bool {
	return s == PaymentStatusPaid || s == PaymentStatusRefunded
}

// 注文ヘッダ。連絡先は注文時点のスナップショット。
// total_amountは作成時に確定し、明細から再計算しない。
type Order struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerID *int64 `gorm:"index" json:"customer_id"`

	CustomerName    string `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerEmail   string `gorm:"type:varchar(255);not null" json:"customer_email"`
	CustomerPhone   string `gorm:"type:varchar(30);not null" json:"customer_phone"`
	CustomerAddress string `gorm:"type:text;not null" json:"customer_address"`
	CustomerPincode string `gorm:"type:varchar(20);not null" json:"customer_pincode"`

	TotalAmount   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	PaymentStatus PaymentStatus   `gorm:"type:varchar(20);not null;index;default:'Pending'" json:"payment_status"`
	OrderStatus   OrderStatus     `gorm:"type:varchar(20);not null;index;default:'Pending'" json:"order_status"`

	RazorpayOrderID   string `gorm:"type:varchar(100);not null;default:''" json:"razorpay_order_id"`
	RazorpayPaymentID string `gorm:"type:varchar(100);not null;default:''" json:"razorpay_payment_id"`
	RazorpaySignature string `gorm:"type:varchar(255);not null;default:''" json:"-"`

	//同じキーなら同じ注文を返す（ゲストはnull可）
	IdempotencyKey *string `gorm:"type:varchar(255);uniqueIndex" json:"-"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`

	Customer *Customer `gorm:"foreignKey:CustomerID;constraint:OnDelete:SET NULL" json:"-"`
}
