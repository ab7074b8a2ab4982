package repository

import (
	"context"

	"rushivan/internal/domain/model"
)

type OrderListFilter struct {
	Page          int
	Limit         int
	CustomerID    *int64
	PaymentStatus string
	OrderStatus   string
}

// 決済検証の結果として書き込む値
type PaymentResult struct {
	Status            model.PaymentStatus
	RazorpayOrderID   string
	RazorpayPaymentID string
	RazorpaySignature string
}

type OrderRepository interface {
	Create(ctx context.Context, order model.Order) (int64, error)
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	// FindByIDForUpdate はトランザクション内で行ロックを取得して読む
	FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error)
	//検索（同じキーなら同じ結果を返す）
	FindByIdempotencyKey(ctx context.Context, key string) (model.Order, bool, error)
	List(ctx context.Context, f OrderListFilter) ([]model.Order, int64, error)
	UpdatePaymentResult(ctx context.Context, orderID int64, res PaymentResult) error
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
}
