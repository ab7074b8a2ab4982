package repository

import (
	"context"

	"rushivan/internal/domain/model"
)

type OrderItemRepository interface {
	Create(ctx context.Context, item model.OrderItem) (int64, error)
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
	// 一覧表示用。注文ごとにクエリを投げない
	ListByOrderIDs(ctx context.Context, orderIDs []int64) (map[int64][]model.OrderItem, error)
}
