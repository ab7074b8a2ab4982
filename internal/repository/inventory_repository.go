package repository

import (
	"context"

	"rushivan/internal/domain/model"
)

type InventoryRepository interface {
	// 1文のUPDATEで減算し0で止める。減算後の値を返す。
	DecrementFloor(ctx context.Context, counter model.StockCounter, qty int64) (int64, error)

	// 在庫が足りるときだけ減算。足りなければ ok=false
	DecrementIfEnough(ctx context.Context, counter model.StockCounter, qty int64) (remaining int64, ok bool, err error)
}
