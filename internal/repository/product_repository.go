package repository

import (
	"context"
	"errors"

	"rushivan/internal/domain/model"
)

var (
	ErrNotFound = errors.New("not found")
	//ユニーク制約違反（冪等キーの同時挿入など）
	ErrConflict = errors.New("conflict")
	//外部キー違反（存在しない商品・バリエーションを参照）
	ErrReference = errors.New("reference violation")
)

// 注文エンジンから見たカタログ。読み取りだけを約束。
type ProductRepository interface {
	FindByID(ctx context.Context, id int64) (model.Product, error)
}

// attribute / term をpreloadして返す
type VariationRepository interface {
	FindByID(ctx context.Context, id int64) (model.ProductVariation, error)
}
