package repository

import (
	"context"
	"fmt"

	"rushivan/internal/domain/model"
	repo "rushivan/internal/repository"

	"gorm.io/gorm"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

// 読んでから書くと同時注文で更新が消えるので、判定も減算もDB側の1文で行う
func (r *InventoryGormRepository) DecrementFloor(ctx context.Context, c model.StockCounter, qty int64) (int64, error) {
	col := c.Column()
	q := fmt.Sprintf(
		"UPDATE %s SET %s = CASE WHEN %s > ? THEN %s - ? ELSE 0 END WHERE id = ? RETURNING %s",
		c.Table(), col, col, col, col,
	)

	var remaining []int64
	if err := r.db.WithContext(ctx).Raw(q, qty, qty, c.ID).Scan(&remaining).Error; err != nil {
		return 0, classify(err)
	}
	if len(remaining) == 0 {
		return 0, repo.ErrNotFound
	}
	return remaining[0], nil
}

// 在庫が足りるときだけ減らす
func (r *InventoryGormRepository) DecrementIfEnough(ctx context.Context, c model.StockCounter, qty int64) (int64, bool, error) {
	col := c.Column()
	q := fmt.Sprintf(
		"UPDATE %s SET %s = %s - ? WHERE id = ? AND %s >= ? RETURNING %s",
		c.Table(), col, col, col, col,
	)

	var remaining []int64
	if err := r.db.WithContext(ctx).Raw(q, qty, c.ID, qty).Scan(&remaining).Error; err != nil {
		return 0, false, classify(err)
	}
	if len(remaining) > 0 {
		return remaining[0], true, nil
	}

	//0件なら「行がない」のか「足りない」のかを見分ける
	var n int64
	if err := r.db.WithContext(ctx).Table(c.Table()).Where("id = ?", c.ID).Count(&n).Error; err != nil {
		return 0, false, classify(err)
	}
	if n == 0 {
		return 0, false, repo.ErrNotFound
	}
	return 0, false, nil
}
