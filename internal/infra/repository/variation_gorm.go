package repository

import (
	"context"

	"rushivan/internal/domain/model"

	"gorm.io/gorm"
)

type VariationGormRepository struct {
	db *gorm.DB
}

func NewVariationGormRepository(db *gorm.DB) *VariationGormRepository {
	return &VariationGormRepository{db: db}
}

func (r *VariationGormRepository) FindByID(ctx context.Context, id int64) (model.ProductVariation, error) {
	var v model.ProductVariation
	err := r.db.WithContext(ctx).
		Preload("Attribute").
		Preload("Term").
		First(&v, id).Error
	if err != nil {
		return model.ProductVariation{}, classify(err)
	}
	return v, nil
}
