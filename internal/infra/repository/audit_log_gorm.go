package repository

import (
	"context"

	"rushivan/internal/domain/model"
	repo "rushivan/internal/repository"

	"gorm.io/gorm"
)

const defaultAuditLimit = 50

type AuditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) *AuditLogGormRepository {
	return &AuditLogGormRepository{db: db}
}

func (r *AuditLogGormRepository) Create(ctx context.Context, entry model.AuditLog) error {
	return classify(r.db.WithContext(ctx).Create(&entry).Error)
}

// 新しい順。created_atが同じなら後に入った方が先
func (r *AuditLogGormRepository) ListByResource(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	if f.Limit <= 0 {
		f.Limit = defaultAuditLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	q := r.db.WithContext(ctx).
		Where("resource_type = ? AND resource_id = ?", f.ResourceType, f.ResourceID)
	if f.Action != nil {
		q = q.Where("action = ?", *f.Action)
	}

	logs := []model.AuditLog{}
	err := q.Order("created_at desc").Order("id desc").
		Limit(f.Limit).Offset(f.Offset).
		Find(&logs).Error
	if err != nil {
		return nil, classify(err)
	}
	return logs, nil
}
