package repository

import (
	"context"

	"rushivan/internal/domain/model"
)

// 監査ログは対象リソース単位で読む
type AuditLogFilter struct {
	ResourceType model.AuditResourceType
	ResourceID   int64
	Action       *model.AuditAction // nilなら全操作
	Limit        int
	Offset       int
}

type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error
	ListByResource(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, error)
}
