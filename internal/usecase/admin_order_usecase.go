package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"rushivan/internal/domain/model"
	"rushivan/internal/infra/logger"
	repo "rushivan/internal/repository"

	"go.uber.org/zap"
)

type AdminOrderUsecase struct {
	tx  repo.TransactionManager
	log *zap.Logger
}

func NewAdminOrderUsecase(tx repo.TransactionManager, log *zap.Logger) *AdminOrderUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminOrderUsecase{tx: tx, log: log}
}

type AdminUpdateOrderStatusInput struct {
	OrderStatus string
}

// 注文一覧（支払い状態・注文状態・顧客で絞り込み）
func (u *AdminOrderUsecase) List(ctx context.Context, f repo.OrderListFilter) (OrderListOutput, error) {
	return listOrders(ctx, u.tx, f)
}

// ステータス更新。在庫は動かさない。
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actorAdminUserID int64, orderID int64, in AdminUpdateOrderStatusInput) (OrderOutput, error) {
	if actorAdminUserID <= 0 {
		return OrderOutput{}, NewUnauthorizedError()
	}
	if orderID <= 0 {
		return OrderOutput{}, NewValidationError("invalid id", map[string]string{"id": "must be positive"})
	}

	newStatus, ok := model.ParseOrderStatus(strings.TrimSpace(in.OrderStatus))
	if !ok {
		return OrderOutput{}, NewValidationError("Invalid order status", map[string]string{"order_status": "invalid"})
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFoundError("Order not found")
		}
		if err != nil {
			return NewPersistenceError(err)
		}

		before := o.OrderStatus
		// すでに同じなら何もしない（200）
		if before != newStatus {
			// 終端ガード
			if before.IsTerminal() {
				return NewValidationError("cannot change "+string(before)+" order",
					map[string]string{"order_status": "order is " + string(before)})
			}

			if err := r.Orders().UpdateStatus(ctx, orderID, newStatus); err != nil {
				if errors.Is(err, repo.ErrNotFound) {
					return NewNotFoundError("Order not found")
				}
				return NewPersistenceError(err)
			}

			beforeJSON, _ := json.Marshal(map[string]any{"order_status": before})
			afterJSON, _ := json.Marshal(map[string]any{"order_status": newStatus})
			actor := actorAdminUserID
			if err := r.AuditLogs().Create(ctx, model.AuditLog{
				ActorUserID:  &actor,
				Action:       model.AuditActionUpdateOrderStatus,
				ResourceType: model.AuditResourceOrder,
				ResourceID:   orderID,
				BeforeJSON:   string(beforeJSON),
				AfterJSON:    string(afterJSON),
				CreatedAt:    time.Now(),
			}); err != nil {
				return NewPersistenceError(err)
			}
			o.OrderStatus = newStatus
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewPersistenceError(err)
		}
		out = toOrderOutput(o, items)
		return nil
	})
	if err != nil {
		if IsKind(err, KindPersistence) {
			logger.FromContext(ctx, u.log).Error("update order status failed", zap.Int64("order_id", orderID), zap.Error(err))
		}
		return OrderOutput{}, err
	}

	logger.FromContext(ctx, u.log).Info("order status updated",
		zap.Int64("order_id", orderID),
		zap.Int64("actor_user_id", actorAdminUserID),
		zap.String("order_status", out.OrderStatus),
	)
	return out, nil
}

// 注文ごとの監査ログ（新しい順）
func (u *AdminOrderUsecase) ListAuditLogs(ctx context.Context, orderID int64, limit, offset int) ([]model.AuditLog, error) {
	if orderID <= 0 {
		return nil, NewValidationError("invalid id", map[string]string{"id": "must be positive"})
	}
	if limit < 0 || limit > 200 {
		return nil, NewValidationError("invalid query", map[string]string{"limit": "must be between 1 and 200"})
	}
	if offset < 0 {
		return nil, NewValidationError("invalid query", map[string]string{"offset": "must be >= 0"})
	}

	var logs []model.AuditLog
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.Orders().FindByID(ctx, orderID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewNotFoundError("Order not found")
			}
			return NewPersistenceError(err)
		}

		found, err := r.AuditLogs().ListByResource(ctx, repo.AuditLogFilter{
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			Limit:        limit,
			Offset:       offset,
		})
		if err != nil {
			return NewPersistenceError(err)
		}
		logs = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []model.AuditLog{}
	}
	return logs, nil
}
