package usecase

import (
	"context"
	"fmt"

	"rushivan/internal/config"
	"rushivan/internal/domain/model"
	"rushivan/internal/metrics"
	repo "rushivan/internal/repository"
)

// 在庫を1回減らした結果
type StockMovement struct {
	Counter   model.StockCounter
	Requested int64
	Remaining int64
	//減算後0になった（足りずに0で止めた場合も含む）
	Exhausted bool
}

// 在庫カウンタの減算。読んでから書くことはしない（必ず1文のUPDATE）。
type InventoryLedger struct {
	policy string
}

// policyは config.StockPolicyFloor / config.StockPolicyReject
func NewInventoryLedger(policy string) *InventoryLedger {
	if policy != config.StockPolicyReject {
		policy = config.StockPolicyFloor
	}
	return &InventoryLedger{policy: policy}
}

func (l *InventoryLedger) Policy() string {
	return l.policy
}

func (l *InventoryLedger) Decrement(ctx context.Context, inv repo.InventoryRepository, productID int64, variationID *int64, qty int64) (StockMovement, error) {
	if qty <= 0 {
		return StockMovement{}, fmt.Errorf("quantity must be positive: %d", qty)
	}
	counter := model.CounterFor(productID, variationID)
	mv := StockMovement{Counter: counter, Requested: qty}

	if l.policy == config.StockPolicyReject {
		remaining, ok, err := inv.DecrementIfEnough(ctx, counter, qty)
		if err != nil {
			return StockMovement{}, err
		}
		if !ok {
			return StockMovement{}, fmt.Errorf("%w: %s %d", ErrInsufficientStock, counter.Kind, counter.ID)
		}
		return exhaust(mv, remaining), nil
	}

	remaining, err := inv.DecrementFloor(ctx, counter, qty)
	if err != nil {
		return StockMovement{}, err
	}
	return exhaust(mv, remaining), nil
}

func exhaust(mv StockMovement, remaining int64) StockMovement {
	mv.Remaining = remaining
	mv.Exhausted = remaining == 0
	if mv.Exhausted {
		metrics.RecordStockExhausted(string(mv.Counter.Kind))
	}
	return mv
}
