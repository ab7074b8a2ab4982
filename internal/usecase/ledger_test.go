package usecase_test

import (
	"context"
	"testing"

	"rushivan/internal/config"
	"rushivan/internal/domain/model"
	repo "rushivan/internal/repository"
	"rushivan/internal/testutil"
	"rushivan/internal/usecase"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestInventoryLedger_DefaultPolicyIsFloor(t *testing.T) {
	assert.Equal(t, config.StockPolicyFloor, usecase.NewInventoryLedger("").Policy())
	assert.Equal(t, config.StockPolicyFloor, usecase.NewInventoryLedger("unknown").Policy())
	assert.Equal(t, config.StockPolicyReject, usecase.NewInventoryLedger(config.StockPolicyReject).Policy())
}

func TestInventoryLedger_Floor_SelectsCounter(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		variationID *int64
		want        model.StockCounter
	}{
		{"no variation", nil, model.StockCounter{Kind: model.CounterProduct, ID: 3}},
		{"zero variation", testutil.Int64Ptr(0), model.StockCounter{Kind: model.CounterProduct, ID: 3}},
		{"variation", testutil.Int64Ptr(57), model.StockCounter{Kind: model.CounterVariation, ID: 57}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := new(InventoryRepoMock)
			inv.On("DecrementFloor", mock.Anything, tt.want, int64(2)).Return(int64(3), nil)

			mv, err := usecase.NewInventoryLedger(config.StockPolicyFloor).Decrement(ctx, inv, 3, tt.variationID, 2)
			require.NoError(t, err)
			assert.Equal(t, tt.want, mv.Counter)
			assert.Equal(t, int64(3), mv.Remaining)
			assert.False(t, mv.Exhausted)
			inv.AssertNotCalled(t, "DecrementIfEnough", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestInventoryLedger_Floor_ReachesZero(t *testing.T) {
	inv := new(InventoryRepoMock)
	counter := model.StockCounter{Kind: model.CounterProduct, ID: 7}
	inv.On("DecrementFloor", mock.Anything, counter, int64(5)).Return(int64(0), nil)

	mv, err := usecase.NewInventoryLedger(config.StockPolicyFloor).Decrement(context.Background(), inv, 7, nil, 5)
	require.NoError(t, err)
	assert.True(t, mv.Exhausted)
	assert.Equal(t, int64(5), mv.Requested)
}

func TestInventoryLedger_RejectsNonPositiveQuantity(t *testing.T) {
	inv := new(InventoryRepoMock)

	_, err := usecase.NewInventoryLedger(config.StockPolicyFloor).Decrement(context.Background(), inv, 7, nil, 0)
	assert.Error(t, err)
	inv.AssertNotCalled(t, "DecrementFloor", mock.Anything, mock.Anything, mock.Anything)
}

func TestInventoryLedger_Reject_Insufficient(t *testing.T) {
	inv := new(InventoryRepoMock)
	counter := model.StockCounter{Kind: model.CounterVariation, ID: 57}
	inv.On("DecrementIfEnough", mock.Anything, counter, int64(9)).Return(int64(0), false, nil)

	_, err := usecase.NewInventoryLedger(config.StockPolicyReject).Decrement(context.Background(), inv, 3, testutil.Int64Ptr(57), 9)
	assert.ErrorIs(t, err, usecase.ErrInsufficientStock)
	inv.AssertNotCalled(t, "DecrementFloor", mock.Anything, mock.Anything, mock.Anything)
}

func TestInventoryLedger_Reject_Enough(t *testing.T) {
	inv := new(InventoryRepoMock)
	counter := model.StockCounter{Kind: model.CounterVariation, ID: 57}
	inv.On("DecrementIfEnough", mock.Anything, counter, int64(5)).Return(int64(0), true, nil)

	mv, err := usecase.NewInventoryLedger(config.StockPolicyReject).Decrement(context.Background(), inv, 3, testutil.Int64Ptr(57), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(0), mv.Remaining)
	assert.True(t, mv.Exhausted)
}

func TestInventoryLedger_NotFoundPassesThrough(t *testing.T) {
	inv := new(InventoryRepoMock)
	inv.On("DecrementFloor", mock.Anything, mock.Anything, int64(1)).Return(int64(0), repo.ErrNotFound)

	_, err := usecase.NewInventoryLedger(config.StockPolicyFloor).Decrement(context.Background(), inv, 404, nil, 1)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func exhaustedCount(t *testing.T, kind model.CounterKind) float64 {
	t.Helper()
	mfs, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != "inventory_stock_exhausted_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "counter" && lp.GetValue() == string(kind) {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

// ちょうど売り切った場合も、足りずに0で止めた場合も同じく exhausted として数える
func TestInventoryLedger_ExhaustedMetric(t *testing.T) {
	tests := []struct {
		name      string
		policy    string
		remaining int64
		want      float64
	}{
		{"floor exact sell-down", config.StockPolicyFloor, 0, 1},
		{"reject exact sell-down", config.StockPolicyReject, 0, 1},
		{"stock left", config.StockPolicyFloor, 4, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := new(InventoryRepoMock)
			counter := model.StockCounter{Kind: model.CounterProduct, ID: 12}
			inv.On("DecrementFloor", mock.Anything, counter, int64(2)).Return(tt.remaining, nil)
			inv.On("DecrementIfEnough", mock.Anything, counter, int64(2)).Return(tt.remaining, true, nil)

			before := exhaustedCount(t, model.CounterProduct)
			mv, err := usecase.NewInventoryLedger(tt.policy).Decrement(context.Background(), inv, 12, nil, 2)
			require.NoError(t, err)
			assert.Equal(t, tt.remaining == 0, mv.Exhausted)
			assert.Equal(t, before+tt.want, exhaustedCount(t, model.CounterProduct))
		})
	}
}
