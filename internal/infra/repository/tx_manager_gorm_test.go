package repository_test

import (
	"context"
	"errors"
	"testing"

	"rushivan/internal/config"
	"rushivan/internal/domain/model"
	infraRepo "rushivan/internal/infra/repository"
	repo "rushivan/internal/repository"
	"rushivan/internal/testutil"
	"rushivan/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func placeOrderInput(items ...usecase.PlaceOrderItemInput) usecase.PlaceOrderInput {
	return usecase.PlaceOrderInput{
		CustomerName:    "Guest Buyer",
		CustomerEmail:   "guest@example.com",
		CustomerPhone:   "9800000002",
		CustomerAddress: "Near the mango orchard",
		CustomerPincode: "413102",
		Items:           items,
	}
}

func catalogLine(productID int64, variationID *int64, price string, qty int64) usecase.PlaceOrderItemInput {
	return usecase.PlaceOrderItemInput{
		ProductID:   testutil.Int64Ptr(productID),
		VariationID: variationID,
		ProductName: "line",
		Quantity:    qty,
		UnitPrice:   testutil.Dec(price),
	}
}

func newOrderUsecase(gdb *gorm.DB, stockPolicy string) *usecase.OrderUsecase {
	return usecase.NewOrderUsecase(
		infraRepo.NewTxManagerGorm(gdb),
		usecase.NewPricingResolver(),
		usecase.NewInventoryLedger(stockPolicy),
		usecase.CheckoutPolicy{PricePolicy: config.PricePolicyReject, PriceTolerance: testutil.Dec("0.01")},
		nil,
	)
}

func assertNothingStored(t *testing.T, gdb *gorm.DB) {
	t.Helper()
	assert.Equal(t, int64(0), testutil.CountRows(t, gdb, &model.Order{}))
	assert.Equal(t, int64(0), testutil.CountRows(t, gdb, &model.OrderItem{}))
	assert.Equal(t, int64(10), testutil.ProductStock(t, gdb, testutil.HoneyID))
	assert.Equal(t, int64(20), testutil.ProductStock(t, gdb, testutil.GheeID))
	assert.Equal(t, int64(5), testutil.VariationStock(t, gdb, testutil.Ghee500ID))
	assert.Equal(t, int64(1), testutil.ProductStock(t, gdb, testutil.TurmericID))
}

func TestPlaceOrder_Commit(t *testing.T) {
	gdb := testutil.NewDB(t)
	testutil.SeedCatalog(t, gdb)
	uc := newOrderUsecase(gdb, config.StockPolicyFloor)

	out, err := uc.PlaceOrder(context.Background(), usecase.Guest(), placeOrderInput(
		catalogLine(testutil.HoneyID, nil, "65", 2),
		catalogLine(testutil.GheeID, testutil.Int64Ptr(testutil.Ghee500ID), "480", 1),
	))
	require.NoError(t, err)

	var o model.Order
	require.NoError(t, gdb.First(&o, out.ID).Error)
	assert.Nil(t, o.CustomerID)
	// 130 + 480 + 57.60
	assert.Equal(t, "667.60", o.TotalAmount.StringFixed(2))

	assert.Equal(t, int64(2), testutil.CountRows(t, gdb, &model.OrderItem{}))
	assert.Equal(t, int64(8), testutil.ProductStock(t, gdb, testutil.HoneyID))
	assert.Equal(t, int64(4), testutil.VariationStock(t, gdb, testutil.Ghee500ID))
	assert.Equal(t, int64(20), testutil.ProductStock(t, gdb, testutil.GheeID), "親商品の在庫は変えない")
}

// 最後の明細の保存で落ちたら、ヘッダも先の明細も残らない
func TestPlaceOrder_RollbackOnItemInsertFailure(t *testing.T) {
	gdb := testutil.NewDB(t)
	testutil.SeedCatalog(t, gdb)

	inserts := 0
	err := gdb.Callback().Create().Before("gorm:create").Register("test:fail_last_item", func(tx *gorm.DB) {
		if tx.Statement.Table != "order_items" {
			return
		}
		inserts++
		if inserts == 2 {
			_ = tx.AddError(errors.New("disk full"))
		}
	})
	require.NoError(t, err)

	uc := newOrderUsecase(gdb, config.StockPolicyFloor)
	_, err = uc.PlaceOrder(context.Background(), usecase.Guest(), placeOrderInput(
		catalogLine(testutil.HoneyID, nil, "65", 2),
		catalogLine(testutil.GheeID, testutil.Int64Ptr(testutil.Ghee500ID), "480", 1),
	))
	require.Error(t, err)
	assert.True(t, usecase.IsKind(err, usecase.KindPersistence))
	assert.Equal(t, 2, inserts)

	assertNothingStored(t, gdb)
}

// 先の明細の在庫減算も巻き戻る
func TestPlaceOrder_RollbackOnLateStockFailure(t *testing.T) {
	gdb := testutil.NewDB(t)
	testutil.SeedCatalog(t, gdb)
	uc := newOrderUsecase(gdb, config.StockPolicyReject)

	_, err := uc.PlaceOrder(context.Background(), usecase.Guest(), placeOrderInput(
		catalogLine(testutil.HoneyID, nil, "65", 2),
		catalogLine(testutil.GheeID, testutil.Int64Ptr(testutil.Ghee500ID), "480", 1),
		catalogLine(testutil.TurmericID, nil, "120", 5),
	))
	require.Error(t, err)

	var he *usecase.HTTPError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, 422, he.Status)
	assert.Contains(t, he.Fields, "items[2].quantity")

	assertNothingStored(t, gdb)
}

func TestTxManagerGorm_WithinTx(t *testing.T) {
	t.Run("error rolls back", func(t *testing.T) {
		gdb := testutil.NewDB(t)
		testutil.SeedCatalog(t, gdb)
		tm := infraRepo.NewTxManagerGorm(gdb)
		boom := errors.New("boom")

		err := tm.WithinTx(context.Background(), func(r repo.TxRepos) error {
			if _, err := r.Inventory().DecrementFloor(context.Background(), model.CounterFor(testutil.HoneyID, nil), 4); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, int64(10), testutil.ProductStock(t, gdb, testutil.HoneyID))
	})

	t.Run("cancelled context does not commit", func(t *testing.T) {
		gdb := testutil.NewDB(t)
		testutil.SeedCatalog(t, gdb)
		tm := infraRepo.NewTxManagerGorm(gdb)
		ctx, cancel := context.WithCancel(context.Background())

		err := tm.WithinTx(ctx, func(r repo.TxRepos) error {
			if _, err := r.Orders().Create(ctx, newOrder("Guest", nil)); err != nil {
				return err
			}
			cancel()
			return nil
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, int64(0), testutil.CountRows(t, gdb, &model.Order{}))
	})

	t.Run("commit", func(t *testing.T) {
		gdb := testutil.NewDB(t)
		testutil.SeedCatalog(t, gdb)
		tm := infraRepo.NewTxManagerGorm(gdb)

		err := tm.WithinTx(context.Background(), func(r repo.TxRepos) error {
			_, err := r.Orders().Create(context.Background(), newOrder("Guest", nil))
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), testutil.CountRows(t, gdb, &model.Order{}))
	})
}
