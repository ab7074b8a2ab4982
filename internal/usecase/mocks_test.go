package usecase_test

import (
	"context"
	"strings"
	"testing"

	"rushivan/internal/domain/model"
	repo "rushivan/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	// 呼ばれた事実だけ記録（ctxの具体値は問わない）
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	products   repo.ProductRepository
	variations repo.VariationRepository
	inventory  repo.InventoryRepository
	auditLogs  repo.AuditLogRepository
}

func (r *TxReposMock) Orders() repo.OrderRepository         { return r.orders }
func (r *TxReposMock) OrderItems() repo.OrderItemRepository { return r.orderItems }
func (r *TxReposMock) Products() repo.ProductRepository     { return r.products }
func (r *TxReposMock) Variations() repo.VariationRepository { return r.variations }
func (r *TxReposMock) Inventory() repo.InventoryRepository  { return r.inventory }
func (r *TxReposMock) AuditLogs() repo.AuditLogRepository   { return r.auditLogs }

// =====================
// Repository mocks
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) FindByIdempotencyKey(ctx context.Context, key string) (model.Order, bool, error) {
	args := m.Called(ctx, key)
	o, _ := args.Get(0).(model.Order)
	return o, args.Bool(1), args.Error(2)
}

func (m *OrderRepoMock) List(ctx context.Context, f repo.OrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) UpdatePaymentResult(ctx context.Context, orderID int64, res repo.PaymentResult) error {
	args := m.Called(ctx, orderID, res)
	return args.Error(0)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) Create(ctx context.Context, item model.OrderItem) (int64, error) {
	args := m.Called(ctx, item)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

func (m *OrderItemRepoMock) ListByOrderIDs(ctx context.Context, orderIDs []int64) (map[int64][]model.OrderItem, error) {
	args := m.Called(ctx, orderIDs)
	items, _ := args.Get(0).(map[int64][]model.OrderItem)
	return items, args.Error(1)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

type VariationRepoMock struct{ mock.Mock }

func (m *VariationRepoMock) FindByID(ctx context.Context, id int64) (model.ProductVariation, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(model.ProductVariation)
	return v, args.Error(1)
}

type InventoryRepoMock struct{ mock.Mock }

func (m *InventoryRepoMock) DecrementFloor(ctx context.Context, counter model.StockCounter, qty int64) (int64, error) {
	args := m.Called(ctx, counter, qty)
	return args.Get(0).(int64), args.Error(1)
}

func (m *InventoryRepoMock) DecrementIfEnough(ctx context.Context, counter model.StockCounter, qty int64) (int64, bool, error) {
	args := m.Called(ctx, counter, qty)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditRepoMock) ListByResource(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

type SignerMock struct{ mock.Mock }

func (m *SignerMock) Verify(gatewayOrderID, gatewayPaymentID, signature string) bool {
	return m.Called(gatewayOrderID, gatewayPaymentID, signature).Bool(0)
}

func (m *SignerMock) Configured() bool {
	return m.Called().Bool(0)
}

// =====================
// Helpers
// =====================

type repoSet struct {
	tx         *TxManagerMock
	orders     *OrderRepoMock
	orderItems *OrderItemRepoMock
	products   *ProductRepoMock
	variations *VariationRepoMock
	inventory  *InventoryRepoMock
	audit      *AuditRepoMock
}

func newRepoSet() *repoSet {
	s := &repoSet{
		tx:         new(TxManagerMock),
		orders:     new(OrderRepoMock),
		orderItems: new(OrderItemRepoMock),
		products:   new(ProductRepoMock),
		variations: new(VariationRepoMock),
		inventory:  new(InventoryRepoMock),
		audit:      new(AuditRepoMock),
	}
	s.tx.Repos = &TxReposMock{
		orders:     s.orders,
		orderItems: s.orderItems,
		products:   s.products,
		variations: s.variations,
		inventory:  s.inventory,
		auditLogs:  s.audit,
	}
	s.tx.On("WithinTx", mock.Anything).Return(nil)
	return s
}

// HTTPErrorの実装詳細に依存しない
func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}
