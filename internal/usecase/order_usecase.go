package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rushivan/internal/config"
	"rushivan/internal/domain/model"
	"rushivan/internal/infra/logger"
	"rushivan/internal/metrics"
	repo "rushivan/internal/repository"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const orderStoredMessage = "Order stored"

// numeric(12,2) の小計を溢れさせない明細あたりの上限
const MaxLineQuantity = 100000

var tracer = otel.Tracer("rushivan/usecase")

// 冪等キーの同時挿入に負けた（tx外で読み直す）
var errIdempotencyRace = errors.New("idempotency key race")

type CheckoutPolicy struct {
	PricePolicy    string // reject / flag
	PriceTolerance decimal.Decimal
}

func (p CheckoutPolicy) rejects() bool {
	return p.PricePolicy != config.PricePolicyFlag
}

type OrderUsecase struct {
	tx      repo.TransactionManager
	pricing *PricingResolver
	ledger  *InventoryLedger
	policy  CheckoutPolicy
	log     *zap.Logger
}

func NewOrderUsecase(tx repo.TransactionManager, pricing *PricingResolver, ledger *InventoryLedger, policy CheckoutPolicy, log *zap.Logger) *OrderUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderUsecase{tx: tx, pricing: pricing, ledger: ledger, policy: policy, log: log}
}

// チェックアウトの1明細。product_idが無い明細はカタログ外（在庫なし・申告価格）
type PlaceOrderItemInput struct {
	ProductID      *int64
	VariationID    *int64
	AttributeName  *string
	TermName       *string
	VariationValue *string
	QuantityValue  *decimal.Decimal
	Unit           *string
	SKU            *string
	ProductName    string
	Quantity       int64
	UnitPrice      decimal.Decimal
}

type PlaceOrderInput struct {
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	CustomerAddress string
	CustomerPincode string

	//省略時はサーバー計算の合計
	TotalAmount *decimal.Decimal

	RazorpayOrderID   string
	RazorpayPaymentID string
	RazorpaySignature string

	Items          []PlaceOrderItemInput
	IdempotencyKey string
}

type PlaceOrderOutput struct {
	ID       int64  `json:"id"`
	Message  string `json:"message"`
	Replayed bool   `json:"-"`
}

type OrderItemOutput struct {
	ID                int64            `json:"id"`
	ProductID         *int64           `json:"product_id"`
	VariationID       *int64           `json:"variation_id"`
	AttributeName     *string          `json:"attribute_name"`
	TermName          *string          `json:"term_name"`
	VariationValue    *string          `json:"variation_value"`
	QuantityValue     *decimal.Decimal `json:"quantity_value"`
	Unit              *string          `json:"unit"`
	SKU               *string          `json:"sku"`
	ProductName       string           `json:"product_name"`
	Quantity          int64            `json:"quantity"`
	UnitPrice         decimal.Decimal  `json:"unit_price"`
	DeclaredUnitPrice decimal.Decimal  `json:"declared_unit_price"`
	TotalPrice        decimal.Decimal  `json:"total_price"`
	GSTRate           decimal.Decimal  `json:"gst_rate"`
	GSTAmount         decimal.Decimal  `json:"gst_amount"`
}

type OrderOutput struct {
	ID                int64             `json:"id"`
	CustomerID        *int64            `json:"customer_id"`
	CustomerName      string            `json:"customer_name"`
	CustomerEmail     string            `json:"customer_email"`
	CustomerPhone     string            `json:"customer_phone"`
	CustomerAddress   string            `json:"customer_address"`
	CustomerPincode   string            `json:"customer_pincode"`
	TotalAmount       decimal.Decimal   `json:"total_amount"`
	PaymentStatus     string            `json:"payment_status"`
	OrderStatus       string            `json:"order_status"`
	RazorpayOrderID   string            `json:"razorpay_order_id"`
	RazorpayPaymentID string            `json:"razorpay_payment_id"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
	Items             []OrderItemOutput `json:"items"`
}

type OrderListOutput struct {
	Orders []OrderOutput `json:"orders"`
	Total  int64         `json:"total"`
	Page   int           `json:"page"`
	Limit  int           `json:"limit"`
}

// 注文の作成。価格解決・ヘッダ・明細・在庫減算を1トランザクションで行う。
// どこかで失敗したら何も残らない。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, who Identity, in PlaceOrderInput) (PlaceOrderOutput, error) {
	ctx, span := tracer.Start(ctx, "OrderUsecase.PlaceOrder", trace.WithAttributes(
		attribute.Int("order.item_count", len(in.Items)),
		attribute.Bool("order.guest", who.IsGuest()),
	))
	defer span.End()
	log := logger.FromContext(ctx, u.log)

	in = normalizePlaceOrder(in)
	if err := validatePlaceOrder(in); err != nil {
		span.SetStatus(codes.Error, "validation")
		return PlaceOrderOutput{}, err
	}

	var out PlaceOrderOutput
	var placedTotal decimal.Decimal
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同じキーなら同じ結果
		if in.IdempotencyKey != "" {
			existing, found, err := r.Orders().FindByIdempotencyKey(ctx, in.IdempotencyKey)
			if err != nil {
				return NewPersistenceError(err)
			}
			if found {
				out = PlaceOrderOutput{ID: existing.ID, Message: orderStoredMessage, Replayed: true}
				return nil
			}
		}

		lines, serverTotal, err := u.priceLines(ctx, r, in.Items)
		if err != nil {
			return err
		}

		total, err := u.settleTotal(ctx, in.TotalAmount, serverTotal)
		if err != nil {
			return err
		}

		order := model.Order{
			CustomerID:        who.CustomerID(),
			CustomerName:      in.CustomerName,
			CustomerEmail:     in.CustomerEmail,
			CustomerPhone:     in.CustomerPhone,
			CustomerAddress:   in.CustomerAddress,
			CustomerPincode:   in.CustomerPincode,
			TotalAmount:       total,
			PaymentStatus:     model.PaymentStatusPending,
			OrderStatus:       model.OrderStatusPending,
			RazorpayOrderID:   in.RazorpayOrderID,
			RazorpayPaymentID: in.RazorpayPaymentID,
			RazorpaySignature: in.RazorpaySignature,
		}
		if in.IdempotencyKey != "" {
			key := in.IdempotencyKey
			order.IdempotencyKey = &key
		}

		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			if errors.Is(err, repo.ErrConflict) && in.IdempotencyKey != "" {
				return errIdempotencyRace
			}
			if errors.Is(err, repo.ErrReference) {
				return NewValidationError("referenced customer does not exist", map[string]string{"customer_id": "not found"})
			}
			return NewPersistenceError(err)
		}

		//明細を全部入れてから在庫を減らす
		for i, line := range lines {
			line.OrderID = orderID
			if _, err := r.OrderItems().Create(ctx, line); err != nil {
				if errors.Is(err, repo.ErrReference) {
					return NewValidationError("referenced product or variation does not exist",
						map[string]string{itemField(i, "product_id"): "not found"})
				}
				return NewPersistenceError(err)
			}
		}

		for i, line := range lines {
			if line.ProductID == nil {
				continue
			}
			mv, err := u.ledger.Decrement(ctx, r.Inventory(), *line.ProductID, line.VariationID, line.Quantity)
			switch {
			case errors.Is(err, ErrInsufficientStock):
				return NewValidationError("insufficient stock", map[string]string{itemField(i, "quantity"): "insufficient stock"})
			case errors.Is(err, repo.ErrNotFound):
				return NewValidationError("product not found", map[string]string{itemField(i, "product_id"): "not found"})
			case err != nil:
				return NewPersistenceError(err)
			}
			if mv.Exhausted {
				log.Warn("stock counter reached zero",
					zap.String("counter", string(mv.Counter.Kind)),
					zap.Int64("counter_id", mv.Counter.ID),
					zap.Int64("requested", mv.Requested),
				)
			}
		}

		out = PlaceOrderOutput{ID: orderID, Message: orderStoredMessage}
		placedTotal = total
		return nil
	})

	if errors.Is(err, errIdempotencyRace) {
		out, err = u.replayByKey(ctx, in.IdempotencyKey)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if IsKind(err, KindPersistence) {
			log.Error("place order failed", zap.Error(err))
		} else {
			log.Info("place order rejected", zap.Error(err))
		}
		return PlaceOrderOutput{}, asPersistence(err)
	}

	span.SetAttributes(attribute.Int64("order.id", out.ID), attribute.Bool("order.replayed", out.Replayed))
	if out.Replayed {
		log.Info("order replayed by idempotency key", zap.Int64("order_id", out.ID))
		return out, nil
	}
	metrics.RecordOrderPlaced(who.IsGuest())
	log.Info("order placed",
		zap.Int64("order_id", out.ID),
		zap.Int("items", len(in.Items)),
		zap.String("total", placedTotal.StringFixed(2)),
		zap.Bool("guest", who.IsGuest()),
	)
	return out, nil
}

// 全明細の価格を決めて、保存する明細とサーバー側合計を返す
func (u *OrderUsecase) priceLines(ctx context.Context, r repo.TxRepos, items []PlaceOrderItemInput) ([]model.OrderItem, decimal.Decimal, error) {
	lines := make([]model.OrderItem, 0, len(items))
	total := decimal.Zero
	mismatches := map[string]string{}

	for i, it := range items {
		var line model.OrderItem
		if it.ProductID == nil {
			line = offCatalogLine(it)
		} else {
			q, err := u.pricing.Resolve(ctx, r, *it.ProductID, it.VariationID)
			switch {
			case errors.Is(err, ErrProductNotFound):
				return nil, decimal.Zero, NewValidationError("product not found", map[string]string{itemField(i, "product_id"): "not found"})
			case errors.Is(err, ErrVariationNotFound):
				return nil, decimal.Zero, NewValidationError("variation not found", map[string]string{itemField(i, "variation_id"): "not found"})
			case errors.Is(err, ErrVariationMismatch):
				return nil, decimal.Zero, NewVariationMismatchError(itemField(i, "variation_id"), err)
			case err != nil:
				return nil, decimal.Zero, NewPersistenceError(err)
			}

			if it.UnitPrice.Sub(q.UnitPrice).Abs().GreaterThan(u.policy.PriceTolerance) {
				field := itemField(i, "unit_price")
				if u.policy.rejects() {
					mismatches[field] = fmt.Sprintf("expected %s", q.UnitPrice.StringFixed(2))
					metrics.RecordPriceMismatch("unit_price", config.PricePolicyReject)
				} else {
					metrics.RecordPriceMismatch("unit_price", config.PricePolicyFlag)
					logger.FromContext(ctx, u.log).Warn("declared unit price differs from catalog",
						zap.String("field", field),
						zap.String("declared", it.UnitPrice.String()),
						zap.String("catalog", q.UnitPrice.String()),
					)
				}
			}
			line = quotedLine(q, it)
		}

		line.LineTotal = line.UnitPrice.Mul(decimal.NewFromInt(line.Quantity)).Round(2)
		line.GSTAmount = line.LineTotal.Mul(line.GSTRate).Div(decimal.NewFromInt(100)).Round(2)
		total = total.Add(line.LineTotal).Add(line.GSTAmount)
		lines = append(lines, line)
	}

	if len(mismatches) > 0 {
		return nil, decimal.Zero, NewValidationError("price mismatch", mismatches)
	}
	return lines, total, nil
}

// クライアントの合計とサーバー合計の突き合わせ
func (u *OrderUsecase) settleTotal(ctx context.Context, declared *decimal.Decimal, server decimal.Decimal) (decimal.Decimal, error) {
	if declared == nil {
		return server, nil
	}
	if declared.Sub(server).Abs().LessThanOrEqual(u.policy.PriceTolerance) {
		return *declared, nil
	}
	if u.policy.rejects() {
		metrics.RecordPriceMismatch("total_amount", config.PricePolicyReject)
		return decimal.Zero, NewValidationError("price mismatch", map[string]string{
			"total_amount": fmt.Sprintf("expected %s", server.StringFixed(2)),
		})
	}
	metrics.RecordPriceMismatch("total_amount", config.PricePolicyFlag)
	logger.FromContext(ctx, u.log).Warn("declared total differs from server total",
		zap.String("declared", declared.String()),
		zap.String("server", server.String()),
	)
	return *declared, nil
}

func (u *OrderUsecase) replayByKey(ctx context.Context, key string) (PlaceOrderOutput, error) {
	var out PlaceOrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		existing, found, err := r.Orders().FindByIdempotencyKey(ctx, key)
		if err != nil {
			return NewPersistenceError(err)
		}
		if !found {
			return NewPersistenceError(errIdempotencyRace)
		}
		out = PlaceOrderOutput{ID: existing.ID, Message: orderStoredMessage, Replayed: true}
		return nil
	})
	return out, err
}

// 自分の注文一覧（顧客のみ）
func (u *OrderUsecase) ListMyOrders(ctx context.Context, who Identity, f repo.OrderListFilter) (OrderListOutput, error) {
	if who.IsGuest() {
		return OrderListOutput{}, NewUnauthorizedError()
	}
	if who.IsAdmin() {
		return OrderListOutput{}, NewForbiddenError()
	}
	f.CustomerID = who.CustomerID()
	return listOrders(ctx, u.tx, f)
}

// 注文詳細。管理者は全件、顧客は自分の注文だけ（他人のものは404）
func (u *OrderUsecase) GetOrder(ctx context.Context, who Identity, orderID int64) (OrderOutput, error) {
	if who.IsGuest() {
		return OrderOutput{}, NewUnauthorizedError()
	}
	if orderID <= 0 {
		return OrderOutput{}, NewValidationError("invalid id", map[string]string{"id": "must be positive"})
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFoundError("Order not found")
		}
		if err != nil {
			return NewPersistenceError(err)
		}
		if !who.IsAdmin() && (o.CustomerID == nil || *o.CustomerID != who.UserID) {
			//他人の注文は「存在しない扱い」にする
			return NewNotFoundError("Order not found")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewPersistenceError(err)
		}
		out = toOrderOutput(o, items)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func listOrders(ctx context.Context, tx repo.TransactionManager, f repo.OrderListFilter) (OrderListOutput, error) {
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	fields := map[string]string{}
	if f.Page < 1 {
		fields["page"] = "must be >= 1"
	}
	if f.Limit < 1 || f.Limit > 100 {
		fields["limit"] = "must be between 1 and 100"
	}
	if f.PaymentStatus != "" {
		if _, ok := model.ParsePaymentStatus(f.PaymentStatus); !ok {
			fields["payment_status"] = "invalid"
		}
	}
	if f.OrderStatus != "" {
		if _, ok := model.ParseOrderStatus(f.OrderStatus); !ok {
			fields["order_status"] = "invalid"
		}
	}
	if len(fields) > 0 {
		return OrderListOutput{}, NewValidationError("invalid query", fields)
	}

	out := OrderListOutput{Page: f.Page, Limit: f.Limit}
	err := tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().List(ctx, f)
		if err != nil {
			return NewPersistenceError(err)
		}
		ids := make([]int64, 0, len(orders))
		for _, o := range orders {
			ids = append(ids, o.ID)
		}
		itemsByOrder, err := r.OrderItems().ListByOrderIDs(ctx, ids)
		if err != nil {
			return NewPersistenceError(err)
		}

		out.Total = total
		out.Orders = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			out.Orders = append(out.Orders, toOrderOutput(o, itemsByOrder[o.ID]))
		}
		return nil
	})
	if err != nil {
		return OrderListOutput{}, err
	}
	return out, nil
}

func normalizePlaceOrder(in PlaceOrderInput) PlaceOrderInput {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.CustomerEmail = strings.TrimSpace(in.CustomerEmail)
	in.CustomerPhone = strings.TrimSpace(in.CustomerPhone)
	in.CustomerAddress = strings.TrimSpace(in.CustomerAddress)
	in.CustomerPincode = strings.TrimSpace(in.CustomerPincode)
	in.RazorpayOrderID = strings.TrimSpace(in.RazorpayOrderID)
	in.RazorpayPaymentID = strings.TrimSpace(in.RazorpayPaymentID)
	in.IdempotencyKey = strings.TrimSpace(in.IdempotencyKey)

	items := make([]PlaceOrderItemInput, len(in.Items))
	for i, it := range in.Items {
		// 0 は未指定と同じ
		if it.ProductID != nil && *it.ProductID == 0 {
			it.ProductID = nil
		}
		if it.VariationID != nil && *it.VariationID == 0 {
			it.VariationID = nil
		}
		it.ProductName = strings.TrimSpace(it.ProductName)
		items[i] = it
	}
	in.Items = items
	return in
}

func validatePlaceOrder(in PlaceOrderInput) error {
	if len(in.Items) == 0 {
		return NewValidationError("Order items are required", map[string]string{"items": "required"})
	}

	fields := map[string]string{}
	required := map[string]string{
		"customer_name":    in.CustomerName,
		"customer_email":   in.CustomerEmail,
		"customer_phone":   in.CustomerPhone,
		"customer_address": in.CustomerAddress,
		"customer_pincode": in.CustomerPincode,
	}
	for k, v := range required {
		if v == "" {
			fields[k] = "required"
		}
	}
	if in.TotalAmount != nil && in.TotalAmount.IsNegative() {
		fields["total_amount"] = "must be >= 0"
	}
	if len(in.IdempotencyKey) > 255 {
		fields["idempotency_key"] = "too long"
	}

	for i, it := range in.Items {
		if it.Quantity <= 0 {
			fields[itemField(i, "quantity")] = "must be greater than 0"
		} else if it.Quantity > MaxLineQuantity {
			fields[itemField(i, "quantity")] = fmt.Sprintf("must be less than or equal to %d", MaxLineQuantity)
		}
		if it.UnitPrice.IsNegative() {
			fields[itemField(i, "unit_price")] = "must be >= 0"
		}
		if it.ProductID != nil && *it.ProductID < 0 {
			fields[itemField(i, "product_id")] = "must be positive"
		}
		if it.VariationID != nil && *it.VariationID < 0 {
			fields[itemField(i, "variation_id")] = "must be positive"
		}
		if it.ProductID == nil {
			//カタログ外の明細
			if it.VariationID != nil {
				fields[itemField(i, "variation_id")] = "requires product_id"
			}
			if it.ProductName == "" {
				fields[itemField(i, "product_name")] = "required"
			}
		}
	}

	if len(fields) > 0 {
		return NewValidationError("invalid order", fields)
	}
	return nil
}

func quotedLine(q Quote, it PlaceOrderItemInput) model.OrderItem {
	pid := q.ProductID
	return model.OrderItem{
		ProductID:         &pid,
		VariationID:       q.VariationID,
		AttributeName:     q.AttributeName,
		TermName:          q.TermName,
		VariationValue:    q.VariationValue,
		QuantityValue:     q.QuantityValue,
		Unit:              q.Unit,
		SKU:               q.SKU,
		ProductName:       q.ProductName,
		Quantity:          it.Quantity,
		UnitPrice:         q.UnitPrice,
		DeclaredUnitPrice: it.UnitPrice,
		GSTRate:           q.GSTRate,
	}
}

func offCatalogLine(it PlaceOrderItemInput) model.OrderItem {
	return model.OrderItem{
		AttributeName:     it.AttributeName,
		TermName:          it.TermName,
		VariationValue:    it.VariationValue,
		QuantityValue:     it.QuantityValue,
		Unit:              it.Unit,
		SKU:               it.SKU,
		ProductName:       it.ProductName,
		Quantity:          it.Quantity,
		UnitPrice:         it.UnitPrice,
		DeclaredUnitPrice: it.UnitPrice,
		GSTRate:           decimal.Zero,
	}
}

func itemField(i int, name string) string {
	return fmt.Sprintf("items[%d].%s", i, name)
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ID:                it.ID,
			ProductID:         it.ProductID,
			VariationID:       it.VariationID,
			AttributeName:     it.AttributeName,
			TermName:          it.TermName,
			VariationValue:    it.VariationValue,
			QuantityValue:     it.QuantityValue,
			Unit:              it.Unit,
			SKU:               it.SKU,
			ProductName:       it.ProductName,
			Quantity:          it.Quantity,
			UnitPrice:         it.UnitPrice,
			DeclaredUnitPrice: it.DeclaredUnitPrice,
			TotalPrice:        it.LineTotal,
			GSTRate:           it.GSTRate,
			GSTAmount:         it.GSTAmount,
		})
	}

	return OrderOutput{
		ID:                o.ID,
		CustomerID:        o.CustomerID,
		CustomerName:      o.CustomerName,
		CustomerEmail:     o.CustomerEmail,
		CustomerPhone:     o.CustomerPhone,
		CustomerAddress:   o.CustomerAddress,
		CustomerPincode:   o.CustomerPincode,
		TotalAmount:       o.TotalAmount,
		PaymentStatus:     string(o.PaymentStatus),
		OrderStatus:       string(o.OrderStatus),
		RazorpayOrderID:   o.RazorpayOrderID,
		RazorpayPaymentID: o.RazorpayPaymentID,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
		Items:             outItems,
	}
}
