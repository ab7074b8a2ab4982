package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"rushivan/internal/domain/model"
	"rushivan/internal/infra/logger"
	"rushivan/internal/metrics"
	repo "rushivan/internal/repository"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// 決済ゲートウェイの署名検証（infra/paymentが実装）
type SignatureVerifier interface {
	Verify(gatewayOrderID, gatewayPaymentID, signature string) bool
	Configured() bool
}

type PaymentUsecase struct {
	tx     repo.TransactionManager
	signer SignatureVerifier
	log    *zap.Logger
}

func NewPaymentUsecase(tx repo.TransactionManager, signer SignatureVerifier, log *zap.Logger) *PaymentUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &PaymentUsecase{tx: tx, signer: signer, log: log}
}

type VerifyPaymentInput struct {
	RazorpayOrderID   string
	RazorpayPaymentID string
	RazorpaySignature string
}

type VerifyPaymentOutput struct {
	Verified      bool   `json:"verified"`
	PaymentStatus string `json:"payment_status"`
}

// 署名を検証して支払い状態を確定する。
// 検証失敗は正常な結果（verified=false）でありエラーではない。
func (u *PaymentUsecase) Verify(ctx context.Context, orderID int64, in VerifyPaymentInput) (VerifyPaymentOutput, error) {
	ctx, span := tracer.Start(ctx, "PaymentUsecase.Verify", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()
	log := logger.FromContext(ctx, u.log).With(zap.Int64("order_id", orderID))

	if orderID <= 0 {
		return VerifyPaymentOutput{}, NewValidationError("invalid id", map[string]string{"id": "must be positive"})
	}
	in.RazorpayOrderID = strings.TrimSpace(in.RazorpayOrderID)
	in.RazorpayPaymentID = strings.TrimSpace(in.RazorpayPaymentID)
	in.RazorpaySignature = strings.TrimSpace(in.RazorpaySignature)

	if !u.signer.Configured() {
		log.Warn("razorpay key secret is not configured; verification fails closed")
	}
	verified := u.signer.Verify(in.RazorpayOrderID, in.RazorpayPaymentID, in.RazorpaySignature)

	var out VerifyPaymentOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFoundError("Order not found")
		}
		if err != nil {
			return NewPersistenceError(err)
		}

		before := o.PaymentStatus
		status, write := nextPaymentStatus(before, verified)
		if write {
			if err := r.Orders().UpdatePaymentResult(ctx, orderID, repo.PaymentResult{
				Status:            status,
				RazorpayOrderID:   in.RazorpayOrderID,
				RazorpayPaymentID: in.RazorpayPaymentID,
				RazorpaySignature: in.RazorpaySignature,
			}); err != nil {
				if errors.Is(err, repo.ErrNotFound) {
					return NewNotFoundError("Order not found")
				}
				return NewPersistenceError(err)
			}
		}

		//成功・失敗どちらも残す（操作者はゲートウェイなのでnull）
		beforeJSON, _ := json.Marshal(map[string]any{"payment_status": before})
		afterJSON, _ := json.Marshal(map[string]any{
			"payment_status":      status,
			"verified":            verified,
			"razorpay_order_id":   in.RazorpayOrderID,
			"razorpay_payment_id": in.RazorpayPaymentID,
		})
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			Action:       model.AuditActionVerifyPayment,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   string(beforeJSON),
			AfterJSON:    string(afterJSON),
			CreatedAt:    time.Now(),
		}); err != nil {
			return NewPersistenceError(err)
		}

		out = VerifyPaymentOutput{Verified: verified, PaymentStatus: string(status)}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if IsKind(err, KindPersistence) {
			log.Error("payment verification failed", zap.Error(err))
		}
		return VerifyPaymentOutput{}, err
	}

	span.SetAttributes(attribute.Bool("payment.verified", verified), attribute.String("payment.status", out.PaymentStatus))
	metrics.RecordPaymentVerification(verified)
	if verified {
		log.Info("payment verified", zap.String("payment_status", out.PaymentStatus))
	} else {
		log.Warn("payment signature rejected", zap.String("payment_status", out.PaymentStatus))
	}
	return out, nil
}

// 返金済みは動かさない。支払い済みは失敗で上書きしない。
func nextPaymentStatus(current model.PaymentStatus, verified bool) (model.PaymentStatus, bool) {
	switch {
	case current == model.PaymentStatusRefunded:
		return current, false
	case verified:
		return model.PaymentStatusPaid, true
	case current.IsSettled():
		return current, false
	default:
		return model.PaymentStatusFailed, true
	}
}
