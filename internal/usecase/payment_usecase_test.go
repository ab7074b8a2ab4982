package usecase_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"rushivan/internal/domain/model"
	repo "rushivan/internal/repository"
	"rushivan/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func verifyInput() usecase.VerifyPaymentInput {
	return usecase.VerifyPaymentInput{
		RazorpayOrderID:   "order_Nx1",
		RazorpayPaymentID: "pay_Qz9",
		RazorpaySignature: "abc123",
	}
}

func newSigner(verified bool) *SignerMock {
	s := new(SignerMock)
	s.On("Configured").Return(true)
	s.On("Verify", "order_Nx1", "pay_Qz9", "abc123").Return(verified)
	return s
}

func TestPaymentUsecase_Verify_Transitions(t *testing.T) {
	tests := []struct {
		name       string
		current    model.PaymentStatus
		verified   bool
		wantStatus model.PaymentStatus
		wantWrite  bool
	}{
		{"pending verified", model.PaymentStatusPending, true, model.PaymentStatusPaid, true},
		{"pending rejected", model.PaymentStatusPending, false, model.PaymentStatusFailed, true},
		{"failed then verified", model.PaymentStatusFailed, true, model.PaymentStatusPaid, true},
		{"paid verified again", model.PaymentStatusPaid, true, model.PaymentStatusPaid, true},
		{"paid not downgraded", model.PaymentStatusPaid, false, model.PaymentStatusPaid, false},
		{"refunded stays", model.PaymentStatusRefunded, true, model.PaymentStatusRefunded, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newRepoSet()
			s.orders.On("FindByIDForUpdate", mock.Anything, int64(10)).Return(model.Order{ID: 10, PaymentStatus: tt.current}, nil)
			if tt.wantWrite {
				s.orders.On("UpdatePaymentResult", mock.Anything, int64(10), repo.PaymentResult{
					Status:            tt.wantStatus,
					RazorpayOrderID:   "order_Nx1",
					RazorpayPaymentID: "pay_Qz9",
					RazorpaySignature: "abc123",
				}).Return(nil)
			}
			s.audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
				return l.Action == model.AuditActionVerifyPayment &&
					l.ActorUserID == nil &&
					l.ResourceID == 10 &&
					strings.Contains(l.BeforeJSON, string(tt.current)) &&
					strings.Contains(l.AfterJSON, string(tt.wantStatus)) &&
					!strings.Contains(l.AfterJSON, "abc123")
			})).Return(nil)

			uc := usecase.NewPaymentUsecase(s.tx, newSigner(tt.verified), nil)
			out, err := uc.Verify(context.Background(), 10, verifyInput())

			require.NoError(t, err)
			assert.Equal(t, tt.verified, out.Verified)
			assert.Equal(t, string(tt.wantStatus), out.PaymentStatus)
			if !tt.wantWrite {
				s.orders.AssertNotCalled(t, "UpdatePaymentResult", mock.Anything, mock.Anything, mock.Anything)
			}
			s.orders.AssertExpectations(t)
			s.orders.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
			s.audit.AssertExpectations(t)
		})
	}
}

func TestPaymentUsecase_Verify_UnconfiguredSecretFailsClosed(t *testing.T) {
	s := newRepoSet()
	s.orders.On("FindByIDForUpdate", mock.Anything, int64(10)).Return(model.Order{ID: 10, PaymentStatus: model.PaymentStatusPending}, nil)
	s.orders.On("UpdatePaymentResult", mock.Anything, int64(10), mock.MatchedBy(func(r repo.PaymentResult) bool {
		return r.Status == model.PaymentStatusFailed && r.RazorpayPaymentID == "pay_Qz9"
	})).Return(nil)
	s.audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	signer := new(SignerMock)
	signer.On("Configured").Return(false)
	signer.On("Verify", mock.Anything, mock.Anything, mock.Anything).Return(false)

	uc := usecase.NewPaymentUsecase(s.tx, signer, nil)
	out, err := uc.Verify(context.Background(), 10, verifyInput())

	require.NoError(t, err)
	assert.False(t, out.Verified)
	assert.Equal(t, "Failed", out.PaymentStatus)
}

func TestPaymentUsecase_Verify_UnknownOrder(t *testing.T) {
	s := newRepoSet()
	s.orders.On("FindByIDForUpdate", mock.Anything, int64(404)).Return(model.Order{}, repo.ErrNotFound)

	uc := usecase.NewPaymentUsecase(s.tx, newSigner(true), nil)
	_, err := uc.Verify(context.Background(), 404, verifyInput())

	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Status)
	s.audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPaymentUsecase_Verify_InvalidID(t *testing.T) {
	s := newRepoSet()
	uc := usecase.NewPaymentUsecase(s.tx, newSigner(true), nil)

	_, err := uc.Verify(context.Background(), 0, verifyInput())
	assertErrContains(t, err, "invalid id")
	s.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestPaymentUsecase_Verify_TrimsGatewayFields(t *testing.T) {
	s := newRepoSet()
	s.orders.On("FindByIDForUpdate", mock.Anything, int64(10)).Return(model.Order{ID: 10, PaymentStatus: model.PaymentStatusPending}, nil)
	s.orders.On("UpdatePaymentResult", mock.Anything, int64(10), mock.Anything).Return(nil)
	s.audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	in := verifyInput()
	in.RazorpayOrderID = " order_Nx1 "
	in.RazorpaySignature = "abc123\n"

	uc := usecase.NewPaymentUsecase(s.tx, newSigner(true), nil)
	out, err := uc.Verify(context.Background(), 10, in)

	require.NoError(t, err)
	assert.True(t, out.Verified)
}
