package cancel_booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groovetime/booking-engine/internal/domain"
	"github.com/groovetime/booking-engine/pkg/ptr"
)

type fakeBookingRepo struct {
	booking     *domain.Booking
	cancelledID int64
	reason      string
	refundedID  int64
}

func (f *fakeBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return f.booking, nil
}

func (f *fakeBookingRepo) Cancel(ctx context.Context, id int64, reason string) error {
	f.cancelledID = id
	f.reason = reason
	return nil
}

func (f *fakeBookingRepo) MarkRefunded(ctx context.Context, id int64) error {
	f.refundedID = id
	return nil
}

type fakeOutboxRepo struct {
	events []*domain.BookingEvent
}

func (f *fakeOutboxRepo) Insert(ctx context.Context, event *domain.BookingEvent) error {
	f.events = append(f.events, event)
	return nil
}

type fakePayments struct {
	refunds []float64
	keys    []string
	err     error
}

func (f *fakePayments) RefundPayment(ctx context.Context, paymentRef string, amount float64, idempotencyKey string) error {
	if f.err != nil {
		return f.err
	}
	f.refunds = append(f.refunds, amount)
	f.keys = append(f.keys, idempotencyKey)
	return nil
}

type fakeTxManager struct{}

func (f *fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

func paidBooking() *domain.Booking {
	return &domain.Booking{
		ID:            42,
		UserID:        7,
		ProviderID:    "dj-main",
		ServiceType:   domain.ServiceTypeDJ,
		EventDate:     time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC),
		StartTime:     "14:00",
		EndTime:       "18:00",
		Status:        domain.StatusConfirmed,
		TotalPrice:    600,
		PaymentStatus: domain.PaymentPaid,
		PaymentRef:    ptr.Ptr("pi_123"),
	}
}

func newCancelUseCase(repo *fakeBookingRepo, outbox *fakeOutboxRepo, payments *fakePayments, now time.Time) *UseCase {
	uc := NewUseCase(repo, outbox, payments, &fakeTxManager{}, nil, nopLogger{})
	uc.timeProvider = &fixedTime{now: now}
	return uc
}

type fixedTime struct {
	now time.Time
}

func (f *fixedTime) Now() time.Time { return f.now }

func TestCancelBooking_FullRefund(t *testing.T) {
	repo := &fakeBookingRepo{booking: paidBooking()}
	outbox := &fakeOutboxRepo{}
	pay := &fakePayments{}
	// За 10 дней до события
	uc := newCancelUseCase(repo, outbox, pay, time.Date(2026, 6, 5, 12, 0, 0, 0, time.UTC))

	resp, err := uc.Execute(context.Background(), &Request{
		BookingID: 42,
		ActorID:   7,
		ActorRole: "user",
		Reason:    "передумал",
	})
	require.NoError(t, err)

	assert.True(t, resp.RefundEligible)
	assert.Equal(t, domain.RefundFull, resp.RefundPercentage)
	assert.InDelta(t, 600, resp.EstimatedRefund, 0.001)
	assert.Equal(t, int64(42), repo.cancelledID)
	assert.Equal(t, "передумал", repo.reason)

	// Возврат выполнен после коммита и бронирование помечено refunded
	require.Len(t, pay.refunds, 1)
	assert.InDelta(t, 600, pay.refunds[0], 0.001)
	assert.Equal(t, []string{"refund-booking-42"}, pay.keys)
	assert.Equal(t, int64(42), repo.refundedID)

	require.Len(t, outbox.events, 1)
	assert.Equal(t, domain.EventBookingCancelled, outbox.events[0].Type)
}

func TestCancelBooking_HalfRefund(t *testing.T) {
	repo := &fakeBookingRepo{booking: paidBooking()}
	pay := &fakePayments{}
	// За 4 дня до события
	uc := newCancelUseCase(repo, &fakeOutboxRepo{}, pay, time.Date(2026, 6, 11, 14, 0, 0, 0, time.UTC))

	resp, err := uc.Execute(context.Background(), &Request{BookingID: 42, ActorID: 7, ActorRole: "user"})
	require.NoError(t, err)

	assert.Equal(t, domain.RefundHalf, resp.RefundPercentage)
	assert.InDelta(t, 300, resp.EstimatedRefund, 0.001)
	require.Len(t, pay.refunds, 1)
	assert.InDelta(t, 300, pay.refunds[0], 0.001)
}

func TestCancelBooking_LateNoRefund(t *testing.T) {
	repo := &fakeBookingRepo{booking: paidBooking()}
	pay := &fakePayments{}
	// За сутки до события
	uc := newCancelUseCase(repo, &fakeOutboxRepo{}, pay, time.Date(2026, 6, 14, 14, 0, 0, 0, time.UTC))

	resp, err := uc.Execute(context.Background(), &Request{BookingID: 42, ActorID: 7, ActorRole: "user"})
	require.NoError(t, err)

	// Отмена состоялась, но без возврата
	assert.False(t, resp.RefundEligible)
	assert.Equal(t, int64(42), repo.cancelledID)
	assert.Empty(t, pay.refunds)
	assert.Zero(t, repo.refundedID)
}

func TestCancelBooking_AdminOverridesPolicy(t *testing.T) {
	repo := &fakeBookingRepo{booking: paidBooking()}
	pay := &fakePayments{}
	uc := newCancelUseCase(repo, &fakeOutboxRepo{}, pay, time.Date(2026, 6, 15, 13, 0, 0, 0, time.UTC))

	resp, err := uc.Execute(context.Background(), &Request{BookingID: 42, ActorID: 99, ActorRole: "admin"})
	require.NoError(t, err)

	assert.Equal(t, domain.RefundFull, resp.RefundPercentage)
	require.Len(t, pay.refunds, 1)
}

func TestCancelBooking_AccessDenied(t *testing.T) {
	repo := &fakeBookingRepo{booking: paidBooking()}
	uc := newCancelUseCase(repo, &fakeOutboxRepo{}, &fakePayments{}, time.Date(2026, 6, 5, 12, 0, 0, 0, time.UTC))

	_, err := uc.Execute(context.Background(), &Request{BookingID: 42, ActorID: 1000, ActorRole: "user"})
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Zero(t, repo.cancelledID)
}

func TestCancelBooking_AlreadyCancelled(t *testing.T) {
	b := paidBooking()
	b.Status = domain.StatusCancelled
	uc := newCancelUseCase(&fakeBookingRepo{booking: b}, &fakeOutboxRepo{}, &fakePayments{}, time.Now())

	_, err := uc.Execute(context.Background(), &Request{BookingID: 42, ActorID: 7, ActorRole: "user"})
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
}

func TestCancelBooking_CompletedCannotCancel(t *testing.T) {
	b := paidBooking()
	b.Status = domain.StatusCompleted
	uc := newCancelUseCase(&fakeBookingRepo{booking: b}, &fakeOutboxRepo{}, &fakePayments{}, time.Now())

	_, err := uc.Execute(context.Background(), &Request{BookingID: 42, ActorID: 7, ActorRole: "user"})
	assert.ErrorIs(t, err, ErrCannotCancel)
}

func TestCancelBooking_RefundFailureKeepsCancellation(t *testing.T) {
	repo := &fakeBookingRepo{booking: paidBooking()}
	pay := &fakePayments{err: assert.AnError}
	uc := newCancelUseCase(repo, &fakeOutboxRepo{}, pay, time.Date(2026, 6, 5, 12, 0, 0, 0, time.UTC))

	resp, err := uc.Execute(context.Background(), &Request{BookingID: 42, ActorID: 7, ActorRole: "user"})
	require.NoError(t, err)

	// Отмена не откатывается из-за сбоя платежного провайдера
	assert.Equal(t, int64(42), repo.cancelledID)
	assert.Equal(t, string(domain.StatusCancelled), resp.Status)
	// refunded не проставлен
	assert.Zero(t, repo.refundedID)
}

func TestCancelBooking_UnpaidNoRefundCall(t *testing.T) {
	b := paidBooking()
	b.PaymentStatus = domain.PaymentPending
	b.PaymentRef = nil
	pay := &fakePayments{}
	uc := newCancelUseCase(&fakeBookingRepo{booking: b}, &fakeOutboxRepo{}, pay, time.Date(2026, 6, 5, 12, 0, 0, 0, time.UTC))

	resp, err := uc.Execute(context.Background(), &Request{BookingID: 42, ActorID: 7, ActorRole: "user"})
	require.NoError(t, err)

	assert.True(t, resp.RefundEligible)
	assert.Empty(t, pay.refunds)
}
