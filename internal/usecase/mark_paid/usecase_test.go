package mark_paid

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groovetime/booking-engine/internal/domain"
	"github.com/groovetime/booking-engine/pkg/ptr"
)

type fakeBookingRepo struct {
	booking      *domain.Booking
	markedID     int64
	markedRef    string
	markedStatus domain.BookingStatus
}

func (f *fakeBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return f.booking, nil
}

func (f *fakeBookingRepo) MarkPaid(ctx context.Context, id int64, paymentRef string, status domain.BookingStatus) error {
	f.markedID = id
	f.markedRef = paymentRef
	f.markedStatus = status
	return nil
}

type fakeOutboxRepo struct {
	events []*domain.BookingEvent
}

func (f *fakeOutboxRepo) Insert(ctx context.Context, event *domain.BookingEvent) error {
	f.events = append(f.events, event)
	return nil
}

type fakeTxManager struct{}

func (f *fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

func pendingBooking() *domain.Booking {
	return &domain.Booking{
		ID:            42,
		UserID:        7,
		ProviderID:    "dj-main",
		Status:        domain.StatusPending,
		PaymentStatus: domain.PaymentPending,
		TotalPrice:    600,
	}
}

func TestMarkPaid_ConfirmsPending(t *testing.T) {
	repo := &fakeBookingRepo{booking: pendingBooking()}
	outbox := &fakeOutboxRepo{}
	uc := NewUseCase(repo, outbox, &fakeTxManager{}, nopLogger{})

	resp, err := uc.Execute(context.Background(), &Request{BookingID: 42, ExternalRef: "pi_123"})
	require.NoError(t, err)

	assert.False(t, resp.AlreadyPaid)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	assert.Equal(t, "pi_123", repo.markedRef)
	assert.Equal(t, domain.StatusConfirmed, repo.markedStatus)

	require.Len(t, outbox.events, 1)
	assert.Equal(t, domain.EventBookingConfirmed, outbox.events[0].Type)
}

func TestMarkPaid_DuplicateDeliveryIdempotent(t *testing.T) {
	b := pendingBooking()
	b.Status = domain.StatusConfirmed
	b.PaymentStatus = domain.PaymentPaid
	b.PaymentRef = ptr.Ptr("pi_123")

	repo := &fakeBookingRepo{booking: b}
	outbox := &fakeOutboxRepo{}
	uc := NewUseCase(repo, outbox, &fakeTxManager{}, nopLogger{})

	resp, err := uc.Execute(context.Background(), &Request{BookingID: 42, ExternalRef: "pi_123"})
	require.NoError(t, err)

	// Повторная доставка: переход не дублируется, события нет
	assert.True(t, resp.AlreadyPaid)
	assert.Zero(t, repo.markedID)
	assert.Empty(t, outbox.events)
}

func TestMarkPaid_DifferentRefConflict(t *testing.T) {
	b := pendingBooking()
	b.Status = domain.StatusConfirmed
	b.PaymentStatus = domain.PaymentPaid
	b.PaymentRef = ptr.Ptr("pi_123")

	uc := NewUseCase(&fakeBookingRepo{booking: b}, &fakeOutboxRepo{}, &fakeTxManager{}, nopLogger{})

	_, err := uc.Execute(context.Background(), &Request{BookingID: 42, ExternalRef: "pi_other"})
	assert.ErrorIs(t, err, ErrPaymentRefMismatch)
}

func TestMarkPaid_CancelledRejected(t *testing.T) {
	b := pendingBooking()
	b.Status = domain.StatusCancelled

	repo := &fakeBookingRepo{booking: b}
	uc := NewUseCase(repo, &fakeOutboxRepo{}, &fakeTxManager{}, nopLogger{})

	_, err := uc.Execute(context.Background(), &Request{BookingID: 42, ExternalRef: "pi_123"})
	assert.ErrorIs(t, err, ErrCannotConfirm)
	assert.Zero(t, repo.markedID)
}

func TestMarkPaid_InvalidInput(t *testing.T) {
	uc := NewUseCase(&fakeBookingRepo{}, &fakeOutboxRepo{}, &fakeTxManager{}, nopLogger{})

	_, err := uc.Execute(context.Background(), &Request{BookingID: 0, ExternalRef: "pi_123"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(context.Background(), &Request{BookingID: 42, ExternalRef: ""})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
