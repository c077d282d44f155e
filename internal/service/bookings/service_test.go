package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groovetime/booking-engine/internal/domain"
	bookingRepo "github.com/groovetime/booking-engine/internal/infra/storage/booking"
	"github.com/groovetime/booking-engine/internal/service/bookings/models"
)

type fakeBookingRepo struct {
	booking       *domain.Booking
	bookings      []*domain.Booking
	getErr        error
	updatedID     int64
	updatedStatus domain.BookingStatus
}

func (f *fakeBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.booking, nil
}

func (f *fakeBookingRepo) GetByUserID(ctx context.Context, userID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	return f.bookings, nil
}

func (f *fakeBookingRepo) GetByProviderWithFilter(ctx context.Context, filter domain.ProviderBookingsFilter) ([]*domain.Booking, error) {
	return f.bookings, nil
}

func (f *fakeBookingRepo) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	f.updatedID = id
	f.updatedStatus = status
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

func (f *fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

func testRegistry(t *testing.T) *domain.ProviderRegistry {
	t.Helper()
	registry, err := domain.NewProviderRegistry([]domain.Provider{
		{ID: "dj-main", Type: domain.ServiceTypeDJ, Name: "DJ", HourlyRate: 150},
	})
	require.NoError(t, err)
	return registry
}

func confirmedBooking() *domain.Booking {
	return &domain.Booking{
		ID:          42,
		UserID:      7,
		ProviderID:  "dj-main",
		ServiceType: domain.ServiceTypeDJ,
		EventDate:   time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC),
		StartTime:   "14:00",
		EndTime:     "18:00",
		Status:      domain.StatusConfirmed,
	}
}

func newService(repo *fakeBookingRepo, outbox *fakeOutboxRepo, t *testing.T) *Service {
	return NewService(repo, outbox, testRegistry(t), &fakeTxManager{}, nopLogger{})
}

func TestGetByID_OwnerAllowed(t *testing.T) {
	svc := newService(&fakeBookingRepo{booking: confirmedBooking()}, &fakeOutboxRepo{}, t)

	resp, err := svc.GetByID(context.Background(), 42, 7, "user")
	require.NoError(t, err)
	assert.Equal(t, int64(42), resp.ID)
}

func TestGetByID_StrangerDenied(t *testing.T) {
	svc := newService(&fakeBookingRepo{booking: confirmedBooking()}, &fakeOutboxRepo{}, t)

	_, err := svc.GetByID(context.Background(), 42, 1000, "user")
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestGetByID_AdminAllowed(t *testing.T) {
	svc := newService(&fakeBookingRepo{booking: confirmedBooking()}, &fakeOutboxRepo{}, t)

	resp, err := svc.GetByID(context.Background(), 42, 1000, "admin")
	require.NoError(t, err)
	assert.Equal(t, int64(42), resp.ID)
}

func TestGetByID_NotFound(t *testing.T) {
	svc := newService(&fakeBookingRepo{getErr: bookingRepo.ErrBookingNotFound}, &fakeOutboxRepo{}, t)

	_, err := svc.GetByID(context.Background(), 42, 7, "user")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestGetUserBookings_OwnHistoryOnly(t *testing.T) {
	svc := newService(&fakeBookingRepo{bookings: []*domain.Booking{confirmedBooking()}}, &fakeOutboxRepo{}, t)

	_, err := svc.GetUserBookings(context.Background(), &models.GetUserBookingsRequest{
		UserID: 7, ActorID: 1000, ActorRole: "user",
	})
	assert.ErrorIs(t, err, ErrAccessDenied)

	resp, err := svc.GetUserBookings(context.Background(), &models.GetUserBookingsRequest{
		UserID: 7, ActorID: 7, ActorRole: "user",
	})
	require.NoError(t, err)
	assert.Len(t, resp.Bookings, 1)
}

func TestGetProviderBookings_AdminOnly(t *testing.T) {
	svc := newService(&fakeBookingRepo{bookings: []*domain.Booking{confirmedBooking()}}, &fakeOutboxRepo{}, t)

	_, err := svc.GetProviderBookings(context.Background(), &models.GetProviderBookingsRequest{
		ProviderID: "dj-main", ActorRole: "user",
	})
	assert.ErrorIs(t, err, ErrAccessDenied)

	resp, err := svc.GetProviderBookings(context.Background(), &models.GetProviderBookingsRequest{
		ProviderID: "dj-main", ActorRole: "admin",
	})
	require.NoError(t, err)
	assert.Len(t, resp.Bookings, 1)
}

func TestMarkCompleted(t *testing.T) {
	repo := &fakeBookingRepo{booking: confirmedBooking()}
	outbox := &fakeOutboxRepo{}
	svc := newService(repo, outbox, t)

	resp, err := svc.MarkCompleted(context.Background(), 42, "admin")
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusCompleted), resp.Status)
	assert.Equal(t, domain.StatusCompleted, repo.updatedStatus)
	require.Len(t, outbox.events, 1)
	assert.Equal(t, domain.EventBookingCompleted, outbox.events[0].Type)
}

func TestMarkCompleted_NonAdminDenied(t *testing.T) {
	svc := newService(&fakeBookingRepo{booking: confirmedBooking()}, &fakeOutboxRepo{}, t)

	_, err := svc.MarkCompleted(context.Background(), 42, "user")
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestMarkCompleted_PendingRejected(t *testing.T) {
	b := confirmedBooking()
	b.Status = domain.StatusPending
	svc := newService(&fakeBookingRepo{booking: b}, &fakeOutboxRepo{}, t)

	_, err := svc.MarkCompleted(context.Background(), 42, "admin")
	assert.ErrorIs(t, err, ErrCannotComplete)
}
