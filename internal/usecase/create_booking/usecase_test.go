package create_booking

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groovetime/booking-engine/internal/domain"
	storage "github.com/groovetime/booking-engine/internal/infra/storage/booking"
	"github.com/groovetime/booking-engine/pkg/ptr"
)

// Фейки вместо моков: транзакция просто выполняет callback

type fakeBookingRepo struct {
	existing    []*domain.Booking
	existingErr error
	created     *domain.Booking
	slots       []*domain.TimeSlot
	createErr   error
}

func (f *fakeBookingRepo) Create(ctx context.Context, booking *domain.Booking, slots []*domain.TimeSlot) (*domain.Booking, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	booking.ID = 42
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt
	f.created = booking
	f.slots = slots
	return booking, nil
}

func (f *fakeBookingRepo) GetActiveByProviderAndDate(ctx context.Context, providerID string, date time.Time) ([]*domain.Booking, error) {
	if f.existingErr != nil {
		return nil, f.existingErr
	}
	return f.existing, nil
}

type fakeBlockRepo struct {
	blocked bool
}

func (f *fakeBlockRepo) ExistsForDate(ctx context.Context, providerID string, date time.Time) (bool, error) {
	return f.blocked, nil
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

type fakeCache struct {
	invalidated []string
}

func (f *fakeCache) Invalidate(ctx context.Context, providerID string, date time.Time) error {
	f.invalidated = append(f.invalidated, providerID)
	return nil
}

type fixedTime struct {
	now time.Time
}

func (f *fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Debug(format string, v ...interface{}) {}
func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

func newTestRegistry(t *testing.T) *domain.ProviderRegistry {
	t.Helper()
	registry, err := domain.NewProviderRegistry([]domain.Provider{
		{ID: "dj-main", Type: domain.ServiceTypeDJ, Name: "DJ", HourlyRate: 150},
		{ID: "booth-1", Type: domain.ServiceTypePhotoboothUnit, Name: "Booth", DailyRate: 400},
	})
	require.NoError(t, err)
	return registry
}

func newCreateUseCase(t *testing.T, bookingRepo *fakeBookingRepo, blockRepo *fakeBlockRepo, outboxRepo *fakeOutboxRepo, cache *fakeCache) *UseCase {
	t.Helper()
	var cacheIface AvailabilityCache
	if cache != nil {
		cacheIface = cache
	}
	uc := NewUseCase(bookingRepo, blockRepo, outboxRepo, newTestRegistry(t), &fakeTxManager{}, cacheIface, nopLogger{})
	uc.timeProvider = &fixedTime{now: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)}
	return uc
}

func TestCreateBooking_Success(t *testing.T) {
	bookingRepo := &fakeBookingRepo{}
	outboxRepo := &fakeOutboxRepo{}
	cache := &fakeCache{}
	uc := newCreateUseCase(t, bookingRepo, &fakeBlockRepo{}, outboxRepo, cache)

	resp, err := uc.Execute(context.Background(), &Request{
		UserID:     7,
		ProviderID: "dj-main",
		EventDate:  time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC),
		StartTime:  "14:00",
		EndTime:    "18:00",
		Notes:      ptr.Ptr("свадьба"),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(42), resp.ID)
	assert.Equal(t, string(domain.StatusPending), resp.Status)
	assert.Equal(t, string(domain.PaymentPending), resp.PaymentStatus)
	assert.InDelta(t, 600, resp.TotalPrice, 0.001)

	// Слот создан вместе с бронированием и классифицирован как вечерний
	require.Len(t, bookingRepo.slots, 1)
	assert.Equal(t, domain.SlotEvening, bookingRepo.slots[0].SlotType)

	// Ровно одно событие booking.created в outbox
	require.Len(t, outboxRepo.events, 1)
	assert.Equal(t, domain.EventBookingCreated, outboxRepo.events[0].Type)
	assert.Equal(t, int64(42), outboxRepo.events[0].BookingID)

	// Кеш месяца инвалидирован
	assert.Equal(t, []string{"dj-main"}, cache.invalidated)
}

func TestCreateBooking_UnitIndependence(t *testing.T) {
	// Занятость других юнитов не влияет: existing читается
	// только по запрошенному провайдеру
	bookingRepo := &fakeBookingRepo{}
	uc := newCreateUseCase(t, bookingRepo, &fakeBlockRepo{}, &fakeOutboxRepo{}, nil)

	resp, err := uc.Execute(context.Background(), &Request{
		UserID:     7,
		ProviderID: "booth-1",
		EventDate:  time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC),
		StartTime:  "10:00",
		EndTime:    "22:00",
	})
	require.NoError(t, err)
	assert.InDelta(t, 400, resp.TotalPrice, 0.001)
	require.Len(t, bookingRepo.slots, 1)
	assert.Equal(t, domain.SlotUnit, bookingRepo.slots[0].SlotType)
}

func TestCreateBooking_SlotConflict(t *testing.T) {
	bookingRepo := &fakeBookingRepo{
		existing: []*domain.Booking{{
			ServiceType: domain.ServiceTypeDJ,
			StartTime:   "14:00",
			EndTime:     "18:00",
			Status:      domain.StatusConfirmed,
		}},
	}
	outboxRepo := &fakeOutboxRepo{}
	uc := newCreateUseCase(t, bookingRepo, &fakeBlockRepo{}, outboxRepo, nil)

	_, err := uc.Execute(context.Background(), &Request{
		UserID:     7,
		ProviderID: "dj-main",
		EventDate:  time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC),
		StartTime:  "19:00",
		EndTime:    "22:00",
	})
	assert.ErrorIs(t, err, ErrSlotConflict)
	assert.Empty(t, outboxRepo.events)
}

func TestCreateBooking_DateBlocked(t *testing.T) {
	uc := newCreateUseCase(t, &fakeBookingRepo{}, &fakeBlockRepo{blocked: true}, &fakeOutboxRepo{}, nil)

	_, err := uc.Execute(context.Background(), &Request{
		UserID:     7,
		ProviderID: "dj-main",
		EventDate:  time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC),
		StartTime:  "14:00",
		EndTime:    "18:00",
	})
	assert.ErrorIs(t, err, ErrDateBlocked)
}

func TestCreateBooking_ProviderNotFound(t *testing.T) {
	uc := newCreateUseCase(t, &fakeBookingRepo{}, &fakeBlockRepo{}, &fakeOutboxRepo{}, nil)

	_, err := uc.Execute(context.Background(), &Request{
		UserID:     7,
		ProviderID: "missing",
		EventDate:  time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC),
		StartTime:  "14:00",
		EndTime:    "18:00",
	})
	assert.ErrorIs(t, err, ErrProviderNotFound)
}

func TestCreateBooking_PastDate(t *testing.T) {
	uc := newCreateUseCase(t, &fakeBookingRepo{}, &fakeBlockRepo{}, &fakeOutboxRepo{}, nil)

	_, err := uc.Execute(context.Background(), &Request{
		UserID:     7,
		ProviderID: "dj-main",
		EventDate:  time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		StartTime:  "14:00",
		EndTime:    "18:00",
	})
	assert.ErrorIs(t, err, ErrInvalidDate)
}

// Конкурирующая транзакция побеждает на коммите: serialization failure
// от менеджера транзакций превращается в конфликт слота, а не в 500
func TestCreateBooking_LostRaceAtCommit(t *testing.T) {
	outboxRepo := &fakeOutboxRepo{}
	uc := newCreateUseCase(t, &fakeBookingRepo{}, &fakeBlockRepo{}, outboxRepo, nil)
	uc.txManager = &serializationFailureTxManager{}

	_, err := uc.Execute(context.Background(), &Request{
		UserID:     7,
		ProviderID: "dj-main",
		EventDate:  time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC),
		StartTime:  "14:00",
		EndTime:    "18:00",
	})
	assert.ErrorIs(t, err, ErrSlotConflict)
}

// Serialization failure может подняться и на отдельном стейтменте внутри
// транзакции (FOR UPDATE чтение, дедлок). Цепочка оберток репозитория и
// use case обязана сохранить pq.Error видимым для errors.As
func TestCreateBooking_LostRaceAtStatement(t *testing.T) {
	bookingRepo := &fakeBookingRepo{
		existingErr: fmt.Errorf("%w: GetActiveByProviderAndDate - execute query: %w",
			storage.ErrExecQuery, &pq.Error{Code: "40001"}),
	}
	outboxRepo := &fakeOutboxRepo{}
	uc := newCreateUseCase(t, bookingRepo, &fakeBlockRepo{}, outboxRepo, nil)

	_, err := uc.Execute(context.Background(), &Request{
		UserID:     7,
		ProviderID: "dj-main",
		EventDate:  time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC),
		StartTime:  "14:00",
		EndTime:    "18:00",
	})
	assert.ErrorIs(t, err, ErrSlotConflict)
	assert.NotErrorIs(t, err, ErrInternal)
	assert.Empty(t, outboxRepo.events)
}

type serializationFailureTxManager struct{}

func (f *serializationFailureTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fmt.Errorf("txmanager: commit transaction: %w", &pq.Error{Code: "40001"})
}
