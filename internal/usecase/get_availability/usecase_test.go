package get_availability

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groovetime/booking-engine/internal/domain"
)

type fakeBookingRepo struct {
	counts map[string]int
}

func (f *fakeBookingRepo) CountActiveByDateForMonth(ctx context.Context, providerID string, monthStart, monthEnd time.Time) (map[string]int, error) {
	return f.counts, nil
}

type fakeBlockRepo struct {
	blocks []*domain.AvailabilityBlock
}

func (f *fakeBlockRepo) GetByProviderForPeriod(ctx context.Context, providerID string, from, to time.Time) ([]*domain.AvailabilityBlock, error) {
	return f.blocks, nil
}

type fakeCache struct {
	store map[string][]byte
	gets  int
	sets  int
}

func cacheKey(providerID string, year, month int) string {
	return providerID + "-" + time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

func (f *fakeCache) Get(ctx context.Context, providerID string, year, month int) ([]byte, bool, error) {
	f.gets++
	data, ok := f.store[cacheKey(providerID, year, month)]
	return data, ok, nil
}

func (f *fakeCache) Set(ctx context.Context, providerID string, year, month int, data []byte) error {
	f.sets++
	f.store[cacheKey(providerID, year, month)] = data
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

func newAvailabilityUseCase(t *testing.T, bookingRepo *fakeBookingRepo, blockRepo *fakeBlockRepo, cache AvailabilityCache) *UseCase {
	t.Helper()
	uc := NewUseCase(bookingRepo, blockRepo, newTestRegistry(t), cache, nopLogger{})
	uc.timeProvider = &fixedTime{now: time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)}
	return uc
}

func TestGetAvailability_MonthMap(t *testing.T) {
	bookingRepo := &fakeBookingRepo{counts: map[string]int{
		"2026-06-15": 1,
		"2026-06-20": 2,
	}}
	blockRepo := &fakeBlockRepo{blocks: []*domain.AvailabilityBlock{
		{ProviderID: "dj-main", BlockDate: time.Date(2026, 6, 25, 0, 0, 0, 0, time.UTC)},
	}}
	uc := newAvailabilityUseCase(t, bookingRepo, blockRepo, nil)

	resp, err := uc.Execute(context.Background(), &Request{ProviderID: "dj-main", Year: 2026, Month: 6})
	require.NoError(t, err)

	assert.Equal(t, "dj-main", resp.ProviderID)
	assert.Equal(t, string(domain.ServiceTypeDJ), resp.ServiceType)
	assert.Len(t, resp.Days, 30)

	// Частично занятая дата остаётся доступной (вместимость диджея 2)
	day := resp.Days["2026-06-15"]
	assert.True(t, day.Available)
	assert.Equal(t, 1, day.BookedSlots)
	assert.Equal(t, 1, day.RemainingSlots)

	// Полностью занятая дата
	day = resp.Days["2026-06-20"]
	assert.False(t, day.Available)
	assert.Equal(t, 0, day.RemainingSlots)

	// Заблокированная дата недоступна независимо от бронирований
	day = resp.Days["2026-06-25"]
	assert.False(t, day.Available)
	assert.True(t, day.Blocked)
	assert.Equal(t, 0, day.RemainingSlots)

	// Прошедшие даты месяца недоступны
	assert.False(t, resp.Days["2026-06-05"].Available)
	// Сегодня и будущее - доступны
	assert.True(t, resp.Days["2026-06-10"].Available)
	assert.True(t, resp.Days["2026-06-30"].Available)
}

func TestGetAvailability_UnitCapacity(t *testing.T) {
	bookingRepo := &fakeBookingRepo{counts: map[string]int{"2026-06-15": 1}}
	uc := newAvailabilityUseCase(t, bookingRepo, &fakeBlockRepo{}, nil)

	resp, err := uc.Execute(context.Background(), &Request{ProviderID: "booth-1", Year: 2026, Month: 6})
	require.NoError(t, err)

	// Одно бронирование занимает юнит на весь день
	day := resp.Days["2026-06-15"]
	assert.False(t, day.Available)
	assert.Equal(t, 1, day.Capacity)
}

func TestGetAvailability_CacheReadThrough(t *testing.T) {
	bookingRepo := &fakeBookingRepo{counts: map[string]int{}}
	cache := &fakeCache{store: map[string][]byte{}}
	uc := newAvailabilityUseCase(t, bookingRepo, &fakeBlockRepo{}, cache)

	req := &Request{ProviderID: "dj-main", Year: 2026, Month: 6}

	// Первый вызов: промах, результат записан в кеш
	first, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	// Второй вызов обслуживается из кеша
	second, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, 2, cache.gets)
	assert.Equal(t, first.Days, second.Days)
}

func TestGetAvailability_CorruptCacheFallsBack(t *testing.T) {
	cache := &fakeCache{store: map[string][]byte{
		cacheKey("dj-main", 2026, 6): []byte("not json"),
	}}
	uc := newAvailabilityUseCase(t, &fakeBookingRepo{counts: map[string]int{}}, &fakeBlockRepo{}, cache)

	resp, err := uc.Execute(context.Background(), &Request{ProviderID: "dj-main", Year: 2026, Month: 6})
	require.NoError(t, err)
	assert.Len(t, resp.Days, 30)

	// Пересчитанный ответ валиден и сериализуем
	_, err = json.Marshal(resp)
	require.NoError(t, err)
}

func TestGetAvailability_TodayBoundaryInServiceTimezone(t *testing.T) {
	// Часы сервиса впереди UTC: локально уже наступило 10 июня,
	// по UTC еще вечер 9-го. Граница "сегодня" идет по календарной дате
	loc := time.FixedZone("UTC+3", 3*60*60)
	uc := newAvailabilityUseCase(t, &fakeBookingRepo{counts: map[string]int{}}, &fakeBlockRepo{}, nil)
	uc.timeProvider = &fixedTime{now: time.Date(2026, 6, 10, 1, 0, 0, 0, loc)}

	resp, err := uc.Execute(context.Background(), &Request{ProviderID: "dj-main", Year: 2026, Month: 6})
	require.NoError(t, err)

	assert.False(t, resp.Days["2026-06-09"].Available)
	assert.True(t, resp.Days["2026-06-10"].Available)
}

func TestGetAvailability_Validation(t *testing.T) {
	uc := newAvailabilityUseCase(t, &fakeBookingRepo{}, &fakeBlockRepo{}, nil)

	_, err := uc.Execute(context.Background(), &Request{ProviderID: "", Year: 2026, Month: 6})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(context.Background(), &Request{ProviderID: "dj-main", Year: 2026, Month: 13})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(context.Background(), &Request{ProviderID: "missing", Year: 2026, Month: 6})
	assert.ErrorIs(t, err, ErrProviderNotFound)
}
