package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProviderRegistry(t *testing.T) {
	registry, err := NewProviderRegistry([]Provider{
		{ID: "dj-main", Type: ServiceTypeDJ, Name: "DJ", HourlyRate: 150},
		{ID: "booth-1", Type: ServiceTypePhotoboothUnit, Name: "Booth 1", DailyRate: 400},
	})
	require.NoError(t, err)

	p, err := registry.Get("dj-main")
	require.NoError(t, err)
	assert.Equal(t, ServiceTypeDJ, p.Type)

	_, err = registry.Get("missing")
	assert.ErrorIs(t, err, ErrProviderNotFound)

	// Порядок списка совпадает с порядком конфигурации
	list := registry.List()
	require.Len(t, list, 2)
	assert.Equal(t, "dj-main", list[0].ID)
	assert.Equal(t, "booth-1", list[1].ID)
}

func TestNewProviderRegistry_Invalid(t *testing.T) {
	_, err := NewProviderRegistry([]Provider{
		{ID: "x", Type: "jukebox"},
	})
	assert.ErrorIs(t, err, ErrUnknownServiceType)

	_, err = NewProviderRegistry([]Provider{
		{ID: "dup", Type: ServiceTypeDJ},
		{ID: "dup", Type: ServiceTypeDJ},
	})
	assert.ErrorIs(t, err, ErrDuplicateProvider)
}

func TestServiceType_DailyCapacity(t *testing.T) {
	assert.Equal(t, DJDailyCapacity, ServiceTypeDJ.DailyCapacity())
	assert.Equal(t, UnitDailyCapacity, ServiceTypePhotoboothUnit.DailyCapacity())
}

func TestBooking_Transitions(t *testing.T) {
	b := &Booking{Status: StatusPending}
	assert.True(t, b.IsActive())
	assert.True(t, b.CanBeCancelled())
	assert.False(t, b.CanBeCompleted())

	b.Status = StatusConfirmed
	assert.True(t, b.CanBeCancelled())
	assert.True(t, b.CanBeCompleted())

	b.Status = StatusCompleted
	assert.False(t, b.CanBeCancelled())
	assert.True(t, b.IsTerminal())

	b.Status = StatusCancelled
	assert.False(t, b.IsActive())
	assert.False(t, b.CanBeCancelled())
}
