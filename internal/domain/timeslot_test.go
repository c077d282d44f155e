package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifySlot(t *testing.T) {
	// Фотобудка всегда занимает весь день юнита
	assert.Equal(t, SlotUnit, ClassifySlot(ServiceTypePhotoboothUnit, "09:00", "10:00"))
	assert.Equal(t, SlotUnit, ClassifySlot(ServiceTypePhotoboothUnit, "14:00", "22:00"))

	// Диджей: конец не позже 11:00 - утро
	assert.Equal(t, SlotMorning, ClassifySlot(ServiceTypeDJ, "08:00", "10:30"))
	assert.Equal(t, SlotMorning, ClassifySlot(ServiceTypeDJ, "09:00", "11:00"))

	// Позже 11:00 - вечер, включая слот, пересекающий границу
	assert.Equal(t, SlotEvening, ClassifySlot(ServiceTypeDJ, "14:00", "18:00"))
	assert.Equal(t, SlotEvening, ClassifySlot(ServiceTypeDJ, "10:00", "12:00"))
}
