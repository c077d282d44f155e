package cancel_booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/groovetime/booking-engine/internal/domain"
)

var eventStart = time.Date(2026, 6, 15, 14, 0, 0, 0, time.UTC)

func TestEvaluateRefund_AdminAlwaysFull(t *testing.T) {
	// Администратор получает полный возврат даже за час до события
	now := eventStart.Add(-1 * time.Hour)
	d := evaluateRefund(eventStart, now, domain.RoleAdmin)
	assert.True(t, d.Eligible)
	assert.Equal(t, domain.RefundFull, d.Percentage)
}

func TestEvaluateRefund_MoreThanWeek(t *testing.T) {
	now := eventStart.Add(-200 * time.Hour)
	d := evaluateRefund(eventStart, now, domain.RoleUser)
	assert.True(t, d.Eligible)
	assert.Equal(t, domain.RefundFull, d.Percentage)
}

func TestEvaluateRefund_BetweenTwoDaysAndWeek(t *testing.T) {
	now := eventStart.Add(-100 * time.Hour)
	d := evaluateRefund(eventStart, now, domain.RoleUser)
	assert.True(t, d.Eligible)
	assert.Equal(t, domain.RefundHalf, d.Percentage)
}

func TestEvaluateRefund_LateCancellation(t *testing.T) {
	now := eventStart.Add(-24 * time.Hour)
	d := evaluateRefund(eventStart, now, domain.RoleUser)
	assert.False(t, d.Eligible)
	assert.Equal(t, domain.RefundNone, d.Percentage)
}

func TestEvaluateRefund_AfterEventStart(t *testing.T) {
	now := eventStart.Add(2 * time.Hour)
	d := evaluateRefund(eventStart, now, domain.RoleUser)
	assert.False(t, d.Eligible)
	assert.Equal(t, domain.RefundNone, d.Percentage)
}

func TestEvaluateRefund_Boundaries(t *testing.T) {
	// Ровно 168 часов - уже не полный возврат, а 50%
	now := eventStart.Add(-time.Duration(domain.FullRefundHours) * time.Hour)
	d := evaluateRefund(eventStart, now, domain.RoleUser)
	assert.True(t, d.Eligible)
	assert.Equal(t, domain.RefundHalf, d.Percentage)

	// Ровно 48 часов - возврата нет
	now = eventStart.Add(-time.Duration(domain.HalfRefundHours) * time.Hour)
	d = evaluateRefund(eventStart, now, domain.RoleUser)
	assert.False(t, d.Eligible)
	assert.Equal(t, domain.RefundNone, d.Percentage)
}
