package cancel_booking

import (
	"time"

	"github.com/groovetime/booking-engine/internal/domain"
)

// RefundDecision результат применения политики возврата
type RefundDecision struct {
	Eligible   bool
	Percentage int
}

// evaluateRefund применяет политику возврата к моменту отмены.
// Отмена администратором всегда дает полный возврат независимо от сроков.
// Для пользователя процент определяется временем до начала мероприятия:
// более 168 часов - 100%, от 48 до 168 часов - 50%, 48 часов и менее - 0%.
// Чистая функция: все входы явные, решение детерминировано
func evaluateRefund(eventStart, now time.Time, role domain.ActorRole) RefundDecision {
	if role == domain.RoleAdmin {
		return RefundDecision{Eligible: true, Percentage: domain.RefundFull}
	}

	hoursUntil := eventStart.Sub(now).Hours()

	switch {
	case hoursUntil > domain.FullRefundHours:
		return RefundDecision{Eligible: true, Percentage: domain.RefundFull}
	case hoursUntil > domain.HalfRefundHours:
		return RefundDecision{Eligible: true, Percentage: domain.RefundHalf}
	default:
		// Поздняя отмена, в том числе после начала мероприятия
		return RefundDecision{Eligible: false, Percentage: domain.RefundNone}
	}
}
