package models

import (
	"time"

	"github.com/groovetime/booking-engine/internal/domain"
)

// CreateBlockRequest запрос на создание блокировки даты
type CreateBlockRequest struct {
	ProviderID string    `json:"providerId"`
	BlockDate  time.Time `json:"blockDate"`
	Reason     string    `json:"reason"`
	ActorID    int64     `json:"actorId"`
	ActorRole  string    `json:"actorRole"`
}

// DeleteBlockRequest запрос на снятие блокировки
type DeleteBlockRequest struct {
	BlockID   int64  `json:"blockId"`
	ActorRole string `json:"actorRole"`
}

// BlockResponse ответ с данными блокировки
type BlockResponse struct {
	ID         int64     `json:"id"`
	ProviderID string    `json:"providerId"`
	BlockDate  string    `json:"blockDate"` // "2026-06-15"
	Reason     string    `json:"reason,omitempty"`
	CreatedBy  int64     `json:"createdBy"`
	CreatedAt  time.Time `json:"createdAt"`
}

// FromDomainBlock конвертирует domain модель в DTO
func FromDomainBlock(b *domain.AvailabilityBlock) *BlockResponse {
	if b == nil {
		return nil
	}
	return &BlockResponse{
		ID:         b.ID,
		ProviderID: b.ProviderID,
		BlockDate:  b.BlockDate.Format(domain.DateFormat),
		Reason:     b.Reason,
		CreatedBy:  b.CreatedBy,
		CreatedAt:  b.CreatedAt,
	}
}
