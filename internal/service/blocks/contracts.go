package blocks

import (
	"context"
	"time"

	"github.com/groovetime/booking-engine/internal/domain"
)

// BlockRepository интерфейс репозитория административных блокировок
type BlockRepository interface {
	Create(ctx context.Context, block *domain.AvailabilityBlock) (*domain.AvailabilityBlock, error)
	GetByID(ctx context.Context, id int64) (*domain.AvailabilityBlock, error)
	Delete(ctx context.Context, id int64) error
}

// ProviderRegistry интерфейс реестра провайдеров
type ProviderRegistry interface {
	Get(id string) (*domain.Provider, error)
}

// AvailabilityCache интерфейс кеша доступности
type AvailabilityCache interface {
	Invalidate(ctx context.Context, providerID string, date time.Time) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
