package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// AvailabilityCache кеш месячных карт доступности в Redis
// Ключ - (providerID, year, month); инвалидируется при любой записи,
// затрагивающей даты этого месяца. Кеш - оптимизация: корректность
// обеспечивается пересчетом, промах или ошибка Redis приводят к пересчету
type AvailabilityCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewAvailabilityCache создает кеш с указанным TTL
func NewAvailabilityCache(rdb *redis.Client, ttl time.Duration) *AvailabilityCache {
	return &AvailabilityCache{rdb: rdb, ttl: ttl}
}

func key(providerID string, year, month int) string {
	return fmt.Sprintf("availability:%s:%04d-%02d", providerID, year, month)
}

// Get возвращает закешированную карту месяца
// ok=false при промахе; ошибка Redis возвращается вызывающему для логирования
func (c *AvailabilityCache) Get(ctx context.Context, providerID string, year, month int) ([]byte, bool, error) {
	payload, err := c.rdb.Get(ctx, key(providerID, year, month)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: get %s: %w", key(providerID, year, month), err)
	}
	return payload, true, nil
}

// Set сохраняет карту месяца с TTL
func (c *AvailabilityCache) Set(ctx context.Context, providerID string, year, month int, payload []byte) error {
	if err := c.rdb.Set(ctx, key(providerID, year, month), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache: set %s: %w", key(providerID, year, month), err)
	}
	return nil
}

// Invalidate сбрасывает карту месяца, в который попадает дата
// Вызывается после каждой записи, меняющей занятость (создание,
// отмена, блокировка даты)
func (c *AvailabilityCache) Invalidate(ctx context.Context, providerID string, date time.Time) error {
	k := key(providerID, date.Year(), int(date.Month()))
	if err := c.rdb.Del(ctx, k).Err(); err != nil {
		return fmt.Errorf("cache: invalidate %s: %w", k, err)
	}
	return nil
}
