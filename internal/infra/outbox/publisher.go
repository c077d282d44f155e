package outbox

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/groovetime/booking-engine/internal/domain"
)

// OutboxRepository интерфейс репозитория outbox-таблицы
type OutboxRepository interface {
	FetchUnpublished(ctx context.Context, limit int) ([]*domain.BookingEvent, error)
	MarkPublished(ctx context.Context, ids []int64) error
	CountUnpublished(ctx context.Context) (int, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics интерфейс метрик публикации (опционально, может быть nil)
type Metrics interface {
	IncOutboxPublished(eventType string)
	SetOutboxPending(count int)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Publisher relay, доставляющий lifecycle-события из outbox в Kafka
// Доставка at-least-once: события помечаются опубликованными только после
// успешной записи в брокер; дедупликация - ответственность диспетчера
// уведомлений (по заголовку event_id)
type Publisher struct {
	outboxRepo OutboxRepository
	txManager  TransactionManager
	metrics    Metrics
	logger     Logger
	brokers    []string
	pollEvery  time.Duration
	batchSize  int
}

// NewPublisher создает relay публикации событий
func NewPublisher(
	outboxRepo OutboxRepository,
	txManager TransactionManager,
	metrics Metrics,
	logger Logger,
	brokers string,
	pollEvery time.Duration,
	batchSize int,
) *Publisher {
	return &Publisher{
		outboxRepo: outboxRepo,
		txManager:  txManager,
		metrics:    metrics,
		logger:     logger,
		brokers:    splitBrokers(brokers),
		pollEvery:  pollEvery,
		batchSize:  batchSize,
	}
}

// Run запускает цикл публикации; останавливается при отмене контекста
func (p *Publisher) Run(ctx context.Context) {
	if len(p.brokers) == 0 {
		p.logger.Warn("Outbox publisher disabled: no kafka brokers configured")
		return
	}

	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  p.brokers,
		Balancer: &kafka.Hash{},
	})
	defer writer.Close()

	p.logger.Info("Outbox publisher started (brokers=%s, poll=%s, batch=%d)",
		strings.Join(p.brokers, ","), p.pollEvery, p.batchSize)

	ticker := time.NewTicker(p.pollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Outbox publisher stopped")
			return
		case <-ticker.C:
			if err := p.publishBatch(ctx, writer); err != nil {
				p.logger.Error("Outbox publish failed: %v", err)
			}
		}
	}
}

// publishBatch забирает пачку событий под блокировкой и отправляет в Kafka
// Топик - тип события, ключ партиционирования - ID бронирования
func (p *Publisher) publishBatch(ctx context.Context, writer *kafka.Writer) error {
	return p.txManager.Do(ctx, func(txCtx context.Context) error {
		events, err := p.outboxRepo.FetchUnpublished(txCtx, p.batchSize)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}

		ids := make([]int64, 0, len(events))
		for _, event := range events {
			msg := kafka.Message{
				Topic: string(event.Type),
				Key:   []byte(strconv.FormatInt(event.BookingID, 10)),
				Value: event.Payload,
				Headers: []kafka.Header{
					{Key: "event_id", Value: []byte(event.EventID)},
					{Key: "event_type", Value: []byte(string(event.Type))},
				},
			}
			if err := writer.WriteMessages(ctx, msg); err != nil {
				return err
			}
			if p.metrics != nil {
				p.metrics.IncOutboxPublished(string(event.Type))
			}
			ids = append(ids, event.ID)
		}

		if err := p.outboxRepo.MarkPublished(txCtx, ids); err != nil {
			return err
		}

		if p.metrics != nil {
			if pending, err := p.outboxRepo.CountUnpublished(txCtx); err == nil {
				p.metrics.SetOutboxPending(pending)
			}
		}

		p.logger.Info("Outbox publisher: published %d event(s)", len(ids))
		return nil
	})
}

func splitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
