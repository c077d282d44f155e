package outbox

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/groovetime/booking-engine/internal/domain"
	"github.com/groovetime/booking-engine/pkg/dbmetrics"
	"github.com/groovetime/booking-engine/pkg/psqlbuilder"
)

// Repository репозиторий outbox-таблицы lifecycle-событий
// Событие вставляется в той же транзакции, что и переход статуса бронирования,
// поэтому ровно одно событие на переход гарантировано на уровне БД
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория outbox
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Insert записывает событие в outbox (внутри транзакции перехода)
// EventID генерируется здесь и служит ключом дедупликации у потребителя
func (r *Repository) Insert(ctx context.Context, event *domain.BookingEvent) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}

	query, args, err := psqlbuilder.Insert("booking_events").
		Columns("event_id", "booking_id", "event_type", "payload").
		Values(event.EventID, event.BookingID, event.Type, event.Payload).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Insert - build insert query: %w", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&event.ID, &createdAt); err != nil {
		return fmt.Errorf("%w: Insert - execute insert: %w", ErrExecQuery, err)
	}
	event.CreatedAt = createdAt.Time

	return nil
}

// FetchUnpublished возвращает неопубликованные события (старые первыми)
// Внутри транзакции добавляет FOR UPDATE SKIP LOCKED, чтобы несколько
// экземпляров relay не публиковали одно событие одновременно
func (r *Repository) FetchUnpublished(ctx context.Context, limit int) ([]*domain.BookingEvent, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("id", "event_id", "booking_id", "event_type", "payload", "created_at", "published_at").
		From("booking_events").
		Where(squirrel.Eq{"published_at": nil}).
		OrderBy("id ASC").
		Limit(uint64(limit))

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE SKIP LOCKED")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FetchUnpublished - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: FetchUnpublished - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	events := make([]*domain.BookingEvent, 0)
	for rows.Next() {
		var e domain.BookingEvent
		var createdAt sql.NullTime
		if err := rows.Scan(&e.ID, &e.EventID, &e.BookingID, &e.Type, &e.Payload, &createdAt, &e.PublishedAt); err != nil {
			return nil, fmt.Errorf("%w: FetchUnpublished - scan row: %w", ErrScanRow, err)
		}
		e.CreatedAt = createdAt.Time
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: FetchUnpublished - rows error: %w", ErrScanRow, err)
	}

	return events, nil
}

// MarkPublished помечает события опубликованными
func (r *Repository) MarkPublished(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("booking_events").
		Set("published_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": ids}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: MarkPublished - build update query: %w", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: MarkPublished - execute update: %w", ErrExecQuery, err)
	}

	return nil
}

// CountUnpublished возвращает количество неопубликованных событий (для метрик)
func (r *Repository) CountUnpublished(ctx context.Context) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("booking_events").
		Where(squirrel.Eq{"published_at": nil}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: CountUnpublished - build select query: %w", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountUnpublished - scan row: %w", ErrScanRow, err)
	}

	return count, nil
}
