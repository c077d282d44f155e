package block

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/groovetime/booking-engine/internal/domain"
	"github.com/groovetime/booking-engine/pkg/dbmetrics"
	"github.com/groovetime/booking-engine/pkg/psqlbuilder"
)

// Repository репозиторий административных блокировок дат
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория блокировок
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает блокировку даты провайдера
// Повторная блокировка той же даты возвращает ErrBlockExists
// (уникальный индекс на (provider_id, block_date))
func (r *Repository) Create(ctx context.Context, b *domain.AvailabilityBlock) (*domain.AvailabilityBlock, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("availability_blocks").
		Columns("provider_id", "block_date", "reason", "created_by").
		Values(b.ProviderID, b.BlockDate, b.Reason, b.CreatedBy).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %w", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&b.ID, &createdAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrBlockExists
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	b.CreatedAt = createdAt.Time
	return b, nil
}

// GetByID получает блокировку по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.AvailabilityBlock, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "provider_id", "block_date", "reason", "created_by", "created_at").
		From("availability_blocks").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %w", ErrBuildQuery, err)
	}

	var b domain.AvailabilityBlock
	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&b.ID, &b.ProviderID, &b.BlockDate, &b.Reason, &b.CreatedBy, &createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrBlockNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan block: %w", ErrScanRow, err)
	}

	b.CreatedAt = createdAt.Time
	return &b, nil
}

// ExistsForDate проверяет наличие блокировки даты у провайдера
// Используется конфликтным валидатором внутри транзакции создания бронирования
func (r *Repository) ExistsForDate(ctx context.Context, providerID string, date time.Time) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("1").
		From("availability_blocks").
		Where(squirrel.Eq{"provider_id": providerID}).
		Where(squirrel.Eq{"block_date": date}).
		Limit(1).
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: ExistsForDate - build select query: %w", ErrBuildQuery, err)
	}

	var one int
	err = executor.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: ExistsForDate - scan row: %w", ErrScanRow, err)
	}

	return true, nil
}

// GetByProviderForPeriod возвращает блокировки провайдера за период [start, end]
// Используется калькулятором доступности для месячной карты
func (r *Repository) GetByProviderForPeriod(ctx context.Context, providerID string, start, end time.Time) ([]*domain.AvailabilityBlock, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "provider_id", "block_date", "reason", "created_by", "created_at").
		From("availability_blocks").
		Where(squirrel.Eq{"provider_id": providerID}).
		Where(squirrel.GtOrEq{"block_date": start}).
		Where(squirrel.LtOrEq{"block_date": end}).
		OrderBy("block_date ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByProviderForPeriod - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByProviderForPeriod - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	blocks := make([]*domain.AvailabilityBlock, 0)
	for rows.Next() {
		var b domain.AvailabilityBlock
		var createdAt sql.NullTime
		if err := rows.Scan(&b.ID, &b.ProviderID, &b.BlockDate, &b.Reason, &b.CreatedBy, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: GetByProviderForPeriod - scan row: %w", ErrScanRow, err)
		}
		b.CreatedAt = createdAt.Time
		blocks = append(blocks, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetByProviderForPeriod - rows error: %w", ErrScanRow, err)
	}

	return blocks, nil
}

// Delete удаляет блокировку даты
// Блокировки, в отличие от бронирований, удаляются физически: это
// административный инструмент, а не бизнес-запись
func (r *Repository) Delete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("availability_blocks").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrBlockNotFound
	}

	return nil
}
