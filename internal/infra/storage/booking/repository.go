package booking

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/groovetime/booking-engine/internal/domain"
	"github.com/groovetime/booking-engine/pkg/dbmetrics"
	"github.com/groovetime/booking-engine/pkg/psqlbuilder"
)

var bookingColumns = []string{
	"id",
	"user_id",
	"provider_id",
	"service_type",
	"event_date",
	"start_time",
	"end_time",
	"status",
	"total_price",
	"payment_status",
	"payment_ref",
	"notes",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями и их слотами
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает бронирование вместе с его слотами
// Должен вызываться внутри транзакции (через context) - бронирование
// без слота существовать не может, обе вставки либо проходят, либо откатываются
func (r *Repository) Create(ctx context.Context, booking *domain.Booking, slots []*domain.TimeSlot) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"user_id",
			"provider_id",
			"service_type",
			"event_date",
			"start_time",
			"end_time",
			"status",
			"total_price",
			"payment_status",
			"notes",
		).
		Values(
			booking.UserID,
			booking.ProviderID,
			booking.ServiceType,
			booking.EventDate,
			booking.StartTime,
			booking.EndTime,
			booking.Status,
			booking.TotalPrice,
			booking.PaymentStatus,
			booking.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %w", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	for _, slot := range slots {
		slot.BookingID = booking.ID
		slot.Status = booking.Status

		slotQuery, slotArgs, err := psqlbuilder.Insert("time_slots").
			Columns(
				"booking_id",
				"provider_id",
				"slot_date",
				"start_time",
				"end_time",
				"slot_type",
				"status",
			).
			Values(
				slot.BookingID,
				slot.ProviderID,
				slot.SlotDate,
				slot.StartTime,
				slot.EndTime,
				slot.SlotType,
				slot.Status,
			).
			Suffix("RETURNING id, created_at").
			ToSql()

		if err != nil {
			return nil, fmt.Errorf("%w: Create - build slot insert query: %w", ErrBuildQuery, err)
		}

		var slotCreatedAt sql.NullTime
		err = executor.QueryRowContext(ctx, slotQuery, slotArgs...).Scan(&slot.ID, &slotCreatedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: Create - execute slot insert: %w", ErrExecQuery, err)
		}
		slot.CreatedAt = slotCreatedAt.Time
	}

	return booking, nil
}

// GetByID получает бронирование по ID
// Внутри транзакции строка блокируется (FOR UPDATE) - используется
// операциями markPaid и cancel, чтобы переход статуса был атомарным
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %w", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %w", ErrScanRow, err)
	}

	return booking, nil
}

// GetActiveByProviderAndDate получает все активные бронирования провайдера на дату
// Это чтение конфликтного валидатора: внутри транзакции строки блокируются
// (FOR UPDATE), чтобы проверка и запись составляли одну атомарную единицу
func (r *Repository) GetActiveByProviderAndDate(ctx context.Context, providerID string, date time.Time) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"provider_id": providerID}).
		Where(squirrel.Eq{"event_date": date}).
		Where(squirrel.NotEq{"status": inactiveStatusStrings()}).
		OrderBy("start_time ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByProviderAndDate - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByProviderAndDate - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// GetByUserID получает историю бронирований пользователя
// Опционально фильтрует по статусу
func (r *Repository) GetByUserID(ctx context.Context, userID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("event_date DESC, start_time DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// GetByProviderWithFilter получает бронирования провайдера с фильтрацией
// по периоду, статусу и включению отмененных
func (r *Repository) GetByProviderWithFilter(ctx context.Context, filter domain.ProviderBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"provider_id": filter.ProviderID})

	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"event_date": *filter.StartDate})
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"event_date": *filter.EndDate})
	}

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": inactiveStatusStrings()})
	}

	// Для конкретной даты сортируем по времени начала, для периода - сначала новые
	if filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.Equal(*filter.EndDate) {
		selectBuilder = selectBuilder.OrderBy("start_time ASC")
	} else {
		selectBuilder = selectBuilder.OrderBy("event_date DESC, start_time DESC")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByProviderWithFilter - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByProviderWithFilter - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// CountActiveByDateForMonth возвращает количество активных бронирований
// провайдера по датам за период [monthStart, monthEnd]
// Ключ карты - дата в формате YYYY-MM-DD
func (r *Repository) CountActiveByDateForMonth(ctx context.Context, providerID string, monthStart, monthEnd time.Time) (map[string]int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("event_date", "COUNT(*)").
		From("bookings").
		Where(squirrel.Eq{"provider_id": providerID}).
		Where(squirrel.GtOrEq{"event_date": monthStart}).
		Where(squirrel.LtOrEq{"event_date": monthEnd}).
		Where(squirrel.NotEq{"status": inactiveStatusStrings()}).
		GroupBy("event_date").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CountActiveByDateForMonth - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: CountActiveByDateForMonth - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var date time.Time
		var count int
		if err := rows.Scan(&date, &count); err != nil {
			return nil, fmt.Errorf("%w: CountActiveByDateForMonth - scan row: %w", ErrScanRow, err)
		}
		counts[date.Format(domain.DateFormat)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: CountActiveByDateForMonth - rows error: %w", ErrScanRow, err)
	}

	return counts, nil
}

// MarkPaid помечает бронирование оплаченным и сохраняет внешний идентификатор платежа
// Целевой статус вычисляет usecase (pending -> confirmed, completed остается)
func (r *Repository) MarkPaid(ctx context.Context, id int64, paymentRef string, status domain.BookingStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("payment_status", domain.PaymentPaid).
		Set("payment_ref", paymentRef).
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: MarkPaid - build update query: %w", ErrBuildQuery, err)
	}

	return r.execExpectingRow(ctx, executor, query, args, "MarkPaid")
}

// MarkRefunded помечает платеж возвращенным
// Вызывается только после успешного возврата у платежного коллаборатора
func (r *Repository) MarkRefunded(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("payment_status", domain.PaymentRefunded).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: MarkRefunded - build update query: %w", ErrBuildQuery, err)
	}

	return r.execExpectingRow(ctx, executor, query, args, "MarkRefunded")
}

// UpdateStatus обновляет статус бронирования и его слотов
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %w", ErrBuildQuery, err)
	}

	if err := r.execExpectingRow(ctx, executor, query, args, "UpdateStatus"); err != nil {
		return err
	}

	slotQuery, slotArgs, err := psqlbuilder.Update("time_slots").
		Set("status", status).
		Where(squirrel.Eq{"booking_id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build slot update query: %w", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, slotQuery, slotArgs...); err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute slot update: %w", ErrExecQuery, err)
	}

	return nil
}

// Cancel отменяет бронирование и все его слоты одним переходом
// Строки сохраняются для аудита, физического удаления нет
func (r *Repository) Cancel(ctx context.Context, id int64, reason string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCancelled).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %w", ErrBuildQuery, err)
	}

	if err := r.execExpectingRow(ctx, executor, query, args, "Cancel"); err != nil {
		return err
	}

	slotQuery, slotArgs, err := psqlbuilder.Update("time_slots").
		Set("status", domain.StatusCancelled).
		Where(squirrel.Eq{"booking_id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build slot update query: %w", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, slotQuery, slotArgs...); err != nil {
		return fmt.Errorf("%w: Cancel - execute slot update: %w", ErrExecQuery, err)
	}

	return nil
}

// GetSlotsByBookingID возвращает слоты бронирования
func (r *Repository) GetSlotsByBookingID(ctx context.Context, bookingID int64) ([]*domain.TimeSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"booking_id",
		"provider_id",
		"slot_date",
		"start_time",
		"end_time",
		"slot_type",
		"status",
		"created_at",
	).
		From("time_slots").
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("start_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetSlotsByBookingID - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetSlotsByBookingID - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	slots := make([]*domain.TimeSlot, 0)
	for rows.Next() {
		var slot domain.TimeSlot
		var createdAt sql.NullTime
		err := rows.Scan(
			&slot.ID,
			&slot.BookingID,
			&slot.ProviderID,
			&slot.SlotDate,
			&slot.StartTime,
			&slot.EndTime,
			&slot.SlotType,
			&slot.Status,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: GetSlotsByBookingID - scan row: %w", ErrScanRow, err)
		}
		slot.CreatedAt = createdAt.Time
		slots = append(slots, &slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetSlotsByBookingID - rows error: %w", ErrScanRow, err)
	}

	return slots, nil
}

func (r *Repository) execExpectingRow(ctx context.Context, executor DBExecutor, query string, args []interface{}, op string) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %w", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %w", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.ProviderID,
		&booking.ServiceType,
		&booking.EventDate,
		&booking.StartTime,
		&booking.EndTime,
		&booking.Status,
		&booking.TotalPrice,
		&booking.PaymentStatus,
		&booking.PaymentRef,
		&booking.Notes,
		&booking.CancellationReason,
		&booking.CancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return &booking, nil
}

func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %w", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %w", ErrScanRow, err)
	}

	return bookings, nil
}

func inactiveStatusStrings() []string {
	statuses := make([]string, len(domain.InactiveStatuses))
	for i, s := range domain.InactiveStatuses {
		statuses[i] = string(s)
	}
	return statuses
}
