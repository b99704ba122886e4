package schedule

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/avkor/SMB-SchedulingService/internal/domain"
	"github.com/avkor/SMB-SchedulingService/pkg/dbmetrics"
	"github.com/avkor/SMB-SchedulingService/pkg/psqlbuilder"
	"github.com/avkor/SMB-SchedulingService/pkg/types"
)

// Repository репозиторий расписания: недельные часы и исключения на даты
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписания
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetWeeklyHours возвращает расписание бизнеса на все 7 дней недели
// Отсутствующие дни досоздаются лениво со статусом "закрыто",
// так что результат всегда содержит ровно 7 строк
func (r *Repository) GetWeeklyHours(ctx context.Context, businessID int64) ([]*domain.WeeklyHours, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if err := r.seedMissingWeekdays(ctx, businessID); err != nil {
		return nil, err
	}

	query, args, err := psqlbuilder.Select(
		"id",
		"business_id",
		"weekday",
		"is_open",
		"range1_start",
		"range1_end",
		"range2_start",
		"range2_end",
		"created_at",
		"updated_at",
	).
		From("weekly_hours").
		Where(squirrel.Eq{"business_id": businessID}).
		OrderBy("weekday ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetWeeklyHours - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetWeeklyHours - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	hours := make([]*domain.WeeklyHours, 0, 7)
	for rows.Next() {
		var h domain.WeeklyHours
		var weekday int
		var r1s, r1e, r2s, r2e sql.NullString
		var createdAt, updatedAt sql.NullTime

		if err := rows.Scan(
			&h.ID,
			&h.BusinessID,
			&weekday,
			&h.IsOpen,
			&r1s, &r1e, &r2s, &r2e,
			&createdAt,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: GetWeeklyHours - scan row: %w", ErrScanRow, err)
		}

		h.Weekday = time.Weekday(weekday)
		h.Range1 = toTimeRange(r1s, r1e)
		h.Range2 = toTimeRange(r2s, r2e)
		h.CreatedAt = createdAt.Time
		h.UpdatedAt = updatedAt.Time

		hours = append(hours, &h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetWeeklyHours - iterate rows: %w", ErrExecQuery, err)
	}

	return hours, nil
}

// seedMissingWeekdays досоздает недостающие дни недели (закрытыми)
func (r *Repository) seedMissingWeekdays(ctx context.Context, businessID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	insertBuilder := psqlbuilder.Insert("weekly_hours").
		Columns("business_id", "weekday", "is_open")

	for weekday := 0; weekday < 7; weekday++ {
		insertBuilder = insertBuilder.Values(businessID, weekday, false)
	}

	query, args, err := insertBuilder.
		Suffix("ON CONFLICT (business_id, weekday) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: seedMissingWeekdays - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: seedMissingWeekdays - execute insert: %w", ErrExecQuery, err)
	}

	return nil
}

// UpsertWeeklyHours создает или обновляет расписание одного дня недели
func (r *Repository) UpsertWeeklyHours(ctx context.Context, h *domain.WeeklyHours) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	r1s, r1e := fromTimeRange(h.Range1)
	r2s, r2e := fromTimeRange(h.Range2)

	query, args, err := psqlbuilder.Insert("weekly_hours").
		Columns("business_id", "weekday", "is_open", "range1_start", "range1_end", "range2_start", "range2_end").
		Values(h.BusinessID, int(h.Weekday), h.IsOpen, r1s, r1e, r2s, r2e).
		Suffix(`ON CONFLICT (business_id, weekday) DO UPDATE SET
			is_open = EXCLUDED.is_open,
			range1_start = EXCLUDED.range1_start,
			range1_end = EXCLUDED.range1_end,
			range2_start = EXCLUDED.range2_start,
			range2_end = EXCLUDED.range2_end,
			updated_at = now()`).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpsertWeeklyHours - build upsert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: UpsertWeeklyHours - execute upsert: %w", ErrExecQuery, err)
	}

	return nil
}

// GetException возвращает исключение расписания на конкретную дату
// Если исключения нет, возвращается ErrExceptionNotFound
func (r *Repository) GetException(ctx context.Context, businessID int64, date time.Time) (*domain.DateException, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := exceptionSelect().
		Where(squirrel.Eq{"business_id": businessID}).
		Where(squirrel.Eq{"date": date.Format(domain.DateFormat)}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetException - build select query: %v", ErrBuildQuery, err)
	}

	row := executor.QueryRowContext(ctx, query, args...)
	exc, err := scanException(row)
	if err == sql.ErrNoRows {
		return nil, ErrExceptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetException - scan row: %w", ErrScanRow, err)
	}

	return exc, nil
}

// ListExceptions возвращает все исключения бизнеса начиная с указанной даты
func (r *Repository) ListExceptions(ctx context.Context, businessID int64, from time.Time) ([]*domain.DateException, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := exceptionSelect().
		Where(squirrel.Eq{"business_id": businessID}).
		Where(squirrel.GtOrEq{"date": from.Format(domain.DateFormat)}).
		OrderBy("date ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListExceptions - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListExceptions - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	exceptions := make([]*domain.DateException, 0)
	for rows.Next() {
		exc, err := scanException(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListExceptions - scan row: %w", ErrScanRow, err)
		}
		exceptions = append(exceptions, exc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListExceptions - iterate rows: %w", ErrExecQuery, err)
	}

	return exceptions, nil
}

// UpsertException создает или обновляет исключение на дату
func (r *Repository) UpsertException(ctx context.Context, exc *domain.DateException) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	r1s, r1e := fromTimeRange(exc.Range1)
	r2s, r2e := fromTimeRange(exc.Range2)

	query, args, err := psqlbuilder.Insert("date_exceptions").
		Columns("business_id", "date", "is_closed", "range1_start", "range1_end", "range2_start", "range2_end", "reason").
		Values(exc.BusinessID, exc.Date.Format(domain.DateFormat), exc.IsClosed, r1s, r1e, r2s, r2e, exc.Reason).
		Suffix(`ON CONFLICT (business_id, date) DO UPDATE SET
			is_closed = EXCLUDED.is_closed,
			range1_start = EXCLUDED.range1_start,
			range1_end = EXCLUDED.range1_end,
			range2_start = EXCLUDED.range2_start,
			range2_end = EXCLUDED.range2_end,
			reason = EXCLUDED.reason`).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpsertException - build upsert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: UpsertException - execute upsert: %w", ErrExecQuery, err)
	}

	return nil
}

// DeleteException удаляет исключение на дату
func (r *Repository) DeleteException(ctx context.Context, businessID int64, date time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("date_exceptions").
		Where(squirrel.Eq{"business_id": businessID}).
		Where(squirrel.Eq{"date": date.Format(domain.DateFormat)}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: DeleteException - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: DeleteException - execute delete: %w", ErrExecQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: DeleteException - rows affected: %w", ErrExecQuery, err)
	}
	if affected == 0 {
		return ErrExceptionNotFound
	}

	return nil
}

func exceptionSelect() squirrel.SelectBuilder {
	return psqlbuilder.Select(
		"id",
		"business_id",
		"date",
		"is_closed",
		"range1_start",
		"range1_end",
		"range2_start",
		"range2_end",
		"reason",
		"created_at",
	).From("date_exceptions")
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanException(row rowScanner) (*domain.DateException, error) {
	var exc domain.DateException
	var r1s, r1e, r2s, r2e sql.NullString
	var createdAt sql.NullTime

	err := row.Scan(
		&exc.ID,
		&exc.BusinessID,
		&exc.Date,
		&exc.IsClosed,
		&r1s, &r1e, &r2s, &r2e,
		&exc.Reason,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	exc.Range1 = toTimeRange(r1s, r1e)
	exc.Range2 = toTimeRange(r2s, r2e)
	exc.CreatedAt = createdAt.Time

	return &exc, nil
}

// toTimeRange собирает TimeRange из пары nullable-колонок
// PostgreSQL возвращает time как "HH:MM:SS" - обрезаем секунды
func toTimeRange(start, end sql.NullString) *domain.TimeRange {
	if !start.Valid || !end.Valid {
		return nil
	}

	var s, e types.TimeString
	if err := s.Scan(start.String); err != nil {
		return nil
	}
	if err := e.Scan(end.String); err != nil {
		return nil
	}

	return &domain.TimeRange{Start: s, End: e}
}

func fromTimeRange(r *domain.TimeRange) (interface{}, interface{}) {
	if r == nil {
		return nil, nil
	}
	return r.Start.String(), r.End.String()
}
