package appointment

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/avkor/SMB-SchedulingService/internal/domain"
	"github.com/avkor/SMB-SchedulingService/pkg/dbmetrics"
	"github.com/avkor/SMB-SchedulingService/pkg/psqlbuilder"
)

var appointmentColumns = []string{
	"id",
	"business_id",
	"service_id",
	"conversation_id",
	"customer_name",
	"customer_phone",
	"start_at",
	"end_at",
	"timezone",
	"status",
	"service_name",
	"service_price",
	"notes",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с записями клиентов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новую запись
// Вызывается только из conflict guard внутри сериализуемой транзакции:
// никакой другой код не пишет в appointments напрямую
func (r *Repository) Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("appointments").
		Columns(
			"business_id",
			"service_id",
			"conversation_id",
			"customer_name",
			"customer_phone",
			"start_at",
			"end_at",
			"timezone",
			"status",
			"service_name",
			"service_price",
			"notes",
		).
		Values(
			appt.BusinessID,
			appt.ServiceID,
			appt.ConversationID,
			appt.CustomerName,
			appt.CustomerPhone,
			appt.StartAt,
			appt.EndAt,
			appt.Timezone,
			appt.Status,
			appt.ServiceName,
			appt.ServicePrice,
			appt.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&appt.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	appt.CreatedAt = createdAt.Time
	appt.UpdatedAt = updatedAt.Time

	return appt, nil
}

// GetByID получает запись по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	row := executor.QueryRowContext(ctx, query, args...)
	appt, err := scanAppointment(row)
	if err == sql.ErrNoRows {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan appointment: %w", ErrScanRow, err)
	}

	return appt, nil
}

// ListBlocking получает все блокирующие записи бизнеса, пересекающие период
// [rangeStart, rangeEnd). Учитываются только статусы pending/confirmed/rescheduled.
// Внутри транзакции строки блокируются (FOR UPDATE) - это опора атомарной
// проверки-перед-записью в conflict guard
func (r *Repository) ListBlocking(ctx context.Context, businessID int64, rangeStart, rangeEnd time.Time) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	blockingStatuses := make([]string, len(domain.BlockingStatuses))
	for i, s := range domain.BlockingStatuses {
		blockingStatuses[i] = string(s)
	}

	selectBuilder := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"business_id": businessID}).
		Where(squirrel.Lt{"start_at": rangeEnd}).
		Where(squirrel.Gt{"end_at": rangeStart}).
		Where(squirrel.Eq{"status": blockingStatuses}).
		OrderBy("start_at ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListBlocking - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListBlocking - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// ListByBusinessWithFilter получает записи бизнеса с гибкой фильтрацией
// по периоду, статусу и включению неактивных записей
func (r *Repository) ListByBusinessWithFilter(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"business_id": filter.BusinessID})

	if filter.StartAt != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"start_at": *filter.StartAt})
	}
	if filter.EndAt != nil {
		selectBuilder = selectBuilder.Where(squirrel.Lt{"start_at": *filter.EndAt})
	}

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		inactiveStatuses := make([]string, len(domain.InactiveStatuses))
		for i, s := range domain.InactiveStatuses {
			inactiveStatuses[i] = string(s)
		}
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": inactiveStatuses})
	}

	selectBuilder = selectBuilder.OrderBy("start_at ASC")

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByBusinessWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByBusinessWithFilter - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// FindUpcomingByPhone ищет ближайшую будущую активную запись клиента по телефону
// Используется диалоговым движком для отмены и переноса
func (r *Repository) FindUpcomingByPhone(ctx context.Context, businessID int64, phone string, now time.Time) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	blockingStatuses := make([]string, len(domain.BlockingStatuses))
	for i, s := range domain.BlockingStatuses {
		blockingStatuses[i] = string(s)
	}

	query, args, err := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"business_id": businessID}).
		Where(squirrel.Eq{"customer_phone": phone}).
		Where(squirrel.Gt{"start_at": now}).
		Where(squirrel.Eq{"status": blockingStatuses}).
		OrderBy("start_at ASC").
		Limit(1).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: FindUpcomingByPhone - build select query: %v", ErrBuildQuery, err)
	}

	row := executor.QueryRowContext(ctx, query, args...)
	appt, err := scanAppointment(row)
	if err == sql.ErrNoRows {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: FindUpcomingByPhone - scan appointment: %w", ErrScanRow, err)
	}

	return appt, nil
}

// UpdateStatus обновляет статус записи
// Для статуса cancelled дополнительно проставляется cancelled_at
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus, cancelledAt *time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update("appointments").
		Set("status", status).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id})

	if cancelledAt != nil {
		updateBuilder = updateBuilder.Set("cancelled_at", *cancelledAt)
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %w", ErrExecQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - rows affected: %w", ErrExecQuery, err)
	}
	if affected == 0 {
		return ErrAppointmentNotFound
	}

	return nil
}

// UpdateTime переносит запись на новый интервал (та же строка, новый интервал)
// Статус при этом переводится в rescheduled
func (r *Repository) UpdateTime(ctx context.Context, id int64, startAt, endAt time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("start_at", startAt).
		Set("end_at", endAt).
		Set("status", domain.StatusRescheduled).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateTime - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateTime - execute update: %w", ErrExecQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateTime - rows affected: %w", ErrExecQuery, err)
	}
	if affected == 0 {
		return ErrAppointmentNotFound
	}

	return nil
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var appt domain.Appointment
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&appt.ID,
		&appt.BusinessID,
		&appt.ServiceID,
		&appt.ConversationID,
		&appt.CustomerName,
		&appt.CustomerPhone,
		&appt.StartAt,
		&appt.EndAt,
		&appt.Timezone,
		&appt.Status,
		&appt.ServiceName,
		&appt.ServicePrice,
		&appt.Notes,
		&appt.CancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	appt.CreatedAt = createdAt.Time
	appt.UpdatedAt = updatedAt.Time

	// Временные метки из БД всегда приводим к UTC
	appt.StartAt = appt.StartAt.UTC()
	appt.EndAt = appt.EndAt.UTC()

	return &appt, nil
}

func scanAppointments(rows *sql.Rows) ([]*domain.Appointment, error) {
	appointments := make([]*domain.Appointment, 0)

	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan appointment row: %w", ErrScanRow, err)
		}
		appointments = append(appointments, appt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate rows: %w", ErrExecQuery, err)
	}

	return appointments, nil
}
