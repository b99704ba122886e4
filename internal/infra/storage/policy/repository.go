package policy

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/avkor/SMB-SchedulingService/internal/domain"
	"github.com/avkor/SMB-SchedulingService/pkg/dbmetrics"
	"github.com/avkor/SMB-SchedulingService/pkg/psqlbuilder"
)

// Repository репозиторий политик бронирования
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория политик
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByBusiness возвращает политику бронирования бизнеса
// Если политика не настроена, возвращается ErrPolicyNotFound -
// вызывающий код использует дефолтную политику
func (r *Repository) GetByBusiness(ctx context.Context, businessID int64) (*domain.BookingPolicy, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"business_id",
		"timezone",
		"buffer_minutes",
		"granularity_minutes",
		"min_notice_hours",
		"max_daily_appointments",
		"booking_window_days",
		"blackout_dates",
		"allow_same_day",
		"require_confirmation",
		"created_at",
		"updated_at",
	).
		From("booking_policies").
		Where(squirrel.Eq{"business_id": businessID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByBusiness - build select query: %v", ErrBuildQuery, err)
	}

	var p domain.BookingPolicy
	var blackouts pq.StringArray
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&p.ID,
		&p.BusinessID,
		&p.Timezone,
		&p.BufferMinutes,
		&p.GranularityMinutes,
		&p.MinNoticeHours,
		&p.MaxDailyAppointments,
		&p.BookingWindowDays,
		&blackouts,
		&p.AllowSameDay,
		&p.RequireConfirmation,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrPolicyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByBusiness - scan policy: %w", ErrScanRow, err)
	}

	p.BlackoutDates = make([]time.Time, 0, len(blackouts))
	for _, s := range blackouts {
		// date[] приходит строками "YYYY-MM-DD"
		d, err := time.Parse(domain.DateFormat, s)
		if err != nil {
			continue
		}
		p.BlackoutDates = append(p.BlackoutDates, d)
	}

	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time

	return &p, nil
}

// Upsert создает или обновляет политику бронирования бизнеса
func (r *Repository) Upsert(ctx context.Context, p *domain.BookingPolicy) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	blackouts := make(pq.StringArray, 0, len(p.BlackoutDates))
	for _, d := range p.BlackoutDates {
		blackouts = append(blackouts, d.Format(domain.DateFormat))
	}

	query, args, err := psqlbuilder.Insert("booking_policies").
		Columns(
			"business_id",
			"timezone",
			"buffer_minutes",
			"granularity_minutes",
			"min_notice_hours",
			"max_daily_appointments",
			"booking_window_days",
			"blackout_dates",
			"allow_same_day",
			"require_confirmation",
		).
		Values(
			p.BusinessID,
			p.Timezone,
			p.BufferMinutes,
			p.GranularityMinutes,
			p.MinNoticeHours,
			p.MaxDailyAppointments,
			p.BookingWindowDays,
			blackouts,
			p.AllowSameDay,
			p.RequireConfirmation,
		).
		Suffix(`ON CONFLICT (business_id) DO UPDATE SET
			timezone = EXCLUDED.timezone,
			buffer_minutes = EXCLUDED.buffer_minutes,
			granularity_minutes = EXCLUDED.granularity_minutes,
			min_notice_hours = EXCLUDED.min_notice_hours,
			max_daily_appointments = EXCLUDED.max_daily_appointments,
			booking_window_days = EXCLUDED.booking_window_days,
			blackout_dates = EXCLUDED.blackout_dates,
			allow_same_day = EXCLUDED.allow_same_day,
			require_confirmation = EXCLUDED.require_confirmation,
			updated_at = now()`).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Upsert - build upsert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Upsert - execute upsert: %w", ErrExecQuery, err)
	}

	return nil
}
