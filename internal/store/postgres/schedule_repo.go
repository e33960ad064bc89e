package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"khidma/backend/internal/domain"
	"khidma/backend/internal/store"
)

type ScheduleRepo struct {
	db *bun.DB
}

func NewScheduleRepo(db *bun.DB) *ScheduleRepo {
	return &ScheduleRepo{db: db}
}

// FetchProviderSchedule reads the weekly pattern, exceptions, and settings in
// one pass. Driver failures are wrapped in store.ErrUnavailable so the façade
// can surface them without guessing at fallback hours.
func (r *ScheduleRepo) FetchProviderSchedule(ctx context.Context, providerID uuid.UUID) (store.ProviderSchedule, error) {
	var days []domain.DaySchedule
	err := r.db.NewSelect().
		Model(&days).
		Where("provider_id = ?", providerID).
		OrderExpr("weekday ASC").
		Scan(ctx)
	if err != nil {
		return store.ProviderSchedule{}, fetchFailure(err)
	}

	var exceptions []domain.ScheduleException
	err = r.db.NewSelect().
		Model(&exceptions).
		Where("provider_id = ?", providerID).
		OrderExpr("date ASC").
		Scan(ctx)
	if err != nil {
		return store.ProviderSchedule{}, fetchFailure(err)
	}

	settings := domain.DefaultAvailabilitySettings(providerID)
	var row domain.AvailabilitySettings
	err = r.db.NewSelect().
		Model(&row).
		Where("provider_id = ?", providerID).
		Limit(1).
		Scan(ctx)
	switch {
	case err == nil:
		settings = row
	case errors.Is(err, sql.ErrNoRows):
	default:
		return store.ProviderSchedule{}, fetchFailure(err)
	}

	return store.ProviderSchedule{
		Weekly:     domain.WeeklySchedule{ProviderID: providerID, Days: days},
		Exceptions: exceptions,
		Settings:   settings,
	}, nil
}

// PutWeeklySchedule replaces the provider's weekly pattern atomically.
func (r *ScheduleRepo) PutWeeklySchedule(ctx context.Context, providerID uuid.UUID, days []domain.DaySchedule) ([]domain.DaySchedule, error) {
	rows := make([]domain.DaySchedule, len(days))
	for i, d := range days {
		d.ID = uuid.Nil
		d.ProviderID = providerID
		rows[i] = d
	}

	err := r.inProviderTransaction(ctx, providerID, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*domain.DaySchedule)(nil)).
			Where("provider_id = ?", providerID).
			Exec(ctx); err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		_, err := tx.NewInsert().Model(&rows).Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ScheduleRepo) PutException(ctx context.Context, ex domain.ScheduleException) (domain.ScheduleException, error) {
	m := domain.ScheduleException{
		ID:                  ex.ID,
		ProviderID:          ex.ProviderID,
		Date:                ex.Date,
		Closed:              ex.Closed,
		Start:               ex.Start,
		End:                 ex.End,
		SlotDurationMinutes: ex.SlotDurationMinutes,
		BufferMinutes:       ex.BufferMinutes,
		Breaks:              ex.Breaks,
	}

	err := r.inProviderTransaction(ctx, ex.ProviderID, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().
			Model(&m).
			On("CONFLICT (provider_id, date) DO UPDATE").
			Set("closed = EXCLUDED.closed").
			Set("start_time = EXCLUDED.start_time").
			Set("end_time = EXCLUDED.end_time").
			Set("slot_duration_minutes = EXCLUDED.slot_duration_minutes").
			Set("buffer_minutes = EXCLUDED.buffer_minutes").
			Set("breaks = EXCLUDED.breaks").
			Exec(ctx)
		return err
	})
	if err != nil {
		return domain.ScheduleException{}, err
	}
	return m, nil
}

func (r *ScheduleRepo) DeleteException(ctx context.Context, providerID uuid.UUID, date domain.CalendarDate) error {
	return r.inProviderTransaction(ctx, providerID, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().
			Model((*domain.ScheduleException)(nil)).
			Where("provider_id = ?", providerID).
			Where("date = ?", date).
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}

func (r *ScheduleRepo) PutSettings(ctx context.Context, settings domain.AvailabilitySettings) (domain.AvailabilitySettings, error) {
	m := domain.AvailabilitySettings{
		ProviderID:         settings.ProviderID,
		Timezone:           settings.Timezone,
		AdvanceBookingDays: settings.AdvanceBookingDays,
	}

	err := r.inProviderTransaction(ctx, settings.ProviderID, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().
			Model(&m).
			On("CONFLICT (provider_id) DO UPDATE").
			Set("timezone = EXCLUDED.timezone").
			Set("advance_booking_days = EXCLUDED.advance_booking_days").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)
		return err
	})
	if err != nil {
		return domain.AvailabilitySettings{}, err
	}
	return m, nil
}

// inProviderTransaction serializes schedule writes per provider with an
// advisory lock, so a replace-all and an exception upsert cannot interleave.
func (r *ScheduleRepo) inProviderTransaction(ctx context.Context, providerID uuid.UUID, fn func(ctx context.Context, tx bun.Tx) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockProviderSchedule(ctx, tx, providerID); err != nil {
			return err
		}
		return fn(ctx, tx)
	})
}

func lockProviderSchedule(ctx context.Context, tx bun.Tx, providerID uuid.UUID) error {
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", providerID.String()).Exec(ctx)
	return err
}

func fetchFailure(err error) error {
	return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
}
