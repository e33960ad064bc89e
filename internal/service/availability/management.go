package availability

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"khidma/backend/internal/domain"
	"khidma/backend/internal/store"
)

// Schedule management for the provider-facing flow. Validation happens here,
// on write: the read path deliberately degrades malformed rows to closed days
// instead of erroring in front of customers.

const maxAdvanceBookingDays = 365

func (s *Service) GetProviderSchedule(ctx context.Context, providerID uuid.UUID) (store.ProviderSchedule, error) {
	if providerID == uuid.Nil {
		return store.ProviderSchedule{}, validationError("provider_id is required")
	}
	return s.schedules.FetchProviderSchedule(ctx, providerID)
}

// PutWeeklySchedule replaces the provider's weekly pattern. Every enabled day
// must satisfy the window contract the slot generator relies on.
func (s *Service) PutWeeklySchedule(ctx context.Context, providerID uuid.UUID, days []domain.DaySchedule) ([]domain.DaySchedule, error) {
	if providerID == uuid.Nil {
		return nil, validationError("provider_id is required")
	}
	if len(days) > domain.DaysPerWeek {
		return nil, validationError("at most seven day entries are allowed")
	}

	seen := make(map[int]struct{}, len(days))
	for _, day := range days {
		if day.Weekday < 0 || day.Weekday > 6 {
			return nil, validationError("weekday must be between 0 and 6")
		}
		if _, ok := seen[day.Weekday]; ok {
			return nil, validationError(fmt.Sprintf("duplicate entry for weekday %d", day.Weekday))
		}
		seen[day.Weekday] = struct{}{}

		if !day.Enabled {
			continue
		}
		if err := validateDayWindow(day.Start, day.End, day.SlotDurationMinutes, day.BufferMinutes, day.Breaks); err != nil {
			return nil, fmt.Errorf("weekday %d: %w", day.Weekday, err)
		}
	}

	out, err := s.schedules.PutWeeklySchedule(ctx, providerID, days)
	if err != nil {
		return nil, err
	}
	s.invalidateCache(ctx, providerID)
	return out, nil
}

func (s *Service) PutException(ctx context.Context, ex domain.ScheduleException) (domain.ScheduleException, error) {
	if ex.ProviderID == uuid.Nil {
		return domain.ScheduleException{}, validationError("provider_id is required")
	}
	if ex.Date.IsZero() {
		return domain.ScheduleException{}, validationError("date is required")
	}
	if !ex.Closed {
		if err := validateDayWindow(ex.Start, ex.End, ex.SlotDurationMinutes, ex.BufferMinutes, ex.Breaks); err != nil {
			return domain.ScheduleException{}, err
		}
	}

	out, err := s.schedules.PutException(ctx, ex)
	if err != nil {
		return domain.ScheduleException{}, err
	}
	s.invalidateCache(ctx, ex.ProviderID)
	return out, nil
}

func (s *Service) DeleteException(ctx context.Context, providerID uuid.UUID, date domain.CalendarDate) error {
	if providerID == uuid.Nil {
		return validationError("provider_id is required")
	}
	if date.IsZero() {
		return validationError("date is required")
	}
	if err := s.schedules.DeleteException(ctx, providerID, date); err != nil {
		return err
	}
	s.invalidateCache(ctx, providerID)
	return nil
}

func (s *Service) PutSettings(ctx context.Context, settings domain.AvailabilitySettings) (domain.AvailabilitySettings, error) {
	if settings.ProviderID == uuid.Nil {
		return domain.AvailabilitySettings{}, validationError("provider_id is required")
	}

	tz := strings.TrimSpace(settings.Timezone)
	if tz == "" {
		tz = domain.DefaultTimezone
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return domain.AvailabilitySettings{}, validationError("invalid timezone")
	}
	settings.Timezone = tz

	if settings.AdvanceBookingDays < 0 || settings.AdvanceBookingDays > maxAdvanceBookingDays {
		return domain.AvailabilitySettings{}, validationError("advance_booking_days must be between 0 and 365")
	}

	out, err := s.schedules.PutSettings(ctx, settings)
	if err != nil {
		return domain.AvailabilitySettings{}, err
	}
	s.invalidateCache(ctx, settings.ProviderID)
	return out, nil
}

func validateDayWindow(start, end domain.TimeOfDay, slotDuration, buffer int, breaks []domain.BreakWindow) error {
	if start.Compare(end) >= 0 {
		return validationError("start_time must be before end_time")
	}
	if slotDuration <= 0 {
		return validationError("slot_duration_minutes must be positive")
	}
	if buffer < 0 {
		return validationError("buffer_minutes must not be negative")
	}

	ordered := make([]domain.BreakWindow, len(breaks))
	copy(ordered, breaks)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Start.Compare(ordered[j].Start) < 0
	})
	for i, b := range ordered {
		if b.Start.Compare(b.End) >= 0 {
			return validationError("break start must be before break end")
		}
		if b.Start.Compare(start) < 0 || b.End.Compare(end) > 0 {
			return validationError("break must be inside the working window")
		}
		if i > 0 && ordered[i-1].End.Compare(b.Start) > 0 {
			return validationError("breaks must not overlap")
		}
	}
	return nil
}

func (s *Service) invalidateCache(ctx context.Context, providerID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateProvider(ctx, providerID); err != nil {
		s.log.Warn("slot cache invalidation failed", slog.Any("err", err), slog.String("provider_id", providerID.String()))
	}
}
