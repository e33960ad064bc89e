package store

import (
	"context"

	"github.com/google/uuid"

	"khidma/backend/internal/domain"
)

// ProviderSchedule is everything the availability façade needs in one fetch:
// the weekly pattern, date-specific exceptions, and the provider's settings.
type ProviderSchedule struct {
	Weekly     domain.WeeklySchedule
	Exceptions []domain.ScheduleException
	Settings   domain.AvailabilitySettings
}

type ScheduleStore interface {
	FetchProviderSchedule(ctx context.Context, providerID uuid.UUID) (ProviderSchedule, error)

	PutWeeklySchedule(ctx context.Context, providerID uuid.UUID, days []domain.DaySchedule) ([]domain.DaySchedule, error)
	PutException(ctx context.Context, ex domain.ScheduleException) (domain.ScheduleException, error)
	DeleteException(ctx context.Context, providerID uuid.UUID, date domain.CalendarDate) error
	PutSettings(ctx context.Context, settings domain.AvailabilitySettings) (domain.AvailabilitySettings, error)
}

// BookingStore reads the authoritative accepted bookings; creation and
// mutation belong to the external booking flow.
type BookingStore interface {
	ListForProviderDate(ctx context.Context, providerID uuid.UUID, date domain.CalendarDate) ([]domain.Booking, error)
}
