package availability

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"khidma/backend/internal/domain"
	"khidma/backend/internal/observability/metrics"
	"khidma/backend/internal/store"
)

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

// SlotCache is a best-effort cache of computed slot lists. Errors are
// reported, logged, and treated as misses; correctness never depends on it.
type SlotCache interface {
	Get(ctx context.Context, providerID uuid.UUID, date domain.CalendarDate) ([]domain.Slot, bool, error)
	Set(ctx context.Context, providerID uuid.UUID, date domain.CalendarDate, slots []domain.Slot) error
	InvalidateProvider(ctx context.Context, providerID uuid.UUID) error
}

// Service is the single availability entry point booking UIs call. It owns
// no state: every query is a pure computation over data fetched from the
// injected stores at call time.
type Service struct {
	schedules store.ScheduleStore
	bookings  store.BookingStore
	cache     SlotCache
	metrics   *metrics.AvailabilityMetrics
	log       *slog.Logger
}

// NewService wires the façade. cache and m may be nil; log defaults.
func NewService(schedules store.ScheduleStore, bookings store.BookingStore, cache SlotCache, m *metrics.AvailabilityMetrics, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		schedules: schedules,
		bookings:  bookings,
		cache:     cache,
		metrics:   m,
		log:       log.With(slog.String("component", "service.availability")),
	}
}

// GetAvailableSlots returns the ordered bookable slots for a provider and
// date as seen at fetch time. Out-of-window dates and closed days are valid
// empty results, not errors; only store failures return an error.
func (s *Service) GetAvailableSlots(ctx context.Context, providerID uuid.UUID, date domain.CalendarDate, now time.Time) ([]domain.Slot, error) {
	if providerID == uuid.Nil {
		return nil, validationError("provider_id is required")
	}
	if date.IsZero() {
		return nil, validationError("date is required")
	}

	sched, err := s.schedules.FetchProviderSchedule(ctx, providerID)
	if err != nil {
		s.metrics.ObserveQuery(metrics.OutcomeUnavailable, 0)
		return nil, err
	}

	localNow := now.In(sched.Settings.Location())
	today := domain.DateOf(localNow)

	if date.Compare(today) < 0 || date.Compare(today.AddDays(sched.Settings.AdvanceBookingDays)) > 0 {
		s.metrics.ObserveQuery(metrics.OutcomeOutOfWindow, 0)
		return []domain.Slot{}, nil
	}

	// Today's list shrinks minute by minute, so only future dates are cached.
	cacheable := s.cache != nil && date.Compare(today) > 0
	if cacheable {
		cached, ok, err := s.cache.Get(ctx, providerID, date)
		if err != nil {
			s.log.Warn("slot cache read failed", slog.Any("err", err), slog.String("provider_id", providerID.String()))
		} else if ok {
			s.metrics.ObserveCache(metrics.CacheHit)
			s.metrics.ObserveQuery(metrics.OutcomeOK, len(cached))
			return cached, nil
		}
		s.metrics.ObserveCache(metrics.CacheMiss)
	}

	slots, err := s.computeSlots(ctx, sched, providerID, date)
	if err != nil {
		s.metrics.ObserveQuery(metrics.OutcomeUnavailable, 0)
		return nil, err
	}

	if date.Compare(today) == 0 {
		nowClock := domain.TimeOfDayOf(localNow)
		upcoming := make([]domain.Slot, 0, len(slots))
		for _, slot := range slots {
			if slot.Start.Compare(nowClock) > 0 {
				upcoming = append(upcoming, slot)
			}
		}
		slots = upcoming
	}

	if cacheable {
		if err := s.cache.Set(ctx, providerID, date, slots); err != nil {
			s.log.Warn("slot cache write failed", slog.Any("err", err), slog.String("provider_id", providerID.String()))
		}
	}

	s.metrics.ObserveQuery(metrics.OutcomeOK, len(slots))
	return slots, nil
}

// IsSlotStillAvailable re-validates one candidate start time against current
// store state, bypassing the cache. A convenience for last-instant
// client-side checks; the booking authority still re-validates on write.
func (s *Service) IsSlotStillAvailable(ctx context.Context, providerID uuid.UUID, date domain.CalendarDate, start domain.TimeOfDay, now time.Time) (bool, error) {
	if providerID == uuid.Nil {
		return false, validationError("provider_id is required")
	}
	if date.IsZero() {
		return false, validationError("date is required")
	}

	sched, err := s.schedules.FetchProviderSchedule(ctx, providerID)
	if err != nil {
		return false, err
	}

	localNow := now.In(sched.Settings.Location())
	today := domain.DateOf(localNow)
	if date.Compare(today) < 0 || date.Compare(today.AddDays(sched.Settings.AdvanceBookingDays)) > 0 {
		return false, nil
	}
	if date.Compare(today) == 0 && start.Compare(domain.TimeOfDayOf(localNow)) <= 0 {
		return false, nil
	}

	slots, err := s.computeSlots(ctx, sched, providerID, date)
	if err != nil {
		return false, err
	}
	for _, slot := range slots {
		if slot.Start.Compare(start) == 0 {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) computeSlots(ctx context.Context, sched store.ProviderSchedule, providerID uuid.UUID, date domain.CalendarDate) ([]domain.Slot, error) {
	day, open := domain.ResolveDaySchedule(sched.Weekly, sched.Exceptions, date)
	if !open {
		return []domain.Slot{}, nil
	}

	candidates := domain.GenerateSlots(day, date)
	if len(candidates) == 0 {
		return []domain.Slot{}, nil
	}

	booked, err := s.bookings.ListForProviderDate(ctx, providerID, date)
	if err != nil {
		return nil, err
	}

	slots := domain.FilterAvailable(candidates, booked, day.SlotDurationMinutes)
	s.metrics.ObserveConflictFiltered(len(candidates) - len(slots))
	if slots == nil {
		slots = []domain.Slot{}
	}
	return slots, nil
}
