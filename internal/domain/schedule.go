package domain

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Weekday indices follow time.Weekday: 0=Sunday .. 6=Saturday.
const DaysPerWeek = 7

const (
	DefaultAdvanceBookingDays = 30
	DefaultTimezone           = "Asia/Bahrain"
)

// BreakWindow is a half-open [Start, End) pause inside a working day.
type BreakWindow struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

type DaySchedule struct {
	bun.BaseModel `bun:"table:provider_day_schedules"`

	ID                  uuid.UUID     `bun:"id,pk,type:uuid" json:"-"`
	ProviderID          uuid.UUID     `bun:"provider_id,notnull,type:uuid" json:"-"`
	Weekday             int           `bun:"weekday,notnull" json:"weekday"`
	Enabled             bool          `bun:"enabled,notnull" json:"enabled"`
	Start               TimeOfDay     `bun:"start_time,notnull" json:"start_time"`
	End                 TimeOfDay     `bun:"end_time,notnull" json:"end_time"`
	SlotDurationMinutes int           `bun:"slot_duration_minutes,notnull" json:"slot_duration_minutes"`
	BufferMinutes       int           `bun:"buffer_minutes,notnull" json:"buffer_minutes"`
	Breaks              []BreakWindow `bun:"breaks,type:jsonb" json:"breaks"`
	CreatedAt           time.Time     `bun:"created_at,notnull" json:"-"`
	UpdatedAt           time.Time     `bun:"updated_at,notnull" json:"-"`
}

func (d *DaySchedule) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if d.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			d.ID = id
		}
		if d.CreatedAt.IsZero() {
			d.CreatedAt = now
		}
		if d.UpdatedAt.IsZero() {
			d.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		d.UpdatedAt = now
	}
	return nil
}

// windowValid reports whether the day carries a usable generation window.
// A persisted entry that fails this resolves as closed, never as default hours.
func (d DaySchedule) windowValid() bool {
	return d.Start.Compare(d.End) < 0 && d.SlotDurationMinutes > 0 && d.BufferMinutes >= 0
}

// WeeklySchedule is a provider's recurring availability pattern, at most one
// entry per weekday.
type WeeklySchedule struct {
	ProviderID uuid.UUID
	Days       []DaySchedule
}

func (w WeeklySchedule) DayFor(weekday int) (DaySchedule, bool) {
	for _, d := range w.Days {
		if d.Weekday == weekday {
			return d, true
		}
	}
	return DaySchedule{}, false
}

// ScheduleException overrides the weekly entry for one calendar date, either
// closing the day outright or replacing its hours.
type ScheduleException struct {
	bun.BaseModel `bun:"table:provider_schedule_exceptions"`

	ID                  uuid.UUID     `bun:"id,pk,type:uuid" json:"-"`
	ProviderID          uuid.UUID     `bun:"provider_id,notnull,type:uuid" json:"-"`
	Date                CalendarDate  `bun:"date,notnull,type:date" json:"date"`
	Closed              bool          `bun:"closed,notnull" json:"closed"`
	Start               TimeOfDay     `bun:"start_time" json:"start_time"`
	End                 TimeOfDay     `bun:"end_time" json:"end_time"`
	SlotDurationMinutes int           `bun:"slot_duration_minutes" json:"slot_duration_minutes"`
	BufferMinutes       int           `bun:"buffer_minutes" json:"buffer_minutes"`
	Breaks              []BreakWindow `bun:"breaks,type:jsonb" json:"breaks"`
	CreatedAt           time.Time     `bun:"created_at,notnull" json:"-"`
	UpdatedAt           time.Time     `bun:"updated_at,notnull" json:"-"`
}

func (e *ScheduleException) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if e.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			e.ID = id
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = now
		}
		if e.UpdatedAt.IsZero() {
			e.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		e.UpdatedAt = now
	}
	return nil
}

type AvailabilitySettings struct {
	bun.BaseModel `bun:"table:provider_availability_settings"`

	ProviderID         uuid.UUID `bun:"provider_id,pk,type:uuid" json:"-"`
	Timezone           string    `bun:"timezone,notnull" json:"timezone"`
	AdvanceBookingDays int       `bun:"advance_booking_days,notnull" json:"advance_booking_days"`
	CreatedAt          time.Time `bun:"created_at,notnull" json:"-"`
	UpdatedAt          time.Time `bun:"updated_at,notnull" json:"-"`
}

func (s *AvailabilitySettings) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if s.CreatedAt.IsZero() {
			s.CreatedAt = now
		}
		if s.UpdatedAt.IsZero() {
			s.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		s.UpdatedAt = now
	}
	return nil
}

func DefaultAvailabilitySettings(providerID uuid.UUID) AvailabilitySettings {
	return AvailabilitySettings{
		ProviderID:         providerID,
		Timezone:           DefaultTimezone,
		AdvanceBookingDays: DefaultAdvanceBookingDays,
	}
}

// Location resolves the provider's timezone, falling back to UTC when the
// stored identifier does not load.
func (s AvailabilitySettings) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusInProgress BookingStatus = "in_progress"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusCancelled  BookingStatus = "cancelled"
)

// Occupies reports whether a booking in this status blocks its slot.
// Only cancelled bookings free the calendar; unknown statuses block.
func (s BookingStatus) Occupies() bool {
	return s != BookingStatusCancelled
}

// Booking is created and mutated by the external booking authority; this
// engine only reads it for conflict filtering.
type Booking struct {
	bun.BaseModel `bun:"table:bookings"`

	ID              uuid.UUID     `bun:"id,pk,type:uuid" json:"id"`
	ProviderID      uuid.UUID     `bun:"provider_id,notnull,type:uuid" json:"provider_id"`
	ServiceID       uuid.UUID     `bun:"service_id,type:uuid" json:"service_id"`
	CustomerID      uuid.UUID     `bun:"customer_id,type:uuid" json:"customer_id"`
	Date            CalendarDate  `bun:"date,notnull,type:date" json:"date"`
	Start           TimeOfDay     `bun:"start_time,notnull" json:"start_time"`
	DurationMinutes int           `bun:"duration_minutes" json:"duration_minutes"`
	Status          BookingStatus `bun:"status,notnull" json:"status"`
	CreatedAt       time.Time     `bun:"created_at,notnull" json:"-"`
	UpdatedAt       time.Time     `bun:"updated_at,notnull" json:"-"`
}

// Slot is a derived bookable interval; computed on demand, never persisted.
type Slot struct {
	Date  CalendarDate `json:"date"`
	Start TimeOfDay    `json:"start_time"`
	End   TimeOfDay    `json:"end_time"`
}

// ResolveDaySchedule picks the effective day entry for a date: an exception
// for the exact date wins, then the weekly entry for its weekday. Disabled,
// missing, or malformed entries resolve closed (ok=false); a bad persisted
// row must shrink availability, not widen it.
func ResolveDaySchedule(weekly WeeklySchedule, exceptions []ScheduleException, date CalendarDate) (DaySchedule, bool) {
	for _, ex := range exceptions {
		if ex.Date.Compare(date) != 0 {
			continue
		}
		if ex.Closed {
			return DaySchedule{}, false
		}
		day := DaySchedule{
			ProviderID:          ex.ProviderID,
			Weekday:             date.DayOfWeek(),
			Enabled:             true,
			Start:               ex.Start,
			End:                 ex.End,
			SlotDurationMinutes: ex.SlotDurationMinutes,
			BufferMinutes:       ex.BufferMinutes,
			Breaks:              ex.Breaks,
		}
		if !day.windowValid() {
			return DaySchedule{}, false
		}
		day.Breaks = normalizeBreaks(day.Breaks, day.Start, day.End)
		return day, true
	}

	day, ok := weekly.DayFor(date.DayOfWeek())
	if !ok || !day.Enabled || !day.windowValid() {
		return DaySchedule{}, false
	}
	day.Breaks = normalizeBreaks(day.Breaks, day.Start, day.End)
	return day, true
}

// normalizeBreaks clips breaks to the day window, drops empty ones, and
// unions overlaps so the generator can assume sorted disjoint intervals.
func normalizeBreaks(breaks []BreakWindow, windowStart, windowEnd TimeOfDay) []BreakWindow {
	clipped := make([]BreakWindow, 0, len(breaks))
	for _, b := range breaks {
		start := b.Start
		end := b.End
		if start.Compare(windowStart) < 0 {
			start = windowStart
		}
		if end.Compare(windowEnd) > 0 {
			end = windowEnd
		}
		if start.Compare(end) >= 0 {
			continue
		}
		clipped = append(clipped, BreakWindow{Start: start, End: end})
	}
	if len(clipped) < 2 {
		return clipped
	}

	sort.Slice(clipped, func(i, j int) bool {
		return clipped[i].Start.Compare(clipped[j].Start) < 0
	})

	merged := clipped[:1]
	for _, b := range clipped[1:] {
		last := &merged[len(merged)-1]
		if b.Start.Compare(last.End) <= 0 {
			if b.End.Compare(last.End) > 0 {
				last.End = b.End
			}
			continue
		}
		merged = append(merged, b)
	}
	return merged
}
