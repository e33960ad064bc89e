package domain

import (
	"testing"
)

func startsOf(slots []Slot) []TimeOfDay {
	out := make([]TimeOfDay, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Start)
	}
	return out
}

func sameStarts(got []Slot, want []TimeOfDay) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if got[i].Start != want[i] {
			return false
		}
	}
	return true
}

func TestGenerateSlots_LunchBreak(t *testing.T) {
	day := enabledDay(2)
	day.Breaks = []BreakWindow{{Start: TimeOfDay{12, 0}, End: TimeOfDay{13, 0}}}

	slots := GenerateSlots(day, testDate)

	want := []TimeOfDay{{9, 0}, {10, 0}, {11, 0}, {13, 0}, {14, 0}, {15, 0}, {16, 0}}
	if !sameStarts(slots, want) {
		t.Fatalf("slot starts = %v, want %v", startsOf(slots), want)
	}
	for _, s := range slots {
		end, err := s.Start.AddMinutes(day.SlotDurationMinutes)
		if err != nil || s.End != end {
			t.Fatalf("slot %v has end %v, want %v", s.Start, s.End, end)
		}
		if s.Date != testDate {
			t.Fatalf("slot carries date %v, want %v", s.Date, testDate)
		}
	}
}

func TestGenerateSlots_BufferStride(t *testing.T) {
	day := enabledDay(2)
	day.End = TimeOfDay{11, 0}
	day.SlotDurationMinutes = 45
	day.BufferMinutes = 15

	slots := GenerateSlots(day, testDate)

	// 09:00-09:45, then the buffer pushes the next start to 10:00; the
	// cursor after 10:00 is 11:00 and a 45-minute slot no longer fits.
	want := []TimeOfDay{{9, 0}, {10, 0}}
	if !sameStarts(slots, want) {
		t.Fatalf("slot starts = %v, want %v", startsOf(slots), want)
	}
	if slots[1].End != (TimeOfDay{10, 45}) {
		t.Fatalf("second slot end = %v, want 10:45", slots[1].End)
	}
}

func TestGenerateSlots_LastSlotMayTouchClose(t *testing.T) {
	day := enabledDay(2)
	day.End = TimeOfDay{10, 30}
	day.SlotDurationMinutes = 30

	slots := GenerateSlots(day, testDate)

	want := []TimeOfDay{{9, 0}, {9, 30}, {10, 0}}
	if !sameStarts(slots, want) {
		t.Fatalf("slot starts = %v, want %v", startsOf(slots), want)
	}
}

func TestGenerateSlots_DisabledOrMalformed(t *testing.T) {
	day := enabledDay(2)
	day.Enabled = false
	if got := GenerateSlots(day, testDate); len(got) != 0 {
		t.Fatalf("disabled day produced %d slots", len(got))
	}

	day = enabledDay(2)
	day.SlotDurationMinutes = 0
	if got := GenerateSlots(day, testDate); len(got) != 0 {
		t.Fatalf("zero-duration day produced %d slots", len(got))
	}
}

func TestGenerateSlots_StopsAtMidnight(t *testing.T) {
	day := enabledDay(2)
	day.Start = TimeOfDay{23, 0}
	day.End = TimeOfDay{23, 59}
	day.SlotDurationMinutes = 30
	day.BufferMinutes = 0

	slots := GenerateSlots(day, testDate)

	// 23:00-23:30 fits; 23:30-00:00 would cross midnight.
	want := []TimeOfDay{{23, 0}}
	if !sameStarts(slots, want) {
		t.Fatalf("slot starts = %v, want %v", startsOf(slots), want)
	}
}

func TestGenerateSlots_BreakSuppressesNotShifts(t *testing.T) {
	day := enabledDay(2)
	day.End = TimeOfDay{12, 0}
	// Break clips into the 10:00 slot only by one minute; the slot is still
	// suppressed, and no 10:30 replacement appears.
	day.Breaks = []BreakWindow{{Start: TimeOfDay{10, 59}, End: TimeOfDay{11, 0}}}

	slots := GenerateSlots(day, testDate)

	want := []TimeOfDay{{9, 0}, {11, 0}}
	if !sameStarts(slots, want) {
		t.Fatalf("slot starts = %v, want %v", startsOf(slots), want)
	}
}

func TestFilterAvailable_BookingRemovesSlot(t *testing.T) {
	day := enabledDay(2)
	day.Breaks = []BreakWindow{{Start: TimeOfDay{12, 0}, End: TimeOfDay{13, 0}}}
	slots := GenerateSlots(day, testDate)

	bookings := []Booking{{
		ProviderID:      testProviderID,
		Date:            testDate,
		Start:           TimeOfDay{10, 0},
		DurationMinutes: 60,
		Status:          BookingStatusConfirmed,
	}}

	got := FilterAvailable(slots, bookings, day.SlotDurationMinutes)

	want := []TimeOfDay{{9, 0}, {11, 0}, {13, 0}, {14, 0}, {15, 0}, {16, 0}}
	if !sameStarts(got, want) {
		t.Fatalf("available starts = %v, want %v", startsOf(got), want)
	}
}

func TestFilterAvailable_CancelledBookingFreesSlot(t *testing.T) {
	slots := GenerateSlots(enabledDay(2), testDate)
	bookings := []Booking{{
		Date:            testDate,
		Start:           TimeOfDay{10, 0},
		DurationMinutes: 60,
		Status:          BookingStatusCancelled,
	}}

	got := FilterAvailable(slots, bookings, 60)
	if len(got) != len(slots) {
		t.Fatalf("cancelled booking removed slots: %d -> %d", len(slots), len(got))
	}
}

func TestFilterAvailable_OtherDateIgnored(t *testing.T) {
	slots := GenerateSlots(enabledDay(2), testDate)
	bookings := []Booking{{
		Date:            testDate.AddDays(1),
		Start:           TimeOfDay{10, 0},
		DurationMinutes: 60,
		Status:          BookingStatusConfirmed,
	}}

	got := FilterAvailable(slots, bookings, 60)
	if len(got) != len(slots) {
		t.Fatalf("booking on another date removed slots: %d -> %d", len(slots), len(got))
	}
}

func TestFilterAvailable_TouchingEndpointsDoNotConflict(t *testing.T) {
	day := enabledDay(2)
	day.End = TimeOfDay{12, 0}
	slots := GenerateSlots(day, testDate)

	// Booking 10:00-11:00 touches the 09:00-10:00 and 11:00-12:00 slots
	// exactly at their endpoints.
	bookings := []Booking{{
		Date:            testDate,
		Start:           TimeOfDay{10, 0},
		DurationMinutes: 60,
		Status:          BookingStatusConfirmed,
	}}

	got := FilterAvailable(slots, bookings, day.SlotDurationMinutes)
	want := []TimeOfDay{{9, 0}, {11, 0}}
	if !sameStarts(got, want) {
		t.Fatalf("available starts = %v, want %v", startsOf(got), want)
	}
}

func TestFilterAvailable_PartialOverlapRemovesBothSlots(t *testing.T) {
	day := enabledDay(2)
	day.End = TimeOfDay{12, 0}
	slots := GenerateSlots(day, testDate)

	// 09:30-10:30 straddles two hourly slots.
	bookings := []Booking{{
		Date:            testDate,
		Start:           TimeOfDay{9, 30},
		DurationMinutes: 60,
		Status:          BookingStatusPending,
	}}

	got := FilterAvailable(slots, bookings, day.SlotDurationMinutes)
	want := []TimeOfDay{{11, 0}}
	if !sameStarts(got, want) {
		t.Fatalf("available starts = %v, want %v", startsOf(got), want)
	}
}

func TestFilterAvailable_ZeroDurationUsesFallback(t *testing.T) {
	day := enabledDay(2)
	day.End = TimeOfDay{12, 0}
	slots := GenerateSlots(day, testDate)

	bookings := []Booking{{
		Date:   testDate,
		Start:  TimeOfDay{10, 0},
		Status: BookingStatusConfirmed,
	}}

	got := FilterAvailable(slots, bookings, day.SlotDurationMinutes)
	want := []TimeOfDay{{9, 0}, {11, 0}}
	if !sameStarts(got, want) {
		t.Fatalf("available starts = %v, want %v", startsOf(got), want)
	}
}
