package domain

// GenerateSlots expands a resolved day schedule into the ordered candidate
// slots for one date. Pure function of its inputs.
//
// The cursor advances by slotDuration+bufferTime, so a slot occupies exactly
// slotDuration but the next one cannot start until the buffer has passed.
// Candidates that intersect a break are suppressed, not shifted around it,
// and generation stops before a slot would cross midnight.
func GenerateSlots(day DaySchedule, date CalendarDate) []Slot {
	if !day.Enabled || !day.windowValid() {
		return nil
	}

	stride := day.SlotDurationMinutes + day.BufferMinutes
	var out []Slot
	cursor := day.Start
	for {
		end, err := cursor.AddMinutes(day.SlotDurationMinutes)
		if err != nil {
			break
		}
		if end.Compare(day.End) > 0 {
			break
		}
		if !overlapsAnyBreak(cursor, end, day.Breaks) {
			out = append(out, Slot{Date: date, Start: cursor, End: end})
		}
		next, err := cursor.AddMinutes(stride)
		if err != nil {
			break
		}
		cursor = next
	}
	return out
}

func overlapsAnyBreak(start, end TimeOfDay, breaks []BreakWindow) bool {
	for _, b := range breaks {
		if intervalsOverlap(start.Minutes(), end.Minutes(), b.Start.Minutes(), b.End.Minutes()) {
			return true
		}
	}
	return false
}

// intervalsOverlap tests half-open minute intervals; touching endpoints do
// not conflict.
func intervalsOverlap(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// FilterAvailable removes candidate slots that collide with a non-cancelled
// booking on the same date. A booking with no stored duration occupies
// fallbackDurationMinutes, normally the day's slot duration.
func FilterAvailable(slots []Slot, bookings []Booking, fallbackDurationMinutes int) []Slot {
	if len(slots) == 0 {
		return slots
	}

	out := make([]Slot, 0, len(slots))
	for _, s := range slots {
		if !slotConflicts(s, bookings, fallbackDurationMinutes) {
			out = append(out, s)
		}
	}
	return out
}

func slotConflicts(s Slot, bookings []Booking, fallbackDurationMinutes int) bool {
	for _, b := range bookings {
		if !b.Status.Occupies() {
			continue
		}
		if b.Date.Compare(s.Date) != 0 {
			continue
		}
		duration := b.DurationMinutes
		if duration <= 0 {
			duration = fallbackDurationMinutes
		}
		if duration <= 0 {
			continue
		}
		bookedStart := b.Start.Minutes()
		if intervalsOverlap(s.Start.Minutes(), s.End.Minutes(), bookedStart, bookedStart+duration) {
			return true
		}
	}
	return false
}
