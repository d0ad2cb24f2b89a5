package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/models"
)

const dateLayout = "2006-01-02"

// EffectiveEnd is the latest end of the main schedule and every date/time slot,
// interpreted in loc. ok is false when no end date can be parsed.
func EffectiveEnd(ev models.Event, loc *time.Location) (end time.Time, ok bool) {
	if loc == nil {
		loc = time.Local
	}
	consider := func(date, clock string) {
		t, good := combine(date, clock, loc)
		if !good {
			return
		}
		if !ok || t.After(end) {
			end, ok = t, true
		}
	}

	consider(ev.EndDate, ev.EndTime)
	for _, s := range ev.DateTimeSlots {
		consider(s.EndDate, s.EndTime)
	}
	return end, ok
}

// combine joins a YYYY-MM-DD date with an HH:MM or HH:MM:SS clock. A missing or
// unreadable clock means the end of that day.
func combine(date, clock string, loc *time.Location) (time.Time, bool) {
	date = strings.TrimSpace(date)
	if len(date) > len(dateLayout) {
		// tolerate full ISO timestamps stored by older clients
		date = date[:len(dateLayout)]
	}
	day, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil {
		return time.Time{}, false
	}

	clock = strings.TrimSpace(clock)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if c, err := time.Parse(layout, clock); err == nil {
			return time.Date(day.Year(), day.Month(), day.Day(), c.Hour(), c.Minute(), c.Second(), 0, loc), true
		}
	}
	return time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 0, 0, loc), true
}

// ParseDate reads a YYYY-MM-DD date in loc
func ParseDate(date string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(dateLayout, date, loc)
}

// CheckSchedule rejects a main schedule or date/time slot that ends on a day
// before it starts
func CheckSchedule(startDate, endDate string, slots []models.DateTimeSlot) error {
	ordered := func(label, start, end string) error {
		from, err := ParseDate(start, time.UTC)
		if err != nil {
			return fmt.Errorf("%s: invalid startDate %q", label, start)
		}
		to, err := ParseDate(end, time.UTC)
		if err != nil {
			return fmt.Errorf("%s: invalid endDate %q", label, end)
		}
		if to.Before(from) {
			return fmt.Errorf("%s: endDate is before startDate", label)
		}
		return nil
	}

	if err := ordered("event", startDate, endDate); err != nil {
		return err
	}
	for i, slot := range slots {
		if err := ordered(fmt.Sprintf("dateTimeSlots[%d]", i), slot.StartDate, slot.EndDate); err != nil {
			return err
		}
	}
	return nil
}

// Today is the date-only form of now in loc
func Today(now time.Time, loc *time.Location) string {
	if loc != nil {
		now = now.In(loc)
	}
	return now.Format(dateLayout)
}
