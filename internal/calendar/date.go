// Package calendar provides the calendar-date value type and clock used for
// every "same day" / "yesterday" decision in the progression engine. Days are
// compared in the learner's timezone, not at UTC boundaries.
package calendar

import "time"

// Date is a timezone-resolved calendar day. The zero value is "no date"
// (a learner who has never studied). Dates compare with ==.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf resolves t to its calendar day in loc. A nil loc means UTC.
func DateOf(t time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return Date{Year: y, Month: m, Day: d}
}

// IsZero reports whether d is the "no date" value.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Next returns the following calendar day, normalizing month/year rollover.
func (d Date) Next() Date {
	return d.add(1)
}

// Prev returns the preceding calendar day.
func (d Date) Prev() Date {
	return d.add(-1)
}

func (d Date) add(days int) Date {
	t := time.Date(d.Year, d.Month, d.Day+days, 0, 0, 0, 0, time.UTC)
	y, m, day := t.Date()
	return Date{Year: y, Month: m, Day: day}
}

// Location parses an IANA zone name, falling back to UTC on empty or bad
// input. Stored timezones are learner-supplied, so this never errors.
func Location(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
