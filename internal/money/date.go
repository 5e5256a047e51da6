package money

import "time"

// Date is a civil date — year/month/day at UTC with no time-of-day
// component, per spec.md §4.1. All fact due-dates, start-dates, and
// as-of instants for business-date comparisons use Date, not time.Time,
// so that two instants on the same calendar day always compare equal
// regardless of wall-clock time.
type Date struct {
	t time.Time
}

// NewDate constructs a civil Date at UTC midnight.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateFromTime truncates a time.Time to its civil date at UTC.
func DateFromTime(t time.Time) Date {
	u := t.UTC()
	return NewDate(u.Year(), u.Month(), u.Day())
}

// Time returns the underlying UTC midnight time.Time, for interop with
// adapters (persistence, JSON) that need a time.Time.
func (d Date) Time() time.Time { return d.t }

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

// After reports whether d is strictly later than o.
func (d Date) After(o Date) bool { return d.t.After(o.t) }

// Equal reports whether d and o are the same civil date.
func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) }

// AddDays returns the date n calendar days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// AddMonths returns the date n calendar months after d, normalizing an
// out-of-range day of month the way time.AddDate does, so Jan 31 + 1 month
// is Mar 2 in 2024 (used for installment schedules).
func (d Date) AddMonths(n int) Date {
	return Date{t: d.t.AddDate(0, n, 0)}
}

// String renders the date as YYYY-MM-DD.
func (d Date) String() string { return d.t.Format("2006-01-02") }

// MarshalJSON renders the date as a quoted YYYY-MM-DD string, a civil
// instant per spec.md §6 "Serialization of snapshot payloads".
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON parses a quoted YYYY-MM-DD string.
func (d *Date) UnmarshalJSON(b []byte) error {
	if len(b) < 2 {
		return errInvalidDate
	}
	t, err := time.Parse(`"2006-01-02"`, string(b))
	if err != nil {
		return err
	}
	*d = DateFromTime(t)
	return nil
}

var errInvalidDate = dateError("money: invalid date literal")

type dateError string

func (e dateError) Error() string { return string(e) }

// DaysBetween returns b-a in whole calendar days, non-negative per
// spec.md §4.1. If b is before a, it returns 0 rather than a negative
// count — callers that need a signed difference should compare dates
// directly first.
func DaysBetween(a, b Date) int {
	if b.Before(a) {
		return 0
	}
	hours := b.t.Sub(a.t).Hours()
	return int(hours / 24)
}
