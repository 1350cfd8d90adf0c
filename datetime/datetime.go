// Package datetime provides DateTime, a broken-down calendar timestamp with
// one second resolution, designed for real-time clock chips that store their
// time as separate date and time fields.
//
// A DateTime counts time from the epoch (January 1st FirstYear, 00:00:00) in a
// signed 32-bit number of seconds, so only the years FirstYear to LastYear can
// be constructed through the validating constructors. Failed constructions
// return the epoch start together with an error, never a partially set value.
package datetime

import (
	"errors"
	"time"

	"github.com/ajanata/softrtc/calendar"
)

const (
	// FirstYear is the year of the epoch.
	FirstYear = 1970
	// LastYear is the last full year representable by an int32 count of
	// seconds since the epoch.
	LastYear = FirstYear + 67
)

const epoch = calendar.Epoch(FirstYear)

var (
	ErrInvalid      = errors.New("datetime: invalid date or time")
	ErrNegativeTime = errors.New("datetime: negative time")
)

// DateTime is a calendar date and time of day. The zero value is not valid;
// use Epoch() or one of the constructors.
type DateTime struct {
	year   uint16
	month  uint8
	day    uint8
	hour   uint8
	minute uint8
	second uint8
}

// Epoch returns the epoch start, January 1st FirstYear 00:00:00.
func Epoch() DateTime {
	return DateTime{year: FirstYear, month: 1, day: 1}
}

// New returns the DateTime for the given fields. The year must be between
// FirstYear and LastYear, the month between 1 and 12, the day within the month
// and the time of day between 00:00:00 and 23:59:59. Otherwise New returns
// Epoch() and ErrInvalid.
func New(year, month, day, hour, minute, second int) (DateTime, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 ||
		year < FirstYear || year > LastYear ||
		month < 1 || month > 12 ||
		day < 1 || day > calendar.DaysInMonth(year, month) {
		return Epoch(), ErrInvalid
	}
	return Trusted(year, month, day, hour, minute, second), nil
}

// Trusted builds a DateTime without validating the fields. It is the decode
// path for hardware that already stores a broken-down time (see package
// ds1307); everything else should use New.
func Trusted(year, month, day, hour, minute, second int) DateTime {
	return DateTime{
		year:   uint16(year),
		month:  uint8(month),
		day:    uint8(day),
		hour:   uint8(hour),
		minute: uint8(minute),
		second: uint8(second),
	}
}

// FromUnix converts a count of seconds since the epoch. Negative counts return
// Epoch() and ErrNegativeTime.
func FromUnix(t int32) (DateTime, error) {
	if t < 0 {
		return Epoch(), ErrNegativeTime
	}
	var dt DateTime
	n := int(t)
	dt.second = uint8(n % 60)
	n /= 60
	dt.minute = uint8(n % 60)
	n /= 60
	dt.hour = uint8(n % 24)
	days := n / 24

	year := epoch.DayToYear(days)
	days -= epoch.DaysBeforeYear(year)
	month := calendar.DayOfYearToMonth(year, days)
	dt.year = uint16(year)
	dt.month = uint8(month)
	dt.day = uint8(1 + days - calendar.DaysBeforeMonth(year, month))
	return dt, nil
}

// FromTime converts t, in its own location, to a DateTime. Sub-second
// precision is dropped.
func FromTime(t time.Time) (DateTime, error) {
	return New(t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
}

// Unix returns the number of seconds since the epoch.
func (dt DateTime) Unix() int32 {
	days := int32(epoch.DaysSinceEpoch(dt.Year(), dt.Month(), dt.Day()))
	return int32(dt.second) + 60*(int32(dt.minute)+60*(int32(dt.hour)+24*days))
}

// Time returns dt as a UTC time.Time.
func (dt DateTime) Time() time.Time {
	return time.Date(dt.Year(), time.Month(dt.month), dt.Day(), dt.Hour(), dt.Minute(), dt.Second(), 0, time.UTC)
}

func (dt DateTime) Year() int   { return int(dt.year) }
func (dt DateTime) Month() int  { return int(dt.month) }
func (dt DateTime) Day() int    { return int(dt.day) }
func (dt DateTime) Hour() int   { return int(dt.hour) }
func (dt DateTime) Minute() int { return int(dt.minute) }
func (dt DateTime) Second() int { return int(dt.second) }

// Hour12 returns the hour on a 12-hour clock, 1-12.
func (dt DateTime) Hour12() int {
	return (dt.Hour()+11)%12 + 1
}

// DayOfWeek returns the day of the week, Sunday = 0.
func (dt DateTime) DayOfWeek() int {
	return epoch.DayOfWeek(epoch.DaysSinceEpoch(dt.Year(), dt.Month(), dt.Day()))
}

// DayOfYear returns the zero-based day of the year, 0-365.
func (dt DateTime) DayOfYear() int {
	return calendar.DaysBeforeMonth(dt.Year(), dt.Month()) + dt.Day() - 1
}

// ISODayOfWeek returns the ISO 8601 day of the week, Monday = 1 to Sunday = 7.
func (dt DateTime) ISODayOfWeek() int {
	return (dt.DayOfWeek()+6)%7 + 1
}

// ISODayOfYear returns the day of the year counting January 1st as 1.
func (dt DateTime) ISODayOfYear() int {
	return dt.DayOfYear() + 1
}
