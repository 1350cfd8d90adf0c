// Package calendar implements the integer date arithmetic used by the datetime
// and ds1307 packages: leap years, month lengths and conversions between a
// calendar date and a count of days since an epoch.
//
// The formulas are closed-form and only valid between 1901 and 2099, where
// every year divisible by 4 is a leap year. None of the functions validate
// their arguments; callers are expected to stay inside the supported window.
// Out-of-range input gives meaningless but deterministic results.
package calendar

// Epoch is the year whose January 1st, 00:00:00 is day zero.
type Epoch int

// Unix is the POSIX epoch, January 1st 1970.
const Unix Epoch = 1970

// IsLeapYear reports whether y is a leap year. The century rule is omitted on
// purpose: 2000 is a leap year and the supported window ends before 2100.
func IsLeapYear(y int) bool {
	return y&3 == 0
}

func leap(y int) int {
	if IsLeapYear(y) {
		return 1
	}
	return 0
}

// DaysInMonth returns the number of days in month m (1-12) of year y.
func DaysInMonth(y, m int) int {
	switch {
	case m == 2:
		return 28 + leap(y)
	case m < 8:
		return 30 + m&1
	default:
		return 31 - m&1
	}
}

// DaysBeforeMonth returns the number of days in year y before the first day
// of month m (1-12).
func DaysBeforeMonth(y, m int) int {
	if m < 3 {
		return 31 * (m - 1)
	}
	return leap(y) + (153*m-2)/5 - 32
}

// DayOfYearToMonth returns the month (1-12) containing the zero-based day of
// year yday.
func DayOfYearToMonth(y, yday int) int {
	if yday < 31 {
		return 1
	}
	return (456 + 5*(yday-58-leap(y))) / 153
}

// DaysBeforeYear returns the number of days between the epoch and January 1st
// of year y.
func (e Epoch) DaysBeforeYear(y int) int {
	ey := int(e)
	return 365*(y-ey) + (y-1)/4 - (ey-1)/4
}

// DaysSinceEpoch returns the number of days between the epoch and the given
// date. January and February are counted as months 13 and 14 of the previous
// year so the leap day always falls at the end of the shifted year.
func (e Epoch) DaysSinceEpoch(y, m, d int) int {
	ey := int(e)
	if m < 3 {
		m += 12
		y--
	}
	return 365*(y+1-ey) + y/4 - (ey-1)/4 + (153*m-2)/5 + d - 398
}

// DayToYear returns the year containing epoch day eday.
func (e Epoch) DayToYear(eday int) int {
	ey := int(e)
	return ey + (eday-(eday+365*(1+(ey-1)%4))/1461)/365
}

// DayOfWeek returns the day of the week of epoch day eday, Sunday = 0.
func (e Epoch) DayOfWeek(eday int) int {
	ey := int(e)
	return (eday + ey - 1 + (ey-1)/4) % 7
}
