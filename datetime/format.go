package datetime

import (
	"io"
	"strconv"
)

// Layout selects one of the fixed text layouts produced by AppendFormat.
type Layout uint8

const (
	// LayoutDate is "DD Mmm YYYY", e.g. "01 Mar 2000".
	LayoutDate Layout = iota
	// LayoutDateTime is "DD Mmm YYYY HH:MM:SS".
	LayoutDateTime
	// LayoutISODate is "YYYY-MM-DD".
	LayoutISODate
	// LayoutISOTime is "HH:MM:SS".
	LayoutISOTime
	// LayoutISODateTime is "YYYY-MM-DD HH:MM:SS".
	LayoutISODateTime
	// LayoutUSADate is "MM/DD/YYYY".
	LayoutUSADate
	// LayoutUSADateTime is "MM/DD/YYYY HH:MM:SS".
	LayoutUSADateTime
)

var monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

var dayNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// append2d appends n as two digits with a leading zero.
func append2d(b []byte, n int) []byte {
	return append(b, byte('0'+n/10%10), byte('0'+n%10))
}

func (dt DateTime) appendYear(b []byte) []byte {
	return strconv.AppendInt(b, int64(dt.year), 10)
}

func (dt DateTime) appendMmm(b []byte) []byte {
	if dt.month < 1 || dt.month > 12 {
		return append(b, "???"...)
	}
	return append(b, monthNames[dt.month-1]...)
}

// AppendFormat appends the text form of dt in layout l to b.
func (dt DateTime) AppendFormat(b []byte, l Layout) []byte {
	switch l {
	case LayoutDate, LayoutDateTime:
		b = append2d(b, dt.Day())
		b = append(b, ' ')
		b = dt.appendMmm(b)
		b = append(b, ' ')
		b = dt.appendYear(b)
	case LayoutISODate, LayoutISODateTime:
		b = dt.appendYear(b)
		b = append(b, '-')
		b = append2d(b, dt.Month())
		b = append(b, '-')
		b = append2d(b, dt.Day())
	case LayoutUSADate, LayoutUSADateTime:
		b = append2d(b, dt.Month())
		b = append(b, '/')
		b = append2d(b, dt.Day())
		b = append(b, '/')
		b = dt.appendYear(b)
	}
	switch l {
	case LayoutDateTime, LayoutISODateTime, LayoutUSADateTime:
		b = append(b, ' ')
		fallthrough
	case LayoutISOTime:
		b = append2d(b, dt.Hour())
		b = append(b, ':')
		b = append2d(b, dt.Minute())
		b = append(b, ':')
		b = append2d(b, dt.Second())
	}
	return b
}

// Format returns the text form of dt in layout l.
func (dt DateTime) Format(l Layout) string {
	var buf [24]byte
	return string(dt.AppendFormat(buf[:0], l))
}

// Print writes dt to w in layout l.
func (dt DateTime) Print(w io.Writer, l Layout) (int, error) {
	var buf [24]byte
	return w.Write(dt.AppendFormat(buf[:0], l))
}

// String returns dt in ISO 8601 form, "YYYY-MM-DD HH:MM:SS".
func (dt DateTime) String() string {
	return dt.Format(LayoutISODateTime)
}

// DD returns the day of the month as two digits.
func (dt DateTime) DD() string {
	return string(append2d(nil, dt.Day()))
}

// MM returns the month as two digits.
func (dt DateTime) MM() string {
	return string(append2d(nil, dt.Month()))
}

// Mmm returns the three letter English month abbreviation.
func (dt DateTime) Mmm() string {
	return string(dt.appendMmm(nil))
}

// Ddd returns the three letter English abbreviation of the day of the week.
func (dt DateTime) Ddd() string {
	dow := dt.DayOfWeek()
	if dow < 0 || dow >= len(dayNames) {
		return "???"
	}
	return dayNames[dow]
}

func (dt DateTime) Date() string        { return dt.Format(LayoutDate) }
func (dt DateTime) DateTime() string    { return dt.Format(LayoutDateTime) }
func (dt DateTime) ISODate() string     { return dt.Format(LayoutISODate) }
func (dt DateTime) ISOTime() string     { return dt.Format(LayoutISOTime) }
func (dt DateTime) ISODateTime() string { return dt.Format(LayoutISODateTime) }
func (dt DateTime) USADate() string     { return dt.Format(LayoutUSADate) }
func (dt DateTime) USADateTime() string { return dt.Format(LayoutUSADateTime) }
