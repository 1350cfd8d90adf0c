package datetime

// Parse builds a DateTime from a date in "Mmm DD YYYY" form and a time in
// "HH:MM:SS" form, the layout of C compiler build stamps such as
// "Mar  1 2024" and "13:05:09". Fields are read at fixed offsets. A blank tens
// digit reads as zero and only the last two digits of the year are used,
// offset from 2000. Any unparseable field makes the result fail validation,
// so Parse returns Epoch() and ErrInvalid.
func Parse(date, clock string) (DateTime, error) {
	if len(date) < 11 || len(clock) < 8 {
		return Epoch(), ErrInvalid
	}
	return New(2000+twoDigits(date[9:]), monthNumber(date), twoDigits(date[4:]),
		twoDigits(clock), twoDigits(clock[3:]), twoDigits(clock[6:]))
}

// ParseISO builds a DateTime from "YYYY-MM-DD HH:MM:SS". The separator between
// date and time may also be 'T'.
func ParseISO(s string) (DateTime, error) {
	if len(s) != 19 || s[4] != '-' || s[7] != '-' || (s[10] != ' ' && s[10] != 'T') || s[13] != ':' || s[16] != ':' {
		return Epoch(), ErrInvalid
	}
	for i := 0; i < 4; i++ {
		if s[i] < '0' || s[i] > '9' {
			return Epoch(), ErrInvalid
		}
	}
	return New(100*twoDigits(s)+twoDigits(s[2:]), twoDigits(s[5:]), twoDigits(s[8:]),
		twoDigits(s[11:]), twoDigits(s[14:]), twoDigits(s[17:]))
}

// twoDigits parses the two characters at the start of s. It returns -1 when
// they are not a number, which no field accepts.
func twoDigits(s string) int {
	tens := 0
	if '0' <= s[0] && s[0] <= '9' {
		tens = int(s[0] - '0')
	} else if s[0] != ' ' {
		return -1
	}
	if s[1] < '0' || s[1] > '9' {
		return -1
	}
	return 10*tens + int(s[1]-'0')
}

// monthNumber returns 1-12 for a three letter month abbreviation at the start
// of s, or 0.
func monthNumber(s string) int {
	for i, name := range monthNames {
		if s[:3] == name {
			return i + 1
		}
	}
	return 0
}
