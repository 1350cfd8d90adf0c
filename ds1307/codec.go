package ds1307

import "github.com/ajanata/softrtc/datetime"

// century is added to the two digit year register. The chip stores no
// century, so years before 2000 or after 2099 cannot be represented.
const century = 2000

// ToBCD converts a value in [0,99] to packed BCD.
func ToBCD(dec uint8) uint8 {
	return dec + 6*(dec/10)
}

// FromBCD converts a packed BCD byte to its value.
func FromBCD(bcd uint8) uint8 {
	return bcd - 6*(bcd>>4)
}

// Encode returns the seven time registers for dt, in BCD. The day of week
// register gets dt.ISODayOfWeek() when dayOfWeek is set and zero otherwise.
// The clock halt bit is clear, so writing the result starts the oscillator.
func Encode(dt datetime.DateTime, dayOfWeek bool) [7]byte {
	r := [7]byte{
		uint8(dt.Second()),
		uint8(dt.Minute()),
		uint8(dt.Hour()),
		0,
		uint8(dt.Day()),
		uint8(dt.Month()),
		uint8(dt.Year() % 100),
	}
	if dayOfWeek {
		r[3] = uint8(dt.ISODayOfWeek())
	}
	for i := range r {
		r[i] = ToBCD(r[i])
	}
	return r
}

// decodeRegisters masks the clock halt bit and converts the time registers
// from BCD.
func decodeRegisters(raw [7]byte) [7]byte {
	raw[0] &= 0x7F
	for i := range raw {
		raw[i] = FromBCD(raw[i])
	}
	return raw
}

// Decode converts the seven BCD time registers to a DateTime. The fields are
// taken as stored, without validation; the day of week register is ignored.
func Decode(raw [7]byte) datetime.DateTime {
	return fromRegisters(decodeRegisters(raw))
}

func fromRegisters(r [7]byte) datetime.DateTime {
	return datetime.Trusted(century+int(r[6]), int(r[5]), int(r[4]), int(r[2]), int(r[1]), int(r[0]))
}
