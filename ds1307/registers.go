package ds1307

const (
	Address  = 0x68 // 7-bit I2C address for DS1307
	Time     = 0x00 // Time registers starting with seconds, also holds the clock halt bit
	Weekday  = 0x03 // Day of week register
	Control  = 0x07 // Square-wave output control register
	RAMStart = 0x08 // First byte of battery-backed RAM
	RAMSize  = 56   // Bytes of battery-backed RAM
)

// clockHalt is bit 7 of the seconds register. The oscillator is stopped while
// it is set.
const clockHalt = 0x80

// SquareWave is a value for the control register, selecting the behavior of
// the SQW/OUT pin.
//
//	+---+---+---+----+---+---+---+---+
//	|OUT| 0 | 0 |SQWE| 0 | 0 |RS1|RS0|
//	+---+---+---+----+---+---+---+---+
type SquareWave uint8

const (
	SQWLow     SquareWave = 0x00 // output driven low
	SQWHigh    SquareWave = 0x80 // output released high
	SQW1Hz     SquareWave = 0x10
	SQW4096Hz  SquareWave = 0x11
	SQW8192Hz  SquareWave = 0x12
	SQW32768Hz SquareWave = 0x13
)
