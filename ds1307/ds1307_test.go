package ds1307

import (
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"
	"pgregory.net/rapid"

	"github.com/ajanata/softrtc/datetime"
	"github.com/ajanata/softrtc/i2cmaster"
)

var errFault = errors.New("bus fault")

// fakeBus is a byte-level bus with a DS1307 register file behind it. failAt makes the n-th operation (1-based,
// counting Start, Restart, Write and Read) fail.
type fakeBus struct {
	regs    [registerSpace]byte
	ptr     uint8
	gotPtr  bool
	addr    uint8
	open    bool
	ops     int
	failAt  int
	stops   int
	lastNak bool
}

func (b *fakeBus) fail() bool {
	b.ops++
	return b.ops == b.failAt
}

func (b *fakeBus) Start(addr uint8) error {
	if b.fail() {
		return i2cmaster.ErrNack
	}
	b.open, b.addr, b.gotPtr = true, addr, false
	return nil
}

func (b *fakeBus) Restart(addr uint8) error {
	if b.fail() {
		return i2cmaster.ErrNack
	}
	b.addr = addr
	return nil
}

func (b *fakeBus) Write(v byte) error {
	if b.fail() {
		return i2cmaster.ErrNack
	}
	if !b.gotPtr {
		b.ptr, b.gotPtr = v, true
		return nil
	}
	b.regs[b.ptr] = v
	b.ptr = (b.ptr + 1) % registerSpace
	return nil
}

func (b *fakeBus) Read(last bool) (byte, error) {
	if b.fail() {
		return 0, errFault
	}
	v := b.regs[b.ptr]
	b.ptr = (b.ptr + 1) % registerSpace
	b.lastNak = last
	return v, nil
}

func (b *fakeBus) Stop() error {
	b.stops++
	b.open = false
	return nil
}

func newDevice() (*Device, *fakeBus) {
	bus := &fakeBus{}
	d := New(bus)
	return &d, bus
}

func TestBCD(t *testing.T) {
	c := qt.New(t)
	for v := uint8(0); v < 100; v++ {
		c.Assert(FromBCD(ToBCD(v)), qt.Equals, v, qt.Commentf("value %d", v))
		c.Assert(ToBCD(v), qt.Equals, v/10<<4|v%10)
	}
	c.Assert(ToBCD(59), qt.Equals, uint8(0x59))
	c.Assert(FromBCD(0x37), qt.Equals, uint8(37))
}

func TestEncode(t *testing.T) {
	c := qt.New(t)
	dt, err := datetime.New(2024, 3, 3, 21, 45, 7)
	c.Assert(err, qt.IsNil)

	c.Assert(Encode(dt, true), qt.Equals, [7]byte{0x07, 0x45, 0x21, 0x07, 0x03, 0x03, 0x24})
	c.Assert(Encode(dt, false), qt.Equals, [7]byte{0x07, 0x45, 0x21, 0x00, 0x03, 0x03, 0x24})
}

func TestDecodeMasksClockHalt(t *testing.T) {
	c := qt.New(t)
	dt := Decode([7]byte{0x80 | 0x30, 0x15, 0x09, 0x02, 0x31, 0x12, 0x36})
	c.Assert(dt.ISODateTime(), qt.Equals, "2036-12-31 09:15:30")
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		year := rapid.IntRange(2000, datetime.LastYear).Draw(t, "year")
		month := rapid.IntRange(1, 12).Draw(t, "month")
		day := rapid.IntRange(1, 28).Draw(t, "day")
		hour := rapid.IntRange(0, 23).Draw(t, "hour")
		minute := rapid.IntRange(0, 59).Draw(t, "minute")
		second := rapid.IntRange(0, 59).Draw(t, "second")
		dow := rapid.Bool().Draw(t, "dow")

		dt, err := datetime.New(year, month, day, hour, minute, second)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if got := Decode(Encode(dt, dow)); got != dt {
			t.Fatalf("round trip of %s gave %s", dt, got)
		}
	})
}

func TestSetTimeAndNow(t *testing.T) {
	c := qt.New(t)
	d, bus := newDevice()
	bus.regs[0] = clockHalt

	dt, err := datetime.New(2031, 7, 14, 6, 5, 4)
	c.Assert(err, qt.IsNil)
	c.Assert(d.SetTime(dt), qt.IsNil)
	c.Assert(bus.regs[:7], qt.DeepEquals, []byte{0x04, 0x05, 0x06, 0x01, 0x14, 0x07, 0x31})
	c.Assert(bus.stops, qt.Equals, 1)
	c.Assert(bus.open, qt.IsFalse)

	got, err := d.Now()
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, dt)
	c.Assert(bus.lastNak, qt.IsTrue)
	c.Assert(bus.addr, qt.Equals, uint8(0xD1))

	got, err = d.NowChecked()
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, dt)
	c.Assert(d.IsRunning(), qt.IsTrue)
}

func TestNoDayOfWeek(t *testing.T) {
	c := qt.New(t)
	d, bus := newDevice()
	d.Configure(Config{NoDayOfWeek: true})
	c.Assert(d.Address, qt.Equals, uint8(Address))

	dt, err := datetime.New(2031, 7, 14, 6, 5, 4)
	c.Assert(err, qt.IsNil)
	c.Assert(d.SetTime(dt), qt.IsNil)
	c.Assert(bus.regs[Weekday], qt.Equals, byte(0))
}

func TestNowChecked(t *testing.T) {
	c := qt.New(t)
	d, bus := newDevice()
	copy(bus.regs[:], []byte{0x00, 0x00, 0x00, 0x01, 0x30, 0x02, 0x21})

	got, err := d.NowChecked()
	c.Assert(err, qt.ErrorIs, datetime.ErrInvalid)
	c.Assert(got, qt.Equals, datetime.Epoch())

	copy(bus.regs[:], []byte{0x00, 0x00, 0x00, 0x01, 0x01, 0x01, 0x38})
	_, err = d.NowChecked()
	c.Assert(err, qt.ErrorIs, datetime.ErrInvalid)
}

func TestIsRunning(t *testing.T) {
	c := qt.New(t)
	d, bus := newDevice()
	bus.regs[0] = clockHalt | 0x12
	c.Assert(d.IsRunning(), qt.IsFalse)

	bus.regs[0] = 0x12
	c.Assert(d.IsRunning(), qt.IsTrue)

	bus.ops, bus.failAt = 0, 1
	c.Assert(d.IsRunning(), qt.IsFalse)
}

func TestSquareWave(t *testing.T) {
	c := qt.New(t)
	d, bus := newDevice()
	for _, mode := range []SquareWave{SQWLow, SQWHigh, SQW1Hz, SQW4096Hz, SQW8192Hz, SQW32768Hz} {
		c.Assert(d.SetSquareWave(mode), qt.IsNil)
		c.Assert(bus.regs[Control], qt.Equals, byte(mode))
	}
}

func TestRAM(t *testing.T) {
	c := qt.New(t)
	d, bus := newDevice()

	c.Assert(d.WriteRAM(0, []byte{1, 2, 3}), qt.IsNil)
	c.Assert(bus.regs[RAMStart:RAMStart+3], qt.DeepEquals, []byte{1, 2, 3})
	c.Assert(d.WriteRAM(RAMSize-1, []byte{0xEE}), qt.IsNil)
	c.Assert(bus.regs[registerSpace-1], qt.Equals, byte(0xEE))

	buf := make([]byte, 3)
	c.Assert(d.ReadRAM(0, buf), qt.IsNil)
	c.Assert(buf, qt.DeepEquals, []byte{1, 2, 3})

	c.Assert(d.ReadRAM(RAMSize-2, buf), qt.Equals, ErrRAMRange)
	c.Assert(d.WriteRAM(RAMSize, []byte{0}), qt.Equals, ErrRAMRange)
	c.Assert(d.ReadRAM(0, make([]byte, RAMSize+1)), qt.Equals, ErrRAMRange)
	// rejected accesses never reach the bus
	c.Assert(bus.ops, qt.Equals, 5+3+6)
}

func TestTransportFailure(t *testing.T) {
	c := qt.New(t)
	// read transaction: Start, register, Restart, 7 reads
	for failAt := 1; failAt <= 10; failAt++ {
		c.Run("read", func(c *qt.C) {
			d, bus := newDevice()
			copy(bus.regs[:], []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07})
			bus.failAt = failAt

			buf := []byte{0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA}
			err := d.ReadRegisters(Time, buf)
			c.Assert(err, qt.Not(qt.IsNil), qt.Commentf("failing op %d", failAt))
			c.Assert(buf, qt.DeepEquals, []byte{0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA})
			c.Assert(bus.stops, qt.Equals, 1)
		})
	}
	// write transaction: Start, register, 7 bytes
	for failAt := 1; failAt <= 9; failAt++ {
		c.Run("write", func(c *qt.C) {
			d, bus := newDevice()
			bus.failAt = failAt
			c.Assert(d.SetTime(datetime.Epoch()), qt.ErrorIs, i2cmaster.ErrNack)
			c.Assert(bus.stops, qt.Equals, 1)
		})
	}
}

func TestFirstStartFails(t *testing.T) {
	c := qt.New(t)
	d, bus := newDevice()
	bus.failAt = 1

	got, err := d.Now()
	c.Assert(err, qt.Equals, i2cmaster.ErrNack)
	c.Assert(got, qt.Equals, datetime.Epoch())
	c.Assert(bus.stops, qt.Equals, 1)
	c.Assert(bus.ops, qt.Equals, 1)
}

func TestOverPortMaster(t *testing.T) {
	c := qt.New(t)
	dt, err := datetime.New(2022, 2, 22, 22, 22, 22)
	c.Assert(err, qt.IsNil)

	tx := &regTxer{}
	d := New(i2cmaster.NewPort(tx))
	c.Assert(d.SetTime(dt), qt.IsNil)
	got, err := d.Now()
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, dt)
	c.Assert(d.IsRunning(), qt.IsTrue)
}

// regTxer is a Tx-style DS1307: the first written byte of a transfer sets the register pointer.
type regTxer struct {
	regs [registerSpace]byte
	ptr  uint8
}

func (r *regTxer) Tx(addr uint16, w, rd []byte) error {
	if addr != Address {
		return i2cmaster.ErrNack
	}
	if len(w) > 0 {
		r.ptr = w[0]
		for _, b := range w[1:] {
			r.regs[r.ptr] = b
			r.ptr = (r.ptr + 1) % registerSpace
		}
	}
	for i := range rd {
		rd[i] = r.regs[r.ptr]
		r.ptr = (r.ptr + 1) % registerSpace
	}
	return nil
}

// tickingChip is a Tx-style DS1307 whose clock rolls over from 12:59:59 to 13:00:00 after the first transfer. The
// time registers are latched for the length of a transfer.
type tickingChip struct {
	regTxer
	transfers int
}

func (t *tickingChip) Tx(addr uint16, w, rd []byte) error {
	err := t.regTxer.Tx(addr, w, rd)
	t.transfers++
	copy(t.regs[:3], []byte{0x00, 0x00, 0x13})
	return err
}

func TestNowIsOneTransfer(t *testing.T) {
	c := qt.New(t)
	chip := &tickingChip{}
	copy(chip.regs[:], []byte{0x59, 0x59, 0x12, 0x02, 0x01, 0x01, 0x24})
	d := New(i2cmaster.NewPort(chip))

	got, err := d.Now()
	c.Assert(err, qt.IsNil)
	c.Assert(got.ISODateTime(), qt.Equals, "2024-01-01 12:59:59")
	c.Assert(chip.transfers, qt.Equals, 1)

	got, err = d.Now()
	c.Assert(err, qt.IsNil)
	c.Assert(got.ISODateTime(), qt.Equals, "2024-01-01 13:00:00")
	c.Assert(chip.transfers, qt.Equals, 2)
}

func TestTxFailureLeavesBuffer(t *testing.T) {
	c := qt.New(t)
	d := New(i2cmaster.NewPort(&regTxer{}))
	d.Address = 0x50

	buf := []byte{0xAA, 0xAA}
	c.Assert(d.ReadRegisters(Time, buf), qt.Equals, i2cmaster.ErrNack)
	c.Assert(buf, qt.DeepEquals, []byte{0xAA, 0xAA})
}

func TestRegisterRange(t *testing.T) {
	c := qt.New(t)
	d, bus := newDevice()

	c.Assert(d.ReadRegisters(Time, nil), qt.Equals, ErrRegisterRange)
	c.Assert(d.ReadRegisters(Time, make([]byte, registerSpace+1)), qt.Equals, ErrRegisterRange)
	c.Assert(d.ReadRegisters(registerSpace-1, make([]byte, 2)), qt.Equals, ErrRegisterRange)
	c.Assert(d.WriteRegisters(registerSpace-1, []byte{1, 2}), qt.Equals, ErrRegisterRange)
	c.Assert(d.ReadRAM(0, nil), qt.Equals, ErrRegisterRange)
	c.Assert(bus.ops, qt.Equals, 0)

	c.Assert(d.ReadRegisters(registerSpace-1, make([]byte, 1)), qt.IsNil)
	c.Assert(d.ReadRegisters(Time, make([]byte, registerSpace)), qt.IsNil)
}
