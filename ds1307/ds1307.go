// Package ds1307 implements a driver for the DS1307 Real-Time Clock (RTC): reading and setting the time, the SQW/OUT
// pin and the 56 bytes of battery-backed RAM. Times are exchanged as datetime.DateTime values; the chip keeps no
// century, so the driver assumes 2000-2099.
//
// The driver frames its own transactions on a byte-level i2cmaster.Bus, so it works over both bit-banged and hardware
// I2C. Every register access is a single transaction, using a repeated start to switch to reading. Buses that also
// implement i2cmaster.Txer get register reads as one bulk transfer. Output buffers are only written when the whole
// transaction succeeded.
//
// Datasheet: https://www.analog.com/media/en/technical-documentation/data-sheets/DS1307.pdf
package ds1307

import (
	"errors"

	"github.com/ajanata/softrtc/datetime"
	"github.com/ajanata/softrtc/i2cmaster"
)

var (
	// ErrRAMRange is returned for RAM accesses outside the 56 byte RAM.
	ErrRAMRange = errors.New("ds1307: RAM access out of range")

	// ErrRegisterRange is returned for empty register reads and accesses past
	// the last register.
	ErrRegisterRange = errors.New("ds1307: register access out of range")
)

// registerSpace is the size of the register file, time registers and RAM.
const registerSpace = RAMStart + RAMSize

type Device struct {
	bus       i2cmaster.Bus
	Address   uint8
	// dayOfWeek makes SetTime fill the day of week register.
	dayOfWeek bool
	scratch   [registerSpace]byte
}

type Config struct {
	// Address is the 7-bit I2C address, Address when zero.
	Address     uint8
	// NoDayOfWeek leaves the day of week register at zero when setting the time.
	NoDayOfWeek bool
}

// New creates a driver on a bus. The day of week register is filled in by default.
func New(bus i2cmaster.Bus) Device {
	return Device{
		bus:       bus,
		Address:   Address,
		dayOfWeek: true,
	}
}

func (d *Device) Configure(c Config) {
	if c.Address == 0 {
		c.Address = Address
	}
	d.Address = c.Address
	d.dayOfWeek = !c.NoDayOfWeek
}

// ReadRegisters reads len(buf) consecutive registers starting at addr, in a
// single transfer when the bus implements i2cmaster.Txer. The chip latches the
// time registers at each start condition, so a one-transfer read never mixes
// two seconds.
func (d *Device) ReadRegisters(addr uint8, buf []byte) error {
	if len(buf) == 0 || int(addr)+len(buf) > registerSpace {
		return ErrRegisterRange
	}
	tmp := d.scratch[:len(buf)]
	if tx, ok := d.bus.(i2cmaster.Txer); ok {
		if err := tx.Tx(uint16(d.Address), []byte{addr}, tmp); err != nil {
			return err
		}
		copy(buf, tmp)
		return nil
	}
	if err := d.read(addr, tmp); err != nil {
		// release the bus whatever state the failed step left it in
		d.bus.Stop()
		return err
	}
	if err := d.bus.Stop(); err != nil {
		return err
	}
	copy(buf, tmp)
	return nil
}

func (d *Device) read(addr uint8, buf []byte) error {
	if err := d.bus.Start(i2cmaster.Addr(d.Address, i2cmaster.Write)); err != nil {
		return err
	}
	if err := d.bus.Write(addr); err != nil {
		return err
	}
	if err := d.bus.Restart(i2cmaster.Addr(d.Address, i2cmaster.Read)); err != nil {
		return err
	}
	for i := range buf {
		b, err := d.bus.Read(i == len(buf)-1)
		if err != nil {
			return err
		}
		buf[i] = b
	}
	return nil
}

// WriteRegisters writes buf to consecutive registers starting at addr.
func (d *Device) WriteRegisters(addr uint8, buf []byte) error {
	if int(addr)+len(buf) > registerSpace {
		return ErrRegisterRange
	}
	if err := d.write(addr, buf); err != nil {
		d.bus.Stop()
		return err
	}
	return d.bus.Stop()
}

func (d *Device) write(addr uint8, buf []byte) error {
	if err := d.bus.Start(i2cmaster.Addr(d.Address, i2cmaster.Write)); err != nil {
		return err
	}
	if err := d.bus.Write(addr); err != nil {
		return err
	}
	for _, b := range buf {
		if err := d.bus.Write(b); err != nil {
			return err
		}
	}
	return nil
}

// ReadTime reads the seven time registers, with the clock halt bit masked and converted from BCD to binary.
func (d *Device) ReadTime() ([7]byte, error) {
	var r [7]byte
	if err := d.ReadRegisters(Time, r[:]); err != nil {
		return r, err
	}
	return decodeRegisters(r), nil
}

// Now reads the current time. The registers are taken as stored, without validation.
func (d *Device) Now() (datetime.DateTime, error) {
	r, err := d.ReadTime()
	if err != nil {
		return datetime.Epoch(), err
	}
	return fromRegisters(r), nil
}

// NowChecked reads the current time and validates it. Registers holding an impossible time, or a year past
// datetime.LastYear, give datetime.Epoch() and datetime.ErrInvalid.
func (d *Device) NowChecked() (datetime.DateTime, error) {
	r, err := d.ReadTime()
	if err != nil {
		return datetime.Epoch(), err
	}
	return datetime.New(century+int(r[6]), int(r[5]), int(r[4]), int(r[2]), int(r[1]), int(r[0]))
}

// SetTime sets the clock to dt and starts the oscillator.
func (d *Device) SetTime(dt datetime.DateTime) error {
	r := Encode(dt, d.dayOfWeek)
	return d.WriteRegisters(Time, r[:])
}

// IsRunning reports whether the oscillator is running. Any bus error reads as stopped.
func (d *Device) IsRunning() bool {
	var r [1]byte
	if err := d.ReadRegisters(Time, r[:]); err != nil {
		return false
	}
	return r[0]&clockHalt == 0
}

// SetSquareWave configures the SQW/OUT pin.
func (d *Device) SetSquareWave(mode SquareWave) error {
	return d.WriteRegisters(Control, []byte{uint8(mode)})
}

func ramRange(offset uint8, n int) error {
	if int(offset)+n > RAMSize {
		return ErrRAMRange
	}
	return nil
}

// ReadRAM reads len(buf) bytes of battery-backed RAM starting at offset (0-55).
func (d *Device) ReadRAM(offset uint8, buf []byte) error {
	if err := ramRange(offset, len(buf)); err != nil {
		return err
	}
	return d.ReadRegisters(RAMStart+offset, buf)
}

// WriteRAM writes buf to battery-backed RAM starting at offset (0-55).
func (d *Device) WriteRAM(offset uint8, buf []byte) error {
	if err := ramRange(offset, len(buf)); err != nil {
		return err
	}
	return d.WriteRegisters(RAMStart+offset, buf)
}
