// Package i2cmaster provides byte-level I2C master transports.
//
// A Bus exposes the individual steps of an I2C transaction (start, repeated
// start, byte writes, byte reads and stop) so register-oriented drivers can
// frame their own transfers. Two implementations are provided: SoftMaster,
// which bit-bangs two open-drain lines, and PortMaster, which runs on top of a
// hardware peripheral such as machine.I2C or a periph.io bus.
//
// Addresses passed to Start and Restart are 8-bit: the 7-bit device address
// shifted left by one, ORed with Read or Write.
package i2cmaster

import "errors"

// Direction bits ORed with an 8-bit address.
const (
	Write = 0
	Read  = 1
)

var (
	// ErrNack is returned when the addressed device does not acknowledge.
	ErrNack = errors.New("i2c: no acknowledge")
	// ErrBusy is returned by Start when a transaction is already open.
	ErrBusy = errors.New("i2c: bus busy")
	// ErrNoTransaction is returned when a byte is transferred outside of a
	// transaction or in the wrong direction.
	ErrNoTransaction = errors.New("i2c: no transaction in progress")
)

// Bus is a byte-level I2C master.
type Bus interface {
	// Start issues a start condition and sends addrRW.
	Start(addrRW uint8) error
	// Restart issues a repeated start, without a stop, and sends addrRW.
	Restart(addrRW uint8) error
	// Write sends one byte. It returns ErrNack if the byte is not acknowledged.
	Write(b byte) error
	// Read receives one byte, acknowledging it unless last is set.
	Read(last bool) (byte, error)
	// Stop issues a stop condition and ends the transaction.
	Stop() error
}

// Txer is implemented by transports that can run a whole transfer in one bus
// transaction: a write of w followed, when r is not empty, by a repeated start
// and a read into r. Drivers reading register ranges should prefer it over
// byte-level reads, which some transports split into several transfers.
type Txer interface {
	Tx(addr uint16, w, r []byte) error
}

// Addr returns the 8-bit address byte for a 7-bit address and direction.
func Addr(addr uint8, dir uint8) uint8 {
	return addr<<1 | dir&1
}
