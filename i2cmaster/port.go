package i2cmaster

import "tinygo.org/x/drivers"

// PortMaster adapts a hardware I2C peripheral performing whole transfers to
// the byte-level Bus interface. A drivers.I2C Tx writes w and then, when r is
// not empty, reads r after a repeated start. machine.I2C and periph.io i2c.Bus
// both implement it.
//
// Written bytes are buffered and sent when the transaction stops or changes
// direction, so address and data acknowledge failures surface from Stop or
// Restart rather than from Write. After a write and a restart for reading, the
// first Read sends the buffered bytes and reads one byte in a single transfer;
// later reads each fetch one more byte, relying on the device to keep
// advancing its register pointer between transfers, as register-file devices
// such as the DS1307 do. Devices that latch their registers per transfer should
// be read through Tx instead.
type PortMaster struct {
	bus     drivers.I2C
	addr    uint16
	reading bool
	open    bool
	wbuf    []byte
	rbuf    [1]byte
}

// NewPort wraps bus. The peripheral must already be configured.
func NewPort(bus drivers.I2C) *PortMaster {
	return &PortMaster{
		bus:  bus,
		wbuf: make([]byte, 0, 16),
	}
}

func (m *PortMaster) address(addrRW uint8) {
	m.addr = uint16(addrRW >> 1)
	m.reading = addrRW&Read != 0
}

// Start implements Bus.
func (m *PortMaster) Start(addrRW uint8) error {
	if m.open {
		return ErrBusy
	}
	m.open = true
	m.wbuf = m.wbuf[:0]
	m.address(addrRW)
	return nil
}

// Restart implements Bus. Switching to another address or back to writing
// flushes the buffered bytes first.
func (m *PortMaster) Restart(addrRW uint8) error {
	if !m.open {
		return ErrNoTransaction
	}
	if uint16(addrRW>>1) != m.addr || addrRW&Read == 0 {
		if err := m.flush(); err != nil {
			return err
		}
	}
	m.address(addrRW)
	return nil
}

// Write implements Bus.
func (m *PortMaster) Write(b byte) error {
	if !m.open || m.reading {
		return ErrNoTransaction
	}
	m.wbuf = append(m.wbuf, b)
	return nil
}

// Read implements Bus. The acknowledge handling is left to the peripheral,
// which ends every transfer with a NACK.
func (m *PortMaster) Read(last bool) (byte, error) {
	if !m.open || !m.reading {
		return 0, ErrNoTransaction
	}
	err := m.bus.Tx(m.addr, m.wbuf, m.rbuf[:])
	m.wbuf = m.wbuf[:0]
	if err != nil {
		return 0, err
	}
	return m.rbuf[0], nil
}

// Stop implements Bus.
func (m *PortMaster) Stop() error {
	if !m.open {
		return nil
	}
	m.open = false
	if m.reading {
		m.wbuf = m.wbuf[:0]
		return nil
	}
	return m.flush()
}

// Tx implements Txer by handing the transfer to the peripheral as one
// transaction. It returns ErrBusy inside a byte-level transaction.
func (m *PortMaster) Tx(addr uint16, w, r []byte) error {
	if m.open {
		return ErrBusy
	}
	return m.bus.Tx(addr, w, r)
}

func (m *PortMaster) flush() error {
	if m.reading && len(m.wbuf) == 0 {
		return nil
	}
	err := m.bus.Tx(m.addr, m.wbuf, nil)
	m.wbuf = m.wbuf[:0]
	return err
}
