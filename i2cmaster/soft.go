package i2cmaster

import "time"

// Line is one open-drain bus line with an external or internal pull-up.
type Line interface {
	// Low actively drives the line low.
	Low()
	// Release stops driving the line so the pull-up takes it high.
	Release()
	// Get reads the line level.
	Get() bool
}

// SoftConfig configures a SoftMaster.
type SoftConfig struct {
	// Frequency is the target SCL frequency in Hz. Zero disables all delays,
	// which is only useful for simulated lines.
	Frequency uint32
}

// SoftMaster is a bit-banged I2C master. It does not support clock
// stretching or multiple masters.
type SoftMaster struct {
	sda, scl Line
	half     time.Duration
	open     bool
}

// NewSoft creates a software master on the given lines and releases both of
// them, leaving the bus idle.
func NewSoft(sda, scl Line) *SoftMaster {
	m := &SoftMaster{sda: sda, scl: scl}
	sda.Release()
	scl.Release()
	return m
}

// Configure applies c.
func (m *SoftMaster) Configure(c SoftConfig) {
	m.half = 0
	if c.Frequency > 0 {
		m.half = time.Second / time.Duration(2*c.Frequency)
	}
}

func (m *SoftMaster) delay() {
	if m.half > 0 {
		time.Sleep(m.half)
	}
}

func (m *SoftMaster) setSDA(high bool) {
	if high {
		m.sda.Release()
	} else {
		m.sda.Low()
	}
}

// Start implements Bus.
func (m *SoftMaster) Start(addrRW uint8) error {
	if m.open {
		return ErrBusy
	}
	m.start()
	m.open = true
	return m.Write(addrRW)
}

func (m *SoftMaster) start() {
	// SDA falls while SCL is high.
	m.sda.Low()
	m.delay()
	m.scl.Low()
	m.delay()
}

// Restart implements Bus.
func (m *SoftMaster) Restart(addrRW uint8) error {
	if !m.open {
		return ErrNoTransaction
	}
	m.sda.Release()
	m.delay()
	m.scl.Release()
	m.delay()
	m.start()
	return m.Write(addrRW)
}

// Stop implements Bus.
func (m *SoftMaster) Stop() error {
	// SDA rises while SCL is high.
	m.sda.Low()
	m.delay()
	m.scl.Release()
	m.delay()
	m.sda.Release()
	m.delay()
	m.open = false
	return nil
}

// Write implements Bus.
func (m *SoftMaster) Write(b byte) error {
	if !m.open {
		return ErrNoTransaction
	}
	for i := 7; i >= 0; i-- {
		m.setSDA(b&(1<<i) != 0)
		m.scl.Release()
		m.delay()
		m.scl.Low()
		m.delay()
	}

	// ninth clock: the receiver pulls SDA low to acknowledge
	m.sda.Release()
	m.scl.Release()
	m.delay()
	nack := m.sda.Get()
	m.scl.Low()
	m.sda.Low()
	m.delay()
	if nack {
		return ErrNack
	}
	return nil
}

// Read implements Bus.
func (m *SoftMaster) Read(last bool) (byte, error) {
	if !m.open {
		return 0, ErrNoTransaction
	}
	var b byte
	m.sda.Release()
	for i := 7; i >= 0; i-- {
		m.scl.Release()
		m.delay()
		if m.sda.Get() {
			b |= 1 << i
		}
		m.scl.Low()
		m.delay()
	}

	// acknowledge every byte but the last
	m.setSDA(last)
	m.scl.Release()
	m.delay()
	m.scl.Low()
	m.sda.Low()
	m.delay()
	return b, nil
}
