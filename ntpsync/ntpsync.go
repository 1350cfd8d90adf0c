// Package ntpsync fetches the time from an NTP (SNTP) server to set an RTC.
//
// It only builds the request and reads the server's transmit timestamp. There
// is no round-trip compensation, which is accurate enough for a clock with
// one second resolution.
package ntpsync

import (
	"errors"
	"fmt"
	"io"

	"github.com/ajanata/softrtc/datetime"
)

const (
	PacketSize = 48
	Port       = 123

	// seconds from 1900-01-01 to 1970-01-01
	seventyYears = 2208988800
)

var (
	ErrShortPacket = errors.New("ntpsync: short NTP packet")
	ErrNotServer   = errors.New("ntpsync: reply is not from a server")

	// ErrUnsynchronized is returned for kiss-of-death replies (stratum 0) and
	// transmit timestamps before 1970.
	ErrUnsynchronized = errors.New("ntpsync: server is not synchronized")
)

// Request fills b, which must be PacketSize bytes long, with a client request.
func Request(b []byte) {
	clear(b[:PacketSize])
	b[0] = 0b11100011 // LI unsynchronized, version 4, client mode
	b[1] = 0          // Stratum, or type of clock
	b[2] = 6          // Polling Interval
	b[3] = 0xEC       // Peer Clock Precision
	// 8 bytes of zero for Root Delay & Root Dispersion
	b[12] = 49
	b[13] = 0x4E
	b[14] = 49
	b[15] = 52
}

// Parse returns the transmit timestamp of a server reply.
func Parse(b []byte) (datetime.DateTime, error) {
	if len(b) < PacketSize {
		return datetime.Epoch(), fmt.Errorf("%w: %d bytes", ErrShortPacket, len(b))
	}
	if mode := b[0] & 0x07; mode != 4 && mode != 5 {
		return datetime.Epoch(), fmt.Errorf("%w: mode %d", ErrNotServer, mode)
	}
	// the timestamp starts at byte 40 of the received packet and is four bytes,
	// this is NTP time (seconds since Jan 1 1900):
	t := uint32(b[40])<<24 | uint32(b[41])<<16 | uint32(b[42])<<8 | uint32(b[43])
	if b[1] == 0 || t < seventyYears {
		return datetime.Epoch(), fmt.Errorf("%w: stratum %d, timestamp %d", ErrUnsynchronized, b[1], t)
	}
	return datetime.FromUnix(int32(t - seventyYears))
}

// Query sends one request on conn, a connected UDP socket, and parses the
// reply. Deadlines are up to the caller.
func Query(conn io.ReadWriter) (datetime.DateTime, error) {
	var b [PacketSize]byte
	Request(b[:])
	if _, err := conn.Write(b[:]); err != nil {
		return datetime.Epoch(), fmt.Errorf("sending NTP request: %w", err)
	}
	n, err := conn.Read(b[:])
	if err != nil {
		return datetime.Epoch(), fmt.Errorf("reading NTP reply: %w", err)
	}
	return Parse(b[:n])
}
