package wire

import (
	"chunkstore/internal/common"
	"io"
	"net"
	"time"
)

// Conn wraps a net.Conn with frame-at-a-time read/write and the
// NETWORK_TIMEOUT_MS deadline from spec.md 6. Grounded on the teacher's
// internal/common/rpc.ClientEnd (dial lazily, reconnect on next use) but
// carries raw frames instead of net/rpc traffic.
type Conn struct {
	raw     net.Conn
	Timeout time.Duration
}

func NewConn(raw net.Conn) *Conn {
	return &Conn{raw: raw, Timeout: common.NetworkTimeout}
}

// Dial connects to addr with the network timeout as both the dial and
// the first-frame deadline.
func Dial(addr string) (*Conn, error) {
	raw, err := net.DialTimeout("tcp", addr, common.NetworkTimeout)
	if err != nil {
		return nil, err
	}
	return NewConn(raw), nil
}

func (c *Conn) Close() error { return c.raw.Close() }

func (c *Conn) RemoteAddr() net.Addr { return c.raw.RemoteAddr() }

// WriteFrame encodes and writes f in one call under the network timeout.
func (c *Conn) WriteFrame(f *Frame) error {
	if c.Timeout > 0 {
		c.raw.SetWriteDeadline(time.Now().Add(c.Timeout))
	}
	_, err := c.raw.Write(f.Encode())
	return err
}

// ReadFrame reads exactly one frame: the fixed header, then exactly
// payload_size bytes of payload, verifying the checksum before
// returning. Per spec.md 4.1, verification failures are hard errors —
// the caller must close the connection and must not attempt to parse
// anything further from it.
func (c *Conn) ReadFrame() (*Frame, error) {
	if c.Timeout > 0 {
		c.raw.SetReadDeadline(time.Now().Add(c.Timeout))
	}
	hdr := make([]byte, HeaderSize)
	if _, err := io.ReadFull(c.raw, hdr); err != nil {
		return nil, err
	}
	f, err := DecodeHeader(hdr)
	if err != nil {
		return nil, err
	}
	payload := make([]byte, f.PayloadSize)
	if f.PayloadSize > 0 {
		if _, err := io.ReadFull(c.raw, payload); err != nil {
			return nil, err
		}
	}
	if err := f.VerifyPayload(payload); err != nil {
		return nil, err
	}
	return f, nil
}

// Roundtrip writes req and reads back exactly one reply frame, the unit
// of work every client-to-storage-node and client-to-directory call in
// this system performs.
func (c *Conn) Roundtrip(req *Frame) (*Frame, error) {
	if err := c.WriteFrame(req); err != nil {
		return nil, err
	}
	return c.ReadFrame()
}
