package wire

import (
	"chunkstore/internal/types"
	"encoding/binary"
	"fmt"
)

// encoder/decoder implement the spec's "field-by-field, length-prefixed"
// payload rule: every variable-length field (string, byte blob, slice)
// is preceded by a 32-bit count. No struct is ever memcpy'd onto the
// wire.

type encoder struct {
	buf []byte
}

func (e *encoder) u8(v uint8)   { e.buf = append(e.buf, v) }
func (e *encoder) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	e.buf = append(e.buf, b[:]...)
}
func (e *encoder) u64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	e.buf = append(e.buf, b[:]...)
}
func (e *encoder) i64(v int64) { e.u64(uint64(v)) }
func (e *encoder) i32(v int32) { e.u32(uint32(v)) }
func (e *encoder) bytesField(v []byte) {
	e.u32(uint32(len(v)))
	e.buf = append(e.buf, v...)
}
func (e *encoder) str(v string) { e.bytesField([]byte(v)) }
func (e *encoder) boolean(v bool) {
	if v {
		e.u8(1)
	} else {
		e.u8(0)
	}
}
func (e *encoder) errField(err *types.WireError) {
	if err == nil {
		e.boolean(false)
		return
	}
	e.boolean(true)
	e.str(err.Kind)
	e.str(err.Message)
}

type decoder struct {
	buf []byte
	off int
	err error
}

func newDecoder(buf []byte) *decoder { return &decoder{buf: buf} }

func (d *decoder) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

func (d *decoder) need(n int) bool {
	if d.err != nil {
		return false
	}
	if d.off+n > len(d.buf) {
		d.fail(fmt.Errorf("wire: payload truncated, need %d more bytes at offset %d", n, d.off))
		return false
	}
	return true
}

func (d *decoder) u8() uint8 {
	if !d.need(1) {
		return 0
	}
	v := d.buf[d.off]
	d.off++
	return v
}
func (d *decoder) u32() uint32 {
	if !d.need(4) {
		return 0
	}
	v := binary.LittleEndian.Uint32(d.buf[d.off : d.off+4])
	d.off += 4
	return v
}
func (d *decoder) u64() uint64 {
	if !d.need(8) {
		return 0
	}
	v := binary.LittleEndian.Uint64(d.buf[d.off : d.off+8])
	d.off += 8
	return v
}
func (d *decoder) i64() int64 { return int64(d.u64()) }
func (d *decoder) i32() int32 { return int32(d.u32()) }
func (d *decoder) bytesField() []byte {
	n := d.u32()
	if !d.need(int(n)) {
		return nil
	}
	v := make([]byte, n)
	copy(v, d.buf[d.off:d.off+int(n)])
	d.off += int(n)
	return v
}
func (d *decoder) str() string { return string(d.bytesField()) }
func (d *decoder) boolean() bool { return d.u8() != 0 }
func (d *decoder) errField() *types.WireError {
	if !d.boolean() {
		return nil
	}
	return &types.WireError{Kind: d.str(), Message: d.str()}
}
