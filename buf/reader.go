// Package buf implements the primitive wire codecs the rest of the driver
// builds on: fixed-width big-endian integers, length-prefixed bytes and
// strings, and counted sequences. Decoders are total functions over a byte
// slice; they never read past the slice and advance an internal cursor so
// callers can chain decodes without re-slicing by hand.
package buf

import (
	"encoding/binary"
	"fmt"
)

// Reader decodes primitives from a single payload slice, advancing an
// internal cursor. It allocates only for the values it copies out of the
// shared payload (Bytes, RawBytes, String) and for the map Headers returns.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps buf for sequential decoding starting at offset 0.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int { return len(r.buf) - r.pos }

// Remainder returns every unread byte without advancing the cursor.
func (r *Reader) Remainder() []byte { return r.buf[r.pos:] }

func (r *Reader) need(n int) error {
	if r.Len() < n {
		return fmt.Errorf("buf: need %d bytes, have %d", n, r.Len())
	}
	return nil
}

// Uint8 decodes one unsigned byte.
func (r *Reader) Uint8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

// Int16 decodes a big-endian signed 16-bit integer.
func (r *Reader) Int16() (int16, error) {
	v, err := r.Uint16()
	return int16(v), err
}

// Uint16 decodes a big-endian unsigned 16-bit integer.
func (r *Reader) Uint16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

// Int32 decodes a big-endian signed 32-bit integer.
func (r *Reader) Int32() (int32, error) {
	v, err := r.Uint32()
	return int32(v), err
}

// Uint32 decodes a big-endian unsigned 32-bit integer.
func (r *Reader) Uint32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

// Int64 decodes a big-endian signed 64-bit integer.
func (r *Reader) Int64() (int64, error) {
	v, err := r.Uint64()
	return int64(v), err
}

// Uint64 decodes a big-endian unsigned 64-bit integer.
func (r *Reader) Uint64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v, nil
}

// Bytes decodes a u32-length-prefixed byte string, copying out of the
// shared buffer so the caller may retain it past the buffer's lifetime.
func (r *Reader) Bytes() ([]byte, error) {
	n, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	if err := r.need(int(n)); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, r.buf[r.pos:r.pos+int(n)])
	r.pos += int(n)
	return out, nil
}

// RawBytes decodes n raw octets with no length prefix.
func (r *Reader) RawBytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, r.buf[r.pos:r.pos+n])
	r.pos += n
	return out, nil
}

// String decodes a u32-length-prefixed UTF-8 string.
func (r *Reader) String() (string, error) {
	b, err := r.Bytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Header decodes one (code:u16, value:bytes) header entry.
func (r *Reader) Header() (code uint16, value []byte, err error) {
	code, err = r.Uint16()
	if err != nil {
		return 0, nil, err
	}
	value, err = r.Bytes()
	if err != nil {
		return 0, nil, err
	}
	return code, value, nil
}

// Headers decodes a u16-counted sequence of header entries into a map,
// matching the wire's "negotiated headers" framing.
func (r *Reader) Headers() (map[uint16][]byte, error) {
	n, err := r.Uint16()
	if err != nil {
		return nil, err
	}
	out := make(map[uint16][]byte, n)
	for i := 0; i < int(n); i++ {
		code, value, err := r.Header()
		if err != nil {
			return nil, err
		}
		out[code] = value
	}
	return out, nil
}

// Done reports whether every byte in the payload has been consumed. The
// type descriptor parser in codecs uses it as its loop condition; the
// message decoders in protocol do not call it, so they do not reject
// trailing payload bytes.
func (r *Reader) Done() bool { return r.Len() == 0 }
