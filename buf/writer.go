package buf

import "encoding/binary"

// Writer accumulates an encoded payload. It is the encode-side mirror of
// Reader; every method appends to an internal byte slice that grows as
// needed, the same append-only style the teacher's wire writer uses.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer with cap bytes pre-allocated.
func NewWriter(cap int) *Writer {
	return &Writer{buf: make([]byte, 0, cap)}
}

// Bytes returns the accumulated payload.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// Uint8 appends one byte.
func (w *Writer) Uint8(v uint8) { w.buf = append(w.buf, v) }

// Int16 appends a big-endian signed 16-bit integer.
func (w *Writer) Int16(v int16) { w.Uint16(uint16(v)) }

// Uint16 appends a big-endian unsigned 16-bit integer.
func (w *Writer) Uint16(v uint16) { w.buf = binary.BigEndian.AppendUint16(w.buf, v) }

// Int32 appends a big-endian signed 32-bit integer.
func (w *Writer) Int32(v int32) { w.Uint32(uint32(v)) }

// Uint32 appends a big-endian unsigned 32-bit integer.
func (w *Writer) Uint32(v uint32) { w.buf = binary.BigEndian.AppendUint32(w.buf, v) }

// Int64 appends a big-endian signed 64-bit integer.
func (w *Writer) Int64(v int64) { w.Uint64(uint64(v)) }

// Uint64 appends a big-endian unsigned 64-bit integer.
func (w *Writer) Uint64(v uint64) { w.buf = binary.BigEndian.AppendUint64(w.buf, v) }

// WriteBytes appends a u32-length-prefixed byte string.
func (w *Writer) WriteBytes(b []byte) {
	w.Uint32(uint32(len(b)))
	w.buf = append(w.buf, b...)
}

// RawBytes appends raw octets with no length prefix.
func (w *Writer) RawBytes(b []byte) { w.buf = append(w.buf, b...) }

// WriteString appends a u32-length-prefixed UTF-8 string.
func (w *Writer) WriteString(s string) { w.WriteBytes([]byte(s)) }

// Header appends one (code:u16, value:bytes) header entry.
func (w *Writer) Header(code uint16, value []byte) {
	w.Uint16(code)
	w.WriteBytes(value)
}

// Headers appends a u16-counted sequence of header entries. The order of
// iteration is deterministic (sorted by code) so two calls with the same
// map produce byte-identical output.
func (w *Writer) Headers(headers map[uint16][]byte) {
	codes := make([]uint16, 0, len(headers))
	for c := range headers {
		codes = append(codes, c)
	}
	for i := 1; i < len(codes); i++ {
		for j := i; j > 0 && codes[j-1] > codes[j]; j-- {
			codes[j-1], codes[j] = codes[j], codes[j-1]
		}
	}
	w.Uint16(uint16(len(codes)))
	for _, c := range codes {
		w.Header(c, headers[c])
	}
}
