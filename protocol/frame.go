package protocol

import (
	"fmt"
	"io"

	"github.com/nsidnev/edgedb-go/edgeerr"
)

// LogSink receives log_message frames the framer consumes transparently;
// callers of Framer never see mtype 0x4C.
type LogSink interface {
	LogMessage(severity byte, code uint32, text string)
}

// discardSink is used when the caller does not care about server log chatter.
type discardSink struct{}

func (discardSink) LogMessage(byte, uint32, string) {}

// Framer splits a streaming byte source into (mtype, payload) frames per
// §4.B: a 1-byte type, a 4-byte length covering itself but not the type
// byte, and the payload. It grows an internal read buffer on demand,
// reading the underlying source in 64 KiB chunks, and rejects any frame
// whose declared length exceeds MaxFrameLen (64 MiB).
type Framer struct {
	r    io.Reader
	buf  []byte // unread bytes, grown as needed
	sink LogSink
}

// NewFramer wraps r. If sink is nil, log messages are silently discarded.
func NewFramer(r io.Reader, sink LogSink) *Framer {
	if sink == nil {
		sink = discardSink{}
	}
	return &Framer{r: r, sink: sink}
}

// Next reads and returns the next non-log frame, transparently consuming
// and dispatching any log_message frames first.
func (f *Framer) Next() (mtype byte, payload []byte, err error) {
	for {
		mtype, payload, err = f.next()
		if err != nil {
			return 0, nil, err
		}
		if mtype != MTypeLogMessage {
			return mtype, payload, nil
		}
		sev, code, text, derr := decodeLogMessage(payload)
		if derr != nil {
			return 0, nil, edgeerr.Wrap(edgeerr.ProtocolError, derr, "malformed log_message")
		}
		f.sink.LogMessage(sev, code, text)
	}
}

func (f *Framer) next() (byte, []byte, error) {
	if err := f.ensure(5); err != nil {
		return 0, nil, err
	}
	mtype := f.buf[0]
	length := beUint32(f.buf[1:5])
	if length < 4 {
		return 0, nil, edgeerr.New(edgeerr.ProtocolError, "frame length %d shorter than its own prefix", length)
	}
	if length > MaxFrameLen {
		return 0, nil, edgeerr.New(edgeerr.ProtocolError, "frame length %d exceeds %d byte cap", length, MaxFrameLen)
	}
	total := 1 + int(length)
	if err := f.ensure(total); err != nil {
		return 0, nil, err
	}
	payload := make([]byte, int(length)-4)
	copy(payload, f.buf[5:total])
	f.buf = f.buf[total:]
	return mtype, payload, nil
}

// ensure makes sure at least n bytes are available in f.buf, reading from
// the underlying source in 64 KiB chunks as needed.
func (f *Framer) ensure(n int) error {
	for len(f.buf) < n {
		chunk := make([]byte, 64*1024)
		read, err := f.r.Read(chunk)
		if read > 0 {
			f.buf = append(f.buf, chunk[:read]...)
		}
		if err != nil {
			if err == io.EOF && len(f.buf) >= n {
				break
			}
			return fmt.Errorf("protocol: read frame: %w", err)
		}
	}
	return nil
}

func beUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func decodeLogMessage(payload []byte) (severity byte, code uint32, text string, err error) {
	if len(payload) < 5 {
		return 0, 0, "", fmt.Errorf("log_message payload too short")
	}
	severity = payload[0]
	code = beUint32(payload[1:5])
	// The remainder is headers then a length-prefixed message string; callers
	// of the sink only need the human-readable text, so take the shortest
	// path: the message string immediately follows a u16 header count of 0
	// in the common case, otherwise scan past headers.
	rest := payload[5:]
	if len(rest) < 2 {
		return severity, code, "", nil
	}
	nHeaders := int(rest[0])<<8 | int(rest[1])
	rest = rest[2:]
	for i := 0; i < nHeaders; i++ {
		if len(rest) < 6 {
			return severity, code, "", fmt.Errorf("log_message: truncated header")
		}
		hlen := beUint32(rest[2:6])
		rest = rest[6+int(hlen):]
	}
	if len(rest) < 4 {
		return severity, code, "", nil
	}
	mlen := beUint32(rest[:4])
	rest = rest[4:]
	if uint32(len(rest)) < mlen {
		return severity, code, "", fmt.Errorf("log_message: truncated message")
	}
	return severity, code, string(rest[:mlen]), nil
}

// Coalesce concatenates several already-encoded frames into one buffer so a
// caller can issue them as a single network write, preserving ordering
// within a multi-frame request (e.g. prepare + flush).
func Coalesce(frames ...[]byte) []byte {
	n := 0
	for _, f := range frames {
		n += len(f)
	}
	out := make([]byte, 0, n)
	for _, f := range frames {
		out = append(out, f...)
	}
	return out
}
