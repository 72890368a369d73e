// Package codecs implements the type-descriptor parser and the codec
// factory (§4.D) together with the value codec library (§4.E). A Codec is
// derived once per server-assigned type id and cached; the same type id
// always yields the same codec identity, so the factory is idempotent.
package codecs

import (
	"github.com/google/uuid"
	"github.com/nsidnev/edgedb-go/buf"
	"github.com/nsidnev/edgedb-go/edgeerr"
)

// TypeID is the server-assigned 16-byte identifier used as the codec cache
// key. Two codecs sharing a TypeID are behaviourally identical.
type TypeID = uuid.UUID

// Codec encodes argument values and decodes result bytes for one type.
// Implementations are deeply immutable once constructed, so a Codec may be
// shared across goroutines without locking.
type Codec interface {
	// ID returns the server-assigned type id this codec was built for.
	ID() TypeID
	// Encode appends the wire representation of value to w. It returns an
	// InvalidArgumentError if value is outside the codec's domain. A
	// composite codec may already have written part of its body to w when
	// an inner element fails, so the caller discards w entirely on error.
	Encode(w *buf.Writer, value any) error
	// Decode consumes exactly one value's worth of bytes from r.
	Decode(r *buf.Reader) (any, error)
}

// ObjectFlag bits tag per-element Shape/Object fields.
type ObjectFlag uint8

const (
	FlagImplicit ObjectFlag = 1 << 0
	FlagLinkProp ObjectFlag = 1 << 1
	FlagLink     ObjectFlag = 1 << 2
)

// PrimitiveKind enumerates the scalar base types the factory can resolve a
// base-scalar descriptor to.
type PrimitiveKind int

const (
	KindBool PrimitiveKind = iota
	KindInt16
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindDecimal
	KindBigInt
	KindString
	KindBytes
	KindUUID
	KindDateTime
	KindLocalDate
	KindLocalTime
	KindLocalDateTime
	KindDuration
	KindJSON
)

// wellKnownBaseScalars maps the hard-coded base-scalar type ids the server
// may reference in a descriptor blob to their primitive kind. Unknown base
// scalar ids are a fatal protocol error per §4.D.
var wellKnownBaseScalars = map[TypeID]PrimitiveKind{
	baseID(0x01): KindUUID,
	baseID(0x02): KindString,
	baseID(0x03): KindBytes,
	baseID(0x04): KindInt16,
	baseID(0x05): KindInt32,
	baseID(0x06): KindInt64,
	baseID(0x07): KindFloat32,
	baseID(0x08): KindFloat64,
	baseID(0x09): KindDecimal,
	baseID(0x0A): KindBool,
	baseID(0x0B): KindDateTime,
	baseID(0x0C): KindLocalDateTime,
	baseID(0x0D): KindLocalDate,
	baseID(0x0E): KindLocalTime,
	baseID(0x0F): KindDuration,
	baseID(0x10): KindJSON,
	baseID(0x11): KindBigInt,
}

// baseID builds one of the protocol's well-known low-numbered scalar ids:
// 00000000-0000-0000-0000-0000000000xx (only the last byte is set).
func baseID(n byte) TypeID {
	var id TypeID
	id[15] = n
	return id
}

// ScalarCodec returns the codec for a well-known base-scalar type id, or an
// error if the id is not recognised.
func ScalarCodec(id TypeID) (Codec, error) {
	kind, ok := wellKnownBaseScalars[id]
	if !ok {
		return nil, edgeerr.New(edgeerr.ProtocolError, "unknown base scalar type id %s", id)
	}
	return newScalarCodec(id, kind), nil
}

// fail is a small helper for building InvalidArgumentError from Encode.
func fail(format string, args ...any) error {
	return edgeerr.New(edgeerr.InvalidArgumentError, format, args...)
}
