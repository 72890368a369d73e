package codecs

import (
	"github.com/nsidnev/edgedb-go/buf"
	"github.com/nsidnev/edgedb-go/edgeerr"
)

// arrayCodec handles both Array and Set: both share the body
// `ndims:i32, reserved:i32, dim_length:i32, lower:i32, elements…`
// (no outer length prefix — that's added by the caller's argument
// envelope, not by this codec); Set additionally tolerates multiple
// dimensions being absent (it is always treated as one flat dimension
// by this driver, per §4.E).
type arrayCodec struct {
	id    TypeID
	inner Codec
	isSet bool
}

func newArrayCodec(id TypeID, inner Codec, isSet bool) *arrayCodec {
	return &arrayCodec{id: id, inner: inner, isSet: isSet}
}

func (c *arrayCodec) ID() TypeID { return c.id }

func (c *arrayCodec) Encode(w *buf.Writer, value any) error {
	elems, ok := toSlice(value)
	if !ok {
		return fail("value can not be encoded as an array/set: %#v", value)
	}
	if len(elems) == 0 {
		w.Int32(0) // ndims
	} else {
		w.Int32(1) // ndims
	}
	w.Int32(0) // reserved
	w.Int32(int32(len(elems)))
	w.Int32(1) // lower bound
	for _, e := range elems {
		if e == nil {
			w.Int32(-1)
			continue
		}
		inner := buf.NewWriter(8)
		if err := c.inner.Encode(inner, e); err != nil {
			return err
		}
		w.Int32(int32(inner.Len()))
		w.RawBytes(inner.Bytes())
	}
	return nil
}

func (c *arrayCodec) Decode(r *buf.Reader) (any, error) {
	ndims, err := r.Int32()
	if err != nil {
		return nil, err
	}
	if _, err := r.Int32(); err != nil { // reserved
		return nil, err
	}
	if ndims == 0 {
		return []any{}, nil
	}
	dimLen, err := r.Int32()
	if err != nil {
		return nil, err
	}
	if _, err := r.Int32(); err != nil { // lower bound
		return nil, err
	}
	out := make([]any, dimLen)
	for i := range out {
		elen, err := r.Int32()
		if err != nil {
			return nil, err
		}
		if elen < 0 {
			out[i] = nil
			continue
		}
		elemBytes, err := r.RawBytes(int(elen))
		if err != nil {
			return nil, err
		}
		v, err := c.inner.Decode(buf.NewReader(elemBytes))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func toSlice(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case nil:
		return nil, true
	default:
		return nil, false
	}
}

// tupleCodec handles unnamed Tuple([inner...]).
type tupleCodec struct {
	id     TypeID
	inners []Codec
}

func (c *tupleCodec) ID() TypeID { return c.id }

func (c *tupleCodec) Encode(w *buf.Writer, value any) error {
	elems, ok := value.([]any)
	if !ok || len(elems) != len(c.inners) {
		return fail("value can not be encoded as a tuple of %d elements: %#v", len(c.inners), value)
	}
	w.Int32(int32(len(elems)))
	for i, e := range elems {
		w.Int32(0) // reserved
		inner := buf.NewWriter(8)
		if err := c.inners[i].Encode(inner, e); err != nil {
			return err
		}
		w.Int32(int32(inner.Len()))
		w.RawBytes(inner.Bytes())
	}
	return nil
}

func (c *tupleCodec) Decode(r *buf.Reader) (any, error) {
	n, err := r.Int32()
	if err != nil {
		return nil, err
	}
	if int(n) != len(c.inners) {
		return nil, edgeerr.New(edgeerr.ProtocolError, "tuple arity mismatch: wire has %d, codec expects %d", n, len(c.inners))
	}
	out := make([]any, n)
	for i := range out {
		if _, err := r.Int32(); err != nil { // reserved
			return nil, err
		}
		elen, err := r.Int32()
		if err != nil {
			return nil, err
		}
		if elen < 0 {
			out[i] = nil
			continue
		}
		eb, err := r.RawBytes(int(elen))
		if err != nil {
			return nil, err
		}
		v, err := c.inners[i].Decode(buf.NewReader(eb))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// namedTupleCodec handles NamedTuple([(name, inner)...]).
type namedTupleCodec struct {
	id     TypeID
	names  []string
	inners []Codec
}

func (c *namedTupleCodec) ID() TypeID { return c.id }

func (c *namedTupleCodec) Encode(w *buf.Writer, value any) error {
	nt, ok := value.(*NamedTuple)
	if !ok {
		return fail("value can not be encoded as a named tuple: %#v", value)
	}
	w.Int32(int32(len(c.inners)))
	for i, name := range c.names {
		v, ok := nt.Get(name)
		if !ok {
			return fail("named tuple missing field %q", name)
		}
		w.Int32(0)
		inner := buf.NewWriter(8)
		if err := c.inners[i].Encode(inner, v); err != nil {
			return err
		}
		w.Int32(int32(inner.Len()))
		w.RawBytes(inner.Bytes())
	}
	return nil
}

func (c *namedTupleCodec) Decode(r *buf.Reader) (any, error) {
	n, err := r.Int32()
	if err != nil {
		return nil, err
	}
	nt := &NamedTuple{Names: make([]string, n), Values: make([]any, n)}
	for i := 0; i < int(n); i++ {
		if _, err := r.Int32(); err != nil {
			return nil, err
		}
		elen, err := r.Int32()
		if err != nil {
			return nil, err
		}
		eb, err := r.RawBytes(int(elen))
		if err != nil {
			return nil, err
		}
		v, err := c.inners[i].Decode(buf.NewReader(eb))
		if err != nil {
			return nil, err
		}
		nt.Names[i] = c.names[i]
		nt.Values[i] = v
	}
	return nt, nil
}

// objectCodec handles Object/Shape decoding. Encoding is rejected: objects
// are server-only per §4.E.
type objectCodec struct {
	id     TypeID
	names  []string
	flags  []ObjectFlag
	inners []Codec
}

func (c *objectCodec) ID() TypeID { return c.id }

func (c *objectCodec) Encode(w *buf.Writer, value any) error {
	return fail("objects can not be encoded as arguments (server-only type)")
}

func (c *objectCodec) Decode(r *buf.Reader) (any, error) {
	n, err := r.Int32()
	if err != nil {
		return nil, err
	}
	if int(n) != len(c.inners) {
		return nil, edgeerr.New(edgeerr.ProtocolError, "object field count mismatch: wire has %d, codec expects %d", n, len(c.inners))
	}
	obj := &Object{Fields: make([]ObjectField, n)}
	for i := 0; i < int(n); i++ {
		if _, err := r.Int32(); err != nil { // reserved
			return nil, err
		}
		elen, err := r.Int32()
		if err != nil {
			return nil, err
		}
		var v any
		if elen >= 0 {
			eb, err := r.RawBytes(int(elen))
			if err != nil {
				return nil, err
			}
			v, err = c.inners[i].Decode(buf.NewReader(eb))
			if err != nil {
				return nil, err
			}
		}
		flag := c.flags[i]
		obj.Fields[i] = ObjectField{
			Name:     c.names[i],
			Value:    v,
			Implicit: flag&FlagImplicit != 0,
			LinkProp: flag&FlagLinkProp != 0,
			Link:     flag&FlagLink != 0,
		}
	}
	return obj, nil
}

// enumCodec decodes to the matching label string; the wire representation
// of an enum value is just its std::str encoding.
type enumCodec struct {
	id     TypeID
	labels []string
}

func (c *enumCodec) ID() TypeID { return c.id }

func (c *enumCodec) Encode(w *buf.Writer, value any) error {
	s, ok := value.(string)
	if !ok {
		return fail("value can not be encoded as an enum label: %#v", value)
	}
	for _, l := range c.labels {
		if l == s {
			w.RawBytes([]byte(s))
			return nil
		}
	}
	return fail("%q is not a valid label for this enum", s)
}

func (c *enumCodec) Decode(r *buf.Reader) (any, error) {
	b, err := r.RawBytes(r.Len())
	return string(b), err
}

// rangeCodec handles Range(inner).
type rangeCodec struct {
	id    TypeID
	inner Codec
}

const (
	rangeEmpty    uint8 = 1 << 0
	rangeIncLower uint8 = 1 << 1
	rangeIncUpper uint8 = 1 << 2
	rangeNoLower  uint8 = 1 << 3
	rangeNoUpper  uint8 = 1 << 4
)

func (c *rangeCodec) ID() TypeID { return c.id }

func (c *rangeCodec) Encode(w *buf.Writer, value any) error {
	rv, ok := value.(*RangeValue)
	if !ok {
		return fail("value can not be encoded as a range: %#v", value)
	}
	if rv.Empty {
		w.Uint8(rangeEmpty)
		return nil
	}
	flags := uint8(0)
	if rv.IncLower {
		flags |= rangeIncLower
	}
	if rv.IncUpper {
		flags |= rangeIncUpper
	}
	if rv.Lower == nil {
		flags |= rangeNoLower
	}
	if rv.Upper == nil {
		flags |= rangeNoUpper
	}
	w.Uint8(flags)
	if rv.Lower != nil {
		inner := buf.NewWriter(8)
		if err := c.inner.Encode(inner, rv.Lower); err != nil {
			return err
		}
		w.Int32(int32(inner.Len()))
		w.RawBytes(inner.Bytes())
	}
	if rv.Upper != nil {
		inner := buf.NewWriter(8)
		if err := c.inner.Encode(inner, rv.Upper); err != nil {
			return err
		}
		w.Int32(int32(inner.Len()))
		w.RawBytes(inner.Bytes())
	}
	return nil
}

func (c *rangeCodec) Decode(r *buf.Reader) (any, error) {
	flags, err := r.Uint8()
	if err != nil {
		return nil, err
	}
	if flags&rangeEmpty != 0 {
		return &RangeValue{Empty: true}, nil
	}
	rv := &RangeValue{
		IncLower: flags&rangeIncLower != 0,
		IncUpper: flags&rangeIncUpper != 0,
	}
	if flags&rangeNoLower == 0 {
		n, err := r.Int32()
		if err != nil {
			return nil, err
		}
		b, err := r.RawBytes(int(n))
		if err != nil {
			return nil, err
		}
		v, err := c.inner.Decode(buf.NewReader(b))
		if err != nil {
			return nil, err
		}
		rv.Lower = v
	}
	if flags&rangeNoUpper == 0 {
		n, err := r.Int32()
		if err != nil {
			return nil, err
		}
		b, err := r.RawBytes(int(n))
		if err != nil {
			return nil, err
		}
		v, err := c.inner.Decode(buf.NewReader(b))
		if err != nil {
			return nil, err
		}
		rv.Upper = v
	}
	return rv, nil
}
