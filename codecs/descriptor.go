package codecs

import (
	"github.com/google/uuid"

	"github.com/nsidnev/edgedb-go/buf"
	"github.com/nsidnev/edgedb-go/edgeerr"
)

// Descriptor tags, as sent in the type descriptor blob that follows a
// Prepare/ParseComplete (or DescribeStatement) reply.
const (
	descSet         byte = 0x00
	descShape       byte = 0x01
	descBaseScalar  byte = 0x02
	descScalar      byte = 0x03
	descTuple       byte = 0x04
	descNamedTuple  byte = 0x05
	descArray       byte = 0x06
	descEnum        byte = 0x07
	descInputShape  byte = 0x08
	descRange       byte = 0x09
)

// Parse walks a full type descriptor blob and returns the Codec for the
// last descriptor in it — the server always places the root type last, with
// every descriptor it depends on at a lower position (§4.D). Intermediate
// codecs are registered into cache as they are built so later descriptors
// in the same blob, or a later blob, can reference them by position or id
// without rebuilding.
func Parse(data []byte, cache *Cache) (Codec, error) {
	r := buf.NewReader(data)
	var built []Codec

	resolve := func(pos uint16) (Codec, error) {
		if int(pos) >= len(built) {
			return nil, edgeerr.New(edgeerr.ProtocolError, "type descriptor references position %d before it is defined", pos)
		}
		return built[pos], nil
	}

	for !r.Done() {
		tag, err := r.Uint8()
		if err != nil {
			return nil, err
		}
		idBytes, err := r.RawBytes(16)
		if err != nil {
			return nil, err
		}
		id, _ := uuid.FromBytes(idBytes)

		if c, ok := cache.Get(id); ok {
			built = append(built, c)
			if err := skipDescriptor(r, tag); err != nil {
				return nil, err
			}
			continue
		}

		c, err := parseOne(r, tag, id, resolve)
		if err != nil {
			return nil, err
		}
		cache.Put(id, c)
		built = append(built, c)
	}

	if len(built) == 0 {
		return nil, edgeerr.New(edgeerr.ProtocolError, "empty type descriptor blob")
	}
	return built[len(built)-1], nil
}

func parseOne(r *buf.Reader, tag byte, id TypeID, resolve func(uint16) (Codec, error)) (Codec, error) {
	switch tag {
	case descBaseScalar:
		return ScalarCodec(id)

	case descScalar:
		pos, err := r.Uint16()
		if err != nil {
			return nil, err
		}
		return resolve(pos)

	case descSet:
		pos, err := r.Uint16()
		if err != nil {
			return nil, err
		}
		inner, err := resolve(pos)
		if err != nil {
			return nil, err
		}
		return newArrayCodec(id, inner, true), nil

	case descArray:
		pos, err := r.Uint16()
		if err != nil {
			return nil, err
		}
		inner, err := resolve(pos)
		if err != nil {
			return nil, err
		}
		ndims, err := r.Uint16()
		if err != nil {
			return nil, err
		}
		for i := 0; i < int(ndims); i++ {
			if _, err := r.Int32(); err != nil { // dimension length, usually -1
				return nil, err
			}
		}
		return newArrayCodec(id, inner, false), nil

	case descTuple:
		n, err := r.Uint16()
		if err != nil {
			return nil, err
		}
		inners := make([]Codec, n)
		for i := range inners {
			pos, err := r.Uint16()
			if err != nil {
				return nil, err
			}
			inners[i], err = resolve(pos)
			if err != nil {
				return nil, err
			}
		}
		return &tupleCodec{id: id, inners: inners}, nil

	case descNamedTuple:
		n, err := r.Uint16()
		if err != nil {
			return nil, err
		}
		names := make([]string, n)
		inners := make([]Codec, n)
		for i := range names {
			name, err := r.String()
			if err != nil {
				return nil, err
			}
			pos, err := r.Uint16()
			if err != nil {
				return nil, err
			}
			inner, err := resolve(pos)
			if err != nil {
				return nil, err
			}
			names[i] = name
			inners[i] = inner
		}
		return &namedTupleCodec{id: id, names: names, inners: inners}, nil

	case descShape, descInputShape:
		n, err := r.Uint16()
		if err != nil {
			return nil, err
		}
		names := make([]string, n)
		flags := make([]ObjectFlag, n)
		inners := make([]Codec, n)
		for i := range names {
			flagByte, err := r.Uint8()
			if err != nil {
				return nil, err
			}
			if tag == descShape {
				if _, err := r.Uint8(); err != nil { // cardinality, unused
					return nil, err
				}
			}
			name, err := r.String()
			if err != nil {
				return nil, err
			}
			pos, err := r.Uint16()
			if err != nil {
				return nil, err
			}
			inner, err := resolve(pos)
			if err != nil {
				return nil, err
			}
			names[i] = name
			flags[i] = ObjectFlag(flagByte)
			inners[i] = inner
		}
		return &objectCodec{id: id, names: names, flags: flags, inners: inners}, nil

	case descEnum:
		n, err := r.Uint16()
		if err != nil {
			return nil, err
		}
		labels := make([]string, n)
		for i := range labels {
			s, err := r.String()
			if err != nil {
				return nil, err
			}
			labels[i] = s
		}
		return &enumCodec{id: id, labels: labels}, nil

	case descRange:
		pos, err := r.Uint16()
		if err != nil {
			return nil, err
		}
		inner, err := resolve(pos)
		if err != nil {
			return nil, err
		}
		return &rangeCodec{id: id, inner: inner}, nil

	default:
		return nil, edgeerr.New(edgeerr.ProtocolError, "unknown type descriptor tag 0x%02x", tag)
	}
}

// skipDescriptor advances r past a descriptor body whose codec is already
// cached, without materialising anything. It must stay in lockstep with
// parseOne's field layout for every tag.
func skipDescriptor(r *buf.Reader, tag byte) error {
	switch tag {
	case descBaseScalar:
		return nil
	case descScalar, descSet, descRange:
		_, err := r.Uint16()
		return err
	case descArray:
		if _, err := r.Uint16(); err != nil {
			return err
		}
		ndims, err := r.Uint16()
		if err != nil {
			return err
		}
		for i := 0; i < int(ndims); i++ {
			if _, err := r.Int32(); err != nil {
				return err
			}
		}
		return nil
	case descTuple:
		n, err := r.Uint16()
		if err != nil {
			return err
		}
		for i := 0; i < int(n); i++ {
			if _, err := r.Uint16(); err != nil {
				return err
			}
		}
		return nil
	case descNamedTuple:
		n, err := r.Uint16()
		if err != nil {
			return err
		}
		for i := 0; i < int(n); i++ {
			if _, err := r.String(); err != nil {
				return err
			}
			if _, err := r.Uint16(); err != nil {
				return err
			}
		}
		return nil
	case descShape, descInputShape:
		n, err := r.Uint16()
		if err != nil {
			return err
		}
		for i := 0; i < int(n); i++ {
			if _, err := r.Uint8(); err != nil {
				return err
			}
			if tag == descShape {
				if _, err := r.Uint8(); err != nil {
					return err
				}
			}
			if _, err := r.String(); err != nil {
				return err
			}
			if _, err := r.Uint16(); err != nil {
				return err
			}
		}
		return nil
	case descEnum:
		n, err := r.Uint16()
		if err != nil {
			return err
		}
		for i := 0; i < int(n); i++ {
			if _, err := r.String(); err != nil {
				return err
			}
		}
		return nil
	default:
		return edgeerr.New(edgeerr.ProtocolError, "unknown type descriptor tag 0x%02x", tag)
	}
}
