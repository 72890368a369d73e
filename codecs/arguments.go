package codecs

import "github.com/nsidnev/edgedb-go/buf"

// EncodeArguments builds the positional-argument envelope a query's input
// codec describes: `i32 element_count; for each: i32 reserved=0; i32 len;
// bytes value`. The input codec for a parameterised statement is always a
// Tuple of its parameters (even a zero-parameter statement has an
// empty-tuple input codec); this is the same body tupleCodec.Encode writes,
// reproduced here directly since args arrive as a plain []any rather than
// the *tupleCodec already knowing how to address each inner codec.
func EncodeArguments(input Codec, args []any) ([]byte, error) {
	tc, ok := input.(*tupleCodec)
	if !ok {
		return nil, fail("input codec for query arguments must be a tuple, got %T", input)
	}
	if len(args) != len(tc.inners) {
		return nil, fail("statement expects %d arguments, got %d", len(tc.inners), len(args))
	}

	w := buf.NewWriter(8 * len(args))
	w.Int32(int32(len(args)))
	for i, a := range args {
		w.Int32(0) // reserved
		if a == nil {
			w.Int32(-1)
			continue
		}
		inner := buf.NewWriter(8)
		if err := tc.inners[i].Encode(inner, a); err != nil {
			return nil, err
		}
		w.Int32(int32(inner.Len()))
		w.RawBytes(inner.Bytes())
	}
	return w.Bytes(), nil
}
