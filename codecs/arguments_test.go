package codecs

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsidnev/edgedb-go/buf"
)

func TestEncodeArguments_RoundTrip(t *testing.T) {
	tc := &tupleCodec{
		id: uuid.New(),
		inners: []Codec{
			newScalarCodec(uuid.New(), KindInt32),
			newScalarCodec(uuid.New(), KindString),
		},
	}

	b, err := EncodeArguments(tc, []any{int32(1), "two"})
	require.NoError(t, err)

	// The envelope has no outer length prefix, the same as a tuple's own
	// Encode body — decode it with tupleCodec.Decode directly against the
	// raw bytes to confirm the body shape matches.
	got, err := tc.Decode(buf.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, []any{int32(1), "two"}, got)
}

func TestEncodeArguments_EmptyTuple(t *testing.T) {
	tc := &tupleCodec{id: uuid.New(), inners: nil}
	b, err := EncodeArguments(tc, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0}, b)
}

func TestEncodeArguments_NilArgument(t *testing.T) {
	tc := &tupleCodec{id: uuid.New(), inners: []Codec{newScalarCodec(uuid.New(), KindString)}}
	b, err := EncodeArguments(tc, []any{nil})
	require.NoError(t, err)

	got, err := tc.Decode(buf.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, []any{nil}, got)
}

func TestEncodeArguments_ArityMismatch(t *testing.T) {
	tc := &tupleCodec{id: uuid.New(), inners: []Codec{newScalarCodec(uuid.New(), KindInt32)}}
	_, err := EncodeArguments(tc, []any{int32(1), int32(2)})
	assert.Error(t, err)
}

func TestEncodeArguments_RejectsNonTupleInputCodec(t *testing.T) {
	sc := newScalarCodec(uuid.New(), KindInt32)
	_, err := EncodeArguments(sc, []any{int32(1)})
	assert.Error(t, err)
}
