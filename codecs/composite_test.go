package codecs

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsidnev/edgedb-go/buf"
)

func TestArrayCodec_RoundTrip(t *testing.T) {
	inner := newScalarCodec(uuid.New(), KindInt32)
	c := newArrayCodec(uuid.New(), inner, false)

	w := buf.NewWriter(32)
	require.NoError(t, c.Encode(w, []any{int32(1), int32(2), int32(3)}))

	got, err := c.Decode(buf.NewReader(w.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, []any{int32(1), int32(2), int32(3)}, got)
}

func TestArrayCodec_EmptyArray_NDimsZero(t *testing.T) {
	inner := newScalarCodec(uuid.New(), KindInt32)
	c := newArrayCodec(uuid.New(), inner, false)

	w := buf.NewWriter(16)
	require.NoError(t, c.Encode(w, []any{}))

	r := buf.NewReader(w.Bytes())
	ndims, err := r.Int32()
	require.NoError(t, err)
	assert.EqualValues(t, 0, ndims, "empty array/set must be encoded with ndims=0")

	got, err := c.Decode(buf.NewReader(w.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, []any{}, got)
}

func TestArrayCodec_NilElement(t *testing.T) {
	inner := newScalarCodec(uuid.New(), KindString)
	c := newArrayCodec(uuid.New(), inner, false)

	w := buf.NewWriter(16)
	require.NoError(t, c.Encode(w, []any{"a", nil, "c"}))

	got, err := c.Decode(buf.NewReader(w.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, []any{"a", nil, "c"}, got)
}

func TestArrayCodec_SetVariant(t *testing.T) {
	inner := newScalarCodec(uuid.New(), KindBool)
	c := newArrayCodec(uuid.New(), inner, true)
	assert.True(t, c.isSet)

	w := buf.NewWriter(16)
	require.NoError(t, c.Encode(w, []any{true, false}))
	got, err := c.Decode(buf.NewReader(w.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, []any{true, false}, got)
}

func TestTupleCodec_RoundTrip(t *testing.T) {
	c := &tupleCodec{
		id: uuid.New(),
		inners: []Codec{
			newScalarCodec(uuid.New(), KindInt32),
			newScalarCodec(uuid.New(), KindString),
		},
	}

	w := buf.NewWriter(32)
	require.NoError(t, c.Encode(w, []any{int32(7), "seven"}))

	got, err := c.Decode(buf.NewReader(w.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, []any{int32(7), "seven"}, got)
}

func TestTupleCodec_ArityMismatchRejected(t *testing.T) {
	c := &tupleCodec{id: uuid.New(), inners: []Codec{newScalarCodec(uuid.New(), KindInt32)}}
	w := buf.NewWriter(16)
	err := c.Encode(w, []any{int32(1), int32(2)})
	assert.Error(t, err)
}

func TestNamedTupleCodec_RoundTrip(t *testing.T) {
	c := &namedTupleCodec{
		id:     uuid.New(),
		names:  []string{"x", "y"},
		inners: []Codec{newScalarCodec(uuid.New(), KindInt32), newScalarCodec(uuid.New(), KindInt32)},
	}

	nt := &NamedTuple{Names: []string{"x", "y"}, Values: []any{int32(1), int32(2)}}
	w := buf.NewWriter(32)
	require.NoError(t, c.Encode(w, nt))

	got, err := c.Decode(buf.NewReader(w.Bytes()))
	require.NoError(t, err)
	gotNT, ok := got.(*NamedTuple)
	require.True(t, ok)
	assert.Equal(t, []string{"x", "y"}, gotNT.Names)
	assert.Equal(t, []any{int32(1), int32(2)}, gotNT.Values)

	v, ok := gotNT.Get("y")
	require.True(t, ok)
	assert.Equal(t, int32(2), v)
}

func TestEnumCodec_RoundTrip(t *testing.T) {
	c := &enumCodec{id: uuid.New(), labels: []string{"red", "green", "blue"}}

	w := buf.NewWriter(16)
	require.NoError(t, c.Encode(w, "green"))

	got, err := c.Decode(buf.NewReader(w.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "green", got)
}

func TestEnumCodec_InvalidLabelRejected(t *testing.T) {
	c := &enumCodec{id: uuid.New(), labels: []string{"red", "green"}}
	w := buf.NewWriter(16)
	err := c.Encode(w, "purple")
	assert.Error(t, err)
}

func TestRangeCodec_Empty(t *testing.T) {
	c := &rangeCodec{id: uuid.New(), inner: newScalarCodec(uuid.New(), KindInt32)}
	w := buf.NewWriter(8)
	require.NoError(t, c.Encode(w, &RangeValue{Empty: true}))

	got, err := c.Decode(buf.NewReader(w.Bytes()))
	require.NoError(t, err)
	assert.True(t, got.(*RangeValue).Empty)
}

func TestRangeCodec_BoundedRoundTrip(t *testing.T) {
	c := &rangeCodec{id: uuid.New(), inner: newScalarCodec(uuid.New(), KindInt32)}
	rv := &RangeValue{Lower: int32(1), Upper: int32(10), IncLower: true, IncUpper: false}

	w := buf.NewWriter(32)
	require.NoError(t, c.Encode(w, rv))

	got, err := c.Decode(buf.NewReader(w.Bytes()))
	require.NoError(t, err)
	gotRV := got.(*RangeValue)
	assert.Equal(t, int32(1), gotRV.Lower)
	assert.Equal(t, int32(10), gotRV.Upper)
	assert.True(t, gotRV.IncLower)
	assert.False(t, gotRV.IncUpper)
}

func TestRangeCodec_UnboundedLower(t *testing.T) {
	c := &rangeCodec{id: uuid.New(), inner: newScalarCodec(uuid.New(), KindInt32)}
	rv := &RangeValue{Lower: nil, Upper: int32(5), IncUpper: true}

	w := buf.NewWriter(32)
	require.NoError(t, c.Encode(w, rv))

	got, err := c.Decode(buf.NewReader(w.Bytes()))
	require.NoError(t, err)
	gotRV := got.(*RangeValue)
	assert.Nil(t, gotRV.Lower)
	assert.Equal(t, int32(5), gotRV.Upper)
}

func TestObjectCodec_DecodeOnly(t *testing.T) {
	c := &objectCodec{
		id:     uuid.New(),
		names:  []string{"id", "name"},
		flags:  []ObjectFlag{FlagImplicit, 0},
		inners: []Codec{newScalarCodec(uuid.New(), KindInt32), newScalarCodec(uuid.New(), KindString)},
	}

	body := buf.NewWriter(32)
	body.Int32(2)
	body.Int32(0)
	idVal := buf.NewWriter(4)
	idVal.Int32(42)
	body.Int32(int32(idVal.Len()))
	body.RawBytes(idVal.Bytes())
	body.Int32(0)
	nameVal := buf.NewWriter(8)
	nameVal.RawBytes([]byte("alice"))
	body.Int32(int32(nameVal.Len()))
	body.RawBytes(nameVal.Bytes())

	got, err := c.Decode(buf.NewReader(body.Bytes()))
	require.NoError(t, err)
	obj := got.(*Object)
	require.Len(t, obj.Fields, 2)
	v, ok := obj.Get("name")
	require.True(t, ok)
	assert.Equal(t, "alice", v)
	assert.True(t, obj.Fields[0].Implicit)
}

func TestObjectCodec_EncodeRejected(t *testing.T) {
	c := &objectCodec{id: uuid.New()}
	w := buf.NewWriter(8)
	err := c.Encode(w, &Object{})
	assert.Error(t, err)
}
