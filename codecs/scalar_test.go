package codecs

import (
	"math/big"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsidnev/edgedb-go/buf"
)

func roundTrip(t *testing.T, c Codec, value any) any {
	t.Helper()
	w := buf.NewWriter(32)
	require.NoError(t, c.Encode(w, value))
	got, err := c.Decode(buf.NewReader(w.Bytes()))
	require.NoError(t, err)
	return got
}

func TestScalarCodec_RoundTrip(t *testing.T) {
	id := uuid.New()
	testUUID := uuid.New()

	cases := []struct {
		name  string
		kind  PrimitiveKind
		value any
		want  any
	}{
		{"bool true", KindBool, true, true},
		{"bool false", KindBool, false, false},
		{"int16", KindInt16, int32(-1234), int16(-1234)},
		{"int32", KindInt32, int32(123456), int32(123456)},
		{"int64", KindInt64, int64(-9_000_000_000), int64(-9_000_000_000)},
		{"float32", KindFloat32, float32(1.5), float32(1.5)},
		{"float64", KindFloat64, float64(3.25), float64(3.25)},
		{"string", KindString, "hello world", "hello world"},
		{"bytes", KindBytes, []byte{1, 2, 3}, []byte{1, 2, 3}},
		{"uuid", KindUUID, testUUID, testUUID},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newScalarCodec(id, tc.kind)
			got := roundTrip(t, c, tc.value)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestScalarCodec_Decimal_RoundTrip(t *testing.T) {
	c := newScalarCodec(uuid.New(), KindDecimal)
	d := decimal.NewFromFloat(12.34)
	got := roundTrip(t, c, d)
	gotDec, ok := got.(decimal.Decimal)
	require.True(t, ok)
	assert.True(t, d.Equal(gotDec), "want %s, got %s", d, gotDec)
}

func TestScalarCodec_Decimal_LeadingZeroFraction(t *testing.T) {
	c := newScalarCodec(uuid.New(), KindDecimal)
	d := decimal.NewFromFloat(0.0007)
	got := roundTrip(t, c, d)
	gotDec := got.(decimal.Decimal)
	assert.True(t, d.Equal(gotDec), "want %s, got %s", d, gotDec)
}

func TestScalarCodec_BigInt_RoundTrip(t *testing.T) {
	c := newScalarCodec(uuid.New(), KindBigInt)
	v := big.NewInt(0)
	v.SetString("-123456789012345678901234567890", 10)
	got := roundTrip(t, c, v)
	gotBig := got.(*big.Int)
	assert.Equal(t, v.String(), gotBig.String())
}

func TestScalarCodec_LocalDate_RoundTrip(t *testing.T) {
	c := newScalarCodec(uuid.New(), KindLocalDate)
	d := LocalDate{Year: 2026, Month: 8, Day: 3}
	got := roundTrip(t, c, d)
	assert.Equal(t, d, got)
}

func TestScalarCodec_LocalDateTime_RoundTrip(t *testing.T) {
	c := newScalarCodec(uuid.New(), KindLocalDateTime)
	dt := LocalDateTime{
		Date: LocalDate{Year: 1999, Month: 12, Day: 31},
		Time: LocalTime{MicrosecondsSinceMidnight: 86399_000_000},
	}
	got := roundTrip(t, c, dt)
	assert.Equal(t, dt, got)
}

func TestScalarCodec_Duration_RoundTrip(t *testing.T) {
	c := newScalarCodec(uuid.New(), KindDuration)
	d := Duration{Microseconds: -4242}
	got := roundTrip(t, c, d)
	assert.Equal(t, d, got)
}

func TestScalarCodec_WrongTypeRejected(t *testing.T) {
	c := newScalarCodec(uuid.New(), KindInt32)
	w := buf.NewWriter(8)
	err := c.Encode(w, "not an int")
	assert.Error(t, err)
}

func TestScalarCodec_UnknownBaseScalar(t *testing.T) {
	_, err := ScalarCodec(uuid.New())
	assert.Error(t, err)
}

func TestScalarCodec_WellKnownBaseScalarResolves(t *testing.T) {
	c, err := ScalarCodec(baseID(0x06)) // int64
	require.NoError(t, err)
	assert.IsType(t, &scalarCodec{}, c)
}
