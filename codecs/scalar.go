package codecs

import (
	"encoding/json"
	"math"
	"math/big"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nsidnev/edgedb-go/buf"
)

// scalarCodec handles every primitive kind. It is intentionally one type
// rather than one per kind: the wire encodings are each a handful of lines
// and a switch keeps them next to each other for easy cross-checking
// against §4.E's contracts.
type scalarCodec struct {
	id   TypeID
	kind PrimitiveKind
}

func newScalarCodec(id TypeID, kind PrimitiveKind) *scalarCodec {
	return &scalarCodec{id: id, kind: kind}
}

func (c *scalarCodec) ID() TypeID { return c.id }

func (c *scalarCodec) Encode(w *buf.Writer, value any) error {
	switch c.kind {
	case KindBool:
		v, ok := value.(bool)
		if !ok {
			return fail("value can not be encoded as std::bool: %#v", value)
		}
		if v {
			w.Uint8(1)
		} else {
			w.Uint8(0)
		}
	case KindInt16:
		v, ok := asInt64(value)
		if !ok || v < math.MinInt16 || v > math.MaxInt16 {
			return fail("value can not be encoded as std::int16: %#v", value)
		}
		w.Int16(int16(v))
	case KindInt32:
		v, ok := asInt64(value)
		if !ok || v < math.MinInt32 || v > math.MaxInt32 {
			return fail("value can not be encoded as std::int32: %#v", value)
		}
		w.Int32(int32(v))
	case KindInt64:
		v, ok := asInt64(value)
		if !ok {
			return fail("value can not be encoded as std::int64: %#v", value)
		}
		w.Int64(v)
	case KindFloat32:
		v, ok := value.(float32)
		if !ok {
			f64, ok2 := value.(float64)
			if !ok2 {
				return fail("value can not be encoded as std::float32: %#v", value)
			}
			v = float32(f64)
		}
		w.Uint32(math.Float32bits(v))
	case KindFloat64:
		v, ok := value.(float64)
		if !ok {
			return fail("value can not be encoded as std::float64: %#v", value)
		}
		w.Uint64(math.Float64bits(v))
	case KindString:
		v, ok := value.(string)
		if !ok {
			return fail("value can not be encoded as std::str: %#v", value)
		}
		w.RawBytes([]byte(v))
	case KindBytes:
		v, ok := value.([]byte)
		if !ok {
			return fail("value can not be encoded as std::bytes: %#v", value)
		}
		w.RawBytes(v)
	case KindUUID:
		id, err := asUUID(value)
		if err != nil {
			return fail("value can not be encoded as std::uuid: %#v", value)
		}
		w.RawBytes(id[:])
	case KindDecimal:
		v, ok := value.(decimal.Decimal)
		if !ok {
			return fail("value can not be encoded as std::decimal: %#v", value)
		}
		encodeDecimal(w, v)
	case KindBigInt:
		v, ok := value.(*big.Int)
		if !ok {
			return fail("value can not be encoded as std::bigint: %#v", value)
		}
		encodeBigInt(w, v)
	case KindDateTime:
		v, ok := value.(int64) // microseconds since 2000-01-01T00:00:00Z
		if !ok {
			return fail("value can not be encoded as std::datetime: %#v", value)
		}
		w.Int64(v)
	case KindLocalDate:
		v, ok := value.(LocalDate)
		if !ok {
			return fail("value can not be encoded as cal::local_date: %#v", value)
		}
		w.Int32(localDateToDays(v))
	case KindLocalTime:
		v, ok := value.(LocalTime)
		if !ok {
			return fail("value can not be encoded as cal::local_time: %#v", value)
		}
		w.Int64(v.MicrosecondsSinceMidnight)
	case KindLocalDateTime:
		v, ok := value.(LocalDateTime)
		if !ok {
			return fail("value can not be encoded as cal::local_datetime: %#v", value)
		}
		days := int64(localDateToDays(v.Date))
		w.Int64(days*86400_000_000 + v.Time.MicrosecondsSinceMidnight)
	case KindDuration:
		v, ok := value.(Duration)
		if !ok {
			return fail("value can not be encoded as std::duration: %#v", value)
		}
		w.Int64(v.Microseconds)
		w.Int32(0) // reserved
		w.Int32(0) // reserved
	case KindJSON:
		b, err := jsonBytes(value)
		if err != nil {
			return fail("value can not be encoded as std::json: %#v", value)
		}
		w.Uint8(1) // format: text
		w.RawBytes(b)
	default:
		return fail("unsupported scalar kind %d", c.kind)
	}
	return nil
}

func (c *scalarCodec) Decode(r *buf.Reader) (any, error) {
	switch c.kind {
	case KindBool:
		v, err := r.Uint8()
		return v != 0, err
	case KindInt16:
		return r.Int16()
	case KindInt32:
		return r.Int32()
	case KindInt64:
		return r.Int64()
	case KindFloat32:
		v, err := r.Uint32()
		if err != nil {
			return nil, err
		}
		return math.Float32frombits(v), nil
	case KindFloat64:
		v, err := r.Uint64()
		if err != nil {
			return nil, err
		}
		return math.Float64frombits(v), nil
	case KindString:
		b, err := r.RawBytes(r.Len())
		return string(b), err
	case KindBytes:
		return r.RawBytes(r.Len())
	case KindUUID:
		b, err := r.RawBytes(16)
		if err != nil {
			return nil, err
		}
		id, _ := uuid.FromBytes(b)
		return id, nil
	case KindDecimal:
		return decodeDecimal(r)
	case KindBigInt:
		return decodeBigInt(r)
	case KindDateTime:
		return r.Int64()
	case KindLocalDate:
		days, err := r.Int32()
		if err != nil {
			return nil, err
		}
		return daysToLocalDate(days), nil
	case KindLocalTime:
		us, err := r.Int64()
		if err != nil {
			return nil, err
		}
		return LocalTime{MicrosecondsSinceMidnight: us}, nil
	case KindLocalDateTime:
		total, err := r.Int64()
		if err != nil {
			return nil, err
		}
		days := int32(total / 86400_000_000)
		rem := total % 86400_000_000
		if rem < 0 {
			rem += 86400_000_000
			days--
		}
		return LocalDateTime{Date: daysToLocalDate(days), Time: LocalTime{MicrosecondsSinceMidnight: rem}}, nil
	case KindDuration:
		us, err := r.Int64()
		if err != nil {
			return nil, err
		}
		if _, err := r.Int32(); err != nil {
			return nil, err
		}
		if _, err := r.Int32(); err != nil {
			return nil, err
		}
		return Duration{Microseconds: us}, nil
	case KindJSON:
		if _, err := r.Uint8(); err != nil { // format byte
			return nil, err
		}
		b, err := r.RawBytes(r.Len())
		if err != nil {
			return nil, err
		}
		return json.RawMessage(b), nil
	default:
		return nil, fail("unsupported scalar kind %d", c.kind)
	}
}

func asInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	default:
		return 0, false
	}
}

func asUUID(value any) (uuid.UUID, error) {
	switch v := value.(type) {
	case uuid.UUID:
		return v, nil
	case string:
		return uuid.Parse(v)
	case [16]byte:
		return uuid.UUID(v), nil
	case []byte:
		return uuid.FromBytes(v)
	default:
		return uuid.UUID{}, errNotUUID
	}
}

var errNotUUID = errUUID("not a uuid")

type errUUID string

func (e errUUID) Error() string { return string(e) }

func jsonBytes(value any) ([]byte, error) {
	if raw, ok := value.(json.RawMessage); ok {
		return raw, nil
	}
	if s, ok := value.(string); ok {
		return []byte(s), nil
	}
	return json.Marshal(value)
}

// localDateToDays converts a LocalDate to days since 2000-01-01, the epoch
// every date/time base scalar in this protocol uses.
func localDateToDays(d LocalDate) int32 {
	t := civilToDays(int(d.Year), int(d.Month), int(d.Day))
	epoch := civilToDays(2000, 1, 1)
	return int32(t - epoch)
}

func daysToLocalDate(days int32) LocalDate {
	y, m, d := daysToCivil(int(days) + civilToDays(2000, 1, 1))
	return LocalDate{Year: int32(y), Month: uint8(m), Day: uint8(d)}
}

// civilToDays/daysToCivil implement Howard Hinnant's days_from_civil
// algorithm: proleptic-Gregorian, valid for any year, no floating point.
func civilToDays(y, m, d int) int {
	if m <= 2 {
		y--
	}
	era := y
	if era < 0 {
		era -= 399
	}
	era /= 400
	yoe := y - era*400
	var mp int
	if m > 2 {
		mp = m - 3
	} else {
		mp = m + 9
	}
	doy := (153*mp+2)/5 + d - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe - 719468
}

func daysToCivil(z int) (y, m, d int) {
	z += 719468
	era := z
	if era < 0 {
		era -= 146096
	}
	era /= 146097
	doe := z - era*146097
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365
	y = yoe + era*400
	doy := doe - (365*yoe + yoe/4 - yoe/100)
	mp := (5*doy + 2) / 153
	d = doy - (153*mp+2)/5 + 1
	if mp < 10 {
		m = mp + 3
	} else {
		m = mp - 9
	}
	if m <= 2 {
		y++
	}
	return y, m, d
}
