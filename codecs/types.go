package codecs

import "fmt"

// LocalDate is a calendar date with no time zone, per std::cal::local_date.
type LocalDate struct{ Year int32; Month, Day uint8 }

// LocalTime is a wall-clock time with no time zone, microsecond resolution.
type LocalTime struct{ MicrosecondsSinceMidnight int64 }

// LocalDateTime combines LocalDate and LocalTime with no time zone.
type LocalDateTime struct {
	Date LocalDate
	Time LocalTime
}

// Duration is a signed span of microseconds, per std::duration.
type Duration struct{ Microseconds int64 }

// RangeValue is the decoded form of a Range(inner) codec.
type RangeValue struct {
	Empty      bool
	Lower      any
	Upper      any
	IncLower   bool
	IncUpper   bool
}

// ObjectField is one element of a decoded Object, tagged with the flag bits
// the server attached to the shape element (bit0 implicit, bit1 link
// property, bit2 link).
type ObjectField struct {
	Name     string
	Value    any
	Implicit bool
	LinkProp bool
	Link     bool
}

// Object is the decoded form of an Object(Shape) codec: an ordered sequence
// of fields preserving the server's declared order.
type Object struct {
	Fields []ObjectField
}

// Get returns the named field's value and whether it was present.
func (o *Object) Get(name string) (any, bool) {
	for _, f := range o.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// NamedTuple is the decoded form of a NamedTuple codec: an ordered mapping
// that is also indexable by position, per §4.E.
type NamedTuple struct {
	Names  []string
	Values []any
}

// Get returns the named element's value and whether it was present.
func (t *NamedTuple) Get(name string) (any, bool) {
	for i, n := range t.Names {
		if n == name {
			return t.Values[i], true
		}
	}
	return nil, false
}

// At returns the element at position i.
func (t *NamedTuple) At(i int) any { return t.Values[i] }

func (t *NamedTuple) String() string {
	return fmt.Sprintf("NamedTuple(%v)", t.Names)
}
