package codecs

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nsidnev/edgedb-go/buf"
)

// decimal and bigint share the same base-10000 "NBASE" digit-group wire
// layout PostgreSQL's numeric type uses: ndigits:u16, weight:i16 (index of
// the most significant digit group relative to the decimal point),
// sign:u16 (0 positive, 0x4000 negative), dscale:u16 (digits after the
// point), then ndigits u16 groups. bigint is the dscale==0 special case.

const numericNegSign uint16 = 0x4000

func encodeDecimal(w *buf.Writer, d decimal.Decimal) {
	coeff, exp := d.Coefficient(), d.Exponent()
	if exp > 0 {
		coeff.Mul(coeff, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil))
		exp = 0
	}
	encodeNumeric(w, coeff, -exp)
}

func decodeDecimal(r *buf.Reader) (decimal.Decimal, error) {
	coeff, scale, err := decodeNumeric(r)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromBigInt(coeff, -scale), nil
}

func encodeBigInt(w *buf.Writer, v *big.Int) {
	encodeNumeric(w, v, 0)
}

func decodeBigInt(r *buf.Reader) (*big.Int, error) {
	coeff, _, err := decodeNumeric(r)
	if err != nil {
		return nil, err
	}
	return coeff, nil
}

// encodeNumeric writes coefficient * 10^(-scale) in the digit-group layout.
// scale must be >= 0.
func encodeNumeric(w *buf.Writer, coefficient *big.Int, scale int32) {
	neg := coefficient.Sign() < 0
	digitsStr := new(big.Int).Abs(coefficient).String()

	var intPart, fracPart string
	if scale > 0 {
		s := int(scale)
		if len(digitsStr) <= s {
			intPart = "0"
			fracPart = strings.Repeat("0", s-len(digitsStr)) + digitsStr
		} else {
			intPart = digitsStr[:len(digitsStr)-s]
			fracPart = digitsStr[len(digitsStr)-s:]
		}
	} else {
		intPart = digitsStr
		fracPart = ""
	}

	intPart = padLeft(intPart, 4)
	if len(fracPart) > 0 {
		fracPart = padRight(fracPart, 4)
	}

	groups := make([]uint16, 0, (len(intPart)+len(fracPart))/4)
	for i := 0; i < len(intPart); i += 4 {
		n, _ := strconv.Atoi(intPart[i : i+4])
		groups = append(groups, uint16(n))
	}
	for i := 0; i < len(fracPart); i += 4 {
		n, _ := strconv.Atoi(fracPart[i : i+4])
		groups = append(groups, uint16(n))
	}

	weight := int16(len(intPart)/4 - 1)
	sign := uint16(0)
	if neg {
		sign = numericNegSign
	}

	w.Uint16(uint16(len(groups)))
	w.Int16(weight)
	w.Uint16(sign)
	w.Uint16(uint16(scale))
	for _, g := range groups {
		w.Uint16(g)
	}
}

func decodeNumeric(r *buf.Reader) (*big.Int, int32, error) {
	ndigits, err := r.Uint16()
	if err != nil {
		return nil, 0, err
	}
	weight, err := r.Int16()
	if err != nil {
		return nil, 0, err
	}
	sign, err := r.Uint16()
	if err != nil {
		return nil, 0, err
	}
	dscale, err := r.Uint16()
	if err != nil {
		return nil, 0, err
	}
	groups := make([]uint16, ndigits)
	for i := range groups {
		g, err := r.Uint16()
		if err != nil {
			return nil, 0, err
		}
		groups[i] = g
	}

	var sb strings.Builder
	for _, g := range groups {
		sb.WriteString(padLeft(strconv.Itoa(int(g)), 4))
	}
	all := sb.String()

	intDigits := (int(weight) + 1) * 4
	var intPart, fracPart string
	switch {
	case intDigits <= 0:
		intPart = "0"
		fracPart = strings.Repeat("0", -intDigits) + all
	case intDigits >= len(all):
		intPart = all + strings.Repeat("0", intDigits-len(all))
	default:
		intPart = all[:intDigits]
		fracPart = all[intDigits:]
	}
	switch {
	case int(dscale) < len(fracPart):
		fracPart = fracPart[:dscale]
	case int(dscale) > len(fracPart):
		fracPart += strings.Repeat("0", int(dscale)-len(fracPart))
	}

	digitsStr := strings.TrimLeft(intPart+fracPart, "0")
	if digitsStr == "" {
		digitsStr = "0"
	}
	coeff := new(big.Int)
	coeff.SetString(digitsStr, 10)
	if sign == numericNegSign {
		coeff.Neg(coeff)
	}
	return coeff, int32(dscale), nil
}

func padLeft(s string, multipleOf int) string {
	if r := len(s) % multipleOf; r != 0 {
		s = strings.Repeat("0", multipleOf-r) + s
	}
	return s
}

// padRight pads s on the right with zeros until it is at least n characters
// long and its length is a multiple of 4.
func padRight(s string, n int) string {
	for len(s) < n {
		s += "0"
	}
	if r := len(s) % 4; r != 0 {
		s += strings.Repeat("0", 4-r)
	}
	return s
}
