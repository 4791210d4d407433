package ecl

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
)

/* values.go converts between typed slices and their unformatted and
formatted encodings. */

// TypeOf returns the Type and length of a typed slice. MESS is reported for
// nil. An error is returned for any other value.
func TypeOf(values interface{}) (Type, int, error) {
	switch x := values.(type) {
	case nil: return MESS, 0, nil
	case []int32: return INTE, len(x), nil
	case []float32: return REAL, len(x), nil
	case []float64: return DOUB, len(x), nil
	case []string: return CHAR, len(x), nil
	case []bool: return LOGI, len(x), nil
	}
	return 0, 0, Errorf(ErrType, "", "Arrays must be []int32, []float32, " +
		"[]float64, []string or []bool, but a %T was given.", values)
}

func decodeBinary(t Type, raw []byte, n int) interface{} {
	order := binary.BigEndian
	switch t {
	case INTE:
		out := make([]int32, n)
		for i := range out { out[i] = int32(order.Uint32(raw[4*i:])) }
		return out
	case REAL:
		out := make([]float32, n)
		for i := range out {
			out[i] = math.Float32frombits(order.Uint32(raw[4*i:]))
		}
		return out
	case DOUB:
		out := make([]float64, n)
		for i := range out {
			out[i] = math.Float64frombits(order.Uint64(raw[8*i:]))
		}
		return out
	case LOGI:
		out := make([]bool, n)
		for i := range out { out[i] = order.Uint32(raw[4*i:]) != 0 }
		return out
	case CHAR:
		out := make([]string, n)
		for i := range out {
			out[i] = strings.TrimRight(string(raw[8*i: 8*i+8]), " ")
		}
		return out
	case MESS:
		return nil
	}
	panic(fmt.Sprintf("Internal error: unrecognized array type %d.", int(t)))
}

// appendBinary appends the unformatted encoding of values[start:end] to buf.
func appendBinary(buf []byte, values interface{}, start, end int) []byte {
	var word [8]byte
	order := binary.BigEndian
	switch x := values.(type) {
	case []int32:
		for _, v := range x[start:end] {
			order.PutUint32(word[:4], uint32(v))
			buf = append(buf, word[:4]...)
		}
	case []float32:
		for _, v := range x[start:end] {
			order.PutUint32(word[:4], math.Float32bits(v))
			buf = append(buf, word[:4]...)
		}
	case []float64:
		for _, v := range x[start:end] {
			order.PutUint64(word[:], math.Float64bits(v))
			buf = append(buf, word[:]...)
		}
	case []bool:
		for _, v := range x[start:end] {
			if v {
				order.PutUint32(word[:4], 0xffffffff)
			} else {
				order.PutUint32(word[:4], 0)
			}
			buf = append(buf, word[:4]...)
		}
	case []string:
		for _, v := range x[start:end] {
			buf = append(buf, v...)
			for i := len(v); i < CharWidth; i++ { buf = append(buf, ' ') }
		}
	default:
		panic(fmt.Sprintf("Internal error: unrecognized buffer type %T.", x))
	}
	return buf
}

// appendFormatted appends the formatted encoding of values[i], right-aligned
// in a column of the given width, to buf. At least one space always separates
// values.
func appendFormatted(buf []byte, values interface{}, i, width int) []byte {
	var s string
	switch x := values.(type) {
	case []int32: s = strconv.Itoa(int(x[i]))
	case []float32: s = FortranFloat(float64(x[i]), 32)
	case []float64: s = FortranFloat(x[i], 64)
	case []bool:
		if x[i] { s = "T" } else { s = "F" }
	case []string:
		s = "'" + x[i] + strings.Repeat(" ", CharWidth - len(x[i])) + "'"
	default:
		panic(fmt.Sprintf("Internal error: unrecognized buffer type %T.", x))
	}

	pad := width - len(s)
	if pad < 1 { pad = 1 }
	for j := 0; j < pad; j++ { buf = append(buf, ' ') }
	return append(buf, s...)
}

// FortranFloat writes a float in the normalized form used by formatted files,
// 0.ddddddddE+ee for 32-bit values and 0.ddddddddddddddD+ee for 64-bit
// values. The mantissa has the shortest number of digits which parses back to
// the same value, padded with zeros to 8 (or 14) digits.
func FortranFloat(v float64, bits int) string {
	minDigits, expChar := 8, "E"
	if bits == 64 { minDigits, expChar = 14, "D" }

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'E', -1, bits)
	}

	sign := ""
	if math.Signbit(v) { sign = "-" }
	if v == 0 {
		return sign + "0." + strings.Repeat("0", minDigits) + expChar + "+00"
	}

	s := strconv.FormatFloat(math.Abs(v), 'E', -1, bits)
	e := strings.IndexByte(s, 'E')
	digits := strings.Replace(s[:e], ".", "", 1)
	exp, _ := strconv.Atoi(s[e+1:])
	exp++

	if len(digits) < minDigits {
		digits += strings.Repeat("0", minDigits - len(digits))
	}

	expSign := "+"
	if exp < 0 { expSign, exp = "-", -exp }
	return fmt.Sprintf("%s0.%s%s%s%02d", sign, digits, expChar, expSign, exp)
}

// ParseFortranFloat parses a float written by FortranFloat or by a Fortran
// program: 'D' exponents are accepted, and so are exponents with no letter at
// all (0.1234-100).
func ParseFortranFloat(tok string, bits int) (float64, error) {
	s := strings.Map(func(r rune) rune {
		if r == 'D' || r == 'd' { return 'E' }
		return r
	}, tok)
	if !strings.ContainsAny(s, "Ee") {
		if i := strings.LastIndexAny(s, "+-"); i > 0 {
			s = s[:i] + "E" + s[i:]
		}
	}
	return strconv.ParseFloat(s, bits)
}

func parseFormatted(t Type, tok []string) (interface{}, error) {
	switch t {
	case INTE:
		out := make([]int32, len(tok))
		for i := range tok {
			v, err := strconv.ParseInt(tok[i], 10, 32)
			if err != nil { return nil, errValue(tok[i], t, i) }
			out[i] = int32(v)
		}
		return out, nil
	case REAL:
		out := make([]float32, len(tok))
		for i := range tok {
			v, err := ParseFortranFloat(tok[i], 32)
			if err != nil { return nil, errValue(tok[i], t, i) }
			out[i] = float32(v)
		}
		return out, nil
	case DOUB:
		out := make([]float64, len(tok))
		for i := range tok {
			v, err := ParseFortranFloat(tok[i], 64)
			if err != nil { return nil, errValue(tok[i], t, i) }
			out[i] = v
		}
		return out, nil
	case LOGI:
		out := make([]bool, len(tok))
		for i := range tok {
			switch tok[i] {
			case "T", "t", ".TRUE.": out[i] = true
			case "F", "f", ".FALSE.": out[i] = false
			default: return nil, errValue(tok[i], t, i)
			}
		}
		return out, nil
	case CHAR:
		return tok, nil
	case MESS:
		return nil, nil
	}
	panic(fmt.Sprintf("Internal error: unrecognized array type %d.", int(t)))
}

func errValue(tok string, t Type, i int) error {
	return Errorf(ErrCorruptFormat, "", "Element %d, '%s', is not a " +
		"valid %s value.", i, tok, t).WithIndex(i)
}
