package service

import (
	"cmp"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

type numClass uint8

const (
	signed numClass = iota + 1
	unsigned
	floating
)

type number struct {
	class numClass
	i     int64
	u     uint64
	f     float64
}

func asNumber(v any) (number, bool) {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return number{class: signed, i: rv.Int()}, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return number{class: unsigned, u: rv.Uint()}, true
	case reflect.Float32, reflect.Float64:
		return number{class: floating, f: rv.Float()}, true
	default:
		return number{}, false
	}
}

func (n number) float() float64 {
	switch n.class {
	case signed:
		return float64(n.i)
	case unsigned:
		return float64(n.u)
	default:
		return n.f
	}
}

// CompareNumbers orders two numeric values of any kind. Integers compare
// exactly; floats are used only when one side is a float. ok is false when
// either value is not a number or is NaN.
func CompareNumbers(a, b any) (c int, ok bool) {
	x, ok := asNumber(a)
	if !ok {
		return 0, false
	}

	y, ok := asNumber(b)
	if !ok {
		return 0, false
	}

	switch {
	case x.class == signed && y.class == signed:
		return cmp.Compare(x.i, y.i), true
	case x.class == unsigned && y.class == unsigned:
		return cmp.Compare(x.u, y.u), true
	case x.class == signed && y.class == unsigned:
		if x.i < 0 {
			return -1, true
		}

		return cmp.Compare(uint64(x.i), y.u), true
	case x.class == unsigned && y.class == signed:
		if y.i < 0 {
			return 1, true
		}

		return cmp.Compare(x.u, uint64(y.i)), true
	}

	fx, fy := x.float(), y.float()
	if math.IsNaN(fx) || math.IsNaN(fy) {
		return 0, false
	}

	return cmp.Compare(fx, fy), true
}

// SameID reports whether two record identifiers match. Numbers match by value
// across kinds, strings and bools match within the same type. Any other
// value never matches.
func SameID(a, b any) bool {
	if a == nil || b == nil {
		return false
	}

	if c, ok := CompareNumbers(a, b); ok {
		return c == 0
	}

	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Type() != rb.Type() {
		return false
	}

	switch ra.Kind() {
	case reflect.String:
		return ra.String() == rb.String()
	case reflect.Bool:
		return ra.Bool() == rb.Bool()
	default:
		return false
	}
}

// IDKey renders id as a map key consistent with SameID for numbers and
// strings: 2, int64(2), uint8(2) and 2.0 share a key.
func IDKey(id any) string {
	if n, ok := asNumber(id); ok {
		switch n.class {
		case signed:
			return "n:" + strconv.FormatInt(n.i, 10)
		case unsigned:
			return "n:" + strconv.FormatUint(n.u, 10)
		default:
			f := n.f
			if f == math.Trunc(f) {
				if f >= math.MinInt64 && f < math.MaxInt64 {
					return "n:" + strconv.FormatInt(int64(f), 10)
				}

				if f > 0 && f < math.MaxUint64 {
					return "n:" + strconv.FormatUint(uint64(f), 10)
				}
			}

			return "n:" + strconv.FormatFloat(f, 'g', -1, 64)
		}
	}

	if s, ok := id.(string); ok {
		return "s:" + s
	}

	return "v:" + fmt.Sprint(id)
}
