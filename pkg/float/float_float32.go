//go:build !float64

package float

import "github.com/chewxy/math32"

// Float is the floating point type used by the colour space conversions. The bead
// firmware does its Lab math in single precision, so float32 is the default; build
// with -tags float64 to compare against double precision.
type Float = float32

func Pow(x, y Float) Float {
	return math32.Pow(x, y)
}

// Trunc converts to an int, dropping the fractional part (toward zero).
func Trunc(n Float) int {
	return int(math32.Trunc(n))
}
