package locate

import "beadsorter/pkg/color"

// sums accumulates first and second moments per channel. With at most a few hundred
// 8-bit samples everything fits in uint32.
type sums struct {
	r, g, b    uint32
	rr, gg, bb uint32
	n          uint32
}

func (s *sums) add(c color.RGB) {
	r, g, b := uint32(c.R), uint32(c.G), uint32(c.B)
	s.r += r
	s.g += g
	s.b += b
	s.rr += r * r
	s.gg += g * g
	s.bb += b * b
	s.n++
}

// stats returns the truncated mean and the summed per-channel variance
// E[x²] - E[x]², both in integer arithmetic. s.n must be non-zero.
func (s sums) stats() (color.RGB, uint32) {
	mr, mg, mb := s.r/s.n, s.g/s.n, s.b/s.n
	variance := subSat(s.rr/s.n, mr*mr) + subSat(s.gg/s.n, mg*mg) + subSat(s.bb/s.n, mb*mb)
	return color.RGB{R: uint8(mr), G: uint8(mg), B: uint8(mb)}, variance
}

func subSat(a, b uint32) uint32 {
	if b > a {
		return 0
	}
	return a - b
}
