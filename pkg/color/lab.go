package color

import "beadsorter/pkg/float"

// Lab is a CIE L*a*b* colour truncated to integers.
type Lab struct {
	L, A, B int
}

// D65 reference white, scaled to Y = 100.
const (
	whiteX = 95.047
	whiteY = 100.000
	whiteZ = 108.883
)

func linearize(v float.Float) float.Float {
	if v > 0.04045 {
		return float.Pow((v+0.055)/1.055, 2.4)
	}
	return v / 12.92
}

func labF(t float.Float) float.Float {
	if t > 0.008856 {
		return float.Pow(t, 1.0/3.0)
	}
	return 7.787*t + 16.0/116.0
}

// Lab converts c from sRGB to CIE Lab (D65). Components are truncated toward zero,
// not rounded.
func (c RGB) Lab() Lab {
	r := linearize(float.Float(c.R) / 255)
	g := linearize(float.Float(c.G) / 255)
	b := linearize(float.Float(c.B) / 255)

	x := (r*0.4124 + g*0.3576 + b*0.1805) * 100
	y := (r*0.2126 + g*0.7152 + b*0.0722) * 100
	z := (r*0.0193 + g*0.1192 + b*0.9505) * 100

	fx := labF(x / whiteX)
	fy := labF(y / whiteY)
	fz := labF(z / whiteZ)

	return Lab{
		L: float.Trunc(116*fy - 16),
		A: float.Trunc(500 * (fx - fy)),
		B: float.Trunc(200 * (fy - fz)),
	}
}

// Dist is the sum of squared component differences. No square root is taken: this
// squared value is the threshold unit used by the palette and the tube assigner.
func (l Lab) Dist(other Lab) uint32 {
	dl := l.L - other.L
	da := l.A - other.A
	db := l.B - other.B
	return uint32(dl*dl + da*da + db*db)
}

// DistLab is c.Lab().Dist(other.Lab()).
func (c RGB) DistLab(other RGB) uint32 {
	return c.Lab().Dist(other.Lab())
}
