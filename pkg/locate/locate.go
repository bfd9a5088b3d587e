// Package locate finds the bead in a capture and reduces it to one representative
// colour.
//
// The imaging geometry is fixed: the bead always sits in roughly the same spot and a
// patch near the top of the frame always shows the empty carrier. So instead of
// segmenting, the localizer scores a small grid of candidate centers by how much an
// annulus around each one differs from that background patch, picks the best, and
// then throws away the annulus pixels furthest from its mean (glare and shadow at the
// rim) before computing the final colour.
package locate

import (
	"math"
	"sort"

	"beadsorter/pkg/color"
	"beadsorter/pkg/frame"
)

// Background calibration rectangle, inclusive.
const (
	bgMinX = 10
	bgMaxX = 15
	bgMinY = 3
	bgMaxY = 6
)

// Candidate centers, inclusive.
const (
	searchMinX = 16
	searchMaxX = 24
	searchMinY = 16
	searchMaxY = 18
)

// Annulus radii in pixels. A pixel belongs to the ring when its squared distance to
// the center is within [innerRadius², outerRadius²].
const (
	innerRadius = 3
	outerRadius = 7
)

// maxRingPixels bounds the refinement buffer. A 3-7 ring holds well under this.
const maxRingPixels = 256

// rejectScore is the best-candidate score under which the frame is treated as empty.
const rejectScore = -200000

// Analysis is the result of locating a bead in one frame.
type Analysis struct {
	AverageColor color.RGB
	PixelCount   uint32
	// Variance is the summed per-channel variance of the kept pixels.
	Variance uint32
}

// Analyze locates the bead with the default configuration.
func Analyze(f frame.Frame) (Analysis, bool) {
	return AnalyzeDebug(f, nil, DefaultConfig())
}

// AnalyzeDebug locates the bead in f. When mask is non-nil it is cleared and then
// marked with frame.MaskKept for every pixel that survived filtering and
// frame.MaskCenter for the chosen center; it should be f.Width*f.Height bytes, cells
// beyond its length are not written.
//
// The second result is false when there is no bead: the geometry is empty or the
// buffer too short, no candidate annulus had a pixel inside the frame, the best score
// fell below the rejection cutoff, or the winning annulus has exactly the background
// colour.
func AnalyzeDebug(f frame.Frame, mask []byte, config Config) (Analysis, bool) {
	if !f.Valid() {
		return Analysis{}, false
	}
	for i := range mask {
		mask[i] = frame.MaskUnused
	}

	bg := background(f)

	bestScore := int64(math.MinInt64)
	var bestContrast int64
	bestX, bestY := 0, 0
	for cy := searchMinY; cy <= searchMaxY; cy++ {
		for cx := searchMinX; cx <= searchMaxX; cx++ {
			var s sums
			forEachRingPixel(f, cx, cy, func(x, y int) {
				s.add(f.RGB(x, y))
			})
			if s.n == 0 {
				continue
			}
			mean, variance := s.stats()
			contrast := int64(mean.Dist(bg))
			score := contrast - int64(variance)/8
			// Strict comparison: the first center in scan order wins ties.
			if score > bestScore {
				bestScore = score
				bestContrast = contrast
				bestX, bestY = cx, cy
			}
		}
	}

	if bestScore < rejectScore || bestContrast == 0 {
		return Analysis{}, false
	}

	return refine(f, bestX, bestY, mask, config.FilterPercent)
}

// background averages the calibration rectangle, clipped to the frame. A frame too
// small to contain any of it gets black.
func background(f frame.Frame) color.RGB {
	var s sums
	for y := bgMinY; y <= bgMaxY; y++ {
		for x := bgMinX; x <= bgMaxX; x++ {
			if x >= f.Width || y >= f.Height {
				continue
			}
			s.add(f.RGB(x, y))
		}
	}
	if s.n == 0 {
		return color.RGB{}
	}
	mean, _ := s.stats()
	return mean
}

type ringPixel struct {
	c    color.RGB
	dist uint32
	idx  int
}

// refine recomputes the statistics of the annulus around cx, cy from the
// filterPercent of its pixels closest to the annulus mean.
func refine(f frame.Frame, cx, cy int, mask []byte, filterPercent uint8) (Analysis, bool) {
	pixels := make([]ringPixel, 0, maxRingPixels)
	var s sums
	forEachRingPixel(f, cx, cy, func(x, y int) {
		if len(pixels) >= maxRingPixels {
			return
		}
		c := f.RGB(x, y)
		pixels = append(pixels, ringPixel{c: c, idx: y*f.Width + x})
		s.add(c)
	})

	if cx < f.Width && cy < f.Height {
		setMask(mask, cy*f.Width+cx, frame.MaskCenter)
	}

	if len(pixels) == 0 {
		return Analysis{}, false
	}

	mean, _ := s.stats()
	for i := range pixels {
		pixels[i].dist = pixels[i].c.Dist(mean)
	}
	sort.SliceStable(pixels, func(i, j int) bool {
		return pixels[i].dist < pixels[j].dist
	})

	keep := len(pixels) * int(filterPercent) / 100
	if keep < 1 {
		keep = 1
	}
	if keep > len(pixels) {
		keep = len(pixels)
	}

	var kept sums
	for _, p := range pixels[:keep] {
		kept.add(p.c)
		setMask(mask, p.idx, frame.MaskKept)
	}
	avg, variance := kept.stats()
	return Analysis{
		AverageColor: avg,
		PixelCount:   kept.n,
		Variance:     variance,
	}, true
}

func setMask(mask []byte, i int, v byte) {
	if i >= 0 && i < len(mask) {
		mask[i] = v
	}
}

// forEachRingPixel calls fn for every in-frame pixel of the annulus around cx, cy, in
// row-major order.
func forEachRingPixel(f frame.Frame, cx, cy int, fn func(x, y int)) {
	minY := max(cy-outerRadius, 0)
	maxY := min(cy+outerRadius, f.Height-1)
	minX := max(cx-outerRadius, 0)
	maxX := min(cx+outerRadius, f.Width-1)
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			dx, dy := x-cx, y-cy
			d := dx*dx + dy*dy
			if d >= innerRadius*innerRadius && d <= outerRadius*outerRadius {
				fn(x, y)
			}
		}
	}
}
