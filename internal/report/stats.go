package report

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"beadsorter/internal/dataset"
	"beadsorter/pkg/color"
	"beadsorter/pkg/frame"
	"beadsorter/pkg/locate"
)

// Colour estimators compared by CategoryStats.
const (
	AlgoGlobal      = "Global"
	AlgoCenter      = "Center"
	AlgoBrightest20 = "Brightest20"
	AlgoRing        = "Ring"
)

var algos = []string{AlgoGlobal, AlgoCenter, AlgoBrightest20, AlgoRing}

// CategoryRow is the mean of one estimator's per-capture colour over a category.
type CategoryRow struct {
	Category string
	Algo     string
	Color    color.RGB
	Sat      uint8
	Lum      uint8
	Count    int
}

type catSums struct {
	r, g, b, sat, lum uint64
	n                 int
}

func (s *catSums) add(c color.RGB) {
	s.r += uint64(c.R)
	s.g += uint64(c.G)
	s.b += uint64(c.B)
	s.sat += uint64(c.Saturation())
	s.lum += uint64(c.Luminance())
	s.n++
}

func (s catSums) row(category, algo string) CategoryRow {
	n := uint64(s.n)
	return CategoryRow{
		Category: category,
		Algo:     algo,
		Color:    color.RGB{R: uint8(s.r / n), G: uint8(s.g / n), B: uint8(s.b / n)},
		Sat:      uint8(s.sat / n),
		Lum:      uint8(s.lum / n),
		Count:    s.n,
	}
}

// CategoryStats runs every estimator over every sample and averages the results per
// category. Rows come in category order, then Global, Center, Brightest20, Ring; an
// estimator with no result for a category is left out. Ring is the localizer's
// refined annulus and has no result for rejected frames.
func CategoryStats(samples []dataset.Sample, config locate.Config) []CategoryRow {
	stats := make(map[string]map[string]*catSums)
	for _, s := range samples {
		byAlgo := stats[s.Category]
		if byAlgo == nil {
			byAlgo = make(map[string]*catSums)
			for _, a := range algos {
				byAlgo[a] = &catSums{}
			}
			stats[s.Category] = byAlgo
		}
		f := s.Frame
		if !f.Valid() {
			continue
		}
		byAlgo[AlgoGlobal].add(average(pixels(f, nil)))
		byAlgo[AlgoCenter].add(average(pixels(f, func(x, y int) bool {
			return x > f.Width/4 && x < 3*f.Width/4 && y > f.Height/4 && y < 3*f.Height/4
		})))
		byAlgo[AlgoBrightest20].add(brightest(pixels(f, nil), 5))
		if a, ok := locate.AnalyzeDebug(f, nil, config); ok {
			byAlgo[AlgoRing].add(a.AverageColor)
		}
	}

	var cats []string
	for c := range stats {
		cats = append(cats, c)
	}
	sort.Strings(cats)

	var rows []CategoryRow
	for _, c := range cats {
		for _, a := range algos {
			if s := stats[c][a]; s.n > 0 {
				rows = append(rows, s.row(c, a))
			}
		}
	}
	return rows
}

func pixels(f frame.Frame, keep func(x, y int) bool) []color.RGB {
	var out []color.RGB
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			if keep == nil || keep(x, y) {
				out = append(out, f.RGB(x, y))
			}
		}
	}
	return out
}

func average(px []color.RGB) color.RGB {
	if len(px) == 0 {
		return color.RGB{}
	}
	var r, g, b int
	for _, p := range px {
		r += int(p.R)
		g += int(p.G)
		b += int(p.B)
	}
	n := len(px)
	return color.RGB{R: uint8(r / n), G: uint8(g / n), B: uint8(b / n)}
}

// brightest averages the brightest 1/fraction of px by r+g+b.
func brightest(px []color.RGB, fraction int) color.RGB {
	sorted := append([]color.RGB(nil), px...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return luma(sorted[i]) < luma(sorted[j])
	})
	top := len(sorted) / fraction
	return average(sorted[len(sorted)-top:])
}

func luma(c color.RGB) int {
	return int(c.R) + int(c.G) + int(c.B)
}

// WriteCSV writes rows with a header line.
func WriteCSV(w io.Writer, rows []CategoryRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Category", "Algo", "R", "G", "B", "Sat", "Lum", "Count", "Hex"}); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.Category,
			r.Algo,
			strconv.Itoa(int(r.Color.R)),
			strconv.Itoa(int(r.Color.G)),
			strconv.Itoa(int(r.Color.B)),
			strconv.Itoa(int(r.Sat)),
			strconv.Itoa(int(r.Lum)),
			strconv.Itoa(r.Count),
			Hex(r.Color),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
