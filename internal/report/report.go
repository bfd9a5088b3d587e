// Package report scores an offline sorting run against the dataset labels and
// compares it with offline clustering baselines.
package report

import (
	"sort"

	"beadsorter/pkg/cfg"
	"beadsorter/pkg/color"
	"beadsorter/pkg/sorter"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/stat"
)

// Record is one frame of a run: its label and what the sorter did with it.
type Record struct {
	Path     string
	Category string
	Outcome  sorter.Outcome
	Decision sorter.Decision
}

// Empty reports whether the frame is labelled as showing no bead.
func (r Record) Empty() bool {
	return r.Category == cfg.EmptyCategory
}

// located reports whether the localizer produced a colour for the frame.
func (r Record) located() bool {
	return r.Outcome != sorter.NoBead
}

// Summary is the score of a run.
type Summary struct {
	Frames int

	// Correct counts beads sorted into a palette cluster owned by their category
	// plus empty frames the localizer rejected.
	Correct int

	// Misrouted counts beads sorted into a cluster owned by another category.
	Misrouted int

	// Missed counts beads the localizer rejected.
	Missed int

	// Unclassified counts beads dropped because the palette was full.
	Unclassified int

	// FalsePositive counts empty frames the localizer accepted.
	FalsePositive int

	Palettes int
	Tubes    int

	// Owners maps each palette index to its majority category.
	Owners map[int]string

	// Purity is the share of each palette cluster's frames that carry its owner's
	// label, summarized over all clusters.
	PurityMean   float64
	PurityStdDev float64

	// Variance summarizes the localizer's ring variance over the located beads.
	VarianceMean   float64
	VarianceStdDev float64
}

// Accuracy returns Correct / Frames as a percentage.
func (s Summary) Accuracy() float64 {
	if s.Frames == 0 {
		return 0
	}
	return 100 * float64(s.Correct) / float64(s.Frames)
}

// votes counts category labels per cluster.
type votes map[int]map[string]int

func (v votes) add(cluster int, category string) {
	if v[cluster] == nil {
		v[cluster] = make(map[string]int)
	}
	v[cluster][category]++
}

// owners picks the majority category of every cluster, the alphabetically first one
// on ties.
func (v votes) owners() map[int]string {
	out := make(map[int]string, len(v))
	for cluster, counts := range v {
		out[cluster] = majority(counts)
	}
	return out
}

func majority(counts map[string]int) string {
	var cats []string
	for c := range counts {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	best, bestN := "", 0
	for _, c := range cats {
		if counts[c] > bestN {
			best, bestN = c, counts[c]
		}
	}
	return best
}

// Score compares a run with the labels.
func Score(records []Record) Summary {
	v := make(votes)
	tubes := make(map[int]bool)
	for _, r := range records {
		if r.Outcome == sorter.Sorted {
			v.add(r.Decision.PaletteIndex, r.Category)
			tubes[r.Decision.Tube] = true
		}
	}

	s := Summary{
		Frames:   len(records),
		Palettes: len(v),
		Tubes:    len(tubes),
		Owners:   v.owners(),
	}
	for _, r := range records {
		switch {
		case r.Empty():
			if r.located() {
				s.FalsePositive++
			} else {
				s.Correct++
			}
		case r.Outcome == sorter.NoBead:
			s.Missed++
		case r.Outcome == sorter.PaletteFull:
			s.Unclassified++
		case s.Owners[r.Decision.PaletteIndex] == r.Category:
			s.Correct++
		default:
			s.Misrouted++
		}
	}

	if len(v) > 0 {
		purity := make([]float64, 0, len(v))
		for cluster, counts := range v {
			total := 0
			for _, n := range counts {
				total += n
			}
			purity = append(purity, float64(counts[s.Owners[cluster]])/float64(total))
		}
		s.PurityMean, s.PurityStdDev = meanStdDev(purity)
	}

	var variance []float64
	for _, r := range labeled(records) {
		variance = append(variance, float64(r.Decision.Analysis.Variance))
	}
	s.VarianceMean, s.VarianceStdDev = meanStdDev(variance)
	return s
}

// meanStdDev is stat.MeanStdDev with zero spread for fewer than two values.
func meanStdDev(x []float64) (float64, float64) {
	switch len(x) {
	case 0:
		return 0, 0
	case 1:
		return x[0], 0
	}
	return stat.MeanStdDev(x, nil)
}

// Hex formats c as #rrggbb.
func Hex(c color.RGB) string {
	col, _ := colorful.MakeColor(c)
	return col.Hex()
}
