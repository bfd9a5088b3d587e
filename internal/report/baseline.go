package report

import (
	"errors"
	"fmt"
	"math"

	"beadsorter/pkg/color"

	"github.com/asim/quadtree"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

// Baseline is the result of an offline clustering of the located beads, scored with
// the same majority owner rule as the sorter.
type Baseline struct {
	Name    string
	Correct int
	Total   int
}

// Accuracy returns Correct / Total as a percentage.
func (b Baseline) Accuracy() float64 {
	if b.Total == 0 {
		return 0
	}
	return 100 * float64(b.Correct) / float64(b.Total)
}

// labeled returns the records an offline clustering can use: beads the localizer
// found a colour for.
func labeled(records []Record) []Record {
	var out []Record
	for _, r := range records {
		if r.located() && !r.Empty() {
			out = append(out, r)
		}
	}
	return out
}

type labObservation struct {
	idx int
	lab color.Lab
}

func (o labObservation) Coordinates() clusters.Coordinates {
	return clusters.Coordinates{float64(o.lab.L), float64(o.lab.A), float64(o.lab.B)}
}

func (o labObservation) Distance(point clusters.Coordinates) float64 {
	return o.Coordinates().Distance(point)
}

// KMeans clusters the located beads into k groups in Lab space at once. With k set to
// the number of tubes the sorter used it shows what an offline sorter with the same
// tube budget would reach.
func KMeans(records []Record, k int) (Baseline, error) {
	beads := labeled(records)
	b := Baseline{Name: fmt.Sprintf("k-means(%d)", k), Total: len(beads)}
	if k < 1 {
		return b, errors.New("k-means needs at least one cluster")
	}
	if len(beads) == 0 {
		return b, nil
	}

	obs := make(clusters.Observations, 0, len(beads))
	for i, r := range beads {
		obs = append(obs, labObservation{idx: i, lab: r.Decision.Analysis.AverageColor.Lab()})
	}
	parts, err := kmeans.New().Partition(obs, k)
	if err != nil {
		return b, fmt.Errorf("k-means: %w", err)
	}

	assigned := make([]int, len(beads))
	v := make(votes)
	for ci, c := range parts {
		for _, o := range c.Observations {
			lo := o.(labObservation)
			assigned[lo.idx] = ci
			v.add(ci, beads[lo.idx].Category)
		}
	}
	owners := v.owners()
	for i, r := range beads {
		if owners[assigned[i]] == r.Category {
			b.Correct++
		}
	}
	return b, nil
}

// chromaBound is the half extent of the a*b* plane indexed by the kNN baseline.
// sRGB colours stay well within it.
const chromaBound = 160

var zeroPoint = quadtree.NewPoint(0, 0, nil)

// chromaTree indexes labelled beads by their a*, b* chroma, ignoring lightness.
type chromaTree struct {
	tree *quadtree.QuadTree
}

func newChromaTree() *chromaTree {
	aabb := quadtree.NewAABB(
		quadtree.NewPoint(0, 0, nil),
		quadtree.NewPoint(chromaBound, chromaBound, nil))
	return &chromaTree{tree: quadtree.New(aabb, 0, nil)}
}

func chroma(c color.RGB) (float64, float64) {
	lab := c.Lab()
	clamp := func(v int) float64 {
		return math.Max(-chromaBound+1, math.Min(chromaBound-1, float64(v)))
	}
	return clamp(lab.A), clamp(lab.B)
}

func (t *chromaTree) add(c color.RGB, category string) {
	x, y := chroma(c)
	point := quadtree.NewPoint(x, y, nil)
	points := t.tree.KNearest(quadtree.NewAABB(point, zeroPoint), 1, nil)
	if len(points) > 0 {
		px, py := points[0].Coordinates()
		if px == x && py == y {
			points[0].Data().(map[string]int)[category]++
			return
		}
	}
	t.tree.Insert(quadtree.NewPoint(x, y, map[string]int{category: 1}))
}

// nearest returns the majority label of the closest indexed chroma to c.
func (t *chromaTree) nearest(c color.RGB) (string, bool) {
	x, y := chroma(c)
	center := quadtree.NewPoint(x, y, nil)
	var best *quadtree.Point
	bestDist := math.Inf(1)
	// Grow the search box until the closest hit is no further than the box half size,
	// so nothing outside the box can beat it.
	for half := 1.0; half <= 4*chromaBound; half *= 2 {
		box := quadtree.NewAABB(center, quadtree.NewPoint(half, half, nil))
		for _, p := range t.tree.Search(box) {
			px, py := p.Coordinates()
			if d := math.Hypot(px-x, py-y); d < bestDist {
				best, bestDist = p, d
			}
		}
		if best != nil && bestDist <= half {
			break
		}
	}
	if best == nil {
		return "", false
	}
	return majority(best.Data().(map[string]int)), true
}

// ChromaNN replays the located beads in order and predicts each one's category from
// the nearest earlier bead in the a*b* plane. The first bead has nothing to compare
// with and is not scored.
func ChromaNN(records []Record) Baseline {
	b := Baseline{Name: "chroma-nn"}
	t := newChromaTree()
	for _, r := range labeled(records) {
		c := r.Decision.Analysis.AverageColor
		if guess, ok := t.nearest(c); ok {
			b.Total++
			if guess == r.Category {
				b.Correct++
			}
		}
		t.add(c, r.Category)
	}
	return b
}
