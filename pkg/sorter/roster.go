package sorter

import (
	"beadsorter/pkg/color"
	"beadsorter/pkg/palette"
)

// roster is the bounded list of physical tubes. Tubes are appended until the
// capacity is reached and never removed; once full, new clusters share existing
// tubes.
type roster struct {
	tubes []palette.Entry
}

func newRoster(capacity int) roster {
	return roster{tubes: make([]palette.Entry, 0, capacity)}
}

func (r *roster) full() bool {
	return len(r.tubes) == cap(r.tubes)
}

// add opens a new tube seeded with one sample and returns its id. The caller checks
// full first.
func (r *roster) add(c color.RGB, variance uint32) int {
	r.tubes = append(r.tubes, palette.NewEntry(c, variance))
	return len(r.tubes) - 1
}

// nearest returns the tube whose running average is closest to c in Lab distance;
// the first one wins ties. It returns 0 for an empty roster, which only happens when
// the capacity is zero.
func (r *roster) nearest(c color.RGB) int {
	lab := c.Lab()
	best := 0
	var bestDist uint32
	for i, t := range r.tubes {
		avg, _ := t.Avg()
		d := lab.Dist(avg.Lab())
		if i == 0 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

func (r *roster) accumulate(id int, c color.RGB, variance uint32) {
	if id >= 0 && id < len(r.tubes) {
		r.tubes[id].Add(c, variance)
	}
}
