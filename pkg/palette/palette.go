// Package palette is a bounded online colour clusterer. There are no predefined
// classes: the first bead of a new colour founds a cluster, later beads either join
// the nearest cluster or found their own until the capacity is used up.
package palette

import (
	"fmt"

	"beadsorter/pkg/color"
)

// Kind says how MatchColor resolved a sample.
type Kind int

const (
	// Matched: an existing cluster is close enough.
	Matched Kind = iota
	// Created: a new cluster was founded for the sample.
	Created
	// Full: nothing matched and there is no room for a new cluster.
	Full
)

func (k Kind) String() string {
	switch k {
	case Matched:
		return "match"
	case Created:
		return "new"
	case Full:
		return "full"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Result is the outcome of MatchColor. Index is -1 when Kind is Full.
type Result struct {
	Kind  Kind
	Index int
}

// Ok reports whether the result names a cluster.
func (r Result) Ok() bool {
	return r.Kind != Full
}

func (r Result) String() string {
	if r.Kind == Full {
		return r.Kind.String()
	}
	return fmt.Sprintf("%s(%d)", r.Kind, r.Index)
}

// Palette is an append-only arena of clusters. Slots [0, Len()) are populated, in
// creation order; nothing is ever removed or reordered.
type Palette struct {
	entries []Entry
}

// New returns an empty palette that holds at most capacity clusters.
func New(capacity int) *Palette {
	if capacity < 0 {
		capacity = 0
	}
	return &Palette{entries: make([]Entry, 0, capacity)}
}

// MatchColor finds the populated cluster whose running average is nearest to c in Lab
// distance (first one on ties) and returns Matched if that distance is below
// threshold. Otherwise it founds a new cluster seeded with this single sample, or
// reports Full.
//
// Only cluster creation mutates the palette: a Matched sample is not recorded until
// the caller passes it to AddSample. Variance is stored with new clusters but plays no
// part in the match.
func (p *Palette) MatchColor(c color.RGB, variance uint32, threshold uint32) Result {
	lab := c.Lab()
	best := -1
	bestDist := uint32(0)
	for i, e := range p.entries {
		avg, _ := e.Avg()
		d := lab.Dist(avg.Lab())
		if best < 0 || d < bestDist {
			best = i
			bestDist = d
		}
	}

	if best >= 0 && bestDist < threshold {
		return Result{Kind: Matched, Index: best}
	}

	if len(p.entries) < cap(p.entries) {
		p.entries = append(p.entries, NewEntry(c, variance))
		return Result{Kind: Created, Index: len(p.entries) - 1}
	}
	return Result{Kind: Full, Index: -1}
}

// AddSample accumulates a sample into a populated cluster. Out of range or
// unpopulated indices are ignored.
func (p *Palette) AddSample(index int, c color.RGB, variance uint32) {
	if index < 0 || index >= len(p.entries) {
		return
	}
	p.entries[index].Add(c, variance)
}

// Get returns the running average colour of a cluster.
func (p *Palette) Get(index int) (color.RGB, bool) {
	e, ok := p.GetEntry(index)
	if !ok {
		return color.RGB{}, false
	}
	avg, _ := e.Avg()
	return avg, true
}

// GetEntry returns a copy of a cluster's accumulator.
func (p *Palette) GetEntry(index int) (Entry, bool) {
	if index < 0 || index >= len(p.entries) {
		return Entry{}, false
	}
	return p.entries[index], true
}

// Len is the number of populated clusters.
func (p *Palette) Len() int {
	return len(p.entries)
}

// Cap is the maximum number of clusters.
func (p *Palette) Cap() int {
	return cap(p.entries)
}

// IsFull reports whether no more clusters can be founded.
func (p *Palette) IsFull() bool {
	return len(p.entries) == cap(p.entries)
}
