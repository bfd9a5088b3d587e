// Package sorter turns a camera frame into a tube number. It chains the localizer,
// the palette and a tube assigner that maps the (up to PaletteCapacity) learned
// colour clusters onto the (far fewer) physical tubes.
//
// A Sorter is created once at startup and fed one frame per sort cycle. It does no
// locking; confine it to one goroutine or serialize calls.
package sorter

import (
	"log"

	"beadsorter/pkg/cfg"
	"beadsorter/pkg/color"
	"beadsorter/pkg/frame"
	"beadsorter/pkg/locate"
	"beadsorter/pkg/palette"
)

// Unassigned marks a palette cluster that has not been given a tube yet.
const Unassigned = -1

// Options configures a Sorter. Zero fields take the deployment defaults from pkg/cfg
// and locate.DefaultConfig; a zero Threshold would never match anything, so it too
// means the default.
type Options struct {
	PaletteCapacity int
	TubeCapacity    int
	Threshold       uint32
	Locate          *locate.Config

	// Logger, when set, gets one line per classified bead.
	Logger *log.Logger
}

func (o Options) withDefaults() Options {
	if o.PaletteCapacity <= 0 {
		o.PaletteCapacity = cfg.PaletteCapacity
	}
	if o.TubeCapacity <= 0 {
		o.TubeCapacity = cfg.TubeCapacity
	}
	if o.Threshold == 0 {
		o.Threshold = cfg.MatchThreshold
	}
	if o.Locate == nil {
		c := locate.DefaultConfig()
		o.Locate = &c
	}
	return o
}

// Sorter owns the palette, the tube roster and the palette to tube mapping.
type Sorter struct {
	palette   *palette.Palette
	tubes     roster
	toTube    []int
	threshold uint32
	locate    locate.Config
	log       *log.Logger
}

// New returns a Sorter with an empty palette and no tubes in use.
func New(opts Options) *Sorter {
	opts = opts.withDefaults()
	toTube := make([]int, opts.PaletteCapacity)
	for i := range toTube {
		toTube[i] = Unassigned
	}
	return &Sorter{
		palette:   palette.New(opts.PaletteCapacity),
		tubes:     newRoster(opts.TubeCapacity),
		toTube:    toTube,
		threshold: opts.Threshold,
		locate:    *opts.Locate,
		log:       opts.Logger,
	}
}

// Decision describes how one bead was routed.
type Decision struct {
	Analysis     locate.Analysis
	PaletteIndex int
	Tube         int

	// NewPalette is set when the bead founded its palette cluster.
	NewPalette bool

	// NewTube is set when the bead opened a previously unused tube.
	NewTube bool

	// Shared is set when the cluster was routed to an existing tube because every
	// tube was already taken.
	Shared bool
}

// Outcome is how a sort cycle ended; anything but Sorted sends the bead to the
// default bin.
type Outcome int

const (
	// Sorted: the bead has a tube.
	Sorted Outcome = iota
	// NoBead: the localizer found nothing in the frame.
	NoBead
	// PaletteFull: the bead matched no cluster and none could be created.
	PaletteFull
)

func (o Outcome) String() string {
	switch o {
	case Sorted:
		return "sorted"
	case NoBead:
		return "no bead"
	case PaletteFull:
		return "palette full"
	}
	return "unknown"
}

// Classify returns the tube for the bead in f, or false if the bead should go to the
// default bin.
func (s *Sorter) Classify(f frame.Frame) (int, bool) {
	d, out := s.Decide(f, nil)
	return d.Tube, out == Sorted
}

// ClassifyDebug is Classify, additionally filling mask as locate.AnalyzeDebug does.
func (s *Sorter) ClassifyDebug(f frame.Frame, mask []byte) (int, bool) {
	d, out := s.Decide(f, mask)
	return d.Tube, out == Sorted
}

// Decide runs one sort cycle and reports every intermediate result. A NoBead or
// PaletteFull outcome leaves the Sorter untouched.
func (s *Sorter) Decide(f frame.Frame, mask []byte) (Decision, Outcome) {
	a, ok := locate.AnalyzeDebug(f, mask, s.locate)
	if !ok {
		return Decision{Tube: Unassigned, PaletteIndex: Unassigned}, NoBead
	}
	d, out := s.Route(a.AverageColor, a.Variance)
	d.Analysis = a
	return d, out
}

// Route assigns an already analysed sample. It is the part of Decide after the
// localizer, for callers that measure colour some other way.
func (s *Sorter) Route(c color.RGB, variance uint32) (Decision, Outcome) {
	d := Decision{Tube: Unassigned, PaletteIndex: Unassigned}

	m := s.palette.MatchColor(c, variance, s.threshold)
	if !m.Ok() {
		s.logf("palette full, bead %v unclassified", c)
		return d, PaletteFull
	}
	d.PaletteIndex = m.Index
	d.NewPalette = m.Kind == palette.Created

	// Recorded whatever happens with the tube.
	s.palette.AddSample(m.Index, c, variance)

	tube := s.toTube[m.Index]
	switch {
	case tube != Unassigned:
		s.logf("bead matched palette entry %d, tube %d", m.Index, tube)
	case !s.tubes.full():
		tube = s.tubes.add(c, variance)
		d.NewTube = true
		s.logf("new palette entry %d assigned to empty tube %d", m.Index, tube)
	default:
		tube = s.tubes.nearest(c)
		d.Shared = true
		s.logf("new palette entry %d, no empty tubes, closest tube %d", m.Index, tube)
	}
	s.toTube[m.Index] = tube

	// A freshly opened tube is seeded with the sample and then accumulates it as well,
	// so a tube's first bead carries double weight.
	s.tubes.accumulate(tube, c, variance)
	d.Tube = tube
	return d, Sorted
}

func (s *Sorter) logf(format string, args ...interface{}) {
	if s.log != nil {
		s.log.Printf(format, args...)
	}
}

// Palette returns the learned clusters. Callers must not mutate it.
func (s *Sorter) Palette() *palette.Palette {
	return s.palette
}

// Tubes returns a copy of the running statistics of every tube in use, indexed by
// tube id.
func (s *Sorter) Tubes() []palette.Entry {
	out := make([]palette.Entry, len(s.tubes.tubes))
	copy(out, s.tubes.tubes)
	return out
}

// TubeFor returns the tube a palette cluster is routed to.
func (s *Sorter) TubeFor(paletteIndex int) (int, bool) {
	if paletteIndex < 0 || paletteIndex >= len(s.toTube) || s.toTube[paletteIndex] == Unassigned {
		return Unassigned, false
	}
	return s.toTube[paletteIndex], true
}
