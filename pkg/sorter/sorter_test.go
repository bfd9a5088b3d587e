package sorter_test

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"beadsorter/pkg/cfg"
	"beadsorter/pkg/color"
	"beadsorter/pkg/frame"
	"beadsorter/pkg/palette"
	"beadsorter/pkg/sorter"

	"github.com/google/go-cmp/cmp"
)

var (
	gray  = color.RGB{R: 132, G: 130, B: 132}
	red   = color.RGB{R: 255}
	green = color.RGB{G: 255}
	blue  = color.RGB{B: 255}
)

func beadFrame(bead color.RGB) frame.Frame {
	f := frame.New(40, 30)
	f.Fill(gray)
	p := color.ToRGB565(bead)
	for y := 9; y <= 25; y++ {
		for x := 12; x <= 28; x++ {
			if (x-20)*(x-20)+(y-17)*(y-17) <= 64 {
				f.SetPixel(x, y, p)
			}
		}
	}
	return f
}

func TestNoBead(t *testing.T) {
	s := sorter.New(sorter.Options{})
	f := frame.New(40, 30)
	f.Fill(gray)
	if tube, ok := s.Classify(f); ok {
		t.Errorf("uniform frame sorted to tube %d", tube)
	}
	d, out := s.Decide(f, nil)
	if out != sorter.NoBead {
		t.Errorf("outcome = %v, want no bead", out)
	}
	if d.Tube != sorter.Unassigned || d.PaletteIndex != sorter.Unassigned {
		t.Errorf("decision = %+v", d)
	}
	if s.Palette().Len() != 0 || len(s.Tubes()) != 0 {
		t.Errorf("rejected frame changed state")
	}
}

func TestSameBeadSameTube(t *testing.T) {
	s := sorter.New(sorter.Options{})
	for i := 0; i < 5; i++ {
		tube, ok := s.Classify(beadFrame(red))
		if !ok || tube != 0 {
			t.Fatalf("bead %d: tube %d, %v", i, tube, ok)
		}
	}
	tube, ok := s.Classify(beadFrame(blue))
	if !ok || tube != 1 {
		t.Errorf("blue bead: tube %d, %v; want 1", tube, ok)
	}
	if s.Palette().Len() != 2 {
		t.Errorf("palette has %d entries, want 2", s.Palette().Len())
	}
}

func TestFirstBeadSeedsTube(t *testing.T) {
	s := sorter.New(sorter.Options{})
	d, out := s.Route(red, 6)
	want := sorter.Decision{PaletteIndex: 0, Tube: 0, NewPalette: true, NewTube: true}
	if diff := cmp.Diff(want, d); diff != "" || out != sorter.Sorted {
		t.Fatalf("%v: %s", out, diff)
	}
	// Seeded and then accumulated.
	tubes := s.Tubes()
	if diff := cmp.Diff([]palette.Entry{{SumR: 510, SumVar: 12, Count: 2}}, tubes); diff != "" {
		t.Errorf("tubes: %s", diff)
	}
	// The new palette slot is seeded and then records the sample too.
	entry, ok := s.Palette().GetEntry(0)
	if !ok {
		t.Fatalf("palette entry 0 missing")
	}
	if diff := cmp.Diff(palette.Entry{SumR: 510, SumVar: 12, Count: 2}, entry); diff != "" {
		t.Errorf("palette entry: %s", diff)
	}
}

func TestTubesShareWhenFull(t *testing.T) {
	s := sorter.New(sorter.Options{PaletteCapacity: 10, TubeCapacity: 3})
	for i, c := range []color.RGB{red, green, blue} {
		d, out := s.Route(c, 0)
		if out != sorter.Sorted || d.Tube != i || !d.NewTube {
			t.Fatalf("%v: %+v %v", c, d, out)
		}
	}

	d, out := s.Route(color.RGB{R: 150}, 0)
	want := sorter.Decision{PaletteIndex: 3, Tube: 0, NewPalette: true, Shared: true}
	if diff := cmp.Diff(want, d); diff != "" || out != sorter.Sorted {
		t.Errorf("dark red %v: %s", out, diff)
	}
	if n := len(s.Tubes()); n != 3 {
		t.Errorf("%d tubes, want 3", n)
	}
	if tube, ok := s.TubeFor(3); !ok || tube != 0 {
		t.Errorf("TubeFor(3) = %d, %v", tube, ok)
	}

	// The shared cluster keeps its tube without another nearest search.
	d, _ = s.Route(color.RGB{R: 150}, 0)
	if d.Tube != 0 || d.Shared || d.NewPalette {
		t.Errorf("repeat dark red: %+v", d)
	}
}

// nearestTube is the expected pick for a cluster that finds every tube taken.
func nearestTube(tubes []palette.Entry, c color.RGB) int {
	best := 0
	var bestDist uint32
	for i, e := range tubes {
		avg, _ := e.Avg()
		if d := c.DistLab(avg); i == 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func TestTubeLimitAtDeploymentSize(t *testing.T) {
	s := sorter.New(sorter.Options{})
	levels := []uint8{0, 85, 170, 255}
	sortedN, shared := 0, 0
	for _, r := range levels {
		for _, g := range levels {
			for _, b := range levels {
				before := s.Tubes()
				d, out := s.Decide(beadFrame(color.RGB{R: r, G: g, B: b}), nil)
				if out != sorter.Sorted {
					continue
				}
				sortedN++
				if n := len(s.Tubes()); n > cfg.TubeCapacity {
					t.Fatalf("%d tubes in use, capacity is %d", n, cfg.TubeCapacity)
				}
				if d.Shared {
					shared++
					if want := nearestTube(before, d.Analysis.AverageColor); d.Tube != want {
						t.Errorf("%v shared tube %d, nearest by Lab is %d", d.Analysis.AverageColor, d.Tube, want)
					}
				}
			}
		}
	}
	if sortedN <= cfg.TubeCapacity {
		t.Fatalf("only %d beads sorted, need more than %d distinct colours", sortedN, cfg.TubeCapacity)
	}
	if n := len(s.Tubes()); n != cfg.TubeCapacity {
		t.Errorf("%d tubes in use, want %d", n, cfg.TubeCapacity)
	}
	if shared != sortedN-cfg.TubeCapacity {
		t.Errorf("%d shared picks for %d beads", shared, sortedN)
	}
}

func TestSharedTubeUsesLabDistance(t *testing.T) {
	navy := color.RGB{B: 40}
	slate := color.RGB{R: 128, G: 128, B: 128}
	leaf := color.RGB{G: 120}
	if leaf.Dist(navy) >= leaf.Dist(slate) || leaf.DistLab(slate) >= leaf.DistLab(navy) {
		t.Fatalf("colours no longer disagree: rgb %d/%d lab %d/%d",
			leaf.Dist(navy), leaf.Dist(slate), leaf.DistLab(navy), leaf.DistLab(slate))
	}

	s := sorter.New(sorter.Options{TubeCapacity: 2})
	s.Route(navy, 0)
	s.Route(slate, 0)
	d, out := s.Route(leaf, 0)
	// Navy is closer in RGB, slate is closer in Lab.
	if out != sorter.Sorted || !d.Shared || d.Tube != 1 {
		t.Errorf("leaf: %+v %v, want shared tube 1", d, out)
	}
}

func TestPaletteFull(t *testing.T) {
	s := sorter.New(sorter.Options{PaletteCapacity: 2})
	s.Route(red, 0)
	s.Route(green, 0)
	before := s.Tubes()

	d, out := s.Route(blue, 0)
	if out != sorter.PaletteFull {
		t.Fatalf("outcome %v, want palette full", out)
	}
	if d.Tube != sorter.Unassigned {
		t.Errorf("tube %d, want unassigned", d.Tube)
	}
	if diff := cmp.Diff(before, s.Tubes()); diff != "" {
		t.Errorf("tubes changed: %s", diff)
	}
	if s.Palette().Len() != 2 {
		t.Errorf("palette grew to %d", s.Palette().Len())
	}

	// Known colours still sort.
	if d, out := s.Route(green, 0); out != sorter.Sorted || d.Tube != 1 {
		t.Errorf("green after full: %+v %v", d, out)
	}
}

func TestTubeFor(t *testing.T) {
	s := sorter.New(sorter.Options{PaletteCapacity: 4})
	s.Route(red, 0)
	for _, idx := range []int{-1, 1, 4, 100} {
		if _, ok := s.TubeFor(idx); ok {
			t.Errorf("TubeFor(%d) found a tube", idx)
		}
	}
	if tube, ok := s.TubeFor(0); !ok || tube != 0 {
		t.Errorf("TubeFor(0) = %d, %v", tube, ok)
	}
}

func TestClassifyDebugMask(t *testing.T) {
	s := sorter.New(sorter.Options{})
	mask := frame.NewMask(40, 30)
	if _, ok := s.ClassifyDebug(beadFrame(green), mask.Data); !ok {
		t.Fatalf("no bead")
	}
	if mask.Count(frame.MaskCenter) != 1 || mask.Count(frame.MaskKept) == 0 {
		t.Errorf("mask not filled: %d center, %d kept", mask.Count(frame.MaskCenter), mask.Count(frame.MaskKept))
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	s := sorter.New(sorter.Options{PaletteCapacity: 1, Logger: log.New(&buf, "", 0)})
	s.Route(red, 0)
	s.Route(red, 0)
	s.Route(blue, 0)
	for _, want := range []string{
		"new palette entry 0 assigned to empty tube 0",
		"bead matched palette entry 0, tube 0",
		"palette full",
	} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("log missing %q:\n%s", want, buf.String())
		}
	}
}

func TestOutcomeString(t *testing.T) {
	for out, want := range map[sorter.Outcome]string{
		sorter.Sorted:      "sorted",
		sorter.NoBead:      "no bead",
		sorter.PaletteFull: "palette full",
		sorter.Outcome(9):  "unknown",
	} {
		if got := out.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(out), got, want)
		}
	}
}
