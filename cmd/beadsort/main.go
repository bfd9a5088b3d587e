// Command beadsort classifies captures the way the machine does and prints what the
// sorter decided for each one.
//
// Captures are raw big-endian RGB565 dumps (.rgb565, sized by -w and -h) or any
// decodable image. They share one sorter, in argument order, so a run over several
// captures shows how the palette and tubes fill up.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"beadsorter/internal/dataset"
	"beadsorter/internal/report"
	"beadsorter/pkg/cfg"
	"beadsorter/pkg/frame"
	"beadsorter/pkg/locate"
	"beadsorter/pkg/sorter"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	width := flag.Int("w", cfg.FrameWidth, "raw capture width")
	height := flag.Int("h", cfg.FrameHeight, "raw capture height")
	filter := flag.Int("filter", int(cfg.FilterPercent), "percent of the annulus kept after outlier filtering")
	threshold := flag.Uint("threshold", uint(cfg.MatchThreshold), "squared Lab distance for joining a palette cluster")
	maskPath := flag.String("mask", "", "write the localizer mask as PNG (an index is added for several captures)")
	verbose := flag.Bool("v", false, "log sorter decisions to stderr")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] capture...\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	config := locate.DefaultConfig().WithFilterPercent(*filter)
	opts := sorter.Options{Threshold: uint32(*threshold), Locate: &config}
	if *verbose {
		opts.Logger = log.New(os.Stderr, "sorter: ", 0)
	}
	s := sorter.New(opts)

	// Only raw dumps are read with the flag geometry; images keep their own size.
	loadOpts := dataset.Options{Width: *width, Height: *height}

	for i, path := range flag.Args() {
		var f frame.Frame
		var err error
		if strings.EqualFold(filepath.Ext(path), dataset.RawExt) {
			f, err = dataset.LoadFrame(path, loadOpts)
		} else {
			f, err = dataset.LoadFrame(path, dataset.Options{})
		}
		if err != nil {
			log.Fatalf("load error: %s", err)
		}

		mask := frame.NewMask(f.Width, f.Height)
		d, out := s.Decide(f, mask.Data)
		printDecision(path, d, out)

		if *maskPath != "" {
			name := *maskPath
			if flag.NArg() > 1 {
				ext := filepath.Ext(name)
				name = fmt.Sprintf("%s-%d%s", strings.TrimSuffix(name, ext), i, ext)
			}
			if err := writeMask(name, mask); err != nil {
				log.Fatalf("mask write error: %s", err)
			}
		}
	}
}

func printDecision(path string, d sorter.Decision, out sorter.Outcome) {
	if out == sorter.NoBead {
		fmt.Printf("%s: no bead\n", path)
		return
	}
	a := d.Analysis
	lab := a.AverageColor.Lab()
	fmt.Printf("%s: rgb(%d,%d,%d) %s lab(%d,%d,%d) pixels=%d variance=%d",
		path,
		a.AverageColor.R, a.AverageColor.G, a.AverageColor.B,
		report.Hex(a.AverageColor),
		lab.L, lab.A, lab.B,
		a.PixelCount, a.Variance)
	if out != sorter.Sorted {
		fmt.Printf(" -> %s\n", out)
		return
	}
	var notes []string
	if d.NewPalette {
		notes = append(notes, "new cluster")
	}
	if d.NewTube {
		notes = append(notes, "new tube")
	}
	if d.Shared {
		notes = append(notes, "shared tube")
	}
	fmt.Printf(" -> palette %d, tube %d", d.PaletteIndex, d.Tube)
	if len(notes) > 0 {
		fmt.Printf(" (%s)", strings.Join(notes, ", "))
	}
	fmt.Println()
}

func writeMask(path string, m frame.Mask) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(file, m.Image()); err != nil {
		file.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return file.Close()
}
