// Command beadsim replays a labelled dataset through a fresh sorter and scores the
// result against the labels, next to two offline clustering baselines.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"beadsorter/internal/dataset"
	"beadsorter/internal/report"
	"beadsorter/pkg/cfg"
	"beadsorter/pkg/locate"
	"beadsorter/pkg/sorter"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	seed := flag.Int64("seed", 0, "shuffle the dataset with this seed (0 keeps directory order)")
	paletteCap := flag.Int("palette", cfg.PaletteCapacity, "palette capacity")
	tubeCap := flag.Int("tubes", cfg.TubeCapacity, "number of tubes")
	threshold := flag.Uint("threshold", uint(cfg.MatchThreshold), "squared Lab distance for joining a palette cluster")
	filter := flag.Int("filter", int(cfg.FilterPercent), "percent of the annulus kept after outlier filtering")
	width := flag.Int("w", 0, "rescale images to this width (0 keeps their size; raw dumps use the frame size)")
	height := flag.Int("h", 0, "rescale images to this height")
	skip := flag.Bool("skip-errors", false, "skip unreadable captures instead of stopping")
	verbose := flag.Bool("v", false, "print every decision")
	flag.Parse()

	dir := "image_data"
	if flag.NArg() > 0 {
		dir = flag.Arg(0)
	}

	logger := log.New(os.Stderr, "", 0)
	samples, err := dataset.Load(dir, dataset.Options{
		Width:      *width,
		Height:     *height,
		SkipErrors: *skip,
		Logger:     logger,
	})
	if err != nil {
		log.Fatalf("dataset error: %s", err)
	}
	if *seed != 0 {
		dataset.Shuffle(samples, *seed)
	}
	fmt.Fprintf(os.Stderr, "loaded %d captures in %d categories from %s\n",
		len(samples), len(dataset.Categories(samples)), dir)

	config := locate.DefaultConfig().WithFilterPercent(*filter)
	opts := sorter.Options{
		PaletteCapacity: *paletteCap,
		TubeCapacity:    *tubeCap,
		Threshold:       uint32(*threshold),
		Locate:          &config,
	}
	if *verbose {
		opts.Logger = logger
	}
	s := sorter.New(opts)

	records := make([]report.Record, 0, len(samples))
	for _, sample := range samples {
		d, out := s.Decide(sample.Frame, nil)
		records = append(records, report.Record{
			Path:     sample.Path,
			Category: sample.Category,
			Outcome:  out,
			Decision: d,
		})
		if *verbose {
			fmt.Fprintf(os.Stderr, "%s (%s) -> %s palette %d tube %d\n",
				sample.Path, sample.Category, out, d.PaletteIndex, d.Tube)
		}
	}

	summary := report.Score(records)
	printSummary(summary)
	printTubes(s, summary)

	baselines := []report.Baseline{report.ChromaNN(records)}
	if summary.Tubes > 0 {
		km, err := report.KMeans(records, summary.Tubes)
		if err != nil {
			fmt.Fprintf(os.Stderr, "k-means baseline skipped: %s\n", err)
		} else {
			baselines = append(baselines, km)
		}
	}
	fmt.Println()
	for _, b := range baselines {
		fmt.Printf("baseline %-12s %6.2f%% (%d / %d)\n", b.Name, b.Accuracy(), b.Correct, b.Total)
	}
}

func printSummary(s report.Summary) {
	fmt.Printf("frames:          %d\n", s.Frames)
	fmt.Printf("correct:         %d\n", s.Correct)
	fmt.Printf("misrouted:       %d\n", s.Misrouted)
	fmt.Printf("missed:          %d\n", s.Missed)
	fmt.Printf("unclassified:    %d\n", s.Unclassified)
	fmt.Printf("false positives: %d\n", s.FalsePositive)
	fmt.Printf("palettes: %d  tubes: %d  purity: %.3f ± %.3f\n",
		s.Palettes, s.Tubes, s.PurityMean, s.PurityStdDev)
	fmt.Printf("ring variance:   %.1f ± %.1f\n", s.VarianceMean, s.VarianceStdDev)
	fmt.Printf("ACCURACY: %.2f%%\n", s.Accuracy())
}

func printTubes(s *sorter.Sorter, summary report.Summary) {
	byTube := make(map[int][]int)
	for idx := range summary.Owners {
		if tube, ok := s.TubeFor(idx); ok {
			byTube[tube] = append(byTube[tube], idx)
		}
	}

	fmt.Println()
	for id, t := range s.Tubes() {
		avg, _ := t.Avg()
		clusters := byTube[id]
		sort.Ints(clusters)
		fmt.Printf("tube %2d %s beads=%d", id, report.Hex(avg), t.Count)
		for _, idx := range clusters {
			c, _ := s.Palette().Get(idx)
			fmt.Printf(" P%d:%s(%s)", idx, summary.Owners[idx], report.Hex(c))
		}
		fmt.Println()
	}
}
