// Command beadstats prints, per dataset category, the mean colour each estimator
// measures, as CSV.
package main

import (
	"flag"
	"log"
	"os"

	"beadsorter/internal/dataset"
	"beadsorter/internal/report"
	"beadsorter/pkg/cfg"
	"beadsorter/pkg/locate"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	filter := flag.Int("filter", int(cfg.FilterPercent), "percent of the annulus kept for the Ring estimator")
	skip := flag.Bool("skip-errors", false, "skip unreadable captures instead of stopping")
	flag.Parse()

	dir := "image_data"
	if flag.NArg() > 0 {
		dir = flag.Arg(0)
	}

	samples, err := dataset.Load(dir, dataset.Options{SkipErrors: *skip, Logger: log.New(os.Stderr, "", 0)})
	if err != nil {
		log.Fatalf("dataset error: %s", err)
	}

	rows := report.CategoryStats(samples, locate.DefaultConfig().WithFilterPercent(*filter))
	if err := report.WriteCSV(os.Stdout, rows); err != nil {
		log.Fatalf("write error: %s", err)
	}
}
