package locate

import "beadsorter/pkg/cfg"

// Config holds the localizer tunables.
type Config struct {
	// EdgeThreshold, MinDimension and the aspect ratio bounds are carried for
	// compatibility with stored configurations. The ring search does not read them.
	EdgeThreshold  int32
	MinDimension   int
	AspectRatioMin float32
	AspectRatioMax float32

	// FilterPercent is the share of the winning annulus kept after sorting its pixels
	// by distance to the annulus mean. At least one pixel is always kept.
	FilterPercent uint8
}

// DefaultConfig returns the configuration the machine runs with.
func DefaultConfig() Config {
	return Config{
		EdgeThreshold:  40,
		MinDimension:   10,
		AspectRatioMin: 0.6,
		AspectRatioMax: 1.6,
		FilterPercent:  cfg.FilterPercent,
	}
}

// WithFilterPercent returns a copy of c keeping percent of the annulus, clamped to
// 1-100.
func (c Config) WithFilterPercent(percent int) Config {
	if percent < 1 {
		percent = 1
	}
	if percent > 100 {
		percent = 100
	}
	c.FilterPercent = uint8(percent)
	return c
}
