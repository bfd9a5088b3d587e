// Package cfg holds the deployment constants of the sorter. They describe the machine
// (how many tubes are mounted, what the camera delivers), not a per-run choice, so they
// are plain package variables rather than flags.
package cfg

// FrameWidth and FrameHeight are the capture size delivered by the camera engine.
var FrameWidth = 40
var FrameHeight = 30

// PaletteCapacity is how many learned colour clusters the sorter keeps. Once all of
// them are used, a bead that matches none of them is left unclassified.
var PaletteCapacity = 128

// TubeCapacity is the number of physical output tubes on the carousel.
var TubeCapacity = 30

// MatchThreshold is the squared Lab distance under which a bead joins an existing
// palette cluster on the production path. The offline tools have used 200 and 500
// while tuning; 15 is what runs on the machine.
var MatchThreshold uint32 = 15

// FilterPercent is the share of annulus pixels kept after outlier filtering.
var FilterPercent uint8 = 60

// EmptyCategory is the dataset label for captures with no bead in them.
var EmptyCategory = "empty"
