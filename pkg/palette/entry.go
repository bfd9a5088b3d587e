package palette

import "beadsorter/pkg/color"

// Entry is a running-sum accumulator of colour samples. The zero value is an empty
// accumulator whose average is black with zero variance.
type Entry struct {
	SumR   uint32
	SumG   uint32
	SumB   uint32
	SumVar uint64
	Count  uint32
}

// NewEntry returns an accumulator seeded with one sample.
func NewEntry(c color.RGB, variance uint32) Entry {
	return Entry{
		SumR:   uint32(c.R),
		SumG:   uint32(c.G),
		SumB:   uint32(c.B),
		SumVar: uint64(variance),
		Count:  1,
	}
}

// Add accumulates one sample.
func (e *Entry) Add(c color.RGB, variance uint32) {
	e.SumR += uint32(c.R)
	e.SumG += uint32(c.G)
	e.SumB += uint32(c.B)
	e.SumVar += uint64(variance)
	e.Count++
}

// Avg returns the per-channel average colour and the average variance, each
// truncated.
func (e Entry) Avg() (color.RGB, uint32) {
	if e.Count == 0 {
		return color.RGB{}, 0
	}
	n := e.Count
	return color.RGB{
		R: uint8(e.SumR / n),
		G: uint8(e.SumG / n),
		B: uint8(e.SumB / n),
	}, uint32(e.SumVar / uint64(n))
}
