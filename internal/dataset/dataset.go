// Package dataset loads labelled bead captures for the offline tools.
//
// A dataset is a directory of category directories, each holding captures of one bead
// colour:
//
//	data/
//	  red/001.png
//	  red/002.png
//	  empty/001.png
//
// The category is the name of the directory a capture sits in. Captures are decoded
// images (PNG, JPEG, BMP, TIFF) or raw big-endian RGB565 dumps with the .rgb565
// extension, as the camera firmware writes them.
package dataset

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"beadsorter/pkg/cfg"
	"beadsorter/pkg/frame"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
)

// ErrNoImages is returned by Load for a directory without any usable capture.
var ErrNoImages = errors.New("no images found")

// RawExt is the file extension of raw RGB565 dumps.
const RawExt = ".rgb565"

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	RawExt:  true,
}

// Sample is one labelled capture.
type Sample struct {
	Path     string
	Category string
	Frame    frame.Frame
}

// Empty reports whether the capture is labelled as showing no bead.
func (s Sample) Empty() bool {
	return s.Category == cfg.EmptyCategory
}

// Options controls how captures are turned into frames.
type Options struct {
	// Width and Height are the frame geometry. Raw dumps are read with it (the
	// deployment frame size when zero) and decoded images of another size are
	// rescaled to it. Zero keeps decoded images at their own size.
	Width, Height int

	// SkipErrors logs unreadable captures to Logger and carries on instead of failing.
	SkipErrors bool
	Logger     *log.Logger
}

func (o Options) rawSize() (int, int) {
	if o.Width > 0 && o.Height > 0 {
		return o.Width, o.Height
	}
	return cfg.FrameWidth, cfg.FrameHeight
}

// Load reads every capture one level below dir, in category then file name order.
func Load(dir string, opts Options) ([]Sample, error) {
	categories, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", dir, err)
	}

	var samples []Sample
	for _, c := range categories {
		if !c.IsDir() {
			continue
		}
		catDir := filepath.Join(dir, c.Name())
		files, err := os.ReadDir(catDir)
		if err != nil {
			return nil, fmt.Errorf("read category %s: %w", catDir, err)
		}
		for _, file := range files {
			if file.IsDir() || !imageExts[strings.ToLower(filepath.Ext(file.Name()))] {
				continue
			}
			path := filepath.Join(catDir, file.Name())
			f, err := LoadFrame(path, opts)
			if err != nil {
				if opts.SkipErrors {
					if opts.Logger != nil {
						opts.Logger.Printf("skipping %s: %s", path, err)
					}
					continue
				}
				return nil, err
			}
			samples = append(samples, Sample{Path: path, Category: c.Name(), Frame: f})
		}
	}

	if len(samples) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoImages)
	}
	return samples, nil
}

// LoadFrame reads one capture.
func LoadFrame(path string, opts Options) (frame.Frame, error) {
	if strings.EqualFold(filepath.Ext(path), RawExt) {
		w, h := opts.rawSize()
		return loadRaw(path, w, h)
	}

	file, err := os.Open(path)
	if err != nil {
		return frame.Frame{}, fmt.Errorf("open capture: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return frame.Frame{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if opts.Width > 0 && opts.Height > 0 {
		img = Rescale(img, opts.Width, opts.Height)
	}
	return frame.FromImage(img), nil
}

func loadRaw(path string, width, height int) (frame.Frame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return frame.Frame{}, fmt.Errorf("read capture: %w", err)
	}
	f := frame.Frame{Width: width, Height: height, Data: data}
	if !f.Valid() {
		return frame.Frame{}, fmt.Errorf("%s: %d bytes is too short for a %dx%d frame", path, len(data), width, height)
	}
	return f, nil
}

// Rescale returns img resized to width x height with nearest neighbour sampling, or
// img itself when it already has that size.
func Rescale(img image.Image, width, height int) image.Image {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Shuffle reorders samples in place, deterministically for a given seed.
func Shuffle(samples []Sample, seed int64) {
	r := rand.New(rand.NewSource(seed))
	r.Shuffle(len(samples), func(i, j int) {
		samples[i], samples[j] = samples[j], samples[i]
	})
}

// Categories returns the distinct categories in samples, sorted.
func Categories(samples []Sample) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range samples {
		if !seen[s.Category] {
			seen[s.Category] = true
			out = append(out, s.Category)
		}
	}
	sort.Strings(out)
	return out
}
