package dataset_test

import (
	"bytes"
	"errors"
	"image"
	imgcolor "image/color"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"beadsorter/internal/dataset"
	"beadsorter/pkg/color"

	"github.com/google/go-cmp/cmp"
)

func writePNG(t *testing.T, path string, w, h int, c imgcolor.Color) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		t.Fatal(err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "red", "b.png"), 4, 3, imgcolor.RGBA{R: 255, A: 255})
	writePNG(t, filepath.Join(dir, "red", "a.png"), 4, 3, imgcolor.RGBA{R: 255, A: 255})
	writePNG(t, filepath.Join(dir, "empty", "x.png"), 4, 3, imgcolor.RGBA{R: 90, G: 90, B: 90, A: 255})
	if err := os.WriteFile(filepath.Join(dir, "red", "notes.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "stray.png"), []byte("top level files are ignored"), 0o644); err != nil {
		t.Fatal(err)
	}

	samples, err := dataset.Load(dir, dataset.Options{})
	if err != nil {
		t.Fatalf("Load: %s", err)
	}
	var got []string
	for _, s := range samples {
		got = append(got, s.Category+"/"+filepath.Base(s.Path))
	}
	if diff := cmp.Diff([]string{"empty/x.png", "red/a.png", "red/b.png"}, got); diff != "" {
		t.Errorf("samples: %s", diff)
	}
	if !samples[0].Empty() || samples[1].Empty() {
		t.Errorf("Empty() wrong: %v %v", samples[0].Empty(), samples[1].Empty())
	}
	if f := samples[1].Frame; f.Width != 4 || f.Height != 3 || f.RGB(3, 2) != (color.RGB{R: 255}) {
		t.Errorf("frame %dx%d pixel %v", f.Width, f.Height, f.RGB(3, 2))
	}
	if diff := cmp.Diff([]string{"empty", "red"}, dataset.Categories(samples)); diff != "" {
		t.Errorf("Categories: %s", diff)
	}
}

func TestLoadRescales(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "blue", "big.png"), 80, 60, imgcolor.RGBA{B: 255, A: 255})
	samples, err := dataset.Load(dir, dataset.Options{Width: 40, Height: 30})
	if err != nil {
		t.Fatalf("Load: %s", err)
	}
	f := samples[0].Frame
	if f.Width != 40 || f.Height != 30 || !f.Valid() {
		t.Fatalf("frame %dx%d valid=%v", f.Width, f.Height, f.Valid())
	}
	if got := f.RGB(20, 15); got != (color.RGB{B: 255}) {
		t.Errorf("pixel = %v", got)
	}
}

func TestLoadRaw(t *testing.T) {
	dir := t.TempDir()
	cat := filepath.Join(dir, "green")
	if err := os.MkdirAll(cat, 0o755); err != nil {
		t.Fatal(err)
	}
	data := make([]byte, 2*3*2)
	for i := 0; i < len(data); i += 2 {
		data[i], data[i+1] = 0x07, 0xe0
	}
	if err := os.WriteFile(filepath.Join(cat, "cap.rgb565"), data, 0o644); err != nil {
		t.Fatal(err)
	}

	samples, err := dataset.Load(dir, dataset.Options{Width: 2, Height: 3})
	if err != nil {
		t.Fatalf("Load: %s", err)
	}
	if got := samples[0].Frame.RGB(1, 2); got != (color.RGB{G: 255}) {
		t.Errorf("pixel = %v", got)
	}

	// The deployment geometry needs far more than 12 bytes.
	if _, err := dataset.Load(dir, dataset.Options{}); err == nil || !strings.Contains(err.Error(), "too short") {
		t.Errorf("short raw dump: err = %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := dataset.Load(dir, dataset.Options{}); !errors.Is(err, dataset.ErrNoImages) {
		t.Errorf("empty dir: err = %v, want ErrNoImages", err)
	}
	if _, err := dataset.Load(filepath.Join(dir, "missing"), dataset.Options{}); err == nil {
		t.Errorf("missing dir: no error")
	}

	bad := filepath.Join(dir, "red", "broken.png")
	if err := os.MkdirAll(filepath.Dir(bad), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte("not a png"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := dataset.Load(dir, dataset.Options{}); err == nil || !strings.Contains(err.Error(), "broken.png") {
		t.Errorf("broken image: err = %v", err)
	}

	var buf bytes.Buffer
	writePNG(t, filepath.Join(dir, "red", "ok.png"), 2, 2, imgcolor.RGBA{R: 255, A: 255})
	samples, err := dataset.Load(dir, dataset.Options{SkipErrors: true, Logger: log.New(&buf, "", 0)})
	if err != nil || len(samples) != 1 {
		t.Fatalf("SkipErrors: %d samples, err %v", len(samples), err)
	}
	if !strings.Contains(buf.String(), "skipping") {
		t.Errorf("skip not logged: %q", buf.String())
	}
}

func TestShuffleDeterministic(t *testing.T) {
	mk := func() []dataset.Sample {
		var s []dataset.Sample
		for _, p := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
			s = append(s, dataset.Sample{Path: p})
		}
		return s
	}
	a, b := mk(), mk()
	dataset.Shuffle(a, 42)
	dataset.Shuffle(b, 42)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed, different order: %s", diff)
	}
	if len(a) != 8 {
		t.Errorf("Shuffle lost samples")
	}
}

func TestRescaleKeepsSameSize(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	if got := dataset.Rescale(img, 40, 30); got != image.Image(img) {
		t.Errorf("Rescale copied an image that already fits")
	}
}
