package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/handiism/topoart/internal/config"
	"github.com/handiism/topoart/internal/geo"
	"github.com/handiism/topoart/internal/metadata"
	"github.com/handiism/topoart/internal/model"
	"github.com/handiism/topoart/internal/palette"
	"github.com/handiism/topoart/internal/raster"
)

var white = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}

func TestPlanSweep(t *testing.T) {
	ramp, err := palette.BuildRamp(palette.Default(), "#000080", "#FF0000", 5)
	if err != nil {
		t.Fatal(err)
	}
	orig := append(palette.Ramp(nil), ramp...)

	tests := []struct {
		name    string
		kind    model.Kind
		visible func(level, band int) bool
	}{
		{"forward", model.KindSweep, func(level, band int) bool { return band < level }},
		{"reverse", model.KindReverseSweep, func(level, band int) bool { return band >= level }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			art := model.Artwork{Name: "Peak", Levels: 5, Kind: tt.kind}
			frames := PlanSweep(art, "img", "png", ramp, white)
			if len(frames) != 5 {
				t.Fatalf("len(frames) = %d, want 5", len(frames))
			}
			for i, f := range frames {
				if f.Level != i+1 {
					t.Errorf("frames[%d].Level = %d, want %d", i, f.Level, i+1)
				}
				wantPath := filepath.Join("img", "Peak", fmt.Sprintf("Peak %02d.png", i+1))
				if f.Path != wantPath {
					t.Errorf("frames[%d].Path = %q, want %q", i, f.Path, wantPath)
				}
				for band, c := range f.Ramp {
					want := white
					if tt.visible(f.Level, band) {
						want = ramp[band]
					}
					if c != want {
						t.Errorf("level %d band %d = %v, want %v", f.Level, band, c, want)
					}
				}
			}

			again := PlanSweep(art, "img", "png", ramp, white)
			for i := range frames {
				if !frames[i].Ramp.Equal(again[i].Ramp) || frames[i].Path != again[i].Path {
					t.Errorf("PlanSweep is not repeatable at frame %d", i)
				}
			}
		})
	}

	if !ramp.Equal(orig) {
		t.Errorf("PlanSweep modified the source ramp")
	}
}

func TestPlaybackOrder(t *testing.T) {
	paths := []string{"a", "b", "c"}

	if got := PlaybackOrder(paths, false); strings.Join(got, "") != "abc" {
		t.Errorf("forward order = %v", got)
	}
	if got := PlaybackOrder(paths, true); strings.Join(got, "") != "cba" {
		t.Errorf("reverse order = %v", got)
	}
	if strings.Join(paths, "") != "abc" {
		t.Errorf("PlaybackOrder modified its input: %v", paths)
	}
}

func TestTitle(t *testing.T) {
	art := model.Artwork{
		UID:       "00007",
		Name:      "Mount_Rainier",
		Country:   "USA",
		Latitude:  46.8523,
		Longitude: -121.7603,
		Radius:    10,
	}
	ramp := palette.Ramp{{R: 0x34, G: 0x0B, B: 0x0B, A: 0xFF}, {R: 0x0B, G: 0xBC, B: 0xD6, A: 0xFF}}

	want := []string{
		"Name: MOUNT RAINIER [00007]",
		"Country: USA",
		"Coords: " + geo.BoxAroundPoint(46.8523, -121.7603, 10, 2).String(),
		"Palette: #340B0B - #0BBCD6",
	}
	got := Title(art, ramp)
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("Title() =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}

// writeRampDEM writes a 10x10 ASCII grid holding 0..99.
func writeRampDEM(t *testing.T, path string) {
	t.Helper()
	var b strings.Builder
	b.WriteString("ncols 10\nnrows 10\nxllcorner 0\nyllcorner 0\ncellsize 1\nNODATA_value -9999\n")
	for r := 9; r >= 0; r-- {
		for c := 0; c < 10; c++ {
			fmt.Fprintf(&b, "%d ", r*10+c)
		}
		b.WriteString("\n")
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		t.Fatal(err)
	}
}

func testManager(t *testing.T) (*Manager, string) {
	t.Helper()
	dir := t.TempDir()
	s := config.DefaultSettings()
	s.OutputDir = filepath.Join(dir, "img")
	s.ImageSize = 200
	s.MaxConcurrentArtworks = 2

	m, err := NewManager(s, nil)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	return m, dir
}

func testArtwork(t *testing.T, dir string, kind model.Kind) model.Artwork {
	t.Helper()
	dem := filepath.Join(dir, "ramp.asc")
	writeRampDEM(t, dem)
	return model.Artwork{
		UID:      "00001",
		Name:     "Ramp",
		Path:     dem,
		Country:  "Nowhere",
		Radius:   1,
		Levels:   10,
		Kind:     kind,
		MaxColor: "#FF0000",
		MinColor: "#000080",
		Lines:    model.LineStyle{Width: 0.25, Color: "#000000"},
	}
}

func colorsOf(img image.Image) map[color.RGBA]bool {
	seen := make(map[color.RGBA]bool)
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			seen[color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)] = true
		}
	}
	return seen
}

func samePixels(a, b image.Image) bool {
	if a.Bounds() != b.Bounds() {
		return false
	}
	r := a.Bounds()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if color.RGBAModel.Convert(a.At(x, y)) != color.RGBAModel.Convert(b.At(x, y)) {
				return false
			}
		}
	}
	return true
}

func decodePNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	return img
}

func rampOf(t *testing.T, art model.Artwork) palette.Ramp {
	t.Helper()
	ramp, err := palette.BuildRamp(palette.Default(), art.MinColor, art.MaxColor, art.Levels)
	if err != nil {
		t.Fatal(err)
	}
	return ramp
}

func TestRenderArtwork_Static(t *testing.T) {
	m, dir := testManager(t)
	art := testArtwork(t, dir, model.KindStatic)
	art.MaxColor = "#0BBCD6"
	art.MinColor = ""

	res, err := m.RenderArtwork(context.Background(), art)
	if err != nil {
		t.Fatalf("RenderArtwork() error = %v", err)
	}
	if len(res.Frames) != 1 || res.Animation != "" {
		t.Fatalf("Result = %+v, want one frame and no animation", res)
	}

	entries, err := os.ReadDir(art.Dir(m.settings.OutputDir))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "Ramp.png" {
		t.Errorf("output files = %v, want [Ramp.png]", entries)
	}

	seen := colorsOf(decodePNG(t, res.Frames[0]))
	for i, c := range rampOf(t, art) {
		if !seen[c] {
			t.Errorf("band %d color %v missing from static print", i, c)
		}
	}
}

func TestRenderArtwork_Sweep(t *testing.T) {
	m, dir := testManager(t)
	art := testArtwork(t, dir, model.KindSweep)
	ramp := rampOf(t, art)

	res, err := m.RenderArtwork(context.Background(), art)
	if err != nil {
		t.Fatalf("RenderArtwork() error = %v", err)
	}
	if len(res.Frames) != 10 {
		t.Fatalf("frames = %d, want 10", len(res.Frames))
	}
	if want := art.AnimationPath(m.settings.OutputDir); res.Animation != want {
		t.Errorf("Animation = %q, want %q", res.Animation, want)
	}

	entries, err := os.ReadDir(art.Dir(m.settings.OutputDir))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 11 {
		t.Errorf("output files = %d, want 10 frames and 1 GIF", len(entries))
	}

	first := colorsOf(decodePNG(t, res.Frames[0]))
	if !first[ramp[0]] {
		t.Errorf("first frame lacks the lowest band")
	}
	for i := 1; i < len(ramp); i++ {
		if first[ramp[i]] {
			t.Errorf("first frame shows band %d", i)
		}
	}

	last := colorsOf(decodePNG(t, res.Frames[9]))
	for i, c := range ramp {
		if !last[c] {
			t.Errorf("last frame lacks band %d", i)
		}
	}
	if samePixels(decodePNG(t, res.Frames[8]), decodePNG(t, res.Frames[9])) {
		t.Errorf("last two frames are identical")
	}

	if rendered, total := m.GetProgress(); rendered != 10 {
		t.Errorf("GetProgress() = %d/%d, want 10 rendered", rendered, total)
	}
}

func TestRenderArtwork_ReverseSweepPlayback(t *testing.T) {
	m, dir := testManager(t)
	art := testArtwork(t, dir, model.KindReverseSweep)
	ramp := rampOf(t, art)

	res, err := m.RenderArtwork(context.Background(), art)
	if err != nil {
		t.Fatalf("RenderArtwork() error = %v", err)
	}

	f, err := os.Open(res.Animation)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	g, err := gif.DecodeAll(f)
	if err != nil {
		t.Fatalf("gif.DecodeAll() error = %v", err)
	}
	if len(g.Image) != 10 {
		t.Fatalf("GIF frames = %d, want 10", len(g.Image))
	}
	if g.Delay[0] != 10 || g.LoopCount != 0 {
		t.Errorf("Delay = %d, LoopCount = %d; want 10 and 0", g.Delay[0], g.LoopCount)
	}

	// Playback starts at level 10, where every band is masked, and ends at
	// level 1, where all but the lowest band show.
	start := colorsOf(g.Image[0])
	for i, c := range ramp {
		if start[c] {
			t.Errorf("first GIF frame shows band %d", i)
		}
	}
	end := colorsOf(g.Image[9])
	if end[ramp[0]] || !end[ramp[8]] {
		t.Errorf("last GIF frame: lowest band shown = %v, highest band shown = %v", end[ramp[0]], end[ramp[9]])
	}
}

func TestRenderArtwork_Errors(t *testing.T) {
	m, dir := testManager(t)

	missing := testArtwork(t, dir, model.KindStatic)
	missing.Path = filepath.Join(dir, "nope.tif")
	_, err := m.RenderArtwork(context.Background(), missing)
	var rerr *raster.ReadError
	if !errors.As(err, &rerr) {
		t.Errorf("missing DEM: error = %v, want *raster.ReadError", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.RenderArtwork(ctx, testArtwork(t, dir, model.KindSweep))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("canceled sweep: error = %v, want context.Canceled", err)
	}
}

func TestStartRenders_ContinuesAfterFailure(t *testing.T) {
	m, dir := testManager(t)

	good := testArtwork(t, dir, model.KindStatic)
	bad := good
	bad.Name = "Broken"
	bad.Path = filepath.Join(dir, "missing.tif")

	var events []ProgressEvent
	m.onProgress = func(e ProgressEvent) { events = append(events, e) }
	m.settings.MaxConcurrentArtworks = 1
	m.Add(bad, good)

	err := m.StartRenders(context.Background())
	if err == nil || !strings.Contains(err.Error(), "Broken") {
		t.Fatalf("StartRenders() error = %v, want failure for Broken", err)
	}
	if _, statErr := os.Stat(good.FramePath(m.settings.OutputDir, 0, "png")); statErr != nil {
		t.Errorf("good artwork was not rendered: %v", statErr)
	}

	var sawError bool
	for _, e := range events {
		if e.Level == LevelError {
			sawError = true
		}
	}
	if !sawError {
		t.Errorf("no error event reported")
	}
}

func TestInitialize(t *testing.T) {
	m, dir := testManager(t)
	store, err := metadata.Open(filepath.Join(dir, "metadata.json"))
	if err != nil {
		t.Fatal(err)
	}
	store.Append(testArtwork(t, dir, model.KindStatic))
	second := testArtwork(t, dir, model.KindSweep)
	second.UID = ""
	second.Name = "Second"
	store.Append(second)

	if err := m.Initialize(store, []string{"Atlantis"}, false); err == nil {
		t.Errorf("Initialize() with an unknown key: error = nil")
	}
	var lerr *metadata.LookupError
	if err := m.Initialize(store, []string{"Atlantis"}, false); !errors.As(err, &lerr) {
		t.Errorf("Initialize() error = %v, want *metadata.LookupError", err)
	}

	if err := m.Initialize(store, nil, false); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	names := m.GetArtworkNames()
	if len(names) != 1 || !strings.Contains(names[0], "Second") {
		t.Errorf("GetArtworkNames() = %v, want the newest record", names)
	}
	if _, total := m.GetProgress(); total != 10 {
		t.Errorf("total frames = %d, want 10", total)
	}
}
