package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/handiism/topoart/internal/config"
	"github.com/handiism/topoart/internal/dem"
	"github.com/handiism/topoart/internal/geo"
	ioutils "github.com/handiism/topoart/internal/io"
	"github.com/handiism/topoart/internal/metadata"
	"github.com/handiism/topoart/internal/model"
	"github.com/handiism/topoart/internal/palette"
	"github.com/handiism/topoart/internal/raster"
	"github.com/handiism/topoart/internal/render"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a render progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// boxDecimals is the precision of the box sent to the DEM service.
const boxDecimals = 4

// Result lists the files written for one artwork.
type Result struct {
	Frames    []string
	Animation string // empty for static artworks
}

// Manager coordinates artwork renders.
type Manager struct {
	settings     *config.Settings
	palette      palette.Palette
	background   color.RGBA
	renderer     *render.Renderer
	imageService *ioutils.ImageService
	dem          *dem.Client

	artworks       []model.Artwork
	totalFrames    int32
	renderedFrames int32

	onProgress func(ProgressEvent)
	mu         sync.RWMutex
}

// NewManager creates a new Manager. The fixed palette is loaded once here.
func NewManager(settings *config.Settings, onProgress func(ProgressEvent)) (*Manager, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	pal, err := settings.LoadPalette()
	if err != nil {
		return nil, err
	}
	opts, err := settings.ToRenderOptions()
	if err != nil {
		return nil, err
	}
	renderer, err := render.NewRenderer(opts)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		settings:     settings,
		palette:      pal,
		background:   opts.Background,
		renderer:     renderer,
		imageService: ioutils.NewImageService(),
		dem:          dem.NewClient(settings.ToDEMConfig()),
		onProgress:   onProgress,
	}
	m.dem.OnRetry = func(attempt int, err error) {
		m.progress(ProgressEvent{Message: fmt.Sprintf("DEM request failed (attempt %d): %v", attempt, err), Level: LevelWarning})
	}
	return m, nil
}

// Initialize selects the artworks to render from store: the records named by
// keys, every record when all is set, or the newest record when neither is
// given. Any key that does not match exactly one record fails the call.
func (m *Manager) Initialize(store *metadata.Store, keys []string, all bool) error {
	var selected []model.Artwork
	switch {
	case all:
		selected = store.All()
	case len(keys) == 0:
		art, err := store.Last()
		if err != nil {
			return err
		}
		selected = append(selected, art)
	default:
		var errs []error
		for _, key := range keys {
			art, err := store.Locate(key)
			if err != nil {
				m.progress(ProgressEvent{Message: err.Error(), Level: LevelError})
				errs = append(errs, err)
				continue
			}
			selected = append(selected, art)
		}
		if err := errors.Join(errs...); err != nil {
			return err
		}
	}

	m.Add(selected...)
	return nil
}

// Add queues artworks for StartRenders.
func (m *Manager) Add(artworks ...model.Artwork) {
	m.mu.Lock()
	for _, art := range artworks {
		m.artworks = append(m.artworks, art)
		m.totalFrames += int32(frameCount(art))
	}
	m.mu.Unlock()

	for _, art := range artworks {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Found artwork: %s", art), Level: LevelInfo})
	}
}

func frameCount(art model.Artwork) int {
	if art.Kind.IsSweep() {
		return art.Levels
	}
	return 1
}

// StartRenders renders every queued artwork. Failures are reported as they
// happen and returned together once all artworks are done.
func (m *Manager) StartRenders(ctx context.Context) error {
	artworks := m.Artworks()

	var g errgroup.Group
	g.SetLimit(m.settings.MaxConcurrentArtworks)

	var (
		errMu sync.Mutex
		errs  []error
	)
	for _, art := range artworks {
		g.Go(func() error {
			if _, err := m.RenderArtwork(ctx, art); err != nil {
				m.progress(ProgressEvent{Message: fmt.Sprintf("Error rendering %s: %v", art.Name, err), Level: LevelError})
				errMu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", art.Name, err))
				errMu.Unlock()
			}
			return nil
		})
	}
	g.Wait()

	return errors.Join(errs...)
}

// GetProgress returns the number of frames written so far and the total
// expected for the queued artworks.
func (m *Manager) GetProgress() (rendered, total int32) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return atomic.LoadInt32(&m.renderedFrames), m.totalFrames
}

// Artworks returns a copy of the queued artworks.
func (m *Manager) Artworks() []model.Artwork {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.Artwork(nil), m.artworks...)
}

// GetArtworkNames returns the queued artworks, one line each.
func (m *Manager) GetArtworkNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, len(m.artworks))
	for i, art := range m.artworks {
		names[i] = art.String()
	}
	return names
}

// Plan returns the frames art would produce without rendering them.
func (m *Manager) Plan(art model.Artwork) ([]model.FrameSpec, error) {
	ramp, err := palette.BuildRamp(m.palette, art.MinColor, art.MaxColor, art.Levels)
	if err != nil {
		return nil, err
	}
	ext := m.settings.ImageExt()
	if art.Kind.IsSweep() {
		return PlanSweep(art, m.settings.OutputDir, ext, ramp, m.background), nil
	}
	return []model.FrameSpec{PlanStatic(art, m.settings.OutputDir, ext, ramp)}, nil
}

// RenderArtwork renders one artwork and returns the files it wrote.
func (m *Manager) RenderArtwork(ctx context.Context, art model.Artwork) (*Result, error) {
	if err := m.ensureDEM(ctx, art); err != nil {
		return nil, err
	}

	grid, err := raster.Ingest(art.Path)
	if err != nil {
		return nil, err
	}
	ramp, err := palette.BuildRamp(m.palette, art.MinColor, art.MaxColor, art.Levels)
	if err != nil {
		return nil, err
	}
	bands, err := render.NewBands(grid, art.Levels)
	if err != nil {
		return nil, err
	}
	if err := ioutils.EnsureDir(art.Dir(m.settings.OutputDir)); err != nil {
		return nil, err
	}

	job := render.Job{Grid: grid, Bands: bands, Lines: art.Lines, Title: Title(art, ramp)}
	if !art.Kind.IsSweep() {
		frame := PlanStatic(art, m.settings.OutputDir, m.settings.ImageExt(), ramp)
		if err := m.renderFrame(ctx, job, frame); err != nil {
			return nil, err
		}
		m.progress(ProgressEvent{Message: fmt.Sprintf("Rendered %s", frame.Path), Level: LevelSuccess})
		return &Result{Frames: []string{frame.Path}}, nil
	}
	return m.renderSweep(ctx, art, job, ramp, bands)
}

func (m *Manager) renderSweep(ctx context.Context, art model.Artwork, job render.Job, ramp palette.Ramp, bands *render.Bands) (*Result, error) {
	frames := PlanSweep(art, m.settings.OutputDir, m.settings.ImageExt(), ramp, m.background)

	paths := make([]string, 0, len(frames))
	for _, frame := range frames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := m.renderFrame(ctx, job, frame); err != nil {
			return nil, fmt.Errorf("frame %d: %w", frame.Level, err)
		}
		paths = append(paths, frame.Path)
		m.progress(ProgressEvent{Message: fmt.Sprintf("%s: frame %d/%d", art.Name, frame.Level, len(frames)), Level: LevelVerbose})
	}

	// The GIF table holds every band, line and background color exactly.
	colors := append(palette.Ramp{m.background}, ramp...)
	if lineColors, err := render.LineColors(art.Lines, bands); err == nil {
		colors = append(colors, lineColors...)
	}

	out := art.AnimationPath(m.settings.OutputDir)
	err := m.imageService.EncodeGIF(ctx, PlaybackOrder(paths, art.Kind.Reversed()), out, ioutils.GIFOptions{
		Delay:   m.settings.FrameDelay(),
		MaxSize: m.settings.GIFMaxSize,
		Palette: ioutils.FramePalette(colors...),
	})
	if err != nil {
		return nil, err
	}
	m.progress(ProgressEvent{Message: fmt.Sprintf("Rendered %s (%d frames)", out, len(paths)), Level: LevelSuccess})
	return &Result{Frames: paths, Animation: out}, nil
}

func (m *Manager) renderFrame(ctx context.Context, job render.Job, frame model.FrameSpec) error {
	job.Ramp = frame.Ramp
	img, err := m.renderer.Render(job)
	if err != nil {
		return err
	}
	if err := m.imageService.SaveImage(ctx, img, frame.Path); err != nil {
		return err
	}
	atomic.AddInt32(&m.renderedFrames, 1)
	return nil
}

// ensureDEM fetches the artwork's raster when it is missing and fetching is
// enabled.
func (m *Manager) ensureDEM(ctx context.Context, art model.Artwork) error {
	if ioutils.FileExists(art.Path) {
		return nil
	}
	box := geo.BoxAroundPoint(art.Latitude, art.Longitude, art.Radius, boxDecimals)
	if !m.settings.FetchMissingDEM {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Missing DEM %s; create it with: %s", art.Path, dem.EIOCommand(box, art.Path)), Level: LevelVerbose})
		return nil
	}

	m.progress(ProgressEvent{Message: fmt.Sprintf("Fetching DEM for %s: %s", art.Name, box), Level: LevelInfo})
	if err := m.dem.Fetch(ctx, box, art.Path, nil); err != nil {
		return err
	}
	m.progress(ProgressEvent{Message: fmt.Sprintf("Saved DEM %s", art.Path), Level: LevelVerbose})
	return nil
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
