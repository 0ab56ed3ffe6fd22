package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/handiism/topoart/internal/config"
	"github.com/handiism/topoart/internal/metadata"
	"github.com/handiism/topoart/internal/pipeline"
)

func main() {
	// Command line flags
	var (
		configFlag   = flag.String("config", "", "Path to config file")
		outputFlag   = flag.String("output", "", "Output directory (overrides config)")
		metadataFlag = flag.String("metadata", "", "Metadata JSON file (overrides config)")
		formatFlag   = flag.String("format", "", "Frame image format: png or jpg (overrides config)")
		sizeFlag     = flag.Int("size", 0, "Image size in pixels (overrides config)")
		jobsFlag     = flag.Int("jobs", 0, "Artworks rendered at once (overrides config)")
		allFlag      = flag.Bool("all", false, "Render every record")
		fetchFlag    = flag.Bool("fetch", false, "Download missing DEMs")
		verboseFlag  = flag.Bool("verbose", false, "Show verbose output")
		dryRunFlag   = flag.Bool("dry-run", false, "List the frames without rendering")
		paletteFlag  = flag.Bool("print-palette", false, "Print the active palette as JSON and exit")
	)

	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "topoart - Render contour art from elevation data")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  topoart [options] [NAME|UID ...]")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Without a record key the newest record is rendered.")
		fmt.Fprintln(os.Stderr, "To create records interactively, use: topoart-tui")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}
	flag.Parse()

	// Load config
	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// Apply flags
	if *outputFlag != "" {
		settings.OutputDir = *outputFlag
	}
	if *metadataFlag != "" {
		settings.MetadataPath = *metadataFlag
	}
	if *formatFlag != "" {
		settings.ImageFormat = *formatFlag
	}
	if *sizeFlag > 0 {
		settings.ImageSize = *sizeFlag
	}
	if *jobsFlag > 0 {
		settings.MaxConcurrentArtworks = *jobsFlag
	}
	if *fetchFlag {
		settings.FetchMissingDEM = true
	}

	if *paletteFlag {
		p, err := settings.LoadPalette()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading palette: %v\n", err)
			os.Exit(1)
		}
		data, err := json.MarshalIndent(p, "", "    ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding palette: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
		return
	}

	// Handle interrupts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted, cancelling...")
		cancel()
	}()

	// Create manager with progress callback
	manager, err := pipeline.NewManager(settings, func(event pipeline.ProgressEvent) {
		if event.Level == pipeline.LevelVerbose && !*verboseFlag {
			return
		}

		prefix := ""
		switch event.Level {
		case pipeline.LevelError:
			prefix = "✗ "
		case pipeline.LevelWarning:
			prefix = "! "
		case pipeline.LevelSuccess:
			prefix = "✓ "
		case pipeline.LevelInfo:
			prefix = "› "
		default:
			prefix = "  "
		}

		fmt.Println(prefix + event.Message)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("⛰ topoart")
	fmt.Println("────────────────────────────────────────")
	fmt.Println()

	store, err := metadata.Open(settings.MetadataPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading metadata: %v\n", err)
		os.Exit(1)
	}
	if err := manager.Initialize(store, flag.Args(), *allFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error selecting records: %v\n", err)
		os.Exit(1)
	}

	if *dryRunFlag {
		fmt.Println("\n[Dry run - not rendering]")
		for _, art := range manager.Artworks() {
			frames, err := manager.Plan(art)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error planning %s: %v\n", art.Name, err)
				os.Exit(1)
			}
			for _, f := range frames {
				fmt.Printf("  %s\n", f.Path)
				if *verboseFlag {
					fmt.Printf("    %s\n", strings.Join(f.Ramp.Hex(), " "))
				}
			}
		}
		return
	}

	fmt.Println("\nRendering...")
	fmt.Println()

	if err := manager.StartRenders(ctx); err != nil {
		if ctx.Err() != nil {
			fmt.Println("\nRender cancelled.")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error during render: %v\n", err)
		os.Exit(1)
	}

	rendered, total := manager.GetProgress()
	fmt.Println()
	fmt.Println("────────────────────────────────────────")
	fmt.Printf("✨ Complete! Rendered %d/%d frames\n", rendered, total)
}
