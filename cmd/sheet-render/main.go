package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/filmstriplab/filmstrip/internal/assets"
	"github.com/filmstriplab/filmstrip/internal/browser"
	"github.com/filmstriplab/filmstrip/internal/imaging"
	"github.com/filmstriplab/filmstrip/internal/logging"
	"github.com/filmstriplab/filmstrip/internal/render"
	"github.com/filmstriplab/filmstrip/internal/sheet"
)

// CLI flags
var (
	inFlag         string
	outFlag        string
	scaleFlag      float64
	rotationFlag   float64
	stockFlag      string
	engineFlag     string
	assetRootFlag  string
	photoDirFlag   string
	chromePathFlag string
	timeoutFlag    time.Duration
)

// rootCmd is the main Cobra command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "sheet-render",
	Short: "Render saved contact sheet state to a PNG",
	Long: `Sheet Render reads a contact sheet state file (the JSON the web
editor exports) and composes it into a PNG, without a browser in the
loop unless the browser engine is requested.

Examples:
  sheet-render --in sheet.json --out sheet.png
  sheet-render --in sheet.json --out print.png --scale 3
  sheet-render --in sheet.json --out tilted.png --rotation 7.5 --stock hp5
  cat sheet.json | sheet-render --out sheet.png --engine browser`,
	Run: runMain,
}

func init() {
	rootCmd.Flags().StringVar(&inFlag, "in", "-", "State JSON file ('-' reads stdin)")
	rootCmd.Flags().StringVarP(&outFlag, "out", "o", "sheet.png", "Output PNG path")
	rootCmd.Flags().Float64Var(&scaleFlag, "scale", 0, "DPI scale override (0 keeps the state's value)")
	rootCmd.Flags().Float64Var(&rotationFlag, "rotation", 0, "Whole-sheet rotation override in degrees")
	rootCmd.Flags().StringVar(&stockFlag, "stock", "", "Film stock override (portra400, trix400, hp5)")
	rootCmd.Flags().StringVar(&engineFlag, "engine", "compose", "Render engine: compose or browser")
	rootCmd.Flags().StringVar(&assetRootFlag, "asset-root", "", "Directory overriding the embedded film stock and highlight art")
	rootCmd.Flags().StringVar(&photoDirFlag, "photo-dir", "", "Directory frame filenames resolve against")
	rootCmd.Flags().StringVar(&chromePathFlag, "chrome-path", "", "Chrome binary for the browser engine")
	rootCmd.Flags().DurationVar(&timeoutFlag, "timeout", 45*time.Second, "Render wall-clock bound")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMain(cmd *cobra.Command, args []string) {
	logging.Init()

	snap, err := readState(inFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot read sheet state")
	}
	if stockFlag != "" {
		snap.FilmStock = stockFlag
	}
	if scaleFlag > 0 {
		snap.Scale = scaleFlag
	}
	if cmd.Flags().Changed("rotation") {
		snap.Rotation = rotationFlag
	}
	if err := snap.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid sheet state")
	}

	lib := assets.NewLibrary(assetRootFlag, photoDirFlag)
	defer lib.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeoutFlag)
	defer cancel()

	start := time.Now()
	var data []byte
	switch engineFlag {
	case "compose":
		img, rerr := render.New(lib).Compose(ctx, snap, render.Options{
			Scale:    snap.Scale,
			Rotation: snap.Rotation,
		})
		if rerr == nil {
			data, rerr = imaging.EncodePNG(img)
		}
		err = rerr
	case "browser":
		data, err = browser.New(lib).Render(ctx, snap, browser.Options{
			Scale:    snap.Scale,
			Rotation: snap.Rotation,
			ExecPath: chromePathFlag,
		})
	default:
		log.Fatal().Str("engine", engineFlag).Msg("Unknown engine")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Render failed")
	}

	if err := os.WriteFile(outFlag, data, 0o644); err != nil {
		log.Fatal().Err(err).Msg("Cannot write output")
	}

	log.Info().
		Str("out", outFlag).
		Int("frames", len(snap.FrameOrder)).
		Dur("duration", time.Since(start)).
		Msg("Render complete")
	fmt.Printf("Wrote %s (%d bytes)\n", outFlag, len(data))
}

func readState(path string) (sheet.Snapshot, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return sheet.Snapshot{}, err
		}
		defer f.Close()
		r = f
	}
	var snap sheet.Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return sheet.Snapshot{}, fmt.Errorf("decode sheet state: %w", err)
	}
	return snap, nil
}
