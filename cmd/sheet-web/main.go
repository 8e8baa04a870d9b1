package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/filmstriplab/filmstrip/internal/assets"
	"github.com/filmstriplab/filmstrip/internal/browser"
	"github.com/filmstriplab/filmstrip/internal/logging"
	"github.com/filmstriplab/filmstrip/internal/render"
)

// CLI flags
var (
	portFlag        int
	assetRootFlag   string
	galleryRootFlag string
	sessionRootFlag string
	chromePathFlag  string
)

var rootCmd = &cobra.Command{
	Use:   "sheet-web",
	Short: "Web server for the contact sheet editor",
	Long: `Sheet Web serves the contact sheet editor's HTTP API: exporting
sheet state to PNG, listing gallery images, and accepting photo uploads.

Examples:
  sheet-web
  sheet-web --port 9090
  sheet-web --asset-root ./assets --gallery-root ~/Pictures/contact-sheets`,
	Run: runMain,
}

func init() {
	rootCmd.Flags().IntVar(&portFlag, "port", 8080, "Port to listen on")
	rootCmd.Flags().StringVar(&assetRootFlag, "asset-root", "", "Directory overriding the embedded film stock and highlight art")
	rootCmd.Flags().StringVar(&galleryRootFlag, "gallery-root", "", "Directory tree browsable through /api/images")
	rootCmd.Flags().StringVar(&sessionRootFlag, "session-root", "", "Directory for uploaded photos (default: os temp dir)")
	rootCmd.Flags().StringVar(&chromePathFlag, "chrome-path", "", "Chrome binary for the browser export engine")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMain(cmd *cobra.Command, args []string) {
	logging.Init()
	start := time.Now()

	// Uploads default to the gallery root so stored refs resolve as
	// frame sources without extra plumbing.
	if sessionRootFlag == "" {
		if galleryRootFlag != "" {
			sessionRootFlag = galleryRootFlag
		} else {
			sessionRootFlag = os.TempDir()
		}
	}

	// A fresh asset root gets the embedded defaults written out so it
	// can be customized file by file.
	if assetRootFlag != "" {
		if _, err := os.Stat(assetRootFlag); os.IsNotExist(err) {
			if err := assets.Seed(assetRootFlag); err != nil {
				log.Fatal().Err(err).Str("dir", assetRootFlag).Msg("Cannot seed asset root")
			}
			log.Info().Str("dir", assetRootFlag).Msg("Seeded asset root with default art")
		}
	}

	photoDir := galleryRootFlag
	lib := assets.NewLibrary(assetRootFlag, photoDir)
	defer lib.Close()

	srv := newServer(lib, galleryRootFlag, sessionRootFlag, chromePathFlag)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/export", srv.handleExport)
	mux.HandleFunc("/api/export/legacy", srv.handleExportLegacy)
	mux.HandleFunc("/api/images", srv.handleImages)
	mux.HandleFunc("/api/upload", srv.handleUpload)
	if assetRootFlag != "" {
		mux.Handle("/assets/", http.StripPrefix("/assets/",
			http.FileServer(http.Dir(assetRootFlag))))
	}

	// Wrap with logging, CORS for local dev, and gzip.
	handler := withLogging(withCORS(gzhttp.GzipHandler(mux)))

	logging.NewStartupLogger("sheet-web").
		Dir("assetRoot", assetRootFlag).
		Dir("galleryRoot", galleryRootFlag).
		Dir("sessionRoot", sessionRootFlag).
		Feature("browserExport", true).
		Config("chromePath", chromePathFlag).
		InitDuration(time.Since(start)).
		Log()

	addr := fmt.Sprintf(":%d", portFlag)
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpSrv.Shutdown(ctx)
	}()

	log.Info().Int("port", portFlag).Msg("Starting web server")
	fmt.Printf("\n  Contact Sheet API: http://localhost:%d\n\n", portFlag)

	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

// server holds the handlers' shared dependencies.
type server struct {
	lib         *assets.Library
	compose     *render.Renderer
	capture     *browser.Renderer
	galleryRoot string
	sessionRoot string
	chromePath  string

	// exportGate admits one export at a time; a full channel means an
	// export is already running.
	exportGate chan struct{}
}

func newServer(lib *assets.Library, galleryRoot, sessionRoot, chromePath string) *server {
	return &server{
		lib:         lib,
		compose:     render.New(lib),
		capture:     browser.New(lib),
		galleryRoot: galleryRoot,
		sessionRoot: sessionRoot,
		chromePath:  chromePath,
		exportGate:  make(chan struct{}, 1),
	}
}

// --- Middleware ---

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		if strings.HasPrefix(r.URL.Path, "/api/") {
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Dur("duration", time.Since(start)).
				Msg("API request")
		}
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only allow localhost origins; the editor runs locally.
		origin := r.Header.Get("Origin")
		if origin != "" && (strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:")) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
