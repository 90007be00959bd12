package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/config"
	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/gallery"
	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/library"
	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/loader"
	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/logging"
	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/memory"
	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/metrics"
	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/preview"
	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/startup"
)

const pollInterval = 250 * time.Millisecond

type renderOptions struct {
	outDir      string
	size        string
	workers     int
	metricsAddr string
	pageSize    int
}

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render DIR",
		Short: "Render thumbnails for every media file in a directory",
		Long: "Render walks the directory one page at a time the way a scrolling " +
			"gallery would, rendering the visible rows on the worker pool.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := opts.apply(cmd, cfg); err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runRender(runCtx, cmd, cfg, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outDir, "out", "o", "", "Directory to write thumbnails to (nothing is written when empty)")
	cmd.Flags().StringVar(&opts.size, "size", "", "Thumbnail size as WIDTHxHEIGHT")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Number of render workers (0 = automatic)")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while rendering")
	cmd.Flags().IntVar(&opts.pageSize, "page", 50, "Rows shown per page")

	return cmd
}

// apply copies explicitly set flags over the loaded configuration.
func (o *renderOptions) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("size") {
		cfg.Thumbnails.Size = o.size
	}
	if flags.Changed("workers") {
		cfg.Thumbnails.Workers = o.workers
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Addr = o.metricsAddr
	}
	if o.pageSize <= 0 {
		return fmt.Errorf("--page must be positive, got %d", o.pageSize)
	}
	return cfg.Validate()
}

func runRender(ctx context.Context, cmd *cobra.Command, cfg *config.Config, dir string, opts renderOptions) error {
	memory.ConfigureFromEnv()
	startup.PrintBanner(cmd.ErrOrStderr())
	cfg.Log()

	if cfg.Thumbnails.UseVips {
		preview.InitVips()
		defer preview.ShutdownVips()
	}
	startup.LogRendererInit(cfg.Thumbnails.FFmpegPath, preview.IsVipsAvailable())

	metrics.InitializeMetrics()
	metrics.SetAppInfo(startup.Version, startup.GoVersion)

	if cfg.Metrics.Addr != "" {
		srv, err := startMetricsServer(cfg.Metrics.Addr)
		if err != nil {
			return fmt.Errorf("start metrics server: %w", err)
		}
		defer srv.Shutdown()
	}

	paths, err := library.Scan(dir)
	if err != nil {
		return err
	}

	if opts.outDir != "" {
		if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	monitor := memory.NewMonitor(memory.DefaultConfig())
	monitor.Start()
	defer monitor.Stop()

	gcfg := cfg.GalleryConfig()
	gcfg.Pool.Gate = monitor
	startup.LogPoolInit(gcfg.Pool.Workers, gcfg.Pool.ShutdownTimeout)

	view := &pager{}
	if len(paths) > 0 {
		view.show(0, min(opts.pageSize, len(paths))-1)
	}

	g := gallery.New(gcfg, preview.NewFileRenderer(cfg.RendererConfig()), view)
	rows := newRowSignal()
	g.Cache().AddObserver(rows)

	collector := metrics.NewCollector(g.Cache(), 5*time.Second)
	collector.Start()
	defer collector.Stop()

	controllerCtx, stopController := context.WithCancel(context.Background())
	controllerDone := make(chan struct{})
	go func() {
		defer close(controllerDone)
		_ = g.Run(controllerCtx)
	}()

	g.LoadFiles(paths)

	r := &pageRenderer{
		gallery:  g,
		view:     view,
		signal:   rows,
		outDir:   opts.outDir,
		pageSize: opts.pageSize,
		counts:   make(map[preview.Outcome]int),
	}
	if f, ok := cmd.ErrOrStderr().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		r.progress = f
	}

	renderErr := r.run(ctx, len(paths))

	reason := "render complete"
	if errors.Is(renderErr, context.Canceled) {
		reason = "interrupted"
	}
	startup.LogShutdownInitiated(reason)

	startup.LogShutdownStep("Stopping thumbnail pool")
	if err := g.Close(); err != nil {
		if errors.Is(err, loader.ErrShutdownTimeout) {
			logging.Warn("Thumbnail pool did not stop in time, abandoning running renders")
		} else {
			logging.Error("Thumbnail pool shutdown error: %v", err)
		}
	}
	stopController()
	<-controllerDone
	startup.LogShutdownStepComplete("Thumbnail pool stopped")
	startup.LogShutdownComplete()

	if renderErr != nil {
		return renderErr
	}

	r.printSummary(cmd.OutOrStdout(), len(paths))
	return nil
}

// pageRenderer shows each page in turn and waits for its rows to render.
type pageRenderer struct {
	gallery  *gallery.Gallery
	view     *pager
	signal   *rowSignal
	outDir   string
	pageSize int
	progress io.Writer

	counts map[preview.Outcome]int
	saved  int
	done   int
}

func (r *pageRenderer) run(ctx context.Context, total int) error {
	for first := 0; first < total; first += r.pageSize {
		last := min(first+r.pageSize, total) - 1
		r.view.show(first, last)
		r.gallery.LoadVisible()

		if err := r.waitForPage(ctx, first, last); err != nil {
			return err
		}
		if err := r.collect(first, last); err != nil {
			return err
		}
		r.reportProgress(total)
	}
	if r.progress != nil && total > 0 {
		fmt.Fprintln(r.progress)
	}
	return nil
}

func (r *pageRenderer) waitForPage(ctx context.Context, first, last int) error {
	cache := r.gallery.Cache()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		missing := 0
		for row := first; row <= last; row++ {
			if !cache.IsRendered(row) {
				missing++
			}
		}
		if missing == 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.signal.ch:
		case <-ticker.C:
		}
	}
}

func (r *pageRenderer) collect(first, last int) error {
	cache := r.gallery.Cache()
	for row := first; row <= last; row++ {
		img, ok := cache.Result(row)
		if !ok {
			continue
		}
		r.counts[img.Outcome]++
		r.done++

		if r.outDir == "" || img.IsPlaceholder() {
			continue
		}
		path := cache.FilePathAt(row)
		target := filepath.Join(r.outDir, filepath.Base(path)+".png")
		if err := imaging.Save(img.Bitmap, target); err != nil {
			return fmt.Errorf("save thumbnail for %s: %w", path, err)
		}
		r.saved++
	}
	return nil
}

func (r *pageRenderer) reportProgress(total int) {
	if r.progress == nil {
		return
	}
	fmt.Fprintf(r.progress, "\rRendered %d/%d", r.done, total)
}

func (r *pageRenderer) printSummary(w io.Writer, total int) {
	fmt.Fprintf(w, "Rendered %d files\n", total)
	for _, outcome := range []preview.Outcome{
		preview.OutcomeRendered,
		preview.OutcomeDecodeFailed,
		preview.OutcomeVideoUnavailable,
		preview.OutcomeUnsupported,
	} {
		if n := r.counts[outcome]; n > 0 {
			fmt.Fprintf(w, "  %-18s %d\n", strings.ReplaceAll(outcome.String(), "_", " ")+":", n)
		}
	}
	if r.outDir != "" {
		fmt.Fprintf(w, "Wrote %d thumbnails to %s\n", r.saved, r.outDir)
	}
}
