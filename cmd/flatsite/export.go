package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rafbgarcia/flatsite/internal/export"
	"github.com/rafbgarcia/flatsite/internal/watcher"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Build the page tree into the output directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("minify") {
				p.cfg.Minify, _ = cmd.Flags().GetBool("minify")
			}
			if cmd.Flags().Changed("concurrency") {
				p.cfg.Concurrency, _ = cmd.Flags().GetInt("concurrency")
			}
			watch, _ := cmd.Flags().GetBool("watch")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			if err := runExport(ctx, out, p); err != nil {
				return err
			}
			if !watch {
				return nil
			}
			return watchExport(ctx, out, p)
		},
	}
	cmd.Flags().Bool("minify", false, "minify .js and .css assets (overrides config)")
	cmd.Flags().Int("concurrency", 0, "parallel page and asset writes (overrides config)")
	cmd.Flags().Bool("watch", false, "re-export when pages or assets change")
	return cmd
}

// runExport cleans the output directory and exports into it, printing a
// progress line.
func runExport(ctx context.Context, w io.Writer, p *project) error {
	fmt.Fprint(w, "  Export ......... ")
	t := time.Now()

	res, err := exportOnce(ctx, p)
	if err != nil {
		fmt.Fprintln(w, "FAILED")
		return err
	}
	fmt.Fprintf(w, "done (%d pages, %d assets) [%s]\n", res.Pages, res.Assets, fmtDuration(time.Since(t)))
	return nil
}

func exportOnce(ctx context.Context, p *project) (export.Result, error) {
	site, err := p.site()
	if err != nil {
		return export.Result{}, err
	}
	// An invalid tree must not wipe the previous build.
	if _, err := export.Check(site); err != nil {
		return export.Result{}, err
	}
	if err := p.cleanOut(); err != nil {
		return export.Result{}, err
	}
	return export.Run(ctx, export.Options{
		Site:        site,
		Assets:      p.assets(),
		Out:         p.outFs(),
		Minify:      p.cfg.Minify,
		Concurrency: p.cfg.Concurrency,
		Log:         p.log,
	})
}

// watchExport re-exports after every batch of changes until ctx is done.
// A failed rebuild is reported and watching continues.
func watchExport(ctx context.Context, w io.Writer, p *project) error {
	dirs := []watcher.Dir{{Path: p.pages, Kind: "page"}}
	for _, d := range []string{p.cfg.APIDir, p.cfg.PublicDir} {
		if d != "" {
			dirs = append(dirs, watcher.Dir{Path: resolveDir(p.root, d), Kind: "asset"})
		}
	}

	batches := make(chan []watcher.Event, 16)
	wt := watcher.New(dirs, func(batch []watcher.Event) {
		select {
		case batches <- batch:
		case <-ctx.Done():
		}
	})
	watchErrs := make(chan error, 16)
	wt.OnError = func(err error) {
		select {
		case watchErrs <- err:
		case <-ctx.Done():
		}
	}
	if err := wt.Start(); err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer wt.Stop()

	fmt.Fprintln(w, "\n  Watching for changes...")

	for {
		select {
		case batch := <-batches:
			fmt.Fprintln(w)
			for _, ev := range batch {
				rel, err := filepath.Rel(p.root, ev.Path)
				if err != nil {
					rel = ev.Path
				}
				fmt.Fprintf(w, "  [%s] %s\n", ev.Kind, rel)
			}
			if err := runExport(ctx, w, p); err != nil {
				fmt.Fprintf(w, "  %s\n", err)
			}

		case err := <-watchErrs:
			fmt.Fprintf(w, "  [watch] %s\n", err)

		case <-ctx.Done():
			return nil
		}
	}
}
