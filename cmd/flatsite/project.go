package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/rafbgarcia/flatsite"
	"github.com/rafbgarcia/flatsite/internal/config"
)

// project is a loaded configuration with its directories resolved against
// the project root.
type project struct {
	root  string
	cfg   config.Config
	pages string
	out   string
	log   *flatsite.Logger
}

// loadProject reads the config and applies the persistent flags on top.
func loadProject(cmd *cobra.Command) (*project, error) {
	flags := cmd.Flags()
	root, _ := flags.GetString("root")
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	if v, _ := flags.GetString("pages"); v != "" {
		cfg.PagesDir = v
	}
	if v, _ := flags.GetString("out"); v != "" {
		cfg.OutDir = v
	}
	if v, _ := flags.GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return nil, fmt.Errorf("%w: log_level: %v", config.ErrInvalid, err)
	}

	return &project{
		root:  root,
		cfg:   cfg,
		pages: resolveDir(root, cfg.PagesDir),
		out:   resolveDir(root, cfg.OutDir),
		log:   flatsite.NewLoggerTo(os.Stderr, level),
	}, nil
}

func resolveDir(root, dir string) string {
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Join(root, dir)
}

// site opens the page tree.
func (p *project) site() (*flatsite.Site, error) {
	return flatsite.Open(p.pages, flatsite.Options{
		PageExt:   p.cfg.PageExt,
		AssetDirs: p.cfg.AssetDirs(),
	})
}

// assets maps each existing asset directory's build name to its source tree.
func (p *project) assets() map[string]afero.Fs {
	out := map[string]afero.Fs{}
	osfs := afero.NewOsFs()
	for _, d := range []string{p.cfg.APIDir, p.cfg.PublicDir} {
		if d == "" {
			continue
		}
		dir := resolveDir(p.root, d)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		out[filepath.Base(dir)] = afero.NewReadOnlyFs(afero.NewBasePathFs(osfs, dir))
	}
	return out
}

// outFs returns the output directory as a filesystem.
func (p *project) outFs() afero.Fs {
	return afero.NewBasePathFs(afero.NewOsFs(), p.out)
}

// cleanOut removes the output directory. It refuses directories that
// contain the project root or any source directory.
func (p *project) cleanOut() error {
	sources := []string{p.root, p.pages}
	for _, d := range []string{p.cfg.APIDir, p.cfg.PublicDir} {
		if d != "" {
			sources = append(sources, resolveDir(p.root, d))
		}
	}
	for _, src := range sources {
		if within(src, p.out) {
			return fmt.Errorf("%w: refusing to clean %s, it contains %s", config.ErrInvalid, p.out, src)
		}
	}
	return os.RemoveAll(p.out)
}

// within reports whether path is dir or lies below it.
func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// fmtDuration formats a duration as a human-friendly string (e.g. "12ms", "1.3s").
func fmtDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
