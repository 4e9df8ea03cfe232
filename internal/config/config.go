// Package config loads build settings from flatsite.yaml and FLATSITE_*
// environment variables. CLI flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file looked up in the project root.
const FileName = "flatsite.yaml"

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all build and preview settings. Directory fields are
// relative to the project root unless absolute.
type Config struct {
	PagesDir    string `yaml:"pages_dir"`
	OutDir      string `yaml:"out_dir"`
	PublicDir   string `yaml:"public_dir"`
	APIDir      string `yaml:"api_dir"`
	PageExt     string `yaml:"page_ext"`
	Minify      bool   `yaml:"minify"`
	Concurrency int    `yaml:"concurrency"`
	Port        string `yaml:"port"`
	LogLevel    string `yaml:"log_level"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		PagesDir:    "pages",
		OutDir:      "dist",
		PublicDir:   "public",
		APIDir:      "api",
		PageExt:     ".html",
		Concurrency: runtime.NumCPU(),
		Port:        "3000",
		LogLevel:    "info",
	}
}

// Load builds a Config from defaults, the project's flatsite.yaml (if
// present) and the environment, in that order of precedence.
func Load(projectRoot string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filepath.Join(projectRoot, FileName))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", FileName, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return Config{}, fmt.Errorf("reading %s: %w", FileName, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.PagesDir = envOr("FLATSITE_PAGES_DIR", c.PagesDir)
	c.OutDir = envOr("FLATSITE_OUT_DIR", c.OutDir)
	c.PublicDir = envOr("FLATSITE_PUBLIC_DIR", c.PublicDir)
	c.APIDir = envOr("FLATSITE_API_DIR", c.APIDir)
	c.PageExt = envOr("FLATSITE_PAGE_EXT", c.PageExt)
	c.Port = envOr("FLATSITE_PORT", c.Port)
	c.LogLevel = envOr("FLATSITE_LOG_LEVEL", c.LogLevel)
	c.Minify = envBoolOr("FLATSITE_MINIFY", c.Minify)

	if v, ok := os.LookupEnv("FLATSITE_CONCURRENCY"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: FLATSITE_CONCURRENCY %q: %v", ErrInvalid, v, err)
		}
		c.Concurrency = n
	}
	return nil
}

// Validate checks values that would otherwise fail deep inside a build.
func (c Config) Validate() error {
	if c.PagesDir == "" {
		return fmt.Errorf("%w: pages_dir is empty", ErrInvalid)
	}
	if c.OutDir == "" {
		return fmt.Errorf("%w: out_dir is empty", ErrInvalid)
	}
	if filepath.Clean(c.OutDir) == filepath.Clean(c.PagesDir) {
		return fmt.Errorf("%w: out_dir and pages_dir are both %q", ErrInvalid, c.OutDir)
	}
	if !strings.HasPrefix(c.PageExt, ".") || len(c.PageExt) < 2 {
		return fmt.Errorf("%w: page_ext %q must start with a dot", ErrInvalid, c.PageExt)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be at least 1, got %d", ErrInvalid, c.Concurrency)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log_level %q: must be debug, info, warn or error", ErrInvalid, c.LogLevel)
	}
	return nil
}

// AssetDirs returns the top-level build directories copied verbatim. The
// result is never nil: with both directories unset no URL bypasses route
// resolution, rather than falling back to the defaults.
func (c Config) AssetDirs() []string {
	dirs := []string{}
	for _, d := range []string{c.APIDir, c.PublicDir} {
		if d != "" {
			dirs = append(dirs, filepath.Base(d))
		}
	}
	return dirs
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		return v == "1" || v == "true" || v == "yes"
	}
	return fallback
}
