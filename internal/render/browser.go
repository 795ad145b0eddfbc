package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/go-rod/rod/lib/launcher"
)

// ErrNoBrowser is returned when every browser source failed.
var ErrNoBrowser = errors.New("render: no Chrome/Chromium executable found")

// BrowserSource is one place a Chrome executable may come from.
type BrowserSource struct {
	Name   string
	Locate func(ctx context.Context) (string, error)
}

// ExplicitPath uses a configured executable path if it exists.
func ExplicitPath(path string) BrowserSource {
	return BrowserSource{
		Name: "path " + path,
		Locate: func(context.Context) (string, error) {
			if _, err := os.Stat(path); err != nil {
				return "", err
			}
			return path, nil
		},
	}
}

// SearchPath looks names up in $PATH, first hit wins.
func SearchPath(names ...string) BrowserSource {
	if len(names) == 0 {
		names = []string{"chromium-browser", "chromium", "google-chrome", "google-chrome-stable", "chrome"}
	}
	return BrowserSource{
		Name: "$PATH",
		Locate: func(context.Context) (string, error) {
			for _, n := range names {
				if p, err := exec.LookPath(n); err == nil {
					return p, nil
				}
			}
			return "", fmt.Errorf("none of %v in PATH", names)
		},
	}
}

// Download fetches a compatible Chromium build into rod's cache
// (~/.cache/rod/browser) unless one is already there.
func Download() BrowserSource {
	return BrowserSource{
		Name: "download",
		Locate: func(context.Context) (string, error) {
			return launcher.NewBrowser().Get()
		},
	}
}

// DefaultSources is the configured path (if any), then $PATH, then a
// download when autoDownload is set.
func DefaultSources(chromePath string, autoDownload bool) []BrowserSource {
	var srcs []BrowserSource
	if chromePath != "" {
		srcs = append(srcs, ExplicitPath(chromePath))
	}
	srcs = append(srcs, SearchPath())
	if autoDownload {
		srcs = append(srcs, Download())
	}
	return srcs
}

// ResolveBrowser tries sources in order and returns the first executable
// found. When all fail the error wraps ErrNoBrowser and every source error.
func ResolveBrowser(ctx context.Context, sources ...BrowserSource) (string, error) {
	errs := []error{ErrNoBrowser}
	for _, s := range sources {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		path, err := s.Locate(ctx)
		if err == nil && path != "" {
			return path, nil
		}
		if err == nil {
			err = errors.New("empty path")
		}
		errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
	}
	return "", errors.Join(errs...)
}
