package render_test

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/itinerary-export/internal/render"
)

func fixedSource(name, path string, err error, calls *[]string) render.BrowserSource {
	return render.BrowserSource{
		Name: name,
		Locate: func(context.Context) (string, error) {
			*calls = append(*calls, name)
			return path, err
		},
	}
}

func TestResolveBrowser_FirstSuccessWins(t *testing.T) {
	var calls []string

	path, err := render.ResolveBrowser(context.Background(),
		fixedSource("a", "", errors.New("missing"), &calls),
		fixedSource("b", "/usr/bin/chromium", nil, &calls),
		fixedSource("c", "/opt/chrome", nil, &calls),
	)

	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/chromium", path)
	assert.Equal(t, []string{"a", "b"}, calls, "sources after the first success are not tried")
}

func TestResolveBrowser_AllFail(t *testing.T) {
	var calls []string

	_, err := render.ResolveBrowser(context.Background(),
		fixedSource("a", "", errors.New("missing a"), &calls),
		fixedSource("b", "", nil, &calls),
	)

	require.ErrorIs(t, err, render.ErrNoBrowser)
	assert.ErrorContains(t, err, "missing a")
	assert.ErrorContains(t, err, "b: empty path")
	assert.Equal(t, []string{"a", "b"}, calls)
}

func TestResolveBrowser_NoSources(t *testing.T) {
	_, err := render.ResolveBrowser(context.Background())

	assert.ErrorIs(t, err, render.ErrNoBrowser)
}

func TestExplicitPath(t *testing.T) {
	exe := filepath.Join(t.TempDir(), "chrome")
	require.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\n"), 0o755))

	got, err := render.ExplicitPath(exe).Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, exe, got)

	_, err = render.ExplicitPath(filepath.Join(t.TempDir(), "missing")).Locate(context.Background())
	assert.Error(t, err)
}

func TestDefaultSources_Order(t *testing.T) {
	srcs := render.DefaultSources("/opt/chrome", true)

	require.Len(t, srcs, 3)
	assert.Equal(t, "path /opt/chrome", srcs[0].Name)
	assert.Equal(t, "$PATH", srcs[1].Name)
	assert.Equal(t, "download", srcs[2].Name)
	assert.Len(t, render.DefaultSources("", false), 1)
}

// chromeAvailable reports whether a Chrome/Chromium executable is in PATH.
func chromeAvailable() bool {
	for _, name := range []string{
		"chromium-browser", "chromium", "google-chrome",
		"google-chrome-stable", "chrome",
	} {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}
	return false
}

func TestChromeRenderer_NoBrowser(t *testing.T) {
	c := render.NewChromeRenderer(render.NewHTMLRenderer(), render.DefaultPageConfig(),
		render.WithBrowserSources(render.ExplicitPath(filepath.Join(t.TempDir(), "nope"))))
	t.Cleanup(func() { c.Close() })

	_, err := c.Render(context.Background(), documentFixture(t))

	assert.ErrorIs(t, err, render.ErrNoBrowser)
}

func TestChromeRenderer_Closed(t *testing.T) {
	c := render.NewChromeRenderer(render.NewHTMLRenderer(), render.DefaultPageConfig())
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	_, err := c.Render(context.Background(), documentFixture(t))

	assert.ErrorIs(t, err, render.ErrClosed)
}

func TestChromeRenderer_PrintsPDF(t *testing.T) {
	if !chromeAvailable() {
		t.Skip("skipping: Chrome/Chromium not found in PATH")
	}
	c := render.NewChromeRenderer(render.NewHTMLRenderer(), render.DefaultPageConfig(),
		render.WithNoSandbox(), render.WithStartTimeout(30*time.Second))
	t.Cleanup(func() { c.Close() })

	res, err := c.Render(context.Background(), documentFixture(t))

	require.NoError(t, err)
	assert.True(t, isPDF(res.Bytes()), "output is not a PDF")
	assert.Equal(t, "pdf", res.Ext())
}
