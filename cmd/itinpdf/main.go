// Command itinpdf renders a trip from a JSON file to PDF, HTML, or a page
// plan.
//
//	itinpdf [flags] trips.json
//
// The file may hold a single trip or a collection; pick one from a
// collection with -trip.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pkordes/itinerary-export/internal/domain"
	"github.com/pkordes/itinerary-export/internal/itinerary"
	"github.com/pkordes/itinerary-export/internal/render"
	"github.com/pkordes/itinerary-export/internal/repo"
	"github.com/pkordes/itinerary-export/internal/service"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	switch {
	case err == nil:
	case errors.Is(err, flag.ErrHelp):
	case errors.Is(err, errUsage):
		os.Exit(2)
	default:
		fmt.Fprintln(os.Stderr, "itinpdf:", err)
		os.Exit(1)
	}
}

var errUsage = errors.New("usage")

type options struct {
	out        string
	format     string
	backend    string
	trip       string
	strategy   string
	maxDays    int
	pageHeight float64
	locale     string
	chromePath string
	download   bool
	timeout    time.Duration
	verbose    bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("itinpdf", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: itinpdf [flags] trips.json")
		fs.PrintDefaults()
	}

	var o options
	fs.StringVar(&o.out, "o", "", "output file; \"-\" for stdout (default {name}-itinerary.{ext})")
	fs.StringVar(&o.format, "format", "pdf", "output format: pdf, html, or plan")
	fs.StringVar(&o.backend, "backend", "draw", "PDF backend: draw or chrome")
	fs.StringVar(&o.trip, "trip", "", "trip id or name to export from a collection")
	fs.StringVar(&o.strategy, "strategy", "", "layout strategy: fixed or height")
	fs.IntVar(&o.maxDays, "max-days", domain.DefaultMaxItemsPerPage, "maximum days per page")
	fs.Float64Var(&o.pageHeight, "page-height", 0, "page height budget in mm; selects the height strategy")
	fs.StringVar(&o.locale, "locale", os.Getenv("TITLE_LOCALE"), "locale for day titles ("+strings.Join(itinerary.SupportedLocales(), ", ")+")")
	fs.StringVar(&o.chromePath, "chrome-path", os.Getenv("CHROME_PATH"), "Chrome executable for the chrome backend")
	fs.BoolVar(&o.download, "download-chrome", false, "download Chrome when none is installed")
	fs.DurationVar(&o.timeout, "timeout", 30*time.Second, "render timeout")
	fs.BoolVar(&o.verbose, "v", false, "verbose logging")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errUsage
	}

	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	// Only flags the user set override the layout defaults.
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	trip, err := selectTrip(ctx, fs.Arg(0), o.trip, logger)
	if err != nil {
		return err
	}

	formatter, err := itinerary.FormatterFor(o.locale)
	if err != nil {
		return err
	}

	page := render.DefaultPageConfig()
	html := render.NewHTMLRenderer()
	reg, err := render.NewRegistry("draw",
		render.NewDrawRenderer(page),
		html,
		render.NewChromeRenderer(html, page,
			render.WithBrowserSources(render.DefaultSources(o.chromePath, o.download)...),
			render.WithTimeout(o.timeout),
			render.WithLogger(logger),
		),
	)
	if err != nil {
		return err
	}
	defer reg.Close()

	export := service.NewExportService(itinerary.NewBuilder(formatter), reg, domain.DefaultLayoutPolicy(), logger)

	var strategy *string
	var maxDays *int
	var pageHeight *float64
	if set["strategy"] {
		strategy = &o.strategy
	}
	if set["max-days"] {
		maxDays = &o.maxDays
	}
	if set["page-height"] {
		pageHeight = &o.pageHeight
	}
	policy, err := domain.NewLayoutPolicy(export.DefaultPolicy(), strategy, maxDays, pageHeight)
	if err != nil {
		return err
	}

	switch o.format {
	case "plan":
		plan, err := export.Plan(trip, policy)
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(plan, "", "  ")
		if err != nil {
			return err
		}
		return writeOutput(stdout, o.out, service.Filename(trip, "json"), append(data, '\n'), logger)

	case "html", "pdf":
		backend := o.backend
		if o.format == "html" {
			backend = "html"
		}
		res, err := export.Export(ctx, trip, service.ExportOptions{Backend: backend, Policy: policy})
		if err != nil {
			return err
		}
		logger.Debug("rendered", "backend", backend, "pages", res.Pages(), "bytes", res.Len())
		return writeOutput(stdout, o.out, service.Filename(trip, res.Ext()), res.Bytes(), logger)

	default:
		return fmt.Errorf("unknown format %q (want pdf, html, or plan)", o.format)
	}
}

// selectTrip reads path through a file store and picks the trip to export.
// A collection of more than one trip needs a name or id.
func selectTrip(ctx context.Context, path, want string, logger *slog.Logger) (domain.Trip, error) {
	trips := service.NewTripService(repo.NewFileStore(path), logger)

	if want != "" {
		return trips.Get(ctx, want)
	}

	all, err := trips.List(ctx)
	if err != nil {
		return domain.Trip{}, err
	}
	switch len(all) {
	case 0:
		return domain.Trip{}, fmt.Errorf("%s: no trips found", path)
	case 1:
		return all[0], nil
	}
	names := make([]string, len(all))
	for i, t := range all {
		names[i] = t.Name
	}
	return domain.Trip{}, fmt.Errorf("%s holds %d trips; choose one with -trip (%s)", path, len(all), strings.Join(names, ", "))
}

func writeOutput(stdout io.Writer, out, fallback string, data []byte, logger *slog.Logger) error {
	if out == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if out == "" {
		out = fallback
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}
	logger.Info("wrote export", "path", out, "bytes", len(data))
	fmt.Fprintln(stdout, out)
	return nil
}
