// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkordes/itinerary-export/internal/domain"
)

// Store backends selectable with STORE_BACKEND.
const (
	StoreGitHub   = "github"
	StorePostgres = "postgres"
	StoreFile     = "file"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of origins allowed to call the read and export
	// routes. Defaults to ["http://localhost:5173"] (Vite dev server).
	CORSOrigins []string

	// MaxBodyBytes caps request bodies. Defaults to 1 MiB.
	MaxBodyBytes int64

	// StoreBackend selects where the trip collection lives: "github",
	// "postgres", or "file".
	StoreBackend string

	// TripsFile is the collection path for the file store.
	TripsFile string

	// DatabaseURL is the Postgres connection string. Required for the postgres store.
	DatabaseURL string

	GitHub GitHubConfig
	Render RenderConfig

	// Layout is the default capacity policy for exports.
	Layout domain.LayoutPolicy

	// TitleLocale selects the day title formatter; empty uses English
	// "Monday, January 2" titles.
	TitleLocale string
}

// GitHubConfig locates the trips file for the github store.
type GitHubConfig struct {
	// Token may be empty at startup; saves then fail as not configured.
	Token  string
	Owner  string
	Repo   string
	Path   string
	Branch string
	APIURL string
}

// RenderConfig configures the PDF backends.
type RenderConfig struct {
	// Backend is the default backend name: draw, chrome, or html.
	Backend      string
	ChromePath   string
	AutoDownload bool
	// NoSandbox disables the Chrome sandbox, needed when running as root in a container.
	NoSandbox bool
	Timeout   time.Duration
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set and any
// values that cannot be parsed.
func Load() (Config, error) {
	cfg := Config{
		Port:         getEnv("PORT", "8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		CORSOrigins:  splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", StoreGitHub)),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		TripsFile:    getEnv("TRIPS_FILE", "data/trips.json"),
		GitHub: GitHubConfig{
			Token:  os.Getenv("GITHUB_TOKEN"),
			Owner:  os.Getenv("GITHUB_OWNER"),
			Repo:   os.Getenv("GITHUB_REPO"),
			Path:   getEnv("GITHUB_PATH", "data/trips.json"),
			Branch: getEnv("GITHUB_BRANCH", "main"),
			APIURL: os.Getenv("GITHUB_API_URL"),
		},
		Render: RenderConfig{
			Backend:    getEnv("RENDER_BACKEND", "draw"),
			ChromePath: os.Getenv("CHROME_PATH"),
		},
		TitleLocale: os.Getenv("TITLE_LOCALE"),
	}

	p := &parser{}
	cfg.MaxBodyBytes = p.int64("MAX_BODY_BYTES", 1<<20)
	cfg.Render.AutoDownload = p.bool("CHROME_AUTO_DOWNLOAD", false)
	cfg.Render.NoSandbox = p.bool("CHROME_NO_SANDBOX", false)
	cfg.Render.Timeout = p.duration("RENDER_TIMEOUT", 10*time.Second)

	d := domain.DefaultLayoutPolicy()
	cfg.Layout = domain.LayoutPolicy{
		Strategy:           domain.Strategy(getEnv("LAYOUT_STRATEGY", string(d.Strategy))),
		MaxItemsPerPage:    p.int("LAYOUT_MAX_DAYS_PER_PAGE", d.MaxItemsPerPage),
		PageHeightBudget:   p.float("LAYOUT_PAGE_HEIGHT", 0),
		ItemBaseHeight:     p.float("LAYOUT_ITEM_BASE_HEIGHT", d.ItemBaseHeight),
		ItemHeightPerEvent: p.float("LAYOUT_ITEM_EVENT_HEIGHT", d.ItemHeightPerEvent),
	}
	switch cfg.Layout.Strategy {
	case domain.StrategyFixedCount, domain.StrategyHeightBudget:
	default:
		p.fail("LAYOUT_STRATEGY", fmt.Errorf("must be %q or %q", domain.StrategyFixedCount, domain.StrategyHeightBudget))
	}

	var missing []string
	switch cfg.StoreBackend {
	case StoreGitHub:
		if cfg.GitHub.Owner == "" {
			missing = append(missing, "GITHUB_OWNER")
		}
		if cfg.GitHub.Repo == "" {
			missing = append(missing, "GITHUB_REPO")
		}
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case StoreFile:
	default:
		p.fail("STORE_BACKEND", fmt.Errorf("must be one of %s, %s, %s", StoreGitHub, StorePostgres, StoreFile))
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}
	if len(p.invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(p.invalid, "; "))
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// parser reads typed variables, collecting every parse failure so Load can
// report them together.
type parser struct {
	invalid []string
}

func (p *parser) fail(key string, err error) {
	p.invalid = append(p.invalid, fmt.Sprintf("%s: %v", key, err))
}

func (p *parser) int(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, err)
		return fallback
	}
	return n
}

func (p *parser) int64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		p.fail(key, err)
		return fallback
	}
	return n
}

func (p *parser) float(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(key, err)
		return fallback
	}
	return f
}

func (p *parser) bool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, err)
		return fallback
	}
	return b
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, err)
		return fallback
	}
	return d
}
