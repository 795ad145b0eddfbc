package itinerary

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/de"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/es"
	"github.com/go-playground/locales/fr"
	"github.com/go-playground/locales/ja"

	"github.com/pkordes/itinerary-export/internal/domain"
)

// Formatter supplies the two date strings the builder needs. Key must match
// the format of the date field stored on trip events.
type Formatter interface {
	Key(t time.Time) string
	Title(t time.Time) string
}

// DefaultFormatter keys days as "2006-01-02" and titles them
// "Monday, July 14".
type DefaultFormatter struct{}

func (DefaultFormatter) Key(t time.Time) string   { return t.Format(time.DateOnly) }
func (DefaultFormatter) Title(t time.Time) string { return t.Format("Monday, January 2") }

// LocaleFormatter titles days with the full CLDR date format of a locale,
// e.g. "dimanche 14 juillet 2024" for fr. Keys stay locale-independent.
type LocaleFormatter struct {
	tr locales.Translator
}

var translators = map[string]func() locales.Translator{
	"de": de.New,
	"en": en.New,
	"es": es.New,
	"fr": fr.New,
	"ja": ja.New,
}

// NewLocaleFormatter returns a LocaleFormatter for code ("en", "fr", ...).
// Unknown codes are a domain.ErrValidation.
func NewLocaleFormatter(code string) (*LocaleFormatter, error) {
	newTr, ok := translators[strings.ToLower(strings.TrimSpace(code))]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported locale %q (supported: %s)",
			domain.ErrValidation, code, strings.Join(SupportedLocales(), ", "))
	}
	return &LocaleFormatter{tr: newTr()}, nil
}

// FormatterFor returns the DefaultFormatter for an empty code and a
// LocaleFormatter otherwise.
func FormatterFor(code string) (Formatter, error) {
	if strings.TrimSpace(code) == "" {
		return DefaultFormatter{}, nil
	}
	return NewLocaleFormatter(code)
}

// SupportedLocales lists the codes accepted by NewLocaleFormatter.
func SupportedLocales() []string {
	codes := make([]string, 0, len(translators))
	for c := range translators {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

func (f *LocaleFormatter) Key(t time.Time) string   { return t.Format(time.DateOnly) }
func (f *LocaleFormatter) Title(t time.Time) string { return f.tr.FmtDateFull(t) }
