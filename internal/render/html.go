package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/pkordes/itinerary-export/internal/domain"
)

// HTMLRenderer renders the plan as a standalone HTML document. Each planned
// page becomes a <section class="page"> followed by a print page break.
type HTMLRenderer struct {
	tmpl *template.Template
}

// NewHTMLRenderer parses the page template.
func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{tmpl: template.Must(template.New("itinerary").Parse(pageTemplate))}
}

func (r *HTMLRenderer) Name() string { return "html" }

// Render executes the template. ctx is unused; rendering is in-memory.
func (r *HTMLRenderer) Render(_ context.Context, doc Document) (*Result, error) {
	data, err := r.markup(doc)
	if err != nil {
		return nil, err
	}
	return NewResult(data, "text/html; charset=utf-8", "html", len(doc.Plan.Pages)), nil
}

func (r *HTMLRenderer) markup(doc Document) ([]byte, error) {
	view := htmlView{
		Trip:       doc.Trip,
		Plan:       doc.Plan,
		DateRange:  dateRange(doc.Trip),
		Generated:  doc.GeneratedAt.Format("2006-01-02 15:04"),
		Stylesheet: template.CSS(stylesheet()),
		TotalPages: len(doc.Plan.Pages),
	}
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("render.HTMLRenderer: execute template: %w", err)
	}
	return buf.Bytes(), nil
}

type htmlView struct {
	Trip       domain.Trip
	Plan       domain.PagePlan
	DateRange  string
	Generated  string
	Stylesheet template.CSS
	TotalPages int
}

func dateRange(t domain.Trip) string {
	const layout = "January 2, 2006"
	start, end := t.StartDate.Time.Format(layout), t.EndDate.Time.Format(layout)
	if start == end {
		return start
	}
	return start + " – " + end
}

// stylesheet emits one class per event category from the domain colors so
// markup and drawn PDFs agree.
func stylesheet() string {
	var b strings.Builder
	b.WriteString(baseCSS)
	for _, c := range []domain.Category{domain.CategoryArrival, domain.CategoryActivity, domain.CategoryDeparture} {
		s := c.Style()
		fmt.Fprintf(&b, ".event-%s{border-left-color:%s;background:%s;color:%s}\n",
			c, s.Border.Hex(), s.Background.Hex(), s.Text.Hex())
	}
	return b.String()
}

const baseCSS = `
*{box-sizing:border-box}
body{font-family:-apple-system,"Segoe UI",Helvetica,Arial,sans-serif;margin:0;color:#212529}
.page{padding:8mm 4mm;page-break-after:always;break-after:page}
.page:last-of-type{page-break-after:auto;break-after:auto}
.trip-header h1{margin:0 0 2mm;font-size:20pt}
.trip-header p{margin:0 0 6mm;color:#6c757d}
.day{border:1px solid #dee2e6;border-radius:6px;margin-bottom:5mm;padding:4mm;break-inside:avoid}
.day h2{margin:0 0 3mm;font-size:13pt}
.events{list-style:none;margin:0;padding:0}
.event{border-left:4px solid;border-radius:3px;padding:2mm 3mm;margin-bottom:2mm}
.no-events{color:#adb5bd;font-style:italic;margin:0}
.page-footer{text-align:right;font-size:8pt;color:#adb5bd}
`

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Trip.Name}} itinerary</title>
<style>{{.Stylesheet}}</style>
</head>
<body>
{{- range .Plan.Pages}}
<section class="page" data-page="{{.Number}}">
  <header class="trip-header">
    <h1>{{$.Trip.Name}}</h1>
    <p>{{$.DateRange}}</p>
  </header>
  {{- range .Days}}
  <article class="day" data-date="{{.DateKey}}">
    <h2>{{.Title}}</h2>
    {{- if .Events}}
    <ul class="events">
      {{- range .Events}}
      <li class="event event-{{.Category}}"><span class="icon">{{.Icon}}</span> {{.Text}}</li>
      {{- end}}
    </ul>
    {{- else}}
    <p class="no-events">No events scheduled</p>
    {{- end}}
  </article>
  {{- end}}
  <footer class="page-footer">Page {{.Number}} of {{$.TotalPages}} · generated {{$.Generated}}</footer>
</section>
{{- end}}
</body>
</html>
`
