package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/pkordes/itinerary-export/internal/domain"
)

const (
	headerHeight = 18.0
	footerHeight = 8.0
	cardGap      = 5.0
	titleRow     = 9.0
	eventRow     = 7.0
	cardPadding  = 3.0
)

// DrawRenderer draws the plan straight onto PDF pages with fpdf, one PDF
// page per planned page. The built-in fonts cannot draw the category icons,
// so events are prefixed with the category label instead.
type DrawRenderer struct {
	page PageConfig
}

// NewDrawRenderer returns a DrawRenderer using page for paper and margins.
func NewDrawRenderer(page PageConfig) *DrawRenderer {
	return &DrawRenderer{page: page.resolved()}
}

func (r *DrawRenderer) Name() string { return "draw" }

// Render draws doc. ctx is checked between pages.
func (r *DrawRenderer) Render(ctx context.Context, doc Document) (*Result, error) {
	// fpdf takes the portrait size and swaps it itself for landscape.
	w, h := r.page.dimensions()
	orient := "P"
	if r.page.Orientation == Landscape {
		orient = "L"
	}
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: orient,
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: r.page.Size.Width, Ht: r.page.Size.Height},
	})
	m := r.page.Margin
	pdf.SetMargins(m.Left, m.Top, m.Right)
	pdf.SetAutoPageBreak(false, m.Bottom)
	pdf.SetTitle(doc.Trip.Name+" itinerary", true)
	pdf.SetCreator("itinerary-export", false)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	d := drawer{pdf: pdf, tr: tr, page: r.page, width: w, height: h}

	for _, pg := range doc.Plan.Pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d.drawPage(doc, pg, len(doc.Plan.Pages))
	}
	if pdf.PageCount() == 0 {
		pdf.AddPage()
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render.DrawRenderer: %w", err)
	}
	return NewResult(buf.Bytes(), "application/pdf", "pdf", pdf.PageCount()), nil
}

type drawer struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	page   PageConfig
	width  float64
	height float64
}

func (d drawer) contentWidth() float64 {
	return d.width - d.page.Margin.Left - d.page.Margin.Right
}

func (d drawer) drawPage(doc Document, pg domain.Page, total int) {
	pdf := d.pdf
	pdf.AddPage()
	x := d.page.Margin.Left
	cw := d.contentWidth()

	pdf.SetTextColor(0x21, 0x25, 0x29)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetXY(x, d.page.Margin.Top)
	pdf.CellFormat(cw, 9, d.tr(doc.Trip.Name), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0x6c, 0x75, 0x7d)
	pdf.CellFormat(cw, 6, d.tr(dateRange(doc.Trip)), "", 1, "L", false, 0, "")

	top := d.page.Margin.Top + headerHeight
	avail := d.height - d.page.Margin.Bottom - footerHeight - top
	scale := 1.0
	if need := pageHeight(pg); need > avail && need > 0 {
		scale = avail / need
	}

	y := top
	for _, day := range pg.Days {
		y = d.drawDay(day, x, y, cw, scale)
	}

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(0xad, 0xb5, 0xbd)
	pdf.SetXY(x, d.height-d.page.Margin.Bottom-footerHeight+2)
	pdf.CellFormat(cw, 6, fmt.Sprintf("Page %d of %d", pg.Number, total), "", 0, "R", false, 0, "")
}

// drawDay draws one day card at y and returns the y below it.
func (d drawer) drawDay(day domain.DayViewModel, x, y, w, scale float64) float64 {
	pdf := d.pdf
	h := cardHeight(day) * scale
	title := titleRow * scale
	row := eventRow * scale
	pad := cardPadding * scale

	pdf.SetDrawColor(0xde, 0xe2, 0xe6)
	pdf.SetLineWidth(0.3)
	pdf.Rect(x, y, w, h, "D")

	pdf.SetFont("Helvetica", "B", 12*scaleFont(scale))
	pdf.SetTextColor(0x21, 0x25, 0x29)
	pdf.SetXY(x+pad, y+pad)
	pdf.CellFormat(w-2*pad, title, d.tr(day.Title), "", 0, "L", false, 0, "")

	ry := y + pad + title
	if len(day.Events) == 0 {
		pdf.SetFont("Helvetica", "I", 10*scaleFont(scale))
		pdf.SetTextColor(0xad, 0xb5, 0xbd)
		pdf.SetXY(x+pad, ry)
		pdf.CellFormat(w-2*pad, row, "No events scheduled", "", 0, "L", false, 0, "")
		return y + h + cardGap*scale
	}

	pdf.SetFont("Helvetica", "", 10*scaleFont(scale))
	for _, ev := range day.Events {
		s := ev.Category.Style()
		pdf.SetFillColor(int(s.Background.R), int(s.Background.G), int(s.Background.B))
		pdf.Rect(x+pad, ry, w-2*pad, row-1, "F")
		pdf.SetFillColor(int(s.Border.R), int(s.Border.G), int(s.Border.B))
		pdf.Rect(x+pad, ry, 1.2, row-1, "F")
		pdf.SetTextColor(int(s.Text.R), int(s.Text.G), int(s.Text.B))
		pdf.SetXY(x+pad+3, ry)
		pdf.CellFormat(w-2*pad-3, row-1, d.tr(ev.Category.Label()+": "+ev.Text()), "", 0, "L", false, 0, "")
		ry += row
	}
	return y + h + cardGap*scale
}

func cardHeight(day domain.DayViewModel) float64 {
	rows := len(day.Events)
	if rows == 0 {
		rows = 1
	}
	return 2*cardPadding + titleRow + float64(rows)*eventRow
}

func pageHeight(pg domain.Page) float64 {
	var total float64
	for _, day := range pg.Days {
		total += cardHeight(day) + cardGap
	}
	return total
}

// scaleFont shrinks text less aggressively than geometry so squeezed pages
// stay legible.
func scaleFont(scale float64) float64 {
	if scale >= 1 {
		return 1
	}
	if f := 0.5 + scale/2; f > 0.6 {
		return f
	}
	return 0.6
}
