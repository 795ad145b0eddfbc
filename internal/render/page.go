package render

// PageSize represents paper dimensions in millimetres.
type PageSize struct {
	Width  float64
	Height float64
}

// Standard paper sizes.
var (
	A4     = PageSize{Width: 210, Height: 297}
	A5     = PageSize{Width: 148, Height: 210}
	Letter = PageSize{Width: 215.9, Height: 279.4}
	Legal  = PageSize{Width: 215.9, Height: 355.6}
)

// Orientation represents the page orientation.
type Orientation int

const (
	Portrait Orientation = iota
	Landscape
)

// Margin represents page margins in millimetres.
type Margin struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// UniformMargin returns a Margin with the same value on all sides.
func UniformMargin(mm float64) Margin {
	return Margin{Top: mm, Right: mm, Bottom: mm, Left: mm}
}

// PageConfig controls the paper used by the PDF backends.
// Zero fields fall back to A4 portrait with 15 mm margins.
type PageConfig struct {
	Size        PageSize
	Orientation Orientation
	Margin      Margin
}

// DefaultPageConfig returns A4 portrait with 15 mm margins.
func DefaultPageConfig() PageConfig {
	return PageConfig{
		Size:        A4,
		Orientation: Portrait,
		Margin:      UniformMargin(15),
	}
}

// resolved returns p with zero values replaced by defaults.
func (p PageConfig) resolved() PageConfig {
	d := DefaultPageConfig()
	if p.Size == (PageSize{}) {
		p.Size = d.Size
	}
	if p.Margin == (Margin{}) {
		p.Margin = d.Margin
	}
	return p
}

// dimensions returns the paper width and height in millimetres,
// accounting for orientation.
func (p PageConfig) dimensions() (width, height float64) {
	r := p.resolved()
	if r.Orientation == Landscape {
		return r.Size.Height, r.Size.Width
	}
	return r.Size.Width, r.Size.Height
}

func mmToInches(mm float64) float64 {
	return mm / 25.4
}
