// Package layout is a paginated fixed-unit-box page engine on top of gofpdf.
// All measurements are millimetres on an A4 portrait page unless Page says
// otherwise.
package layout

import (
	"time"
)

const (
	DefaultMargin      = 10.0
	DefaultBreakMargin = 20.0
	DefaultLineHeight  = 10.0
	DefaultFontFamily  = "Arial"
	TotalPagesAlias    = "{nb}"
)

// Page configures one document. Header and Footer run on every page the
// engine produces, including pages added by an automatic break.
type Page struct {
	Orientation string
	Size        string
	Margin      float64
	BreakMargin float64
	FontFamily  string

	Title   string
	Author  string
	Creator string

	// CreatedAt is written as both creation and modification date. A zero
	// value is pinned to the Unix epoch so output never depends on the wall
	// clock.
	CreatedAt time.Time

	// Uncompressed leaves page streams as plain text.
	Uncompressed bool

	Header func(c *Canvas)
	Footer func(c *Canvas)
}

func (p Page) withDefaults() Page {
	if p.Orientation == "" {
		p.Orientation = "P"
	}
	if p.Size == "" {
		p.Size = "A4"
	}
	if p.Margin <= 0 {
		p.Margin = DefaultMargin
	}
	if p.BreakMargin <= 0 {
		p.BreakMargin = DefaultBreakMargin
	}
	if p.FontFamily == "" {
		p.FontFamily = DefaultFontFamily
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Unix(0, 0).UTC()
	}
	return p
}
