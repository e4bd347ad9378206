package layout

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

var ErrRender = errors.New("layout_render_failed")

type Align string

const (
	AlignLeft   Align = "L"
	AlignCenter Align = "C"
	AlignRight  Align = "R"
)

type Border string

const (
	BorderNone Border = ""
	BorderAll  Border = "1"
)

// Style is a gofpdf font style: "", "B", "I" or "BI".
type Style string

const (
	Regular    Style = ""
	Bold       Style = "B"
	Italic     Style = "I"
	BoldItalic Style = "BI"
)

// Cell is one bordered or borderless box of a Row.
type Cell struct {
	Width  float64
	Text   string
	Border Border
	Align  Align
}

// Canvas is the drawing surface handed to the body, header and footer.
type Canvas struct {
	pdf    *gofpdf.Fpdf
	family string
	tr     func(string) string
}

// Render lays out one document and returns its bytes. Identical input and
// CreatedAt produce identical output.
func Render(page Page, body func(c *Canvas) error) ([]byte, error) {
	page = page.withDefaults()

	pdf := gofpdf.New(page.Orientation, "mm", page.Size, "")
	pdf.SetCatalogSort(true)
	pdf.SetCompression(!page.Uncompressed)
	pdf.SetCreationDate(page.CreatedAt)
	pdf.SetModificationDate(page.CreatedAt)
	pdf.SetMargins(page.Margin, page.Margin, page.Margin)
	pdf.SetAutoPageBreak(true, page.BreakMargin)
	pdf.AliasNbPages(TotalPagesAlias)
	if page.Title != "" {
		pdf.SetTitle(page.Title, true)
	}
	if page.Author != "" {
		pdf.SetAuthor(page.Author, true)
	}
	if page.Creator != "" {
		pdf.SetCreator(page.Creator, true)
	}

	c := &Canvas{
		pdf:    pdf,
		family: page.FontFamily,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
	}
	if page.Header != nil {
		pdf.SetHeaderFunc(func() { page.Header(c) })
	}
	if page.Footer != nil {
		pdf.SetFooterFunc(func() { page.Footer(c) })
	}

	pdf.AddPage()
	if err := body(c); err != nil {
		return nil, err
	}
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	return buf.Bytes(), nil
}

func (c *Canvas) Font(style Style, size float64) {
	c.pdf.SetFont(c.family, string(style), size)
}

// Box draws a single cell. When br is true the cursor moves to the start of
// the next line, otherwise to the right of the box. A zero width extends to
// the right margin.
func (c *Canvas) Box(w, h float64, text string, border Border, align Align, br bool) {
	ln := 0
	if br {
		ln = 1
	}
	c.pdf.CellFormat(w, h, c.tr(text), string(border), ln, string(align), false, 0, "")
}

// Line is a full-width borderless box followed by a line break.
func (c *Canvas) Line(h float64, text string, align Align) {
	c.Box(0, h, text, BorderNone, align, true)
}

// Row draws cells side by side at height h and breaks the line. A row that
// does not fit the remaining height moves to a new page as a whole.
func (c *Canvas) Row(h float64, cells ...Cell) {
	if len(cells) == 0 {
		return
	}
	if !c.Fits(h) {
		c.pdf.AddPage()
	}
	for i, cell := range cells {
		c.Box(cell.Width, h, cell.Text, cell.Border, cell.Align, i == len(cells)-1)
	}
}

// Rule draws a horizontal line across the printable width at the cursor.
func (c *Canvas) Rule(width float64) {
	left, _, right, _ := c.pdf.GetMargins()
	pageW, _ := c.pdf.GetPageSize()
	y := c.pdf.GetY()
	c.pdf.SetDrawColor(0, 0, 0)
	c.pdf.SetLineWidth(width)
	c.pdf.Line(left, y, pageW-right, y)
	c.pdf.SetLineWidth(0.2)
}

func (c *Canvas) Space(h float64) {
	c.pdf.Ln(h)
}

// Image places a PNG read from r at the cursor, w units wide with its height
// following the aspect ratio. The cursor advances below the image and a page
// break is taken first if it would not fit. It returns the placed height.
func (c *Canvas) Image(name string, r io.Reader, w float64) (float64, error) {
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	info := c.pdf.RegisterImageOptionsReader(name, opts, r)
	if err := c.pdf.Error(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRender, err)
	}
	h := w * info.Height() / info.Width()
	c.pdf.ImageOptions(name, c.pdf.GetX(), -1, w, h, true, opts, 0, "")
	if err := c.pdf.Error(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRender, err)
	}
	return h, nil
}

// Fits reports whether h more units fit above the page break margin.
func (c *Canvas) Fits(h float64) bool {
	_, pageH := c.pdf.GetPageSize()
	_, margin := c.pdf.GetAutoPageBreak()
	return c.pdf.GetY()+h <= pageH-margin
}

// FromBottom moves the cursor to d units above the bottom edge.
func (c *Canvas) FromBottom(d float64) {
	c.pdf.SetY(-d)
}

func (c *Canvas) Y() float64 {
	return c.pdf.GetY()
}

func (c *Canvas) PageNo() int {
	return c.pdf.PageNo()
}

// PageCount is the number of pages produced so far.
func (c *Canvas) PageCount() int {
	return c.pdf.PageCount()
}
