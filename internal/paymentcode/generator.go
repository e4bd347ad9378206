// Package paymentcode renders payment request URIs as QR matrix images.
package paymentcode

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/boombuler/barcode/qr"
)

var ErrCapacityExceeded = errors.New("payment code capacity exceeded")

const (
	DefaultModuleSize = 10
	DefaultQuietZone  = 4
	MaxSymbolVersion  = 40
)

// Code is an encoded payment code. Image and PNG hold the same raster.
type Code struct {
	Content string
	Version int
	Image   *image.Gray
	PNG     []byte
	Width   int
	Height  int
}

// Generator encodes content at error-correction level M. ModuleSize is the
// pixel edge of one module; QuietZone is the blank border in modules.
type Generator struct {
	ModuleSize int
	QuietZone  int
	MaxVersion int
}

func NewGenerator(maxVersion int) *Generator {
	return &Generator{
		ModuleSize: DefaultModuleSize,
		QuietZone:  DefaultQuietZone,
		MaxVersion: maxVersion,
	}
}

func (g *Generator) Encode(content string) (Code, error) {
	bc, err := qr.Encode(content, qr.M, qr.Auto)
	if err != nil {
		return Code{}, fmt.Errorf("%w: %v", ErrCapacityExceeded, err)
	}

	modules := bc.Bounds().Dx()
	version := (modules - 17) / 4
	if version > g.maxVersion() {
		return Code{}, fmt.Errorf("%w: needs version %d, limit is %d", ErrCapacityExceeded, version, g.maxVersion())
	}

	img := g.rasterize(bc, modules)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Code{}, fmt.Errorf("encode png: %w", err)
	}

	size := img.Bounds().Dx()
	return Code{
		Content: content,
		Version: version,
		Image:   img,
		PNG:     buf.Bytes(),
		Width:   size,
		Height:  size,
	}, nil
}

func (g *Generator) rasterize(bc image.Image, modules int) *image.Gray {
	scale := g.ModuleSize
	if scale <= 0 {
		scale = DefaultModuleSize
	}
	quiet := g.QuietZone
	if quiet < 0 {
		quiet = 0
	}

	size := (modules + 2*quiet) * scale
	img := image.NewGray(image.Rect(0, 0, size, size))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}

	origin := bc.Bounds().Min
	for my := 0; my < modules; my++ {
		for mx := 0; mx < modules; mx++ {
			if !isDark(bc.At(origin.X+mx, origin.Y+my)) {
				continue
			}
			x0 := (mx + quiet) * scale
			y0 := (my + quiet) * scale
			for y := y0; y < y0+scale; y++ {
				for x := x0; x < x0+scale; x++ {
					img.SetGray(x, y, color.Gray{Y: 0})
				}
			}
		}
	}
	return img
}

func (g *Generator) maxVersion() int {
	if g.MaxVersion <= 0 || g.MaxVersion > MaxSymbolVersion {
		return MaxSymbolVersion
	}
	return g.MaxVersion
}

func isDark(c color.Color) bool {
	r, gr, b, _ := c.RGBA()
	return r+gr+b < 3*0x8000
}
