/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

// Package redactor removes content from PDF pages at the content-stream
// level. The engine parses a page's drawing program, drops every
// operation whose ink intersects the redaction region, rebuilds the
// stream, draws a confirmation mark and verifies that no removed text
// is still recoverable.
package redactor

import (
	"github.com/obscura-pdf/obscura/model"
)

// PixelRect is a rectangle in the caller's screen frame: origin at the
// top-left of the displayed page, +y down, units of pixels at the
// conversion DPI.
type PixelRect struct {
	X float64
	Y float64
	W float64
	H float64
}

// CoordinateConverter maps between the caller's pixel frame and PDF
// user space (origin bottom-left, 1/72 inch units) for one page at one
// DPI. Page rotation is folded in so pixel regions drawn over the
// displayed page resolve to the intrinsic coordinate frame the content
// streams use.
type CoordinateConverter struct {
	PageWidth  float64 // Unrotated page width in points.
	PageHeight float64 // Unrotated page height in points.
	Rotation   int     // 0, 90, 180 or 270.
	DPI        float64
}

// NewCoordinateConverter returns a converter for `page` at `dpi`.
func NewCoordinateConverter(page model.PageHandle, dpi float64) *CoordinateConverter {
	w, h := page.MediaBox()
	return &CoordinateConverter{
		PageWidth:  w,
		PageHeight: h,
		Rotation:   page.Rotation() % 360,
		DPI:        dpi,
	}
}

// displaySize returns the page dimensions in points as displayed, i.e.
// after the viewer applies the page rotation.
func (c *CoordinateConverter) displaySize() (float64, float64) {
	if c.Rotation == 90 || c.Rotation == 270 {
		return c.PageHeight, c.PageWidth
	}
	return c.PageWidth, c.PageHeight
}

// ToPointRect converts a pixel region on the displayed page to a
// rectangle in the page's intrinsic user space.
func (c *CoordinateConverter) ToPointRect(r PixelRect) model.PdfRectangle {
	s := 72.0 / c.DPI
	_, dispH := c.displaySize()

	// Display frame: y flip from top-left pixel origin to bottom-left
	// point origin.
	x0 := r.X * s
	y0 := dispH - (r.Y+r.H)*s
	x1 := x0 + r.W*s
	y1 := y0 + r.H*s

	// Undo the viewer rotation to reach the intrinsic content frame.
	ix0, iy0 := c.displayToIntrinsic(x0, y0)
	ix1, iy1 := c.displayToIntrinsic(x1, y1)
	return model.NewPdfRectangle(ix0, iy0, ix1, iy1)
}

// ToPixelRect converts an intrinsic user-space rectangle back to the
// caller's pixel frame. Inverse of ToPointRect.
func (c *CoordinateConverter) ToPixelRect(r model.PdfRectangle) PixelRect {
	s := 72.0 / c.DPI
	_, dispH := c.displaySize()

	dx0, dy0 := c.intrinsicToDisplay(r.Llx, r.Lly)
	dx1, dy1 := c.intrinsicToDisplay(r.Urx, r.Ury)
	if dx1 < dx0 {
		dx0, dx1 = dx1, dx0
	}
	if dy1 < dy0 {
		dy0, dy1 = dy1, dy0
	}

	return PixelRect{
		X: dx0 / s,
		Y: (dispH - dy1) / s,
		W: (dx1 - dx0) / s,
		H: (dy1 - dy0) / s,
	}
}

// intrinsicToDisplay applies the page rotation: the transform a viewer
// performs when displaying the page.
func (c *CoordinateConverter) intrinsicToDisplay(x, y float64) (float64, float64) {
	switch c.Rotation {
	case 90:
		return y, c.PageWidth - x
	case 180:
		return c.PageWidth - x, c.PageHeight - y
	case 270:
		return c.PageHeight - y, x
	}
	return x, y
}

// displayToIntrinsic undoes the page rotation.
func (c *CoordinateConverter) displayToIntrinsic(x, y float64) (float64, float64) {
	switch c.Rotation {
	case 90:
		return c.PageWidth - y, x
	case 180:
		return c.PageWidth - x, c.PageHeight - y
	case 270:
		return y, c.PageHeight - x
	}
	return x, y
}
